package routes

import (
	"go-donate/controllers"
	"go-donate/middleware"
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(
	router *mux.Router,
	userController *controllers.UserController,
	donationController *controllers.DonationController,
	driverController *controllers.DriverController,
	leaderboardController *controllers.LeaderboardController,
	imageController *controllers.ImageController,
	analysisController *controllers.AnalysisController,
) {
	// Health checks
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Server is running"))
	}).Methods("GET")
	router.HandleFunc("/test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"API is working!"}`))
	}).Methods("GET")

	// Account routes
	router.HandleFunc("/signup", userController.Signup).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")
	router.HandleFunc("/request-password-reset", userController.RequestPasswordReset).Methods("POST")
	router.HandleFunc("/verify-security-answer", userController.VerifySecurityAnswer).Methods("POST")
	router.HandleFunc("/reset-password", userController.ResetPassword).Methods("POST")
	router.HandleFunc("/users/profile/address", userController.UpdateAddress).Methods("PUT")
	router.HandleFunc("/users/{userId}", userController.GetUser).Methods("GET")

	// Donation routes
	router.HandleFunc("/donations", donationController.CreateDonation).Methods("POST")
	router.HandleFunc("/donations/all", donationController.GetAllDonations).Methods("GET")
	router.HandleFunc("/donations/user/{userId}", donationController.GetUserDonations).Methods("GET")
	router.HandleFunc("/donations/{donationId}", donationController.UpdateDonation).Methods("PUT")
	router.HandleFunc("/donation/{donationId}", donationController.GetDonation).Methods("GET")
	router.HandleFunc("/donation/{donationId}", donationController.DeleteDonation).Methods("DELETE")
	router.HandleFunc("/schedule-pickup", donationController.SchedulePickup).Methods("POST")

	// Driver routes
	driver := router.PathPrefix("/driver").Subrouter()
	driver.Use(middleware.AuthMiddleware)
	driver.Use(middleware.DriverMiddleware)
	driver.HandleFunc("/location", driverController.UpdateLocation).Methods("POST")
	driver.HandleFunc("/available-pickups", driverController.AvailablePickups).Methods("GET")
	driver.HandleFunc("/active-pickups", driverController.ActivePickups).Methods("GET")
	driver.HandleFunc("/completed-donations", driverController.CompletedDonations).Methods("GET")
	driver.HandleFunc("/assign-pickup/{donationId}", driverController.AssignPickup).Methods("POST")
	driver.HandleFunc("/complete-pickup/{donationId}", driverController.CompletePickup).Methods("POST")
	driver.HandleFunc("/donation/{donationId}", driverController.GetDonationDetails).Methods("GET")

	// Leaderboard
	router.HandleFunc("/leaderboard", leaderboardController.GetLeaderboard).Methods("GET")

	// Profile images
	router.HandleFunc("/update-profile-image", imageController.UpdateProfileImage).Methods("POST")
	router.HandleFunc("/profile-image/{id}", imageController.GetProfileImage).Methods("GET")

	// Image analysis proxies
	router.HandleFunc("/api/analyze-color", analysisController.AnalyzeColor).Methods("POST")
	router.HandleFunc("/analyze-with-gemini", analysisController.AnalyzeWithGemini).Methods("POST")

	// CORS preflight. Every route above is method-restricted, so without
	// this matcher an OPTIONS request would never reach the router
	// middleware that answers it.
	router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}
