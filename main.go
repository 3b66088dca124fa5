// main.go
package main

import (
	"context"
	"go-donate/controllers"
	"go-donate/middleware"
	"go-donate/routes"
	"go-donate/utils"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	logger, err := utils.NewLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			logger.Fatal("mongo disconnect failed", zap.Error(err))
		}
	}()

	// Initialize controllers
	userController := controllers.NewUserController(client, logger)
	donationController := controllers.NewDonationController(client, logger)
	driverController := controllers.NewDriverController(client, logger)
	leaderboardController := controllers.NewLeaderboardController(client, logger)
	imageController, err := controllers.NewImageController(client, logger)
	if err != nil {
		logger.Fatal("gridfs bucket init failed", zap.Error(err))
	}
	analysisController := controllers.NewAnalysisController(logger)

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.CORSMiddleware)

	// Register routes
	routes.RegisterRoutes(router,
		userController,
		donationController,
		driverController,
		leaderboardController,
		imageController,
		analysisController,
	)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	logger.Info("server listening", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
