package controllers

import (
	"context"
	"encoding/json"
	"go-donate/models"
	"go-donate/utils"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserController handles account and profile requests
type UserController struct {
	Collection *mongo.Collection
	Logger     *zap.Logger
}

// NewUserController creates a new UserController
func NewUserController(client *mongo.Client, logger *zap.Logger) *UserController {
	collection := client.Database(utils.DatabaseName).Collection("users")

	// Usernames must be unique under concurrent signups, which only the
	// index can guarantee.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logger.Warn("username index creation failed", zap.Error(err))
	}

	return &UserController{
		Collection: collection,
		Logger:     logger,
	}
}

// isDuplicateUsername reports whether an insert was rejected by the unique
// username index.
func isDuplicateUsername(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// Signup handles user registration
func (uc *UserController) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username         string `json:"username"`
		Password         string `json:"password"`
		Firstname        string `json:"firstname"`
		Lastname         string `json:"lastname"`
		SecurityQuestion string `json:"securityQuestion"`
		SecurityAnswer   string `json:"securityAnswer"`
		UserType         string `json:"userType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" || req.Firstname == "" || req.Lastname == "" ||
		req.SecurityQuestion == "" || req.SecurityAnswer == "" {
		http.Error(w, "All fields are required", http.StatusBadRequest)
		return
	}
	if err := models.ValidateUsername(req.Username); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := models.ValidatePassword(req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := models.ValidateUserType(req.UserType); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Check if user already exists
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	count, err := uc.Collection.CountDocuments(ctx, bson.M{"username": req.Username})
	if err != nil {
		uc.Logger.Error("signup lookup failed", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "Username already exists", http.StatusBadRequest)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}
	// Security answers are matched case-insensitively, so hash the
	// lowercased form.
	hashedAnswer, err := bcrypt.GenerateFromPassword([]byte(strings.ToLower(req.SecurityAnswer)), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing security answer", http.StatusInternalServerError)
		return
	}

	userType := req.UserType
	if userType == "" {
		userType = models.UserTypeDonor
	}

	user := models.User{
		ID:               primitive.NewObjectID(),
		Username:         req.Username,
		Password:         string(hashedPassword),
		Firstname:        req.Firstname,
		Lastname:         req.Lastname,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   string(hashedAnswer),
		Points:           0,
		UserType:         userType,
	}

	if _, err := uc.Collection.InsertOne(ctx, user); err != nil {
		if isDuplicateUsername(err) {
			http.Error(w, "Username already exists", http.StatusBadRequest)
			return
		}
		uc.Logger.Error("signup insert failed", zap.Error(err))
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Username, user.UserType)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"token":   token,
		"user":    publicUser(&user, baseURL(r)),
	})
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err := uc.Collection.FindOne(ctx, bson.M{"username": creds.Username}).Decode(&user)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Username, user.UserType)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  publicUser(&user, baseURL(r)),
	})
}

// RequestPasswordReset returns the user's security question
func (uc *UserController) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	if err := uc.Collection.FindOne(ctx, bson.M{"username": req.Email}).Decode(&user); err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"securityQuestion": user.SecurityQuestion,
	})
}

// VerifySecurityAnswer checks the recovery answer and issues a reset token
func (uc *UserController) VerifySecurityAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string `json:"email"`
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	if err := uc.Collection.FindOne(ctx, bson.M{"username": req.Email}).Decode(&user); err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.SecurityAnswer), []byte(strings.ToLower(req.Answer))); err != nil {
		http.Error(w, "Incorrect security answer", http.StatusUnauthorized)
		return
	}

	resetToken, err := utils.GenerateResetJWT(user.ID.Hex(), user.Username)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message":    "Security answer verified",
		"resetToken": resetToken,
	})
}

// ResetPassword sets a new password given a valid reset token
func (uc *UserController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetToken  string `json:"resetToken"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	claims, err := utils.ParseJWT(req.ResetToken)
	if err != nil || claims.Purpose != utils.ResetPurpose {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	if err := models.ValidatePassword(req.NewPassword); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := uc.Collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"password": string(hashedPassword)},
	})
	if err != nil {
		uc.Logger.Error("password reset update failed", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// GetUser retrieves a user by id (for refreshing client state)
func (uc *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := primitive.ObjectIDFromHex(vars["userId"])
	if err != nil {
		http.Error(w, "Invalid user ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	if err := uc.Collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	user.Password = ""
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

// UpdateAddress saves the donor's default pickup address
func (uc *UserController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       string `json:"userId"`
		Address      string `json:"address"`
		City         string `json:"city"`
		PhoneNumber  string `json:"phoneNumber"`
		AddressNotes string `json:"addressNotes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "User ID is required", http.StatusBadRequest)
		return
	}
	if req.Address == "" || req.City == "" {
		http.Error(w, "Address and city are required", http.StatusBadRequest)
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err = uc.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"address":       req.Address,
			"city":          req.City,
			"phone_number":  req.PhoneNumber,
			"address_notes": req.AddressNotes,
		}},
		mongoReturnAfter(),
	).Decode(&user)
	if err != nil {
		if !noDocuments(err) {
			uc.Logger.Error("address update failed", zap.Error(err))
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	user.Password = ""
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Address updated successfully",
		"user":    user,
	})
}
