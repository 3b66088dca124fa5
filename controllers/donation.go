package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"go-donate/models"
	"go-donate/utils"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DonationController handles donation lifecycle requests
type DonationController struct {
	DonationCollection *mongo.Collection
	UserCollection     *mongo.Collection
	Logger             *zap.Logger
}

// NewDonationController creates a new DonationController
func NewDonationController(client *mongo.Client, logger *zap.Logger) *DonationController {
	db := client.Database(utils.DatabaseName)
	return &DonationController{
		DonationCollection: db.Collection("donations"),
		UserCollection:     db.Collection("users"),
		Logger:             logger,
	}
}

// CreateDonation publishes a new donation with status pending
func (dc *DonationController) CreateDonation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        string                `json:"userId"`
		DonationType  string                `json:"donationType"`
		ClothingItems []models.ClothingItem `json:"clothingItems"`
		ToyItems      []models.ToyItem      `json:"toyItems"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.DonationType == "" {
		http.Error(w, "User ID and donation type are required", http.StatusBadRequest)
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID format", http.StatusBadRequest)
		return
	}

	now := time.Now()
	donation := models.Donation{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		DonationType: req.DonationType,
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	switch req.DonationType {
	case models.DonationTypeClothes:
		donation.ClothingItems = req.ClothingItems
		donation.ToyItems = []models.ToyItem{}
	case models.DonationTypeToys:
		donation.ToyItems = req.ToyItems
		donation.ClothingItems = []models.ClothingItem{}
	}
	if err := donation.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	donation.Size = donation.TotalQuantity()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := dc.DonationCollection.InsertOne(ctx, donation); err != nil {
		dc.Logger.Error("donation insert failed", zap.Error(err))
		http.Error(w, "Error saving donation", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Donation saved successfully",
		"donation": donation,
	})
}

// donorContact is the donor information embedded in marketplace listings
type donorContact struct {
	Username     string `json:"username,omitempty"`
	Firstname    string `json:"firstname"`
	Lastname     string `json:"lastname"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	AddressNotes string `json:"addressNotes,omitempty"`
}

// donorContacts loads the donors referenced by donations in one query.
func (dc *DonationController) donorContacts(ctx context.Context, donations []models.Donation) (map[primitive.ObjectID]donorContact, error) {
	ids := make([]primitive.ObjectID, 0, len(donations))
	seen := make(map[primitive.ObjectID]bool)
	for _, d := range donations {
		if !seen[d.UserID] {
			seen[d.UserID] = true
			ids = append(ids, d.UserID)
		}
	}
	contacts := make(map[primitive.ObjectID]donorContact, len(ids))
	if len(ids) == 0 {
		return contacts, nil
	}

	cursor, err := dc.UserCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		contacts[user.ID] = donorContact{
			Username:     user.Username,
			Firstname:    user.Firstname,
			Lastname:     user.Lastname,
			Address:      user.Address,
			City:         user.City,
			PhoneNumber:  user.PhoneNumber,
			AddressNotes: user.AddressNotes,
		}
	}
	return contacts, cursor.Err()
}

// GetAllDonations lists every donation for the marketplace view
func (dc *DonationController) GetAllDonations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := dc.DonationCollection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		dc.Logger.Error("donation list failed", zap.Error(err))
		http.Error(w, "Failed to retrieve donations", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	donations := []models.Donation{}
	if err := cursor.All(ctx, &donations); err != nil {
		http.Error(w, "Error decoding donations", http.StatusInternalServerError)
		return
	}

	contacts, err := dc.donorContacts(ctx, donations)
	if err != nil {
		dc.Logger.Error("donor lookup failed", zap.Error(err))
		http.Error(w, "Failed to retrieve donations", http.StatusInternalServerError)
		return
	}

	type listing struct {
		models.Donation
		Donor *donorContact `json:"donor,omitempty"`
	}
	listings := make([]listing, 0, len(donations))
	for _, d := range donations {
		entry := listing{Donation: d}
		if contact, ok := contacts[d.UserID]; ok {
			entry.Donor = &contact
		}
		listings = append(listings, entry)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"donations": listings,
	})
}

// GetUserDonations lists a single donor's donations
func (dc *DonationController) GetUserDonations(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := primitive.ObjectIDFromHex(vars["userId"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid user ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := dc.DonationCollection.Find(ctx, bson.M{"user_id": userID}, findOpts)
	if err != nil {
		dc.Logger.Error("donation list failed", zap.Error(err))
		http.Error(w, "Failed to retrieve donations", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	donations := []models.Donation{}
	if err := cursor.All(ctx, &donations); err != nil {
		http.Error(w, "Error decoding donations", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"donations": donations,
	})
}

// GetDonation retrieves a single donation by id
func (dc *DonationController) GetDonation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	donationID, err := primitive.ObjectIDFromHex(vars["donationId"])
	if err != nil {
		http.Error(w, "Invalid donation ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var donation models.Donation
	if err := dc.DonationCollection.FindOne(ctx, bson.M{"_id": donationID}).Decode(&donation); err != nil {
		if !noDocuments(err) {
			dc.Logger.Error("donation lookup failed", zap.Error(err))
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		http.Error(w, "Donation not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"donation": donation})
}

// UpdateDonation applies donor edits to status and pickup fields
func (dc *DonationController) UpdateDonation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	donationID, err := primitive.ObjectIDFromHex(vars["donationId"])
	if err != nil {
		http.Error(w, "Invalid donation ID format", http.StatusBadRequest)
		return
	}

	var req struct {
		Status        string `json:"status"`
		PickupDate    string `json:"pickupDate"`
		PickupAddress string `json:"pickupAddress"`
		PickupNotes   string `json:"pickupNotes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Status != "" {
		if !models.ValidStatus(req.Status) {
			http.Error(w, models.ErrBadStatus.Error(), http.StatusBadRequest)
			return
		}
		set["status"] = req.Status
	}
	if req.PickupDate != "" {
		pickupDate, err := parsePickupDate(req.PickupDate)
		if err != nil {
			http.Error(w, "Invalid pickup date", http.StatusBadRequest)
			return
		}
		set["pickup_date"] = pickupDate
	}
	if req.PickupAddress != "" {
		set["pickup_address"] = req.PickupAddress
	}
	if req.PickupNotes != "" {
		set["pickup_notes"] = req.PickupNotes
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var donation models.Donation
	err = dc.DonationCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": donationID},
		bson.M{"$set": set},
		mongoReturnAfter(),
	).Decode(&donation)
	if err != nil {
		if !noDocuments(err) {
			dc.Logger.Error("donation update failed", zap.Error(err))
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		http.Error(w, "Donation not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Donation updated successfully",
		"donation": donation,
	})
}

// DeleteDonation hard-deletes a donation and cleans up any driver
// reference left behind by an assignment.
func (dc *DonationController) DeleteDonation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	donationID, err := primitive.ObjectIDFromHex(vars["donationId"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid donation ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var donation models.Donation
	err = dc.DonationCollection.FindOneAndDelete(ctx, bson.M{"_id": donationID}).Decode(&donation)
	if err != nil {
		if !noDocuments(err) {
			dc.Logger.Error("donation delete failed", zap.Error(err))
			respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"message": "Database error",
			})
			return
		}
		respondJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "Donation not found",
		})
		return
	}

	// Deleting an assigned donation must not leave the id orphaned in
	// the driver's active pickups.
	if donation.AssignedDriver != nil {
		_, err := dc.UserCollection.UpdateOne(ctx,
			bson.M{"_id": *donation.AssignedDriver},
			bson.M{"$pull": bson.M{"active_pickups": donationID}},
		)
		if err != nil {
			dc.Logger.Warn("active pickup cleanup failed",
				zap.String("donation_id", donationID.Hex()),
				zap.Error(err))
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Donation deleted successfully",
	})
}

// SchedulePickup moves a pending donation to scheduled and records the
// pickup details. The donor's default pickup address is saved in the
// same action.
func (dc *DonationController) SchedulePickup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DonationID string `json:"donationId"`
		PickupDate string `json:"pickupDate"`
		UserID     string `json:"userId"`
		Location   struct {
			Type      string  `json:"type"` // "gps" or "manual"
			Address   string  `json:"address"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
		DeliveryMessage string `json:"deliveryMessage"`

		// Optional donor profile address fields, persisted as the
		// default for future donations.
		Address      string `json:"address"`
		City         string `json:"city"`
		PhoneNumber  string `json:"phoneNumber"`
		AddressNotes string `json:"addressNotes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if req.DonationID == "" || req.PickupDate == "" || req.UserID == "" {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Donation ID, pickup date, and user ID are required",
		})
		return
	}

	donationID, err := primitive.ObjectIDFromHex(req.DonationID)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid donation ID format",
		})
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid user ID format",
		})
		return
	}
	pickupDate, err := parsePickupDate(req.PickupDate)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid pickup date",
		})
		return
	}

	set := bson.M{
		"status":         models.StatusScheduled,
		"pickup_date":    pickupDate,
		"pickup_address": req.Location.Address,
		"updated_at":     time.Now(),
	}
	if req.Location.Type == "gps" && req.Location.Latitude != 0 && req.Location.Longitude != 0 {
		set["location"] = models.Coordinates{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
		}
	}
	if req.DeliveryMessage != "" {
		set["pickup_notes"] = req.DeliveryMessage
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The status guard lives in the update filter so a donation can
	// never be scheduled twice.
	var donation models.Donation
	err = dc.DonationCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": donationID, "user_id": userID, "status": models.StatusPending},
		bson.M{"$set": set},
		mongoReturnAfter(),
	).Decode(&donation)
	if err != nil {
		if !noDocuments(err) {
			dc.Logger.Error("schedule update failed", zap.Error(err))
			respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"message": "Database error",
			})
			return
		}
		dc.respondScheduleConflict(ctx, w, donationID, userID)
		return
	}

	if req.Address != "" && req.City != "" {
		_, err := dc.UserCollection.UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": bson.M{
				"address":       req.Address,
				"city":          req.City,
				"phone_number":  req.PhoneNumber,
				"address_notes": req.AddressNotes,
			}},
		)
		if err != nil {
			dc.Logger.Warn("donor address upsert failed",
				zap.String("user_id", userID.Hex()),
				zap.Error(err))
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Pickup scheduled successfully",
		"donation": donation,
	})
}

// respondScheduleConflict explains why a schedule attempt did not match:
// missing donation, wrong owner, or a status other than pending.
func (dc *DonationController) respondScheduleConflict(ctx context.Context, w http.ResponseWriter, donationID, userID primitive.ObjectID) {
	var donation models.Donation
	err := dc.DonationCollection.FindOne(ctx, bson.M{"_id": donationID}).Decode(&donation)
	switch {
	case err != nil && !noDocuments(err):
		dc.Logger.Error("schedule conflict lookup failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Database error",
		})
	case err != nil:
		respondJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "Donation not found",
		})
	case donation.UserID != userID:
		respondJSON(w, http.StatusForbidden, map[string]interface{}{
			"success": false,
			"message": "You are not authorized to schedule this donation",
		})
	case donation.CanSchedule():
		// Still pending, so the update lost a race with a write that has
		// since been undone. A retry will succeed.
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Donation could not be scheduled, please try again",
		})
	default:
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": fmt.Sprintf("Donation cannot be scheduled because its status is '%s'. Only 'pending' donations can be scheduled.", donation.Status),
		})
	}
}

// parsePickupDate accepts RFC 3339 timestamps or plain dates.
func parsePickupDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
