package controllers

import (
	"context"
	"encoding/json"
	"go-donate/middleware"
	"go-donate/models"
	"go-donate/utils"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DriverController handles driver pickup requests
type DriverController struct {
	DonationCollection *mongo.Collection
	UserCollection     *mongo.Collection
	Logger             *zap.Logger
}

// NewDriverController creates a new DriverController
func NewDriverController(client *mongo.Client, logger *zap.Logger) *DriverController {
	db := client.Database(utils.DatabaseName)
	return &DriverController{
		DonationCollection: db.Collection("donations"),
		UserCollection:     db.Collection("users"),
		Logger:             logger,
	}
}

// driverID extracts the authenticated driver's id from the request context.
func driverID(r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// UpdateLocation stores the driver's current coordinates
func (drc *DriverController) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := driverID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.Coordinates
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := drc.UserCollection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"current_location": req}},
	)
	if err != nil {
		drc.Logger.Error("driver location update failed", zap.Error(err))
		http.Error(w, "Error updating location", http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Location updated successfully"})
}

// donorName is the donor summary attached to driver pickup listings
type donorName struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// pickupListing is a donation with the donor summary and an optional
// distance from the driver's position.
type pickupListing struct {
	models.Donation
	Donor    *donorName `json:"donor,omitempty"`
	Distance *float64   `json:"distance,omitempty"`
}

// listPickups runs a donation query and attaches donor names.
func (drc *DriverController) listPickups(ctx context.Context, filter bson.M) ([]pickupListing, error) {
	cursor, err := drc.DonationCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	donations := []models.Donation{}
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(donations))
	for _, d := range donations {
		ids = append(ids, d.UserID)
	}
	names := make(map[primitive.ObjectID]donorName)
	if len(ids) > 0 {
		userCursor, err := drc.UserCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		defer userCursor.Close(ctx)
		for userCursor.Next(ctx) {
			var user models.User
			if err := userCursor.Decode(&user); err != nil {
				return nil, err
			}
			names[user.ID] = donorName{Firstname: user.Firstname, Lastname: user.Lastname}
		}
		if err := userCursor.Err(); err != nil {
			return nil, err
		}
	}

	listings := make([]pickupListing, 0, len(donations))
	for _, d := range donations {
		entry := pickupListing{Donation: d}
		if name, ok := names[d.UserID]; ok {
			entry.Donor = &name
		}
		listings = append(listings, entry)
	}
	return listings, nil
}

// AvailablePickups lists scheduled, unassigned donations. When the
// driver's coordinates are supplied the listings are annotated with
// distance and sorted nearest first.
func (drc *DriverController) AvailablePickups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	listings, err := drc.listPickups(ctx, bson.M{
		"status":          models.StatusScheduled,
		"assigned_driver": bson.M{"$exists": false},
	})
	if err != nil {
		drc.Logger.Error("available pickups query failed", zap.Error(err))
		http.Error(w, "Error fetching available pickups", http.StatusInternalServerError)
		return
	}

	latStr := r.URL.Query().Get("latitude")
	lonStr := r.URL.Query().Get("longitude")
	if latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr == nil && lonErr == nil {
			for i := range listings {
				if loc := listings[i].Location; loc != nil {
					d := utils.Distance(lat, lon, loc.Latitude, loc.Longitude)
					listings[i].Distance = &d
				}
			}
			// Listings without coordinates sort last.
			sort.SliceStable(listings, func(i, j int) bool {
				di, dj := listings[i].Distance, listings[j].Distance
				if di == nil {
					return false
				}
				if dj == nil {
					return true
				}
				return *di < *dj
			})
		}
	}

	respondJSON(w, http.StatusOK, listings)
}

// AssignPickup claims a scheduled donation for the authenticated driver.
// The claim is a single conditional update, so concurrent drivers cannot
// both win the same donation.
func (drc *DriverController) AssignPickup(w http.ResponseWriter, r *http.Request) {
	id, ok := driverID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	donationID, err := primitive.ObjectIDFromHex(vars["donationId"])
	if err != nil {
		http.Error(w, "Invalid donation ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	var donation models.Donation
	err = drc.DonationCollection.FindOneAndUpdate(ctx,
		bson.M{
			"_id":             donationID,
			"status":          models.StatusScheduled,
			"assigned_driver": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{
			"assigned_driver": id,
			"assigned_at":     now,
			"status":          models.StatusAssigned,
			"updated_at":      now,
		}},
		mongoReturnAfter(),
	).Decode(&donation)
	if err != nil {
		if !noDocuments(err) {
			drc.Logger.Error("assign update failed", zap.Error(err))
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		drc.respondAssignConflict(ctx, w, donationID)
		return
	}

	if _, err := drc.UserCollection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"active_pickups": donationID}},
	); err != nil {
		drc.Logger.Error("active pickup append failed",
			zap.String("donation_id", donationID.Hex()),
			zap.Error(err))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Pickup assigned successfully",
		"donation": donation,
	})
}

// CompletePickup marks an assigned donation as completed and awards
// points to the donor and the driver.
func (drc *DriverController) CompletePickup(w http.ResponseWriter, r *http.Request) {
	id, ok := driverID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	donationID, err := primitive.ObjectIDFromHex(vars["donationId"])
	if err != nil {
		http.Error(w, "Invalid donation ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pickedUpAt := time.Now()
	var donation models.Donation
	err = drc.DonationCollection.FindOneAndUpdate(ctx,
		bson.M{
			"_id":             donationID,
			"status":          models.StatusAssigned,
			"assigned_driver": id,
		},
		bson.M{"$set": bson.M{
			"status":       models.StatusCompleted,
			"picked_up_at": pickedUpAt,
			"updated_at":   pickedUpAt,
		}},
		mongoReturnAfter(),
	).Decode(&donation)
	if err != nil {
		if !noDocuments(err) {
			drc.Logger.Error("complete update failed", zap.Error(err))
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		drc.respondCompleteConflict(ctx, w, donationID, id)
		return
	}

	donorPoints := donation.DonorPoints()
	driverPoints := donation.DriverPoints(pickedUpAt)

	if _, err := drc.UserCollection.UpdateOne(ctx,
		bson.M{"_id": donation.UserID},
		bson.M{"$inc": bson.M{"points": donorPoints}},
	); err != nil {
		drc.Logger.Error("donor point award failed",
			zap.String("donation_id", donationID.Hex()),
			zap.Error(err))
	}
	if _, err := drc.UserCollection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc":  bson.M{"points": driverPoints},
			"$pull": bson.M{"active_pickups": donationID},
		},
	); err != nil {
		drc.Logger.Error("driver point award failed",
			zap.String("donation_id", donationID.Hex()),
			zap.Error(err))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":             "Pickup completed successfully",
		"donation":            donation,
		"donorPointsAwarded":  donorPoints,
		"driverPointsAwarded": driverPoints,
	})
}

// respondAssignConflict distinguishes a missing donation from one that is
// not claimable, after the conditional claim found nothing to update.
func (drc *DriverController) respondAssignConflict(ctx context.Context, w http.ResponseWriter, donationID primitive.ObjectID) {
	var donation models.Donation
	err := drc.DonationCollection.FindOne(ctx, bson.M{"_id": donationID}).Decode(&donation)
	switch {
	case err != nil && !noDocuments(err):
		drc.Logger.Error("assign conflict lookup failed", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
	case err != nil:
		http.Error(w, "Donation not found", http.StatusNotFound)
	case donation.CanAssign():
		// Claimable again, so the claim lost a race with a write that has
		// since been undone. A retry will succeed.
		http.Error(w, "Donation could not be claimed, please try again", http.StatusBadRequest)
	default:
		http.Error(w, "Donation is not available for pickup", http.StatusBadRequest)
	}
}

// respondCompleteConflict distinguishes a missing donation from a
// wrong-driver or wrong-status completion attempt.
func (drc *DriverController) respondCompleteConflict(ctx context.Context, w http.ResponseWriter, donationID, driver primitive.ObjectID) {
	var donation models.Donation
	err := drc.DonationCollection.FindOne(ctx, bson.M{"_id": donationID}).Decode(&donation)
	switch {
	case err != nil && !noDocuments(err):
		drc.Logger.Error("complete conflict lookup failed", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
	case err != nil:
		http.Error(w, "Donation not found", http.StatusNotFound)
	case donation.CanComplete(driver):
		// The completion lost a race with a write that has since been
		// undone. A retry will succeed.
		http.Error(w, "Pickup could not be completed, please try again", http.StatusBadRequest)
	case donation.AssignedDriver == nil || *donation.AssignedDriver != driver:
		http.Error(w, "Not authorized to complete this pickup", http.StatusForbidden)
	default:
		http.Error(w, "Donation is not assigned for pickup", http.StatusBadRequest)
	}
}

// ActivePickups lists the driver's assigned, uncompleted pickups.
// This is a derived query on the donations collection rather than a
// read of the denormalized active_pickups list.
func (drc *DriverController) ActivePickups(w http.ResponseWriter, r *http.Request) {
	id, ok := driverID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	listings, err := drc.listPickups(ctx, bson.M{
		"assigned_driver": id,
		"status":          models.StatusAssigned,
	})
	if err != nil {
		drc.Logger.Error("active pickups query failed", zap.Error(err))
		http.Error(w, "Error fetching active pickups", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, listings)
}

// CompletedDonations lists the driver's completed pickups
func (drc *DriverController) CompletedDonations(w http.ResponseWriter, r *http.Request) {
	id, ok := driverID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	listings, err := drc.listPickups(ctx, bson.M{
		"assigned_driver": id,
		"status":          models.StatusCompleted,
	})
	if err != nil {
		drc.Logger.Error("completed donations query failed", zap.Error(err))
		http.Error(w, "Error fetching completed donations", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, listings)
}

// GetDonationDetails returns the full donation for the pickup popup
func (drc *DriverController) GetDonationDetails(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	donationID, err := primitive.ObjectIDFromHex(vars["donationId"])
	if err != nil {
		http.Error(w, "Invalid donation ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	listings, err := drc.listPickups(ctx, bson.M{"_id": donationID})
	if err != nil {
		drc.Logger.Error("donation detail query failed", zap.Error(err))
		http.Error(w, "Error fetching donation details", http.StatusInternalServerError)
		return
	}
	if len(listings) == 0 {
		http.Error(w, "Donation not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, listings[0])
}
