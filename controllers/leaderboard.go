package controllers

import (
	"context"
	"fmt"
	"go-donate/models"
	"go-donate/utils"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// LeaderboardLimit caps how many users the leaderboard returns.
const LeaderboardLimit = 50

// LeaderboardController handles the community leaderboard
type LeaderboardController struct {
	Collection *mongo.Collection
	Logger     *zap.Logger
}

// NewLeaderboardController creates a new LeaderboardController
func NewLeaderboardController(client *mongo.Client, logger *zap.Logger) *LeaderboardController {
	collection := client.Database(utils.DatabaseName).Collection("users")
	return &LeaderboardController{
		Collection: collection,
		Logger:     logger,
	}
}

// LeaderboardEntry is one ranked row of the leaderboard
type LeaderboardEntry struct {
	Rank         int         `json:"rank"`
	Name         string      `json:"name"`
	Points       int         `json:"points"`
	ProfileImage interface{} `json:"profileImage"`
	UserType     string      `json:"userType"`
}

// BuildLeaderboard ranks users already sorted by points descending.
// Rank is the contiguous 1-based position; ties keep their input order.
func BuildLeaderboard(users []models.User, base string) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		var image interface{}
		if u.ProfileImage != nil {
			image = fmt.Sprintf("%s/profile-image/%s", base, u.ProfileImage.Hex())
		}
		entries = append(entries, LeaderboardEntry{
			Rank:         i + 1,
			Name:         u.FullName(),
			Points:       u.Points,
			ProfileImage: image,
			UserType:     u.UserType,
		})
	}
	return entries
}

// GetLeaderboard returns the top users ranked by points
func (lc *LeaderboardController) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOpts := options.Find().
		SetSort(bson.D{{Key: "points", Value: -1}}).
		SetLimit(LeaderboardLimit).
		SetProjection(bson.M{
			"firstname":     1,
			"lastname":      1,
			"points":        1,
			"profile_image": 1,
			"user_type":     1,
		})
	cursor, err := lc.Collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		lc.Logger.Error("leaderboard query failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Error fetching leaderboard",
		})
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		lc.Logger.Error("leaderboard decode failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Error fetching leaderboard",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"leaderboard": BuildLeaderboard(users, baseURL(r)),
	})
}
