package controllers

import (
	"context"
	"errors"
	"fmt"
	"go-donate/models"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestBaseURL(t *testing.T) {
	t.Run("derived from request", func(t *testing.T) {
		t.Setenv("BASE_URL", "")
		req := httptest.NewRequest("GET", "http://api.local:3000/leaderboard", nil)
		assert.Equal(t, "http://api.local:3000", baseURL(req))
	})

	t.Run("forwarded proto", func(t *testing.T) {
		t.Setenv("BASE_URL", "")
		req := httptest.NewRequest("GET", "http://api.local/leaderboard", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		assert.Equal(t, "https://api.local", baseURL(req))
	})

	t.Run("BASE_URL override", func(t *testing.T) {
		t.Setenv("BASE_URL", "https://donations.example.com")
		req := httptest.NewRequest("GET", "http://api.local/leaderboard", nil)
		assert.Equal(t, "https://donations.example.com", baseURL(req))
	})
}

func TestPublicUser(t *testing.T) {
	imageID := primitive.NewObjectID()
	u := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  "alice",
		Firstname: "Alice",
		Lastname:  "Smith",
		Points:    42,
		UserType:  models.UserTypeDonor,
	}

	payload := publicUser(u, "http://localhost:3000")
	assert.Equal(t, u.ID.Hex(), payload["id"])
	assert.Equal(t, "alice", payload["username"])
	assert.Equal(t, 42, payload["points"])
	assert.Nil(t, payload["profileImage"])

	u.ProfileImage = &imageID
	payload = publicUser(u, "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000/profile-image/"+imageID.Hex(), payload["profileImage"])
}

func TestNoDocuments(t *testing.T) {
	assert.True(t, noDocuments(mongo.ErrNoDocuments))
	assert.True(t, noDocuments(fmt.Errorf("decode: %w", mongo.ErrNoDocuments)))

	assert.False(t, noDocuments(nil))
	assert.False(t, noDocuments(context.DeadlineExceeded))
	assert.False(t, noDocuments(errors.New("connection reset")))
}
