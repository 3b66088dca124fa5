package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"go-donate/models"
	"net/http"
	"os"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoReturnAfter asks FindOneAndUpdate for the post-update document.
func mongoReturnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// noDocuments reports whether a single-document read or findAndModify
// simply matched nothing. Any other error is a real database failure and
// must not be reported as a not-found or conflict.
func noDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// baseURL resolves the absolute URL prefix used for profile image links.
// BASE_URL wins when set (behind proxies the request host is wrong),
// otherwise it is derived from the request.
func baseURL(r *http.Request) string {
	if base := os.Getenv("BASE_URL"); base != "" {
		return base
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// profileImageURL renders a GridFS file id as an absolute URL, or nil
// when the user has no image.
func profileImageURL(u *models.User, base string) interface{} {
	if u.ProfileImage == nil {
		return nil
	}
	return fmt.Sprintf("%s/profile-image/%s", base, u.ProfileImage.Hex())
}

// publicUser is the user payload returned by auth and profile endpoints.
func publicUser(u *models.User, base string) map[string]interface{} {
	return map[string]interface{}{
		"id":           u.ID.Hex(),
		"username":     u.Username,
		"firstname":    u.Firstname,
		"lastname":     u.Lastname,
		"points":       u.Points,
		"profileImage": profileImageURL(u, base),
		"userType":     u.UserType,
	}
}
