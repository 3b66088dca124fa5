package controllers

import (
	"bytes"
	"context"
	"fmt"
	"go-donate/models"
	"go-donate/utils"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// maxImageUpload caps multipart profile image uploads at 10MB.
const maxImageUpload = 10 << 20

// GridFSBucketName is the bucket holding profile images.
const GridFSBucketName = "profileImages"

// ImageController handles profile image storage in GridFS
type ImageController struct {
	UserCollection *mongo.Collection
	Bucket         *gridfs.Bucket
	Logger         *zap.Logger
}

// NewImageController creates a new ImageController
func NewImageController(client *mongo.Client, logger *zap.Logger) (*ImageController, error) {
	db := client.Database(utils.DatabaseName)
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(GridFSBucketName))
	if err != nil {
		return nil, err
	}
	return &ImageController{
		UserCollection: db.Collection("users"),
		Bucket:         bucket,
		Logger:         logger,
	}, nil
}

// deleteImage removes a stored image, tolerating missing files.
func (ic *ImageController) deleteImage(id primitive.ObjectID) {
	if err := ic.Bucket.Delete(id); err != nil && err != gridfs.ErrFileNotFound {
		ic.Logger.Warn("profile image delete failed",
			zap.String("file_id", id.Hex()),
			zap.Error(err))
	}
}

// UpdateProfileImage uploads, replaces, or clears a user's profile image
func (ic *ImageController) UpdateProfileImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		http.Error(w, "File upload error", http.StatusBadRequest)
		return
	}

	userIDHex := r.FormValue("userId")
	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		http.Error(w, "Invalid user ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var user models.User
	if err := ic.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if !noDocuments(err) {
			ic.Logger.Error("user lookup failed", zap.Error(err))
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if r.FormValue("clearImage") == "true" {
		if user.ProfileImage != nil {
			ic.deleteImage(*user.ProfileImage)
		}
		err := ic.UserCollection.FindOneAndUpdate(ctx,
			bson.M{"_id": userID},
			bson.M{"$unset": bson.M{"profile_image": ""}},
			mongoReturnAfter(),
		).Decode(&user)
		if err != nil {
			http.Error(w, "Error updating user", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Profile image cleared successfully",
			"user":    publicUser(&user, baseURL(r)),
		})
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Image file is required for upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read image", http.StatusBadRequest)
		return
	}

	processed, err := utils.ProcessProfileImage(raw)
	if err != nil {
		http.Error(w, "Unsupported image format", http.StatusBadRequest)
		return
	}

	// Replace any previous image before writing the new one.
	if user.ProfileImage != nil {
		ic.deleteImage(*user.ProfileImage)
	}

	filename := fmt.Sprintf("profile_%s_%s", userID.Hex(), uuid.NewString())
	uploadOpts := options.GridFSUpload().SetMetadata(bson.M{
		"userId":      userID.Hex(),
		"contentType": "image/jpeg",
	})
	fileID, err := ic.Bucket.UploadFromStream(filename, bytes.NewReader(processed), uploadOpts)
	if err != nil {
		ic.Logger.Error("profile image upload failed", zap.Error(err))
		http.Error(w, "Error storing image", http.StatusInternalServerError)
		return
	}

	err = ic.UserCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"profile_image": fileID}},
		mongoReturnAfter(),
	).Decode(&user)
	if err != nil {
		http.Error(w, "Error updating user", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile image updated successfully",
		"user":    publicUser(&user, baseURL(r)),
	})
}

// GetProfileImage streams a stored profile image
func (ic *ImageController) GetProfileImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fileID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Valid image ID is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var fileDoc struct {
		Length int64 `bson:"length"`
	}
	err = ic.Bucket.GetFilesCollection().FindOne(ctx, bson.M{"_id": fileID}).Decode(&fileDoc)
	if err != nil {
		if !noDocuments(err) {
			ic.Logger.Error("image lookup failed", zap.Error(err))
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.FormatInt(fileDoc.Length, 10))

	if _, err := ic.Bucket.DownloadToStream(fileID, w); err != nil {
		ic.Logger.Error("profile image stream failed",
			zap.String("file_id", fileID.Hex()),
			zap.Error(err))
	}
}
