package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-donate/controllers"
	"go-donate/middleware"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// newTestRouter wires the full route table the way main.go does. The mongo
// client never reaches a server; short timeouts keep startup index creation
// from stalling the test.
func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	client, err := mongo.Connect(context.Background(),
		options.Client().
			ApplyURI("mongodb://localhost:27017").
			SetServerSelectionTimeout(50*time.Millisecond).
			SetConnectTimeout(50*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	})

	logger := zap.NewNop()
	imageController, err := controllers.NewImageController(client, logger)
	require.NoError(t, err)

	router := mux.NewRouter()
	router.Use(middleware.CORSMiddleware)
	RegisterRoutes(router,
		controllers.NewUserController(client, logger),
		controllers.NewDonationController(client, logger),
		controllers.NewDriverController(client, logger),
		controllers.NewLeaderboardController(client, logger),
		imageController,
		controllers.NewAnalysisController(logger),
	)
	return router
}

func TestPreflightGetsCORSHeaders(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{"/signup", "/donations", "/driver/location", "/leaderboard"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "http://app.local")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code, path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), path)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "OPTIONS", path)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization", path)
	}
}

func TestHealthCheckHasCORSHeaders(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
