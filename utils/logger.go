package utils

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger builds the process-wide logger. Set APP_ENV=development for
// console output with debug level.
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
