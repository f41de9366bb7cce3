package config

import (
	"log"
	"os"

	"go.uber.org/zap"
)

// InitLogger installs the global zap logger used by the background loops
// (tick, location watch, queue drain). Production encoding unless GIN_MODE
// says otherwise.
func InitLogger() {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("GIN_MODE") == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
}
