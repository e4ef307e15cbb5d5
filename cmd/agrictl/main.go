package main

import (
	"os"

	config "agri-demand-api/configs"
	"agri-demand-api/pkg/logger"
)

func main() {
	config.LoadDotEnv()
	logger.Init("development", os.Getenv("LOG_LEVEL"))
	// stdout はJSON出力専用
	logger.SetOutput(os.Stderr)

	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("agrictl failed")
	}
}
