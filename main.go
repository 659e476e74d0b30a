package main

import (
	"context"
	"log"

	"github.com/Janmenjay30/CodeCircle/app"
	"github.com/Janmenjay30/CodeCircle/config"
	"github.com/Janmenjay30/CodeCircle/utils"
)

func main() {
	config.LoadDotEnv()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	utils.SetLogLevel(cfg.Logging.Level)
	if cfg.IsDebugMode() {
		utils.SetLogLevel("DEBUG")
	}

	ctx := context.Background()
	application, err := app.NewWithConfig(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := application.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
