package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func main() {
	tagsFile := flag.String("tags", "data/tags.json", "JSON file with tags to import; empty to skip")
	ingredientsFile := flag.String("ingredients", "data/ingredients.json", "JSON file with ingredients to import; empty to skip")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})
	log := logging.Component("seed")

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *tagsFile != "" {
		var tags []types.TagInput
		if err := readJSON(*tagsFile, &tags); err != nil {
			log.Fatal().Err(err).Msg("failed to read tags")
		}
		n, err := service.NewTagService(db).ImportTags(ctx, tags)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to import tags")
		}
		log.Info().Int64("inserted", n).Int("read", len(tags)).Msg("imported tags")
	}

	if *ingredientsFile != "" {
		var ingredients []types.IngredientInput
		if err := readJSON(*ingredientsFile, &ingredients); err != nil {
			log.Fatal().Err(err).Msg("failed to read ingredients")
		}
		n, err := service.NewIngredientService(db).ImportIngredients(ctx, ingredients)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to import ingredients")
		}
		log.Info().Int64("inserted", n).Int("read", len(ingredients)).Msg("imported ingredients")
	}
}

func readJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
