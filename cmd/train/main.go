// Package main is the offline trainer. It synthesizes a labeled population,
// aggregates it into feature vectors, fits the classifier, reports held-out
// metrics, and persists the model artifact the API server loads.
package main

import (
	"flag"
	"path/filepath"

	"github.com/fraudwatch/fraudwatch/internal/config"
	"github.com/fraudwatch/fraudwatch/internal/database"
	"github.com/fraudwatch/fraudwatch/internal/modules/detector"
	"github.com/fraudwatch/fraudwatch/internal/modules/events"
	"github.com/fraudwatch/fraudwatch/internal/modules/features"
	"github.com/fraudwatch/fraudwatch/internal/modules/synth"
	"github.com/fraudwatch/fraudwatch/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	users := flag.Int("users", cfg.TrainUsers, "number of synthetic users to generate")
	seed := flag.Int64("seed", cfg.Seed, "random seed for generation and training")
	out := flag.String("out", cfg.ModelPath, "path for the trained model artifact")
	persist := flag.Bool("persist", false, "store the generated dataset in the events database")
	flag.Parse()

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Int("users", *users).Int64("seed", *seed).Msg("Generating training population")

	generator := synth.NewGenerator(*seed)
	dataset := generator.GeneratePopulation(*users)

	fraudCount := 0
	for _, fraudulent := range dataset.Labels {
		if fraudulent {
			fraudCount++
		}
	}
	log.Info().
		Int("trades", len(dataset.Trades)).
		Int("transactions", len(dataset.Transactions)).
		Int("fraudulent_users", fraudCount).
		Msg("Population generated")

	vectors, err := features.Compute(dataset.Trades, dataset.Transactions)
	if err != nil {
		log.Fatal().Err(err).Msg("Feature aggregation failed")
	}

	ids, rows := features.Matrix(vectors)
	labels := make([]bool, len(ids))
	for i, id := range ids {
		labels[i] = dataset.Labels[id]
	}

	model := detector.New(*seed)
	report, err := model.Train(rows, features.Schema(), labels)
	if err != nil {
		log.Fatal().Err(err).Msg("Training failed")
	}

	log.Info().
		Int("train_size", report.TrainSize).
		Int("test_size", report.TestSize).
		Float64("accuracy", report.Accuracy).
		Float64("fraud_precision", report.Fraudulent.Precision).
		Float64("fraud_recall", report.Fraudulent.Recall).
		Float64("fraud_f1", report.Fraudulent.F1).
		Int("fraud_support", report.Fraudulent.Support).
		Msg("Model trained")

	if err := model.Save(*out); err != nil {
		log.Fatal().Err(err).Str("path", *out).Msg("Failed to save model artifact")
	}
	log.Info().Str("path", *out).Msg("Model artifact saved")

	if *persist {
		eventsDB, err := database.New(database.Config{
			Path:    filepath.Join(cfg.DataDir, "events.db"),
			Profile: database.ProfileEvents,
			Name:    "events",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open events database")
		}
		defer eventsDB.Close()

		repo, err := events.NewRepository(eventsDB, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event repository")
		}
		if err := repo.Reset(); err != nil {
			log.Fatal().Err(err).Msg("Failed to reset event store")
		}
		if err := repo.SaveDataset(dataset.Trades, dataset.Transactions, dataset.Labels); err != nil {
			log.Fatal().Err(err).Msg("Failed to persist dataset")
		}
	}
}
