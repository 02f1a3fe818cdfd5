// cmd/integrity audits the database and exits non-zero on any finding.
// Usage: go run ./cmd/integrity
package main

import (
	"context"
	"os"
	"time"

	"github.com/Orbeng/engser/internal/config"
	"github.com/Orbeng/engser/internal/infra"
	"github.com/Orbeng/engser/internal/integrity"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rep, err := integrity.Check(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("integrity check failed to run")
	}

	for _, t := range rep.MissingTables {
		log.Error().Str("table", t).Msg("missing table")
	}
	for _, q := range rep.Quotes {
		log.Error().
			Str("quote_id", q.QuoteID.String()).
			Str("quote_number", q.QuoteNumber).
			Str("total", q.Total.StringFixed(2)).
			Str("items_sum", q.ItemsSum.StringFixed(2)).
			Msg("quote total differs from item sum")
	}
	for _, it := range rep.Items {
		log.Error().
			Str("item_id", it.ItemID.String()).
			Str("quote_id", it.QuoteID.String()).
			Int("quantity", it.Quantity).
			Str("unit_value", it.UnitValue.StringFixed(2)).
			Str("total_value", it.TotalValue.StringFixed(2)).
			Msg("line total differs from quantity × unit value")
	}
	if rep.OrphanItems > 0 {
		log.Error().Int64("count", rep.OrphanItems).Msg("quote items without a parent quote")
	}

	if !rep.OK() {
		os.Exit(1)
	}
	log.Info().Msg("integrity check passed")
}
