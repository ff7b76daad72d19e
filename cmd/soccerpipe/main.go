// Command soccerpipe is the unified entrypoint for the youth-soccer
// ingestion pipeline: one-shot operations (scrape, promote, infer-links,
// rebuild, swap) and the long-running worker that schedules them on cron.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("soccerpipe: command failed")
	}
}

// setupLogger configures the zerolog logger: pretty console output in
// development, plain JSON otherwise.
func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}
