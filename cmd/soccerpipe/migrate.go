package main

import (
	"fmt"

	"soccerpipe/internal/migrations"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the database schema",
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := loadConfig()
				if err := migrations.Up(cfg.DatabaseDSN()); err != nil {
					return err
				}
				log.Info().Msg("migrate up: complete")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := loadConfig()
				if err := migrations.Down(cfg.DatabaseDSN()); err != nil {
					return err
				}
				log.Info().Msg("migrate down: complete")
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the schema's current migration version",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := loadConfig()
				version, dirty, ok, err := migrations.Version(cfg.DatabaseDSN())
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("version: none")
					return nil
				}
				fmt.Printf("version: %d\n", version)
				fmt.Printf("dirty: %t\n", dirty)
				return nil
			},
		},
	)

	return migrate
}
