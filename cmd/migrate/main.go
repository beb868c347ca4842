package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"staygrow/database"
	"staygrow/logging"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var databaseURL string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply StayGrow database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			logging.Setup(os.Getenv("STAYGROW_ENV"), "info")
		},
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "postgres connection string (defaults to $DATABASE_URL)")

	for _, c := range []struct{ use, short string }{
		{"up", "Apply all pending migrations"},
		{"down", "Roll back the most recent migration"},
		{"status", "Print the status of every migration"},
	} {
		command := c.use
		root.AddCommand(&cobra.Command{
			Use:   command,
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd.Context(), databaseURL, command)
			},
		})
	}

	return root
}

func run(ctx context.Context, databaseURL, command string) error {
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		err := fmt.Errorf("DATABASE_URL not set")
		log.Error().Err(err).Msg("cannot migrate")
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.Connect(connectCtx, databaseURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect")
		return err
	}
	defer db.Close()

	if err := database.Migrate(db, command); err != nil {
		log.Error().Err(err).Str("command", command).Msg("migration failed")
		return err
	}
	log.Info().Str("command", command).Msg("migrations complete")
	return nil
}
