package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tahcohcat/calmkid/config"
	"github.com/tahcohcat/calmkid/internal/database"
	"github.com/tahcohcat/calmkid/internal/logger"
	"github.com/tahcohcat/calmkid/internal/services"
)

var dbPath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "calmctl",
		Short:         "Operator tools for the CalmKid store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (defaults to database.path from config)")

	cmd.AddCommand(
		newCatalogCmd(),
		newBalanceCmd(),
		newGrantCmd(),
		newMoodCmd(),
		newReportCmd(),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌ "+err.Error())
		os.Exit(1)
	}
}

// openServices opens the configured store. The returned cleanup closes it.
func openServices() (*services.Services, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetGlobalLevel(logger.ParseLevel(cfg.Log.Level))

	path := cfg.Database.Path
	if dbPath != "" {
		path = dbPath
	}
	db, err := database.NewDB(path)
	if err != nil {
		return nil, nil, err
	}

	svc := services.New(db, services.Options{
		Timeout:  cfg.StoreTimeout(),
		Location: cfg.Location(),
	}, cfg.Suggestions.Limit)
	return svc, func() { _ = db.Close() }, nil
}
