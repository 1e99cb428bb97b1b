package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tradeops/backoffice/internal/config"
	"github.com/tradeops/backoffice/internal/logging"
	"github.com/tradeops/backoffice/internal/repository"
	"github.com/tradeops/backoffice/internal/repository/memory"
	"github.com/tradeops/backoffice/internal/repository/postgres"
	"github.com/tradeops/backoffice/internal/service"
)

var (
	orderFlag   string
	asOfFlag    string
	fixtureFlag string
	rolesFlag   string
	localeFlag  string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "declare",
	Short: "Compute the customs declaration of a purchase order",
	Long: `declare reconciles the invoice lines of one purchase order against its
packing lists and prints the declaration rows and GTIP x type summary as JSON.

Records are read from the database configured by the usual DB_* variables,
or from a JSON fixture with --fixture.

Examples:
  declare --order 6f1c...            # read from the database
  declare --order 6f1c... --fixture po.json --as-of 2024-06-01`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&orderFlag, "order", "", "purchase order id")
	rootCmd.Flags().StringVar(&asOfFlag, "as-of", "", "compliance evaluation date, YYYY-MM-DD (default today)")
	rootCmd.Flags().StringVar(&fixtureFlag, "fixture", "", "read records from a JSON fixture instead of the database")
	rootCmd.Flags().StringVar(&rolesFlag, "roles", "", "attribute role mapping YAML (overrides ATTRIBUTE_ROLES_FILE)")
	rootCmd.Flags().StringVar(&localeFlag, "locale", "", "collation locale for row ordering (overrides DECLARATION_LOCALE)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	_ = rootCmd.MarkFlagRequired("order")
}

func run(cmd *cobra.Command, args []string) error {
	orderID, err := uuid.Parse(orderFlag)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", orderFlag, err)
	}

	asOf := time.Now()
	if asOfFlag != "" {
		asOf, err = time.Parse("2006-01-02", asOfFlag)
		if err != nil {
			return fmt.Errorf("invalid --as-of %q: expected YYYY-MM-DD", asOfFlag)
		}
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New("development", level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	declCfg := config.DeclarationConfig{FetchBatchSize: 100, Locale: "tr"}
	var repos *repository.Repositories

	if fixtureFlag != "" {
		store, err := memory.LoadFile(fixtureFlag)
		if err != nil {
			return err
		}
		repos = store.Repositories()
	} else {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		declCfg = cfg.Declaration

		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		repos = postgres.NewRepositories(db, logger)
	}

	if rolesFlag != "" {
		declCfg.AttributeRolesFile = rolesFlag
	}
	if localeFlag != "" {
		declCfg.Locale = localeFlag
	}
	engine, err := declCfg.EngineOptions()
	if err != nil {
		return err
	}

	result, err := service.NewDeclarationService(repos, engine, declCfg.FetchBatchSize, logger).
		Compute(context.Background(), orderID, asOf)
	if err != nil {
		logger.Debug("Declaration failed", zap.Error(err))
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
