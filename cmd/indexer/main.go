package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goran-ethernal/StarkIndexor/internal/common"
	"github.com/goran-ethernal/StarkIndexor/internal/config"
	"github.com/goran-ethernal/StarkIndexor/internal/db"
	idx "github.com/goran-ethernal/StarkIndexor/internal/indexer"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/internal/metrics"
	"github.com/goran-ethernal/StarkIndexor/internal/migrations"
	"github.com/goran-ethernal/StarkIndexor/internal/validation"
	"github.com/goran-ethernal/StarkIndexor/pkg/api"
	pkgconfig "github.com/goran-ethernal/StarkIndexor/pkg/config"
	"github.com/goran-ethernal/StarkIndexor/pkg/indexer"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
	banner  = `
╔═══════════════════════════════════════════╗
║            StarkIndexor v%s             ║
║   Starknet stealth announcement indexer   ║
╚═══════════════════════════════════════════╝
`

	shutdownTimeout = 10 * time.Second
)

var (
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "indexer",
	Short: "StarkIndexor - Starknet stealth announcement indexer",
	Long: `StarkIndexor polls the stealth announcer and meta address registry contracts
of one or more Starknet networks, stores what they emit and serves it over HTTP.`,
	Version: version,
	RunE:    runIndexer,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported chain families",
	Long:  `List all chain families that can be used in the "chain" field of an indexer configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Available chains:")
		chains := indexer.ListRegistered()
		if len(chains) == 0 {
			fmt.Println("  (no chains registered)")
			return
		}
		for _, c := range chains {
			fmt.Printf("  - %s\n", c)
		}
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		database, err := db.New(cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		log := logger.NewComponentLoggerFromConfig(common.ComponentStore, cfg.Logging)
		if err := migrations.RunMigrations(log, database); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		log.Info("Database is up to date")
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := &jsonschema.Reflector{FieldNameTag: "json", RequiredFromJSONSchemaTags: true}
		schema := r.Reflect(&pkgconfig.Config{})

		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	rootCmd.AddCommand(listCmd, migrateCmd, schemaCmd)
}

func runIndexer(cmd *cobra.Command, args []string) error {
	fmt.Printf(banner, version)

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := logger.NewComponentLoggerFromConfig(common.ComponentIndexerManager, cfg.Logging)

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics,
			logger.NewComponentLoggerFromConfig(common.ComponentIndexer, cfg.Logging))
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			if err := metricsServer.Stop(stopCtx); err != nil {
				log.Warnf("Failed to stop metrics server: %v", err)
			}
		}()
	}

	database, err := db.New(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(logger.NewComponentLoggerFromConfig(common.ComponentStore, cfg.Logging),
		database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	maintenance := db.NewMaintenance(database, cfg.DB,
		logger.NewComponentLoggerFromConfig(common.ComponentMaintenance, cfg.Logging))
	if err := maintenance.Start(ctx); err != nil {
		return fmt.Errorf("failed to start database maintenance: %w", err)
	}
	defer func() {
		if err := maintenance.Stop(); err != nil {
			log.Warnf("Failed to stop database maintenance: %v", err)
		}
	}()

	validator := validation.NewValidator()
	deps := indexer.Dependencies{
		DB:          database,
		Maintenance: maintenance,
		Validator:   validator,
	}

	log.Infof("Creating %d indexer(s)...", len(cfg.Indexers))
	manager, err := idx.NewManager(ctx, cfg.Indexers, deps,
		logger.NewComponentLoggerFromConfig(common.ComponentIndexer, cfg.Logging))
	if err != nil {
		return fmt.Errorf("failed to create indexers: %w", err)
	}

	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start indexers: %w", err)
	}
	defer func() {
		if err := manager.Stop(); err != nil {
			log.Warnf("Failed to stop indexers: %v", err)
		}
	}()

	for _, key := range manager.Keys() {
		log.Infof("✓ Indexing %s", key)
	}

	if cfg.API != nil && cfg.API.Enabled {
		apiServer := api.NewServer(cfg.API, manager, validator,
			logger.NewComponentLoggerFromConfig(common.ComponentAPI, cfg.Logging))
		go func() {
			if err := apiServer.Start(ctx); err != nil {
				log.Errorf("API server error: %v", err)
			}
		}()
	}

	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	return nil
}
