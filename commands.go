package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	envFile    string
	apiURL     string
)

var rootCmd = &cobra.Command{
	Use:   "library",
	Short: "Library catalog api server and console",
	Long: `Library manages a catalog of authors, publishers, categories, books and
borrowings. The api is served over http on top of redis, boltdb or postgres.
The console is an interactive terminal client of that api.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the catalog api server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive catalog console",
	Long: `Open the interactive catalog console. Each page lists one kind of record
and lets you create, edit and delete them. Empty pages are seeded with
sample records the first time they are loaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load every page once and seed the empty ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./config.yml", "Path of the yaml configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "./config.env", "Path of the optional env file")
	consoleCmd.Flags().StringVar(&apiURL, "api-url", "", "Base url of the catalog api (overrides console.api_url)")
	seedCmd.Flags().StringVar(&apiURL, "api-url", "", "Base url of the catalog api (overrides console.api_url)")

	rootCmd.AddCommand(serveCmd, consoleCmd, seedCmd)
}

// setupCommand loads the configuration and builds a logger writing to a
// rotating file named after the command.
func setupCommand(prefix string, quiet bool) (*Config, *zap.Logger, func(), error) {
	config, err := LoadAndInitConfigs(configFile, envFile, GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}
	if apiURL != "" {
		config.Console.APIURL = apiURL
	}

	if err = os.MkdirAll(config.LogFolder, 0o700); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logging folder: %s", err)
	}

	clock := NewTickClock(NewClock(config.IsProduction))
	writer := NewRSyncWriter(config, clock, prefix)
	logger, flusher := SetupLogging(config, writer, clock, quiet)
	cleanup := func() {
		if err := flusher(); err != nil {
			fmt.Fprintln(os.Stderr, "error during logs flushing: ", err)
		}
		if err := writer.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "error during closing of log file: ", err)
		}
	}
	return config, logger, cleanup, nil
}

func runServe() error {
	config, logger, cleanup, err := setupCommand("serve", false)
	if err != nil {
		return err
	}
	defer cleanup()

	app, err := NewApp(config, logger, NewTickClock(NewClock(config.IsProduction)))
	if err != nil {
		logger.Error("application failed to initialize", zap.Error(err))
		return err
	}
	return app.Run()
}

func runConsole() error {
	config, logger, cleanup, err := setupCommand("console", true)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notices := NewConsoleNotifier(NewClock(config.IsProduction), 32)
	catalog := NewCatalog(logger, &config.Console, Notifiers{notices, NewLogNotifier(logger)})
	model := NewConsoleModel(ctx, catalog.Pages(), notices.Notices(), catalog.MountAll)

	logger.Info("console starting", zap.String("api.url", config.Console.APIURL))
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		logger.Error("console exited", zap.Error(err))
		return err
	}
	return nil
}

func runSeed() error {
	config, logger, cleanup, err := setupCommand("seed", false)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog := NewCatalog(logger, &config.Console, NewLogNotifier(logger))
	if err := catalog.MountAll(ctx); err != nil {
		logger.Error("seeding failed", zap.Error(err))
		return err
	}
	for _, p := range catalog.Pages() {
		logger.Info("page loaded", zap.String("page", p.Title()), zap.Int("records", len(p.Rows())))
	}
	return nil
}
