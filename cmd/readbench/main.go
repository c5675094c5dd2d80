// Package main implements the readbench binary.
// It seeds a small database file, then opens ever more concurrent read-only
// connections against it until one level fails or the ceiling is reached.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/arkilian/readbench/internal/app"
	"github.com/arkilian/readbench/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

// cliFlags holds the command line overrides. Empty values leave the
// configuration untouched.
type cliFlags struct {
	configFile string
	path       string
	engine     string
	reportPath string
}

func main() {
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	var (
		flags       cliFlags
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&flags.configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&flags.path, "path", "", "Database file to seed and read")
	flag.StringVar(&flags.engine, "engine", "", "Embedded SQL engine: sqlite3, sqlite")
	flag.StringVar(&flags.reportPath, "report", "", "Write a JSON run report to this path")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "readbench - concurrent read connection benchmark for embedded SQL files\n\n")
		fmt.Fprintf(os.Stderr, "Usage: readbench [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  readbench\n")
		fmt.Fprintf(os.Stderr, "  MAX_CONNECTIONS=200 STEP=20 readbench --engine sqlite\n")
		fmt.Fprintf(os.Stderr, "  readbench --config /etc/readbench/config.yaml --report run.json\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MAX_CONNECTIONS          Largest level to attempt (default 1000)\n")
		fmt.Fprintf(os.Stderr, "  STEP                     First level and increment (default 50)\n")
		fmt.Fprintf(os.Stderr, "  READBENCH_PATH           Database file (default benchmark.db)\n")
		fmt.Fprintf(os.Stderr, "  READBENCH_ENGINE         Engine (sqlite3, sqlite)\n")
		fmt.Fprintf(os.Stderr, "  READBENCH_REPORT_PATH    JSON run report path\n")
		fmt.Fprintf(os.Stderr, "  READBENCH_STORAGE_TYPE   Report storage (none, local, s3)\n")
		fmt.Fprintf(os.Stderr, "  READBENCH_METRICS_ADDR   Prometheus listen address\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("readbench version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := app.New(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	printBanner(cfg)

	// A signal stops the sweep before its next level
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if _, err := application.Run(ctx); err != nil {
		stop()
		log.Fatalf("Benchmark failed: %v", err)
	}
}

// loadDotEnv applies the variables in path without overriding ones already
// set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(flags cliFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error

	// Start with defaults or load from file
	if flags.configFile != "" {
		cfg, err = config.LoadFromFile(flags.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// Apply environment variables
	if err := config.LoadFromEnv(cfg); err != nil {
		return nil, err
	}

	// Apply command line flags (highest priority)
	if flags.path != "" {
		cfg.Path = flags.path
	}
	if flags.engine != "" {
		cfg.Engine = flags.engine
	}
	if flags.reportPath != "" {
		cfg.Report.Path = flags.reportPath
	}

	return cfg, nil
}

// printBanner prints the startup banner with configuration summary.
func printBanner(cfg *config.Config) {
	log.Printf("readbench %s", version)
	log.Printf("Configuration:")
	log.Printf("  Engine:          %s", cfg.Engine)
	log.Printf("  Path:            %s", cfg.Path)
	log.Printf("  Max connections: %d", cfg.MaxConnections)
	log.Printf("  Step:            %d", cfg.Step)
	if cfg.BusyTimeout > 0 {
		log.Printf("  Busy timeout:    %v", cfg.BusyTimeout)
	}
	if cfg.Report.Path != "" {
		log.Printf("  Report:          %s (compress=%t)", cfg.Report.Path, cfg.Report.Compress)
	}
	log.Printf("  Storage:         %s", cfg.Storage.Type)
	if cfg.Metrics.Addr != "" {
		log.Printf("  Metrics:         %s", cfg.Metrics.Addr)
	}
	log.Printf("")
}
