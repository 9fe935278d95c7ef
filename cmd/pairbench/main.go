// Package main implements the pairbench binary, an HTTP service that runs
// baseline and optimized variants of paired workloads and reports their
// measured cost.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/pairbench/pairbench/internal/app"
	"github.com/pairbench/pairbench/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		httpAddr    string
		storePath   string
		seedCount   int
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for data files")
	flag.StringVar(&httpAddr, "addr", "", "HTTP listen address")
	flag.StringVar(&storePath, "store", "", "SQLite record store path (empty = in-memory)")
	flag.IntVar(&seedCount, "seed-customers", 0, "Number of customers to seed (0 = config default)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pairbench - paired workload benchmarking service\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pairbench [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pairbench --addr :8080\n")
		fmt.Fprintf(os.Stderr, "  pairbench --store /data/pairbench/records.db --seed-customers 5000\n")
		fmt.Fprintf(os.Stderr, "  pairbench --config /etc/pairbench/config.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PAIRBENCH_HTTP_ADDR        HTTP listen address\n")
		fmt.Fprintf(os.Stderr, "  PAIRBENCH_DATA_DIR         Base directory for data files\n")
		fmt.Fprintf(os.Stderr, "  PAIRBENCH_STORE_PATH       SQLite record store path\n")
		fmt.Fprintf(os.Stderr, "  PAIRBENCH_SEED_CUSTOMERS   Number of customers to seed\n")
		fmt.Fprintf(os.Stderr, "  PAIRBENCH_FIXTURE_SOURCE   Fixture source (none, local, s3)\n")
		fmt.Fprintf(os.Stderr, "  PAIRBENCH_S3_BUCKET        S3 bucket for fixtures\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("pairbench version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := loadConfig(configFile, dataDir, httpAddr, storePath, seedCount)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	printBanner(cfg)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	if err := application.WaitForShutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration from file, environment, and command line
// flags, in increasing priority.
func loadConfig(configFile, dataDir, httpAddr, storePath string, seedCount int) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}
	if storePath != "" {
		cfg.Store.Path = storePath
		cfg.Store.InMemory = false
	}
	if seedCount > 0 {
		cfg.Seed.Customers = seedCount
	}

	return cfg, nil
}

// printBanner prints the startup banner with a configuration summary.
func printBanner(cfg *config.Config) {
	storeDesc := cfg.Store.Path
	if cfg.Store.InMemory || storeDesc == "" {
		storeDesc = "in-memory"
	}

	log.Printf("pairbench %s", version)
	log.Printf("Configuration:")
	log.Printf("  HTTP Addr:    %s", cfg.HTTP.Addr)
	log.Printf("  Data Dir:     %s", cfg.DataDir)
	log.Printf("  Record Store: %s", storeDesc)
	log.Printf("  Seed:         %d customers", cfg.Seed.Customers)
	log.Printf("  Fixture:      %s", cfg.Fixture.Source)
}
