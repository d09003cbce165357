// Javadexd is an MCP server that indexes Java APIs from git repositories.
//
// On startup it clones or syncs every configured repository, parses the Java
// sources into an in-memory index, and then serves query tools over the MCP
// stdio transport.
//
// Usage:
//
//	# Start with a config file
//	javadexd -config ~/.config/javadex/config.yaml
//
//	# Configure via environment
//	JAVADEX_LOGGING_LEVEL=debug javadexd
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/javadexlabs/javadex/internal/config"
	"github.com/javadexlabs/javadex/internal/indexer"
	"github.com/javadexlabs/javadex/internal/ingest"
	"github.com/javadexlabs/javadex/internal/logging"
	"github.com/javadexlabs/javadex/internal/mcp"
	"github.com/javadexlabs/javadex/internal/repository"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  javadexd            Start the MCP server on stdio\n")
			fmt.Fprintf(os.Stderr, "  javadexd version    Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printVersion() {
	fmt.Printf("javadexd\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires configuration, logging, the repository pipeline and the MCP
// server, then blocks until the context is canceled.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting javadexd",
		zap.String("version", version),
		zap.String("commit", gitCommit),
		zap.Int("repositories", len(cfg.Repositories)))

	manager, err := repository.NewManager(cfg.Storage.BaseDir,
		repository.WithLogger(logger.Named("repository")))
	if err != nil {
		return fmt.Errorf("initializing repository manager: %w", err)
	}

	index := indexer.New(logger.Named("indexer"))
	pipeline := ingest.New(manager, index, logger.Named("ingest"))

	specs := make([]repository.Spec, 0, len(cfg.Repositories))
	for _, repo := range cfg.Repositories {
		specs = append(specs, repository.Spec{URL: repo.URL, Branch: repo.Branch})
	}
	for _, report := range pipeline.Run(ctx, specs) {
		if !report.Indexed {
			logger.Warn("repository not indexed",
				zap.String("url", report.URL),
				zap.String("reason", report.Message))
		}
	}

	server, err := mcp.NewServer(&mcp.Config{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
		Logger:  logger.Named("mcp"),
	}, index, manager, pipeline)
	if err != nil {
		return fmt.Errorf("initializing MCP server: %w", err)
	}

	return server.Run(ctx)
}
