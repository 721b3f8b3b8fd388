package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/mattjoyce/taskbridge/internal/asana"
	"github.com/mattjoyce/taskbridge/internal/bridge"
	"github.com/mattjoyce/taskbridge/internal/config"
	"github.com/mattjoyce/taskbridge/internal/events"
	"github.com/mattjoyce/taskbridge/internal/journal"
	"github.com/mattjoyce/taskbridge/internal/log"
	"github.com/mattjoyce/taskbridge/internal/webhook"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "start":
		os.Exit(runStart(args))
	case "config":
		os.Exit(runConfigNoun(args))
	case "journal":
		os.Exit(runJournalNoun(args))
	case "version":
		fmt.Printf("taskbridge version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`taskbridge - GitHub PR webhook to Asana board synchronizer

Usage:
  taskbridge <command> [flags]

Commands:
  start             Run the webhook server in the foreground
  config check      Validate configuration
  journal list      Show recent delivery journal entries
  version           Show version information
  help              Show this help message
`)
}

func runConfigNoun(args []string) int {
	if len(args) > 0 && isHelpToken(args[0]) {
		fmt.Println("Usage: taskbridge config <action>\n\nActions:\n  check    Validate configuration")
		return 0
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: taskbridge config check [--config PATH]")
		return 1
	}

	switch args[0] {
	case "check":
		return runConfigCheck(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", args[0])
		return 1
	}
}

func runJournalNoun(args []string) int {
	if len(args) > 0 && isHelpToken(args[0]) {
		fmt.Println("Usage: taskbridge journal <action>\n\nActions:\n  list    Show recent delivery journal entries")
		return 0
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: taskbridge journal list [--config PATH] [--limit N] [--json]")
		return 1
	}

	switch args[0] {
	case "list":
		return runJournalList(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown journal action: %s\n", args[0])
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

// loadConfig resolves the config path (flag, then discovery) and loads it.
// A local .env is applied first so ${VAR} interpolation can see it.
func loadConfig(configPath string) (*config.Config, string, error) {
	_ = godotenv.Load()

	if configPath == "" {
		discovered, err := config.Discover()
		if err != nil {
			return nil, "", err
		}
		configPath = discovered
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, configPath, nil
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")
	logger.Info("taskbridge starting", "version", version, "config", resolvedPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var jrnl webhook.Journal
	if cfg.State.Path != "" {
		store, err := journal.Open(ctx, cfg.State.Path)
		if err != nil {
			logger.Error("failed to open journal", "path", cfg.State.Path, "error", err)
			return 1
		}
		defer store.Close()
		logger.Info("delivery journal opened", "path", cfg.State.Path)
		jrnl = store
	}

	client := asana.NewClient(cfg.Asana.BaseURL, cfg.Asana.Token, cfg.Asana.Timeout.Std())
	syncer := bridge.NewSyncer(client, bridge.Sections{
		NotStarted: cfg.Board.NotStartedGID,
		InDev:      cfg.Board.InDevGID,
		InPR:       cfg.Board.InPRGID,
		MergedDone: cfg.Board.MergedDoneGID,
	}, log.WithComponent("bridge"))

	hub := events.NewHub(256)

	server := webhook.New(webhook.Config{
		Listen:          cfg.Webhook.Listen,
		Path:            cfg.Webhook.Path,
		Secret:          cfg.Webhook.Secret,
		SignatureHeader: cfg.Webhook.SignatureHeader,
		MaxBodySize:     cfg.Webhook.MaxBodySize,
		DebugEvents:     cfg.Service.DebugEvents,
	}, syncer, jrnl, hub, log.WithComponent("webhook"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("webhook: %w", err)
		}
	}()

	logger.Info("taskbridge running (press Ctrl+C to stop)")

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	case err := <-errCh:
		logger.Error("component failed", "error", err)
		cancel()
		return 1
	}

	logger.Info("taskbridge stopped")
	return 0
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	_, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config check FAILED: %v\n", err)
		return 1
	}

	fmt.Printf("Config check PASSED: %s\n", resolvedPath)
	return 0
}

func runJournalList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	limit := fs.Int("limit", 20, "Maximum entries to show")
	jsonOut := fs.Bool("json", false, "Output in JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if cfg.State.Path == "" {
		fmt.Fprintln(os.Stderr, "Journaling is disabled (state.path is not set)")
		return 1
	}

	ctx := context.Background()
	store, err := journal.Open(ctx, cfg.State.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open journal: %v\n", err)
		return 1
	}
	defer store.Close()

	entries, err := store.List(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list journal: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RECEIVED\tDELIVERY\tACTION\tOUTCOME\tTASK\tERROR")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ReceivedAt.Format("2006-01-02 15:04:05"),
			e.DeliveryID, e.Action, e.Outcome, e.TaskGID, e.Error)
	}
	_ = w.Flush()
	return 0
}
