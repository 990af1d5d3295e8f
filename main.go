package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mrlokans/flashcards/internal/cli"
	"github.com/mrlokans/flashcards/internal/config"
	"github.com/mrlokans/flashcards/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// a missing .env file is fine
	_ = godotenv.Load()

	cfg := config.NewConfig()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	var cmd *cli.JobCommand
	switch command {
	case "sync":
		cmd = cli.NewSyncCommand(cfg)
	case "export-docs":
		cmd = cli.NewExportDocsCommand(cfg)
	case "backup":
		cmd = cli.NewBackupCommand(cfg)
	case "notify":
		cmd = cli.NewNotifyCommand(cfg)

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cmd.Run(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve        Start the scheduler and the status API (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  sync         Synchronize the local collection with the remote account\n")
	fmt.Fprintf(os.Stderr, "  export-docs  Export every deck and rebuild the download site\n")
	fmt.Fprintf(os.Stderr, "  backup       Email a full export of the collection\n")
	fmt.Fprintf(os.Stderr, "  notify       Post the number of cards due today to the chat\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
