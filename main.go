package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/logger"
	"github.com/noobcash/noobcash-batch/batch"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, path, err := loadConfig(args, os.Stdout)

	if err != nil {
		var usageErr *usageError

		switch {
		case errors.Is(err, errHelpShown):
			return 0

		case errors.As(err, &usageErr):
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, "Usage: "+applicationName+" "+usage)
			return 2

		default:
			fmt.Fprintln(os.Stderr, "Could not load config:", err)
			return 1
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		fmt.Fprintln(os.Stderr, "Could not create data directory:", err)
		return 1
	}

	closeLogger, err := initLogger(cfg.LogFile)

	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not initialize logger:", err)
		return 1
	}

	defer closeLogger()

	logConfig(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !checkError("journal", cfg.Journal.Init(), true) {
		return 1
	}

	checkError("Discord", cfg.Discord.Init(), false)
	defer cfg.Discord.Close()

	dispatcher := &batch.Dispatcher{
		Options: cfg.Batch,
		CLI:     cfg.CLI,
		Runner:  cfg.CLI.NewRunner(),
		Journal: cfg.Journal,
	}

	name := filepath.Base(path)

	logger.Info("Dispatching transactions of " + path + " with " + cfg.CLI.Binary)
	cfg.Discord.SendMessage("Started batch `" + name + "`")

	summary, err := dispatcher.Run(ctx, path)

	if summary != nil {
		logger.Info("Batch " + summary.RunID + ": " + summary.String())
	}

	if err != nil {
		logger.Error("Batch " + name + " failed: " + err.Error())
		cfg.Discord.SendMessage("Batch `" + name + "` failed: " + err.Error())

		return 1
	}

	cfg.Discord.SendMessage("Finished batch `" + name + "`: " + summary.String())

	return 0
}

// checkError logs an initialization error and returns whether it is safe to continue
func checkError(service string, err error, fatal bool) bool {
	if err == nil {
		return true
	}

	message := "Could not initialize " + service + ": " + err.Error()

	if fatal {
		logger.Error(message)
		return false
	}

	logger.Warning(message)
	return true
}
