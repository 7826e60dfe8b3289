package main

import (
	"encoding/json"
	"os"

	"github.com/google/logger"
)

// initLogger logs to stdout and appends to the log file. The returned
// function flushes and closes both
func initLogger(logFile string) (func(), error) {
	file, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)

	if err != nil {
		return nil, err
	}

	log := logger.Init(applicationName, true, false, file)

	return func() {
		log.Close()
		_ = file.Close()
	}, nil
}

func logConfig(cfg *config) {
	redacted := *cfg.Discord

	if redacted.Token != "" {
		redacted.Token = "<redacted>"
	}

	logger.Info("Loaded config: " + stringify(struct {
		DataDir    string
		ConfigPath string
		LogFile    string
		Batch      interface{}
		CLI        interface{}
		Journal    interface{}
		Discord    interface{}
	}{
		DataDir:    cfg.DataDir,
		ConfigPath: cfg.ConfigPath,
		LogFile:    cfg.LogFile,
		Batch:      cfg.Batch,
		CLI:        cfg.CLI,
		Journal:    cfg.Journal,
		Discord:    redacted,
	}))
}

func stringify(value interface{}) string {
	encoded, _ := json.Marshal(value)
	return string(encoded)
}
