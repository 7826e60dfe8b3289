package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jessevdk/go-flags"
	"github.com/noobcash/noobcash-batch/batch"
	"github.com/noobcash/noobcash-batch/discord"
	"github.com/noobcash/noobcash-batch/executor"
	"github.com/noobcash/noobcash-batch/journal"
)

const applicationName = "noobcash-batch"
const version = "1.0.0"

const usage = "[options] <file>"

// errHelpShown is returned after the help or the version was printed
var errHelpShown = errors.New("help shown")

type usageError struct {
	args []string
}

func (err *usageError) Error() string {
	return fmt.Sprintf("expected 1 argument, %d were given", len(err.args))
}

type helpOptions struct {
	ShowHelp    bool `long:"help" short:"h" description:"Show help"`
	ShowVersion bool `long:"version" short:"v" description:"Show version number"`
}

type config struct {
	DataDir    string `long:"datadir" short:"d" description:"Data directory of noobcash-batch" toml:"datadir"`
	ConfigPath string `long:"configpath" description:"Path to the config file" toml:"-"`
	LogFile    string `long:"logfile" description:"Path to the log file" toml:"logfile"`

	Batch   *batch.Options   `group:"Batch" toml:"batch"`
	CLI     *executor.Config `group:"CLI" toml:"cli"`
	Journal *journal.Journal `group:"Journal" toml:"journal"`
	Discord *discord.Discord `group:"Discord" toml:"discord"`

	Help *helpOptions `group:"Help Options" toml:"-"`
}

func newConfig() *config {
	return &config{
		Batch:   &batch.Options{},
		CLI:     &executor.Config{},
		Journal: &journal.Journal{},
		Discord: &discord.Discord{},
		Help:    &helpOptions{},
	}
}

func newParser(cfg *config, options flags.Options) *flags.Parser {
	parser := flags.NewParser(cfg, options)
	parser.Name = applicationName
	parser.Usage = usage

	return parser
}

// loadConfig parses the command line arguments and the config file. It
// returns the config and the path of the batch file
func loadConfig(args []string, out io.Writer) (*config, string, error) {
	cfg := newConfig()

	// Ignore unknown flags when parsing command line arguments the first time
	// so that the "unknown flag" error doesn't show up twice
	_, _ = newParser(cfg, flags.IgnoreUnknown).ParseArgs(args)

	if cfg.Help.ShowHelp {
		newParser(cfg, flags.None).WriteHelp(out)
		return nil, "", errHelpShown
	}

	if cfg.Help.ShowVersion {
		fmt.Fprintln(out, applicationName, "version", version)
		return nil, "", errHelpShown
	}

	explicitConfigPath := cfg.ConfigPath != ""
	cfg.updateConfigPath()

	if _, err := toml.DecodeFile(cfg.ConfigPath, cfg); err != nil {
		if explicitConfigPath || !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("could not read config file: %w", err)
		}
	}

	// Parse flags again to override the config file
	rest, err := newParser(cfg, flags.PassDoubleDash).ParseArgs(args)

	if err != nil {
		return nil, "", err
	}

	if len(rest) != 1 {
		return nil, "", &usageError{args: rest}
	}

	cfg.updateDefaultPaths()
	cfg.CLI.SetDefaults()

	return cfg, rest[0], nil
}

// updateConfigPath resolves the data directory and the config file. The other
// paths depend on a data directory that might still be set by the config file
func (cfg *config) updateConfigPath() {
	if cfg.DataDir == "" {
		cfg.DataDir = getDataDir(applicationName)
	}

	cfg.DataDir = cleanPath(cfg.DataDir)

	if cfg.ConfigPath == "" {
		cfg.ConfigPath = filepath.Join(cfg.DataDir, applicationName+".toml")
	}
}

func (cfg *config) updateDefaultPaths() {
	cfg.updateConfigPath()

	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, applicationName+".log")
	}

	if cfg.Journal.FileName == "" {
		cfg.Journal.FileName = filepath.Join(cfg.DataDir, "journal.json")
	}
}

func getDataDir(application string) string {
	homeDir, err := os.UserHomeDir()

	if err != nil {
		homeDir = "."
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", capitalize(application))

	case "windows":
		return filepath.Join(homeDir, "AppData", "Local", capitalize(application))

	default:
		return filepath.Join(homeDir, "."+application)
	}
}

func capitalize(value string) string {
	if value == "" {
		return value
	}

	return strings.ToUpper(value[:1]) + value[1:]
}

func cleanPath(path string) string {
	return filepath.Clean(os.ExpandEnv(path))
}
