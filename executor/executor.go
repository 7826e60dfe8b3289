package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/google/logger"
)

// Runner runs one invocation of the external CLI and blocks until it exits
type Runner interface {
	Run(ctx context.Context, args []string) (*Result, error)
}

// Result describes a finished invocation
type Result struct {
	Args     []string
	ExitCode int

	Stdout []byte
	Stderr []byte

	Duration time.Duration
	Attempts int

	// The invocation was killed after running longer than the timeout
	TimedOut bool
	// Nothing was executed
	DryRun bool
}

// Success returns whether the invocation exited with code 0
func (result *Result) Success() bool {
	return result.ExitCode == 0
}

// Config holds the options of the external CLI
type Config struct {
	Binary        string   `long:"cli.binary" description:"Path to the noobcash CLI executable (default: ./bin/noobcash-cli)" toml:"binary"`
	Args          []string `long:"cli.arg" description:"Extra argument passed to the CLI before the subcommand; can be repeated" toml:"args"`
	Subcommand    string   `long:"cli.subcommand" description:"Subcommand that submits a single transaction (default: t)" toml:"subcommand"`
	Timeout       int      `long:"cli.timeout" description:"Timeout in seconds of a single invocation; 0 disables it" toml:"timeout"`
	Retries       int      `long:"cli.retries" description:"How often a failed invocation should be retried" toml:"retries"`
	RetryInterval int      `long:"cli.retryinterval" description:"Seconds to wait between retries (default: 5)" toml:"retryinterval"`
	DryRun        bool     `long:"cli.dryrun" description:"Log the commands instead of executing them" toml:"dryrun"`
}

// SetDefaults fills in the options that were not set
func (config *Config) SetDefaults() {
	if config.Binary == "" {
		config.Binary = "./bin/noobcash-cli"
	}

	if config.Subcommand == "" {
		config.Subcommand = "t"
	}

	if config.RetryInterval == 0 {
		config.RetryInterval = 5
	}
}

// Command builds the arguments of the invocation that submits a transaction
func (config *Config) Command(recipient string, amount string) []string {
	args := make([]string, 0, len(config.Args)+3)
	args = append(args, config.Args...)

	return append(args, config.Subcommand, recipient, amount)
}

// NewRunner creates the Runner described by the config
func (config *Config) NewRunner() Runner {
	var runner Runner

	if config.DryRun {
		runner = &DryRun{Binary: config.Binary}
	} else {
		runner = &Exec{
			Binary:  config.Binary,
			Timeout: time.Duration(config.Timeout) * time.Second,
		}
	}

	if config.Retries > 0 {
		runner = &Retry{
			Runner:   runner,
			Retries:  config.Retries,
			Interval: time.Duration(config.RetryInterval) * time.Second,
		}
	}

	return runner
}

// Exec runs a binary as a subprocess
type Exec struct {
	Binary  string
	Timeout time.Duration

	// Env is appended to the environment of the current process
	Env []string
}

// Run executes the binary with the given arguments. A non zero exit code or a
// timeout is reported in the Result, only failures to run the process and a
// cancelled context are returned as error
func (runner *Exec) Run(ctx context.Context, args []string) (*Result, error) {
	runCtx := ctx

	if runner.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, runner.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(runCtx, runner.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if len(runner.Env) != 0 {
		cmd.Env = append(cmd.Environ(), runner.Env...)
	}

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Args:     args,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
		Attempts: 1,
	}

	if err != nil {
		// The batch was cancelled
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			result.ExitCode = -1
			result.TimedOut = true

			return result, nil
		}

		var exitErr *exec.ExitError

		if !errors.As(err, &exitErr) {
			return nil, err
		}

		result.ExitCode = exitErr.ExitCode()
	}

	return result, nil
}

// DryRun logs the command lines it is given instead of running them
type DryRun struct {
	Binary string

	Commands [][]string
}

func (runner *DryRun) Run(ctx context.Context, args []string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runner.Commands = append(runner.Commands, args)
	logger.Info("Dry run: " + runner.Binary + " " + strings.Join(args, " "))

	return &Result{
		Args:     args,
		Attempts: 1,
		DryRun:   true,
	}, nil
}

// Retry runs a failed invocation again until it succeeds or the retries are used up
type Retry struct {
	Runner Runner

	Retries  int
	Interval time.Duration
}

func (runner *Retry) Run(ctx context.Context, args []string) (*Result, error) {
	result, err := runner.Runner.Run(ctx, args)

	for attempt := 1; err == nil && !result.Success() && attempt <= runner.Retries; attempt++ {
		if result.TimedOut {
			logger.Warningf("Invocation %v timed out. Retrying in %v", args, runner.Interval)
		} else {
			logger.Warningf("Invocation %v exited with code %v. Retrying in %v", args, result.ExitCode, runner.Interval)
		}

		timer := time.NewTimer(runner.Interval)

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()

		case <-timer.C:
		}

		result, err = runner.Runner.Run(ctx, args)

		if err == nil {
			result.Attempts = attempt + 1
		}
	}

	return result, err
}
