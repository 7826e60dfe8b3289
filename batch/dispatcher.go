package batch

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/logger"
	"github.com/google/uuid"
	"github.com/noobcash/noobcash-batch/executor"
	"github.com/noobcash/noobcash-batch/journal"
)

// Lines longer than this cannot be read
const maxLineLength = 1024 * 1024

type Options struct {
	SkipMalformed   bool   `long:"batch.skipmalformed" description:"Skip lines that are not a valid transaction instead of aborting the batch" toml:"skipmalformed"`
	FailFast        bool   `long:"batch.failfast" description:"Abort the batch as soon as an invocation of the CLI fails" toml:"failfast"`
	Strict          bool   `long:"batch.strict" description:"Validate recipients and amounts before invoking the CLI" toml:"strict"`
	RecipientPrefix string `long:"batch.recipientprefix" description:"Prefix that should be stripped from every recipient (e.g. \"id\")" toml:"recipientprefix"`
	Resume          bool   `long:"batch.resume" description:"Skip lines that were submitted successfully by a previous run" toml:"resume"`
}

// Journal keeps track of the lines that were submitted already
type Journal interface {
	Submitted(checksum string) map[int]bool
	Record(checksum string, line int) error
}

// ExitError is returned in fail fast mode when the CLI exits with a non zero code
type ExitError struct {
	Transaction Transaction
	Result      *executor.Result
}

func (err *ExitError) Error() string {
	message := fmt.Sprintf("line %d: CLI exited with code %d", err.Transaction.Line, err.Result.ExitCode)

	if err.Result.TimedOut {
		message = fmt.Sprintf("line %d: CLI timed out after %v", err.Transaction.Line, err.Result.Duration)
	}

	if stderr := strings.TrimSpace(string(err.Result.Stderr)); stderr != "" {
		message += ": " + stderr
	}

	return message
}

// Dispatcher invokes the CLI once for every transaction of a batch file
type Dispatcher struct {
	Options *Options
	CLI     *executor.Config
	Runner  executor.Runner

	// Optional
	Journal Journal
}

// Run dispatches all transactions of the file at the given path. The returned
// summary covers the lines processed until an error occurred
func (dispatcher *Dispatcher) Run(ctx context.Context, path string) (*Summary, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("could not open batch file: %w", err)
	}

	defer file.Close()

	reader, checksum, err := checksumBatch(file)

	if err != nil {
		return nil, fmt.Errorf("could not read batch file: %w", err)
	}

	return dispatcher.Dispatch(ctx, reader, checksum)
}

// checksumBatch hashes the batch file and returns a reader positioned at its
// start. Pipes and other files that cannot seek are read into memory
func checksumBatch(file *os.File) (io.Reader, string, error) {
	info, err := file.Stat()

	if err != nil {
		return nil, "", err
	}

	if !info.Mode().IsRegular() {
		var content bytes.Buffer

		checksum, err := journal.Checksum(io.TeeReader(file, &content))

		return &content, checksum, err
	}

	checksum, err := journal.Checksum(file)

	if err != nil {
		return nil, "", err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, "", err
	}

	return file, checksum, nil
}

// Dispatch reads transactions line by line and invokes the CLI for each of them in order
func (dispatcher *Dispatcher) Dispatch(ctx context.Context, reader io.Reader, checksum string) (*Summary, error) {
	options := dispatcher.Options

	if options == nil {
		options = &Options{}
	}

	summary := &Summary{
		RunID:    uuid.New().String(),
		Checksum: checksum,
	}

	var submitted map[int]bool

	if options.Resume && dispatcher.Journal != nil {
		submitted = dispatcher.Journal.Submitted(checksum)
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	for scanner.Scan() {
		summary.Lines++

		line := summary.Lines
		text := scanner.Text()

		if IsBlank(text) {
			summary.Skipped++
			continue
		}

		transaction, err := dispatcher.parse(options, line, text)

		if err != nil {
			if !options.SkipMalformed {
				return summary, err
			}

			logger.Warning("Skipping " + err.Error())
			summary.Skipped++
			continue
		}

		if submitted[line] {
			logger.Infof("Line %d was submitted already", line)
			summary.Resumed++
			continue
		}

		if err := dispatcher.submit(ctx, summary, *transaction, options.FailFast); err != nil {
			return summary, err
		}
	}

	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("could not read batch file: %w", err)
	}

	return summary, nil
}

func (dispatcher *Dispatcher) parse(options *Options, line int, text string) (*Transaction, error) {
	transaction, err := ParseLine(line, text)

	if err != nil {
		return nil, err
	}

	transaction.TrimRecipientPrefix(options.RecipientPrefix)

	if options.Strict {
		if err := transaction.Validate(); err != nil {
			return nil, err
		}
	}

	return transaction, nil
}

func (dispatcher *Dispatcher) submit(ctx context.Context, summary *Summary, transaction Transaction, failFast bool) error {
	args := dispatcher.CLI.Command(transaction.Recipient, transaction.Amount)
	result, err := dispatcher.Runner.Run(ctx, args)

	if err != nil {
		return fmt.Errorf("line %d: could not run CLI: %w", transaction.Line, err)
	}

	summary.add(transaction, result)

	if !result.Success() {
		exitErr := &ExitError{
			Transaction: transaction,
			Result:      result,
		}

		if failFast {
			return exitErr
		}

		logger.Warning(exitErr.Error())
		return nil
	}

	logger.Infof("Line %d: sent %s to %s: %s", transaction.Line, transaction.Amount, transaction.Recipient, strings.TrimSpace(string(result.Stdout)))

	// Dry runs did not submit anything
	if dispatcher.Journal != nil && !result.DryRun {
		if err := dispatcher.Journal.Record(summary.Checksum, transaction.Line); err != nil {
			logger.Warningf("Could not record line %d in journal: %v", transaction.Line, err)
		}
	}

	return nil
}
