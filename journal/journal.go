package journal

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/logger"
	"golang.org/x/crypto/sha3"
)

type Journal struct {
	FileName string `long:"journal.file" description:"File in which the submitted lines of every batch are stored (default: <datadir>/journal.json)" toml:"file"`
	Disabled bool   `long:"journal.disable" description:"Do not record submitted lines" toml:"disable"`

	// Map between the checksum of a batch file and the lines of it that were submitted successfully
	submitted map[string][]int
}

// Init reads the journal file or starts with an empty journal if it does not exist yet
func (journal *Journal) Init() error {
	journal.submitted = map[string][]int{}

	if journal.Disabled || journal.FileName == "" {
		return nil
	}

	logger.Info("Opening journal: " + journal.FileName)

	file, err := os.Open(journal.FileName)

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("Could not find journal file. Starting from scratch")
			return journal.write()
		}

		return err
	}

	defer file.Close()

	if err := json.NewDecoder(file).Decode(&journal.submitted); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if journal.submitted == nil {
		journal.submitted = map[string][]int{}
	}

	return nil
}

// Submitted returns the lines of a batch that were already submitted
func (journal *Journal) Submitted(checksum string) map[int]bool {
	lines := make(map[int]bool)

	for _, line := range journal.submitted[checksum] {
		lines[line] = true
	}

	return lines
}

// Record marks a line of a batch as submitted and writes the journal to the disk
func (journal *Journal) Record(checksum string, line int) error {
	if journal.submitted == nil {
		journal.submitted = map[string][]int{}
	}

	lines := journal.submitted[checksum]
	index := sort.SearchInts(lines, line)

	if index < len(lines) && lines[index] == line {
		return nil
	}

	lines = append(lines, 0)
	copy(lines[index+1:], lines[index:])
	lines[index] = line

	journal.submitted[checksum] = lines

	if journal.Disabled || journal.FileName == "" {
		return nil
	}

	return journal.write()
}

func (journal *Journal) write() error {
	if err := os.MkdirAll(filepath.Dir(journal.FileName), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(journal.submitted, "", "  ")

	if err != nil {
		return err
	}

	// Write to a temporary file first so that a crash cannot leave a truncated journal behind
	tmpFile := journal.FileName + ".tmp"

	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmpFile, journal.FileName)
}

// Checksum calculates the hex encoded SHA3-256 hash of a batch file
func Checksum(reader io.Reader) (string, error) {
	hash := sha3.New256()

	if _, err := io.Copy(hash, reader); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
