package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_Persistence(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "data", "journal.json")

	journal := &Journal{FileName: fileName}
	require.NoError(t, journal.Init())

	_, err := os.Stat(fileName)
	require.NoError(t, err)

	require.NoError(t, journal.Record("abc", 3))
	require.NoError(t, journal.Record("abc", 1))
	require.NoError(t, journal.Record("abc", 3))
	require.NoError(t, journal.Record("def", 2))

	reopened := &Journal{FileName: fileName}
	require.NoError(t, reopened.Init())

	assert.Equal(t, map[int]bool{1: true, 3: true}, reopened.Submitted("abc"))
	assert.Equal(t, map[int]bool{2: true}, reopened.Submitted("def"))
	assert.Empty(t, reopened.Submitted("unknown"))
}

func TestJournal_EmptyFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "journal.json")
	require.NoError(t, os.WriteFile(fileName, nil, 0600))

	journal := &Journal{FileName: fileName}
	require.NoError(t, journal.Init())
	assert.Empty(t, journal.Submitted("abc"))
}

func TestJournal_Corrupted(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "journal.json")
	require.NoError(t, os.WriteFile(fileName, []byte("{not json"), 0600))

	journal := &Journal{FileName: fileName}
	assert.Error(t, journal.Init())
}

func TestJournal_Disabled(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "journal.json")

	journal := &Journal{FileName: fileName, Disabled: true}
	require.NoError(t, journal.Init())
	require.NoError(t, journal.Record("abc", 1))

	// Lines are still tracked in memory for the current run
	assert.Equal(t, map[int]bool{1: true}, journal.Submitted("abc"))

	_, err := os.Stat(fileName)
	assert.True(t, os.IsNotExist(err))
}

func TestChecksum(t *testing.T) {
	first, err := Checksum(strings.NewReader("alice 10\nbob 5\n"))
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := Checksum(strings.NewReader("alice 10\nbob 5\n"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := Checksum(strings.NewReader("alice 10\n"))
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	// SHA3-256 of the empty string
	empty, err := Checksum(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a", empty)
}
