package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		recipient string
		amount    string
	}{
		{"space", "alice 10", "alice", "10"},
		{"tabs and padding", "\t bob\t\t5  ", "bob", "5"},
		{"carriage return", "id3 42\r", "id3", "42"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			transaction, err := ParseLine(7, test.text)
			require.NoError(t, err)

			assert.Equal(t, 7, transaction.Line)
			assert.Equal(t, test.recipient, transaction.Recipient)
			assert.Equal(t, test.amount, transaction.Amount)
		})
	}
}

func TestParseLine_Malformed(t *testing.T) {
	for _, text := range []string{"", "alice", "alice 10 extra"} {
		_, err := ParseLine(2, text)
		require.Error(t, err)

		assert.True(t, errors.Is(err, ErrMalformedLine))

		var lineErr *LineError
		require.True(t, errors.As(err, &lineErr))
		assert.Equal(t, 2, lineErr.Line)
		assert.Equal(t, text, lineErr.Text)
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \t\r"))
	assert.False(t, IsBlank(" a "))
}

func TestTransaction_TrimRecipientPrefix(t *testing.T) {
	transaction := &Transaction{Recipient: "id4", Amount: "10"}

	transaction.TrimRecipientPrefix("")
	assert.Equal(t, "id4", transaction.Recipient)

	transaction.TrimRecipientPrefix("id")
	assert.Equal(t, "4", transaction.Recipient)

	transaction.TrimRecipientPrefix("id")
	assert.Equal(t, "4", transaction.Recipient)
}

func TestTransaction_Validate(t *testing.T) {
	valid := []Transaction{
		{Recipient: "0", Amount: "1"},
		{Recipient: "12", Amount: "0.5"},
	}

	for _, transaction := range valid {
		assert.NoError(t, transaction.Validate(), transaction)
	}

	invalid := []Transaction{
		{Recipient: "alice", Amount: "10"},
		{Recipient: "-1", Amount: "10"},
		{Recipient: "1", Amount: "ten"},
		{Recipient: "1", Amount: "0"},
		{Recipient: "1", Amount: "-3"},
	}

	for _, transaction := range invalid {
		err := transaction.Validate()
		assert.True(t, errors.Is(err, ErrMalformedLine), transaction)
	}
}
