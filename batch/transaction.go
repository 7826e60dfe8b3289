package batch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedLine is wrapped by every LineError
var ErrMalformedLine = errors.New("malformed line")

// Transaction is a single line of a batch file
type Transaction struct {
	// Line number in the batch file, starting at 1
	Line int

	Recipient string
	Amount    string

	// Raw line as read from the batch file
	text string
}

// LineError is returned for lines that cannot be turned into a transaction
type LineError struct {
	Line   int
	Text   string
	Reason string
}

func (err *LineError) Error() string {
	return fmt.Sprintf("line %d (%q): %s: %s", err.Line, err.Text, ErrMalformedLine, err.Reason)
}

func (err *LineError) Unwrap() error {
	return ErrMalformedLine
}

// IsBlank returns whether a line contains nothing but whitespace
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// ParseLine splits a line into the recipient and the amount of a transaction.
// The line has to consist of exactly two whitespace separated fields
func ParseLine(line int, text string) (*Transaction, error) {
	fields := strings.Fields(text)

	if len(fields) != 2 {
		return nil, &LineError{
			Line:   line,
			Text:   text,
			Reason: "expected 2 fields, got " + strconv.Itoa(len(fields)),
		}
	}

	return &Transaction{
		Line:      line,
		Recipient: fields[0],
		Amount:    fields[1],
		text:      text,
	}, nil
}

// TrimRecipientPrefix strips a prefix like "id" from the recipient
func (transaction *Transaction) TrimRecipientPrefix(prefix string) {
	if prefix == "" {
		return
	}

	transaction.Recipient = strings.TrimPrefix(transaction.Recipient, prefix)
}

// Validate checks that the recipient is a node index and the amount a positive number
func (transaction *Transaction) Validate() error {
	if _, err := strconv.ParseUint(transaction.Recipient, 10, 64); err != nil {
		return transaction.lineError("recipient " + strconv.Quote(transaction.Recipient) + " is not a node index")
	}

	amount, err := decimal.NewFromString(transaction.Amount)

	if err != nil {
		return transaction.lineError("amount " + strconv.Quote(transaction.Amount) + " is not a number")
	}

	if !amount.IsPositive() {
		return transaction.lineError("amount " + transaction.Amount + " is not positive")
	}

	return nil
}

func (transaction *Transaction) lineError(reason string) *LineError {
	text := transaction.text

	if text == "" {
		text = transaction.Recipient + " " + transaction.Amount
	}

	return &LineError{
		Line:   transaction.Line,
		Text:   text,
		Reason: reason,
	}
}
