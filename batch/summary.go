package batch

import (
	"fmt"

	"github.com/noobcash/noobcash-batch/executor"
	"github.com/shopspring/decimal"
)

// Summary describes what happened to the lines of a batch
type Summary struct {
	RunID    string
	Checksum string

	// Lines read from the batch file
	Lines int

	Submitted int
	Failed    int
	Skipped   int
	Resumed   int

	// Sum of the amounts of all submitted transactions
	Total decimal.Decimal

	Results []LineResult
}

// LineResult is the outcome of the invocation for a single transaction
type LineResult struct {
	Transaction Transaction
	Result      *executor.Result
}

func (summary *Summary) add(transaction Transaction, result *executor.Result) {
	summary.Results = append(summary.Results, LineResult{
		Transaction: transaction,
		Result:      result,
	})

	if !result.Success() {
		summary.Failed++
		return
	}

	summary.Submitted++

	if amount, err := decimal.NewFromString(transaction.Amount); err == nil {
		summary.Total = summary.Total.Add(amount)
	}
}

func (summary *Summary) String() string {
	return fmt.Sprintf(
		"%d lines: %d submitted (total amount %s), %d failed, %d skipped, %d already submitted",
		summary.Lines,
		summary.Submitted,
		summary.Total.String(),
		summary.Failed,
		summary.Skipped,
		summary.Resumed,
	)
}
