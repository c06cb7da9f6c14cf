package sink

import (
	"context"
	"errors"
	"fmt"
	"listingscraper/internal/catalog"
)

// RowWriter persists rows one at a time.
type RowWriter interface {
	AppendRow(ctx context.Context, row catalog.Row) error
}

// PartialWriteError is returned by Multi when some writers already persisted
// the row before a later one failed. The row counts as written.
type PartialWriteError struct {
	Written int
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("row kept by %d writer(s): %v", e.Written, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// Multi writes every row to all of its writers in order, it stops at the
// first writer that fails. Put the writer that defines what counts as
// written (the csv file) first: when a later writer fails the error is a
// *PartialWriteError.
type Multi []RowWriter

func (m Multi) AppendRow(ctx context.Context, row catalog.Row) error {
	for i, w := range m {
		err := w.AppendRow(ctx, row)
		if err != nil && i > 0 {
			return &PartialWriteError{Written: i, Err: err}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Close closes every writer that has a Close method.
func (m Multi) Close() error {
	var errlist []error
	for _, w := range m {
		closer, ok := w.(interface{ Close() error })
		if !ok {
			continue
		}
		err := closer.Close()
		if err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}
