package sink

import (
	"context"
	"errors"
	"fmt"
	"listingscraper/internal/catalog"
	"os"
	"strings"
)

// CSV is the append-only output file. Every append opens, writes and closes
// the file, nothing is buffered between rows.
type CSV struct {
	path string
}

func NewCSV(path string) CSV {
	return CSV{path: path}
}

func (c CSV) Path() string {
	return c.path
}

// EnsureHeader creates the file with the header line if it does not exist.
// An existing file is left untouched, its contents are not validated.
func (c CSV) EnsureHeader() (created bool, err error) {
	f, err := os.OpenFile(c.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.WriteString(strings.Join(catalog.Header, ",") + "\n")
	if err != nil {
		return true, fmt.Errorf("write header: %w", err)
	}
	return true, f.Close()
}

// AppendRow appends the row as a single line.
func (c CSV) AppendRow(_ context.Context, row catalog.Row) error {
	f, err := os.OpenFile(c.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	_, err = f.WriteString(FormatRow(row))
	if err != nil {
		f.Close()
		return fmt.Errorf("append row: %w", err)
	}
	return f.Close()
}

// FormatRow renders a row as it is written to the output file. Only
// variant_name is quoted (with inner quotes doubled), every other field is
// written as is, existing datasets depend on this exact layout.
func FormatRow(row catalog.Row) string {
	values := row.Values()
	values[variantNameIdx] = quote(row.VariantName)
	return strings.Join(values, ",") + "\n"
}

var variantNameIdx = func() int {
	for i, col := range catalog.Header {
		if col == "variant_name" {
			return i
		}
	}
	panic("variant_name is not part of the header")
}()

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
