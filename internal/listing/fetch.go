package listing

import (
	"context"
	"errors"
	"fmt"
	"listingscraper/internal/catalog"
	"listingscraper/internal/components/chrono"
	"listingscraper/internal/components/telemetry"
	"listingscraper/internal/sink"
	"strconv"
)

const (
	report_fetch          = "listing.fetch"
	report_decode         = "listing.decode"
	report_append         = "listing.append-row"
	report_skipped        = "listing.skipped-snippets"
	report_rows_extracted = "listing.rows"
)

// Fetcher is implemented by Client.
type Fetcher interface {
	FetchListing(ctx context.Context, loc catalog.Location, cat catalog.Category) ([]byte, error)
}

// PairResult is the outcome of processing one (location, category) pair.
type PairResult struct {
	Location catalog.Location
	Category catalog.Category
	// Rows is the number of rows appended, rows appended before a failure
	// are counted too.
	Rows int
	// Skipped is the number of snippets that were not purchasable items.
	Skipped int
	// Err is nil when the pair succeeded.
	Err error
}

func (r PairResult) Ok() bool {
	return r.Err == nil
}

// StatusCode returns the http status of a pair that failed on a non-2xx
// response, else 0.
func (r PairResult) StatusCode() int {
	var statusErr *StatusError
	if errors.As(r.Err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// Reason is the status code when the endpoint answered, else the error message.
func (r PairResult) Reason() string {
	if r.Err == nil {
		return ""
	}
	if code := r.StatusCode(); code != 0 {
		return strconv.Itoa(code)
	}
	return r.Err.Error()
}

// Extractor fetches a pair's listing and appends its purchasable items.
type Extractor struct {
	fetcher Fetcher
	out     sink.RowWriter
	time    chrono.API
	tel     telemetry.API
}

func NewExtractor(fetcher Fetcher, out sink.RowWriter, time chrono.API, tel telemetry.API) Extractor {
	return Extractor{
		fetcher: fetcher,
		out:     out,
		time:    time,
		tel:     telemetry.NewScopedAPI("listing", tel),
	}
}

// FetchAndExtract never fails, every failure is captured in the result. No
// retry is attempted.
func (e Extractor) FetchAndExtract(ctx context.Context, loc catalog.Location, cat catalog.Category) PairResult {
	result := PairResult{Location: loc, Category: cat}

	body, err := e.fetcher.FetchListing(ctx, loc, cat)
	if err != nil {
		e.tel.ReportBroken(report_fetch, err, loc, cat)
		result.Err = err
		return result
	}

	// a body that is not json (empty, or an html challenge page) counts as
	// a listing without items
	snippets, err := catalog.ParseSnippets(body)
	if err != nil {
		e.tel.ReportWarning(report_decode, err, len(body))
		snippets = nil
	}

	date := chrono.FormatDate(e.time.Now())
	rows, skipped := catalog.ExtractRows(date, cat, snippets)
	result.Skipped = skipped
	if skipped > 0 {
		e.tel.ReportDebug(report_skipped, skipped, cat.L2ID)
	}

	for _, row := range rows {
		err = e.out.AppendRow(ctx, row)
		var partial *sink.PartialWriteError
		if errors.As(err, &partial) {
			result.Rows++
		}
		if err != nil {
			err = fmt.Errorf("append row: %w", err)
			e.tel.ReportBroken(report_append, err, row.VariantID)
			result.Err = err
			return result
		}
		result.Rows++
	}
	e.tel.ReportDebug(report_rows_extracted, result.Rows, cat.L1ID, cat.L2ID)

	return result
}
