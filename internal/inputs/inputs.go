package inputs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"listingscraper/internal/catalog"
	"os"
	"strings"
)

// Record is one data row of a table, keyed by column name.
type Record map[string]string

// ErrMissingColumn is returned when a table lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ReadTable reads a csv table with a header row, every record is returned in
// input order. Each name in `required` must be a column of the header.
func ReadTable(r io.Reader, required ...string) ([]Record, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read header: empty table")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	for _, col := range required {
		if !present[col] {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	var records []Record
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		record := make(Record, len(header))
		for i, col := range header {
			record[col] = fields[i]
		}
		records = append(records, record)
	}
	return records, nil
}

// LoadTable is ReadTable on the file at path.
func LoadTable(path string, required ...string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadTable(f, required...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

const (
	colLatitude  = "latitude"
	colLongitude = "longitude"

	colL1Category   = "l1_category"
	colL1CategoryID = "l1_category_id"
	colL2Category   = "l2_category"
	colL2CategoryID = "l2_category_id"
)

// LoadLocations loads every location of the file at path.
func LoadLocations(path string) ([]catalog.Location, error) {
	records, err := LoadTable(path, colLatitude, colLongitude)
	if err != nil {
		return nil, err
	}
	locations := make([]catalog.Location, len(records))
	for i, r := range records {
		locations[i] = catalog.Location{
			Latitude:  r[colLatitude],
			Longitude: r[colLongitude],
		}
	}
	return locations, nil
}

// LoadCategories loads every category of the file at path.
func LoadCategories(path string) ([]catalog.Category, error) {
	records, err := LoadTable(path, colL1Category, colL1CategoryID, colL2Category, colL2CategoryID)
	if err != nil {
		return nil, err
	}
	categories := make([]catalog.Category, len(records))
	for i, r := range records {
		categories[i] = catalog.Category{
			L1Name: r[colL1Category],
			L1ID:   r[colL1CategoryID],
			L2Name: r[colL2Category],
			L2ID:   r[colL2CategoryID],
		}
	}
	return categories, nil
}
