package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRowValuesMatchHeader(t *testing.T) {
	require.Len(t, Header, 17)

	row := NewRow(
		"2024-06-01",
		Category{L1Name: "Fruits", L1ID: "10", L2Name: "Apples", L2ID: "101"},
		CatalogItem{
			CartItem: CartItem{
				MerchantID:  "m",
				ProductID:   "p",
				ProductName: "name",
				GroupID:     "g",
				Price:       "1",
				Mrp:         "2",
				Inventory:   "3",
				InStock:     true,
				ImageURL:    "img",
				BrandID:     "bid",
				Brand:       "b",
			},
			Sponsored: "0",
		},
	)

	values := row.Values()
	require.Len(t, values, len(Header))
	require.Equal(t, []string{
		"2024-06-01", "Fruits", "10", "Apples", "101",
		"m", "p", "name", "g", "1", "2",
		"1", "3", "0", "img", "bid", "b",
	}, values)
}
