package runner

import (
	"fmt"
	"io"
	"listingscraper/internal/listing"
)

// Console prints the one line per pair outcome, successes go to Out and
// failures to Err.
type Console struct {
	Out io.Writer
	Err io.Writer
}

func (c Console) Report(result listing.PairResult) {
	if result.Ok() {
		fmt.Fprintf(
			c.Out, "Processed: %s → %s @ (%s, %s)\n",
			result.Category.L1Name, result.Category.L2Name,
			result.Location.Latitude, result.Location.Longitude,
		)
		return
	}
	fmt.Fprintf(
		c.Err, "Failed: %s → %s @ (%s, %s) → %s\n",
		result.Category.L1Name, result.Category.L2Name,
		result.Location.Latitude, result.Location.Longitude,
		result.Reason(),
	)
}
