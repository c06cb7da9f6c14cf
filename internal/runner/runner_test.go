package runner

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"listingscraper/internal/catalog"
	"listingscraper/internal/components/chrono"
	"listingscraper/internal/components/telemetry"
	"listingscraper/internal/listing"
	"listingscraper/internal/sink"
	"listingscraper/lib/testutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type pair struct {
	lat string
	l2  string
}

type fakeProcessor struct {
	calls []pair
	fail  map[string]error
	rows  int
}

func (f *fakeProcessor) FetchAndExtract(_ context.Context, loc catalog.Location, cat catalog.Category) listing.PairResult {
	f.calls = append(f.calls, pair{lat: loc.Latitude, l2: cat.L2ID})
	result := listing.PairResult{Location: loc, Category: cat}
	if err, ok := f.fail[cat.L2ID]; ok {
		result.Err = err
		return result
	}
	result.Rows = f.rows
	return result
}

func newConsole() (Console, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return Console{Out: out, Err: errOut}, out, errOut
}

func TestRunCrossProductOrder(t *testing.T) {
	locations := []catalog.Location{{Latitude: "1"}, {Latitude: "2"}, {Latitude: "3"}}
	categories := []catalog.Category{{L2ID: "a"}, {L2ID: "b"}}

	processor := &fakeProcessor{rows: 2}
	clock := chrono.NewFakeImpl(testNow)
	console, _, _ := newConsole()
	r := NewRunner(processor, clock, telemetry.NewMemoryAPI(), Options{Delay: DefaultDelay, Console: console})

	stats, err := r.Run(context.Background(), locations, categories)
	require.NoError(t, err)

	expected := []pair{
		{"1", "a"}, {"1", "b"},
		{"2", "a"}, {"2", "b"},
		{"3", "a"}, {"3", "b"},
	}
	if diff := cmp.Diff(expected, processor.calls, cmp.AllowUnexported(pair{})); diff != "" {
		t.Fatal(diff)
	}

	// one delay per pair, including after the last one
	require.Len(t, clock.Sleeps(), 6)
	for _, d := range clock.Sleeps() {
		require.Equal(t, DefaultDelay, d)
	}

	require.Equal(t, Stats{Pairs: 6, Attempted: 6, Succeeded: 6, Rows: 12}, stats)
}

func TestRunContinuesAfterFailures(t *testing.T) {
	locations := []catalog.Location{{Latitude: "12.9", Longitude: "77.6"}}
	categories := []catalog.Category{
		{L1Name: "Fruits", L2Name: "Apples", L2ID: "101"},
		{L1Name: "Fruits", L2Name: "Pears", L2ID: "102"},
		{L1Name: "Fruits", L2Name: "Plums", L2ID: "103"},
	}

	processor := &fakeProcessor{
		rows: 1,
		fail: map[string]error{"102": &listing.StatusError{StatusCode: 429, Status: "429 Too Many Requests"}},
	}
	clock := chrono.NewFakeImpl(testNow)
	console, out, errOut := newConsole()
	tel := telemetry.NewMemoryAPI()
	r := NewRunner(processor, clock, tel, Options{Delay: time.Second, Console: console})

	stats, err := r.Run(context.Background(), locations, categories)
	require.NoError(t, err)
	require.Len(t, processor.calls, 3)
	require.Len(t, clock.Sleeps(), 3)
	require.Equal(t, 3, stats.Attempted)
	require.Equal(t, 1, stats.Failed)
	require.Equal(t, 2, stats.Rows)

	require.Equal(t,
		"Processed: Fruits → Apples @ (12.9, 77.6)\nProcessed: Fruits → Plums @ (12.9, 77.6)\n",
		out.String(),
	)
	require.Equal(t, "Failed: Fruits → Pears @ (12.9, 77.6) → 429\n", errOut.String())
	require.True(t, tel.Has("count", report_failed))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	processor := &fakeProcessor{}
	clock := chrono.NewFakeImpl(testNow)
	console, _, _ := newConsole()
	r := NewRunner(processor, clock, telemetry.NewMemoryAPI(), Options{Delay: time.Second, Console: console})

	// the fake clock reports cancellation from Sleep, so cancel before the
	// first pair finishes
	wrapped := processorFunc(func(ctx context.Context, loc catalog.Location, cat catalog.Category) listing.PairResult {
		cancel()
		return processor.FetchAndExtract(ctx, loc, cat)
	})
	r.processor = wrapped

	stats, err := r.Run(ctx, []catalog.Location{{}, {}}, []catalog.Category{{}, {}})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, stats.Attempted)
	require.Equal(t, 4, stats.Pairs)
}

type processorFunc func(ctx context.Context, loc catalog.Location, cat catalog.Category) listing.PairResult

func (f processorFunc) FetchAndExtract(ctx context.Context, loc catalog.Location, cat catalog.Category) listing.PairResult {
	return f(ctx, loc, cat)
}

func TestRunEmptyInputs(t *testing.T) {
	processor := &fakeProcessor{}
	clock := chrono.NewFakeImpl(testNow)
	console, out, errOut := newConsole()
	r := NewRunner(processor, clock, telemetry.NewMemoryAPI(), Options{Delay: time.Second, Console: console})

	stats, err := r.Run(context.Background(), nil, []catalog.Category{{}})
	require.NoError(t, err)
	require.Equal(t, Stats{}, stats)
	require.Len(t, clock.Sleeps(), 0)
	require.Empty(t, out.String())
	require.Empty(t, errOut.String())
}

func TestConsoleNetworkFailure(t *testing.T) {
	console, _, errOut := newConsole()
	console.Report(listing.PairResult{
		Location: catalog.Location{Latitude: "1", Longitude: "2"},
		Category: catalog.Category{L1Name: "A", L2Name: "B"},
		Err:      errors.New("context deadline exceeded"),
	})
	require.Equal(t, "Failed: A → B @ (1, 2) → context deadline exceeded\n", errOut.String())
}

func TestRunEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"snippets":[
			{"data":{"atc_action":{"add_to_cart":{"cart_item":{"product_id":481,"product_name":"Apple \"Royal\"","inventory":0}}}}},
			{"data":{"title":"not a product"}}
		]}}`))
	}))
	defer server.Close()

	client, err := listing.NewClient(listing.ClientOptions{BaseUrl: server.URL}, telemetry.NewMemoryAPI())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "output.csv")
	out := sink.NewCSV(path)
	created, err := out.EnsureHeader()
	require.NoError(t, err)
	require.True(t, created)

	mirror, err := sink.NewSQLite(context.Background(), testutil.OpenDB(t, ""))
	require.NoError(t, err)

	clock := chrono.NewFakeImpl(testNow)
	tel := telemetry.NewMemoryAPI()
	extractor := listing.NewExtractor(client, sink.Multi{out, mirror}, clock, tel)
	console, stdout, stderr := newConsole()
	r := NewRunner(extractor, clock, tel, Options{Delay: DefaultDelay, Console: console})

	stats, err := r.Run(
		context.Background(),
		[]catalog.Location{{Latitude: "12.9", Longitude: "77.6"}},
		[]catalog.Category{{L1Name: "Fruits", L1ID: "10", L2Name: "Apples", L2ID: "101"}},
	)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Rows)
	require.Equal(t, 1, stats.Skipped)
	require.Equal(t, "Processed: Fruits → Apples @ (12.9, 77.6)\n", stdout.String())
	require.Empty(t, stderr.String())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(contents))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, catalog.Header, records[0])

	row := records[1]
	require.Equal(t, "2024-06-01", row[0])
	require.Equal(t, "10", row[2])
	require.Equal(t, "101", row[4])
	require.Equal(t, `Apple "Royal"`, row[7])
	require.Equal(t, "0", row[11])
	require.Equal(t, "0", row[12])

	mirrored, err := mirror.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), mirrored)
}
