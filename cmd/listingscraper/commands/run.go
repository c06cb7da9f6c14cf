package commands

import (
	"context"
	"errors"
	"fmt"
	"listingscraper/internal/catalog"
	"listingscraper/internal/components/chrono"
	"listingscraper/internal/components/telemetry"
	"listingscraper/internal/inputs"
	"listingscraper/internal/listing"
	"listingscraper/internal/runner"
	"listingscraper/internal/sink"
	"listingscraper/lib/restyutil"
	"listingscraper/lib/serviceutil"
	oteltelemetry "listingscraper/lib/telemetry"
	"log/slog"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type runFlags struct {
	locations  string
	categories string
	output     string
	database   string
	dumpHttp   string
	delay      time.Duration
	timeout    time.Duration
	cookie     string
}

var runOpts runFlags

func init() {
	flags := runCmd.Flags()
	flags.StringVar(&runOpts.locations, "locations", "", "Locations csv (latitude, longitude).")
	flags.StringVar(&runOpts.categories, "categories", "", "Categories csv (l1_category, l1_category_id, l2_category, l2_category_id).")
	flags.StringVar(&runOpts.output, "output", "", "The csv file rows are appended to.")
	flags.StringVar(&runOpts.database, "db", "", "Also mirror rows into this sqlite file or libsql url.")
	flags.StringVar(&runOpts.dumpHttp, "dump-http", "", "Write every http exchange into this directory.")
	flags.DurationVar(&runOpts.delay, "delay", 0, "Delay after every pair (overrides config).")
	flags.DurationVar(&runOpts.timeout, "timeout", 0, "Request timeout (overrides config).")
	flags.StringVar(&runOpts.cookie, "cookie", "", "Cookie header sent with every request (overrides config).")
	rootCmd.AddCommand(runCmd)
}

func (f runFlags) apply(cfg *Config) {
	if f.locations != "" {
		cfg.LocationsFile = f.locations
	}
	if f.categories != "" {
		cfg.CategoriesFile = f.categories
	}
	if f.output != "" {
		cfg.OutputFile = f.output
	}
	if f.database != "" {
		cfg.Database.File = f.database
	}
	if f.dumpHttp != "" {
		cfg.HttpDumpDir = f.dumpHttp
	}
	if f.delay > 0 {
		cfg.Delay = int(f.delay / time.Millisecond)
	}
	if f.timeout > 0 {
		cfg.Timeout = int(f.timeout / time.Millisecond)
	}
	if f.cookie != "" {
		cfg.Cookie = f.cookie
	}
}

var runCmd = &cobra.Command{
	Use:   "run [--locations <path>] [--categories <path>] [--output <path>] [--db <dsn>]",
	Short: "Requests every location and category pair and appends the listed products to the output csv.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		runOpts.apply(&cfg)

		ctx := serviceutil.SignalContext(cmd.Context())
		shutdown := setupTelemetry(ctx)
		defer shutdown()

		locations, err := inputs.LoadLocations(cfg.LocationsFile)
		if err != nil {
			serviceutil.Fatal("load locations", err)
		}
		categories, err := inputs.LoadCategories(cfg.CategoriesFile)
		if err != nil {
			serviceutil.Fatal("load categories", err)
		}
		slog.Info("inputs loaded", "locations", len(locations), "categories", len(categories))

		out, err := openSinks(ctx, cfg)
		if err != nil {
			serviceutil.Fatal("prepare output", err)
		}
		defer out.writers.Close()

		r, err := newRunner(cfg, out.writers)
		if err != nil {
			serviceutil.Fatal("create runner", err)
		}

		stats, err := r.Run(ctx, locations, categories)
		renderStats(stats)
		out.logMirror()
		if errors.Is(err, context.Canceled) {
			slog.Warn("run interrupted", "attempted", stats.Attempted, "pairs", stats.Pairs)
			return
		}
		if err != nil {
			serviceutil.Fatal("run failed", err)
		}
	},
}

func setupTelemetry(ctx context.Context) func() {
	t, err := oteltelemetry.SetupFromEnv(ctx, "listingscraper")
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no telemetry.json5 found, telemetry export disabled")
		return func() {}
	}
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	oteltelemetry.InstrumentPerfStats(ctx, time.Second*30)

	return func() {
		err := t.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	}
}

type outputs struct {
	// the csv file comes first, see sink.Multi
	writers sink.Multi
	mirror  *sink.SQLite
}

func openSinks(ctx context.Context, cfg Config) (outputs, error) {
	csvOut := sink.NewCSV(cfg.OutputFile)
	created, err := csvOut.EnsureHeader()
	if err != nil {
		return outputs{}, fmt.Errorf("prepare output file: %w", err)
	}
	slog.Info("output file ready", "path", csvOut.Path(), "created", created)

	out := outputs{writers: sink.Multi{csvOut}}
	if cfg.Database.File == "" {
		return out, nil
	}

	db, err := cfg.Database.OpenDB()
	if err != nil {
		return outputs{}, fmt.Errorf("open database: %w", err)
	}
	mirror, err := sink.NewSQLite(ctx, db)
	if err != nil {
		db.Close()
		return outputs{}, err
	}
	slog.Info("mirroring rows into database", "remote", cfg.Database.IsRemote())
	out.writers = append(out.writers, mirror)
	out.mirror = &mirror
	return out, nil
}

func (o outputs) logMirror() {
	if o.mirror == nil {
		return
	}
	n, err := o.mirror.Count(context.Background())
	if err != nil {
		slog.Warn("count mirrored rows", "err", err)
		return
	}
	slog.Info("database mirror", "total_rows", n)
}

func newRunner(cfg Config, out sink.RowWriter) (runner.Runner, error) {
	var dump restyutil.InstrumentOutput
	if cfg.HttpDumpDir != "" {
		fsOutput, err := restyutil.NewFilesystemOutput(cfg.HttpDumpDir)
		if err != nil {
			return runner.Runner{}, fmt.Errorf("http dump dir: %w", err)
		}
		dump = fsOutput
	}

	tel := telemetry.NewScopedAPI("listingscraper", telemetry.SlogAPI{})
	client, err := listing.NewClient(listing.ClientOptions{
		BaseUrl:    cfg.BaseUrl,
		UserAgent:  cfg.UserAgent,
		Cookie:     cfg.Cookie,
		Timeout:    cfg.TimeoutDuration(),
		DumpOutput: dump,
	}, tel)
	if err != nil {
		return runner.Runner{}, err
	}

	clock := chrono.NewStandardImpl()
	extractor := listing.NewExtractor(client, out, clock, tel)
	return runner.NewRunner(extractor, clock, tel, runner.Options{
		Delay:   cfg.DelayDuration(),
		Console: runner.Console{Out: os.Stdout, Err: os.Stderr},
	}), nil
}

func renderStats(stats runner.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Pairs", "Attempted", "Succeeded", "Failed", "Rows", "Skipped snippets", "Duration"})
	t.AppendRow(table.Row{
		stats.Pairs,
		stats.Attempted,
		stats.Succeeded,
		stats.Failed,
		stats.Rows,
		stats.Skipped,
		stats.Duration.Round(time.Second).String(),
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// summary of the inputs, shared with the plan command
func inputsTable(locations []catalog.Location, categories []catalog.Category) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Locations", "Categories", "Pairs"})
	t.AppendRow(table.Row{len(locations), len(categories), len(locations) * len(categories)})
	t.SetStyle(table.StyleRounded)
	return t
}
