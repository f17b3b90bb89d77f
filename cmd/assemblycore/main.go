// Command assemblycore plans the CLIP reactions and final assemblies for a set
// of DNA constructs and writes the run information files and OT-2 scripts.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"assemblycore/internal/adapters/artifacts"
	"assemblycore/internal/blob"
	"assemblycore/internal/config"
	"assemblycore/internal/core"
	"assemblycore/internal/csvio"
	"assemblycore/internal/render"
	"assemblycore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

// sourceList collects repeated -sources flags; each value may hold a comma separated list.
type sourceList []string

func (s *sourceList) String() string { return strings.Join(*s, ",") }

func (s *sourceList) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			*s = append(*s, p)
		}
	}
	return nil
}

type options struct {
	constructs  string
	sources     sourceList
	profile     string
	templates   string
	ethanolWell string
	socColumn   string
	logLevel    string
	logFormat   string
	metricsFile string
	traceFile   string
	listRuns    bool
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("assemblycore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.constructs, "constructs", "", "path to the constructs csv")
	fs.Var(&opts.sources, "sources", "path to a source plate csv (repeatable, up to one per deck slot)")
	fs.StringVar(&opts.profile, "profile", "", "deck profile (.yaml, .yml or .hcl)")
	fs.StringVar(&opts.templates, "templates", "", "directory holding the OT-2 script templates")
	fs.StringVar(&opts.ethanolWell, "ethanol-well", artifacts.DefaultEthanolWell, "reagent plate well holding ethanol")
	fs.StringVar(&opts.socColumn, "soc-column", artifacts.DefaultSOCColumn, "deep well plate column holding SOC")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write planner metrics in Prometheus text format")
	fs.StringVar(&opts.traceFile, "trace-file", "", "append planner spans as JSON lines")
	fs.BoolVar(&opts.listRuns, "list-runs", false, "list stored runs and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := newLogger(opts.logLevel, opts.logFormat, stderr)
	ctx := context.Background()

	if opts.listRuns {
		if err := listRuns(ctx, stdout); err != nil {
			_, _ = fmt.Fprintf(stderr, "list runs failed: %v\n", err)
			return 1
		}
		return 0
	}
	if opts.constructs == "" || len(opts.sources) == 0 {
		_, _ = fmt.Fprintln(stderr, "-constructs and at least one -sources are required")
		fs.Usage()
		return 2
	}
	if err := run(ctx, opts, logger, stdout); err != nil {
		_, _ = fmt.Fprintf(stderr, "planning failed: %v\n", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, opts options, logger *slog.Logger, stdout io.Writer) (err error) {
	profile, err := config.Load(opts.profile)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		return err
	}
	plannerOpts := append(profile.PlannerOptions(), core.WithLogger(logger), core.WithMetrics(metrics))
	if opts.traceFile != "" {
		f, err := os.OpenFile(opts.traceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer func() { _ = f.Close() }()
		plannerOpts = append(plannerOpts, core.WithTracer(core.NewJSONTracer(f)))
	}
	if opts.metricsFile != "" {
		defer func() {
			if writeErr := prometheus.WriteToTextfile(opts.metricsFile, registry); writeErr != nil && err == nil {
				err = fmt.Errorf("write metrics: %w", writeErr)
			}
		}()
	}

	planner, err := core.NewPlanner(profile.Capacity, plannerOpts...)
	if err != nil {
		return err
	}
	rows, err := csvio.ReadConstructsFile(opts.constructs)
	if err != nil {
		return err
	}
	sources := make([]core.SourceFile, 0, len(opts.sources))
	for _, path := range opts.sources {
		file, err := csvio.ReadSourceFile(path)
		if err != nil {
			return err
		}
		sources = append(sources, file)
	}

	bundle, err := planner.Plan(ctx, core.PlanInput{Constructs: rows, Sources: sources})
	if err != nil {
		return err
	}

	runs, err := core.OpenRunStore(ctx)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer func() { _ = runs.Close() }()

	store, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	exporterOpts := []artifacts.Option{artifacts.WithLogger(logger)}
	if opts.templates != "" {
		exporterOpts = append(exporterOpts, artifacts.WithRenderer(render.NewRenderer(os.DirFS(opts.templates))))
	}
	exporter := artifacts.NewExporter(store, exporterOpts...)
	runID := artifacts.NewRunID()
	refs, err := exporter.Export(ctx, runID, bundle, artifacts.Extras{
		BaseName:    baseName(opts.constructs),
		EthanolWell: opts.ethanolWell,
		SOCColumn:   opts.socColumn,
	})
	if err != nil {
		return err
	}
	if err := saveRun(ctx, runs, exporter, domain.PlanRun{
		ID:             runID,
		CreatedAt:      time.Now().UTC(),
		ConstructsFile: opts.constructs,
		SourceFiles:    append([]string(nil), opts.sources...),
		Bundle:         bundle,
		Artifacts:      refs,
	}); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(stdout, "run %s\n", runID); err != nil {
		return err
	}
	for _, ref := range refs {
		if _, err := fmt.Fprintln(stdout, ref.Key); err != nil {
			return err
		}
	}
	return nil
}

// saveRun records run; when that fails the exported artifacts are removed so
// no artifacts outlive a missing run record.
func saveRun(ctx context.Context, runs domain.RunStore, exporter *artifacts.Exporter, run domain.PlanRun) error {
	if err := runs.Save(ctx, run); err != nil {
		exporter.Remove(ctx, run.Artifacts)
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func listRuns(ctx context.Context, stdout io.Writer) error {
	runs, err := core.OpenRunStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = runs.Close() }()
	list, err := runs.List(ctx)
	if err != nil {
		return err
	}
	for _, r := range list {
		if _, err := fmt.Fprintf(stdout, "%s\t%s\t%d constructs\t%d reactions\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), len(r.Bundle.Constructs), len(r.Bundle.Reactions)); err != nil {
			return err
		}
	}
	return nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" && stem != "." {
		return stem
	}
	return "plan"
}

// newLogger builds an isolated slog logger from flag values.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(outW, handlerOpts))
}
