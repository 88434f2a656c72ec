// Command seeder builds trajectory seeds for a file of simulated events and
// stores them in SQLite.
//
//	seeder -config seeding.json -geometry geometry.json -events events.jsonl -db seeds.db
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/trackseed/internal/config"
	"github.com/banshee-data/trackseed/internal/event"
	"github.com/banshee-data/trackseed/internal/fieldprop"
	"github.com/banshee-data/trackseed/internal/fsutil"
	"github.com/banshee-data/trackseed/internal/geometry"
	"github.com/banshee-data/trackseed/internal/monitoring"
	"github.com/banshee-data/trackseed/internal/runner"
	"github.com/banshee-data/trackseed/internal/seeddb"
	"github.com/banshee-data/trackseed/internal/seeding"
	"github.com/banshee-data/trackseed/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		monitoring.Logf("%v", err)
		os.Exit(1)
	}
}

type options struct {
	configPath    string
	geometryPath  string
	eventsPath    string
	dbPath        string
	workers       int
	queueDepth    int
	metricsListen string
	bz            float64
	debug         bool
	showVersion   bool
}

func parseFlags(args []string, settings config.RunnerSettings, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("seeder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", config.DefaultConfigPath, "Seeding configuration (.json, .yaml or .yml)")
	fs.StringVar(&o.geometryPath, "geometry", "", "Detector geometry JSON")
	fs.StringVar(&o.eventsPath, "events", "", "Events as JSON lines, - for stdin")
	fs.StringVar(&o.dbPath, "db", settings.DBPath, "SQLite seed database")
	fs.IntVar(&o.workers, "workers", settings.Workers, "Number of seeding workers")
	fs.IntVar(&o.queueDepth, "queue", settings.QueueDepth, "Events buffered between reader, workers and writer")
	fs.StringVar(&o.metricsListen, "metrics-listen", settings.MetricsListen, "Serve prometheus metrics on this address while running")
	fs.Float64Var(&o.bz, "bz", 3.8, "Solenoid field in tesla")
	fs.BoolVar(&o.debug, "debug", false, "Write diagnostic and trace logs to stderr")
	fs.BoolVar(&o.showVersion, "version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.showVersion {
		return o, nil
	}
	if o.geometryPath == "" || o.eventsPath == "" {
		return o, errors.New("-geometry and -events are required")
	}
	if o.workers < 1 {
		return o, fmt.Errorf("-workers must be at least 1, got %d", o.workers)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	settings, err := config.LoadRunnerSettings()
	if err != nil {
		return err
	}
	o, err := parseFlags(args, settings, stderr)
	if err != nil {
		return err
	}
	if o.showVersion {
		fmt.Fprintln(stdout, version.String())
		return nil
	}

	monitoring.SetOutput(stderr)
	if o.debug {
		seeding.SetLogWriters(stderr, stderr, stderr)
		runner.SetLogWriters(stderr, stderr, nil)
	} else {
		seeding.SetLogWriters(stderr, nil, nil)
		runner.SetLogWriters(stderr, nil, nil)
	}

	fsys := fsutil.OSFileSystem{}
	cfg, err := config.LoadSeedingConfig(fsys, o.configPath)
	if err != nil {
		return err
	}
	algos, err := seeding.AlgorithmsFromConfig(cfg)
	if err != nil {
		return err
	}
	geom, err := geometry.Load(fsys, o.geometryPath)
	if err != nil {
		return err
	}

	reg := monitoring.NewRegistry()
	producer, err := seeding.NewProducer(algos, geom, fieldprop.NewUniformField(o.bz), seeding.WithMetrics(reg))
	if err != nil {
		return err
	}

	if o.metricsListen != "" {
		srv := startMetricsServer(o.metricsListen, reg)
		defer shutdown(srv)
	}

	store, err := seeddb.Open(o.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.MigrateUp(); err != nil {
		return err
	}
	schema, _, err := store.MigrateVersion()
	if err != nil {
		return err
	}

	var events io.Reader = stdin
	if o.eventsPath != "-" {
		f, err := fsys.Open(o.eventsPath)
		if err != nil {
			return fmt.Errorf("failed to open events: %w", err)
		}
		defer f.Close()
		events = f
	}

	runID, err := store.BeginRun(cfg.Hash())
	if err != nil {
		return err
	}
	monitoring.Logf("%s: run %s, schema %d, %d algorithms, %d detector elements, %d workers",
		version.String(), runID, schema, len(algos), geom.Len(), o.workers)

	stats, err := runner.New(producer, o.workers, o.queueDepth).Run(ctx, event.NewReader(events), func(r runner.Result) error {
		if err := store.SaveEvent(runID, r.EventID, r.Output); err != nil {
			return err
		}
		reg.RecordEvent(r.Output)
		return nil
	})
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	if err := store.FinishRun(runID); err != nil {
		return err
	}
	reg.RecordRun(stats.Duration)

	info, err := store.Run(runID)
	if err != nil {
		return err
	}
	counts, err := store.CountSeeds(runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "run %s: %d events in %s\n", runID, info.Events, stats.Duration.Round(time.Millisecond))
	for _, a := range algos {
		fmt.Fprintf(stdout, "%-20s %d\n", a.Name, counts[a.Name])
	}
	return nil
}

func startMetricsServer(addr string, reg *monitoring.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			monitoring.Logf("metrics server: %v", err)
		}
	}()
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		monitoring.Logf("metrics server shutdown: %v", err)
	}
}
