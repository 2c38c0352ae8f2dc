// Command influxload writes line protocol to InfluxDB 1.x compatible servers.
//
// It reads lines from a file or stdin, groups them into batches and sends
// the batches concurrently over HTTP, UDP or MQTT. Batches that fail are
// recorded in the SQLite failure journal when it is enabled.
//
//	influxload -config configs/config.yaml -file metrics.lp
//	influxload -format json < points.jsonl
//	influxload -query 'SELECT * FROM cpu LIMIT 10'
//	influxload -journal 20
//	influxload -replay 20
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/influxwire/internal/infrastructure/config"
	"github.com/nerrad567/influxwire/internal/infrastructure/logging"
	"github.com/nerrad567/influxwire/internal/infrastructure/tsdb"
	"github.com/nerrad567/influxwire/internal/journal"
	"github.com/nerrad567/influxwire/internal/lineproto"
	"github.com/nerrad567/influxwire/internal/pipeline"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// configEnv names the config file when -config is not given.
const configEnv = "INFLUXWIRE_CONFIG"

// journalTimeout bounds recording failures after the load context has ended.
const journalTimeout = 10 * time.Second

var (
	// errBatchesFailed is returned when at least one batch was not delivered.
	errBatchesFailed = errors.New("batches failed")

	errJournalDisabled = errors.New("journal is disabled (set journal.enabled)")
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the command-line flags.
type options struct {
	configPath string
	file       string
	format     string
	query      string
	journal    int
	replay     int
	rollback   bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("influxload", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", os.Getenv(configEnv), "path to YAML config (default: built-in defaults)")
	fs.StringVar(&opts.file, "file", "-", "input file, - for stdin")
	fs.StringVar(&opts.format, "format", formatLine, "input format: line or json")
	fs.StringVar(&opts.query, "query", "", "run an InfluxQL statement and print the result as JSON")
	fs.IntVar(&opts.journal, "journal", 0, "print the N most recent journal entries as JSON (without payloads)")
	fs.IntVar(&opts.replay, "replay", 0, "resend the N most recent journal entries and remove the delivered ones")
	fs.BoolVar(&opts.rollback, "journal-rollback", false, "revert the most recent journal migration and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	modes := 0
	for _, set := range []bool{opts.query != "", opts.journal > 0, opts.replay > 0, opts.rollback} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return options{}, errors.New("-query, -journal, -replay and -journal-rollback are mutually exclusive")
	}
	if opts.format != formatLine && opts.format != formatJSON {
		return options{}, fmt.Errorf("unknown -format %q (want line or json)", opts.format)
	}
	return opts, nil
}

// summary is printed to stdout after a load.
type summary struct {
	Transport string `json:"transport"`
	Target    string `json:"target"`
	Lines     int    `json:"lines"`
	Batches   int    `json:"batches"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Journaled int    `json:"journaled"`
	Removed   int    `json:"removed,omitempty"`
	Duration  string `json:"duration"`
}

// run is the application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command-line arguments without the program name
//   - stdin: Input when -file is "-"
//   - stdout: Destination for JSON results
//
// Returns:
//   - error: nil when every batch was delivered, or error describing failure
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	log.Info("starting influxload",
		"version", version,
		"commit", commit,
		"build_date", date,
		"transport", cfg.Load.Transport,
	)

	if opts.query != "" {
		return runQuery(ctx, cfg, opts.query, stdout)
	}
	if opts.rollback {
		return rollbackJournal(ctx, cfg.Journal, log, stdout)
	}

	store, closeJournal, err := openJournal(ctx, cfg.Journal)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer func() {
		if closeErr := closeJournal(); closeErr != nil {
			log.Error("error closing journal", "error", closeErr)
		}
	}()

	if opts.journal > 0 {
		if store == nil {
			return errJournalDisabled
		}
		entries, err := store.List(ctx, opts.journal)
		if err != nil {
			return err
		}
		return writeJSON(stdout, entries)
	}

	if opts.replay > 0 {
		if store == nil {
			return errJournalDisabled
		}
		return replay(ctx, cfg, log, store, opts.replay, stdout)
	}

	in, closeInput, err := openInput(opts.file, stdin)
	if err != nil {
		return err
	}
	defer closeInput() //nolint:errcheck // Read-only input

	var lines [][]byte
	if opts.format == formatJSON {
		lines, err = readJSONPoints(in, lineproto.Encoder{Escape: lineproto.ParseEscapePolicy(cfg.Load.Escape)})
	} else {
		lines, err = readLines(in)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	payloads := pipeline.Chunk(lines, cfg.Load.BatchSize)
	log.Info("input read", "lines", len(lines), "batches", len(payloads), "batch_size", cfg.Load.BatchSize)

	w, err := openWriter(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("opening %s transport: %w", cfg.Load.Transport, err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			log.Error("error closing transport", "error", closeErr)
		}
	}()

	start := time.Now()
	out := pipeline.WriteAll(ctx, w, payloads, cfg.Load.Concurrency)
	elapsed := time.Since(start)

	sum := summary{
		Transport: cfg.Load.Transport,
		Target:    w.target,
		Lines:     len(lines),
		Batches:   out.Len(),
		Succeeded: len(out.Successes),
		Failed:    len(out.Failures),
		Duration:  elapsed.String(),
	}

	for _, f := range out.Failures {
		log.Error("batch failed", "index", f.Index, "error", f.Err)
		if store == nil {
			continue
		}
		if _, err := recordFailure(ctx, store, cfg.Load.Transport, w.target, f); err != nil {
			log.Error("error journaling batch", "index", f.Index, "error", err)
			continue
		}
		sum.Journaled++
	}

	log.Info("load complete",
		"batches", sum.Batches,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"duration", elapsed,
	)

	if err := writeJSON(stdout, sum); err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d %w", sum.Failed, sum.Batches, errBatchesFailed)
	}
	return nil
}

// recordFailure journals a failed batch. It outlives ctx so a batch
// cancelled by a signal is still recorded.
func recordFailure(ctx context.Context, store *journal.Store, transport, target string, f pipeline.Failure[[]byte]) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()

	return store.Record(ctx, journal.Entry{
		Transport: transport,
		Target:    target,
		Payload:   f.Input,
		Error:     f.Err.Error(),
	})
}

// runQuery runs one statement and prints the response.
// Statement errors are printed with the results and also returned.
func runQuery(ctx context.Context, cfg *config.Config, statement string, stdout io.Writer) error {
	client, err := tsdb.New(cfg.TSDB)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck // Idle connections only

	resp, err := client.Query(ctx, statement)
	if err != nil {
		return err
	}
	if err := writeJSON(stdout, resp); err != nil {
		return err
	}

	var errs []error
	for _, r := range resp.Results {
		if err := r.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
