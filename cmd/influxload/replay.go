package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/nerrad567/influxwire/internal/infrastructure/config"
	"github.com/nerrad567/influxwire/internal/infrastructure/database"
	"github.com/nerrad567/influxwire/internal/infrastructure/logging"
	"github.com/nerrad567/influxwire/internal/journal"
	"github.com/nerrad567/influxwire/internal/pipeline"
)

// replay resends up to limit journaled batches over the configured
// transport, oldest first. Delivered entries are removed from the journal;
// failed ones stay for the next attempt.
//
// The configured transport is used even when an entry was recorded
// against another one.
func replay(ctx context.Context, cfg *config.Config, log *logging.Logger, store *journal.Store, limit int, stdout io.Writer) error {
	entries, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	slices.Reverse(entries)

	sum := summary{Transport: cfg.Load.Transport}
	if len(entries) == 0 {
		log.Info("journal is empty, nothing to replay")
		return writeJSON(stdout, sum)
	}

	payloads := make([][]byte, len(entries))
	for i, e := range entries {
		payloads[i] = e.Payload
		sum.Lines += e.Lines
	}

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

	sum.Target = w.target
	sum.Batches = out.Len()
	sum.Succeeded = len(out.Successes)
	sum.Failed = len(out.Failures)
	sum.Duration = elapsed.String()

	for _, s := range out.Successes {
		id := entries[s.Index].ID
		if err := removeEntry(ctx, store, id); err != nil {
			log.Error("error removing replayed entry", "id", id, "error", err)
			continue
		}
		sum.Removed++
	}
	for _, f := range out.Failures {
		log.Error("replay failed", "id", entries[f.Index].ID, "error", f.Err)
	}

	log.Info("replay complete",
		"batches", sum.Batches,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"removed", sum.Removed,
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

// removeEntry deletes a delivered entry. Like recordFailure it outlives ctx,
// so a delivered batch is not replayed twice after a signal.
func removeEntry(ctx context.Context, store *journal.Store, id string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	return store.Delete(ctx, id)
}

// migrationState is printed after a journal rollback.
type migrationState struct {
	Applied []string `json:"applied"`
	Pending []string `json:"pending"`
}

// rollbackJournal reverts the most recent journal migration and prints the
// remaining migration state. The journal is not migrated up first.
func rollbackJournal(ctx context.Context, cfg config.JournalConfig, log *logging.Logger, stdout io.Writer) error {
	if !cfg.Enabled {
		return errJournalDisabled
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer db.Close() //nolint:errcheck // Nothing left to flush

	if err := db.MigrateDown(ctx); err != nil {
		return fmt.Errorf("rolling back journal: %w", err)
	}

	applied, pending, err := db.GetMigrationStatus(ctx)
	if err != nil {
		return err
	}
	state := migrationState{Applied: []string{}, Pending: []string{}}
	for _, m := range applied {
		state.Applied = append(state.Applied, m.Version)
	}
	for _, m := range pending {
		state.Pending = append(state.Pending, m.Version)
	}
	log.Info("journal rolled back", "path", cfg.Path, "applied", len(state.Applied))

	return writeJSON(stdout, state)
}
