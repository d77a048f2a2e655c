// Package closing owns the application state: the ingestion pipeline, the
// history and the snapshot currently on display.
package closing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/cierres/internal/history"
	"github.com/MrJamesThe3rd/cierres/internal/ingest"
	"github.com/MrJamesThe3rd/cierres/internal/metrics"
	"github.com/MrJamesThe3rd/cierres/internal/sheet"
	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

// File is one upload waiting to be ingested.
type File struct {
	Name   string
	Reader io.Reader
}

// Result is the outcome of a successful ingestion. Warnings carry non-fatal
// problems such as a failed history save.
type Result struct {
	Snapshot *snapshot.Snapshot
	Derived  snapshot.Derived
	Report   *ingest.Report
	Index    int
	Replaced bool
	Warnings []string
}

type Service struct {
	engine  *ingest.Engine
	history *history.Service
	metrics *metrics.Metrics

	// ingestMu serializes writers; mu guards the current selection for readers.
	ingestMu sync.Mutex
	mu       sync.RWMutex
	current  *snapshot.Snapshot
	derived  snapshot.Derived
}

func NewService(engine *ingest.Engine, hist *history.Service, m *metrics.Metrics) *Service {
	s := &Service{engine: engine, history: hist, metrics: m}
	m.HistorySnapshots.Set(float64(hist.Len()))

	return s
}

// Ingest reads one sheet and makes its snapshot current. A fatal error leaves
// the current snapshot and the history untouched.
func (s *Service) Ingest(ctx context.Context, fileName string, r io.Reader) (*Result, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	res, err := s.ingest(ctx, fileName, r)

	s.metrics.IngestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.Ingestions.WithLabelValues(metrics.OutcomeRejected).Inc()
		slog.Error("ingestion failed", "file", fileName, "error", err)

		return nil, err
	}

	s.metrics.Ingestions.WithLabelValues(metrics.OutcomeAccepted).Inc()

	return res, nil
}

func (s *Service) ingest(ctx context.Context, fileName string, r io.Reader) (*Result, error) {
	raw, err := sheet.Read(fileName, r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fileName, err)
	}

	snap, report, err := s.engine.Process(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", fileName, err)
	}

	s.record(report)

	res := &Result{
		Snapshot: snap,
		Derived:  snapshot.Derive(snap, s.history),
		Report:   report,
	}

	res.Index, res.Replaced, err = s.history.Upsert(ctx, snap)
	if err != nil {
		if !errors.Is(err, history.ErrPersist) {
			return nil, err
		}

		s.metrics.PersistFailures.Inc()
		res.Warnings = append(res.Warnings, err.Error())
	}

	s.metrics.HistorySnapshots.Set(float64(s.history.Len()))
	s.setCurrent(snap, res.Derived)

	slog.Info("closing ingested",
		"file", fileName,
		"period", snap.Period,
		"rows", len(snap.Rows),
		"replaced", res.Replaced,
	)

	return res, nil
}

// IngestFiles processes files in order. Cancellation is honoured between
// files; a failing file does not stop the ones after it. The returned error
// joins every per-file failure.
func (s *Service) IngestFiles(ctx context.Context, files []File) ([]*Result, error) {
	var (
		results []*Result
		errs    []error
	)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res, err := s.Ingest(ctx, f.Name, f.Reader)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

// Current returns the snapshot on display and its derived metrics.
func (s *Service) Current() (*snapshot.Snapshot, snapshot.Derived, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current, s.derived, s.current != nil
}

// Select makes the stored snapshot of period current.
func (s *Service) Select(period string) (*snapshot.Snapshot, snapshot.Derived, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	snap, ok := s.history.FindByPeriod(period)
	if !ok {
		return nil, snapshot.Derived{}, fmt.Errorf("%w: %q", history.ErrNotFound, period)
	}

	derived := snapshot.Derive(snap, s.history)
	s.setCurrent(snap, derived)

	return snap, derived, nil
}

// SelectIndex makes the stored snapshot at index current.
func (s *Service) SelectIndex(index int) (*snapshot.Snapshot, snapshot.Derived, error) {
	snap, err := s.history.Get(index)
	if err != nil {
		return nil, snapshot.Derived{}, err
	}

	return s.Select(snap.Period)
}

func (s *Service) History() []*snapshot.Snapshot {
	return s.history.List()
}

// DeleteHistory removes the entry at index. The current snapshot stays on
// display; its metrics are recomputed against the remaining history.
func (s *Service) DeleteHistory(ctx context.Context, index int) (*snapshot.Snapshot, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	removed, err := s.history.Remove(ctx, index)
	if removed == nil {
		return nil, err
	}

	s.afterHistoryChange(err)

	return removed, err
}

// RestoreHistory replaces the history, typically with a backup's content.
func (s *Service) RestoreHistory(ctx context.Context, items []*snapshot.Snapshot) error {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	err := s.history.Restore(ctx, items)
	if err != nil && !errors.Is(err, history.ErrPersist) {
		return err
	}

	s.afterHistoryChange(err)

	slog.Info("history restored", "snapshots", len(items))

	return err
}

func (s *Service) afterHistoryChange(err error) {
	if errors.Is(err, history.ErrPersist) {
		s.metrics.PersistFailures.Inc()
	}

	s.metrics.HistorySnapshots.Set(float64(s.history.Len()))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.derived = snapshot.Derive(s.current, s.history)
	}
}

func (s *Service) setCurrent(snap *snapshot.Snapshot, derived snapshot.Derived) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = snap
	s.derived = derived
}

func (s *Service) record(report *ingest.Report) {
	s.metrics.RowsAccepted.Add(float64(report.Accepted))
	s.metrics.ApproximateCols.Add(float64(len(report.Approximate)))

	for reason, n := range report.Discarded {
		s.metrics.RowsDiscarded.WithLabelValues(reason.String()).Add(float64(n))
	}
}
