package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

var (
	ErrNoSnapshot  = errors.New("no closing loaded")
	ErrUnknownKind = errors.New("unknown export kind")
)

// Kind is an export artefact, named after the file it produces.
type Kind string

const (
	KindSummary  Kind = "summary.xlsx"
	KindSnapshot Kind = "snapshot.xlsx"
	KindCSV      Kind = "snapshot.csv"
	KindTemplate Kind = "template.xlsx"
	KindBackup   Kind = "backup.json"
)

// Kinds lists every export kind in menu order.
var Kinds = []Kind{KindSummary, KindSnapshot, KindCSV, KindTemplate, KindBackup}

// ContentType returns the MIME type of the artefact.
func (k Kind) ContentType() string {
	switch filepath.Ext(string(k)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv; charset=utf-8"
	default:
		return "application/json"
	}
}

// Source exposes the data exports read. Implementations must hand out values
// exports can read without locking.
type Source interface {
	Current() (*snapshot.Snapshot, snapshot.Derived, bool)
	History() []*snapshot.Snapshot
}

// Service renders export artefacts from a Source without modifying it.
type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// ParseKind validates a kind received from a caller.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Write renders kind into w.
func (s *Service) Write(ctx context.Context, kind Kind, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch kind {
	case KindSummary:
		return writeWorkbook(w, func() (*excelize.File, error) { return HistoryWorkbook(s.source.History()) })
	case KindTemplate:
		return writeWorkbook(w, TemplateWorkbook)
	case KindBackup:
		return WriteBackup(w, s.source.History())
	case KindSnapshot, KindCSV:
		current, _, ok := s.source.Current()
		if !ok {
			return ErrNoSnapshot
		}

		if kind == KindCSV {
			return WriteRowsCSV(w, current.Rows)
		}

		return writeWorkbook(w, func() (*excelize.File, error) { return SnapshotWorkbook(current) })
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Export writes each kind to outputDir and returns the created paths. Files
// of the current closing are prefixed with its period.
func (s *Service) Export(ctx context.Context, kinds []Kind, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	paths := make([]string, 0, len(kinds))

	for _, k := range kinds {
		path := filepath.Join(outputDir, s.FileName(k))

		if err := s.writeFile(ctx, k, path); err != nil {
			return paths, fmt.Errorf("exporting %s: %w", k, err)
		}

		slog.Info("export written", "kind", k, "path", path)

		paths = append(paths, path)
	}

	return paths, nil
}

// FileName is the download name of kind, prefixed with the current period.
func (s *Service) FileName(k Kind) string {
	prefix := "cierres"
	if current, _, ok := s.source.Current(); ok {
		prefix = FileSlug(current.Period)
	}

	return prefix + "_" + string(k)
}

func (s *Service) writeFile(ctx context.Context, k Kind, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := s.Write(ctx, k, f); err != nil {
		f.Close()
		os.Remove(path)

		return err
	}

	return f.Close()
}

// FileSlug turns a period label into a file-name friendly token.
func FileSlug(period string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(period))

	if slug == "" {
		return "cierres"
	}

	return slug
}

func writeWorkbook(w io.Writer, build func() (*excelize.File, error)) error {
	f, err := build()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}
