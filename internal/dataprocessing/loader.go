package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/sync/errgroup"

	apperrors "enrolpulse/internal/errors"
	"enrolpulse/internal/files"
	"enrolpulse/internal/validation"
	"enrolpulse/pkg/contracts/domain"
)

// ErrEmptyDataset is returned when the matching files hold no data rows at all.
var ErrEmptyDataset = errors.New("dataset contains no rows")

// Dataset is the result of one load of a data directory.
type Dataset struct {
	Dir         string
	Files       []files.FileInfo
	Fingerprint string
	Table       *Table
	Stats       NormalizeStats
	LoadedAt    time.Time
	Duration    time.Duration
}

// Info summarises the dataset for API responses.
func (d *Dataset) Info() domain.DatasetInfo {
	names := make([]string, len(d.Files))
	for i, f := range d.Files {
		names[i] = f.Name
	}
	return domain.DatasetInfo{
		Dir:         d.Dir,
		Files:       names,
		Rows:        d.Table.Len(),
		Columns:     d.Table.Columns(),
		Fingerprint: d.Fingerprint,
		LoadedAt:    d.LoadedAt,
	}
}

// Loader reads every tabular file in a directory and unions the rows.
type Loader struct {
	discovery   *files.Discovery
	validator   *validation.FileValidator
	logger      *slog.Logger
	concurrency int
}

// NewLoader creates a loader. Files are parsed with up to GOMAXPROCS workers.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		discovery:   files.NewDiscovery(""),
		validator:   validation.NewFileValidator(logger),
		logger:      logger.With(slog.String("component", "loader")),
		concurrency: runtime.GOMAXPROCS(0),
	}
}

// Scan validates dir and lists its tabular files without reading them.
func (l *Loader) Scan(dir string) ([]files.FileInfo, error) {
	if err := l.validator.ValidateInputDirectory(dir, files.TabularExtensions...); err != nil {
		return nil, apperrors.NewConfigError("invalid data directory", err).WithContext("dir", dir)
	}

	found, err := l.discovery.FindTabularFiles(dir)
	if err != nil {
		return nil, apperrors.NewDataSourceError("failed to list data directory", err).WithContext("dir", dir)
	}
	if len(found) == 0 {
		return nil, apperrors.NewConfigError("invalid data directory",
			fmt.Errorf("%w: %s", validation.ErrNoMatchingFiles, dir)).WithContext("dir", dir)
	}
	return found, nil
}

// Load scans dir and loads every matching file.
func (l *Loader) Load(ctx context.Context, dir string) (*Dataset, error) {
	found, err := l.Scan(dir)
	if err != nil {
		return nil, err
	}
	return l.LoadFiles(ctx, dir, found)
}

// LoadFiles parses the given files concurrently and returns their union in
// file-name order.
func (l *Loader) LoadFiles(ctx context.Context, dir string, found []files.FileInfo) (*Dataset, error) {
	start := time.Now()
	parsed := make([]ParsedFile, len(found))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, f := range found {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pf, err := ParseFile(f.Path)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			parsed[i] = pf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.logger.ErrorContext(ctx, "Failed to parse data files",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		return nil, err
	}

	df, err := union(parsed)
	if err != nil {
		return nil, err
	}
	if df == nil {
		l.logger.ErrorContext(ctx, "Data files contain no rows",
			slog.String("dir", dir),
			slog.Int("files", len(found)))
		return nil, apperrors.NewConfigError("dataset is empty",
			fmt.Errorf("%w: %s", ErrEmptyDataset, dir)).WithContext("dir", dir)
	}

	table, stats, err := Normalize(*df)
	if err != nil {
		return nil, err
	}
	// header-only files still declare their columns
	for _, pf := range parsed {
		for _, c := range pf.Columns {
			table.columns[c] = struct{}{}
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}

	ds := &Dataset{
		Dir:         abs,
		Files:       found,
		Fingerprint: files.Fingerprint(found),
		Table:       table,
		Stats:       stats,
		LoadedAt:    time.Now(),
		Duration:    time.Since(start),
	}

	l.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("dir", abs),
		slog.Int("files", len(found)),
		slog.Int("rows", table.Len()),
		slog.Int("null_dates", stats.NullDates),
		slog.Int("zeroed_cells", stats.ZeroedNumeric),
		slog.String("fingerprint", ds.Fingerprint),
		slog.Duration("duration", ds.Duration))

	return ds, nil
}

// union concatenates the non-empty frames. Columns missing from a file are
// filled with nulls. It returns nil when no file has rows.
func union(parsed []ParsedFile) (*dataframe.DataFrame, error) {
	var out *dataframe.DataFrame
	for _, pf := range parsed {
		if pf.Empty() {
			continue
		}
		if out == nil {
			df := pf.Frame
			out = &df
			continue
		}
		merged := out.Concat(pf.Frame)
		if merged.Err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to merge %s", pf.Name), merged.Err)
		}
		out = &merged
	}
	return out, nil
}
