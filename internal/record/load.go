package record

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrLoad indicates that no dataset could be loaded.
var ErrLoad = errors.New("dataset could not be loaded")

// ErrEmptyDataset indicates that a dataset file was readable but had no rows.
var ErrEmptyDataset = errors.New("dataset is empty")

// LoadError lists every path that was tried and why it failed.
type LoadError struct {
	Attempts []Attempt
}

// Attempt is one failed load of one candidate path.
type Attempt struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if len(e.Attempts) == 0 {
		return "dataset could not be loaded: no paths configured"
	}
	paths := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		paths[i] = a.Path
	}
	return fmt.Sprintf("dataset could not be loaded (tried %s): %v",
		strings.Join(paths, ", "), e.Attempts[len(e.Attempts)-1].Err)
}

// Unwrap makes errors.Is(err, ErrLoad) hold for every LoadError.
func (e *LoadError) Unwrap() []error {
	errs := []error{ErrLoad}
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Dataset is a loaded and normalized record set.
type Dataset struct {
	Path    string
	Schema  Schema
	Records []Record
}

// Load tries each candidate path in order and returns the first one that
// reads and contains at least one row.
func Load(paths []string, s Schema) (*Dataset, error) {
	log := slog.Default().With(slog.String("module", "record"))
	loadErr := &LoadError{}

	for _, path := range paths {
		rows, err := ReadFile(path)
		if err == nil && len(rows) == 0 {
			err = ErrEmptyDataset
		}
		if err != nil {
			log.Debug("dataset candidate failed", slog.String("path", path), slog.Any("error", err))
			loadErr.Attempts = append(loadErr.Attempts, Attempt{Path: path, Err: err})
			continue
		}

		log.Info("loaded dataset", slog.String("path", path), slog.Int("rows", len(rows)))
		return &Dataset{
			Path:    path,
			Schema:  s,
			Records: Normalize(rows, s),
		}, nil
	}

	return nil, loadErr
}

// ReadFile reads raw rows from a file; the format follows the extension.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(f)
	case ".jsonl", ".ndjson":
		return ReadJSONL(f)
	case ".csv", "":
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}
