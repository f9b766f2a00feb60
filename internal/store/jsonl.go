package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/hitboard/hitboard/internal/record"
)

// ComputeHash returns a BLAKE2b-256 fingerprint over the names and contents
// of the given files. Missing files hash as empty.
func ComputeHash(paths ...string) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		fmt.Fprintf(h, "%s\x00", p)
		f, err := os.Open(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("opening file: %w", err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Flatten turns a record back into a flat input row, so the output of
// WriteAllRecords can be loaded again. Booleans are written with the
// truth token; missing numbers are left out.
func Flatten(r record.Record, truth string) map[string]any {
	if truth == "" {
		truth = record.DefaultTruthToken
	}
	out := make(map[string]any, len(r.Text)+len(r.Num)+len(r.Bool)+1)
	for k, v := range r.Text {
		out[k] = v
	}
	for k, v := range r.Num {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	for k, v := range r.Bool {
		if v {
			out[k] = truth
		} else {
			out[k] = "False"
		}
	}
	if len(r.Bool) > 0 {
		out["hit_count"] = r.HitCount
	}
	return out
}

// WriteAllRecords writes records as flat JSON lines, replacing any
// existing file. The file is written to a temporary name and renamed.
func WriteAllRecords(path string, records []record.Record, truth string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".hitboard-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRecords(tmp, records, truth); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// EncodeRecords writes records as flat JSON lines to w.
func EncodeRecords(w io.Writer, records []record.Record, truth string) error {
	return writeRecords(w, records, truth)
}

func writeRecords(w io.Writer, records []record.Record, truth string) error {
	enc := json.NewEncoder(w)
	for i, r := range records {
		if err := enc.Encode(Flatten(r, truth)); err != nil {
			return fmt.Errorf("encoding record %d: %w", i+1, err)
		}
	}
	return nil
}

// Fields returns every field name used by records, sorted.
func Fields(records []record.Record) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		for k := range r.Text {
			seen[k] = true
		}
		for k := range r.Num {
			seen[k] = true
		}
		for k := range r.Bool {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
