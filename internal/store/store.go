// Package store keeps a SQLite index of loaded datasets, used to answer
// option-list queries (distinct values, per-group sums) without rescanning
// the records, and writes normalized records back out as JSONL.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/record"
)

// Index is a SQLite index over one or more datasets.
type Index struct {
	db   *sql.DB
	path string
	l    *slog.Logger
}

// Open opens or creates the index at path ("" for in-memory).
func Open(path string) (*Index, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Index{
		db:   db,
		path: path,
		l:    slog.Default().With(slog.String("module", "store")),
	}, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// NeedsSync reports whether the dataset was indexed with a different
// fingerprint, or never.
func (ix *Index) NeedsSync(dataset, hash string) (bool, error) {
	stored, err := ix.GetStoredHash(dataset)
	if err != nil {
		return true, err
	}
	return stored == "" || stored != hash, nil
}

// Sync replaces the indexed rows of dataset with records and stores hash.
func (ix *Index) Sync(dataset, hash string, records []record.Record) (int, error) {
	tx, err := ix.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM labels WHERE dataset = ?", dataset); err != nil {
		return 0, fmt.Errorf("clearing labels: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM nums WHERE dataset = ?", dataset); err != nil {
		return 0, fmt.Errorf("clearing nums: %w", err)
	}

	labelStmt, err := tx.Prepare(`INSERT INTO labels (dataset, row, field, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing labels insert: %w", err)
	}
	defer labelStmt.Close()
	numStmt, err := tx.Prepare(`INSERT INTO nums (dataset, row, field, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing nums insert: %w", err)
	}
	defer numStmt.Close()

	for i, r := range records {
		for field, v := range r.Text {
			if v == "" || (field == record.FieldGenre && len(r.Bool) > 0) {
				continue
			}
			if _, err := labelStmt.Exec(dataset, i, field, v); err != nil {
				return 0, fmt.Errorf("inserting label %s of record %d: %w", field, i+1, err)
			}
		}
		// Songs are indexed under the genre the flow chart draws.
		if len(r.Bool) > 0 {
			for _, g := range songGenre(r) {
				if _, err := labelStmt.Exec(dataset, i, record.FieldGenre, g); err != nil {
					return 0, fmt.Errorf("inserting genre of record %d: %w", i+1, err)
				}
			}
		}
		for field, v := range r.Num {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if _, err := numStmt.Exec(dataset, i, field, v); err != nil {
				return 0, fmt.Errorf("inserting number %s of record %d: %w", field, i+1, err)
			}
		}
		if len(r.Bool) > 0 {
			if _, err := numStmt.Exec(dataset, i, FieldHitCount, r.HitCount); err != nil {
				return 0, fmt.Errorf("inserting hit count of record %d: %w", i+1, err)
			}
		}
	}

	if err := setMeta(tx, hashKey(dataset), hash); err != nil {
		return 0, fmt.Errorf("updating hash: %w", err)
	}
	if err := setMeta(tx, syncKey(dataset), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, fmt.Errorf("updating sync time: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}

	ix.l.Debug("indexed dataset", slog.String("dataset", dataset), slog.Int("records", len(records)))
	return len(records), nil
}

var songGenre = aggregate.Field(record.FieldGenre, "Unknown")

// FieldHitCount is the indexed numeric field holding Record.HitCount.
const FieldHitCount = "hit_count"

// Distinct returns the distinct non-empty values of a categorical field,
// sorted ascending.
func (ix *Index) Distinct(dataset, field string) ([]string, error) {
	rows, err := ix.db.Query(`
		SELECT DISTINCT value FROM labels
		WHERE dataset = ? AND field = ?
		ORDER BY value`, dataset, field)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", field, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GroupSum is one group with the sum of a numeric field over its rows.
type GroupSum struct {
	Value string  `json:"value"`
	Sum   float64 `json:"sum"`
	Rows  int     `json:"rows"`
}

// SumBy sums numField per distinct value of groupField, largest sum first.
// Ties sort by value.
func (ix *Index) SumBy(dataset, groupField, numField string) ([]GroupSum, error) {
	rows, err := ix.db.Query(`
		SELECT l.value, COALESCE(SUM(n.value), 0), COUNT(*)
		FROM labels l
		LEFT JOIN nums n
		  ON n.dataset = l.dataset AND n.row = l.row AND n.field = ?
		WHERE l.dataset = ? AND l.field = ?
		GROUP BY l.value
		ORDER BY 2 DESC, l.value`, numField, dataset, groupField)
	if err != nil {
		return nil, fmt.Errorf("summing %s by %s: %w", numField, groupField, err)
	}
	defer rows.Close()

	var out []GroupSum
	for rows.Next() {
		var g GroupSum
		if err := rows.Scan(&g.Value, &g.Sum, &g.Rows); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Count returns the number of indexed records of dataset.
func (ix *Index) Count(dataset string) (int, error) {
	var n int
	err := ix.db.QueryRow(`
		SELECT COUNT(DISTINCT row) FROM (
		  SELECT row FROM labels WHERE dataset = ?
		  UNION SELECT row FROM nums WHERE dataset = ?
		)`, dataset, dataset).Scan(&n)
	return n, err
}

// Options are the choices offered by the chart filters.
type Options struct {
	Regions   []string   `json:"regions,omitempty"`
	Countries []string   `json:"countries,omitempty"`
	Years     []string   `json:"years,omitempty"`
	Genres    []GroupSum `json:"genres,omitempty"`
	Platforms []string   `json:"platforms,omitempty"`
}

// Options builds the filter option lists: regions and countries sorted,
// years newest first, genres by hit total.
func (ix *Index) Options(songs, happiness string) (Options, error) {
	var o Options
	var err error
	if happiness != "" {
		if o.Regions, err = ix.Distinct(happiness, record.FieldRegion); err != nil {
			return o, err
		}
		if o.Countries, err = ix.Distinct(happiness, record.FieldCountry); err != nil {
			return o, err
		}
		if o.Years, err = ix.Distinct(happiness, record.FieldYear); err != nil {
			return o, err
		}
		sort.Sort(sort.Reverse(sort.StringSlice(o.Years)))
	}
	if songs != "" {
		if o.Genres, err = ix.SumBy(songs, record.FieldGenre, FieldHitCount); err != nil {
			return o, err
		}
		for _, p := range record.Platforms {
			o.Platforms = append(o.Platforms, p.Name)
		}
	}
	return o, nil
}

// String summarizes the options for human output.
func (o Options) String() string {
	var b strings.Builder
	line := func(name string, vals []string) {
		if len(vals) > 0 {
			fmt.Fprintf(&b, "%s (%d): %s\n", name, len(vals), strings.Join(vals, ", "))
		}
	}
	line("Regions", o.Regions)
	line("Countries", o.Countries)
	line("Years", o.Years)
	line("Platforms", o.Platforms)
	if len(o.Genres) > 0 {
		fmt.Fprintf(&b, "Genres (%d):\n", len(o.Genres))
		for _, g := range o.Genres {
			fmt.Fprintf(&b, "  %-24s %6.0f hits  %5d songs\n", g.Value, g.Sum, g.Rows)
		}
	}
	return b.String()
}
