package record

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadCSV reads a header row followed by data rows.
// Short rows leave the missing columns empty; extra cells are ignored.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []Row
	line := 1
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}

		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadJSON reads a JSON array of flat objects.
// Scalars are stringified so that the normalizer sees one representation:
// booleans become the truth token or "False", null becomes "".
func ReadJSON(r io.Reader) ([]Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var objs []map[string]any
	if err := dec.Decode(&objs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	rows := make([]Row, 0, len(objs))
	for _, obj := range objs {
		rows = append(rows, rowFromObject(obj))
	}
	return rows, nil
}

// ReadJSONL reads one flat JSON object per line. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]Row, error) {
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	var rows []Row
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var obj map[string]any
		dec := json.NewDecoder(strings.NewReader(string(line)))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		rows = append(rows, rowFromObject(obj))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading JSONL: %w", err)
	}
	return rows, nil
}

func rowFromObject(obj map[string]any) Row {
	row := make(Row, len(obj))
	for k, v := range obj {
		row[k] = stringify(v)
	}
	return row
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return DefaultTruthToken
		}
		return "False"
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		// Nested values are not part of any schema; keep them inspectable.
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
