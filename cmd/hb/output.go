package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// outputHumanTo writes a human-readable string to w.
func outputHumanTo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that write a file.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// outputFormat is the --format flag of the chart commands.
type outputFormat string

const (
	formatJSON outputFormat = "json"
	formatSVG  outputFormat = "svg"
	formatHTML outputFormat = "html"
)

var _ pflag.Value = (*outputFormat)(nil)

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Set(v string) error {
	switch outputFormat(strings.ToLower(v)) {
	case formatJSON, formatSVG, formatHTML:
		*f = outputFormat(strings.ToLower(v))
		return nil
	}
	return fmt.Errorf("unknown format %q (want json, svg or html)", v)
}

func (f *outputFormat) Type() string { return "format" }

// writeOutput writes text to path, or stdout when path is empty. A file
// write is confirmed on stdout.
func writeOutput(path, text string) error {
	if path == "" {
		_, err := fmt.Fprint(os.Stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if humanOutput {
		outputHuman("Wrote %s\n", path)
	} else {
		outputJSON(StatusResponse{Status: "written", Path: path})
	}
	return nil
}
