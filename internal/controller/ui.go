// Package controller renders snapshot results for the command line.
package controller

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	m "cachesnap.dev/pkg/cachesnap/internal/model"
)

// OutputFormat selects how decoded snapshot blocks are rendered.
type OutputFormat string

// Supported output formats.
const (
	FormatTable OutputFormat = "table"
	FormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a user-supplied format name.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(value) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatYAML:
		return FormatYAML, nil
	}

	return "", fmt.Errorf("unknown output format %q (want %q or %q)", value, FormatTable, FormatYAML)
}

// UI defines how results are presented to the user.
type UI interface {
	DisplayDumpSummary(ctx context.Context, output m.Path, stats m.Stats) error
	DisplayBlocks(ctx context.Context, blocks []m.Block, format OutputFormat) error
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
