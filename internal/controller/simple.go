package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	m "cachesnap.dev/pkg/cachesnap/internal/model"
)

// SimpleUI implements UI by printing to the command's output stream.
type SimpleUI struct {
	cmd    *cobra.Command
	styled bool
}

// NewSimpleUI creates a new SimpleUI. styled enables terminal styling of
// headlines and should be false when output is not a terminal.
func NewSimpleUI(cmd *cobra.Command, styled bool) *SimpleUI {
	return &SimpleUI{cmd: cmd, styled: styled}
}

var headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))

// DisplayDumpSummary prints the counters of a finished dump.
func (s *SimpleUI) DisplayDumpSummary(ctx context.Context, output m.Path, stats m.Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s\n", s.headline(fmt.Sprintf("Snapshot written to %s", output)))
	s.printf("%s", renderSummaryTable(stats))

	return nil
}

// DisplayBlocks prints decoded snapshot blocks in the requested format.
func (s *SimpleUI) DisplayBlocks(ctx context.Context, blocks []m.Block, format OutputFormat) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch format {
	case FormatYAML:
		return writeBlocksYAML(s.cmd.OutOrStdout(), blocks)
	case FormatTable, "":
		s.printf("%s", renderBlocksTable(blocks))
		return nil
	}

	return fmt.Errorf("unknown output format %q", format)
}

func (s *SimpleUI) headline(text string) string {
	if !s.styled {
		return text
	}

	return headlineStyle.Render(text)
}

func renderSummaryTable(stats m.Stats) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	table.AppendBulk([][]string{
		{"Directories", formatUint(stats.Directories)},
		{"Files seen", formatUint(stats.FilesSeen)},
		{"Files skipped", formatUint(stats.FilesSkipped)},
		{"Files scanned", formatUint(stats.FilesScanned)},
		{"Files with resident pages", formatUint(stats.FilesWithResidency)},
		{"Resident pages", formatUint(stats.ResidentPages)},
		{"Scanned bytes", formatUint(stats.ScannedBytes)},
	})

	table.Render()

	return tableBuffer.String()
}

func renderBlocksTable(blocks []m.Block) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Resident Pages", "First", "Last"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})

	var totalPages int

	for _, block := range blocks {
		first, last := "-", "-"
		if n := len(block.Pages); n > 0 {
			first = formatUint(uint64(block.Pages[0]))
			last = formatUint(uint64(block.Pages[n-1]))
		}

		table.Append([]string{string(block.Path), strconv.Itoa(len(block.Pages)), first, last})

		totalPages += len(block.Pages)
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(blocks)),
		strconv.Itoa(totalPages),
		"",
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func writeBlocksYAML(w io.Writer, blocks []m.Block) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(blocks); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return enc.Close()
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
