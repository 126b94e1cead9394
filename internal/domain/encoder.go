package domain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	m "cachesnap.dev/pkg/cachesnap/internal/model"
)

// Snapshot format errors.
var (
	ErrOrphanDelta   = errors.New("delta line before any path line")
	ErrMalformedLine = errors.New("empty line in snapshot")
)

// maxLineBytes bounds a single snapshot line when decoding.
const maxLineBytes = 1 << 20

// DeltaEncoder writes one file's block: the path line, written lazily before
// the first page, then one decimal gap per resident page.
type DeltaEncoder struct {
	w             io.Writer
	path          m.Path
	last          m.PageIndex
	headerWritten bool
	pages         uint64
	buf           []byte
}

// NewDeltaEncoder constructs an encoder for a single file.
func NewDeltaEncoder(w io.Writer, path m.Path) *DeltaEncoder {
	return &DeltaEncoder{w: w, path: path, buf: make([]byte, 0, 24)}
}

// Encode records a resident page. Pages must arrive in ascending order.
func (e *DeltaEncoder) Encode(page m.PageIndex) error {
	if !e.headerWritten {
		if _, err := io.WriteString(e.w, string(e.path)+"\n"); err != nil {
			return fmt.Errorf("write header for %s: %w", e.path, err)
		}

		e.headerWritten = true
	}

	e.buf = strconv.AppendUint(e.buf[:0], uint64(page-e.last), 10)
	e.buf = append(e.buf, '\n')

	if _, err := e.w.Write(e.buf); err != nil {
		return fmt.Errorf("write delta for %s: %w", e.path, err)
	}

	e.last = page
	e.pages++

	return nil
}

// Wrote reports whether anything was written for the file.
func (e *DeltaEncoder) Wrote() bool {
	return e.headerWritten
}

// Pages returns the number of pages encoded so far.
func (e *DeltaEncoder) Pages() uint64 {
	return e.pages
}

// DecodeSnapshot reads decompressed snapshot text and calls visit once per
// block. A line that parses as an unsigned integer is a delta; anything else
// starts a new block.
func DecodeSnapshot(r io.Reader, visit func(block m.Block) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		current *m.Block
		last    m.PageIndex
		lineNo  int
	)

	flush := func() error {
		if current == nil {
			return nil
		}

		return visit(*current)
	}

	for sc.Scan() {
		lineNo++
		line := sc.Text()

		if line == "" {
			return fmt.Errorf("line %d: %w", lineNo, ErrMalformedLine)
		}

		if delta, err := strconv.ParseUint(line, 10, 64); err == nil {
			if current == nil {
				return fmt.Errorf("line %d: %w", lineNo, ErrOrphanDelta)
			}

			last += m.PageIndex(delta)
			current.Pages = append(current.Pages, last)

			continue
		}

		if err := flush(); err != nil {
			return err
		}

		current = &m.Block{Path: m.Path(line)}
		last = 0
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	return flush()
}
