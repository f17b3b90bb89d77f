// Package csvio reads the constructs and source plate files and writes the
// run information files that accompany the generated scripts.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"assemblycore/internal/core"
)

const utf8BOM = "\ufeff"

// ReadConstructs parses a constructs file. The header row is skipped, empty
// cells are dropped and the first remaining cell names the construct. An empty
// line or a row without tokens is returned as a tokenless row, which ends the
// input for the planner.
func ReadConstructs(r io.Reader) ([]core.ConstructRow, error) {
	reader := newReader(r)
	var rows []core.ConstructRow
	lastLine := 0
	for index := 0; ; index++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read constructs: %w", err)
		}
		start, _ := reader.FieldPos(0)
		end, _ := reader.FieldPos(len(record) - 1)
		skipped := index > 0 && start > lastLine+1
		lastLine = end
		if index == 0 {
			continue
		}
		if skipped {
			// encoding/csv drops blank lines; they still end the construct list.
			rows = append(rows, core.ConstructRow{})
			break
		}
		cells := nonEmpty(record)
		if len(cells) < 2 {
			rows = append(rows, core.ConstructRow{Name: firstOrEmpty(cells)})
			break
		}
		rows = append(rows, core.ConstructRow{Name: cells[0], Tokens: cells[1:]})
	}
	return rows, nil
}

// ReadConstructsFile opens path and parses it with ReadConstructs.
func ReadConstructsFile(path string) ([]core.ConstructRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	rows, err := ReadConstructs(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadSources parses one source plate file: name, well and an optional
// concentration in ng/µL. A blank concentration leaves the entry at the
// standard input amount.
func ReadSources(r io.Reader, path string) (core.SourceFile, error) {
	reader := newReader(r)
	file := core.SourceFile{Path: path}
	for index := 0; ; index++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.SourceFile{}, fmt.Errorf("read sources: %w", err)
		}
		if index == 0 || len(nonEmpty(record)) == 0 {
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(record) < 2 || strings.TrimSpace(record[0]) == "" {
			return core.SourceFile{}, fmt.Errorf("line %d: expected name and well", line)
		}
		entry := core.SourceEntry{
			Name: strings.TrimSpace(record[0]),
			Well: strings.TrimSpace(record[1]),
		}
		if len(record) > 2 {
			if raw := strings.TrimSpace(record[2]); raw != "" {
				value, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return core.SourceFile{}, fmt.Errorf("line %d: concentration %q: %w", line, raw, err)
				}
				entry.Concentration = &value
			}
		}
		file.Entries = append(file.Entries, entry)
	}
	return file, nil
}

// ReadSourceFile opens path and parses it with ReadSources.
func ReadSourceFile(path string) (core.SourceFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.SourceFile{}, err
	}
	defer func() { _ = f.Close() }()
	file, err := ReadSources(f, path)
	if err != nil {
		return core.SourceFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(&bomSkipper{r: r})
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

func nonEmpty(record []string) []string {
	out := make([]string, 0, len(record))
	for _, cell := range record {
		if cell = strings.TrimSpace(cell); cell != "" {
			out = append(out, cell)
		}
	}
	return out
}

func firstOrEmpty(cells []string) string {
	if len(cells) == 0 {
		return ""
	}
	return cells[0]
}

// bomSkipper drops a leading UTF-8 byte order mark written by spreadsheet exports.
type bomSkipper struct {
	r       io.Reader
	checked bool
	pending []byte
}

func (b *bomSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head := make([]byte, len(utf8BOM))
		n, err := io.ReadFull(b.r, head)
		head = head[:n]
		if string(head) != utf8BOM {
			b.pending = head
		}
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return 0, err
		}
	}
	if len(b.pending) > 0 {
		n := copy(p, b.pending)
		b.pending = b.pending[n:]
		return n, nil
	}
	return b.r.Read(p)
}
