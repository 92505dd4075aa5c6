// Package misslog persists classification misses so that lookup tables can
// be extended from real exports.
package misslog

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/intesasp/xlsx2ofx/internal/model"
)

// Entry is one row in the miss log.
type Entry struct {
	Timestamp time.Time
	RunID     string
	Source    string
	Layout    string
	Row       int
	Field     string
	Text      string
	Fallback  string
}

// Header is the CSV header of the miss log.
const Header = "timestamp,run_id,source,layout,row,field,text,fallback"

const (
	numFields    = 8
	colTimestamp = 0
	colRunID     = 1
	colSource    = 2
	colLayout    = 3
	colRow       = 4
	colField     = 5
	colText      = 6
	colFallback  = 7
)

// FromMisses stamps the misses of one conversion run.
func FromMisses(ts time.Time, runID, source string, misses []model.Miss) []Entry {
	entries := make([]Entry, 0, len(misses))
	for _, m := range misses {
		entries = append(entries, Entry{
			Timestamp: ts,
			RunID:     runID,
			Source:    source,
			Layout:    m.Layout.String(),
			Row:       m.Row,
			Field:     m.Field,
			Text:      m.Text,
			Fallback:  string(m.Fallback),
		})
	}
	return entries
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colSource] = e.Source
	row[colLayout] = e.Layout
	row[colRow] = strconv.Itoa(e.Row)
	row[colField] = e.Field
	row[colText] = e.Text
	row[colFallback] = e.Fallback
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	row, err := strconv.Atoi(record[colRow])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing row %q: %w", record[colRow], err)
	}

	return Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		Source:    record[colSource],
		Layout:    record[colLayout],
		Row:       row,
		Field:     record[colField],
		Text:      record[colText],
		Fallback:  record[colFallback],
	}, nil
}

// Append writes entries to the log at path, creating the file and header if
// needed.
func Append(path string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating miss log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening miss log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries of the log at path. A missing file yields none.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening miss log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading miss log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Count is how often one unmapped text was seen.
type Count struct {
	Layout   string
	Field    string
	Text     string
	Fallback string
	Count    int
	LastSeen time.Time
}

// Summarize groups entries by layout, field and case-folded text, most
// frequent first.
func Summarize(entries []Entry) []Count {
	type key struct{ layout, field, text string }
	idx := make(map[key]int)
	var counts []Count
	for _, e := range entries {
		k := key{e.Layout, e.Field, strings.ToLower(strings.TrimSpace(e.Text))}
		i, ok := idx[k]
		if !ok {
			i = len(counts)
			idx[k] = i
			counts = append(counts, Count{Layout: e.Layout, Field: e.Field, Text: strings.TrimSpace(e.Text), Fallback: e.Fallback})
		}
		counts[i].Count++
		if e.Timestamp.After(counts[i].LastSeen) {
			counts[i].LastSeen = e.Timestamp
		}
	}

	slices.SortStableFunc(counts, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
	})
	return counts
}
