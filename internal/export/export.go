// Package export serializes statements for downstream accounting tools.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/intesasp/xlsx2ofx/internal/model"
)

// Format is an output encoding.
type Format string

const (
	FormatOFX Format = "ofx"
	FormatCSV Format = "csv"
)

// ParseFormat converts a format name (any case) into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatOFX, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want ofx or csv)", s)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Write encodes st in format f. now stamps the OFX server date.
func Write(w io.Writer, f Format, st *model.Statement, now time.Time) error {
	switch f {
	case FormatOFX:
		return WriteOFX(w, st, now)
	case FormatCSV:
		return WriteCSV(w, st)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}
