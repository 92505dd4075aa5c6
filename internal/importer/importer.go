// Package importer turns a bank spreadsheet export into a normalized
// statement: layout detection, header extraction, row streaming and
// movement normalization.
package importer

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/intesasp/xlsx2ofx/internal/classify"
	"github.com/intesasp/xlsx2ofx/internal/id"
	"github.com/intesasp/xlsx2ofx/internal/layout"
	"github.com/intesasp/xlsx2ofx/internal/model"
	"github.com/intesasp/xlsx2ofx/internal/workbook"
)

// DefaultBankID is used when Options.BankID is empty.
const DefaultBankID = "IntesaSP"

// Options configures one conversion.
type Options struct {
	BankID string
	// Layout forces a template instead of detecting it from sheet names.
	Layout   layout.Layout
	Registry *layout.Registry
	Tables   *classify.Tables
	Logger   *log.Logger
}

// Extractor converts one open workbook. It is not safe for concurrent use.
type Extractor struct {
	book   workbook.Book
	layout layout.Layout
	bankID string
	tables *classify.Tables
	logger *log.Logger

	classifier *classify.Classifier
	ids        *id.Generator
}

// NewExtractor resolves the workbook layout and prepares a conversion.
// The caller keeps ownership of book.
func NewExtractor(book workbook.Book, opts Options) (*Extractor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	l := opts.Layout
	if l == nil {
		reg := opts.Registry
		if reg == nil {
			reg = layout.DefaultRegistry()
		}
		var err error
		l, err = reg.Detect(book.SheetNames())
		if err != nil {
			return nil, err
		}
	}
	logger.Debug("layout resolved", "layout", l.Name(), "sheet", l.Sheet())

	tables := opts.Tables
	if tables == nil {
		var err error
		tables, err = classify.DefaultTables()
		if err != nil {
			return nil, err
		}
	}

	bankID := opts.BankID
	if bankID == "" {
		bankID = DefaultBankID
	}

	return &Extractor{
		book:   book,
		layout: l,
		bankID: bankID,
		tables: tables,
		logger: logger,
	}, nil
}

// Layout returns the template the workbook was matched to.
func (e *Extractor) Layout() layout.Layout {
	return e.layout
}

// Header reads the statement metadata only. The returned statement has no
// movements.
func (e *Extractor) Header() (*model.Statement, error) {
	e.reset()
	return e.header()
}

// Extract reads the whole statement. It either returns a complete statement
// or an error, never a partial result.
func (e *Extractor) Extract() (*model.Statement, error) {
	e.reset()
	st, err := e.header()
	if err != nil {
		return nil, err
	}

	rows := e.Rows()
	for rows.Next() {
		m, err := e.normalize(rows.Row())
		if err != nil {
			return nil, err
		}
		st.Movements = append(st.Movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	st.Misses = e.classifier.Misses()
	e.logger.Debug("statement extracted",
		"layout", st.Layout, "account", st.AccountID, "movements", len(st.Movements), "misses", len(st.Misses))
	return st, nil
}

func (e *Extractor) reset() {
	e.classifier = classify.New(e.tables, e.layout.Variant(), e.logger)
	e.ids = id.NewGenerator()
}

// ExtractFile opens the workbook at path, extracts its statement and closes
// the workbook on every path.
func ExtractFile(path string, opts Options) (st *model.Statement, err error) {
	err = withExtractor(path, opts, func(e *Extractor) error {
		st, err = e.Extract()
		return err
	})
	return st, err
}

// InspectFile is ExtractFile without the movements.
func InspectFile(path string, opts Options) (st *model.Statement, err error) {
	err = withExtractor(path, opts, func(e *Extractor) error {
		st, err = e.Header()
		return err
	})
	return st, err
}

// openBook is replaced in tests.
var openBook = func(path string) (workbook.Book, error) {
	return workbook.Open(path)
}

func withExtractor(path string, opts Options, fn func(*Extractor) error) (err error) {
	book, err := openBook(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := book.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing workbook: %w", cerr)
		}
	}()

	e, err := NewExtractor(book, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := fn(e); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
