package layout

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnrecognized is returned when no registered layout's sheet is present.
var ErrUnrecognized = errors.New("unrecognized workbook format")

// Registry holds layouts in detection priority order.
type Registry struct {
	layouts []Layout
}

// NewRegistry creates an empty layout registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a layout at the lowest priority. Panics on duplicate name.
func (r *Registry) Register(l Layout) {
	if r.Get(l.Name()) != nil {
		panic("duplicate layout: " + l.Name())
	}
	r.layouts = append(r.layouts, l)
}

// Get returns the layout named name (case-insensitive), or nil.
func (r *Registry) Get(name string) Layout {
	for _, l := range r.layouts {
		if strings.EqualFold(l.Name(), name) {
			return l
		}
	}
	return nil
}

// Names lists registered layout names in priority order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.layouts))
	for i, l := range r.layouts {
		names[i] = l.Name()
	}
	return names
}

// Detect returns the first layout, in priority order, whose sheet is among
// sheetNames.
func (r *Registry) Detect(sheetNames []string) (Layout, error) {
	for _, l := range r.layouts {
		if slices.Contains(sheetNames, l.Sheet()) {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: no sheet named %s (found %s)",
		ErrUnrecognized, strings.Join(r.sheets(), " or "), strings.Join(sheetNames, ", "))
}

func (r *Registry) sheets() []string {
	sheets := make([]string, len(r.layouts))
	for i, l := range r.layouts {
		sheets[i] = fmt.Sprintf("%q", l.Sheet())
	}
	return sheets
}

// DefaultRegistry returns a registry with the built-in layouts. The legacy
// transaction list takes priority.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(IntesaTransactionList())
	r.Register(IntesaOperationList())
	return r
}

// Detect runs detection against the default registry.
func Detect(sheetNames []string) (Layout, error) {
	return DefaultRegistry().Detect(sheetNames)
}
