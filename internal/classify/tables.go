package classify

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/intesasp/xlsx2ofx/internal/model"
)

//go:embed tables.yaml
var defaultTables []byte

// Tables maps normalized free text onto ISO currency codes and movement types.
// A Tables value is read-only once built and may be shared between runs.
type Tables struct {
	Currencies   map[string]string
	Descriptions map[string]model.TrnType
	Categories   map[string]model.TrnType
}

type tablesFile struct {
	Currencies   map[string]string `yaml:"currencies"`
	Descriptions map[string]string `yaml:"descriptions"`
	Categories   map[string]string `yaml:"categories"`
}

// Key normalizes lookup text: Unicode NFC, lower case, single spaces.
func Key(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// DefaultTables returns the built-in tables.
func DefaultTables() (*Tables, error) {
	t := &Tables{
		Currencies:   make(map[string]string),
		Descriptions: make(map[string]model.TrnType),
		Categories:   make(map[string]model.TrnType),
	}
	if err := t.merge(defaultTables); err != nil {
		return nil, fmt.Errorf("built-in tables: %w", err)
	}
	return t, nil
}

// LoadTables returns the built-in tables extended, and where keys collide
// overridden, by the YAML file at path. An empty path yields the defaults.
func LoadTables(path string) (*Tables, error) {
	t, err := DefaultTables()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tables: %w", err)
	}
	if err := t.merge(data); err != nil {
		return nil, fmt.Errorf("tables %s: %w", path, err)
	}
	return t, nil
}

func (t *Tables) merge(data []byte) error {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing tables: %w", err)
	}

	for text, code := range f.Currencies {
		unit, err := currency.ParseISO(strings.TrimSpace(code))
		if err != nil {
			return fmt.Errorf("currency %q: %q is not an ISO 4217 code", text, code)
		}
		t.Currencies[Key(text)] = unit.String()
	}
	if err := mergeTypes(t.Descriptions, f.Descriptions, "description"); err != nil {
		return err
	}
	return mergeTypes(t.Categories, f.Categories, "category")
}

func mergeTypes(dst map[string]model.TrnType, src map[string]string, kind string) error {
	parsed := make(map[string]model.TrnType, len(src))
	for text, tag := range src {
		tt, err := model.ParseTrnType(tag)
		if err != nil {
			return fmt.Errorf("%s %q: %w", kind, text, err)
		}
		parsed[Key(text)] = tt
	}
	maps.Copy(dst, parsed)
	return nil
}
