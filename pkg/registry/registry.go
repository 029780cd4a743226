// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed reports.json
var defaultCatalog []byte

// LoadRegistry reads a report catalog from path.
func LoadRegistry(path string) (*ReportRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// Default returns the built-in report catalog.
func Default() *ReportRegistry {
	reg, err := parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded report catalog: %v", err))
	}
	return reg
}

// Lookup returns the report with id.
func (r *ReportRegistry) Lookup(id string) (Report, bool) {
	for _, rep := range r.Reports {
		if rep.ID == id {
			return rep, true
		}
	}
	return Report{}, false
}

func parse(data []byte) (*ReportRegistry, error) {
	var reg ReportRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(reg.Reports))
	for _, rep := range reg.Reports {
		if rep.ID == "" || rep.Path == "" {
			return nil, fmt.Errorf("report entry missing id or path")
		}
		if seen[rep.ID] {
			return nil, fmt.Errorf("duplicate report id %q", rep.ID)
		}
		seen[rep.ID] = true
	}

	return &reg, nil
}
