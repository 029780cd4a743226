package reports

import (
	"fmt"
	"strings"

	"soc-dashboard/pkg/registry"
)

// ValidateCatalog checks that every catalog entry is routable under /api/ and
// agrees with the report implementation on kind and aggregation.
func (s *Service) ValidateCatalog(reg *registry.ReportRegistry) error {
	if reg == nil || len(reg.Reports) == 0 {
		return fmt.Errorf("catalog contains no reports")
	}

	paths := make(map[string]string)
	for _, rep := range reg.Reports {
		if rep.DisplayName == "" {
			return fmt.Errorf("report %s missing required field: displayName", rep.ID)
		}
		if !strings.HasPrefix(rep.Path, "/api/") {
			return fmt.Errorf("report %s path %q must start with /api/", rep.ID, rep.Path)
		}
		if other, ok := paths[rep.Path]; ok {
			return fmt.Errorf("reports %s and %s share path %s", other, rep.ID, rep.Path)
		}
		paths[rep.Path] = rep.ID

		q, ok := s.Describe(rep.ID)
		if !ok {
			return fmt.Errorf("report %s has no implementation", rep.ID)
		}
		if rep.Kind != string(q.Kind) {
			return fmt.Errorf("report %s has kind %q, implementation issues %q", rep.ID, rep.Kind, q.Kind)
		}
		if rep.Aggregation != q.Aggregation {
			return fmt.Errorf("report %s has aggregation %q, implementation reads %q", rep.ID, rep.Aggregation, q.Aggregation)
		}
	}
	return nil
}
