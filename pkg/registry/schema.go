// pkg/registry/schema.go
package registry

// ReportRegistry is the catalog of dashboard reports.
type ReportRegistry struct {
	Version     string   `json:"version"`
	LastUpdated string   `json:"lastUpdated"`
	Reports     []Report `json:"reports"`
}

// Report describes one report endpoint.
type Report struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Path        string   `json:"path"`
	Kind        string   `json:"kind"`
	Aggregation string   `json:"aggregation,omitempty"`
	Tags        []string `json:"tags"`
}
