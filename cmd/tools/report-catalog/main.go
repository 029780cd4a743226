// cmd/tools/report-catalog/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"soc-dashboard/internal/reports"
	"soc-dashboard/pkg/registry"
)

var catalogPath string

func main() {
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{listCmd, updateCmd, validateCmd} {
		fs.StringVar(&catalogPath, "path", "", "Path to catalog file (defaults to the built-in catalog)")
	}

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Report ID to update")
	field := updateCmd.String("field", "", "Field to update (displayName, description, category, path)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		listCmd.Parse(os.Args[2:])
		reg, err := loadCatalog(catalogPath)
		if err != nil {
			fmt.Printf("Error loading catalog: %v\n", err)
			os.Exit(1)
		}
		listCatalog(os.Stdout, reg)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if catalogPath == "" || *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: path, id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateReport(catalogPath, *idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated report %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := loadCatalog(catalogPath)
		if err == nil {
			err = validateCatalog(reg)
		}
		if err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog validation passed. Found %d reports.\n", len(reg.Reports))

	case "help":
		fallthrough
	default:
		help(os.Stdout)
	}
}

func loadCatalog(path string) (*registry.ReportRegistry, error) {
	if path == "" {
		return registry.Default(), nil
	}
	return registry.LoadRegistry(path)
}

func listCatalog(w io.Writer, reg *registry.ReportRegistry) {
	for _, rep := range reg.Reports {
		fmt.Fprintf(w, "%-14s %-6s %-28s %s\n", rep.ID, rep.Kind, rep.Path, rep.DisplayName)
	}
}

func updateReport(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	found := false
	for i := range reg.Reports {
		if reg.Reports[i].ID != id {
			continue
		}
		found = true
		switch field {
		case "displayName":
			reg.Reports[i].DisplayName = value
		case "description":
			reg.Reports[i].Description = value
		case "category":
			reg.Reports[i].Category = value
		case "path":
			reg.Reports[i].Path = value
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		break
	}

	if !found {
		return fmt.Errorf("report with ID %s not found", id)
	}
	if err := validateCatalog(reg); err != nil {
		return err
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveCatalog(reg, path)
}

// validateCatalog checks the catalog against the report implementations the
// server would route it to.
func validateCatalog(reg *registry.ReportRegistry) error {
	return reports.NewService(nil, nil, nil).ValidateCatalog(reg)
}

func saveCatalog(reg *registry.ReportRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

func help(w io.Writer) {
	fmt.Fprint(w, `
Usage: report-catalog <command> [flags]

Commands:
  list     Print the reports in the catalog
  update   Update a field of an existing report
  validate Validate the catalog
  help     Show this help message

Examples:
  report-catalog list
  report-catalog validate -path configs/reports.json
  report-catalog update -path configs/reports.json -id mitre -field displayName -value "MITRE ATT&CK"

Use 'report-catalog <command> -h' for more information about a command.
`)
}
