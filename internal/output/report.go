package output

import (
	"os"

	"github.com/rpgo/policy-projector/internal/config"
	"github.com/rpgo/policy-projector/internal/domain"
	"gopkg.in/yaml.v3"
)

// GenerateReport writes the result in the named format to dir and returns the files written.
// "all" writes the verbose console report, the row CSV and the JSON document.
func GenerateReport(result *domain.ProjectionResult, format, dir string) ([]string, error) {
	var formatters []Formatter
	if NormalizeFormatName(format) == "all" {
		formatters = []Formatter{ConsoleVerboseFormatter{}, CSVDetailedExporter{}, JSONFormatter{}}
	} else {
		f, err := Lookup(format)
		if err != nil {
			return nil, err
		}
		formatters = []Formatter{f}
	}

	files := make([]string, 0, len(formatters))
	for _, f := range formatters {
		name, err := WriteFormatted(f, result, dir, Extension(f))
		if err != nil {
			return files, err
		}
		files = append(files, name)
	}
	return files, nil
}

// SaveAssumptions writes an assumption set as YAML, e.g. for the example command.
func SaveAssumptions(in *config.AssumptionInput, filename string) error {
	b, err := yaml.Marshal(in)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}
