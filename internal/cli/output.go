package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
)

var (
	legalOutputTypes = []string{jsonFormat, yamlFormat}
)

func bindOutput(fs *pflag.FlagSet, output *string) {
	fs.StringVarP(output, "output", "o", *output, fmt.Sprintf("Output format. One of: (%s). Default is a table.", strings.Join(legalOutputTypes, ", ")))
}

func validateOutput(output string) error {
	if len(output) > 0 && !funk.Contains(legalOutputTypes, output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

// printResource writes v as json or yaml, or as a table through printTable when no format is given.
func printResource(w io.Writer, output string, v any, printTable func(w *tabwriter.Writer)) error {
	switch output {
	case jsonFormat:
		marshalled, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		fmt.Fprintf(w, "%s\n", string(marshalled))
		return nil
	case yamlFormat:
		marshalled, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		fmt.Fprintf(w, "%s", string(marshalled))
		return nil
	default:
		tw := tabwriter.NewWriter(w, 0, 8, 1, '\t', 0)
		printTable(tw)
		return tw.Flush()
	}
}
