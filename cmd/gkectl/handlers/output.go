package handlers

import (
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"
)

// Output formats for command results.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// checkOutput rejects unknown output formats before any work is done.
func checkOutput(format string) error {
	switch format {
	case "", OutputJSON, OutputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want %s or %s)", format, OutputJSON, OutputYAML)
}

// printResult writes v to stdout in the requested format. API objects are
// rendered through their json tags in both formats.
func printResult(format string, v any) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "", OutputJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	case OutputYAML:
		data, err = yaml.Marshal(v)
	default:
		return checkOutput(format)
	}
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	_, err = stdout.Write(data)
	return err
}
