package handlers

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/imamik/gkectl/internal/spec"
)

// ParamFlags are the flat parameters of a create command: an optional YAML
// file of key/value pairs overridden by repeated --set key=value flags.
type ParamFlags struct {
	File string
	Sets []string
}

// values merges the parameter file and the --set pairs.
func (p ParamFlags) values() (map[string]any, error) {
	values := map[string]any{}
	if p.File != "" {
		// #nosec G304
		data, err := os.ReadFile(p.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read params file: %w", err)
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to parse params file %s: %w", p.File, err)
		}
		if values == nil {
			values = map[string]any{}
		}
	}
	for _, set := range p.Sets {
		key, value, ok := strings.Cut(set, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", set)
		}
		values[key] = value
	}
	return values, nil
}

var labelsType = reflect.TypeOf(map[string]string{})

// labelsHook turns "k=v,k2=v2" (or newline separated pairs) into a label map.
func labelsHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != labelsType {
		return data, nil
	}
	labels, err := spec.ParseLabels(strings.ReplaceAll(data.(string), ",", "\n"))
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = map[string]string{}
	}
	return labels, nil
}

// decodeParams decodes loosely typed values into out. Strings convert to the
// field type, comma separated strings to lists, and unknown keys are errors.
func decodeParams(values map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			labelsHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(values); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}
