package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// detectUnknownFields compares the raw document with the known struct
// fields and returns one warning per unknown key.
func detectUnknownFields(raw any) []string {
	root, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	var warnings []string
	known := getYAMLFields(reflect.TypeOf(File{}))
	for _, key := range sortedKeys(root) {
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
		}
	}

	sections := map[string]reflect.Type{
		"output": reflect.TypeOf(OutputConfig{}),
		"run":    reflect.TypeOf(RunConfig{}),
	}
	for _, name := range []string{"output", "run"} {
		section, ok := root[name].(map[string]any)
		if !ok {
			continue
		}
		fields := getYAMLFields(sections[name])
		for _, key := range sortedKeys(section) {
			if !fields[key] {
				warnings = append(warnings, fmt.Sprintf("unknown field %q in %s (ignored)", key, name))
			}
		}
	}
	return warnings
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// getYAMLFields returns the set of yaml field names of a struct type.
func getYAMLFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			fields[name] = true
		}
	}
	return fields
}
