package config

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// iniParser implements koanf.Parser for INI-style config files. Keys in the
// default section land at the top level; named sections become nested maps.
type iniParser struct{}

// Unmarshal parses INI bytes into a nested map keyed by section.
func (iniParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	f, err := ini.Load(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse INI: %w", err)
	}

	out := make(map[string]interface{})
	for _, section := range f.Sections() {
		keys := make(map[string]interface{}, len(section.Keys()))
		for _, k := range section.Keys() {
			keys[strings.ToLower(k.Name())] = k.Value()
		}

		if section.Name() == ini.DefaultSection {
			for k, v := range keys {
				out[k] = v
			}
			continue
		}
		if len(keys) > 0 {
			out[strings.ToLower(section.Name())] = keys
		}
	}
	return out, nil
}

// Marshal renders a nested map back to INI bytes.
func (iniParser) Marshal(m map[string]interface{}) ([]byte, error) {
	f := ini.Empty()

	// Deterministic section/key order.
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sub, ok := m[name].(map[string]interface{})
		if !ok {
			if _, err := f.Section(ini.DefaultSection).NewKey(name, fmt.Sprint(m[name])); err != nil {
				return nil, err
			}
			continue
		}

		section, err := f.NewSection(name)
		if err != nil {
			return nil, err
		}
		subKeys := make([]string, 0, len(sub))
		for k := range sub {
			subKeys = append(subKeys, k)
		}
		sort.Strings(subKeys)
		for _, k := range subKeys {
			if _, err := section.NewKey(k, fmt.Sprint(sub[k])); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
