package config

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"strings"
)

// LoadConfig reads a YAML config and validates it.
// Malformed or out-of-range values are reported with ErrInvalidConfiguration.
func LoadConfig(path string) (*Cache, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes a YAML document into a validated Cache config.
// Durations must be written as strings such as "1500ms" or "1s".
func ParseConfig(data []byte) (*Cache, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: unmarshal yaml: %w", ErrInvalidConfiguration, err)
	}
	if err := checkDurations(&doc); err != nil {
		return nil, err
	}

	cfg := &Cache{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal yaml: %w", ErrInvalidConfiguration, err)
	}
	if _, err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var durationKeys = [][]string{
	{"hot_cache_ttl"},
	{"telemetry", "interval"},
}

// checkDurations rejects bare integers for duration keys: yaml reads them as nanoseconds.
func checkDurations(doc *yaml.Node) error {
	for _, path := range durationKeys {
		n := lookup(doc, path)
		if n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() == "!!int" {
			return invalid(strings.Join(path, "."), `must be a duration string such as "1s"`, n.Value)
		}
	}
	return nil
}

func lookup(n *yaml.Node, path []string) *yaml.Node {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		n = n.Content[0]
	}
	for _, key := range path {
		if n.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == key {
				next = n.Content[i+1]
			}
		}
		if next == nil {
			return nil
		}
		n = next
	}
	return n
}
