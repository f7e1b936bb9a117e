package config

import "time"

type TelemetryCfg struct {
	// Interval between two stats log lines, a duration string ("5s") in YAML.
	Interval time.Duration `yaml:"interval"`
}

func (cfg *TelemetryCfg) Enabled() bool {
	return cfg != nil
}
