package config

// CompressionCfg
//   - Supported levels (zstd encoder speeds):
//     SpeedFastest           = 1
//     SpeedDefault           = 2
//     SpeedBetterCompression = 3
//     SpeedBestCompression   = 4
type CompressionCfg struct {
	Level int `yaml:"level"`
}

func (cfg *CompressionCfg) Enabled() bool {
	return cfg != nil
}
