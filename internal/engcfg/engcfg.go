// Package engcfg loads MapView's engine configuration from a TOML file,
// the same configuration format noisetorch-NoiseTorch uses for its
// settings (BurntSushi/toml), generalized from audio-device settings to
// cache budgets, throttle, fade timing, and worker pool sizing.
package engcfg

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kosmograph/mapengine"
)

// Load reads and parses a Config from the TOML file at path, filling in
// mapengine.DefaultConfig's values for any field the file omits.
func Load(path string) (mapengine.Config, error) {
	cfg := mapengine.DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("engcfg: reading %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("engcfg: parsing %s: %w", path, err)
	}
	return cfg, nil
}
