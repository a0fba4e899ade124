// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game GameConfig `toml:"game"`
}

// GameConfig maps game-related settings. Nil fields keep the flag default.
type GameConfig struct {
	Name        *string `toml:"name"`
	Grid        *int    `toml:"grid"`
	TimeLimit   *int    `toml:"time-limit"`
	Sound       *bool   `toml:"sound"`
	ScoresFile  *string `toml:"scores-file"`
	SymbolsFile *string `toml:"symbols-file"`
}

// Template is written by the config command when no file exists yet.
const Template = `# tuipairs configuration
# Values here are used unless the matching flag is passed.

[game]
# name = "Player"
# grid = 4            # 4 (Easy), 6 (Medium) or 8 (Hard)
# time-limit = 180    # seconds
# sound = true
# scores-file = "highscores.txt"
# symbols-file = ""   # one symbol per line, blank and # lines ignored
`

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
