package flags

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectConfigFileName is looked up in the queried file's directory and all its parents.
// The nearest one wins, so a subproject can override the settings of the tree above it.
const ProjectConfigFileName = ".cflagd.toml"

// ProjectConfig is a per-project override for the provider defaults.
type ProjectConfig struct {
	Std         string   // C dialect for -std, e.g. "gnu99"
	IncludeDirs []string // extra -I dirs, relative to the config file's directory unless absolute
}

// FindProjectConfig walks up from filePath's directory and returns the path of the
// nearest project config file, or "" if there is none up to the filesystem root.
func FindProjectConfig(filePath string) string {
	dir := filepath.Dir(filePath)
	for {
		candidate := filepath.Join(dir, ProjectConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ParseProjectConfig reads a project config file.
// Relative include dirs are resolved against the config file's directory,
// so the resulting tokens are usable from any working directory.
func ParseProjectConfig(configPath string) (*ProjectConfig, error) {
	config := ProjectConfig{}
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(configPath)
	for i, dir := range config.IncludeDirs {
		if !filepath.IsAbs(dir) {
			config.IncludeDirs[i] = filepath.Join(configDir, dir)
		}
	}

	return &config, nil
}
