// Package brand holds the product identity shared by the CLI, config loader
// and logger. The values come from brand.json, embedded at compile time, so
// packaging scripts can read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

//go:embed brand.json
var brandJSON []byte

// Brand is the decoded brand.json.
type Brand struct {
	Name             string `json:"name"`
	LowerName        string `json:"lowerName"`
	Vendor           string `json:"vendor"`
	Repository       string `json:"repository"`
	Description      string `json:"description"`
	ConfigEnvPrefix  string `json:"configEnvPrefix"`
	DefaultConfigDir string `json:"defaultConfigDir"`
	ConfigFileName   string `json:"configFileName"`
	BinaryName       string `json:"binaryName"`
	License          string `json:"license"`
}

// ConfigDir resolves the configuration directory. PREFIX_CONFIG_DIR wins
// over PREFIX_PREFIX/config, which wins over the built-in default.
func (b Brand) ConfigDir() string {
	if dir := os.Getenv(b.ConfigEnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(b.ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "config")
	}
	return b.DefaultConfigDir
}

// ConfigPath is the config file inside ConfigDir.
func (b Brand) ConfigPath() string {
	return filepath.Join(b.ConfigDir(), b.ConfigFileName)
}

var current = mustParse(brandJSON)

func mustParse(data []byte) Brand {
	var b Brand
	if err := json.Unmarshal(data, &b); err != nil {
		panic("brand: parse brand.json: " + err.Error())
	}
	return b
}

var (
	Name        = current.Name
	LowerName   = current.LowerName
	Description = current.Description
	BinaryName  = current.BinaryName

	// Set at build time via -ldflags.
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Get returns the embedded brand.
func Get() Brand {
	return current
}

// DefaultConfigPath is where the CLI looks for its config file when none is
// given on the command line.
func DefaultConfigPath() string {
	return current.ConfigPath()
}

// BuildInfo is the one-line version string.
func BuildInfo() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s %s/%s)",
		Name, Version, GitCommit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
