package app

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultDataDir is where the application reads and writes module data
// when no --data-dir is given.
const DefaultDataDir = "target/data"

// Config holds the application initialization settings. It can come
// from a YAML conf file, an argument vector, or both — flags override
// file values.
type Config struct {
	// Modules selects which application modules to enable.
	Modules []string `yaml:"modules"`

	// DataDir is the root directory for module input/output data.
	DataDir string `yaml:"data_dir"`

	// Props are free-form application properties.
	Props map[string]string `yaml:"props"`
}

// ParseArgs builds a Config from an argument vector, e.g.
//
//	ParseArgs([]string{"-m", "stage.modules", "--data-dir", dir,
//	    "--props", "slate.keep_going=true"})
//
// Recognized flags: --modules/-m, --data-dir, --props k=v (repeatable),
// and --conf pointing at a YAML defaults file. Unknown flags are an
// error, not silently ignored.
func ParseArgs(args []string) (Config, error) {
	fs := pflag.NewFlagSet("slatetest", pflag.ContinueOnError)
	modules := fs.StringSliceP("modules", "m", nil, "module selection")
	dataDir := fs.String("data-dir", "", "root directory for module data")
	props := fs.StringArray("props", nil, "application property (k=v)")
	conf := fs.String("conf", "", "YAML config file with defaults")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse app args: %w", err)
	}

	var cfg Config
	if *conf != "" {
		loaded, err := loadConf(*conf)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if cfg.Props == nil {
		cfg.Props = make(map[string]string)
	}

	if len(*modules) > 0 {
		cfg.Modules = *modules
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	for _, p := range *props {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return Config{}, fmt.Errorf("parse app args: property %q is not k=v", p)
		}
		cfg.Props[k] = v
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	return cfg, nil
}

// loadConf reads a YAML defaults file with strict field validation, so
// a typo like "module:" instead of "modules:" fails loudly.
func loadConf(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read conf file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse conf file %s: %w", path, err)
	}
	return cfg, nil
}
