package cli

import (
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// exportConfig mirrors the export command's flags for YAML option files.
type exportConfig struct {
	Out       string `yaml:"out"`
	Format    string `yaml:"format"`
	Aligned   bool   `yaml:"aligned"`
	ChunkSize int    `yaml:"chunk_size"`
}

func defaultExportConfig() *exportConfig {
	return &exportConfig{Out: "export", Format: "csv"}
}

func loadExportConfig(path string) (*exportConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	cfg := defaultExportConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if cfg.ChunkSize < 0 {
		return nil, errors.Errorf("config %s: chunk_size must not be negative", path)
	}
	if cfg.Out == "" {
		return nil, errors.Errorf("config %s: out must not be empty", path)
	}
	return cfg, nil
}

// resolveExportConfig layers defaults, then the YAML file when given, then
// any explicitly set flags.
func resolveExportConfig(c *cli.Context) (*exportConfig, error) {
	cfg := defaultExportConfig()
	if path := c.String(configFlag); path != "" {
		loaded, err := loadExportConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if c.IsSet(outFlag) {
		cfg.Out = c.String(outFlag)
	}
	if c.IsSet(formatFlag) {
		cfg.Format = c.String(formatFlag)
	}
	if c.IsSet(alignedFlag) {
		cfg.Aligned = c.Bool(alignedFlag)
	}
	if c.IsSet(chunkSizeFlag) {
		cfg.ChunkSize = c.Int(chunkSizeFlag)
	}
	return cfg, nil
}
