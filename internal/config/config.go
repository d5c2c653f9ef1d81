package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/csheth/logopreview/internal/editor"
)

// Config is the merged result of defaults, the config file and flags.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Preview  PreviewConfig  `toml:"preview"`
	Controls ControlsConfig `toml:"controls"`
	Logger   LoggerConfig   `toml:"logger"`
	Output   OutputConfig   `toml:"output"`

	// Path is the file the config was read from, empty when none existed.
	Path string `toml:"-"`
	// Unknown lists keys in the file that no field consumed.
	Unknown []string `toml:"-"`
}

type ServerConfig struct {
	URL     string   `toml:"url"`
	Timeout Duration `toml:"timeout"`
}

type PreviewConfig struct {
	Debounce    Duration `toml:"debounce"`
	MaxUploadMB int      `toml:"max_upload_mb"`
}

type ControlsConfig struct {
	OffsetMin  int     `toml:"offset_min"`
	OffsetMax  int     `toml:"offset_max"`
	OffsetStep int     `toml:"offset_step"`
	ScaleMin   float64 `toml:"scale_min"`
	ScaleMax   float64 `toml:"scale_max"`
	ScaleStep  float64 `toml:"scale_step"`
}

type LoggerConfig struct {
	Level string `toml:"level"`
	// File receives the log; "-" is stderr and "off" disables logging.
	File string `toml:"file"`
}

type OutputConfig struct {
	Dir string `toml:"dir"`
}

// Duration decodes TOML strings such as "300ms" or "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// NewDefaultConfig returns the built-in configuration.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     DefaultServerURL,
			Timeout: Duration{DefaultTimeout},
		},
		Preview: PreviewConfig{
			Debounce:    Duration{DefaultDebounce},
			MaxUploadMB: DefaultMaxUploadMB,
		},
		Controls: ControlsConfig{
			OffsetMin:  DefaultOffsetMin,
			OffsetMax:  DefaultOffsetMax,
			OffsetStep: DefaultOffsetStep,
			ScaleMin:   DefaultScaleMin,
			ScaleMax:   DefaultScaleMax,
			ScaleStep:  DefaultScaleStep,
		},
		Logger: LoggerConfig{
			Level: "info",
			File:  defaultLogFile(),
		},
		Output: OutputConfig{Dir: "."},
	}
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "off"
	}
	return filepath.Join(dir, AppName, DefaultLogFileName)
}

// DefaultPath is the config file consulted when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// Load merges defaults, the TOML file at path (DefaultPath when empty) and
// flag overrides. A missing file is not an error. Logging is not yet set up
// when Load runs, so unknown keys are returned in Config.Unknown.
func Load(path string, overrides *Overrides) (*Config, error) {
	cfg := NewDefaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}
	if overrides != nil {
		overrides.Apply(cfg)
	}
	cfg.validate()
	return cfg, nil
}

func (c *Config) loadFile(path string, explicit bool) error {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		if explicit {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking config file %q: %w", path, err)
	}
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		c.Unknown = append(c.Unknown, key.String())
	}
	c.Path = path
	return nil
}

// validate resets values that cannot work to their defaults.
func (c *Config) validate() {
	d := NewDefaultConfig()

	c.Server.URL = strings.TrimRight(strings.TrimSpace(c.Server.URL), "/")
	if c.Server.URL == "" {
		c.Server.URL = d.Server.URL
	}
	if c.Server.Timeout.Duration <= 0 {
		c.Server.Timeout = d.Server.Timeout
	}
	if c.Preview.Debounce.Duration <= 0 {
		c.Preview.Debounce = d.Preview.Debounce
	}
	if c.Preview.MaxUploadMB <= 0 {
		c.Preview.MaxUploadMB = d.Preview.MaxUploadMB
	}

	ctl := &c.Controls
	if ctl.OffsetMin >= ctl.OffsetMax {
		ctl.OffsetMin, ctl.OffsetMax = d.Controls.OffsetMin, d.Controls.OffsetMax
	}
	if ctl.OffsetStep <= 0 {
		ctl.OffsetStep = d.Controls.OffsetStep
	}
	if ctl.ScaleMin <= 0 || ctl.ScaleMin >= ctl.ScaleMax || ctl.ScaleMin > 1 || ctl.ScaleMax < 1 {
		ctl.ScaleMin, ctl.ScaleMax = d.Controls.ScaleMin, d.Controls.ScaleMax
	}
	if ctl.ScaleStep <= 0 {
		ctl.ScaleStep = d.Controls.ScaleStep
	}

	if c.Logger.Level == "" {
		c.Logger.Level = d.Logger.Level
	}
	if c.Output.Dir == "" {
		c.Output.Dir = d.Output.Dir
	}
}

// Limits converts the controls section for the editor.
func (c *Config) Limits() editor.Limits {
	ctl := c.Controls
	offsets := editor.IntRange{Min: ctl.OffsetMin, Max: ctl.OffsetMax, Step: ctl.OffsetStep}
	return editor.Limits{
		Horizontal: offsets,
		Vertical:   offsets,
		Scale:      editor.ScaleRange{Min: ctl.ScaleMin, Max: ctl.ScaleMax, Step: ctl.ScaleStep},
	}
}

// MaxUploadBytes is the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Preview.MaxUploadMB) << 20
}

// LogPath is the path for logger.Setup; logging "off" maps to no output.
func (c *Config) LogPath() string {
	if strings.EqualFold(c.Logger.File, "off") {
		return ""
	}
	return c.Logger.File
}
