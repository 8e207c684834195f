// Package config loads logger settings from defaults, an optional YAML file
// and the environment, and applies them to a dbglog.Logger.
//
// Precedence: ENV > File > Defaults. Environment variables carry a prefix
// (DBGLOG_ by default) and map to config keys like this:
//
//	DBGLOG_MASK            -> mask
//	DBGLOG_SHOW_PID        -> show_pid
//	DBGLOG_FILE_PATH       -> file.path
//	DBGLOG_FILE_TIES       -> file.ties (comma separated)
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/abyssdigger/dbglog"
)

const DEFAULT_ENV_PREFIX = "DBGLOG_"

// Config mirrors the logger's configuration surface.
type Config struct {
	Mask          string     `koanf:"mask"`
	Console       bool       `koanf:"console"`
	Color         string     `koanf:"color"` // never, always, auto
	ShowPid       bool       `koanf:"show_pid"`
	ShowThread    bool       `koanf:"show_thread"`
	TimePrecision uint       `koanf:"time_precision"`
	File          FileConfig `koanf:"file"`
}

// FileConfig describes the log file.
type FileConfig struct {
	Path        string   `koanf:"path"` // empty: no log file
	Mode        string   `koanf:"mode"` // octal permission for a new file
	Truncate    bool     `koanf:"truncate"`
	UID         int      `koanf:"uid"` // -1 keeps the current owner
	GID         int      `koanf:"gid"`
	CloseOnExec bool     `koanf:"close_on_exec"`
	Ties        []string `koanf:"ties"` // "stdout", "stderr" or descriptor numbers
}

// Default returns the configuration of a logger created by dbglog.New.
func Default() *Config {
	return &Config{
		Mask:       dbglog.MASK_DEFAULT.String(),
		Console:    true,
		Color:      "never",
		ShowPid:    true,
		ShowThread: true,
		File: FileConfig{
			Mode: "0600",
			UID:  -1,
			GID:  -1,
		},
	}
}

// Load layers defaults, the YAML file at path (skipped when empty) and
// environment variables starting with envPrefix (DEFAULT_ENV_PREFIX when
// empty), then validates the result.
func Load(path, envPrefix string) (*Config, error) {
	if envPrefix == "" {
		envPrefix = DEFAULT_ENV_PREFIX
	}
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", envTransform(envPrefix)), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}
	if err := splitList(k, "file.ties"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// envTransform maps DBGLOG_FILE_CLOSE_ON_EXEC to file.close_on_exec.
func envTransform(prefix string) func(string) string {
	return func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, prefix))
		if rest, ok := strings.CutPrefix(key, "file_"); ok {
			return "file." + rest
		}
		return key
	}
}

// splitList turns a comma separated string (from the environment) into a list.
func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return errors.Wrapf(k.Set(path, out), "failed to set %s", path)
}

// Validate checks every field that Apply would have to parse.
func (c *Config) Validate() error {
	if _, err := dbglog.ParseMask(c.Mask); err != nil {
		return err
	}
	if _, err := ParseColor(c.Color); err != nil {
		return err
	}
	if _, err := c.File.FileMode(); err != nil {
		return err
	}
	for _, t := range c.File.Ties {
		if _, err := ParseFd(t); err != nil {
			return err
		}
	}
	return nil
}

// ParseColor parses "never", "always" or "auto" (empty means never).
func ParseColor(s string) (dbglog.ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "never":
		return dbglog.COLOR_NEVER, nil
	case "always":
		return dbglog.COLOR_ALWAYS, nil
	case "auto":
		return dbglog.COLOR_AUTO, nil
	}
	return dbglog.COLOR_NEVER, errors.Errorf("invalid color mode <%s>", s)
}

// ParseFd parses "stdout", "stderr" or a non-negative descriptor number.
func ParseFd(s string) (int, error) {
	switch strings.ToLower(s) {
	case "stdout":
		return 1, nil
	case "stderr":
		return 2, nil
	}
	fd, err := strconv.Atoi(s)
	if err != nil || fd < 0 {
		return -1, errors.Errorf("invalid file descriptor <%s>", s)
	}
	return fd, nil
}

// FileMode parses the octal Mode (empty means dbglog.DEFAULT_FILE_MODE).
func (f *FileConfig) FileMode() (os.FileMode, error) {
	if f.Mode == "" {
		return dbglog.DEFAULT_FILE_MODE, nil
	}
	m, err := strconv.ParseUint(f.Mode, 8, 32)
	if err != nil || m > 0o777 {
		return 0, errors.Errorf("invalid file mode <%s>", f.Mode)
	}
	return os.FileMode(m), nil
}

// Apply configures l: display settings first, then the log file. Settings are
// applied in order and the first failure stops the walk.
func (c *Config) Apply(l *dbglog.Logger) error {
	if err := c.ApplyDisplay(l); err != nil {
		return err
	}
	return c.File.Apply(l)
}

// ApplyDisplay sets the mask and the display options only. Nothing changes
// when the mask or the color mode does not parse.
func (c *Config) ApplyDisplay(l *dbglog.Logger) error {
	mask, err := dbglog.ParseMask(c.Mask)
	if err != nil {
		return err
	}
	color, err := ParseColor(c.Color)
	if err != nil {
		return err
	}
	l.SetMask(mask).
		UseConsole(c.Console).
		ShowPid(c.ShowPid).
		ShowThread(c.ShowThread).
		SetTimePrecision(c.TimePrecision).
		SetConsoleColor(color)
	return nil
}

// Apply opens (or closes) the log file and applies the file settings.
func (f *FileConfig) Apply(l *dbglog.Logger) error {
	mode, err := f.FileMode()
	if err != nil {
		return err
	}
	if err := l.LogToFileMode(f.Path, mode); err != nil {
		return err
	}
	if f.Path == "" {
		return nil
	}
	if f.Truncate {
		if err := l.TruncateLogFile(); err != nil {
			return err
		}
	}
	if f.UID >= 0 || f.GID >= 0 {
		if err := l.SetLogFileOwner(f.UID, f.GID); err != nil {
			return err
		}
	}
	if f.CloseOnExec {
		if err := l.CloseOnExec(true); err != nil {
			return err
		}
	}
	for _, t := range f.Ties {
		fd, err := ParseFd(t)
		if err != nil {
			return err
		}
		if err := l.Tie(fd); err != nil {
			return err
		}
	}
	return nil
}
