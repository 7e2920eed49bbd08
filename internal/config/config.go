// Package config resolves runtime settings from defaults, a YAML file, the
// environment and flags. Later sources override earlier ones.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/psaban20/claude-conversation-manager/internal/excerpt"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "CCM_"

// Config is read once at startup and not changed afterwards.
type Config struct {
	ProjectsDir string      `yaml:"projects_dir"`
	ArchiveDir  string      `yaml:"archive_dir"`
	LedgerPath  string      `yaml:"ledger_path"`
	LogLevel    string      `yaml:"log_level"`
	Title       TitlePolicy `yaml:"title"`
}

// TitlePolicy is the YAML form of excerpt.Policy. Unset fields keep the
// value from the source below; max_runes -1 disables truncation.
type TitlePolicy struct {
	MaxRunes     int      `yaml:"max_runes"`
	Ellipsis     string   `yaml:"ellipsis"`
	FirstLine    *bool    `yaml:"first_line"`
	SkipPrefixes []string `yaml:"skip_prefixes"`
	Placeholder  string   `yaml:"placeholder"`
}

// Policy returns the fallback title policy described by c.
func (c Config) Policy() excerpt.Policy {
	p := excerpt.DefaultPolicy()
	if c.Title.MaxRunes != 0 {
		p.MaxRunes = c.Title.MaxRunes
	}
	if c.Title.Ellipsis != "" {
		p.Ellipsis = c.Title.Ellipsis
	}
	if c.Title.FirstLine != nil {
		p.FirstLine = *c.Title.FirstLine
	}
	if c.Title.SkipPrefixes != nil {
		p.SkipPrefixes = append([]string(nil), c.Title.SkipPrefixes...)
	}
	if c.Title.Placeholder != "" {
		p.Placeholder = c.Title.Placeholder
	}
	return p
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Config {
	home, _ := os.UserHomeDir()
	return Config{
		ProjectsDir: filepath.Join(home, ".claude", "projects"),
		ArchiveDir:  filepath.Join(home, ".claude", "archive"),
		LedgerPath:  filepath.Join(home, ".claude-conv-manager", "ledger.db"),
		LogLevel:    "warn",
	}
}

// DefaultPath is the config file read when none is named.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude-conv-manager", "config.yaml")
}

// Load parses a YAML config from raw, or from path when raw is empty.
// Unknown keys are rejected.
func Load(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv builds an override from CCM_* variables in environ.
func FromEnv(environ []string) Config {
	var over Config
	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		val = strings.TrimSpace(val)
		switch strings.TrimPrefix(key, EnvPrefix) {
		case "PROJECTS_DIR":
			over.ProjectsDir = val
		case "ARCHIVE_DIR":
			over.ArchiveDir = val
		case "LEDGER":
			over.LedgerPath = val
		case "LOG_LEVEL":
			over.LogLevel = val
		}
	}
	return over
}

// Merge overlays the non-empty fields of over onto base.
func Merge(base, over Config) Config {
	out := base
	if over.ProjectsDir != "" {
		out.ProjectsDir = expandHome(over.ProjectsDir)
	}
	if over.ArchiveDir != "" {
		out.ArchiveDir = expandHome(over.ArchiveDir)
	}
	if over.LedgerPath != "" {
		out.LedgerPath = expandHome(over.LedgerPath)
	}
	if over.LogLevel != "" {
		out.LogLevel = over.LogLevel
	}

	// Title policy: only set fields replace.
	t := over.Title
	if t.MaxRunes != 0 {
		out.Title.MaxRunes = t.MaxRunes
	}
	if t.Ellipsis != "" {
		out.Title.Ellipsis = t.Ellipsis
	}
	if t.FirstLine != nil {
		v := *t.FirstLine
		out.Title.FirstLine = &v
	}
	if t.SkipPrefixes != nil {
		out.Title.SkipPrefixes = append([]string(nil), t.SkipPrefixes...)
	}
	if t.Placeholder != "" {
		out.Title.Placeholder = t.Placeholder
	}
	return out
}

// Resolve loads the effective config: defaults, then the file at path (or
// DefaultPath when it exists), then environ.
func Resolve(path string, environ []string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		for _, kv := range environ {
			if v, ok := strings.CutPrefix(kv, EnvPrefix+"CONFIG="); ok {
				path = v
			}
		}
	}
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	file, err := Load(path, nil)
	switch {
	case err == nil:
		cfg = Merge(cfg, file)
	case !explicit && errors.Is(err, os.ErrNotExist):
	default:
		return cfg, err
	}
	return Merge(cfg, FromEnv(environ)), nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
