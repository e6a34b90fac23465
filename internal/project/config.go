package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"kpoet/internal/diag"
)

// DefaultImplicitNamespaces are the namespaces every Kotlin file imports
// without an import directive.
var DefaultImplicitNamespaces = []string{
	"kotlin",
	"kotlin.annotation",
	"kotlin.collections",
	"kotlin.comparisons",
	"kotlin.io",
	"kotlin.ranges",
	"kotlin.sequences",
	"kotlin.text",
}

const (
	minColumnLimit = 20
	maxColumnLimit = 1000
	maxJobs        = 256
)

// Settings is the validated project configuration.
type Settings struct {
	Path string // kpoet.toml, empty when defaults are used
	Root string

	Indent             string
	ColumnLimit        int
	ImplicitNamespaces []string

	CacheEnabled bool
	CacheDir     string // empty selects the user cache directory

	Jobs int // 0 selects GOMAXPROCS
}

type configFile struct {
	Render struct {
		Indent             string   `toml:"indent"`
		ColumnLimit        int64    `toml:"column_limit"`
		ImplicitNamespaces []string `toml:"implicit_namespaces"`
	} `toml:"render"`
	Cache struct {
		Enabled bool   `toml:"enabled"`
		Dir     string `toml:"dir"`
	} `toml:"cache"`
	Driver struct {
		Jobs int64 `toml:"jobs"`
	} `toml:"driver"`
}

// Defaults returns the settings used without a kpoet.toml.
func Defaults() Settings {
	return Settings{
		Indent:             "  ",
		ColumnLimit:        100,
		ImplicitNamespaces: DefaultImplicitNamespaces,
		CacheEnabled:       true,
	}
}

// LoadConfig parses and validates the kpoet.toml at path. Keys that are not
// set keep their defaults.
func LoadConfig(path string) (Settings, error) {
	var cfg configFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Settings{}, diag.Wrap(diag.CfgInvalid, err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Settings{}, diag.Errorf(diag.CfgInvalid, "%s: unknown key %s", path, undecoded[0].String())
	}

	s := Defaults()
	s.Path = path
	s.Root = filepath.Dir(path)

	if meta.IsDefined("render", "indent") {
		if cfg.Render.Indent == "" || strings.Trim(cfg.Render.Indent, " \t") != "" {
			return Settings{}, diag.Errorf(diag.CfgInvalid, "%s: [render].indent must be spaces or tabs", path)
		}
		s.Indent = cfg.Render.Indent
	}
	if meta.IsDefined("render", "column_limit") {
		limit, err := safecast.Conv[uint16](cfg.Render.ColumnLimit)
		if err != nil || limit < minColumnLimit || limit > maxColumnLimit {
			return Settings{}, diag.Errorf(diag.CfgOutOfRange,
				"%s: [render].column_limit must be between %d and %d, got %d",
				path, minColumnLimit, maxColumnLimit, cfg.Render.ColumnLimit)
		}
		s.ColumnLimit = int(limit)
	}
	if meta.IsDefined("render", "implicit_namespaces") {
		s.ImplicitNamespaces = cfg.Render.ImplicitNamespaces
	}
	if meta.IsDefined("cache", "enabled") {
		s.CacheEnabled = cfg.Cache.Enabled
	}
	if meta.IsDefined("cache", "dir") {
		dir := strings.TrimSpace(cfg.Cache.Dir)
		if dir == "" {
			return Settings{}, diag.Errorf(diag.CfgMissingField, "%s: [cache].dir is empty", path)
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(s.Root, filepath.FromSlash(dir))
		}
		s.CacheDir = dir
	}
	if meta.IsDefined("driver", "jobs") {
		jobs, err := safecast.Conv[uint16](cfg.Driver.Jobs)
		if err != nil || jobs > maxJobs {
			return Settings{}, diag.Errorf(diag.CfgOutOfRange,
				"%s: [driver].jobs must be between 0 and %d, got %d", path, maxJobs, cfg.Driver.Jobs)
		}
		s.Jobs = int(jobs)
	}
	return s, nil
}

// Load finds kpoet.toml from startDir upwards and loads it. Without one the
// defaults are returned and ok is false.
func Load(startDir string) (s Settings, ok bool, err error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Settings{}, false, diag.Wrap(diag.CfgInvalid, err, "failed to locate %s", FileName)
	}
	if !ok {
		return Defaults(), false, nil
	}
	s, err = LoadConfig(path)
	if err != nil {
		return Settings{}, true, err
	}
	return s, true, nil
}

func (s Settings) String() string {
	src := s.Path
	if src == "" {
		src = "defaults"
	}
	return fmt.Sprintf("%s: indent=%q column_limit=%d jobs=%d cache=%t", src, s.Indent, s.ColumnLimit, s.Jobs, s.CacheEnabled)
}
