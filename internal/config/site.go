package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/copywrite/internal/copywriting"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// siteConfigNames are probed in order when no site config is configured.
var siteConfigNames = []string{"_config.yml", "_config.yaml", "config.toml", "hugo.toml"}

// Site is the part of a static site's config file this tool reads.
type Site struct {
	Copywriting Copywriting `yaml:"copywriting" toml:"copywriting"`
}

// Copywriting holds the filter switches. A nil field means "not set", which
// leaves the switch on.
type Copywriting struct {
	Enable      *bool `yaml:"enable" toml:"enable" json:"enable,omitempty"`
	Pangu       *bool `yaml:"pangu" toml:"pangu" json:"pangu,omitempty"`
	Punctuation *bool `yaml:"punctuation" toml:"punctuation" json:"punctuation,omitempty"`
	ProperNouns *bool `yaml:"proper_nouns" toml:"proper_nouns" json:"proper_nouns,omitempty"`
}

// Flags resolves the switches. Only an explicit false disables a stage.
func (c Copywriting) Flags() copywriting.Flags {
	return copywriting.Flags{
		Enable:      on(c.Enable),
		Pangu:       on(c.Pangu),
		Punctuation: on(c.Punctuation),
		ProperNouns: on(c.ProperNouns),
	}
}

// Override returns c with every field set in o replacing its own.
func (c Copywriting) Override(o Copywriting) Copywriting {
	if o.Enable != nil {
		c.Enable = o.Enable
	}
	if o.Pangu != nil {
		c.Pangu = o.Pangu
	}
	if o.Punctuation != nil {
		c.Punctuation = o.Punctuation
	}
	if o.ProperNouns != nil {
		c.ProperNouns = o.ProperNouns
	}
	return c
}

func on(b *bool) bool {
	return b == nil || *b
}

// DetectSiteConfig returns the first known site config file in root, or "".
func DetectSiteConfig(root string) string {
	for _, name := range siteConfigNames {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadSite reads a YAML or TOML site config, chosen by extension. An empty
// path or a missing file yields the zero Site.
func LoadSite(path string) (Site, error) {
	var site Site
	if path == "" {
		return site, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return site, nil
	}
	if err != nil {
		return site, fmt.Errorf("read site config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &site)
	case ".toml":
		err = toml.Unmarshal(data, &site)
	default:
		return site, fmt.Errorf("unsupported site config format: %s", ext)
	}
	if err != nil {
		return Site{}, fmt.Errorf("parse site config %s: %w", path, err)
	}
	return site, nil
}
