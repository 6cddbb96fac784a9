// Package cli implements the copywrite command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/copywrite/internal/config"
	"github.com/dgallion1/copywrite/internal/copywriting"
	"github.com/dgallion1/copywrite/internal/dictionary"
	"github.com/dgallion1/copywrite/internal/spacing"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags.
var version = "dev"

var (
	// Global flags
	siteRoot       string
	dictionaryFile string
	siteConfig     string
	logLevel       string

	// Stage switches; only explicitly set flags override the site config.
	enableFlag      bool
	panguFlag       bool
	punctuationFlag bool
	properNounsFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "copywrite",
	Short: "Format CJK prose in rendered blog posts",
	Long: `copywrite fixes the typography of Chinese, Japanese and Korean prose in
rendered posts: it corrects proper nouns from a dictionary, converts
half-width punctuation next to Han characters to full-width forms and puts
spaces between CJK and Latin text. Code, scripts and styles are left alone.

Switches are read from the site config (_config.yml, config.toml, ...) under
the "copywriting" key and may be turned off per run with flags.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&siteRoot, "site", "", "site root (default $SITE_ROOT or .)")
	pf.StringVar(&dictionaryFile, "dictionary", "", "proper noun dictionary, relative to the site root (default $DICTIONARY_FILE or dictionary.json)")
	pf.StringVar(&siteConfig, "config", "", "site config file (default: detected in the site root)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default $LOG_LEVEL or info)")

	pf.BoolVar(&enableFlag, "enable", true, "run the filter at all")
	pf.BoolVar(&panguFlag, "pangu", true, "space CJK and Latin text, including around inline code")
	pf.BoolVar(&punctuationFlag, "punctuation", true, "convert punctuation next to Han characters")
	pf.BoolVar(&properNounsFlag, "proper-nouns", true, "apply dictionary corrections")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// env is the state shared by commands that format files.
type env struct {
	cfg    config.Config
	filter *copywriting.Filter
	flags  copywriting.Flags
	log    *slog.Logger
}

// setup resolves configuration from the environment, the site config and
// command line flags, in increasing priority.
func setup(cmd *cobra.Command) (*env, error) {
	cfg := config.Load()
	flags := cmd.Flags()
	if flags.Changed("site") {
		cfg.SiteRoot = siteRoot
	}
	if flags.Changed("dictionary") {
		cfg.DictionaryFile = dictionaryFile
	}
	if flags.Changed("config") {
		cfg.SiteConfig = siteConfig
	}
	if flags.Changed("log-level") {
		level, err := config.ParseLevel(logLevel)
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}

	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))

	site, err := config.LoadSite(cfg.SiteConfigPath())
	if err != nil {
		return nil, fmt.Errorf("site config: %w", err)
	}
	switches := site.Copywriting.Override(flagSwitches(cmd))

	dict := dictionary.LoadOrEmpty(cfg.DictionaryPath(), log)
	log.Debug("configuration loaded",
		"site_root", cfg.SiteRoot,
		"dictionary", cfg.DictionaryPath(),
		"dictionary_entries", dict.Len(),
		"site_config", cfg.SiteConfigPath(),
	)

	return &env{
		cfg:    cfg,
		filter: copywriting.New(dict, spacing.Text, log),
		flags:  switches.Flags(),
		log:    log,
	}, nil
}

// flagSwitches returns the stage switches set on the command line.
func flagSwitches(cmd *cobra.Command) config.Copywriting {
	var c config.Copywriting
	set := func(name string, v bool) *bool {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		return &v
	}
	c.Enable = set("enable", enableFlag)
	c.Pangu = set("pangu", panguFlag)
	c.Punctuation = set("punctuation", punctuationFlag)
	c.ProperNouns = set("proper-nouns", properNounsFlag)
	return c
}
