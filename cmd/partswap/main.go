// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the partswap CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/partswap/internal/catalog"
	"github.com/pdiddy/partswap/internal/rank"
	"github.com/pdiddy/partswap/internal/replace"
	"github.com/pdiddy/partswap/internal/secrets"
	"github.com/pdiddy/partswap/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// creds holds credentials loaded from .secrets/ and .env at startup.
var creds secrets.Set

// rootCmd is the base command for the partswap CLI.
var rootCmd = &cobra.Command{
	Use:   "partswap",
	Short: "Find replacement candidates for end-of-life parts",
	Long: `partswap searches the Digi-Key catalog for parts that can replace an
end-of-life component. It ranks the part's parameters by how critical they
are, searches with all of them, and drops the least critical one per round
until candidates turn up.

Subcommands: find runs a search, rank orders a parameter list, compare
shows two parts side by side, serve exposes the same operations over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		files, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		env, err := secrets.LoadEnvFiles(".env")
		if err != nil {
			return err
		}
		creds = secrets.NewSet(files, env)
		if keys := creds.Keys(); len(keys) > 0 {
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./partswap.yaml or ~/.config/partswap/partswap.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	viper.SetDefault("catalog.timeout", 30*time.Second)
	viper.SetDefault("catalog.user_agent", "partswap/"+version)
	viper.SetDefault("catalog.max_retries", 5)
	viper.SetDefault("catalog.locale_site", "US")
	viper.SetDefault("catalog.locale_language", "en")
	viper.SetDefault("catalog.locale_currency", "USD")
	viper.SetDefault("catalog.cache_ttl", 24*time.Hour)
	viper.SetDefault("ranker.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("ranker.timeout", 60*time.Second)
	viper.SetDefault("search.record_count", types.DefaultRecordCount)
	viper.SetDefault("search.round_delay", types.DefaultRoundDelay)
	viper.SetDefault("search.max_match_reasons", types.DefaultMaxMatchReasons)
	viper.SetDefault("search.keyword_tokens", types.DefaultKeywordTokens)
	viper.SetDefault("search.enrich.workers", types.DefaultEnrichWorkers)
	viper.SetDefault("server.addr", "127.0.0.1:5000")
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 5*time.Minute)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("partswap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "partswap"))
		}
	}

	viper.SetEnvPrefix("PARTSWAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.BindEnv("search.enrich.workers", "PARTSWAP_ENRICH_WORKERS", "PARTSWAP_SEARCH_ENRICH_WORKERS")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the component configuration from viper and the
// loaded credentials. Config values win over credential files.
func loadConfig() types.Config {
	cfg := types.Config{
		Catalog: types.CatalogConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    viper.GetDuration("catalog.timeout"),
				UserAgent:  viper.GetString("catalog.user_agent"),
				MaxRetries: viper.GetInt("catalog.max_retries"),
			},
			ClientID:       viper.GetString("catalog.client_id"),
			ClientSecret:   viper.GetString("catalog.client_secret"),
			LocaleSite:     viper.GetString("catalog.locale_site"),
			LocaleLanguage: viper.GetString("catalog.locale_language"),
			LocaleCurrency: viper.GetString("catalog.locale_currency"),
			CacheDir:       viper.GetString("catalog.cache_dir"),
			CacheTTL:       viper.GetDuration("catalog.cache_ttl"),
		},
		Ranker: types.RankerConfig{
			Model:   viper.GetString("ranker.model"),
			APIKey:  viper.GetString("ranker.api_key"),
			Timeout: viper.GetDuration("ranker.timeout"),
		},
		Search: types.SearchConfig{
			RecordCount:     viper.GetInt("search.record_count"),
			RoundDelay:      viper.GetDuration("search.round_delay"),
			MaxMatchReasons: viper.GetInt("search.max_match_reasons"),
			KeywordTokens:   viper.GetInt("search.keyword_tokens"),
			Enrich: types.EnrichConfig{
				Workers: viper.GetInt("search.enrich.workers"),
				Timeout: viper.GetDuration("search.enrich.timeout"),
			},
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
		Server: types.ServerConfig{
			Addr:         viper.GetString("server.addr"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
		},
	}
	if cfg.Catalog.ClientID == "" {
		cfg.Catalog.ClientID = creds.Get(secrets.DigiKeyClientID)
	}
	if cfg.Catalog.ClientSecret == "" {
		cfg.Catalog.ClientSecret = creds.Get(secrets.DigiKeyClientSecret)
	}
	if cfg.Ranker.APIKey == "" {
		cfg.Ranker.APIKey = creds.Get(secrets.AnthropicAPIKey)
	}
	return cfg
}

// newLogger builds the process logger. Logs go to stderr so that stdout
// stays clean for JSON output.
func newLogger(cfg types.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if strings.EqualFold(cfg.Format, "json") {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		zcfg.Level = level
	}
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// app is the wired set of components one command works with.
type app struct {
	cfg     types.Config
	log     *zap.Logger
	catalog catalog.Backend
	ranker  *rank.Prioritizer
	close   func()
}

// newApp loads configuration and builds the catalog client (with the
// lookup cache when configured) and the parameter ranker.
func newApp() (*app, error) {
	cfg := loadConfig()
	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Catalog.Timeout}
	client := catalog.NewClient(cfg.Catalog, httpClient, log)

	a := &app{cfg: cfg, log: log, catalog: client, close: func() { log.Sync() }}
	if cfg.Catalog.CacheDir != "" {
		cached, err := catalog.NewCachedClient(client, cfg.Catalog.CacheDir, cfg.Catalog.CacheTTL, log)
		if err != nil {
			return nil, err
		}
		a.catalog = cached
		a.close = func() {
			cached.Close()
			log.Sync()
		}
	}

	a.ranker = &rank.Prioritizer{Log: log}
	if cfg.Ranker.APIKey != "" {
		a.ranker.Oracle = &rank.ClaudeOracle{
			APIKey:     cfg.Ranker.APIKey,
			Model:      cfg.Ranker.Model,
			Client:     &http.Client{Timeout: cfg.Ranker.Timeout},
			MaxRetries: cfg.Catalog.MaxRetries,
			Log:        log,
		}
	} else {
		log.Debug("no AI API key configured, parameters keep catalog order")
	}
	return a, nil
}

func (a *app) finder() *replace.Finder {
	return replace.NewFinder(a.catalog, a.ranker, a.cfg.Search, a.log)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
