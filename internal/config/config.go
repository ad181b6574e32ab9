// Package config resolves the report settings from defaults, an optional
// config file, the environment and command-line flags, in that order.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gopkg.in/gcfg.v1"
)

const (
	DefaultDataPath   = "data.csv"
	DefaultOutputPath = "pie.html"
	DefaultLogLevel   = "info"
)

// Config holds everything one report run needs.
type Config struct {
	// Input
	DataPath        string
	Delimiter       string
	CredentialsFile string

	// Filters
	StartMonth          int
	EndMonth            int
	ExcludeDescriptions []string
	ExcludeCategories   []string

	// Output
	Details    []string
	OutputPath string
	NoPie      bool
	Open       bool

	LogLevel   string
	ConfigFile string
}

// fileConfig mirrors the optional config file:
//
//	[data]
//	path = data.csv
//	delimiter = ,
//	[filter]
//	exclude-description = Netflix
//	exclude-category = Transfer
//	[output]
//	path = pie.html
type fileConfig struct {
	Data struct {
		Path      string
		Delimiter string
	}
	Filter struct {
		ExcludeDescription []string `gcfg:"exclude-description"`
		ExcludeCategory    []string `gcfg:"exclude-category"`
	}
	Output struct {
		Path string
	}
}

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func defaults() *Config {
	return &Config{
		DataPath:   DefaultDataPath,
		OutputPath: DefaultOutputPath,
		Delimiter:  ",",
		StartMonth: 1,
		EndMonth:   1,
		Open:       true,
		LogLevel:   DefaultLogLevel,
	}
}

// Load builds the configuration for args (without the program name). Usage and
// parse errors are written to output; -h returns flag.ErrHelp.
func Load(args []string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("pie", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		start      = fs.Int("start", 1, "first month of the range (1-12)")
		end        = fs.Int("end", 0, "last month of the range (1-12, default start)")
		data       = fs.String("data", DefaultDataPath, "transaction export: local CSV/XLSX, gs://bucket/object or bq://project.dataset.table")
		exDesc     = fs.String("ex_desc", "", "comma-separated description substrings to exclude")
		exCat      = fs.String("ex_cat", "", "comma-separated category substrings to exclude")
		noPie      = fs.Bool("nopie", false, "skip drawing the charts")
		out        = fs.String("out", DefaultOutputPath, "chart output file (.html, .xlsx or .pdf)")
		open       = fs.Bool("open", true, "open the chart in the default viewer")
		configFile = fs.String("config", "", "optional config file")
		delimiter  = fs.String("delimiter", ",", "CSV field delimiter")
		logLevel   = fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
		details    stringList
	)
	fs.Var(&details, "details", "print the records of a category (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := defaults()

	cfg.ConfigFile = getEnv("PIE_CONFIG", "")
	if set["config"] {
		cfg.ConfigFile = *configFile
	}
	if cfg.ConfigFile != "" {
		if err := cfg.readFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if set["data"] {
		cfg.DataPath = *data
	}
	if set["delimiter"] {
		cfg.Delimiter = *delimiter
	}
	if set["out"] {
		cfg.OutputPath = *out
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}
	if set["ex_desc"] {
		cfg.ExcludeDescriptions = ParseList(*exDesc)
	}
	if set["ex_cat"] {
		cfg.ExcludeCategories = ParseList(*exCat)
	}
	cfg.StartMonth = *start
	cfg.EndMonth = *start
	if set["end"] {
		cfg.EndMonth = *end
	}
	cfg.NoPie = *noPie
	cfg.Open = *open
	cfg.Details = details

	return cfg, nil
}

func (c *Config) readFile(path string) error {
	var fc fileConfig
	if err := gcfg.ReadFileInto(&fc, path); err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if fc.Data.Path != "" {
		c.DataPath = fc.Data.Path
	}
	if fc.Data.Delimiter != "" {
		c.Delimiter = fc.Data.Delimiter
	}
	if fc.Output.Path != "" {
		c.OutputPath = fc.Output.Path
	}
	c.ExcludeDescriptions = trimAll(fc.Filter.ExcludeDescription)
	c.ExcludeCategories = trimAll(fc.Filter.ExcludeCategory)
	return nil
}

func (c *Config) applyEnv() {
	c.DataPath = getEnv("PIE_DATA", c.DataPath)
	c.OutputPath = getEnv("PIE_OUTPUT", c.OutputPath)
	c.LogLevel = getEnv("PIE_LOG_LEVEL", c.LogLevel)
	c.Delimiter = getEnv("PIE_DELIMITER", c.Delimiter)
	c.CredentialsFile = getEnv("PIE_GCP_CREDENTIALS", c.CredentialsFile)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.StartMonth < 1 || c.StartMonth > 12 {
		errors = append(errors, fmt.Sprintf("invalid start month %d: must be between 1 and 12", c.StartMonth))
	}
	if c.EndMonth < 1 || c.EndMonth > 12 {
		errors = append(errors, fmt.Sprintf("invalid end month %d: must be between 1 and 12", c.EndMonth))
	}
	if c.StartMonth > c.EndMonth {
		errors = append(errors, fmt.Sprintf("invalid month range %d..%d: start must not be after end", c.StartMonth, c.EndMonth))
	}

	if strings.TrimSpace(c.DataPath) == "" {
		errors = append(errors, "data path cannot be empty")
	}

	if utf8.RuneCountInString(c.Delimiter) != 1 {
		errors = append(errors, fmt.Sprintf("invalid delimiter %q: must be a single character", c.Delimiter))
	}

	if !c.NoPie {
		switch strings.ToLower(filepath.Ext(c.OutputPath)) {
		case ".html", ".htm", ".xlsx", ".pdf":
		default:
			errors = append(errors, fmt.Sprintf("invalid output '%s': must end in .html, .xlsx or .pdf", c.OutputPath))
		}
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// DelimiterRune is the configured delimiter as a rune. Call after Validate.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// ParseList splits a comma-separated list, trimming each value and dropping empties.
func ParseList(s string) []string {
	return trimAll(strings.Split(s, ","))
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
