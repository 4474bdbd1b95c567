package config

import (
	"bytes"
	"fleetcheck/rules"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyHeaderMode       = "header.mode"
	KeyHeaderRow        = "header.row"
	KeyHeaderMarker     = "header.marker"
	KeyHeaderScanRows   = "header.scan_rows"
	KeyMatchingCutoff   = "matching.cutoff"
	KeyColumnsYear      = "columns.year"
	KeyColumnsComments  = "columns.comments"
	KeyColumnsRules     = "columns.rules"
	KeyOutputErrorLog   = "output.error_log"
	KeyOutputChangeLog  = "output.change_log"
	KeyOutputSuffix     = "output.suffix"
	KeyStyleFill        = "style.fill"
	KeyStyleFont        = "style.font"
	KeyHistoryEnabled   = "history.enabled"
	KeyHistoryDB        = "history.db"
	DefaultHistoryDB    = "./fleetcheck.db"
	DefaultOutputSuffix = "_validado"
)

type Config struct {
	Header   HeaderConfig   `mapstructure:"header"`
	Matching MatchingConfig `mapstructure:"matching"`
	Columns  ColumnsConfig  `mapstructure:"columns"`
	Output   OutputConfig   `mapstructure:"output"`
	Style    StyleConfig    `mapstructure:"style"`
	History  HistoryConfig  `mapstructure:"history"`
}

type HeaderConfig struct {
	Mode     string `mapstructure:"mode" validate:"oneof=scan fixed"`
	Row      int    `mapstructure:"row" validate:"min=1"`
	Marker   string `mapstructure:"marker" validate:"required"`
	ScanRows int    `mapstructure:"scan_rows" validate:"min=1,max=1000"`
}

type MatchingConfig struct {
	Cutoff float64 `mapstructure:"cutoff" validate:"gt=0,lte=1"`
}

type ColumnsConfig struct {
	Year     string       `mapstructure:"year" validate:"oneof=year integer"`
	Comments string       `mapstructure:"comments" validate:"oneof=capitalize title"`
	Rules    []ColumnRule `mapstructure:"rules"`
}

// ColumnRule adds or overrides the rule of one column key. A key ending in
// "*" applies to every column key with that prefix.
type ColumnRule struct {
	Key     string   `mapstructure:"key"`
	Rule    string   `mapstructure:"rule"`
	Options []string `mapstructure:"options"`
}

type OutputConfig struct {
	ErrorLog  bool   `mapstructure:"error_log"`
	ChangeLog bool   `mapstructure:"change_log"`
	Suffix    string `mapstructure:"suffix" validate:"required,excludesall=/\\"`
}

type StyleConfig struct {
	Fill string `mapstructure:"fill" validate:"len=6,hexadecimal"`
	Font string `mapstructure:"font" validate:"len=6,hexadecimal"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DB      string `mapstructure:"db" validate:"required"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// Default returns the configuration used when no file is present.
func Default() Config {
	local := viper.New()
	setDefaults(local)
	cfg, err := loadAndValidateFromViper(local)
	if err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return *cfg
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# fleetcheck configuration
header:
  # scan: look for the marker column in the first scan_rows rows
  # fixed: the header is always at row
  mode: "scan"
  row: 1
  marker: "dominio"
  scan_rows: 15

matching:
  # minimum similarity (0-1] for approximate categorical matches
  cutoff: 0.8

columns:
  year: "year"           # year | integer
  comments: "capitalize" # capitalize | title
  rules: []
  # - key: "vto-*"
  #   rule: "date"
  # - key: "sector"
  #   rule: "categorical"
  #   options: ["Logistica", "Ventas", "Gerencia"]

output:
  error_log: true
  change_log: true
  suffix: "_validado"

style:
  fill: "FF0000"
  font: "FFFFFF"

history:
  enabled: false
  db: "./fleetcheck.db"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateColumnRules(cfg.Columns.Rules); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyHeaderMode, "scan")
	v.SetDefault(KeyHeaderRow, 1)
	v.SetDefault(KeyHeaderMarker, "dominio")
	v.SetDefault(KeyHeaderScanRows, 15)
	v.SetDefault(KeyMatchingCutoff, rules.DefaultCutoff)
	v.SetDefault(KeyColumnsYear, string(rules.KindYear))
	v.SetDefault(KeyColumnsComments, string(rules.KindCapitalize))
	v.SetDefault(KeyColumnsRules, []map[string]any{})
	v.SetDefault(KeyOutputErrorLog, true)
	v.SetDefault(KeyOutputChangeLog, true)
	v.SetDefault(KeyOutputSuffix, DefaultOutputSuffix)
	v.SetDefault(KeyStyleFill, "FF0000")
	v.SetDefault(KeyStyleFont, "FFFFFF")
	v.SetDefault(KeyHistoryEnabled, false)
	v.SetDefault(KeyHistoryDB, DefaultHistoryDB)
}

func validateColumnRules(columnRules []ColumnRule) error {
	seen := make(map[string]struct{}, len(columnRules))
	for i, rule := range columnRules {
		key, prefix := rules.SplitKey(rule.Key)
		if key == "" {
			return fmt.Errorf("validation failed: columns.rules[%d].key is required", i)
		}
		if prefix {
			key += "*"
		}
		if _, exists := seen[key]; exists {
			return fmt.Errorf("validation failed: duplicate column rule key %q", rule.Key)
		}
		seen[key] = struct{}{}

		kind, err := rules.ParseKind(rule.Rule)
		if err != nil {
			return fmt.Errorf(
				"validation failed: columns.rules[%d].rule %q is not supported (valid: %s)",
				i,
				rule.Rule,
				kindNames(),
			)
		}
		if kind == rules.KindCategorical && len(rule.Options) == 0 {
			return fmt.Errorf("validation failed: columns.rules[%d] categorical rule requires options", i)
		}
		if kind != rules.KindCategorical && len(rule.Options) > 0 {
			return fmt.Errorf("validation failed: columns.rules[%d] options are only allowed for categorical rules", i)
		}
		for j, option := range rule.Options {
			if strings.TrimSpace(option) == "" {
				return fmt.Errorf("validation failed: columns.rules[%d].options[%d] is empty", i, j)
			}
		}
	}
	return nil
}

func kindNames() string {
	kinds := rules.Kinds()
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = string(kind)
	}
	return strings.Join(names, ", ")
}
