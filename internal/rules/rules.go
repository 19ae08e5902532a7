// Package rules loads the static cleaning rule set (term lists, thresholds,
// resource names) from an embedded YAML file.
package rules

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed data/rules.yaml
var defaultRulesYAML []byte

// Thresholds similarity cut-offs on a 0-100 scale
type Thresholds struct {
	Blacklist     float64 `yaml:"blacklist" json:"blacklist"`
	Catalog       float64 `yaml:"catalog" json:"catalog"`
	PaymentMethod float64 `yaml:"payment_method" json:"payment_method"`
	CompanySuffix float64 `yaml:"company_suffix" json:"company_suffix"`
	Title         float64 `yaml:"title" json:"title"`
}

// YearRange inclusive fiscal year bounds
type YearRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// PersonNameRules tuning for person-name cleaning
type PersonNameRules struct {
	ReviewTokenLimit int    `yaml:"review_token_limit" json:"review_token_limit"`
	ReviewPrefix     string `yaml:"review_prefix" json:"review_prefix"`
	RejectAnyDigit   bool   `yaml:"reject_any_digit" json:"reject_any_digit"`
}

// RFCRules tuning for taxpayer id cleaning
type RFCRules struct {
	InvalidPrefixes []string `yaml:"invalid_prefixes" json:"invalid_prefixes"`
}

// PaymentMethod output label and the keywords that map to it
type PaymentMethod struct {
	Label    string   `yaml:"label" json:"label"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Currency output code and the reference list holding its spellings
type Currency struct {
	Code string `yaml:"code" json:"code"`
	List string `yaml:"list" json:"list"`
}

// ListNames reference list names used by the rule table
type ListNames struct {
	AddressBlacklist       string `yaml:"address_blacklist" json:"address_blacklist"`
	NameBlacklist          string `yaml:"name_blacklist" json:"name_blacklist"`
	FirstSurnameBlacklist  string `yaml:"first_surname_blacklist" json:"first_surname_blacklist"`
	SecondSurnameBlacklist string `yaml:"second_surname_blacklist" json:"second_surname_blacklist"`
	CompanyBlacklist       string `yaml:"company_blacklist" json:"company_blacklist"`
}

// CatalogSpec where a catalog lives and which columns hold key and name.
// An empty KeyColumn means the name doubles as key.
type CatalogSpec struct {
	Table      string `yaml:"table" json:"table"`
	KeyColumn  string `yaml:"key_column" json:"key_column,omitempty"`
	NameColumn string `yaml:"name_column" json:"name_column"`
}

// CatalogSpecs catalogs used by the rule table
type CatalogSpecs struct {
	Municipality  CatalogSpec `yaml:"municipality" json:"municipality"`
	State         CatalogSpec `yaml:"state" json:"state"`
	Country       CatalogSpec `yaml:"country" json:"country"`
	ProcedureType CatalogSpec `yaml:"procedure_type" json:"procedure_type"`
}

// All returns every catalog spec in a fixed order
func (c CatalogSpecs) All() []CatalogSpec {
	return []CatalogSpec{c.Municipality, c.State, c.Country, c.ProcedureType}
}

// Config the full rule set
type Config struct {
	SimilarityMethod         string            `yaml:"similarity_method" json:"similarity_method"`
	Thresholds               Thresholds        `yaml:"thresholds" json:"thresholds"`
	MinListLineLength        int               `yaml:"min_list_line_length" json:"min_list_line_length"`
	FiscalYear               YearRange         `yaml:"fiscal_year" json:"fiscal_year"`
	PersonName               PersonNameRules   `yaml:"person_name" json:"person_name"`
	RFC                      RFCRules          `yaml:"rfc" json:"rfc"`
	InteriorNumberRejections []string          `yaml:"interior_number_rejections" json:"interior_number_rejections"`
	StreetTypes              []string          `yaml:"street_types" json:"street_types"`
	SettlementTypes          []string          `yaml:"settlement_types" json:"settlement_types"`
	CompanySuffixes          []string          `yaml:"company_suffixes" json:"company_suffixes"`
	ProfessionalTitles       []string          `yaml:"professional_titles" json:"professional_titles"`
	PaymentMethods           []PaymentMethod   `yaml:"payment_methods" json:"payment_methods"`
	Currencies               []Currency        `yaml:"currencies" json:"currencies"`
	CountryAliases           map[string]string `yaml:"country_aliases" json:"country_aliases"`
	Lists                    ListNames         `yaml:"lists" json:"lists"`
	Catalogs                 CatalogSpecs      `yaml:"catalogs" json:"catalogs"`

	// Version content digest of the source YAML; cached results are keyed by it
	Version string `yaml:"-" json:"version"`
}

// Default returns the embedded rule set
func Default() (*Config, error) {
	return Parse(defaultRulesYAML)
}

// DefaultYAML a copy of the embedded rule set source
func DefaultYAML() []byte {
	return bytes.Clone(defaultRulesYAML)
}

// MustDefault is Default that panics; the embedded file is validated by tests
func MustDefault() *Config {
	cfg, err := Default()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads a rule set from path on fs, falling back to the embedded file when path is empty.
// A nil fs reads from the OS filesystem.
func Load(fs afero.Fs, path string) (*Config, error) {
	if path == "" {
		return Default()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read rules file %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML rule set
func Parse(b []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sum := sha256.Sum256(b)
	cfg.Version = hex.EncodeToString(sum[:6])
	return cfg, nil
}

// Validate checks the rule set is usable
func (c *Config) Validate() error {
	var errs []error

	checkThreshold := func(name string, v float64) {
		if v <= 0 || v > 100 {
			errs = append(errs, fmt.Errorf("threshold %s must be in (0, 100], got %v", name, v))
		}
	}
	checkThreshold("blacklist", c.Thresholds.Blacklist)
	checkThreshold("catalog", c.Thresholds.Catalog)
	checkThreshold("payment_method", c.Thresholds.PaymentMethod)
	checkThreshold("company_suffix", c.Thresholds.CompanySuffix)
	checkThreshold("title", c.Thresholds.Title)

	if c.FiscalYear.Min > c.FiscalYear.Max {
		errs = append(errs, fmt.Errorf("fiscal_year min %d greater than max %d", c.FiscalYear.Min, c.FiscalYear.Max))
	}
	if c.PersonName.ReviewTokenLimit <= 0 {
		errs = append(errs, errors.New("person_name.review_token_limit must be positive"))
	}
	if len(c.StreetTypes) == 0 || len(c.SettlementTypes) == 0 {
		errs = append(errs, errors.New("street_types and settlement_types must not be empty"))
	}
	for _, p := range c.PaymentMethods {
		if p.Label == "" || len(p.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("payment method %q needs a label and keywords", p.Label))
		}
	}
	for _, cur := range c.Currencies {
		if cur.Code == "" || cur.List == "" {
			errs = append(errs, fmt.Errorf("currency %q needs a code and a list", cur.Code))
		}
	}
	for _, spec := range c.Catalogs.All() {
		if spec.Table == "" || spec.NameColumn == "" {
			errs = append(errs, fmt.Errorf("catalog %q needs a table and a name column", spec.Table))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid rules: %w", errors.Join(errs...))
	}
	return nil
}

// ListNamesInUse every reference list referenced by the rule set
func (c *Config) ListNamesInUse() []string {
	names := []string{
		c.Lists.AddressBlacklist,
		c.Lists.NameBlacklist,
		c.Lists.FirstSurnameBlacklist,
		c.Lists.SecondSurnameBlacklist,
		c.Lists.CompanyBlacklist,
	}
	for _, cur := range c.Currencies {
		names = append(names, cur.List)
	}
	return dedupe(names)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
