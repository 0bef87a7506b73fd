// Package catalog provides the embedded market and language catalog.
// Country codes are Google Ads geo target constants; language codes map
// to keyword planner language criterion IDs.
package catalog

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/indago/internal/models"
)

//go:embed countries.yaml
var fs embed.FS

type catalogData struct {
	Countries []models.Country `yaml:"countries"`
	Languages map[string]int   `yaml:"languages"`
}

var (
	data   catalogData
	byCode map[string]models.Country
)

func init() {
	raw, err := fs.ReadFile("countries.yaml")
	if err != nil {
		panic(fmt.Sprintf("catalog: read embedded countries.yaml: %v", err))
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		panic(fmt.Sprintf("catalog: parse embedded countries.yaml: %v", err))
	}

	byCode = make(map[string]models.Country, len(data.Countries))
	for _, c := range data.Countries {
		byCode[c.Code] = c
	}
}

// Countries returns all supported markets sorted by name.
func Countries() []models.Country {
	out := make([]models.Country, len(data.Countries))
	copy(out, data.Countries)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CountryByCode looks up a market by its geo target code.
func CountryByCode(code string) (models.Country, bool) {
	c, ok := byCode[strings.TrimSpace(code)]
	return c, ok
}

// DefaultLanguage returns the default language for a geo target code,
// falling back to "en" for unknown markets.
func DefaultLanguage(code string) string {
	if c, ok := CountryByCode(code); ok && c.DefaultLanguage != "" {
		return c.DefaultLanguage
	}
	return "en"
}

// Languages returns the supported language codes sorted alphabetically.
func Languages() []string {
	out := make([]string, 0, len(data.Languages))
	for code := range data.Languages {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// LanguageCriterion returns the keyword planner criterion ID for a
// language code.
func LanguageCriterion(lang string) (int, bool) {
	id, ok := data.Languages[strings.ToLower(strings.TrimSpace(lang))]
	return id, ok
}

// IsSupportedLanguage reports whether the language code has a criterion
// mapping.
func IsSupportedLanguage(lang string) bool {
	_, ok := LanguageCriterion(lang)
	return ok
}

// ResolveLanguage picks the effective research language: an explicit
// request wins (lower-cased), otherwise the target market's default,
// otherwise "en".
func ResolveLanguage(requested, countryCode string) string {
	if l := strings.ToLower(strings.TrimSpace(requested)); l != "" {
		return l
	}
	return DefaultLanguage(countryCode)
}
