package resolver

import (
	"log/slog"
	"strings"

	"github.com/weltrada/product-research/internal/extractor"
)

// Entry binds brand keywords to an extraction strategy. Entries are tested
// in order, so position decides ties when a brand string matches more than
// one keyword.
type Entry struct {
	Keywords []string
	Strategy extractor.Strategy
}

// Resolver maps free-text brand strings to extraction strategies by keyword
// containment. No fuzzy matching beyond case folding.
type Resolver struct {
	entries []Entry
}

func New(entries []Entry) *Resolver {
	return &Resolver{entries: entries}
}

// Resolve returns the strategy for brandText, or nil when no keyword matches.
func (r *Resolver) Resolve(brandText string) extractor.Strategy {
	b := strings.ToLower(strings.TrimSpace(brandText))
	if b == "" {
		return nil
	}

	for _, e := range r.entries {
		for _, kw := range e.Keywords {
			if strings.Contains(b, kw) {
				return e.Strategy
			}
		}
	}

	return nil
}

// keywordsByBrand lists the recognition keywords per brand display name.
var keywordsByBrand = map[string][]string{
	"Schneider Electric":                  {"schneider"},
	"ABB Group":                           {"abb"},
	"Allen Bradley (Rockwell Automation)": {"allen", "rockwell"},
	"Eaton":                               {"eaton"},
	"Legrand":                             {"legrand"},
	"Wago":                                {"wago"},
	"Siemens":                             {"siemens"},
	"Phoenix Contact":                     {"phoenix"},
	"Omron":                               {"omron"},
}

// Default wires the full brand set: the directly scraped sites first, then
// the search-based brands, in a fixed priority order.
func Default(fetcher extractor.PageFetcher, creds extractor.SearchCredentials, logger *slog.Logger) *Resolver {
	var entries []Entry

	for _, cfg := range extractor.SiteConfigs() {
		entries = append(entries, Entry{
			Keywords: keywordsByBrand[cfg.Brand],
			Strategy: extractor.NewSiteStrategy(cfg, fetcher, logger),
		})
	}

	for _, cfg := range extractor.SearchConfigs() {
		entries = append(entries, Entry{
			Keywords: keywordsByBrand[cfg.Brand],
			Strategy: extractor.NewSearchStrategy(cfg, creds, fetcher, logger),
		})
	}

	return New(entries)
}
