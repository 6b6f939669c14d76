package models

import (
	"strings"
	"time"
)

// InputRow is one row of the uploaded spreadsheet.
type InputRow struct {
	Brand string `json:"brand"`
	Code  string `json:"product_code"`
}

// Valid reports whether the row carries both required fields after trimming.
func (r InputRow) Valid() bool {
	return strings.TrimSpace(r.Brand) != "" && strings.TrimSpace(r.Code) != ""
}

// ExtractStatus classifies the overall outcome of a product extraction.
type ExtractStatus string

const (
	StatusOK       ExtractStatus = "OK"
	StatusPartial  ExtractStatus = "PARTIAL"
	StatusNotFound ExtractStatus = "NOT_FOUND"
)

// ProductRecord is the normalized result of a single product lookup.
// Per-language fields live in maps keyed by language code ("en", "tr", "de");
// absent languages read as empty strings, so consumers never see a nil field.
type ProductRecord struct {
	Brand       string            `json:"brand"`
	Code        string            `json:"code"`
	Name        map[string]string `json:"name"`
	Category    map[string]string `json:"category"`
	Breadcrumbs map[string]string `json:"breadcrumbs"`
	Datasheet   map[string]string `json:"datasheet"`
	Images      []string          `json:"images"`
	EAN         string            `json:"ean,omitempty"`
	PageURL     string            `json:"page_url,omitempty"`
	Status      ExtractStatus     `json:"status"`
	ScrapedAt   time.Time         `json:"scraped_at"`
}

func NewProductRecord(brand, code string) *ProductRecord {
	return &ProductRecord{
		Brand:       brand,
		Code:        code,
		Name:        make(map[string]string),
		Category:    make(map[string]string),
		Breadcrumbs: make(map[string]string),
		Datasheet:   make(map[string]string),
		Images:      make([]string, 0),
		Status:      StatusNotFound,
		ScrapedAt:   time.Now(),
	}
}

// fallbackChains defines, per output language, the order in which languages
// are consulted when the primary language has no value.
var fallbackChains = map[string][]string{
	"en": {"en", "de"},
	"tr": {"tr", "en", "de"},
	"de": {"de", "en"},
}

func fallback(values map[string]string, lang string) string {
	chain, ok := fallbackChains[lang]
	if !ok {
		chain = []string{lang, "en"}
	}
	for _, l := range chain {
		if v := values[l]; v != "" {
			return v
		}
	}
	return ""
}

// NameIn returns the product name for lang, falling back through the
// language-priority chain.
func (p *ProductRecord) NameIn(lang string) string { return fallback(p.Name, lang) }

// CategoryIn returns the category for lang with fallback.
func (p *ProductRecord) CategoryIn(lang string) string { return fallback(p.Category, lang) }

// BreadcrumbsIn returns the breadcrumb trail for lang with fallback.
func (p *ProductRecord) BreadcrumbsIn(lang string) string { return fallback(p.Breadcrumbs, lang) }

// Empty reports whether extraction produced no usable data at all.
func (p *ProductRecord) Empty() bool {
	if len(p.Images) > 0 {
		return false
	}
	for _, m := range []map[string]string{p.Name, p.Category, p.Breadcrumbs, p.Datasheet} {
		for _, v := range m {
			if v != "" {
				return false
			}
		}
	}
	return p.EAN == "" && p.PageURL == ""
}

// StatusRule selects how the tri-state status is derived from what was found.
type StatusRule string

const (
	// StatusRuleAll requires both a datasheet and images for OK.
	StatusRuleAll StatusRule = "all"
	// StatusRuleAny grants OK when either a datasheet or images were found.
	StatusRuleAny StatusRule = "any"
)

// Classify derives the tri-state status from the record contents.
func (p *ProductRecord) Classify(rule StatusRule) ExtractStatus {
	hasSheet := false
	for _, v := range p.Datasheet {
		if v != "" {
			hasSheet = true
			break
		}
	}
	hasImages := len(p.Images) > 0
	hasPage := p.PageURL != "" || p.NameIn("en") != ""

	switch {
	case rule == StatusRuleAll && hasSheet && hasImages:
		return StatusOK
	case rule == StatusRuleAny && (hasSheet || hasImages):
		return StatusOK
	case hasSheet || hasImages || hasPage:
		return StatusPartial
	default:
		return StatusNotFound
	}
}
