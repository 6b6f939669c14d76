package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/weltrada/product-research/internal/models"
)

// LangPage describes one language-specific product page of a brand site.
type LangPage struct {
	Lang string
	// URL is a template with one %s verb for the product code, unless Fixed.
	URL string
	// Fixed pages ignore the product code entirely. The Legrand entry is the
	// one known case and the limitation is intentional.
	Fixed  bool
	Origin string
}

// ImageMatch decides which img sources on a page belong to the product.
type ImageMatch struct {
	// Token is the literal substring an image source must contain. Empty
	// means the product code itself.
	Token string
	// Fold makes the containment test case-insensitive.
	Fold bool
}

func (m ImageMatch) matcher(code string) func(src string) bool {
	token := m.Token
	if token == "" {
		token = code
	}
	if m.Fold {
		lower := strings.ToLower(token)
		return func(src string) bool { return strings.Contains(strings.ToLower(src), lower) }
	}
	return func(src string) bool { return strings.Contains(src, token) }
}

// SiteConfig holds everything that varies between brand sites whose page
// structure is uniform enough to share one extraction routine.
type SiteConfig struct {
	Brand              string
	Pages              []LangPage
	BreadcrumbSelector string
	Images             ImageMatch
	// PDFContains accepts hrefs merely containing ".pdf"; default requires
	// the suffix.
	PDFContains bool
	EANSelector string
	Rule        models.StatusRule
}

// SiteStrategy extracts a product record by scraping a brand's own site.
type SiteStrategy struct {
	cfg     SiteConfig
	fetcher PageFetcher
	logger  *slog.Logger
}

func NewSiteStrategy(cfg SiteConfig, fetcher PageFetcher, logger *slog.Logger) *SiteStrategy {
	return &SiteStrategy{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger.With("component", "extractor", "brand", cfg.Brand),
	}
}

func (s *SiteStrategy) Brand() string { return s.cfg.Brand }

// Extract fetches every configured language page and assembles a record.
// A failed fetch or parse degrades that language's fields to empty.
func (s *SiteStrategy) Extract(ctx context.Context, code string) (*models.ProductRecord, error) {
	record := models.NewProductRecord(s.cfg.Brand, code)
	match := s.cfg.Images.matcher(code)

	for _, page := range s.cfg.Pages {
		url := page.URL
		if !page.Fixed {
			url = fmt.Sprintf(page.URL, code)
		}

		body, err := s.fetcher.Get(ctx, url)
		if err != nil {
			s.logger.Warn("page fetch failed", "lang", page.Lang, "url", url, "error", err)
			continue
		}

		doc, err := parseDoc(body)
		if err != nil {
			s.logger.Warn("page parse failed", "lang", page.Lang, "url", url, "error", err)
			continue
		}

		if record.PageURL == "" {
			record.PageURL = url
		}

		if name := heading(doc); name != "" {
			record.Name[page.Lang] = name
		}

		if s.cfg.BreadcrumbSelector != "" {
			if crumbs := breadcrumbs(doc, s.cfg.BreadcrumbSelector); len(crumbs) > 0 {
				record.Breadcrumbs[page.Lang] = strings.Join(crumbs, " > ")
				record.Category[page.Lang] = categoryOf(crumbs)
			}
		}

		record.Images = append(record.Images, imageURLs(doc, match, page.Origin)...)

		if sheet := datasheetURL(doc, page.Origin, !s.cfg.PDFContains); sheet != "" {
			record.Datasheet[page.Lang] = sheet
		}

		if s.cfg.EANSelector != "" && record.EAN == "" {
			record.EAN = strings.TrimSpace(doc.Find(s.cfg.EANSelector).First().Text())
		}
	}

	record.Images = dedupe(record.Images)
	record.Status = record.Classify(s.cfg.Rule)

	return record, nil
}

// SiteConfigs returns the extraction configuration for every directly
// scraped brand.
func SiteConfigs() []SiteConfig {
	return []SiteConfig{
		{
			Brand: "Schneider Electric",
			Pages: []LangPage{
				{Lang: "en", URL: "https://www.se.com/uk/en/product/%s/", Origin: "https://www.se.com"},
				{Lang: "tr", URL: "https://www.se.com/tr/tr/product/%s/", Origin: "https://www.se.com"},
			},
			BreadcrumbSelector: "li[itemprop=itemListElement]",
			Images:             ImageMatch{Token: "/product/"},
			EANSelector:        "span[itemprop=gtin13]",
			Rule:               models.StatusRuleAny,
		},
		{
			Brand: "ABB Group",
			Pages: []LangPage{
				{Lang: "en", URL: "https://new.abb.com/products/%s", Origin: "https://new.abb.com"},
				{Lang: "tr", URL: "https://new.abb.com/products/tr/%s", Origin: "https://new.abb.com"},
			},
			Images:      ImageMatch{Fold: true},
			PDFContains: true,
			Rule:        models.StatusRuleAny,
		},
		{
			Brand: "Allen Bradley (Rockwell Automation)",
			Pages: []LangPage{
				{Lang: "en", URL: "https://www.rockwellautomation.com/en-dk/products/details.%s.html", Origin: "https://www.rockwellautomation.com"},
			},
			BreadcrumbSelector: "li.breadcrumb-item",
			Images:             ImageMatch{},
			Rule:               models.StatusRuleAny,
		},
		{
			Brand: "Eaton",
			Pages: []LangPage{
				{Lang: "en", URL: "https://www.eaton.com/gb/en-gb/skuPage.%s.html", Origin: "https://www.eaton.com"},
			},
			Images: ImageMatch{Fold: true},
			Rule:   models.StatusRuleAny,
		},
		{
			Brand: "Legrand",
			Pages: []LangPage{
				{Lang: "de", URL: "https://www.legrand.at/de/katalog/produkte/innen-aussenwinkel-16x16-weiss-030191", Fixed: true, Origin: "https://www.legrand.at"},
			},
			BreadcrumbSelector: "ul.breadcrumb li",
			Images:             ImageMatch{Token: "030191"},
			Rule:               models.StatusRuleAny,
		},
		{
			Brand: "Wago",
			Pages: []LangPage{
				{Lang: "en", URL: "https://www.wago.com/global/marking/roller/p/%s", Origin: "https://www.wago.com"},
			},
			Images: ImageMatch{},
			Rule:   models.StatusRuleAny,
		},
		{
			Brand: "Siemens",
			Pages: []LangPage{
				{Lang: "en", URL: "https://mall.industry.siemens.com/mall/en/oeii/Catalog/Product/%s", Origin: "https://mall.industry.siemens.com"},
			},
			BreadcrumbSelector: "ul.breadcrumb li",
			Images:             ImageMatch{Fold: true},
			Rule:               models.StatusRuleAny,
		},
	}
}
