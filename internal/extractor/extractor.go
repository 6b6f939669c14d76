package extractor

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/weltrada/product-research/internal/models"
)

// Strategy is one brand-specific extraction procedure. Implementations never
// fail a whole record because a single page or field was unavailable; missing
// data is left empty in the returned record.
type Strategy interface {
	Brand() string
	Extract(ctx context.Context, code string) (*models.ProductRecord, error)
}

// PageFetcher retrieves raw page bodies. Satisfied by fetch.Client.
type PageFetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// datasheetKeywords mark links whose text suggests a product datasheet.
var datasheetKeywords = []string{"datasheet", "data sheet", "datenblatt", "teknik", "specification"}

func parseDoc(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(string(body)))
}

// heading returns the text of the first top-level heading.
func heading(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// breadcrumbs returns the trimmed entries matched by selector, in order.
func breadcrumbs(doc *goquery.Document, selector string) []string {
	var crumbs []string
	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			crumbs = append(crumbs, text)
		}
	})
	return crumbs
}

// categoryOf is the second-to-last breadcrumb entry.
func categoryOf(crumbs []string) string {
	if len(crumbs) >= 2 {
		return crumbs[len(crumbs)-2]
	}
	return ""
}

// absolutize rewrites protocol-relative and root-relative references against
// the brand's canonical origin. Already-absolute URLs pass through.
func absolutize(src, origin string) string {
	switch {
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		return origin + src
	default:
		return src
	}
}

// imageURLs collects img sources accepted by match, absolutized.
func imageURLs(doc *goquery.Document, match func(src string) bool, origin string) []string {
	var urls []string
	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		if match(src) {
			urls = append(urls, absolutize(src, origin))
		}
	})
	return urls
}

// datasheetURL returns the first PDF link, preferring links whose text
// contains a datasheet-like keyword. exact requires the href to end in .pdf
// rather than merely contain it.
func datasheetURL(doc *goquery.Document, origin string, exact bool) string {
	matches := func(href string) bool {
		h := strings.ToLower(href)
		if exact {
			return strings.HasSuffix(h, ".pdf")
		}
		return strings.Contains(h, ".pdf")
	}

	var first, preferred string
	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if href == "" || !matches(href) {
			return true
		}
		abs := absolutize(href, origin)
		if first == "" {
			first = abs
		}
		text := strings.ToLower(s.Text())
		for _, kw := range datasheetKeywords {
			if strings.Contains(text, kw) {
				preferred = abs
				return false
			}
		}
		return true
	})

	if preferred != "" {
		return preferred
	}
	return first
}

// dedupe removes duplicate URLs preserving first-seen order.
func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	var unique []string
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	return unique
}
