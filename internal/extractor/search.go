package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/weltrada/product-research/internal/models"
)

// SearchConfig describes a brand looked up through a web-search provider
// instead of its own site.
type SearchConfig struct {
	Brand string
	Rule  models.StatusRule
}

// SearchCredentials point at the JSON search provider. Empty credentials
// make every lookup short-circuit to an empty record without a network call.
type SearchCredentials struct {
	Endpoint string
	APIKey   string
}

func (c SearchCredentials) configured() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

// SearchStrategy resolves a product through one web-search query and one
// image-search query.
type SearchStrategy struct {
	cfg     SearchConfig
	creds   SearchCredentials
	fetcher PageFetcher
	logger  *slog.Logger
}

func NewSearchStrategy(cfg SearchConfig, creds SearchCredentials, fetcher PageFetcher, logger *slog.Logger) *SearchStrategy {
	return &SearchStrategy{
		cfg:     cfg,
		creds:   creds,
		fetcher: fetcher,
		logger:  logger.With("component", "search_extractor", "brand", cfg.Brand),
	}
}

func (s *SearchStrategy) Brand() string { return s.cfg.Brand }

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
	ImagesResults  []imageResult   `json:"images_results"`
}

type organicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type imageResult struct {
	Original string `json:"original"`
}

func (s *SearchStrategy) query(ctx context.Context, engine, q string) (*searchResponse, error) {
	params := url.Values{}
	params.Set("engine", engine)
	params.Set("q", q)
	params.Set("api_key", s.creds.APIKey)

	body, err := s.fetcher.Get(ctx, s.creds.Endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return &resp, nil
}

// Extract issues the two provider queries and assembles a record. Either
// query failing degrades its fields to empty.
func (s *SearchStrategy) Extract(ctx context.Context, code string) (*models.ProductRecord, error) {
	record := models.NewProductRecord(s.cfg.Brand, code)

	if !s.creds.configured() {
		s.logger.Warn("search credentials missing, skipping lookup", "code", code)
		return record, nil
	}

	if web, err := s.query(ctx, "google", fmt.Sprintf("%s %s datasheet", s.cfg.Brand, code)); err != nil {
		s.logger.Warn("web search failed", "code", code, "error", err)
	} else {
		if len(web.OrganicResults) > 0 {
			first := web.OrganicResults[0]
			record.Name["en"] = first.Title
			record.PageURL = first.Link
		}
		record.Datasheet["en"] = pickDatasheet(web.OrganicResults)
	}

	if imgs, err := s.query(ctx, "google_images", fmt.Sprintf("%s %s product image", s.cfg.Brand, code)); err != nil {
		s.logger.Warn("image search failed", "code", code, "error", err)
	} else {
		for _, r := range imgs.ImagesResults {
			if r.Original != "" {
				record.Images = append(record.Images, r.Original)
			}
		}
		record.Images = dedupe(record.Images)
	}

	record.Status = record.Classify(s.cfg.Rule)

	return record, nil
}

// pickDatasheet scans results for the first PDF link, preferring results
// whose snippet or title mentions a datasheet.
func pickDatasheet(results []organicResult) string {
	var first string
	for _, r := range results {
		if !strings.Contains(strings.ToLower(r.Link), ".pdf") {
			continue
		}
		if first == "" {
			first = r.Link
		}
		text := strings.ToLower(r.Snippet + " " + r.Title)
		if strings.Contains(text, "datasheet") {
			return r.Link
		}
	}
	return first
}

// SearchConfigs returns the brands resolved through the search provider.
func SearchConfigs() []SearchConfig {
	return []SearchConfig{
		{Brand: "Phoenix Contact", Rule: models.StatusRuleAll},
		{Brand: "Omron", Rule: models.StatusRuleAny},
	}
}
