package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weltrada/product-research/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFetcher serves canned bodies per URL; unknown URLs fail.
type fakeFetcher struct {
	pages map[string][]byte
}

func (f *fakeFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	body, ok := f.pages[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return body, nil
}

const productPageEN = `<html><body>
	<h1> Contactor AC-3 </h1>
	<ul class="breadcrumb"><li>Home</li><li>Contactors</li><li>3RT2015</li></ul>
	<img src="/product/3RT2015-front.jpg">
	<img src="/assets/logo.png">
	<a href="/docs/3RT2015-datasheet.pdf">Datasheet</a>
	<span class="gtin">4011209012345</span>
</body></html>`

const productPageTR = `<html><body>
	<h1>Kontaktör AC-3</h1>
	<ul class="breadcrumb"><li>Ana Sayfa</li><li>Kontaktörler</li><li>3RT2015</li></ul>
	<img src="/product/3RT2015-front.jpg">
	<a href="/docs/3RT2015-teknik.pdf">Teknik veriler</a>
</body></html>`

func testSiteConfig() SiteConfig {
	return SiteConfig{
		Brand: "Siemens",
		Pages: []LangPage{
			{Lang: "en", URL: "https://example.com/en/product/%s", Origin: "https://example.com"},
			{Lang: "tr", URL: "https://example.com/tr/product/%s", Origin: "https://example.com"},
		},
		BreadcrumbSelector: "ul.breadcrumb li",
		Images:             ImageMatch{Token: "/product/"},
		EANSelector:        "span.gtin",
		Rule:               models.StatusRuleAny,
	}
}

func TestSiteStrategyExtract(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://example.com/en/product/3RT2015": []byte(productPageEN),
		"https://example.com/tr/product/3RT2015": []byte(productPageTR),
	}}

	strategy := NewSiteStrategy(testSiteConfig(), fetcher, testLogger())
	record, err := strategy.Extract(context.Background(), "3RT2015")
	require.NoError(t, err)

	assert.Equal(t, "Contactor AC-3", record.Name["en"])
	assert.Equal(t, "Kontaktör AC-3", record.Name["tr"])
	assert.Equal(t, "Home > Contactors > 3RT2015", record.Breadcrumbs["en"])
	assert.Equal(t, "Contactors", record.Category["en"])
	assert.Equal(t, "Kontaktörler", record.Category["tr"])
	assert.Equal(t, "https://example.com/docs/3RT2015-datasheet.pdf", record.Datasheet["en"])
	assert.Equal(t, "https://example.com/docs/3RT2015-teknik.pdf", record.Datasheet["tr"])
	assert.Equal(t, "4011209012345", record.EAN)
	assert.Equal(t, "https://example.com/en/product/3RT2015", record.PageURL)

	// The same image on both pages is deduplicated.
	assert.Equal(t, []string{"https://example.com/product/3RT2015-front.jpg"}, record.Images)

	assert.Equal(t, models.StatusOK, record.Status)
}

func TestSiteStrategyDegradesFailedLanguage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://example.com/tr/product/3RT2015": []byte(productPageTR),
	}}

	strategy := NewSiteStrategy(testSiteConfig(), fetcher, testLogger())
	record, err := strategy.Extract(context.Background(), "3RT2015")
	require.NoError(t, err)

	// The failed en page leaves en fields empty; tr survives untouched.
	assert.Empty(t, record.Name["en"])
	assert.Equal(t, "Kontaktör AC-3", record.Name["tr"])
	assert.Equal(t, "https://example.com/tr/product/3RT2015", record.PageURL)
	assert.Equal(t, models.StatusOK, record.Status)
}

func TestSiteStrategyAllPagesFail(t *testing.T) {
	strategy := NewSiteStrategy(testSiteConfig(), &fakeFetcher{}, testLogger())
	record, err := strategy.Extract(context.Background(), "3RT2015")
	require.NoError(t, err)

	assert.True(t, record.Empty())
	assert.Equal(t, models.StatusNotFound, record.Status)
}

func TestSiteStrategyFixedPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://example.com/katalog/winkel-030191": []byte(`<html><body>
			<h1>Innen-Aussenwinkel</h1>
			<img src="/media/030191.jpg">
		</body></html>`),
	}}

	cfg := SiteConfig{
		Brand: "Legrand",
		Pages: []LangPage{
			{Lang: "de", URL: "https://example.com/katalog/winkel-030191", Fixed: true, Origin: "https://example.com"},
		},
		Images: ImageMatch{Token: "030191"},
		Rule:   models.StatusRuleAny,
	}

	strategy := NewSiteStrategy(cfg, fetcher, testLogger())

	// The fixed page is fetched regardless of the requested code.
	record, err := strategy.Extract(context.Background(), "WHATEVER")
	require.NoError(t, err)

	assert.Equal(t, "Innen-Aussenwinkel", record.Name["de"])
	assert.Equal(t, []string{"https://example.com/media/030191.jpg"}, record.Images)
}

func TestSiteStrategyAgainstHTTPServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/en/product/3RT2015" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, productPageEN)
	}))
	defer server.Close()

	cfg := SiteConfig{
		Brand: "Siemens",
		Pages: []LangPage{
			{Lang: "en", URL: server.URL + "/en/product/%s", Origin: server.URL},
		},
		BreadcrumbSelector: "ul.breadcrumb li",
		Images:             ImageMatch{Token: "/product/"},
		Rule:               models.StatusRuleAny,
	}

	strategy := NewSiteStrategy(cfg, &httpFetcher{}, testLogger())
	record, err := strategy.Extract(context.Background(), "3RT2015")
	require.NoError(t, err)

	assert.Equal(t, "Contactor AC-3", record.Name["en"])
	assert.Equal(t, []string{server.URL + "/product/3RT2015-front.jpg"}, record.Images)
}

// httpFetcher is a minimal real-HTTP PageFetcher for server-backed tests.
type httpFetcher struct{}

func (f *httpFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
