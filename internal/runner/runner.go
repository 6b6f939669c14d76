package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/weltrada/product-research/internal/assets"
	"github.com/weltrada/product-research/internal/extractor"
	"github.com/weltrada/product-research/internal/sheet"
)

// Resolver maps a brand string to its extraction strategy.
type Resolver interface {
	Resolve(brandText string) extractor.Strategy
}

// AssetSaver downloads and normalizes remote assets.
type AssetSaver interface {
	SaveImage(ctx context.Context, url, dest string) bool
	SaveDocument(ctx context.Context, url, dest string) bool
}

// Progress receives row-level progress while a run is executing.
type Progress func(processed, total int)

// Options tune a run without touching the orchestration itself.
type Options struct {
	// BaseDir holds run roots and finished archives.
	BaseDir string
	// ImageCap limits successful image saves per product; 0 means unlimited.
	ImageCap int
}

// Result summarizes one finished run.
type Result struct {
	RunName       string    `json:"run_name"`
	RunRoot       string    `json:"-"`
	ArchiveName   string    `json:"archive_name"`
	ArchivePath   string    `json:"-"`
	RowsTotal     int       `json:"rows_total"`
	RowsProcessed int       `json:"rows_processed"`
	RowsSkipped   int       `json:"rows_skipped"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Runner turns one uploaded spreadsheet into a populated run directory and
// a zip archive. Rows are processed strictly sequentially; every per-row
// failure is isolated and the only run-fatal condition is unusable input.
type Runner struct {
	resolver Resolver
	assets   AssetSaver
	delivery Delivery
	opts     Options
	logger   *slog.Logger
}

func New(resolver Resolver, saver AssetSaver, delivery Delivery, opts Options, logger *slog.Logger) *Runner {
	if delivery == nil {
		delivery = NoopDelivery{}
	}
	return &Runner{
		resolver: resolver,
		assets:   saver,
		delivery: delivery,
		opts:     opts,
		logger:   logger.With("component", "runner"),
	}
}

const timestampLayout = "02-01-2006-at-15-04"

// Run executes the full pipeline over the uploaded spreadsheet. progress may
// be nil.
func (r *Runner) Run(ctx context.Context, input io.Reader, progress Progress) (*Result, error) {
	startedAt := time.Now()
	runName := "Research-" + startedAt.Format(timestampLayout)
	runRoot := filepath.Join(r.opts.BaseDir, runName)

	for _, dir := range []string{
		runRoot,
		filepath.Join(runRoot, "Images"),
		filepath.Join(runRoot, "Info", "en", "Breadcrumbs"),
		filepath.Join(runRoot, "Info", "tr", "Sayfa-Yollari"),
		filepath.Join(runRoot, "Datasheets"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create run directory: %w", err)
		}
	}

	// Audit copy of the upload goes into the run root before any processing.
	raw, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sheet.ErrInvalidInput, err)
	}
	if err := os.WriteFile(filepath.Join(runRoot, "uploaded.xlsx"), raw, 0644); err != nil {
		return nil, fmt.Errorf("failed to persist uploaded spreadsheet: %w", err)
	}

	rows, err := sheet.ReadInput(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	r.logger.Info("run started", "run", runName, "rows", len(rows))

	enTable := sheet.NewTable("Product Code", "Brand", "Product Name", "Category")
	trTable := sheet.NewTable("Ürün Kodu", "Marka", "Ürün Adı", "Kategori")
	searchTable := sheet.NewTable("Product Code", "Brand", "Page URL", "Datasheet URL", "Image URLs", "Saved Files", "Status")
	searchUsed := false

	result := &Result{
		RunName:     runName,
		RunRoot:     runRoot,
		ArchiveName: runName + ".zip",
		RowsTotal:   len(rows),
		StartedAt:   startedAt,
	}

	for i, row := range rows {
		if progress != nil {
			progress(i, len(rows))
		}

		if !row.Valid() {
			r.logger.Warn("skipping row with empty brand or code", "row", i)
			result.RowsSkipped++
			continue
		}

		code := strings.ToUpper(row.Code)

		strategy := r.resolver.Resolve(row.Brand)
		if strategy == nil {
			r.logger.Warn("skipping row with unrecognized brand", "row", i, "brand", row.Brand)
			result.RowsSkipped++
			continue
		}

		r.logger.Info("processing row", "row", i, "brand", row.Brand, "code", code)

		record, err := strategy.Extract(ctx, code)
		if err != nil || record == nil || record.Empty() {
			r.logger.Warn("skipping row with no extracted data", "row", i, "brand", row.Brand, "code", code, "error", err)
			result.RowsSkipped++
			continue
		}

		enTable.Append(code, row.Brand, record.NameIn("en"), record.CategoryIn("en"))
		trTable.Append(code, row.Brand, record.NameIn("tr"), record.CategoryIn("tr"))

		r.writeBreadcrumbs(runRoot, code, record.BreadcrumbsIn("en"), record.BreadcrumbsIn("tr"))

		saved := r.saveImages(ctx, runRoot, row.Brand, code, record.Images)
		r.saveDatasheets(ctx, runRoot, code, record.Datasheet)

		if _, ok := strategy.(*extractor.SearchStrategy); ok {
			searchUsed = true
			searchTable.Append(code, row.Brand, record.PageURL, record.Datasheet["en"],
				strings.Join(record.Images, ";"), strings.Join(saved, ";"), string(record.Status))
		}

		result.RowsProcessed++
	}

	if err := enTable.Write(filepath.Join(runRoot, "Info", "en", "products-info.xlsx")); err != nil {
		r.logger.Error("failed to write en table", "error", err)
	}
	if err := trTable.Write(filepath.Join(runRoot, "Info", "tr", "urun-detaylari.xlsx")); err != nil {
		r.logger.Error("failed to write tr table", "error", err)
	}
	if searchUsed {
		if err := searchTable.Write(filepath.Join(runRoot, "search-results.xlsx")); err != nil {
			r.logger.Error("failed to write search table", "error", err)
		}
	}

	archivePath := filepath.Join(r.opts.BaseDir, result.ArchiveName)
	if err := Zip(runRoot, archivePath); err != nil {
		return nil, fmt.Errorf("failed to archive run: %w", err)
	}
	result.ArchivePath = archivePath
	result.CompletedAt = time.Now()

	if progress != nil {
		progress(len(rows), len(rows))
	}

	if err := r.delivery.Deliver(ctx, archivePath); err != nil {
		r.logger.Error("delivery failed", "archive", result.ArchiveName, "error", err)
	}

	r.logger.Info("run finished", "run", runName,
		"processed", result.RowsProcessed, "skipped", result.RowsSkipped, "archive", result.ArchiveName)

	return result, nil
}

// writeBreadcrumbs writes the per-language breadcrumb text files. An empty
// trail still produces an empty file.
func (r *Runner) writeBreadcrumbs(runRoot, code, en, tr string) {
	enPath := filepath.Join(runRoot, "Info", "en", "Breadcrumbs", code+"-breadcrumbs.txt")
	if err := os.WriteFile(enPath, []byte(en), 0644); err != nil {
		r.logger.Warn("failed to write breadcrumb file", "path", enPath, "error", err)
	}

	trPath := filepath.Join(runRoot, "Info", "tr", "Sayfa-Yollari", code+"-sayfa-yolu.txt")
	if err := os.WriteFile(trPath, []byte(tr), 0644); err != nil {
		r.logger.Warn("failed to write breadcrumb file", "path", trPath, "error", err)
	}
}

// saveImages downloads product images into Images/<CODE>/. The sequence
// suffix advances only on successful saves, and the cap counts saved files.
func (r *Runner) saveImages(ctx context.Context, runRoot, brand, code string, urls []string) []string {
	imgDir := filepath.Join(runRoot, "Images", code)
	if err := os.MkdirAll(imgDir, 0755); err != nil {
		r.logger.Warn("failed to create image directory", "dir", imgDir, "error", err)
		return nil
	}

	var saved []string
	count := 1
	for _, url := range urls {
		if r.opts.ImageCap > 0 && len(saved) >= r.opts.ImageCap {
			break
		}
		name := assets.ImageFilename(brand, code, count)
		if r.assets.SaveImage(ctx, url, filepath.Join(imgDir, name)) {
			saved = append(saved, name)
			count++
		}
	}

	return saved
}

func (r *Runner) saveDatasheets(ctx context.Context, runRoot, code string, sheets map[string]string) {
	for _, lang := range []string{"en", "tr", "de"} {
		url := sheets[lang]
		if url == "" {
			continue
		}
		dest := filepath.Join(runRoot, "Datasheets", fmt.Sprintf("%s-datasheet-%s.pdf", code, lang))
		if !r.assets.SaveDocument(ctx, url, dest) {
			r.logger.Warn("datasheet download failed", "code", code, "lang", lang, "url", url)
		}
	}
}
