package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const exportTimeout = 60 * time.Second

var ErrElementNotFound = errors.New("element not found")

// PDFExporter prints rendered HTML to PDF with headless Chrome
type PDFExporter struct {
	ChromePath string // empty uses the browser found on PATH
	OutDir     string
	Log        *slog.Logger
}

func NewPDFExporter(chromePath, outDir string, logger *slog.Logger) *PDFExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExporter{ChromePath: chromePath, OutDir: outDir, Log: logger}
}

// createBrowserContext starts a headless browser tied to parent
func (e *PDFExporter) createBrowserContext(parent context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-extensions", true),
	)
	if e.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(e.ChromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancel2 := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		msg := fmt.Sprintf(format, v...)
		if strings.Contains(msg, "could not unmarshal event") {
			return
		}
		e.Log.Debug(msg, "component", "chromedp")
	}))

	return ctx, func() {
		cancel2()
		cancel()
	}
}

// Export loads html, checks that elementID exists and writes
// <OutDir>/<fileName>.pdf on A4 paper. It returns the written path.
func (e *PDFExporter) Export(ctx context.Context, html []byte, elementID, fileName string) (string, error) {
	if fileName == "" {
		return "", errors.New("file name is required")
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, exportTimeout)
	defer cancelTimeout()
	browserCtx, cancel := e.createBrowserContext(ctx)
	defer cancel()

	e.Log.Debug("starting pdf export", "element", elementID, "file", fileName)

	var found bool
	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.Evaluate(fmt.Sprintf("document.getElementById(%q) !== null", elementID), &found),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if !found {
				return fmt.Errorf("%w: %s", ErrElementNotFound, elementID)
			}
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		return "", fmt.Errorf("print pdf: %w", err)
	}

	if err := os.MkdirAll(e.OutDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(e.OutDir, fileName+".pdf")
	if err := os.WriteFile(path, pdf, 0644); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}

	e.Log.Info("pdf exported", "path", path, "bytes", len(pdf))
	return path, nil
}
