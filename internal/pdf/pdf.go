// Package pdf prints the résumé's print view to PDF with headless Chrome.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ErrChromeMissing is returned when no Chrome or Chromium binary is found.
var ErrChromeMissing = errors.New("pdf: chrome/chromium not installed")

var chromeCandidates = []string{
	"chromium-browser",
	"chromium",
	"google-chrome",
	"google-chrome-stable",
	"headless-shell",
}

// Exporter renders URLs to PDF.
type Exporter struct {
	chromePath string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewExporter returns an Exporter. An empty chromePath searches PATH for a
// known browser binary at export time.
func NewExporter(chromePath string, timeout time.Duration, logger *zap.Logger) *Exporter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		chromePath: chromePath,
		timeout:    timeout,
		logger:     logger.With(zap.String("component", "pdf")),
	}
}

// LookupChrome finds the browser binary to drive.
func (e *Exporter) LookupChrome() (string, error) {
	if e.chromePath != "" {
		p, err := exec.LookPath(e.chromePath)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrChromeMissing, e.chromePath)
		}
		return p, nil
	}
	for _, name := range chromeCandidates {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", ErrChromeMissing
}

// Export loads url and prints it on A4 with backgrounds, honoring the page's
// @page rules.
func (e *Exporter) Export(ctx context.Context, url string) ([]byte, error) {
	chrome, err := e.LookupChrome()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chrome),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	start := time.Now()
	var data []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			data, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27). // A4
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome pdf generation failed: %w", err)
	}

	e.logger.Info("pdf exported",
		zap.String("url", url),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)))
	return data, nil
}

// Filename turns a person's name into "<name>-resume.pdf", keeping ASCII
// letters, digits, '-' and '_' and mapping spaces to '-'.
func Filename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	base := b.String()
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "document"
	}
	return base + "-resume.pdf"
}
