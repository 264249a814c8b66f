// Package export turns rendered calendar pages into PDF documents. The
// orchestration (sequencing, single-flight, timeouts) is separated from the
// concrete rasterizer and PDF assembler behind small interfaces so it can be
// tested with fakes.
package export

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"gomical/internal/calendar"
	"gomical/internal/log"
)

var (
	// ErrBusy is returned when an export is already in progress. Exports are
	// single-flight; a concurrent request is ignored rather than queued.
	ErrBusy = errors.New("export: another export is in progress")
	// ErrTimeout is returned when an export exceeds its time ceiling.
	ErrTimeout = errors.New("export: timed out")
)

// PageCapturer renders the page at a URL to a page-sized image.
type PageCapturer interface {
	CapturePage(ctx context.Context, pageURL string) ([]byte, error)
}

// Assembler combines page images, one per page, into a single PDF document.
type Assembler interface {
	Assemble(pages [][]byte) ([]byte, error)
}

// Options configures an Exporter.
type Options struct {
	// BaseURL is the server's own address, e.g. "http://127.0.0.1:8765".
	// The print view is captured through it.
	BaseURL string
	// Dir is where finished PDF files are written.
	Dir string

	MonthTimeout time.Duration
	YearTimeout  time.Duration
}

// Exporter orchestrates calendar PDF exports.
type Exporter struct {
	capture  PageCapturer
	assemble Assembler
	opts     Options

	inFlight atomic.Bool
}

// New creates an Exporter.
func New(capture PageCapturer, assemble Assembler, opts Options) *Exporter {
	return &Exporter{capture: capture, assemble: assemble, opts: opts}
}

// Busy reports whether an export is currently running.
func (e *Exporter) Busy() bool {
	return e.inFlight.Load()
}

// ExportMonth captures the given month's print view and writes a single-page
// PDF. It returns the output path.
func (e *Exporter) ExportMonth(ctx context.Context, m calendar.Month) (string, error) {
	filename := fmt.Sprintf("gomi-calendar-%04d-%02d.pdf", m.Year, m.MonthNum)
	return e.run(ctx, e.opts.MonthTimeout, filename, []calendar.Month{m})
}

// ExportYear captures all twelve months of the given year in order and writes
// a twelve-page PDF, one page per month. It returns the output path.
func (e *Exporter) ExportYear(ctx context.Context, year int) (string, error) {
	months := make([]calendar.Month, 0, 12)
	for mo := 1; mo <= 12; mo++ {
		months = append(months, calendar.Month{Year: year, MonthNum: mo})
	}
	filename := fmt.Sprintf("gomi-calendar-%04d-12months.pdf", year)
	return e.run(ctx, e.opts.YearTimeout, filename, months)
}

func (e *Exporter) run(ctx context.Context, timeout time.Duration, filename string, months []calendar.Month) (string, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	// The flag is cleared on every exit path, including timeouts and panics
	// in the capture backend.
	defer e.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	pages := make([][]byte, 0, len(months))
	for _, m := range months {
		png, err := e.capture.CapturePage(ctx, e.printURL(m))
		if err != nil {
			return "", e.wrapErr(ctx, fmt.Errorf("export: capture %04d-%02d: %w", m.Year, m.MonthNum, err))
		}
		pages = append(pages, png)
	}

	doc, err := e.assemble.Assemble(pages)
	if err != nil {
		return "", e.wrapErr(ctx, fmt.Errorf("export: assemble pdf: %w", err))
	}

	if err := os.MkdirAll(e.opts.Dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create output dir: %w", err)
	}
	outPath := filepath.Join(e.opts.Dir, filename)
	if err := os.WriteFile(outPath, doc, 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", outPath, err)
	}

	log.Info("export finished",
		"file", outPath,
		"pages", len(pages),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return outPath, nil
}

func (e *Exporter) printURL(m calendar.Month) string {
	q := url.Values{}
	q.Set("year", fmt.Sprint(m.Year))
	q.Set("month", fmt.Sprint(m.MonthNum))
	return e.opts.BaseURL + "/print?" + q.Encode()
}

// wrapErr maps a deadline overrun to ErrTimeout so callers can show the
// user-facing timeout message.
func (e *Exporter) wrapErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
