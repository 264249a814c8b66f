package export

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Default viewport for the A4-landscape print view.
const (
	DefaultCaptureWidth  = 1400
	DefaultCaptureHeight = 990
)

// ChromeCapturer rasterizes a page with a headless Chromium instance.
//
// The print view signals that data is loaded and layout is settled by setting
// data-ready="true" on its root element; the capture waits for that marker
// plus a short paint delay before taking the screenshot.
type ChromeCapturer struct {
	Width  int
	Height int
}

// NewChromeCapturer returns a ChromeCapturer with the given viewport.
// Non-positive dimensions fall back to the defaults.
func NewChromeCapturer(width, height int) *ChromeCapturer {
	if width <= 0 {
		width = DefaultCaptureWidth
	}
	if height <= 0 {
		height = DefaultCaptureHeight
	}
	return &ChromeCapturer{Width: width, Height: height}
}

// CapturePage navigates to pageURL and returns a full-page PNG screenshot.
func (c *ChromeCapturer) CapturePage(ctx context.Context, pageURL string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(c.Width), int64(c.Height)),
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		// Allow final paints after the ready marker appears.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("chromedp run: %w", err)
	}
	return png, nil
}
