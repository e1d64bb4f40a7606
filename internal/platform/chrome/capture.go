// Package chrome renders HTML in headless Chrome and captures it as PDF or JPEG.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

// A4 in inches.
const (
	a4ShortIn = 8.27
	a4LongIn  = 11.69
)

type Config struct {
	// Bin is the Chrome binary to launch. Empty lets the launcher find or download one.
	Bin string
	// ControlURL attaches to an already running Chrome instead of launching.
	ControlURL string
	Timeout    time.Duration
	NoSandbox  bool
}

// Capturer keeps one browser connection and opens a fresh page per capture.
type Capturer struct {
	log *logger.Logger
	cfg Config

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

var _ export.Capturer = (*Capturer)(nil)

func New(log *logger.Logger, cfg Config) *Capturer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &Capturer{log: log.With("service", "ChromeCapturer"), cfg: cfg}
}

func (c *Capturer) connect() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser != nil {
		return c.browser, nil
	}

	controlURL := strings.TrimSpace(c.cfg.ControlURL)
	if controlURL == "" {
		l := launcher.New().Headless(true)
		if c.cfg.Bin != "" {
			l = l.Bin(c.cfg.Bin)
		}
		if c.cfg.NoSandbox {
			l = l.NoSandbox(true)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		c.launcher = l
		controlURL = url
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		if c.launcher != nil {
			c.launcher.Cleanup()
			c.launcher = nil
		}
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	c.browser = b
	c.log.Info("chrome connected", "launched", c.launcher != nil)
	return b, nil
}

// open loads html into a new page sized to the capture width.
func (c *Capturer) open(ctx context.Context, html []byte, cfg export.CaptureConfig) (*rod.Page, error) {
	b, err := c.connect()
	if err != nil {
		return nil, err
	}
	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		c.reset()
		return nil, fmt.Errorf("create page: %w", err)
	}
	page = page.Context(ctx).Timeout(c.cfg.Timeout)

	width := cfg.WidthPx
	if width <= 0 {
		width = 1123
	}
	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            int(math.Round(float64(width) * a4ShortIn / a4LongIn)),
		DeviceScaleFactor: scale,
	}); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if err := page.SetDocumentContent(string(html)); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("wait load: %w", err)
	}
	return page, nil
}

// CapturePDF prints the page with CSS-driven page breaks, one logical page per sheet.
func (c *Capturer) CapturePDF(ctx context.Context, html []byte, cfg export.CaptureConfig) ([]byte, error) {
	page, err := c.open(ctx, html, cfg)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	w, h := a4ShortIn, a4LongIn
	zero := 0.0
	req := &proto.PagePrintToPDF{
		Landscape:         cfg.Landscape,
		PrintBackground:   true,
		PaperWidth:        &w,
		PaperHeight:       &h,
		MarginTop:         &zero,
		MarginBottom:      &zero,
		MarginLeft:        &zero,
		MarginRight:       &zero,
		PreferCSSPageSize: cfg.PageBreakMode == "css",
	}
	stream, err := page.PDF(req)
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	out, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	c.log.Debug("pdf captured", "bytes", len(out))
	return out, nil
}

// CaptureJPEG screenshots the element matched by selector.
func (c *Capturer) CaptureJPEG(ctx context.Context, html []byte, selector string, cfg export.CaptureConfig) ([]byte, error) {
	page, err := c.open(ctx, html, cfg)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	el, err := page.Element(selector)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}
	return el.Screenshot(proto.PageCaptureScreenshotFormatJpeg, jpegQuality(cfg.JPEGQuality))
}

// jpegQuality maps a 0..1 compression quality onto Chrome's 0..100 scale.
func jpegQuality(q float64) int {
	if q <= 0 || q > 1 {
		return 90
	}
	return int(math.Round(q * 100))
}

func (c *Capturer) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser != nil {
		_ = c.browser.Close()
		c.browser = nil
	}
}

// Close disconnects and stops a launched Chrome.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	if c.launcher != nil {
		c.launcher.Cleanup()
		c.launcher = nil
	}
	if err != nil {
		return errors.Join(errors.New("close chrome"), err)
	}
	return nil
}
