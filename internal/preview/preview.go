// Package preview talks to the external label renderer: given markup and
// physical dimensions it returns a rendered bitmap. Rendering itself is the
// collaborator's job; this side only frames the request and caches results.
package preview

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avikko/labelrun-go/internal/conf"
	"github.com/avikko/labelrun-go/internal/errors"
	"github.com/avikko/labelrun-go/internal/logging"
	gocache "github.com/patrickmn/go-cache"
)

// Renderer produces a bitmap for markup at the given physical size.
type Renderer interface {
	Render(ctx context.Context, markup string, widthIn, heightIn float64, dpmm int) ([]byte, error)
}

// HTTP renders through a Labelary-compatible endpoint.
type HTTP struct {
	endpoint string
	client   *http.Client
	cache    *gocache.Cache
	log      *slog.Logger
}

// NewHTTP builds the renderer client from configuration.
func NewHTTP(settings *conf.Settings) *HTTP {
	log := logging.ForService("preview")
	if log == nil {
		log = slog.Default()
	}
	ttl := settings.Preview.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &HTTP{
		endpoint: strings.TrimRight(settings.Preview.Endpoint, "/"),
		client:   &http.Client{Timeout: settings.Preview.Timeout},
		cache:    gocache.New(ttl, 2*ttl),
		log:      log,
	}
}

// Render posts the markup to the render endpoint and returns the bitmap
// bytes. Identical requests within the cache TTL are served from memory.
func (h *HTTP) Render(ctx context.Context, markup string, widthIn, heightIn float64, dpmm int) ([]byte, error) {
	framed := frameZPL(markup)
	key := cacheKey(framed, widthIn, heightIn, dpmm)
	if cached, ok := h.cache.Get(key); ok {
		return cached.([]byte), nil
	}

	url := fmt.Sprintf("%s/printers/%ddpmm/labels/%.1fx%.1f/0/", h.endpoint, dpmm, widthIn, heightIn)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(framed))
	if err != nil {
		return nil, errors.New(fmt.Errorf("building render request: %w", err)).
			Category(errors.CategoryPreviewRender).
			Build()
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "image/png")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.New(fmt.Errorf("render request failed: %w", err)).
			Category(errors.CategoryPreviewRender).
			Timing("render", time.Since(start)).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Newf("renderer returned %s: %s",
			resp.Status, strings.TrimSpace(string(body))).
			Category(errors.CategoryPreviewRender).
			Context("status", resp.StatusCode).
			Build()
	}

	bitmap, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(fmt.Errorf("reading rendered bitmap: %w", err)).
			Category(errors.CategoryPreviewRender).
			Build()
	}
	if len(bitmap) == 0 {
		return nil, errors.Newf("renderer returned an empty bitmap").
			Category(errors.CategoryPreviewRender).
			Build()
	}

	h.cache.Set(key, bitmap, gocache.DefaultExpiration)
	h.log.Debug("rendered preview", "bytes", len(bitmap), "elapsed", time.Since(start))
	return bitmap, nil
}

// frameZPL wraps bare ZPL fragments in a start/end format pair; the renderer
// rejects unframed jobs.
func frameZPL(markup string) string {
	framed := markup
	if !strings.HasPrefix(framed, "^XA") {
		framed = "^XA\n" + framed
	}
	if !strings.HasSuffix(framed, "^XZ") {
		framed += "\n^XZ"
	}
	return framed
}

func cacheKey(markup string, widthIn, heightIn float64, dpmm int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%.2f|%.2f|%d", markup, widthIn, heightIn, dpmm)))
	return fmt.Sprintf("%x", sum)
}
