package gateway

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

var ErrEmptyImage = errors.New("image has zero dimensions")

// Loader fetches and decodes bitmaps. Absolute http(s) URLs are downloaded,
// paths starting with "/" are resolved against the API root when one is set,
// anything else is opened from the local filesystem.
type Loader struct {
	baseURL    string
	httpClient *http.Client
}

// NewLoader creates a Loader. baseURL may be empty.
func NewLoader(baseURL string, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Loader{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Load decodes the image at location.
func (l *Loader) Load(ctx context.Context, location string) (image.Image, error) {
	img, err := l.load(ctx, location)
	if err != nil {
		return nil, err
	}

	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("load %s: %w", location, ErrEmptyImage)
	}

	return img, nil
}

func (l *Loader) load(ctx context.Context, location string) (image.Image, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return l.fetch(ctx, location)
	case strings.HasPrefix(location, "/") && l.baseURL != "":
		return l.fetch(ctx, l.baseURL+location)
	}

	img, err := imaging.Open(location, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", location, err)
	}

	return img, nil
}

func (l *Loader) fetch(ctx context.Context, u string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image %s: status %d", u, resp.StatusCode)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", u, err)
	}

	return img, nil
}
