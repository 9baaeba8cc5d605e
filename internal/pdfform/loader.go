package pdfform

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/servetrack/assets"
	"github.com/jjenkins/servetrack/internal/affidavit"
)

const defaultTimeout = 30 * time.Second

// LoadError is a failure to fetch, read or parse the template at Location
type LoadError struct {
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load template from %s: %v", e.Location, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// TemplateInfo describes one loaded copy of the template
type TemplateInfo struct {
	Location string
	Size     int
	Checksum string
}

// Loader reads templates from disk or over HTTP. It keeps no cache: every call
// reads the template again.
type Loader struct {
	client *http.Client
	logger *zap.Logger
}

// NewLoader creates a Loader; a zero timeout uses the default
func NewLoader(timeout time.Duration, logger *zap.Logger) *Loader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch returns the raw template bytes. http(s) locations are fetched with a
// single GET, assets.AffidavitTemplateLocation is the bundled template and
// anything else is a file path.
func (l *Loader) Fetch(ctx context.Context, location string) ([]byte, TemplateInfo, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case location == assets.AffidavitTemplateLocation:
		data = assets.AffidavitTemplate()
	case isURL(location):
		data, err = l.fetchURL(ctx, location)
	default:
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, TemplateInfo{}, &LoadError{Location: location, Err: err}
	}
	if len(data) == 0 {
		return nil, TemplateInfo{}, &LoadError{Location: location, Err: fmt.Errorf("template is empty")}
	}

	info := TemplateInfo{
		Location: location,
		Size:     len(data),
		Checksum: checksum(data),
	}
	l.logger.Debug("template fetched",
		zap.String("location", info.Location),
		zap.Int("size", info.Size),
		zap.String("checksum", info.Checksum))
	return data, info, nil
}

// Load fetches and parses the template at location
func (l *Loader) Load(ctx context.Context, location string) (*Document, error) {
	data, _, err := l.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	doc, err := Open(data)
	if err != nil {
		return nil, &LoadError{Location: location, Err: err}
	}
	return doc, nil
}

// Open implements affidavit.TemplateSource
func (l *Loader) Open(ctx context.Context, location string) (affidavit.Document, error) {
	doc, err := l.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Inspect loads the template at location and describes its fields
func (l *Loader) Inspect(ctx context.Context, location string) ([]FieldInfo, error) {
	doc, err := l.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	return doc.Describe(), nil
}

func (l *Loader) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func isURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// checksum computes the MD5 of the template, logged to tell template revisions apart
func checksum(content []byte) string {
	hash := md5.Sum(content)
	return hex.EncodeToString(hash[:])
}
