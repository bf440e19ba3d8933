// Package gallery mirrors approved media into a Lychee photo gallery.
package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	log "github.com/sirupsen/logrus"

	"media-approve/internal/metrics"
	"media-approve/pkg/botErrors"
)

const (
	importPath         = "/Session::import"
	addPath            = "/Photo::add"
	maxDescription     = 1000
	defaultContentType = "application/octet-stream"
)

type Config struct {
	Enabled         bool
	BaseURL         string
	APIKey          string
	ImportTimeout   time.Duration
	DownloadTimeout time.Duration
	UploadTimeout   time.Duration
}

// Item is one attachment to mirror.
type Item struct {
	URL          string
	Filename     string
	ContentType  string
	AlbumID      string
	TicketNumber string
	AuthorName   string
}

type Result struct {
	OK     bool
	Detail string
	Err    error
}

// DownloadError is a failed fetch of the source bytes.
type DownloadError struct {
	Status int
	Empty  bool
}

func (e *DownloadError) Error() string {
	if e.Empty {
		return "download error (empty)"
	}
	return fmt.Sprintf("download error (%d)", e.Status)
}

// UploadAPIError is a non-success answer from Photo::add.
type UploadAPIError struct {
	Status int
	Body   string
}

func (e *UploadAPIError) Error() string {
	return fmt.Sprintf("upload api error (%d)", e.Status)
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ImportTimeout <= 0 {
		cfg.ImportTimeout = 60 * time.Second
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 60 * time.Second
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 120 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Transport: cleanhttp.DefaultPooledTransport()},
	}
}

// Enabled reports the global mirroring switch.
func (c *Client) Enabled() bool {
	return c.cfg.Enabled
}

// Upload tries a remote import first and falls back to download then Photo::add.
// It never panics on remote failures; every outcome is in the Result.
func (c *Client) Upload(ctx context.Context, item Item) Result {
	logger := log.WithFields(log.Fields{"file": item.Filename, "album": item.AlbumID})

	if !c.cfg.Enabled {
		return Result{Detail: "Gallery upload skipped (disabled)", Err: botErrors.ErrMirroringDisabled}
	}
	if c.cfg.BaseURL == "" || c.cfg.APIKey == "" || item.AlbumID == "" {
		logger.Warn("gallery config incomplete, skipping upload")
		return Result{Detail: "Gallery config missing", Err: botErrors.ErrGalleryConfig}
	}

	started := time.Now()
	defer func() { metrics.UploadDuration.Observe(time.Since(started).Seconds()) }()

	status, err := c.importURL(ctx, item)
	if err == nil {
		metrics.GalleryPhases.WithLabelValues("import", "ok").Inc()
		logger.WithField("status", status).Info("imported via url")
		return Result{OK: true, Detail: "Imported via URL"}
	}
	metrics.GalleryPhases.WithLabelValues("import", "fail").Inc()
	logger.WithError(err).Warn("import failed, falling back to download")

	data, err := c.download(ctx, item.URL)
	if err != nil {
		metrics.GalleryPhases.WithLabelValues("download", "fail").Inc()
		logger.WithError(err).Error("download failed")
		return Result{Detail: describe(err), Err: err}
	}
	metrics.GalleryPhases.WithLabelValues("download", "ok").Inc()
	logger.WithField("bytes", len(data)).Info("downloaded, uploading manually")

	photoID, err := c.addPhoto(ctx, item, data)
	if err != nil {
		metrics.GalleryPhases.WithLabelValues("upload", "fail").Inc()
		logger.WithError(err).Error("manual upload failed")
		return Result{Detail: describe(err), Err: err}
	}
	metrics.GalleryPhases.WithLabelValues("upload", "ok").Inc()
	logger.WithField("photo_id", photoID).Info("uploaded manually")
	return Result{OK: true, Detail: fmt.Sprintf("Uploaded manually (ID: %s)", photoID)}
}

func (c *Client) importURL(ctx context.Context, item Item) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ImportTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"url": item.URL, "albumID": item.AlbumID})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+importPath, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, classify(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	if !success(resp.StatusCode) {
		return resp.StatusCode, fmt.Errorf("import status %d: %s", resp.StatusCode, body)
	}
	return resp.StatusCode, nil
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", botErrors.ErrGalleryConnection, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &DownloadError{Status: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}
	if len(data) == 0 {
		return nil, &DownloadError{Empty: true}
	}
	return data, nil
}

func (c *Client) addPhoto(ctx context.Context, item Item, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.UploadTimeout)
	defer cancel()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := item.ContentType
	if !strings.Contains(contentType, "/") {
		contentType = defaultContentType
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, item.Filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.WriteField("albumID", item.AlbumID); err != nil {
		return "", err
	}
	if err := w.WriteField("description", Description(item)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+addPath, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if !success(resp.StatusCode) {
		return "", &UploadAPIError{Status: resp.StatusCode, Body: truncate(string(body), 500)}
	}

	var created struct {
		ID json.RawMessage `json:"id"`
	}
	photoID := "N/A"
	if json.Unmarshal(body, &created) == nil && len(created.ID) > 0 {
		photoID = strings.Trim(string(created.ID), `"`)
	}
	return photoID, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
}

// Description is the text attached to manually uploaded photos.
func Description(item Item) string {
	return truncate(fmt.Sprintf("Ticket: %s\nAuthor: %s\nFilename: %s", item.TicketNumber, item.AuthorName, item.Filename), maxDescription)
}

func success(status int) bool {
	return status == http.StatusOK || status == http.StatusCreated || status == http.StatusNoContent
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", botErrors.ErrGalleryTimeout, err)
	}
	return fmt.Errorf("%w: %v", botErrors.ErrGalleryConnection, err)
}

func describe(err error) string {
	var dl *DownloadError
	var up *UploadAPIError
	switch {
	case errors.As(err, &dl):
		if dl.Empty {
			return "Download Error (Empty)"
		}
		return fmt.Sprintf("Download Error (%d)", dl.Status)
	case errors.As(err, &up):
		return fmt.Sprintf("Upload API Error (%d)", up.Status)
	case errors.Is(err, botErrors.ErrGalleryTimeout):
		return "Gallery Timeout"
	case errors.Is(err, botErrors.ErrGalleryConnection):
		return "Gallery Connection Error"
	}
	return "Gallery Upload Error"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
