package vkbot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	log "github.com/sirupsen/logrus"

	"media-approve/internal/chat"
)

const defaultAPIURL = "https://myteam.mail.ru/bot/v1"

// fileLinkRe matches file links VK Teams puts into the text of quoted messages.
var fileLinkRe = regexp.MustCompile(`https?://(?:files\.icq\.net|[\w.-]*myteam[\w.-]*)/get/([\w-]+)`)

type FileInfo struct {
	Type     string `json:"type"`
	Size     int    `json:"size"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// FileResolver turns file IDs into download links. Links are temporary, so
// they are resolved when a message arrives.
type FileResolver struct {
	apiURL string
	token  string
	client *http.Client
}

func NewFileResolver(apiURL, token string) *FileResolver {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = 15 * time.Second
	return &FileResolver{apiURL: strings.TrimRight(apiURL, "/"), token: token, client: client}
}

func (r *FileResolver) Info(ctx context.Context, fileID string) (*FileInfo, error) {
	q := url.Values{}
	q.Set("token", r.token)
	q.Set("fileId", fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiURL+"/files/getInfo?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("file info request: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.Warnf("closing body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file info: status %d", resp.StatusCode)
	}
	var info FileInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode file info: %w", err)
	}
	if info.URL == "" {
		return nil, fmt.Errorf("file info: no url for %s", fileID)
	}
	return &info, nil
}

func (r *FileResolver) Resolve(ctx context.Context, fileID string) (chat.Attachment, error) {
	info, err := r.Info(ctx, fileID)
	if err != nil {
		return chat.Attachment{}, err
	}
	name := info.Filename
	if name == "" {
		name = fileID
	}
	return chat.Attachment{URL: info.URL, Filename: name, ContentType: contentType(info.Type, name)}, nil
}

// contentType prefers the extension and falls back to the coarse type VK reports.
func contentType(kind, filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); ct != "" {
		if i := strings.Index(ct, ";"); i >= 0 {
			ct = ct[:i]
		}
		return ct
	}
	switch kind {
	case "image", "video", "audio":
		ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
		if ext == "" {
			ext = "unknown"
		}
		return kind + "/" + ext
	}
	return "application/octet-stream"
}

// FileIDs extracts file IDs from links in text, in order and without repeats.
func FileIDs(text string) []string {
	var ids []string
	seen := map[string]bool{}
	for _, m := range fileLinkRe.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	}
	return ids
}
