package pvr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/pvrtools/tvmeta/internal/grabber"
)

// recordingFields are the entry fields the lookup needs.
const recordingFields = "uuid,image,fanart_image,title,copyright_year,episode_disp,uri"

// Client wraps HTTP calls to the recording system's management API.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	log        hclog.Logger
}

// NewClient creates a management API client for the given base URL.
func NewClient(baseURL, username, password string, log hclog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

type nodeResponse struct {
	Entries []Recording `json:"entries"`
}

// Recording fetches the DVR entry with the given uuid. Exactly one entry is
// expected for a valid uuid.
func (c *Client) Recording(ctx context.Context, uuid string) (*Recording, error) {
	params := url.Values{}
	params.Set("uuid", uuid)
	params.Set("list", recordingFields)

	var resp nodeResponse
	if err := c.get(ctx, "/api/idnode/load?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Entries) != 1 {
		return nil, fmt.Errorf("recording %s: %w", uuid, grabber.ErrNotFound)
	}

	rec := resp.Entries[0]
	return &rec, nil
}

// SetArtwork writes resolved artwork URLs back to the recording. Fields the
// lookup did not resolve are omitted from the payload entirely.
func (c *Client) SetArtwork(ctx context.Context, uuid string, art grabber.Artwork) error {
	node := map[string]string{"uuid": uuid}
	if art.Poster != "" {
		node["image"] = art.Poster
	}
	if art.Fanart != "" {
		node["fanart_image"] = art.Fanart
	}

	payload, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	form := url.Values{}
	form.Set("node", string(payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/idnode/save", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	c.log.Debug("artwork stored", "uuid", uuid, "image", node["image"], "fanart_image", node["fanart_image"])
	return nil
}

// get performs an authenticated GET, retrying transient failures. Reads are
// idempotent; writes are not retried.
func (c *Client) get(ctx context.Context, path string, result any) error {
	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			c.authorize(req)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return retry.Unrecoverable(fmt.Errorf("authentication failed (%d)", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("server error %d: %s", resp.StatusCode, string(b))
			}

			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	return json.Unmarshal(body, result)
}

func (c *Client) authorize(req *http.Request) {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}
