package raindrop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/alnah/raindrip/internal/apierr"
)

// maxDownloadSize caps image downloads.
const maxDownloadSize = 20 * 1024 * 1024

// CheckWayback returns the closest Wayback Machine snapshot of target.
// Any failure is reported as no snapshot.
func (c *Client) CheckWayback(ctx context.Context, target string) (string, bool) {
	u, err := url.Parse(c.waybackURL)
	if err != nil {
		c.logger.Debug("wayback lookup failed", "error", err)
		return "", false
	}
	q := u.Query()
	q.Set("url", target)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		c.logger.Debug("wayback lookup failed", "error", err)
		return "", false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("wayback lookup failed", "error", err)
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("wayback lookup failed", "status", resp.StatusCode)
		return "", false
	}

	var body struct {
		ArchivedSnapshots struct {
			Closest struct {
				URL string `json:"url"`
			} `json:"closest"`
		} `json:"archived_snapshots"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDownloadSize)).Decode(&body); err != nil {
		c.logger.Debug("wayback lookup failed", "error", err)
		return "", false
	}

	snapshot := body.ArchivedSnapshots.Closest.URL
	return snapshot, snapshot != ""
}

// Download fetches source into w with a single attempt.
// It returns the number of bytes written. Bodies larger than 20MB fail
// rather than being cut short, so w must be discarded on error.
func (c *Client) Download(ctx context.Context, source string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, apierr.Network(err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return 0, apierr.Server(resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return 0, apierr.Client(resp.StatusCode, "download failed: "+http.StatusText(resp.StatusCode))
	}

	n, err := io.Copy(w, io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return n, apierr.Network(err)
	}
	if n > maxDownloadSize {
		return n, apierr.Client(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("download exceeds %d bytes", maxDownloadSize))
	}
	return n, nil
}
