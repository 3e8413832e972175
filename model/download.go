package model

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Download defaults. The retry count and per-attempt timeout are deliberately
// small: the full profile is a few hundred kilobytes and a stuck proxy should
// fail fast rather than hang the first detect call.
const (
	// DefaultRetryMax is the number of retries after the first attempt.
	DefaultRetryMax = 2

	// DefaultDownloadTimeout bounds a single download attempt.
	DefaultDownloadTimeout = 7 * time.Second

	// maxBackoff caps the sleep between attempts.
	maxBackoff = 5 * time.Second
)

var logger = logrus.New()

// Downloader fetches model artifacts over HTTP(S) with bounded retries and an
// optional proxy. It is safe for concurrent use.
type Downloader struct {
	client   *http.Client
	retryMax int
}

// NewDownloader creates a downloader. proxy may be empty; retryMax < 0 and
// timeout <= 0 fall back to the defaults.
func NewDownloader(proxy string, retryMax int, timeout time.Duration) (*Downloader, error) {
	if retryMax < 0 {
		retryMax = DefaultRetryMax
	}
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return &Downloader{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		retryMax: retryMax,
	}, nil
}

// Fetch downloads rawURL into dest. If dest already exists the call is a
// no-op. The artifact is written to a temporary sibling first and renamed
// into place, so a partial download never shadows the well-known filename.
func (d *Downloader) Fetch(rawURL string, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		logger.Infof("Model already exists at %s, skipping download", dest)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	tmp := dest + "." + uuid.NewString() + ".tmp"
	var lastErr error
	for attempt := 0; attempt <= d.retryMax; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			logger.WithError(lastErr).Warnf("Download attempt %d/%d failed, retrying in %s", attempt, d.retryMax+1, backoff)
			time.Sleep(backoff)
		}
		if err := d.fetchOnce(rawURL, tmp); err != nil {
			lastErr = err
			_ = os.Remove(tmp)
			continue
		}
		if err := os.Rename(tmp, dest); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
		}
		logger.Infof("Downloaded model from %s to %s", rawURL, dest)
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, lastErr)
}

func (d *Downloader) fetchOnce(rawURL string, path string) error {
	resp, err := d.client.Get(rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
