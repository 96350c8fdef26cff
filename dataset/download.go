package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DownloadOptions configures a public dataset download.
type DownloadOptions struct {
	URL        string
	Dest       string
	MaxRetries int
	Timeout    time.Duration
}

// DownloadResult records what was fetched.
type DownloadResult struct {
	Path   string
	Bytes  int64
	SHA256 string
}

// Download fetches a dataset file over HTTP into Dest. The file is written to
// a temp path first and renamed once complete. Retries use linear backoff.
func Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if opts.Dest == "" {
		return nil, fmt.Errorf("dest is required")
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Minute
	}

	if err := os.MkdirAll(filepath.Dir(opts.Dest), 0o755); err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: opts.Timeout}
	var lastErr error
	for attempt := 0; attempt < opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		result, err := fetchOnce(ctx, client, opts.URL, opts.Dest)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("download %s failed after %d attempts: %w", opts.URL, opts.MaxRetries, lastErr)
}

func fetchOnce(ctx context.Context, client *http.Client, url, dest string) (*DownloadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp := dest + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return nil, err
	}

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(file, hasher), resp.Body)
	closeErr := file.Close()
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if closeErr != nil {
		os.Remove(tmp)
		return nil, closeErr
	}
	if written == 0 {
		os.Remove(tmp)
		return nil, fmt.Errorf("empty response body")
	}
	if err := os.Rename(tmp, dest); err != nil {
		return nil, err
	}

	return &DownloadResult{
		Path:   dest,
		Bytes:  written,
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}
