// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive downloads the upstream fixture archive and extracts fixtures from it.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bartekus/testman/internal/harnesserr"
)

// Fetcher retrieves an archive as bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches archives with a plain GET.
type HTTPFetcher struct {
	client *http.Client
	log    *slog.Logger
}

// NewHTTPFetcher returns a fetcher whose requests give up after timeout.
// A zero timeout means no limit.
func NewHTTPFetcher(timeout time.Duration, log *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Fetch downloads url and returns the whole body.
// Any transport failure or non-2xx status is an ErrNetwork.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, harnesserr.Network("GET "+url, err)
	}

	start := time.Now()
	res, err := f.client.Do(req)
	if err != nil {
		return nil, harnesserr.Network("GET "+url, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, harnesserr.Network(fmt.Sprintf("GET %s: got status %d", url, res.StatusCode), nil)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, harnesserr.Network("reading body of "+url, err)
	}
	f.log.Debug("archive fetched", "url", url, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}
