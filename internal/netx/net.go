// Package netx holds plain HTTP helpers for presigned object storage URLs.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxDownload bounds the size of a fetched object.
const maxDownload = 64 << 20

// DownloadPresignedURL fetches the object behind a presigned GET URL.
func DownloadPresignedURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxDownload {
		return nil, fmt.Errorf("download failed: object larger than %d bytes", maxDownload)
	}
	return b, nil
}
