package papertrade

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// contains http utils to fetch price documents from remote services

// FetchJSONPrices GETs a JSON price document from addr. See NewJSONPrices
// for pathTemplate and currency. A nil client means http.DefaultClient.
func FetchJSONPrices(ctx context.Context, client *http.Client, addr, pathTemplate, currency string) (*JSONPrices, error) {
	content, err := wget(ctx, client, addr)
	if err != nil {
		return nil, err
	}
	p, err := NewJSONPrices(bytes.NewReader(content), pathTemplate, currency)
	if err != nil {
		return nil, fmt.Errorf("in price document %q: %w", addr, err)
	}
	return p, nil
}

// wget performs an HTTP GET request and returns the body of a 2xx response.
func wget(ctx context.Context, client *http.Client, addr string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: price url %q: %v", ErrInvalidArgument, addr, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	logrus.WithFields(logrus.Fields{
		"method": req.Method,
		"host":   req.URL.Host,
		"path":   req.URL.Path,
		"status": resp.StatusCode,
	}).Debug("price document fetched")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
