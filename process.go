package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// UpstreamResponse is a completed HTTP exchange, whatever its status code.
type UpstreamResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Upstream posts chat requests to the configured completion endpoint.
type Upstream struct {
	endpoint string
	client   *http.Client
}

// NewUpstream builds the client for config. A nil base uses http.DefaultTransport.
func NewUpstream(config *Config, base http.RoundTripper) *Upstream {
	return &Upstream{
		endpoint: config.UpstreamURL.String(),
		client: &http.Client{
			Timeout: config.RequestTimeout(),
			Transport: &bearerTransport{
				Base:  base,
				Token: config.APIKey,
			},
		},
	}
}

// Forward sends body verbatim in a single attempt. A non-nil error always
// means the exchange did not complete; upstream error statuses are returned
// as a normal response.
func (u *Upstream) Forward(ctx context.Context, body []byte) (*UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &UpstreamResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
