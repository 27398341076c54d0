package main

import (
	"fmt"
	"net/http"
)

// bearerTransport wraps a RoundTripper to add the Authorization header.
type bearerTransport struct {
	Base  http.RoundTripper
	Token string
}

// RoundTrip sets the bearer token on a clone of req.
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.Token))
	return t.base().RoundTrip(out)
}

func (t *bearerTransport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}
