// Package network provides pre-configured HTTP clients for provider communication.
package network

import (
	"net/http"
	"time"

	"github.com/bilisan-cli/bilisan/key"
	"github.com/spf13/viper"
)

// Client is the default HTTP client shared across the application.
// It is configured with increased concurrency limits and timeouts tailored for scraping workflows.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

// newTransport initializes a tuned http.Transport with optimized pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}

// Pick returns the client matching the active configuration: the spoofed
// Chrome-fingerprint client when network.tls_spoof is set, the default
// client otherwise. The per-request timeout from network.timeout applies
// to both.
func Pick() *http.Client {
	timeout := time.Duration(viper.GetInt(key.NetworkTimeout)) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}

	if viper.GetBool(key.NetworkTLSSpoof) {
		c := *SpoofedClient
		c.Timeout = timeout
		return &c
	}

	c := *Client
	c.Timeout = timeout
	return &c
}
