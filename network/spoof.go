// Package network provides pre-configured HTTP clients for provider communication.
//
// The spoofed client mimics Chrome's TLS Client Hello via refraction-networking/utls.
// Some provider CDNs reject the default Go TLS fingerprint outright; presenting a
// browser fingerprint restores access without touching request semantics.
//
// Protocol negotiation: HTTP/2 is attempted first (preferred by modern CDNs).
// If the handshake fails or the server only speaks HTTP/1.1, the round trip
// transparently falls back to an H1 transport with forced protocol advertisement.
package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const dialTimeout = 30 * time.Second

// SpoofedClient routes requests through the Chrome-fingerprint transport.
var SpoofedClient = &http.Client{
	Timeout:   time.Minute,
	Transport: &spoofTransport{},
}

// spoofTransport tries the H2 uTLS transport and falls back to H1 on handshake failure.
type spoofTransport struct{}

func (spoofTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := getH2Transport().RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, bodyErr
		}
		retry.Body = body
	}
	return h1Transport.RoundTrip(retry)
}

// h2Transport is a shared HTTP/2 transport for servers that negotiate h2.
var (
	h2Transport     *http2.Transport
	h2TransportOnce sync.Once
)

func getH2Transport() *http2.Transport {
	h2TransportOnce.Do(func() {
		h2Transport = &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialTLS(ctx, network, addr, nil)
			},
		}
	})
	return h2Transport
}

// h1Transport is a shared HTTP/1.1 transport for servers that refuse h2.
var h1Transport = &http.Transport{
	DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialTLS(ctx, network, addr, []string{"http/1.1"})
	},
}

// dialTLS creates a TLS connection mimicking Chrome 120's fingerprint.
// When nextProtos is nil both h2 and http/1.1 are advertised, matching natural Chrome behavior.
func dialTLS(ctx context.Context, network, addr string, nextProtos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: nextProtos,
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
