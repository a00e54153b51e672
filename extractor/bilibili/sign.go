package bilibili

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Signer computes the authentication signature the legacy playurl API
// expects. The keys are injected at construction; they default to the
// public player constants via configuration.
type Signer struct {
	AppKey  string
	SignKey string
}

// Param is one query parameter of a signed request.
type Param struct {
	Key   string
	Value string
}

// Query joins parameters into the canonical query string in caller order.
// The endpoint validates the signature over the exact byte sequence, so the
// ordering is part of the protocol contract and is never sorted.
func Query(params ...Param) string {
	pairs := make([]string, len(params))
	for idx, p := range params {
		pairs[idx] = p.Key + "=" + p.Value
	}
	return strings.Join(pairs, "&")
}

// Sign returns the hex-encoded md5 digest of the canonical payload with the
// private key appended, as the endpoint requires.
func (s Signer) Sign(payload string) string {
	sum := md5.Sum([]byte(payload + s.SignKey))
	return hex.EncodeToString(sum[:])
}

// SignedQuery returns the payload with its signature parameter appended.
func (s Signer) SignedQuery(payload string) string {
	return payload + "&sign=" + s.Sign(payload)
}
