// Package identify builds and parses the payloads exchanged with the
// song-identification service. It performs no HTTP itself; callers own
// transport, retries, and endpoint selection.
package identify

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/soniclibs/aria/fingerprint"
)

// SignatureURIPrefix carries the encoded fingerprint inside the request.
const SignatureURIPrefix = "data:audio/vnd.shazam.sig;base64,"

// Request is the identification request document.
type Request struct {
	Geolocation Geolocation    `json:"geolocation"`
	Signature   SignatureField `json:"signature"`
	Timestamp   int64          `json:"timestamp"`
	Timezone    string         `json:"timezone"`
}

// Geolocation is a coarse location hint. The service accepts a fixed
// placeholder; no real location is collected.
type Geolocation struct {
	Altitude  float64 `json:"altitude"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SignatureField wraps the encoded fingerprint for transport.
type SignatureField struct {
	SampleMS  float64 `json:"samplems"`
	Timestamp int64   `json:"timestamp"`
	URI       string  `json:"uri"`
}

// NewRequest builds an identification request from a signature, stamped
// with the current time.
func NewRequest(sig *fingerprint.Signature) *Request {
	now := time.Now().UnixMilli()
	encoded := base64.StdEncoding.EncodeToString(sig.Encode())

	return &Request{
		Geolocation: Geolocation{
			Altitude:  300,
			Latitude:  45,
			Longitude: 2,
		},
		Signature: SignatureField{
			SampleMS:  float64(sig.SampleRate),
			Timestamp: now,
			URI:       SignatureURIPrefix + encoded,
		},
		Timestamp: now,
		Timezone:  "Europe/Berlin",
	}
}

// MarshalBody serializes the request to the JSON body expected by the
// service.
func (r *Request) MarshalBody() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeSignatureURI recovers the fingerprint embedded in a request URI.
func DecodeSignatureURI(uri string) (*fingerprint.Signature, error) {
	if len(uri) < len(SignatureURIPrefix) || uri[:len(SignatureURIPrefix)] != SignatureURIPrefix {
		return nil, fmt.Errorf("identify: uri does not carry a signature")
	}

	raw, err := base64.StdEncoding.DecodeString(uri[len(SignatureURIPrefix):])
	if err != nil {
		return nil, fmt.Errorf("identify: decoding signature uri: %w", err)
	}
	return fingerprint.Decode(raw)
}
