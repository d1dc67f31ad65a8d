package identify

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniclibs/aria/fingerprint"
)

func testSignature() *fingerprint.Signature {
	sig := &fingerprint.Signature{SampleRate: 16000, NumSamples: 64000}
	sig.PeaksByBand[1] = []fingerprint.FrequencyPeak{
		{Pass: 0, Magnitude: 6500, Bin: 8192},
		{Pass: 4, Magnitude: 6400, Bin: 8200},
	}
	return sig
}

func TestNewRequestEmbedsSignature(t *testing.T) {
	t.Parallel()

	sig := testSignature()
	req := NewRequest(sig)

	assert.Equal(t, float64(16000), req.Signature.SampleMS)
	assert.Equal(t, req.Timestamp, req.Signature.Timestamp)
	assert.NotZero(t, req.Timestamp)
	require.True(t, strings.HasPrefix(req.Signature.URI, SignatureURIPrefix))

	decoded, err := DecodeSignatureURI(req.Signature.URI)
	require.NoError(t, err)
	assert.Equal(t, sig, decoded)
}

func TestDecodeSignatureURIRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := DecodeSignatureURI("https://example.com/not-a-signature")
	assert.Error(t, err)

	_, err = DecodeSignatureURI(SignatureURIPrefix + "!!not base64!!")
	assert.Error(t, err)
}

func TestMarshalBodyShape(t *testing.T) {
	t.Parallel()

	body, err := NewRequest(testSignature()).MarshalBody()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))

	assert.Contains(t, doc, "geolocation")
	assert.Contains(t, doc, "signature")
	assert.Contains(t, doc, "timestamp")
	assert.Contains(t, doc, "timezone")

	sigField, ok := doc["signature"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, sigField, "samplems")
	assert.Contains(t, sigField, "uri")
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	body := `{
		"matches": [{"offset": 12.5, "time_skew": -0.001}],
		"track": {
			"title": "So What",
			"subtitle": "Miles Davis",
			"sections": [{
				"type": "SONG",
				"metadata": [{"title": "Album", "text": "Kind of Blue"}]
			}],
			"hub": {"actions": [{"name": "apple", "id": "1234"}]}
		}
	}`

	resp, err := ParseResponse([]byte(body))
	require.NoError(t, err)

	assert.True(t, resp.Matched())
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, 12.5, resp.Matches[0].Offset)

	require.NotNil(t, resp.Track)
	assert.Equal(t, "So What", resp.Track.Title)
	assert.Equal(t, "Miles Davis", resp.Track.Subtitle)
	require.Len(t, resp.Track.Sections, 1)
	assert.Equal(t, "Kind of Blue", resp.Track.Sections[0].Metadata[0].Text)
	assert.Equal(t, "1234", resp.Track.Hub.Actions[0].ID)
}

func TestParseResponseNoMatch(t *testing.T) {
	t.Parallel()

	resp, err := ParseResponse([]byte(`{"matches": [], "track": null}`))
	require.NoError(t, err)
	assert.False(t, resp.Matched())
}

func TestParseResponseRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := ParseResponse([]byte("not json"))
	assert.Error(t, err)
}

func TestRateLimiterSpacesGrants(t *testing.T) {
	t.Parallel()

	const interval = 20 * time.Millisecond
	limiter := NewRateLimiter(interval)

	var mu sync.Mutex
	var grants []time.Time

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, limiter.Acquire(context.Background()))
			mu.Lock()
			grants = append(grants, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, grants, 5)
	sort.Slice(grants, func(i, j int) bool { return grants[i].Before(grants[j]) })

	for i := 1; i < len(grants); i++ {
		spacing := grants[i].Sub(grants[i-1])
		assert.GreaterOrEqual(t, spacing, interval-2*time.Millisecond, "grants %d and %d too close", i-1, i)
	}
}

func TestRateLimiterFirstGrantImmediate(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(time.Hour)

	start := time.Now()
	require.NoError(t, limiter.Acquire(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateLimiterAcquireAbortsOnCancel(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(time.Hour)
	require.NoError(t, limiter.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
