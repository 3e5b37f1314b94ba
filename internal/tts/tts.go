// Package tts synthesizes speech through ElevenLabs with round-robin key
// rotation. Keys that come back unauthorized or throttled are skipped for the
// rest of the attempt loop.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	modelID        = "eleven_multilingual_v2"
)

// ErrNoKeys is returned when no API key is configured.
var ErrNoKeys = errors.New("tts: no api keys configured")

// ErrKeysExhausted is returned when every key failed with a retryable status.
var ErrKeysExhausted = errors.New("tts: all api keys exhausted")

// UpstreamError carries a non-retryable provider failure.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tts: upstream status %d: %s", e.Status, e.Body)
}

// Rotation hands out API keys round-robin. It is safe for concurrent use.
type Rotation struct {
	mu   sync.Mutex
	keys []string
	next int
}

// NewRotation constructs a Rotation over the given keys.
func NewRotation(keys []string) *Rotation {
	return &Rotation{keys: keys}
}

// Len returns the number of configured keys.
func (r *Rotation) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Next returns the next key in rotation order.
func (r *Rotation) Next() (string, bool) {
	if r == nil || len(r.keys) == 0 {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.keys[r.next]
	r.next = (r.next + 1) % len(r.keys)
	return key, true
}

// Client synthesizes speech audio.
type Client struct {
	httpClient *http.Client
	rotation   *Rotation
	baseURL    string
}

// NewClient constructs a Client. A nil httpClient gets a 30 second timeout
// default.
func NewClient(rotation *Rotation, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{httpClient: httpClient, rotation: rotation, baseURL: defaultBaseURL}
}

// Synthesize renders text as MPEG audio with the given voice. Keys failing
// with 401 or 429 are skipped; any other upstream failure is returned as an
// UpstreamError.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	total := c.rotation.Len()
	if total == 0 {
		return nil, ErrNoKeys
	}

	for attempt := 0; attempt < total; attempt++ {
		key, ok := c.rotation.Next()
		if !ok {
			break
		}

		audio, errTry := c.tryKey(ctx, key, text, voiceID)
		if errTry == nil {
			return audio, nil
		}

		var upstream *UpstreamError
		if errors.As(errTry, &upstream) {
			if upstream.Status == http.StatusUnauthorized || upstream.Status == http.StatusTooManyRequests {
				log.WithField("status", upstream.Status).Warn("tts key rejected, rotating")
				continue
			}
			return nil, errTry
		}
		log.WithError(errTry).Warn("tts request failed, rotating")
	}
	return nil, ErrKeysExhausted
}

func (c *Client) tryKey(ctx context.Context, apiKey, text, voiceID string) ([]byte, error) {
	payload, _ := json.Marshal(map[string]any{
		"text":     text,
		"model_id": modelID,
		"voice_settings": map[string]any{
			"stability":         0.5,
			"similarity_boost":  0.8,
			"style":             0.0,
			"use_speaker_boost": true,
		},
	})

	url := fmt.Sprintf("%s/%s/stream", c.baseURL, voiceID)
	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if errReq != nil {
		return nil, errReq
	}
	req.Header.Set("xi-api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return nil, errDo
	}
	defer func() { _ = resp.Body.Close() }()

	body, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return nil, errRead
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
