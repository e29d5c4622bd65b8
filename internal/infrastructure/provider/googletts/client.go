// Package googletts synthesizes MP3 audio with the Google Cloud
// Text-to-Speech REST API.
package googletts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
)

const (
	defaultBaseURL     = "https://texttospeech.googleapis.com/v1"
	synthesizeEndpoint = "/text:synthesize"
	defaultTimeout     = 30 * time.Second

	apiKeyHeader  = "x-goog-api-key"
	providerName  = "google-tts"
	audioEncoding = "MP3"
	maxErrorBody  = 64 << 10
)

// Client implements ports.Synthesizer.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing or proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout sets the per-request timeout. It applies on top of any client
// given with WithHTTPClient, without mutating that client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.client
		hc.Timeout = c.timeout
		c.client = &hc
	}
	return c
}

type synthesizeRequest struct {
	Input       input       `json:"input"`
	Voice       voice       `json:"voice"`
	AudioConfig audioConfig `json:"audioConfig"`
}

// Exactly one of Text or SSML is set.
type input struct {
	Text string `json:"text,omitempty"`
	SSML string `json:"ssml,omitempty"`
}

type voice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type audioConfig struct {
	AudioEncoding string   `json:"audioEncoding"`
	SpeakingRate  *float64 `json:"speakingRate,omitempty"`
	Pitch         *float64 `json:"pitch,omitempty"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

func buildRequest(req ports.SynthesisRequest) synthesizeRequest {
	body := synthesizeRequest{
		Voice: voice{
			LanguageCode: domain.LanguageCode(req.Voice),
			Name:         req.Voice,
		},
		AudioConfig: audioConfig{AudioEncoding: audioEncoding},
	}
	if req.Mode == domain.InputSSML {
		body.Input.SSML = req.Content
	} else {
		body.Input.Text = req.Content
	}
	if req.Prosody != nil {
		rate, pitch := req.Prosody.Rate, req.Prosody.Pitch
		body.AudioConfig.SpeakingRate = &rate
		body.AudioConfig.Pitch = &pitch
	}
	return body
}

// Synthesize returns the decoded MP3 bytes. A non-2xx answer yields a
// *domain.UpstreamError carrying the provider's body; transport and decoding
// failures wrap domain.ErrInternal.
func (c *Client) Synthesize(ctx context.Context, req ports.SynthesisRequest) ([]byte, error) {
	bodyBytes, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("google tts: marshal request: %w", domain.ErrInternal)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+synthesizeEndpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("google tts: create request: %v: %w", err, domain.ErrInternal)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// The key travels only as a header so transport errors, which print
	// the URL, never carry it.
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("google tts: request failed: %v: %w", err, domain.ErrInternal)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.UpstreamError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	var out synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("google tts: decode response: %v: %w", err, domain.ErrInternal)
	}
	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("google tts: decode audio: %v: %w", err, domain.ErrInternal)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("google tts: empty audio: %w", domain.ErrInternal)
	}
	return audio, nil
}

var _ ports.Synthesizer = (*Client)(nil)
