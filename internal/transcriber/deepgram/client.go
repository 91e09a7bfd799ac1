// Package deepgram implements transcriber.Transcriber against the Deepgram
// prerecorded listen API.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcript"
)

var _ transcriber.Transcriber = (*Client)(nil)

const defaultBaseURL = "https://api.deepgram.com"

// Config configures the Deepgram client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Retries int
}

// Client calls the Deepgram listen endpoint.
type Client struct {
	cfg         Config
	client      *http.Client
	backoffBase time.Duration
}

// NewClient creates a Deepgram client. Request deadlines come from the caller's context.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Client{
		cfg:         cfg,
		client:      &http.Client{},
		backoffBase: time.Second,
	}
}

func (c *Client) Name() string { return "deepgram" }

// Transcribe posts the raw audio bytes and decodes the nested response.
func (c *Client) Transcribe(ctx context.Context, audio transcriber.Audio, opts transcriber.Options) (transcript.Response, error) {
	endpoint := c.cfg.BaseURL + "/v1/listen?" + c.query(opts).Encode()

	var result *transcript.DeepgramResponse
	err := transcriber.Retry(ctx, c.cfg.Retries, c.backoffBase, func() error {
		r, err := c.doTranscribe(ctx, endpoint, audio)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return transcript.Empty{Reason: err.Error()}, fmt.Errorf("deepgram transcribe: %w", err)
	}
	return result, nil
}

func (c *Client) query(opts transcriber.Options) url.Values {
	q := url.Values{}
	q.Set("model", c.cfg.Model)
	q.Set("punctuate", strconv.FormatBool(opts.Punctuate))
	q.Set("diarize", strconv.FormatBool(opts.Diarize))
	q.Set("utterances", strconv.FormatBool(opts.Utterances))
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	return q
}

func (c *Client) doTranscribe(ctx context.Context, endpoint string, audio transcriber.Audio) (*transcript.DeepgramResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio.Data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	mime := audio.MIMEType
	if mime == "" {
		mime = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mime)
	req.Header.Set("Authorization", "Token "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &transcriber.RetryableError{Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transcriber.RetryableError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode >= 500 {
		return nil, &transcriber.RetryableError{Err: fmt.Errorf("server error %d: %s", resp.StatusCode, transcriber.Truncate(body, 200))}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, transcriber.Truncate(body, 200))
	}

	var parsed transcript.DeepgramResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &parsed, nil
}
