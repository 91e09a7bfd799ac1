// Package voxtral implements transcriber.Transcriber against the Mistral
// Voxtral audio transcription API with diarization.
package voxtral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcript"
)

var _ transcriber.Transcriber = (*Client)(nil)

const defaultBaseURL = "https://api.mistral.ai"

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Retries int
}

type Client struct {
	cfg         Config
	client      *http.Client
	backoffBase time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "voxtral-mini-latest"
	}
	return &Client{
		cfg:         cfg,
		client:      &http.Client{},
		backoffBase: time.Second,
	}
}

func (c *Client) Name() string { return "voxtral" }

// Transcribe uploads the audio as multipart form data. Voxtral always
// punctuates, so opts.Punctuate has no request field.
func (c *Client) Transcribe(ctx context.Context, audio transcriber.Audio, opts transcriber.Options) (transcript.Response, error) {
	var result *transcript.SegmentsResponse
	err := transcriber.Retry(ctx, c.cfg.Retries, c.backoffBase, func() error {
		r, err := c.doTranscribe(ctx, audio, opts)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return transcript.Empty{Reason: err.Error()}, fmt.Errorf("voxtral transcribe: %w", err)
	}
	return result, nil
}

func (c *Client) doTranscribe(ctx context.Context, audio transcriber.Audio, opts transcriber.Options) (*transcript.SegmentsResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"model":                   c.cfg.Model,
		"diarize":                 fmt.Sprintf("%t", opts.Diarize),
		"timestamp_granularities": "segment",
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}

	filename := audio.Filename
	if filename == "" {
		filename = "audio"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if audio.MIMEType != "" {
		header.Set("Content-Type", audio.MIMEType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/audio/transcriptions", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &transcriber.RetryableError{Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transcriber.RetryableError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode >= 500 {
		return nil, &transcriber.RetryableError{Err: fmt.Errorf("server error %d: %s", resp.StatusCode, transcriber.Truncate(respBody, 200))}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mistral API error (HTTP %d): %s", resp.StatusCode, transcriber.Truncate(respBody, 200))
	}

	var parsed transcript.SegmentsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parsing Mistral response: %w", err)
	}
	return &parsed, nil
}
