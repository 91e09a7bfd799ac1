package voxtral

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcript"
)

func TestTranscribe_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer mistral-key", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		if !assert.NoError(t, r.ParseMultipartForm(10<<20)) {
			return
		}

		assert.Equal(t, "voxtral-mini-latest", r.FormValue("model"))
		assert.Equal(t, "true", r.FormValue("diarize"))
		assert.Equal(t, "fr", r.FormValue("language"))

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "reunion.m4a", header.Filename)
		assert.Equal(t, "audio-bytes", string(data))

		fmt.Fprint(w, `{
			"text": "Bonjour à tous",
			"segments": [
				{"speaker": "speaker_1", "start": 0.0, "end": 1.4, "text": "Bonjour"},
				{"start": 1.4, "end": 2.0, "text": "à tous"}
			]
		}`)
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "mistral-key", BaseURL: ts.URL})
	resp, err := c.Transcribe(context.Background(),
		transcriber.Audio{Data: []byte("audio-bytes"), MIMEType: "audio/mp4", Filename: "reunion.m4a"},
		transcriber.DefaultOptions("fr"))
	require.NoError(t, err)

	tr := transcript.Normalize(resp)
	require.Len(t, tr.Utterances, 2)
	assert.Equal(t, "SPEAKER_1", tr.Utterances[0].Speaker.Label())
	assert.Equal(t, "SPEAKER_U2", tr.Utterances[1].Speaker.Label())
}

func TestTranscribe_Error(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer ts.Close()

	c := NewClient(Config{BaseURL: ts.URL, Retries: 1})
	c.backoffBase = time.Millisecond

	resp, err := c.Transcribe(context.Background(), transcriber.Audio{Data: []byte("x")}, transcriber.DefaultOptions("es"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 403")
	assert.True(t, transcript.Normalize(resp).IsEmpty())
}
