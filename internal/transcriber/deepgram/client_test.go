package deepgram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcript"
)

func newTestClient(ts *httptest.Server) *Client {
	c := NewClient(Config{APIKey: "dg-key", BaseURL: ts.URL, Retries: 2})
	c.backoffBase = time.Millisecond
	return c
}

const validResponse = `{
	"results": {
		"channels": [{"alternatives": [{"transcript": "Hola Buenos días"}]}],
		"utterances": [
			{"speaker": 0, "start": 0.0, "end": 2.5, "transcript": "Hola"},
			{"speaker": 1, "start": 2.6, "end": 5.0, "transcript": "Buenos días"}
		]
	}
}`

func TestTranscribe_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/listen", r.URL.Path)
		assert.Equal(t, "Token dg-key", r.Header.Get("Authorization"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Content-Type"))

		q := r.URL.Query()
		assert.Equal(t, "nova-2", q.Get("model"))
		assert.Equal(t, "true", q.Get("punctuate"))
		assert.Equal(t, "true", q.Get("diarize"))
		assert.Equal(t, "true", q.Get("utterances"))
		assert.Equal(t, "es", q.Get("language"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "fake-audio", string(body))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, validResponse)
	}))
	defer ts.Close()

	resp, err := newTestClient(ts).Transcribe(context.Background(),
		transcriber.Audio{Data: []byte("fake-audio"), MIMEType: "audio/mpeg"},
		transcriber.DefaultOptions("es"))
	require.NoError(t, err)

	tr := transcript.Normalize(resp)
	assert.Equal(t, "Hola Buenos días", tr.FullText)
	assert.Equal(t, []string{"SPEAKER_0", "SPEAKER_1"}, tr.SpeakerLabels())
}

func TestTranscribe_RetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, validResponse)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Transcribe(context.Background(), transcriber.Audio{Data: []byte("x")}, transcriber.DefaultOptions("es"))

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTranscribe_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"err_msg":"Invalid credentials."}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	resp, err := newTestClient(ts).Transcribe(context.Background(), transcriber.Audio{Data: []byte("x")}, transcriber.DefaultOptions("es"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 401")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.IsType(t, transcript.Empty{}, resp)
}

func TestTranscribe_MalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [`)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Transcribe(context.Background(), transcriber.Audio{Data: []byte("x")}, transcriber.DefaultOptions("es"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
