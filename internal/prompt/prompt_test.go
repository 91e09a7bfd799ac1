package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/minutes-flow/internal/transcript"
)

func meeting() transcript.Transcript {
	return transcript.Transcript{
		FullText: "Hola Buenos días",
		Utterances: []transcript.Utterance{
			{Speaker: transcript.ExplicitSpeaker("0"), Start: 0.0, End: 2.5, Text: "Hola"},
			{Speaker: transcript.ExplicitSpeaker("1"), Start: 2.6, End: 5.0, Text: "Buenos días"},
		},
	}
}

func TestDiarizedText_EndToEndExample(t *testing.T) {
	got := DiarizedText(meeting())
	assert.Equal(t, "(0.00s - 2.50s) SPEAKER_0: Hola\n(2.60s - 5.00s) SPEAKER_1: Buenos días\n", got)
}

func TestDiarizedText_OneLinePerUtteranceInOrder(t *testing.T) {
	tr := transcript.Transcript{Utterances: []transcript.Utterance{
		{Speaker: transcript.ExplicitSpeaker("2"), Start: 10.126, End: 11, Text: "c"},
		{Speaker: transcript.ExplicitSpeaker("0"), Start: 0.1, End: 1.999, Text: ""},
		{Speaker: transcript.SynthesizedSpeaker(3), Start: 3, End: 4.5, Text: "b"},
	}}

	lines := strings.Split(strings.TrimSuffix(DiarizedText(tr), "\n"), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "(10.13s - 11.00s) SPEAKER_2: c", lines[0])
	assert.Equal(t, "(0.10s - 2.00s) SPEAKER_0: ", lines[1])
	assert.Equal(t, "(3.00s - 4.50s) SPEAKER_U3: b", lines[2])
}

func TestDiarizedText_Fallbacks(t *testing.T) {
	assert.Equal(t, "flat text", DiarizedText(transcript.Transcript{FullText: "flat text"}))
	assert.Equal(t, FallbackMarker, DiarizedText(transcript.Transcript{}))
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "es"},
		{"es", "es"},
		{"en", "en"},
		{"EN", "en"},
		{"pt-BR", "pt"},
		{"fr", "fr"},
		{"de", "de"},
		{"it", "it"},
		{"ja", "es"},
		{"not a tag!", "es"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLanguage(tt.in))
		})
	}
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "español", LanguageName("es"))
	assert.Equal(t, "English", LanguageName("en"))
	assert.Equal(t, "español", LanguageName("zz"))
}

func TestDocumentTitle(t *testing.T) {
	assert.Equal(t, "Resumen de la reunión", DocumentTitle(""))
	assert.Equal(t, "Meeting summary", DocumentTitle("en"))
}

func TestBuild(t *testing.T) {
	p := Build(meeting(), "en")

	assert.Equal(t, "en", p.Language)
	assert.Equal(t, "English", p.LanguageName)
	assert.Contains(t, p.Record.User, p.DiarizedText)
	assert.Contains(t, p.Summary.User, p.DiarizedText)

	for _, payload := range []Payload{p.Record, p.Summary} {
		assert.Contains(t, payload.System, "English")
		assert.Contains(t, payload.System, "Do not invent attendees")
		assert.Contains(t, payload.System, NotMentioned)
	}
}

func TestBuild_EmptyTranscriptUsesMarker(t *testing.T) {
	p := Build(transcript.Transcript{}, "")

	assert.Equal(t, "es", p.Language)
	assert.Equal(t, FallbackMarker, p.DiarizedText)
	assert.Contains(t, p.Record.User, FallbackMarker)
}
