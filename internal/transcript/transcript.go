// Package transcript holds the canonical speaker-attributed transcript and
// the normalization from vendor transcription responses into it.
package transcript

import (
	"encoding/json"
	"strconv"
	"strings"
)

const speakerPrefix = "speaker_"

// Speaker identifies one voice within a recording. Explicit ids come from the
// provider; synthesized ids are derived from the utterance position and live
// in their own namespace so they never merge with an explicit speaker.
type Speaker struct {
	ID          string
	Synthesized bool
}

// ExplicitSpeaker returns a provider-assigned speaker. A leading "speaker_"
// in any case is dropped, so "speaker_1" and 1 name the same voice.
func ExplicitSpeaker(id string) Speaker {
	if len(id) > len(speakerPrefix) && strings.EqualFold(id[:len(speakerPrefix)], speakerPrefix) {
		id = id[len(speakerPrefix):]
	}
	return Speaker{ID: id}
}

// SynthesizedSpeaker returns the speaker for an unlabeled utterance at the
// given 1-based position.
func SynthesizedSpeaker(position int) Speaker {
	return Speaker{ID: strconv.Itoa(position), Synthesized: true}
}

// Label is the display name used in the diarized text block.
func (s Speaker) Label() string {
	if s.Synthesized {
		return "SPEAKER_U" + s.ID
	}
	return "SPEAKER_" + s.ID
}

func (s Speaker) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Label())
}

// Utterance is one speaker turn. Times are in seconds.
type Utterance struct {
	Speaker Speaker `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// Transcript is the normalized transcription of one recording. Utterances
// keep the order in which the provider returned them.
type Transcript struct {
	FullText   string      `json:"full_text"`
	Utterances []Utterance `json:"utterances"`
}

// UtteranceCount returns the number of utterances.
func (t Transcript) UtteranceCount() int {
	return len(t.Utterances)
}

// IsEmpty reports whether the transcript carries neither utterances nor text.
func (t Transcript) IsEmpty() bool {
	return len(t.Utterances) == 0 && t.FullText == ""
}

// SpeakerLabels returns the distinct speaker labels in order of first appearance.
func (t Transcript) SpeakerLabels() []string {
	seen := make(map[Speaker]bool)
	labels := make([]string, 0)
	for _, u := range t.Utterances {
		if seen[u.Speaker] {
			continue
		}
		seen[u.Speaker] = true
		labels = append(labels, u.Speaker.Label())
	}
	return labels
}

// SpeakerStats is the per-speaker summary included in diarization metadata.
type SpeakerStats struct {
	Utterances int     `json:"utterances"`
	Seconds    float64 `json:"seconds"`
}

// PerSpeaker aggregates utterance counts and speaking time by speaker label.
func (t Transcript) PerSpeaker() map[string]SpeakerStats {
	stats := make(map[string]SpeakerStats)
	for _, u := range t.Utterances {
		s := stats[u.Speaker.Label()]
		s.Utterances++
		s.Seconds += u.End - u.Start
		stats[u.Speaker.Label()] = s
	}
	return stats
}
