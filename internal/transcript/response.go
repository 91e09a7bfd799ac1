package transcript

import "encoding/json"

// Response is a raw provider transcription response. The set of variants is
// closed: Normalize switches over all of them.
type Response interface {
	isResponse()
}

// DeepgramResponse mirrors the prerecorded-audio response of the Deepgram
// listen API with utterances enabled.
type DeepgramResponse struct {
	Results *DeepgramResults `json:"results"`
}

type DeepgramResults struct {
	Channels []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channels"`
	Utterances []DeepgramUtterance `json:"utterances"`
}

type DeepgramUtterance struct {
	Speaker    *int    `json:"speaker"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Transcript string  `json:"transcript"`
}

// SegmentsResponse mirrors APIs that return a flat text plus diarized
// segments with an optional string speaker (Mistral Voxtral).
type SegmentsResponse struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Speaker *string `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// UnmarshalJSON accepts the speaker under "speaker" or, from older API
// versions, "speaker_id".
func (s *Segment) UnmarshalJSON(data []byte) error {
	type plain Segment
	var raw struct {
		plain
		SpeakerID *string `json:"speaker_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Segment(raw.plain)
	if s.Speaker == nil {
		s.Speaker = raw.SpeakerID
	}
	return nil
}

// Empty stands for a missing response, e.g. after a failed provider call.
type Empty struct {
	Reason string
}

func (*DeepgramResponse) isResponse() {}
func (*SegmentsResponse) isResponse() {}
func (Empty) isResponse()             {}
