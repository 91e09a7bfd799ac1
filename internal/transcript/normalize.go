package transcript

import "strconv"

// Normalize converts a provider response into a Transcript. It never fails:
// missing levels of nesting yield empty values.
func Normalize(resp Response) Transcript {
	switch r := resp.(type) {
	case *DeepgramResponse:
		return normalizeDeepgram(r)
	case *SegmentsResponse:
		return normalizeSegments(r)
	case Empty, nil:
		return emptyTranscript()
	default:
		return emptyTranscript()
	}
}

func emptyTranscript() Transcript {
	return Transcript{Utterances: []Utterance{}}
}

func normalizeDeepgram(r *DeepgramResponse) Transcript {
	t := emptyTranscript()
	if r == nil || r.Results == nil {
		return t
	}

	if len(r.Results.Channels) > 0 && len(r.Results.Channels[0].Alternatives) > 0 {
		t.FullText = r.Results.Channels[0].Alternatives[0].Transcript
	}

	for i, u := range r.Results.Utterances {
		speaker := SynthesizedSpeaker(i + 1)
		if u.Speaker != nil {
			speaker = ExplicitSpeaker(strconv.Itoa(*u.Speaker))
		}
		t.Utterances = append(t.Utterances, newUtterance(speaker, u.Start, u.End, u.Transcript))
	}
	return t
}

func normalizeSegments(r *SegmentsResponse) Transcript {
	t := emptyTranscript()
	if r == nil {
		return t
	}

	t.FullText = r.Text
	for i, s := range r.Segments {
		speaker := SynthesizedSpeaker(i + 1)
		if s.Speaker != nil && *s.Speaker != "" {
			speaker = ExplicitSpeaker(*s.Speaker)
		}
		t.Utterances = append(t.Utterances, newUtterance(speaker, s.Start, s.End, s.Text))
	}
	return t
}

func newUtterance(speaker Speaker, start, end float64, text string) Utterance {
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	return Utterance{Speaker: speaker, Start: start, End: end, Text: text}
}
