package prompt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nguyentantai21042004/minutes-flow/internal/transcript"
)

// FallbackMarker replaces the diarized block when nothing was transcribed.
const FallbackMarker = "(could not transcribe audio)"

// DiarizedText renders one "(start - end) SPEAKER_x: text" line per utterance.
// Without utterances it falls back to the flat transcript, then to FallbackMarker.
func DiarizedText(t transcript.Transcript) string {
	if len(t.Utterances) == 0 {
		if t.FullText != "" {
			return t.FullText
		}
		return FallbackMarker
	}

	var b strings.Builder
	for _, u := range t.Utterances {
		fmt.Fprintf(&b, "(%ss - %ss) %s: %s\n", seconds(u.Start), seconds(u.End), u.Speaker.Label(), u.Text)
	}
	return b.String()
}

// seconds formats a float with exactly two decimals.
func seconds(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
