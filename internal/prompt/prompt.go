package prompt

import (
	"fmt"

	"github.com/nguyentantai21042004/minutes-flow/internal/transcript"
)

// NotMentioned is the sentinel the model must use for missing fields.
const NotMentioned = "not mentioned"

// Payload is one system+user message pair for the language model.
type Payload struct {
	System string
	User   string
}

// Prompts holds everything both generation calls are grounded on.
type Prompts struct {
	Language     string
	LanguageName string
	DiarizedText string
	Record       Payload
	Summary      Payload
}

const faithfulness = `Be faithful to the content of the transcript. Do not invent attendees, decisions or agreements. If a field is not present in the transcript, mark it as "%s".`

const recordSystem = `You are an assistant that writes formal meeting minutes. Write every value in %s.
%s`

const recordUser = `Produce the structured minutes of the following meeting as JSON with the fields title, date (ISO-8601 or "%s"), attendees (name, role), agenda (topic, summary), decisions and agreements (responsible, task, due_date).
Speakers are identified as SPEAKER_x; only use real names when they are said in the meeting.

Diarized transcript:
---
%s
---`

const summarySystem = `You are an expert analyst who writes executive summaries of meetings in %s.
%s`

const summaryUser = `Write an executive summary of the following meeting in Markdown.

Requirements:
- Start with a level 1 heading with the meeting topic
- Sections with level 2 headings: context, main topics, decisions, agreements and next steps
- Use bullet lists and **bold** for key terms
- Keep it concise; do not add information that is not in the transcript

Diarized transcript:
---
%s
---`

// Build renders the diarized text block and the two instruction payloads.
// Both user payloads embed the same diarized block verbatim.
func Build(t transcript.Transcript, lang string) Prompts {
	code := ResolveLanguage(lang)
	name := LanguageName(code)
	diarized := DiarizedText(t)
	rule := fmt.Sprintf(faithfulness, NotMentioned)

	return Prompts{
		Language:     code,
		LanguageName: name,
		DiarizedText: diarized,
		Record: Payload{
			System: fmt.Sprintf(recordSystem, name, rule),
			User:   fmt.Sprintf(recordUser, NotMentioned, diarized),
		},
		Summary: Payload{
			System: fmt.Sprintf(summarySystem, name, rule),
			User:   fmt.Sprintf(summaryUser, diarized),
		},
	}
}
