package summarizer

import (
	"encoding/json"

	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
)

type Attendee struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type AgendaItem struct {
	Topic   string `json:"topic"`
	Summary string `json:"summary"`
}

type Agreement struct {
	Responsible string `json:"responsible"`
	Task        string `json:"task"`
	DueDate     string `json:"due_date"`
}

// Minutes is the structured meeting record. Date is ISO-8601 or "not mentioned".
type Minutes struct {
	Title      string       `json:"title"`
	Date       string       `json:"date"`
	Attendees  []Attendee   `json:"attendees"`
	Agenda     []AgendaItem `json:"agenda"`
	Decisions  []string     `json:"decisions"`
	Agreements []Agreement  `json:"agreements"`
}

// Record is either parsed Minutes or, when the model output was not valid
// JSON, the raw model text kept verbatim.
type Record struct {
	Minutes *Minutes
	Raw     string
}

// Fallback reports whether the record wraps unparsed model output.
func (r Record) Fallback() bool {
	return r.Minutes == nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.Minutes != nil {
		return json.Marshal(r.Minutes)
	}
	return json.Marshal(struct {
		Raw string `json:"raw"`
	}{Raw: r.Raw})
}

// minutesSchema constrains the structured-record generation call.
var minutesSchema = &llm.Schema{
	Type: "object",
	Properties: map[string]*llm.Schema{
		"title": {Type: "string"},
		"date":  {Type: "string", Description: `ISO-8601 date or "not mentioned"`},
		"attendees": {Type: "array", Items: &llm.Schema{
			Type: "object",
			Properties: map[string]*llm.Schema{
				"name": {Type: "string"},
				"role": {Type: "string"},
			},
			Required: []string{"name"},
		}},
		"agenda": {Type: "array", Items: &llm.Schema{
			Type: "object",
			Properties: map[string]*llm.Schema{
				"topic":   {Type: "string"},
				"summary": {Type: "string"},
			},
			Required: []string{"topic", "summary"},
		}},
		"decisions": {Type: "array", Items: &llm.Schema{Type: "string"}},
		"agreements": {Type: "array", Items: &llm.Schema{
			Type: "object",
			Properties: map[string]*llm.Schema{
				"responsible": {Type: "string"},
				"task":        {Type: "string"},
				"due_date":    {Type: "string"},
			},
			Required: []string{"responsible", "task", "due_date"},
		}},
	},
	Required: []string{"title", "date", "attendees", "agenda", "decisions", "agreements"},
}
