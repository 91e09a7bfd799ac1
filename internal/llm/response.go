package llm

import "strings"

// Response is a raw generation result. Vendors return a directly accessible
// text field, a nested choices array or a list of content blocks; anything
// else is Unrecognized.
type Response interface {
	isResponse()
}

// TextResponse carries the generated text directly.
type TextResponse struct {
	Text string
}

// ChoicesResponse mirrors chat-completion style payloads.
type ChoicesResponse struct {
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// BlocksResponse mirrors message APIs that return typed content blocks.
type BlocksResponse struct {
	Content []Block `json:"content"`
}

type Block struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Unrecognized is a response with no usable text.
type Unrecognized struct {
	Reason string
}

func (TextResponse) isResponse()    {}
func (ChoicesResponse) isResponse() {}
func (BlocksResponse) isResponse()  {}
func (Unrecognized) isResponse()    {}

// ExtractText returns the first non-blank text payload of resp.
func ExtractText(resp Response) (string, bool) {
	switch r := resp.(type) {
	case TextResponse:
		if strings.TrimSpace(r.Text) != "" {
			return r.Text, true
		}
	case ChoicesResponse:
		for _, c := range r.Choices {
			if strings.TrimSpace(c.Message.Content) != "" {
				return c.Message.Content, true
			}
		}
	case BlocksResponse:
		for _, b := range r.Content {
			if b.Type != "" && b.Type != "text" {
				continue
			}
			if strings.TrimSpace(b.Text) != "" {
				return b.Text, true
			}
		}
	case Unrecognized, nil:
	}
	return "", false
}
