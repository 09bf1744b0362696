package chain

import "strings"

// Outcome is the result of one provider attempt: either Success with text, or
// Unavailable with a diagnostic reason. It is a value, never an error.
type Outcome struct {
	text   string
	reason string
	ok     bool
}

func Success(text string) Outcome {
	return Outcome{text: text, ok: true}
}

func Unavailable(reason string) Outcome {
	return Outcome{reason: reason}
}

// Text returns the reply and true for a usable success. A success carrying
// only whitespace is not usable.
func (o Outcome) Text() (string, bool) {
	if !o.ok {
		return "", false
	}
	text := strings.TrimSpace(o.text)
	return text, text != ""
}

// Reason explains why the attempt was unavailable.
func (o Outcome) Reason() string {
	if o.ok {
		if _, usable := o.Text(); !usable {
			return ReasonEmptyResponse
		}
		return ""
	}
	return o.reason
}

const (
	ReasonEmptyResponse = "empty response"
	ReasonTimeout       = "timeout"
	ReasonPanic         = "panic"
)
