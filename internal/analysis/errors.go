package analysis

import "fmt"

// ErrDecode indicates a model response that is not well-formed structured
// data, or whose values have the wrong types.
type ErrDecode struct {
	Content string
	Err     error
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("decode model response: %v", e.Err)
}

func (e *ErrDecode) Unwrap() error { return e.Err }

// ErrMissingField indicates a decoded model response lacking a required key.
type ErrMissingField struct {
	Field string
}

func (e *ErrMissingField) Error() string {
	return fmt.Sprintf("model response missing required field %q", e.Field)
}

// ErrMalformedSentiment indicates a sentiment label outside the four
// canonical values.
type ErrMalformedSentiment struct {
	Value string
}

func (e *ErrMalformedSentiment) Error() string {
	return fmt.Sprintf("malformed sentiment %q: want one of positive, negative, neutral, mixed", e.Value)
}

// ErrInvalidShape indicates an analysis violating the canonical shape.
type ErrInvalidShape struct {
	Field  string
	Reason string
}

func (e *ErrInvalidShape) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
