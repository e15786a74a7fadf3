package wordsort

import (
	"errors"
	"strings"
)

// Status is the outcome of a sort invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusEmpty   Status = "empty"
	StatusFailure Status = "failure"
)

// Reason explains an empty result.
type Reason string

const (
	// ReasonEmptyInput: the raw text was blank or whitespace only.
	ReasonEmptyInput Reason = "EMPTY_INPUT"
	// ReasonNoValidWords: the raw text held only separators.
	ReasonNoValidWords Reason = "NO_VALID_WORDS"
)

var (
	ErrEmptyInput   = errors.New("empty input")
	ErrNoValidWords = errors.New("no valid words")
)

// FailureError carries the message of a failed invocation.
type FailureError struct {
	Message string
}

func (e *FailureError) Error() string { return "sort failed: " + e.Message }

// Result is the response of one sort invocation. Words is only set on success.
type Result struct {
	Status   Status   `json:"status"`
	Words    []string `json:"words,omitempty"`
	Count    int      `json:"count"`
	Tokens   int      `json:"tokens"`
	Reason   Reason   `json:"reason,omitempty"`
	Message  string   `json:"message,omitempty"`
	Locale   string   `json:"locale,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Text renders the words one per line, each terminated by a newline.
func (r *Result) Text() string {
	if r == nil || len(r.Words) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range r.Words {
		b.WriteString(w)
		b.WriteByte('\n')
	}
	return b.String()
}

// Err returns nil on success and the matching error otherwise.
func (r *Result) Err() error {
	switch r.Status {
	case StatusSuccess:
		return nil
	case StatusEmpty:
		if r.Reason == ReasonNoValidWords {
			return ErrNoValidWords
		}
		return ErrEmptyInput
	default:
		return &FailureError{Message: r.Message}
	}
}

func emptyResult(reason Reason) *Result {
	return &Result{Status: StatusEmpty, Reason: reason}
}

func failureResult(msg string) *Result {
	return &Result{Status: StatusFailure, Message: msg}
}
