package genx

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxTurns is returned when an agent keeps calling tools past the
	// runner's turn limit.
	ErrMaxTurns = errors.New("genx: max turns exceeded")

	// ErrTruncated is returned when the model stopped on its token limit.
	ErrTruncated = errors.New("genx: generate truncated")
)

// BlockedError is returned when the provider refused to answer.
type BlockedError struct {
	Usage   Usage
	Refusal string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("genx: generate blocked: %s", e.Refusal)
}
