package agent

import "fmt"

// ArgumentParseError reports tool arguments that were not valid JSON.
type ArgumentParseError struct {
	Err error
}

func (e *ArgumentParseError) Error() string {
	return fmt.Sprintf("invalid JSON arguments: %v", e.Err)
}

func (e *ArgumentParseError) Unwrap() error {
	return e.Err
}

// ArgumentShapeError reports tool arguments that decoded to valid JSON but not
// to an object.
type ArgumentShapeError struct {
	Value interface{}
}

func (e *ArgumentShapeError) Error() string {
	return "tool arguments JSON must decode to an object"
}

// ProviderCallError wraps a failed provider call. It is terminal for a single
// agent run; the orchestration layer decides whether to retry.
type ProviderCallError struct {
	Provider string
	Err      error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("provider call failed (%s): %v", e.Provider, e.Err)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Err
}
