package llm

import (
	"errors"
	"fmt"
)

// GenerationError is returned for any failed LLM text call: transport errors,
// bad status codes, or an unusable response body. The pipeline decides per step
// whether to fall back or to surface it to the caller.
type GenerationError struct {
	Op  string // "generate", "embed"
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err is (or wraps) a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
