package errors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents a classified pipeline failure.
type ErrorCode string

const (
	ErrCodeValidation          ErrorCode = "validation"
	ErrCodeTranscriptionFailed ErrorCode = "transcription_failed"
	ErrCodeGenerationFailed    ErrorCode = "generation_failed"
	ErrCodeRenderFailed        ErrorCode = "render_failed"
	ErrCodeRenderTimeout       ErrorCode = "render_timeout"
	ErrCodeTimeout             ErrorCode = "timeout"
	ErrCodeCancelled           ErrorCode = "cancelled"
	ErrCodeInternal            ErrorCode = "internal"
)

// Pipeline stage names used in PipelineError.Stage.
const (
	StageTranscribing     = "transcribing"
	StageGeneratingRecord = "generating_record"
	StageGeneratingSum    = "generating_summary"
	StageRendering        = "rendering"
)

// PipelineError is a structured error for pipeline failures.
type PipelineError struct {
	Code    ErrorCode
	Stage   string
	Message string
	Timeout time.Duration
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s: %s timed out (limit: %s)", e.Code, e.Stage, e.Timeout)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Code, e.Stage, e.Message, e.Cause)
	}
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewRenderTimeout builds the error reported when rendering exceeds its budget.
func NewRenderTimeout(limit time.Duration) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeRenderTimeout,
		Stage:   StageRendering,
		Message: "document rendering timed out",
		Timeout: limit,
		Cause:   context.DeadlineExceeded,
	}
}

// Classify wraps err into a *PipelineError for the given stage. An existing
// *PipelineError in the chain is returned unchanged.
func Classify(err error, stage string) *PipelineError {
	if err == nil {
		return nil
	}

	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}

	pe = &PipelineError{Stage: stage, Cause: err}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		pe.Code = ErrCodeTimeout
		pe.Message = "operation timed out"
	case errors.Is(err, context.Canceled):
		pe.Code = ErrCodeCancelled
		pe.Message = "operation cancelled"
	case errors.Is(err, ErrValidation):
		pe.Code = ErrCodeValidation
		pe.Message = "invalid input"
	default:
		switch stage {
		case StageTranscribing:
			pe.Code = ErrCodeTranscriptionFailed
			pe.Message = "transcription failed"
		case StageGeneratingRecord, StageGeneratingSum:
			pe.Code = ErrCodeGenerationFailed
			pe.Message = "summary generation failed"
		case StageRendering:
			pe.Code = ErrCodeRenderFailed
			pe.Message = "document rendering failed"
		default:
			pe.Code = ErrCodeInternal
			pe.Message = "internal error"
		}
	}
	return pe
}

// UserMessage returns the short human-readable sentence shown to callers.
func (e *PipelineError) UserMessage() string {
	switch e.Code {
	case ErrCodeRenderTimeout:
		return "Generating the document took too long"
	case ErrCodeRenderFailed:
		return "The document could not be generated"
	case ErrCodeGenerationFailed:
		return "The summary could not be generated"
	case ErrCodeTimeout:
		return "The request took too long to process"
	case ErrCodeCancelled:
		return "The request was cancelled"
	case ErrCodeValidation:
		return "The request is invalid"
	default:
		return "Error processing the meeting"
	}
}
