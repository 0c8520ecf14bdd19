// The MIT License
//
// Copyright (c) 2020 Temporal Technologies Inc.  All rights reserved.
//
// Copyright (c) 2020 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

/*
Every error a workflow can fail with is one of the typed errors below. They
all embed workflowError so callers can errors.As() for the specific kind
without caring which composite produced it:

	var saga *workflow.SagaCompensationError
	if errors.As(result.Error, &saga) {
		log.Printf("%d compensations failed after %v", saga.CompensationFailureCount(), saga.Unwrap())
	}

No workflow ever returns one of these by panicking out of Execute — see
workflow.go's recover() in executeGuarded, which converts a panic into a
*PanicError FAILED result instead.
*/
package workflow

import "fmt"

// workflowError is the common base embedded by every typed error in this
// package; it exists purely to give every error a consistent Error() string
// without repeating the formatting logic at each type.
type workflowError struct {
	msg string
}

func (e *workflowError) Error() string { return e.msg }

// TaskExecutionError wraps a business failure returned by a Task.
type TaskExecutionError struct {
	workflowError
	TaskName string
	cause    error
}

// NewTaskExecutionError builds a TaskExecutionError for taskName, wrapping
// cause.
func NewTaskExecutionError(taskName string, cause error) *TaskExecutionError {
	return &TaskExecutionError{
		workflowError: workflowError{msg: fmt.Sprintf("task %q failed: %v", taskName, cause)},
		TaskName:      taskName,
		cause:         cause,
	}
}

// Unwrap exposes the task's original error.
func (e *TaskExecutionError) Unwrap() error { return e.cause }

// TaskTimeoutError is raised when a per-task or per-workflow timeout
// expires before the underlying work completed.
type TaskTimeoutError struct {
	workflowError
	TimeoutMS int64
}

// NewTaskTimeoutError builds a TaskTimeoutError for name that was bounded to
// timeoutMS milliseconds.
func NewTaskTimeoutError(name string, timeoutMS int64) *TaskTimeoutError {
	return &TaskTimeoutError{
		workflowError: workflowError{msg: fmt.Sprintf("%q did not complete within %dms", name, timeoutMS)},
		TimeoutMS:     timeoutMS,
	}
}

// InterruptedError is raised when a thread blocked on backoff sleep,
// rate-limit acquisition, or a parallel join observes cancellation.
type InterruptedError struct {
	workflowError
	cause error
}

// NewInterruptedError wraps cause (typically context.Canceled or
// context.DeadlineExceeded) as an InterruptedError.
func NewInterruptedError(cause error) *InterruptedError {
	return &InterruptedError{
		workflowError: workflowError{msg: fmt.Sprintf("interrupted: %v", cause)},
		cause:         cause,
	}
}

// Unwrap exposes the underlying cancellation cause.
func (e *InterruptedError) Unwrap() error { return e.cause }

// PredicateError is raised when a ConditionalWorkflow's predicate panics or
// returns an error.
type PredicateError struct {
	workflowError
	cause error
}

// NewPredicateError wraps cause as a PredicateError.
func NewPredicateError(cause error) *PredicateError {
	return &PredicateError{
		workflowError: workflowError{msg: fmt.Sprintf("predicate failed: %v", cause)},
		cause:         cause,
	}
}

// Unwrap exposes the predicate's original error.
func (e *PredicateError) Unwrap() error { return e.cause }

// SagaCompensationError is returned when a saga's forward phase failed and
// at least one compensation also failed while unwinding. Unwrap returns the
// original triggering failure, not a compensation error — callers that want
// the compensation errors use CompensationErrors.
type SagaCompensationError struct {
	workflowError
	originalError      error
	FailedStep         string
	compensationErrors []error
}

// NewSagaCompensationError builds a SagaCompensationError for the step named
// failedStep whose forward action failed with original, given the errors
// collected from every compensation that also failed.
func NewSagaCompensationError(failedStep string, original error, compensationErrors []error) *SagaCompensationError {
	return &SagaCompensationError{
		workflowError: workflowError{
			msg: fmt.Sprintf("saga step %q failed (%v) and %d compensation(s) also failed", failedStep, original, len(compensationErrors)),
		},
		originalError:      original,
		FailedStep:         failedStep,
		compensationErrors: append([]error(nil), compensationErrors...),
	}
}

// Unwrap returns the original failure that triggered compensation.
func (e *SagaCompensationError) Unwrap() error { return e.originalError }

// CompensationFailureCount is the number of compensations that failed while
// unwinding.
func (e *SagaCompensationError) CompensationFailureCount() int { return len(e.compensationErrors) }

// CompensationErrors returns a copy of the errors produced by every
// compensation that failed, in reverse-completion (unwind) order.
func (e *SagaCompensationError) CompensationErrors() []error {
	return append([]error(nil), e.compensationErrors...)
}

// ConstructionError is raised by builders when a required field is missing
// or invalid. It is never retryable: the tree is malformed regardless of
// how many times it is executed.
type ConstructionError struct {
	workflowError
}

// NewConstructionError builds a ConstructionError with the given message.
func NewConstructionError(msg string) *ConstructionError {
	return &ConstructionError{workflowError{msg: msg}}
}

// PanicError is synthesized when doExecute panics instead of returning. The
// original recovered value and a captured stack trace are preserved for
// diagnostics.
type PanicError struct {
	workflowError
	Value any
	Stack string
}

func newPanicError(value any, stack string) *PanicError {
	return &PanicError{
		workflowError: workflowError{msg: fmt.Sprintf("panic: %v", value)},
		Value:         value,
		Stack:         stack,
	}
}

// errNilResult is the explanatory error synthesized when doExecute returns
// a nil *Result instead of panicking or returning a stamped one.
func errNilResult(name string) error {
	return fmt.Errorf("workflow %q returned a nil result", name)
}
