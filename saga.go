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

package workflow

import "fmt"

// SagaFailureCauseKey is the Context key a compensation Workflow can read to
// recover the error that triggered unwinding.
const SagaFailureCauseKey = "go.flowkit.dev/workflow.saga.failureCause"

// SagaFailedStepKey is the Context key holding the name of the step whose
// forward action failed.
const SagaFailedStepKey = "go.flowkit.dev/workflow.saga.failedStep"

// SagaStep pairs a forward Action with an optional Compensation run, in
// reverse order, only for steps whose Action already succeeded.
type SagaStep struct {
	Name         string   `validate:"required"`
	Action       Workflow `validate:"required"`
	Compensation Workflow
}

// SagaWorkflow runs its steps' Actions in order. If one fails, every prior
// step's Compensation (for steps that defined one) runs in reverse order,
// regardless of whether earlier compensations themselves fail — a saga
// always attempts to unwind everything it can.
type SagaWorkflow struct {
	name  string
	steps []SagaStep
}

// NewSagaWorkflow builds a SagaWorkflow over steps, executed in the given
// order. At least one step is required, and each step must carry a Name and
// an Action.
func NewSagaWorkflow(name string, steps []SagaStep) (*SagaWorkflow, error) {
	if len(steps) == 0 {
		return nil, NewConstructionError("sagaworkflow: steps must be non-empty")
	}
	for i, step := range steps {
		if err := validateStruct(step); err != nil {
			return nil, NewConstructionError(fmt.Sprintf("sagaworkflow: step %d: %v", i, err))
		}
	}
	return &SagaWorkflow{name: name, steps: steps}, nil
}

// Name returns the workflow's configured name.
func (s *SagaWorkflow) Name() string { return s.name }

// Children implements Container for the tree renderer.
func (s *SagaWorkflow) Children() []ChildRef {
	refs := make([]ChildRef, 0, len(s.steps)*2)
	for _, step := range s.steps {
		refs = append(refs, ChildRef{Label: fmt.Sprintf("%s ACTION →", step.Name), Workflow: step.Action})
		if step.Compensation != nil {
			refs = append(refs, ChildRef{Label: fmt.Sprintf("%s REVERT →", step.Name), Workflow: step.Compensation})
		}
	}
	return refs
}

func (s *SagaWorkflow) doExecute(ctx *Context, rc *runContext) *Result {
	results := make([]*Result, 0, len(s.steps))
	completed := make([]SagaStep, 0, len(s.steps))

	for _, step := range s.steps {
		r := Execute(step.Action, ctx)
		results = append(results, r)
		if r.Status == StatusFailed {
			ctx.Put(SagaFailureCauseKey, r.Error)
			ctx.Put(SagaFailedStepKey, step.Name)
			compErrs := s.compensate(ctx, completed, &results)
			ctx.Remove(SagaFailureCauseKey)
			ctx.Remove(SagaFailedStepKey)
			if len(compErrs) > 0 {
				return rc.Failure(NewSagaCompensationError(step.Name, r.Error, compErrs), results...)
			}
			return rc.Failure(r.Error, results...)
		}
		completed = append(completed, step)
	}
	return rc.Success(results...)
}

// compensate runs the Compensation of every step in completed, in reverse
// order, appending each Compensation's Result to results and collecting
// every compensation error encountered. One compensation failing does not
// stop the rest from running.
func (s *SagaWorkflow) compensate(ctx *Context, completed []SagaStep, results *[]*Result) []error {
	var compErrs []error
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensation == nil {
			continue
		}
		r := Execute(step.Compensation, ctx)
		*results = append(*results, r)
		if r.Status == StatusFailed {
			compErrs = append(compErrs, r.Error)
		}
	}
	return compErrs
}
