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

// Package workflow implements a composable workflow orchestration engine:
// Sequential, Parallel, Conditional, Fallback, Timeout, RateLimited and Saga
// nodes compose over a shared, thread-safe Context and produce immutable
// Results.
//
// A tree is built by nesting the constructors directly — there is no
// separate builder or DSL:
//
//	charge, _ := workflow.NewTaskWorkflow(workflow.TaskDescriptor{
//		Name: "charge-card",
//		Task: chargeCard,
//	}, nil)
//	notify := workflow.NewSequentialWorkflow("notify", emailStep, smsStep)
//	root, _ := workflow.NewFallbackWorkflow("checkout", charge, notify)
//
//	ctx := workflow.NewContext()
//	result := workflow.Execute(root, ctx)
//
// Concurrency (ParallelWorkflow, TimeoutWorkflow, a TaskWorkflow's
// per-attempt timeout) is never performed with a bare goroutine; every
// composite that needs to run something concurrently is handed an
// ExecutionStrategy by its caller. Rate limiting follows the same pattern
// through RateLimitStrategy. Both interfaces have default implementations in
// the executor and ratelimit subpackages.
package workflow
