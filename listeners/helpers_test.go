package listeners_test

import "go.flowkit.dev/workflow"

func taskFromFunc(name string, fn func(ctx *workflow.Context) error) workflow.Workflow {
	w, err := workflow.NewTaskWorkflow(workflow.TaskDescriptor{Name: name, Task: fn}, nil)
	if err != nil {
		panic(err)
	}
	return w
}
