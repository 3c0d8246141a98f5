package engine

import (
	"fmt"

	"github.com/dogansystem/agentflow/model"
)

// Validate checks a workflow definition's step graph: step ids must be unique,
// every referenced step id must exist, and the depends_on edges must form an
// acyclic graph. A cycle would otherwise never become ready and hang the run.
func Validate(wf *model.WorkflowDefinition) error {
	if len(wf.Steps) == 0 {
		return ValidationError{WorkflowId: wf.Id, Message: "workflow has no steps"}
	}
	steps := make(map[string]*model.WorkflowStep, len(wf.Steps))
	for i := range wf.Steps {
		step := &wf.Steps[i]
		if step.StepId == "" {
			return ValidationError{WorkflowId: wf.Id, Message: "step with empty id"}
		}
		if _, ok := steps[step.StepId]; ok {
			return ValidationError{WorkflowId: wf.Id, Message: fmt.Sprintf("step id %s is duplicate", step.StepId)}
		}
		steps[step.StepId] = step
	}
	for _, step := range wf.Steps {
		for _, ref := range step.DependsOn {
			if _, ok := steps[ref]; !ok {
				return ValidationError{WorkflowId: wf.Id, Message: fmt.Sprintf("step %s depends on unknown step %s", step.StepId, ref)}
			}
		}
		for _, ref := range append(append([]string{}, step.OnSuccess...), step.OnFailure...) {
			if _, ok := steps[ref]; !ok {
				return ValidationError{WorkflowId: wf.Id, Message: fmt.Sprintf("step %s routes to unknown step %s", step.StepId, ref)}
			}
		}
	}
	return checkAcyclic(wf, steps)
}

// checkAcyclic runs Kahn's algorithm over the depends_on edges.
func checkAcyclic(wf *model.WorkflowDefinition, steps map[string]*model.WorkflowStep) error {
	indegree := make(map[string]int, len(steps))
	dependents := make(map[string][]string, len(steps))
	for id, step := range steps {
		indegree[id] = len(step.DependsOn)
		for _, dep := range step.DependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
	}
	var queue []string
	for id, deg := range indegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dependent := range dependents[id] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}
	if visited != len(steps) {
		return ValidationError{WorkflowId: wf.Id, Message: "depends_on edges contain a cycle"}
	}
	return nil
}
