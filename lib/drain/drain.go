/*
Copyright 2020 Gravitational, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package drain

import (
	"context"
	"time"

	"github.com/gravitational/ecsdrain/lib/constants"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"

	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// DrainState is the terminal state of a drain poll loop
type DrainState string

const (
	// StateEmpty means all tasks on the container instance have stopped
	StateEmpty DrainState = "EMPTY"
	// StateTimedOut means the drain could not be confirmed before the
	// deadline minus the safety margin
	StateTimedOut DrainState = "TIMED_OUT"
)

// startDraining puts the container instance into the DRAINING state so
// the cluster stops placing new tasks on it. A node that is already
// draining - a repeat delivery of the same event, or an operator action -
// is left alone
func (d *Drainer) startDraining(ctx context.Context, instance ContainerInstance) error {
	logger := d.WithFields(log.Fields{
		constants.FieldCluster:           instance.Cluster,
		constants.FieldContainerInstance: instance.ARN,
	})
	if instance.Status == constants.ContainerInstanceStatusDraining {
		logger.Info("Container instance is already draining.")
		return nil
	}
	logger.Info("Setting container instance to DRAINING.")
	_, err := d.ECS.UpdateContainerInstancesStateWithContext(ctx, &ecs.UpdateContainerInstancesStateInput{
		Cluster:            aws.String(instance.Cluster),
		ContainerInstances: aws.StringSlice([]string{instance.ARN}),
		Status:             aws.String(constants.ContainerInstanceStatusDraining),
	})
	if err != nil {
		return trace.Wrap(ConvertError(err))
	}
	return nil
}

// waitForDrain polls the cluster on a fixed interval until no tasks
// remain on the container instance or the deadline minus the safety
// margin passes. Transient poll errors are retried in the loop without
// resetting the deadline; too many consecutive failures mean the drain
// cannot be confirmed and count as a timeout
func (d *Drainer) waitForDrain(ctx context.Context, instance ContainerInstance, deadline time.Time) DrainState {
	logger := d.WithFields(log.Fields{
		constants.FieldCluster:           instance.Cluster,
		constants.FieldContainerInstance: instance.ARN,
	})
	cutoff := deadline.Add(-d.SafetyMargin)
	consecutiveErrors := 0
	for {
		if !d.Clock.Now().Before(cutoff) {
			logger.Warn("Drain deadline reached.")
			return StateTimedOut
		}
		tasks, err := d.taskSnapshot(ctx, instance)
		switch {
		case err != nil:
			consecutiveErrors++
			logger.Warnf("Failed to poll tasks (%v/%v): %v.",
				consecutiveErrors, d.MaxPollErrors, trace.UserMessage(err))
			if consecutiveErrors >= d.MaxPollErrors {
				logger.Warn("Could not confirm drain after repeated poll failures.")
				return StateTimedOut
			}
		case len(tasks) == 0:
			return StateEmpty
		default:
			consecutiveErrors = 0
			logger.Infof("%v tasks still running.", len(tasks))
		}
		select {
		case <-d.Clock.After(d.PollInterval):
		case <-ctx.Done():
			logger.Warn("Drain interrupted.")
			return StateTimedOut
		}
	}
}

// taskSnapshot returns the tasks currently running on the container
// instance. The snapshot is recomputed from cluster state on every call
// and never reused between polls
func (d *Drainer) taskSnapshot(ctx context.Context, instance ContainerInstance) ([]string, error) {
	var arns []*string
	input := &ecs.ListTasksInput{
		Cluster:           aws.String(instance.Cluster),
		ContainerInstance: aws.String(instance.ARN),
		DesiredStatus:     aws.String(constants.TaskStatusRunning),
	}
	for {
		page, err := d.ECS.ListTasksWithContext(ctx, input)
		if err != nil {
			return nil, trace.Wrap(ConvertError(err))
		}
		arns = append(arns, page.TaskArns...)
		if page.NextToken == nil {
			break
		}
		input.NextToken = page.NextToken
	}
	if len(arns) == 0 {
		return nil, nil
	}
	out, err := d.ECS.DescribeTasksWithContext(ctx, &ecs.DescribeTasksInput{
		Cluster: aws.String(instance.Cluster),
		Tasks:   arns,
	})
	if err != nil {
		return nil, trace.Wrap(ConvertError(err))
	}
	tasks := make([]string, 0, len(out.Tasks))
	for _, task := range out.Tasks {
		// the desired status filter lags the actual task state
		if aws.StringValue(task.LastStatus) == ecs.DesiredStatusStopped {
			continue
		}
		tasks = append(tasks, aws.StringValue(task.TaskArn))
	}
	return tasks, nil
}
