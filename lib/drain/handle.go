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

	"github.com/gravitational/ecsdrain/lib/constants"

	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// HandleEvent runs the end to end handling of a single termination
// event: resolve the container instance, drain it, report the outcome.
// Exactly one outcome is reported per event, also on error paths - any
// failure to establish or confirm the drain maps to ABANDON, while an
// instance that is already gone from the cluster maps to CONTINUE
func (d *Drainer) HandleEvent(ctx context.Context, event TerminationEvent) error {
	logger := d.WithFields(log.Fields{
		constants.FieldInstanceID:       event.InstanceID,
		constants.FieldAutoScalingGroup: event.AutoScalingGroupName,
	})
	logger.WithField("deadline", event.Deadline).Info("Received termination event.")

	cluster := d.ClusterName
	if cluster == "" {
		var err error
		cluster, err = d.discoverClusterName(ctx, event.InstanceID)
		if err != nil {
			logger.Errorf("Failed to discover cluster name: %v.", trace.DebugReport(err))
			return d.completeLifecycle(ctx, event, constants.LifecycleActionAbandon)
		}
	}
	logger = logger.WithField(constants.FieldCluster, cluster)

	instance, err := d.findContainerInstance(ctx, cluster, event.InstanceID)
	if err != nil {
		if trace.IsNotFound(err) {
			logger.Info("Container instance is already deregistered.")
			return d.completeLifecycle(ctx, event, constants.LifecycleActionContinue)
		}
		logger.Errorf("Failed to resolve container instance: %v.", trace.DebugReport(err))
		return d.completeLifecycle(ctx, event, constants.LifecycleActionAbandon)
	}

	if err := d.startDraining(ctx, *instance); err != nil {
		logger.Errorf("Failed to start draining: %v.", trace.DebugReport(err))
		return d.completeLifecycle(ctx, event, constants.LifecycleActionAbandon)
	}

	if state := d.waitForDrain(ctx, *instance, event.Deadline); state != StateEmpty {
		logger.Warn("Could not confirm drain before the deadline.")
		return d.completeLifecycle(ctx, event, constants.LifecycleActionAbandon)
	}

	logger.Info("Container instance has drained.")
	return d.completeLifecycle(ctx, event, constants.LifecycleActionContinue)
}
