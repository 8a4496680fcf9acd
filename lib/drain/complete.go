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
	"github.com/gravitational/ecsdrain/lib/defaults"
	"github.com/gravitational/ecsdrain/lib/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/autoscaling"

	"github.com/cenkalti/backoff"
	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// completeLifecycle reports the outcome for the event's lifecycle action
// token back to the auto scaling group. The call is retried with backoff
// on transient failures, always with the same token and result; a
// response indicating the action is no longer active means a previous
// delivery already completed it and counts as success.
//
// When every attempt fails the event is logged as unresolved and the
// hook's configured default result (ABANDON) acts as the safety net
func (d *Drainer) completeLifecycle(ctx context.Context, event TerminationEvent, result string) error {
	logger := d.WithFields(log.Fields{
		constants.FieldInstanceID:       event.InstanceID,
		constants.FieldAutoScalingGroup: event.AutoScalingGroupName,
		"result":                        result,
	})
	err := utils.RetryWithInterval(ctx, utils.NewExponentialBackOff(defaults.CompleteTimeout), func() error {
		_, err := d.AutoScaling.CompleteLifecycleActionWithContext(ctx, &autoscaling.CompleteLifecycleActionInput{
			AutoScalingGroupName:  aws.String(event.AutoScalingGroupName),
			LifecycleHookName:     aws.String(event.LifecycleHookName),
			LifecycleActionToken:  aws.String(event.Token),
			LifecycleActionResult: aws.String(result),
			InstanceId:            aws.String(event.InstanceID),
		})
		if err == nil {
			return nil
		}
		if isLifecycleActionGone(err) {
			logger.Info("Lifecycle action has already been completed.")
			return nil
		}
		if !isTransientError(err) {
			return &backoff.PermanentError{Err: err}
		}
		return trace.Wrap(err)
	})
	if err != nil {
		logger.WithError(err).Error("Failed to complete lifecycle action, " +
			"relying on the hook's default result.")
		return trace.Wrap(err)
	}
	logger.Info("Completed lifecycle action.")
	return nil
}
