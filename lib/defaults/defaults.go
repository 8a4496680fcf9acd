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

// package defaults collects the tunable knobs of the draining
// coordinator in one place
package defaults

import "time"

const (
	// HeartbeatTimeout is the heartbeat timeout configured on the
	// termination lifecycle hook. The drain deadline of every event is
	// computed from it, so it must match the hook configuration
	HeartbeatTimeout = 900 * time.Second

	// DrainPollInterval is how often the coordinator polls the cluster
	// for tasks still running on a draining container instance
	DrainPollInterval = 5 * time.Second

	// DrainSafetyMargin is reserved at the tail of the drain deadline so
	// the lifecycle completion call has time to go out before the hook's
	// own heartbeat timeout fires
	DrainSafetyMargin = 30 * time.Second

	// MaxConsecutivePollErrors caps how many poll cycles in a row may
	// fail before the drain is conservatively treated as timed out
	MaxConsecutivePollErrors = 5

	// ResolveTimeout bounds retries of the container instance lookup
	ResolveTimeout = 30 * time.Second

	// CompleteTimeout bounds retries of the lifecycle completion call
	CompleteTimeout = 2 * time.Minute

	// QueueWaitSeconds is the SQS long poll duration
	QueueWaitSeconds = 5

	// QueueVisibilityTimeout is the visibility timeout requested when
	// receiving notifications from the queue
	QueueVisibilityTimeout = 30

	// RetryInterval is the interval between generic retry attempts
	RetryInterval = 5 * time.Second

	// RetryAttempts is a default number of generic retry attempts
	RetryAttempts = 3
)
