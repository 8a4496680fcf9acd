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

/*
package drain safely retires ECS container instances whose auto scaling
group has announced termination.

Design
------

* The auto scaling group is configured with a termination lifecycle hook
  that publishes a notification and pauses the instance shutdown until
  the hook's heartbeat timeout (900 seconds) elapses or the action is
  completed explicitly. The hook's default result is ABANDON so that an
  unresolved drain never silently allows termination.

* Notifications arrive either on an SQS queue subscribed to the topic
  (the long-running daemon) or directly as SNS records (the Lambda
  frontend). Delivery is at least once; every step of the handling below
  is idempotent per lifecycle action token.

* For each termination event the coordinator resolves the EC2 instance
  to its container instance in the cluster, puts it into the DRAINING
  state (once - a repeat delivery finds it already draining), and then
  polls the cluster on a fixed interval until no tasks remain or the
  event deadline minus a safety margin is reached. Tasks are never
  stopped by the coordinator; the scheduler and task owners remain in
  charge of that.

* The final state is reported back to the auto scaling group with
  CompleteLifecycleAction: CONTINUE when the instance drained (or was
  already deregistered), ABANDON when the drain could not be confirmed
  in time. The safety margin guarantees the completion call goes out
  before the hook's own heartbeat timeout fires.

Each event is handled by an independent goroutine with no shared mutable
state; all cluster and task state is read fresh from the ECS API on
every poll.
*/
package drain
