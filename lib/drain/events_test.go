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
	"encoding/json"
	"time"

	"github.com/gravitational/ecsdrain/lib/constants"

	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

type EventsSuite struct{}

var _ = check.Suite(&EventsSuite{})

var receivedAt = time.Date(2020, 3, 15, 12, 0, 0, 0, time.UTC)

// TestDecodesRawHookEvent tests decoding of a notification delivered
// without the SNS envelope
func (s *EventsSuite) TestDecodesRawHookEvent(c *check.C) {
	hook := HookEvent{
		InstanceID:           "i-abc",
		Type:                 constants.InstanceTerminating,
		Token:                "token-1",
		AutoScalingGroupName: "asg-1",
		LifecycleHookName:    "hook-1",
	}
	body, err := json.Marshal(hook)
	c.Assert(err, check.IsNil)

	event, err := DecodeEvent(string(body), receivedAt, 15*time.Minute)
	c.Assert(err, check.IsNil)
	c.Assert(event.HookEvent, check.DeepEquals, hook)
	c.Assert(event.Deadline, check.Equals, receivedAt.Add(15*time.Minute))
}

// TestDecodesEnvelopedHookEvent tests decoding of a notification that
// passed through an SNS topic subscription
func (s *EventsSuite) TestDecodesEnvelopedHookEvent(c *check.C) {
	hook := HookEvent{
		InstanceID:           "i-abc",
		Type:                 constants.InstanceTerminating,
		Token:                "token-1",
		AutoScalingGroupName: "asg-1",
		LifecycleHookName:    "hook-1",
	}
	event, err := DecodeEvent(mustMarshalEnvelope(hook), receivedAt, 15*time.Minute)
	c.Assert(err, check.IsNil)
	c.Assert(event.HookEvent, check.DeepEquals, hook)
	c.Assert(event.Deadline, check.Equals, receivedAt.Add(15*time.Minute))
}

// TestIgnoresUnhandledNotifications tests that notifications the drainer
// deliberately does not act on decode as NotFound so callers acknowledge
// and drop them
func (s *EventsSuite) TestIgnoresUnhandledNotifications(c *check.C) {
	bodies := []string{
		`{"Type": "SubscriptionConfirmation", "TopicArn": "arn:topic-1", "Token": "t"}`,
		`{"Type": "UnsubscribeConfirmation", "TopicArn": "arn:topic-1"}`,
		`{"LifecycleTransition": "autoscaling:EC2_INSTANCE_LAUNCHING", "EC2InstanceId": "i-abc"}`,
		`{"Event": "autoscaling:TEST_NOTIFICATION", "AutoScalingGroupName": "asg-1"}`,
	}
	for _, body := range bodies {
		event, err := DecodeEvent(body, receivedAt, 15*time.Minute)
		c.Assert(event, check.IsNil, check.Commentf("body %q", body))
		c.Assert(trace.IsNotFound(err), check.Equals, true, check.Commentf("body %q: %v", body, err))
	}
}

// TestRejectsMalformedNotifications tests that broken payloads decode as
// BadParameter, distinct from the deliberately ignored kinds
func (s *EventsSuite) TestRejectsMalformedNotifications(c *check.C) {
	bodies := []string{
		`not json at all`,
		`{"LifecycleTransition": "autoscaling:EC2_INSTANCE_TERMINATING"}`,
		`{"LifecycleTransition": "autoscaling:EC2_INSTANCE_TERMINATING", "EC2InstanceId": "i-abc"}`,
	}
	for _, body := range bodies {
		event, err := DecodeEvent(body, receivedAt, 15*time.Minute)
		c.Assert(event, check.IsNil, check.Commentf("body %q", body))
		c.Assert(trace.IsBadParameter(err), check.Equals, true, check.Commentf("body %q: %v", body, err))
	}
}

// TestRejectsMalformedEnvelopedEvent tests an envelope whose Message is
// not a lifecycle event
func (s *EventsSuite) TestRejectsMalformedEnvelopedEvent(c *check.C) {
	body, err := json.Marshal(snsEnvelope{
		Type:    constants.SNSTypeNotification,
		Message: "gibberish",
	})
	c.Assert(err, check.IsNil)

	event, err := DecodeEvent(string(body), receivedAt, 15*time.Minute)
	c.Assert(event, check.IsNil)
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
}
