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
	"encoding/json"
	"time"

	"github.com/gravitational/ecsdrain/lib/constants"
	"github.com/gravitational/ecsdrain/lib/defaults"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"

	"github.com/gravitational/trace"
)

// HookEvent is a lifecycle hook event posted by the auto scaling group
type HookEvent struct {
	// InstanceID is AWS instance ID
	InstanceID string `json:"EC2InstanceId"`
	// Type is event type
	Type string `json:"LifecycleTransition"`
	// Token is the token to use when interacting with the lifecycle event
	Token string `json:"LifecycleActionToken"`
	// AutoScalingGroupName is the name of the AWS ASG
	AutoScalingGroupName string `json:"AutoScalingGroupName"`
	// LifecycleHookName is the name of the AWS Lifecycle hook
	LifecycleHookName string `json:"LifecycleHookName"`
}

// TerminationEvent is a decoded instance terminating hook event together
// with the deadline by which its handling must have produced an outcome
type TerminationEvent struct {
	HookEvent
	// Deadline is the time the lifecycle hook's heartbeat timeout fires
	Deadline time.Time `json:"-"`
	// QueueURL is the queue this event was received on, if any
	QueueURL string `json:"-"`
	// ReceiptHandle is SQS receipt handle
	ReceiptHandle string `json:"-"`
}

// snsEnvelope is the delivery envelope SNS wraps around the hook event
// when the notification passes through a topic subscription
type snsEnvelope struct {
	Type     string
	TopicARN string `json:"TopicArn"`
	Message  string
}

// DecodeEvent decodes a single notification body into a termination
// event. The body is either the raw lifecycle hook JSON or an SNS
// delivery envelope with the hook JSON embedded in its Message field.
//
// Notifications that are deliberately not handled - subscription
// confirmations, hook test notifications and non-terminating transitions -
// are reported as a NotFound error so callers can acknowledge and drop
// them; structurally broken payloads are reported as BadParameter
func DecodeEvent(body string, receivedAt time.Time, heartbeatTimeout time.Duration) (*TerminationEvent, error) {
	payload := body
	var envelope snsEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, trace.BadParameter("notification is not valid JSON: %v", err)
	}
	switch envelope.Type {
	case "":
		// raw hook event, no envelope
	case constants.SNSTypeNotification:
		payload = envelope.Message
	case constants.SNSTypeSubscriptionConfirmation:
		return nil, trace.NotFound("subscription confirmation for topic %v", envelope.TopicARN)
	default:
		return nil, trace.NotFound("unsupported notification type %q", envelope.Type)
	}
	var hook HookEvent
	if err := json.Unmarshal([]byte(payload), &hook); err != nil {
		return nil, trace.BadParameter("malformed lifecycle event: %v", err)
	}
	if hook.Type != constants.InstanceTerminating {
		return nil, trace.NotFound("not an instance terminating transition: %q", hook.Type)
	}
	if hook.InstanceID == "" || hook.AutoScalingGroupName == "" ||
		hook.Token == "" || hook.LifecycleHookName == "" {
		return nil, trace.BadParameter("lifecycle event is missing required fields: %#v", hook)
	}
	return &TerminationEvent{
		HookEvent: hook,
		Deadline:  receivedAt.Add(heartbeatTimeout),
	}, nil
}

// GetQueueURL returns the URL of the configured notification queue
func (d *Drainer) GetQueueURL(ctx context.Context) (string, error) {
	if d.QueueName == "" {
		return "", trace.BadParameter("missing parameter QueueName")
	}
	out, err := d.Queue.GetQueueUrlWithContext(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(d.QueueName),
	})
	if err != nil {
		return "", trace.Wrap(err)
	}
	return aws.StringValue(out.QueueUrl), nil
}

// ProcessEvents listens for lifecycle notifications on the SQS queue and
// handles each termination event in its own goroutine. It returns when
// the context is cancelled
func (d *Drainer) ProcessEvents(ctx context.Context, queueURL string) {
	d.WithField("queue", queueURL).Info("Start processing lifecycle notifications.")
	for {
		out, err := d.Queue.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: aws.Int64(1),
			VisibilityTimeout:   aws.Int64(defaults.QueueVisibilityTimeout),
			WaitTimeSeconds:     aws.Int64(defaults.QueueWaitSeconds),
		})
		if err != nil {
			select {
			case <-ctx.Done():
				d.WithField("queue", queueURL).Info("Stop processing lifecycle notifications.")
				return
			default:
			}
			d.Errorf("Receive message error: %v.", trace.DebugReport(err))
			continue
		}
		for _, m := range out.Messages {
			d.Debugf("Got message body: %q.", aws.StringValue(m.Body))
			event, err := DecodeEvent(aws.StringValue(m.Body), d.Clock.Now(), d.HeartbeatTimeout)
			if err != nil {
				if trace.IsNotFound(err) {
					d.Debugf("Ignoring notification: %v.", err)
				} else {
					d.Warnf("Dropping malformed notification: %v.", err)
				}
				d.deleteMessage(ctx, queueURL, m)
				continue
			}
			event.QueueURL = queueURL
			event.ReceiptHandle = aws.StringValue(m.ReceiptHandle)
			go func(event TerminationEvent) {
				if err := d.HandleEvent(ctx, event); err != nil {
					d.Errorf("Failed to handle termination of %v: %v.",
						event.InstanceID, trace.DebugReport(err))
				}
			}(*event)
			d.deleteMessage(ctx, queueURL, m)
		}
	}
}

// deleteMessage acknowledges a processed notification. Deletion failures
// are only logged: a redelivered event is handled idempotently
func (d *Drainer) deleteMessage(ctx context.Context, queueURL string, m *sqs.Message) {
	_, err := d.Queue.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		d.Errorf("Failed to delete message: %v.", trace.DebugReport(err))
	}
}
