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

// Lambda frontend for the draining coordinator, subscribed directly to
// the lifecycle notification topic. The function timeout must exceed
// the hook's heartbeat timeout so a full drain fits into one invocation
package main

import (
	"context"
	"os"
	"time"

	"github.com/gravitational/ecsdrain/lib/drain"
	"github.com/gravitational/ecsdrain/lib/utils"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

func main() {
	utils.InitLogging(log.InfoLevel)
	drainer, err := newDrainer()
	if err != nil {
		log.Fatalf("Failed to initialize drainer: %v.", trace.DebugReport(err))
	}
	lambda.Start(func(ctx context.Context, event events.SNSEvent) error {
		return handle(ctx, drainer, event)
	})
}

func newDrainer() (*drain.Drainer, error) {
	config := drain.Config{
		ClusterName: envString("ECSDRAIN_CLUSTER"),
	}
	for _, v := range []struct {
		name string
		d    *time.Duration
	}{
		{"ECSDRAIN_HEARTBEAT_TIMEOUT", &config.HeartbeatTimeout},
		{"ECSDRAIN_POLL_INTERVAL", &config.PollInterval},
		{"ECSDRAIN_SAFETY_MARGIN", &config.SafetyMargin},
	} {
		if err := envDuration(v.name, v.d); err != nil {
			return nil, trace.Wrap(err)
		}
	}
	drainer, err := drain.New(config)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return drainer, nil
}

func envString(name string) string {
	return os.Getenv(name)
}

func envDuration(name string, out *time.Duration) error {
	value := os.Getenv(name)
	if value == "" {
		return nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return trace.BadParameter("invalid %v: %v", name, err)
	}
	*out = duration
	return nil
}

// handle drains the instances announced in the SNS records. Ignorable
// and malformed notifications are acknowledged with a nil error so SNS
// does not redeliver them
func handle(ctx context.Context, drainer *drain.Drainer, event events.SNSEvent) error {
	for _, record := range event.Records {
		termination, err := drain.DecodeEvent(record.SNS.Message, time.Now(), drainer.HeartbeatTimeout)
		if err != nil {
			if trace.IsNotFound(err) {
				log.Debugf("Ignoring notification: %v.", err)
			} else {
				log.Warnf("Dropping malformed notification: %v.", err)
			}
			continue
		}
		if err := drainer.HandleEvent(ctx, *termination); err != nil {
			return trace.Wrap(err)
		}
	}
	return nil
}
