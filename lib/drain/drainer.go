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
	"time"

	gaws "github.com/gravitational/ecsdrain/lib/cloudprovider/aws"
	"github.com/gravitational/ecsdrain/lib/constants"
	"github.com/gravitational/ecsdrain/lib/defaults"

	"github.com/aws/aws-sdk-go/service/autoscaling"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/sqs"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// Drainer drains ECS container instances in response to auto scaling
// group termination lifecycle events
type Drainer struct {
	// Config is Drainer config
	Config
	*log.Entry
}

// Config is drainer config
type Config struct {
	// ClusterName is the ECS cluster the terminating instances belong to.
	// When empty, the cluster name is discovered from the instance user
	// data of each terminating instance
	ClusterName string
	// QueueName is the SQS queue subscribed to the lifecycle notification
	// topic, only used by the queue-polling frontend
	QueueName string
	// Region is the AWS region, resolved from the environment or instance
	// metadata when empty
	Region string
	// HeartbeatTimeout is the heartbeat timeout configured on the
	// termination lifecycle hook, used to compute event deadlines
	HeartbeatTimeout time.Duration
	// PollInterval is the pause between drain poll cycles
	PollInterval time.Duration
	// SafetyMargin is reserved at the tail of the deadline for the
	// lifecycle completion call
	SafetyMargin time.Duration
	// MaxPollErrors caps consecutive failed poll cycles before the drain
	// is treated as timed out
	MaxPollErrors int
	// Clock is used for all deadline arithmetic and poll pacing
	Clock clockwork.Clock
	// ECS is a client for the Elastic Container Service API
	ECS ECS
	// AutoScaling is a client for the AWS Auto Scaling API
	AutoScaling AutoScaling
	// Queue is Simple Queue Service, AWS pub/sub queue
	Queue SQS
	// Cloud is Elastic Compute Cloud, AWS cloud service
	Cloud EC2
}

// CheckAndSetDefaults checks and sets default values
func (cfg *Config) CheckAndSetDefaults() error {
	if cfg.HeartbeatTimeout == 0 {
		cfg.HeartbeatTimeout = defaults.HeartbeatTimeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaults.DrainPollInterval
	}
	if cfg.SafetyMargin == 0 {
		cfg.SafetyMargin = defaults.DrainSafetyMargin
	}
	if cfg.SafetyMargin >= cfg.HeartbeatTimeout {
		return trace.BadParameter("safety margin %v must be less than heartbeat timeout %v",
			cfg.SafetyMargin, cfg.HeartbeatTimeout)
	}
	if cfg.MaxPollErrors == 0 {
		cfg.MaxPollErrors = defaults.MaxConsecutivePollErrors
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return nil
}

// New returns a new drainer
func New(cfg Config) (*Drainer, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	if cfg.ECS == nil || cfg.AutoScaling == nil || cfg.Queue == nil || cfg.Cloud == nil {
		sess, err := gaws.NewSession(cfg.Region)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		if cfg.ECS == nil {
			cfg.ECS = ecs.New(sess)
		}
		if cfg.AutoScaling == nil {
			cfg.AutoScaling = autoscaling.New(sess)
		}
		if cfg.Queue == nil {
			cfg.Queue = sqs.New(sess)
		}
		if cfg.Cloud == nil {
			cfg.Cloud = ec2.New(sess)
		}
	}
	return &Drainer{
		Config: cfg,
		Entry:  log.WithFields(log.Fields{trace.Component: constants.ComponentDrain}),
	}, nil
}
