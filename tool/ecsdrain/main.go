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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	gaws "github.com/gravitational/ecsdrain/lib/cloudprovider/aws"
	"github.com/gravitational/ecsdrain/lib/drain"
	"github.com/gravitational/ecsdrain/lib/utils"

	"github.com/gravitational/trace"
	"github.com/gravitational/version"
	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	if err := run(); err != nil {
		log.Error(trace.DebugReport(err))
		os.Exit(255)
	}
}

func run() error {
	app := kingpin.New("ecsdrain", "Drains ECS container instances terminated by their auto scaling group.")

	var (
		debug = app.Flag("debug", "Enable debug logging.").
			Envar("ECSDRAIN_DEBUG").Bool()

		crun         = app.Command("run", "Poll the notification queue and drain terminating instances.")
		queueName    = crun.Flag("queue", "Name of the SQS queue subscribed to the lifecycle notification topic.").
				Envar("ECSDRAIN_QUEUE").Required().String()
		clusterName  = crun.Flag("cluster", "Name of the ECS cluster. Discovered from instance user data when unset.").
				Envar("ECSDRAIN_CLUSTER").String()
		region       = crun.Flag("region", "AWS region. Resolved from the environment or instance metadata when unset.").
				Envar("AWS_REGION").String()
		heartbeat    = crun.Flag("heartbeat-timeout", "Heartbeat timeout of the termination lifecycle hook.").
				Envar("ECSDRAIN_HEARTBEAT_TIMEOUT").Default("900s").Duration()
		pollInterval = crun.Flag("poll-interval", "Interval between drain poll cycles.").
				Envar("ECSDRAIN_POLL_INTERVAL").Default("5s").Duration()
		safetyMargin = crun.Flag("safety-margin", "Time reserved before the deadline for the completion call.").
				Envar("ECSDRAIN_SAFETY_MARGIN").Default("30s").Duration()

		cversion = app.Command("version", "Print version information.")
	)

	cmd, err := app.Parse(os.Args[1:])
	if err != nil {
		return trace.Wrap(err)
	}

	level := log.InfoLevel
	if *debug {
		level = log.DebugLevel
	}
	utils.InitLogging(level)

	switch cmd {
	case crun.FullCommand():
		return trace.Wrap(runDrainer(drain.Config{
			ClusterName:      *clusterName,
			QueueName:        *queueName,
			Region:           *region,
			HeartbeatTimeout: *heartbeat,
			PollInterval:     *pollInterval,
			SafetyMargin:     *safetyMargin,
		}))
	case cversion.FullCommand():
		version.Print()
		return nil
	}
	return nil
}

func runDrainer(config drain.Config) error {
	if config.Region == "" {
		if onAWS, err := gaws.IsRunningOnAWS(); err == nil && !onAWS {
			log.Warn("No region configured and not running on an EC2 instance.")
		}
	}
	drainer, err := drain.New(config)
	if err != nil {
		return trace.Wrap(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)

	queueURL, err := drainer.GetQueueURL(ctx)
	if err != nil {
		return trace.Wrap(err)
	}

	drainer.ProcessEvents(ctx, queueURL)
	drainer.Info("Shutting down.")
	return nil
}

func watchSignals(cancel context.CancelFunc) {
	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-signalC
	log.WithField("signal", sig).Info("Received termination signal.")
	cancel()
}
