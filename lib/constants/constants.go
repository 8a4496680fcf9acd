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

// package constants contains global constants
// shared between packages
package constants

const (
	// ComponentDrain is the logging component of the draining coordinator
	ComponentDrain = "drain"

	// InstanceTerminating is the AWS instance terminating lifecycle transition
	InstanceTerminating = "autoscaling:EC2_INSTANCE_TERMINATING"
	// InstanceLaunching is the AWS instance launching lifecycle transition
	InstanceLaunching = "autoscaling:EC2_INSTANCE_LAUNCHING"
	// TestNotification is the transition AWS sends when a lifecycle hook
	// is created with notifications enabled
	TestNotification = "autoscaling:TEST_NOTIFICATION"

	// LifecycleActionContinue tells the auto scaling group to proceed
	// with the instance termination
	LifecycleActionContinue = "CONTINUE"
	// LifecycleActionAbandon tells the auto scaling group to apply its
	// abandon semantics to the terminating instance
	LifecycleActionAbandon = "ABANDON"

	// ContainerInstanceStatusActive is the status of a container instance
	// accepting new task placements
	ContainerInstanceStatusActive = "ACTIVE"
	// ContainerInstanceStatusDraining is the status of a container instance
	// that no longer accepts new task placements
	ContainerInstanceStatusDraining = "DRAINING"
	// ContainerInstanceStatusInactive is the status of a deregistered
	// container instance
	ContainerInstanceStatusInactive = "INACTIVE"

	// TaskStatusRunning is the desired status filter for running ECS tasks
	TaskStatusRunning = "RUNNING"

	// SNSTypeNotification is the message type of an SNS delivery envelope
	SNSTypeNotification = "Notification"
	// SNSTypeSubscriptionConfirmation is the message type SNS sends when
	// a topic subscription awaits confirmation
	SNSTypeSubscriptionConfirmation = "SubscriptionConfirmation"

	// ClusterNameUserDataVar is the variable that carries the cluster name
	// in the instance user data of ECS-optimized hosts
	ClusterNameUserDataVar = "ECS_CLUSTER"
	// DefaultClusterName is the cluster name the ECS agent assumes when
	// none is configured
	DefaultClusterName = "default"

	// FieldInstanceID is a logging field with the EC2 instance id
	FieldInstanceID = "instance"
	// FieldAutoScalingGroup is a logging field with the scaling group name
	FieldAutoScalingGroup = "asg_name"
	// FieldCluster is a logging field with the ECS cluster name
	FieldCluster = "cluster"
	// FieldContainerInstance is a logging field with the container instance ARN
	FieldContainerInstance = "container_instance"
)
