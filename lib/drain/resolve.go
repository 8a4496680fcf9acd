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
	"encoding/base64"
	"strings"

	"github.com/gravitational/ecsdrain/lib/constants"
	"github.com/gravitational/ecsdrain/lib/defaults"
	"github.com/gravitational/ecsdrain/lib/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ecs"

	"github.com/cenkalti/backoff"
	"github.com/gravitational/trace"
)

// ContainerInstance identifies a cluster node eligible to run tasks
type ContainerInstance struct {
	// Cluster is the name of the ECS cluster the node is registered in
	Cluster string
	// ARN is the container instance ARN within the cluster
	ARN string
	// Status is the reported container instance status
	Status string
}

// findContainerInstance maps the terminating EC2 instance to its
// container instance in the cluster. Transient lookup failures are
// retried with exponential backoff; a missing instance is reported as
// NotFound, which the coordinator treats as an already deregistered
// node rather than an error
func (d *Drainer) findContainerInstance(ctx context.Context, cluster, instanceID string) (instance *ContainerInstance, err error) {
	b := utils.NewExponentialBackOff(defaults.ResolveTimeout)
	err = utils.RetryWithInterval(ctx, b, func() error {
		instance, err = d.lookupContainerInstance(ctx, cluster, instanceID)
		if err == nil {
			return nil
		}
		if isTransientError(err) {
			return trace.Wrap(err)
		}
		return &backoff.PermanentError{Err: err}
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return instance, nil
}

func (d *Drainer) lookupContainerInstance(ctx context.Context, cluster, instanceID string) (*ContainerInstance, error) {
	input := &ecs.ListContainerInstancesInput{
		Cluster: aws.String(cluster),
	}
	for {
		page, err := d.ECS.ListContainerInstancesWithContext(ctx, input)
		if err != nil {
			return nil, trace.Wrap(ConvertError(err))
		}
		if len(page.ContainerInstanceArns) == 0 {
			break
		}
		out, err := d.ECS.DescribeContainerInstancesWithContext(ctx, &ecs.DescribeContainerInstancesInput{
			Cluster:            aws.String(cluster),
			ContainerInstances: page.ContainerInstanceArns,
		})
		if err != nil {
			return nil, trace.Wrap(ConvertError(err))
		}
		for _, ci := range out.ContainerInstances {
			if aws.StringValue(ci.Ec2InstanceId) == instanceID {
				return &ContainerInstance{
					Cluster: cluster,
					ARN:     aws.StringValue(ci.ContainerInstanceArn),
					Status:  aws.StringValue(ci.Status),
				}, nil
			}
		}
		if page.NextToken == nil {
			break
		}
		input.NextToken = page.NextToken
	}
	return nil, trace.NotFound("no container instance in cluster %v matches %v",
		cluster, instanceID)
}

// discoverClusterName determines the cluster the instance belongs to
// from the ECS_CLUSTER variable in its user data, the same way the ECS
// agent on the instance does
func (d *Drainer) discoverClusterName(ctx context.Context, instanceID string) (string, error) {
	var userData string
	err := utils.Retry(defaults.RetryInterval, defaults.RetryAttempts, func() error {
		out, err := d.Cloud.DescribeInstanceAttributeWithContext(ctx, &ec2.DescribeInstanceAttributeInput{
			InstanceId: aws.String(instanceID),
			Attribute:  aws.String(ec2.InstanceAttributeNameUserData),
		})
		if err != nil {
			if isTransientError(err) {
				return utils.Continue("DescribeInstanceAttribute(%v): %v", instanceID, err)
			}
			return utils.Abort(ConvertError(err))
		}
		if out.UserData != nil {
			userData = aws.StringValue(out.UserData.Value)
		}
		return nil
	})
	if err != nil {
		return "", trace.Wrap(err)
	}
	return clusterNameFromUserData(userData), nil
}

// clusterNameFromUserData extracts the ECS_CLUSTER assignment from the
// base64-encoded instance user data, falling back to the default cluster
// like the ECS agent does
func clusterNameFromUserData(encoded string) string {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return constants.DefaultClusterName
	}
	for _, token := range strings.Fields(string(decoded)) {
		if !strings.Contains(token, constants.ClusterNameUserDataVar) {
			continue
		}
		parts := strings.SplitN(token, "=", 2)
		if len(parts) != 2 || parts[1] == "" {
			continue
		}
		return strings.Trim(parts[1], `"'`)
	}
	return constants.DefaultClusterName
}
