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

// package aws provides access to the AWS environment the coordinator
// runs in
package aws

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/ec2metadata"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/gravitational/trace"
)

// IsRunningOnAWS indicates if the current running process appears to be
// running on an AWS instance by checking the availability of the AWS
// metadata API
func IsRunningOnAWS() (bool, error) {
	session, err := session.NewSession()
	if err != nil {
		return false, trace.Wrap(err)
	}
	metadata := ec2metadata.New(session)
	return metadata.Available(), nil
}

// NewSession creates an AWS API session in the specified region.
// If the region is empty, it is resolved from the environment or, when
// running on an EC2 instance, from the instance metadata service
func NewSession(region string) (*session.Session, error) {
	if region == "" {
		sess, err := session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
		})
		if err != nil {
			return nil, trace.Wrap(err)
		}
		if aws.StringValue(sess.Config.Region) != "" {
			return sess, nil
		}
		region, err = localRegion(sess)
		if err != nil {
			return nil, trace.Wrap(err)
		}
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return sess, nil
}

// localRegion determines the region of the instance this process runs on
// from the availability zone reported by the metadata service
func localRegion(sess *session.Session) (string, error) {
	metadata := ec2metadata.New(sess)
	zone, err := metadata.GetMetadata("placement/availability-zone")
	if err != nil {
		return "", trace.Wrap(err, "failed to fetch availability zone from ec2 metadata service")
	}
	if len(zone) == 0 {
		return "", trace.NotFound("could not determine availability zone")
	}
	return zone[:len(zone)-1], nil
}
