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
	"net"
	"strings"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ecs"

	"github.com/gravitational/trace"
)

// ConvertError converts errors specific to AWS to trace-compatible error
func ConvertError(err error) error {
	if err == nil {
		return nil
	}
	if awsErr, ok := trace.Unwrap(err).(awserr.Error); ok {
		switch awsErr.Code() {
		case ecs.ErrCodeClusterNotFoundException:
			return trace.NotFound(awsErr.Error())
		case ecs.ErrCodeInvalidParameterException, ecs.ErrCodeClientException:
			return trace.BadParameter(awsErr.Error())
		case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
			return trace.AccessDenied(awsErr.Error())
		}
	}
	return err
}

// isTransientError returns true for errors worth retrying: throttling,
// temporary service trouble and network blips. Everything else escalates
// to the conservative outcome immediately
func isTransientError(err error) bool {
	err = trace.Unwrap(err)
	if err == nil {
		return false
	}
	if request.IsErrorRetryable(err) || request.IsErrorThrottle(err) {
		return true
	}
	if awsErr, ok := err.(awserr.Error); ok {
		switch awsErr.Code() {
		case "Throttling", "ThrottlingException", "RequestLimitExceeded",
			"ServiceUnavailable", "RequestTimeout", "RequestTimeoutException",
			ecs.ErrCodeServerException:
			return true
		}
		return false
	}
	if _, ok := err.(net.Error); ok {
		return true
	}
	return false
}

// isLifecycleActionGone detects the validation error the auto scaling
// API returns when the lifecycle action has already been completed or
// has timed out. A duplicate completion call is not an error
func isLifecycleActionGone(err error) bool {
	awsErr, ok := trace.Unwrap(err).(awserr.Error)
	if !ok {
		return false
	}
	return awsErr.Code() == "ValidationError" &&
		strings.Contains(awsErr.Message(), "No active Lifecycle Action")
}
