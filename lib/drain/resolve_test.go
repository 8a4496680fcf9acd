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
	"encoding/base64"

	"gopkg.in/check.v1"
)

type ResolveSuite struct{}

var _ = check.Suite(&ResolveSuite{})

func (s *ResolveSuite) TestExtractsClusterNameFromUserData(c *check.C) {
	testCases := []struct {
		userData string
		expected string
		comment  string
	}{
		{
			userData: "#!/bin/bash\necho ECS_CLUSTER=prod >> /etc/ecs/ecs.config\n",
			expected: "prod",
			comment:  "launch configuration shell script",
		},
		{
			userData: `ECS_CLUSTER="prod"`,
			expected: "prod",
			comment:  "quoted assignment",
		},
		{
			userData: "ECS_CLUSTER='prod'",
			expected: "prod",
			comment:  "single quoted assignment",
		},
		{
			userData: "#!/bin/bash\nyum update -y\n",
			expected: "default",
			comment:  "no assignment falls back to the default cluster",
		},
		{
			userData: "echo ECS_CLUSTER= >> /etc/ecs/ecs.config",
			expected: "default",
			comment:  "empty assignment falls back to the default cluster",
		},
		{
			userData: "",
			expected: "default",
			comment:  "empty user data",
		},
	}
	for _, tc := range testCases {
		encoded := base64.StdEncoding.EncodeToString([]byte(tc.userData))
		c.Assert(clusterNameFromUserData(encoded), check.Equals, tc.expected,
			check.Commentf(tc.comment))
	}
}

func (s *ResolveSuite) TestFallsBackOnUndecodableUserData(c *check.C) {
	c.Assert(clusterNameFromUserData("not base64!"), check.Equals, "default")
}
