/*
Copyright SUSE LLC.

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

package cli

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReadsEnvironment(t *testing.T) {
	os.Setenv("COMPOSER_DEBUG", "1")
	os.Setenv("COMPOSER_WORKING_DIR", "/tmp/project")
	defer os.Unsetenv("COMPOSER_DEBUG")
	defer os.Unsetenv("COMPOSER_WORKING_DIR")

	s := New()
	assert.True(t, s.Debug)
	assert.Equal(t, "/tmp/project", s.WorkingDir)
	assert.Equal(t, "vendor", s.VendorDir)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	s := New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	s.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--no-colors", "--working-dir", "/elsewhere"}))

	assert.True(t, s.NoColors)
	assert.Equal(t, "/elsewhere", s.WorkingDir)
}
