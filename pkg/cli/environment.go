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

/*Package cli describes the operating environment of the composer CLI:
environment variables first, overridden by persistent flags.
*/
package cli

import (
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// EnvSettings is the composer environment.
type EnvSettings struct {
	// Debug enables verbose solver and installer output.
	Debug bool
	// NoColors disables colorized output.
	NoColors bool
	// NoEmojis disables emojis on output.
	NoEmojis bool
	// WorkingDir is where composer.json and composer.lock live.
	WorkingDir string
	// VendorDir is where packages get installed, relative to WorkingDir
	// unless absolute.
	VendorDir string
}

func New() *EnvSettings {
	env := &EnvSettings{
		WorkingDir: envOr("COMPOSER_WORKING_DIR", "."),
		VendorDir:  envOr("COMPOSER_VENDOR_DIR", "vendor"),
	}
	env.Debug, _ = strconv.ParseBool(os.Getenv("COMPOSER_DEBUG"))
	env.NoColors, _ = strconv.ParseBool(os.Getenv("COMPOSER_NOCOLORS"))
	env.NoEmojis, _ = strconv.ParseBool(os.Getenv("COMPOSER_NOEMOJIS"))
	return env
}

// AddFlags binds the environment to a flag set.
func (s *EnvSettings) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&s.Debug, "verbose", s.Debug, "enable verbose output")
	fs.BoolVar(&s.NoColors, "no-colors", s.NoColors, "disable colors on output")
	fs.BoolVar(&s.NoEmojis, "no-emojis", s.NoEmojis, "disable emojis on output")
	fs.StringVarP(&s.WorkingDir, "working-dir", "d", s.WorkingDir, "use the given directory as working directory")
	fs.StringVar(&s.VendorDir, "vendor-dir", s.VendorDir, "install packages into the given directory")
}

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}
