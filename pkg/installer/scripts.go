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

package installer

import (
	"os/exec"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	shellwords "github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

// Dispatcher runs the user's script hooks around operations. Scripts map
// an event name (pre-package-install, post-package-update, ...) to shell
// command lines.
type Dispatcher struct {
	scripts    map[string][]string
	workingDir string
	logger     log.Logger
}

func NewDispatcher(scripts map[string][]string, workingDir string, logger log.Logger) *Dispatcher {
	return &Dispatcher{scripts: scripts, workingDir: workingDir, logger: logger}
}

// RunEvent executes every command registered for the event, in order. The
// first failing command aborts the event.
func (d *Dispatcher) RunEvent(event string) error {
	if d == nil {
		return nil
	}
	for _, line := range d.scripts[event] {
		args, err := shellwords.Parse(line)
		if err != nil {
			return errors.Wrapf(err, "script %q of event %s is not parseable", line, event)
		}
		if len(args) == 0 {
			continue
		}
		d.logger.Debugf("running %s script: %s", event, line)

		out := logio.NewWriter(d.logger, log.InfoLevel)
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Dir = d.workingDir
		cmd.Stdout = out
		cmd.Stderr = out
		if err := cmd.Run(); err != nil {
			return errors.Wrapf(err, "script %q of event %s failed", line, event)
		}
	}
	return nil
}
