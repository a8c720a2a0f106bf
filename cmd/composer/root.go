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

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/log-go"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stloyd/composer/pkg/action"
	"github.com/stloyd/composer/pkg/lockfile"
	"github.com/stloyd/composer/pkg/repo"
)

var globalUsage = `Usage: composer command

A dependency manager for packages, resolving version constraints with a
conflict-driven solver.
`

func newRootCmd(logger log.Logger, args []string) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:          "composer",
		Short:        "A package dependency manager",
		Long:         globalUsage,
		SilenceUsage: false,
	}

	flags := cmd.PersistentFlags()
	settings.AddFlags(flags)

	cmd.AddCommand(
		newInstallCmd(logger),
		newUpdateCmd(logger),
		newRemoveCmd(logger),
	)

	flags.ParseErrorsWhitelist.UnknownFlags = true
	err := flags.Parse(args)

	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		log.Errorf("failed while parsing flags for %s: %s", args, err)
		return nil, err
	}

	if settings.NoColors {
		color.NoColor = true // disable colorized output
	}

	return cmd, nil
}

// newActionConfig assembles the world the actions operate on: the lock
// file as the installed baseline, plus every configured repository.
func newActionConfig(logger log.Logger) (*action.Configuration, error) {
	lockPath := filepath.Join(settings.WorkingDir, "composer.lock")
	lock, err := lockfile.Read(lockPath)
	if err != nil {
		return nil, err
	}
	installed, err := lock.ToRepository("installed")
	if err != nil {
		return nil, err
	}

	cfg := &action.Configuration{
		Installed:    installed,
		LockFilePath: lockPath,
		Logger:       logger,
	}

	rf, err := repo.LoadFile(filepath.Join(settings.WorkingDir, "repositories.yaml"))
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			return nil, err
		}
		// no repositories file means solving against the lock only
		logger.Debug("No repositories file present, continuing…")
		return cfg, nil
	}
	for _, entry := range rf.Repositories {
		switch entry.Type {
		case "", "file":
			r, err := repo.LoadDefinitions(entry.URL, entry.Name, entry.Priority)
			if err != nil {
				return nil, err
			}
			cfg.Repositories = append(cfg.Repositories, r)
		default:
			logger.Warnf("skipping repository %s: unsupported type %q", entry.Name, entry.Type)
		}
	}
	return cfg, nil
}

// parseRequirement splits a PACKAGE[@CONSTRAINT] argument; a bare name
// allows any version.
func parseRequirement(arg string) (string, string) {
	if i := strings.LastIndex(arg, "@"); i >= 0 {
		return arg[:i], arg[i+1:]
	}
	return arg, "*"
}
