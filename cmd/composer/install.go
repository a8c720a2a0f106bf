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
	"context"

	"github.com/Masterminds/log-go"
	"github.com/spf13/cobra"

	"github.com/stloyd/composer/internal/solver"
	"github.com/stloyd/composer/pkg/action"
	"github.com/stloyd/composer/pkg/eyecandy"
)

const installDesc = `
This command resolves and installs the given packages and everything they
require.

Each argument is a package name, optionally pinned with a constraint:

    composer install monolog/monolog
    composer install monolog/monolog@^2.0 psr/log@1.1.0

Already-installed packages are kept at their locked versions whenever the
constraints allow it.
`

func newInstallCmd(logger log.Logger) *cobra.Command {
	var client *action.Install

	cmd := &cobra.Command{
		Use:   "install PACKAGE[@CONSTRAINT] [...]",
		Short: "install packages and their dependencies",
		Long:  installDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := newActionConfig(logger)
			if err != nil {
				return err
			}
			client.Config = cfg

			requirements := map[string]string{}
			for _, arg := range args {
				name, constraint := parseRequirement(arg)
				requirements[name] = constraint
			}

			tr, err := client.Run(context.Background(), requirements, settings)
			if err != nil {
				return err
			}
			logger.Info(tr.FormatOutput(solver.Table))
			logger.Info(eyecandy.ESPrint(settings.NoEmojis, "Done! :clapping_hands:"))
			return nil
		},
	}

	client = action.NewInstall(nil)
	f := cmd.Flags()
	f.BoolVar(&client.DryRun, "dry-run", false, "only print the operations that would run")
	f.BoolVar(&client.PreferSource, "prefer-source", false, "install packages from their sources")
	f.BoolVar(&client.NoRecommends, "no-recommends", false, "do not list suggested packages")
	f.BoolVar(&client.InstallSuggests, "install-suggests", false, "also install suggested packages")
	f.BoolVar(&client.AllowDev, "dev", false, "allow dev-stability versions")
	return cmd
}
