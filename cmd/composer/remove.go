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

const removeDesc = `
This command removes installed packages. Removing a package that another
installed package still requires fails with an explanation.
`

func newRemoveCmd(logger log.Logger) *cobra.Command {
	client := action.NewRemove(nil)

	cmd := &cobra.Command{
		Use:   "remove PACKAGE [...]",
		Short: "remove installed packages",
		Long:  removeDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := newActionConfig(logger)
			if err != nil {
				return err
			}
			client.Config = cfg

			tr, err := client.Run(context.Background(), args, settings)
			if err != nil {
				return err
			}
			logger.Info(tr.FormatOutput(solver.Table))
			logger.Info(eyecandy.ESPrint(settings.NoEmojis, "Done! :clapping_hands:"))
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&client.DryRun, "dry-run", false, "only print the operations that would run")
	return cmd
}
