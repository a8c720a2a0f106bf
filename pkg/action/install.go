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

package action

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/stloyd/composer/internal/solver"
	"github.com/stloyd/composer/pkg/cli"
	"github.com/stloyd/composer/pkg/eyecandy"
	"github.com/stloyd/composer/pkg/installer"
	"github.com/stloyd/composer/pkg/repo"
)

// Install resolves and installs a set of requirements on top of whatever
// is already installed.
type Install struct {
	DryRun          bool
	PreferSource    bool
	NoRecommends    bool
	InstallSuggests bool
	AllowDev        bool

	// Config stores the action configuration so it can be retrieved and
	// used again
	Config *Configuration
}

// NewInstall creates a new Install object with the given configuration.
func NewInstall(cfg *Configuration) *Install {
	return &Install{Config: cfg}
}

// Run solves the requirements (a name to constraint-expression map) and
// executes the resulting operations.
//
// If DryRun is set, the transaction is printed but nothing is executed and
// the lock file is left alone.
func (i *Install) Run(ctx context.Context, requirements map[string]string, settings *cli.EnvSettings) (*solver.Transaction, error) {
	logger := i.Config.Logger

	pool, installedIDs, err := i.Config.BuildWorld()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(requirements))
	for name := range requirements {
		names = append(names, name)
	}
	sort.Strings(names)

	request := solver.NewRequest()
	for _, name := range names {
		if err := request.Install(name, requirements[name]); err != nil {
			return nil, err
		}
	}
	if i.InstallSuggests {
		for _, name := range suggestedBy(pool, names) {
			if err := request.Install(name, "*"); err != nil {
				return nil, err
			}
		}
	}

	policy := solver.NewDefaultPolicy(true, i.AllowDev)
	s := solver.New(pool, policy, logger)
	s.SetInstalled(installedIDs...)

	tr, err := s.Solve(ctx, request)
	if err != nil {
		return nil, err
	}

	if !i.NoRecommends {
		i.logSuggestions(tr, settings)
	}

	if err := i.execute(tr, settings); err != nil {
		return tr, err
	}
	return tr, nil
}

func (i *Install) execute(tr *solver.Transaction, settings *cli.EnvSettings) error {
	inst := installer.New(installer.Options{
		DryRun:       i.DryRun,
		PreferSource: i.PreferSource,
		VendorDir:    vendorDir(settings),
	}, i.Config.Logger)
	inst.SetFetcher(&repo.VCSFetcher{})

	if err := inst.Run(tr.Operations); err != nil {
		return err
	}
	if i.DryRun {
		return nil
	}
	return i.Config.writeLock(tr)
}

// logSuggestions surfaces the suggest declarations of freshly installed
// packages.
func (i *Install) logSuggestions(tr *solver.Transaction, settings *cli.EnvSettings) {
	for _, op := range tr.Operations {
		if op.Kind != solver.OpInstall {
			continue
		}
		for _, l := range op.Pkg.Suggests {
			i.Config.Logger.Info(eyecandy.ESPrintf(settings.NoEmojis,
				":light_bulb:%s suggests installing %s", op.Pkg.Name, l.Target))
		}
	}
}

// suggestedBy collects the suggested names of every package providing the
// requested ones, whatever its version, keeping only suggestions the pool
// can actually satisfy.
func suggestedBy(pool *solver.Pool, names []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range names {
		for _, id := range pool.WhatProvides(name, nil) {
			for _, l := range pool.PackageByID(id).Suggests {
				if seen[l.Target] {
					continue
				}
				seen[l.Target] = true
				if len(pool.WhatProvides(l.Target, nil)) == 0 {
					continue
				}
				out = append(out, l.Target)
			}
		}
	}
	sort.Strings(out)
	return out
}

func vendorDir(settings *cli.EnvSettings) string {
	if filepath.IsAbs(settings.VendorDir) {
		return settings.VendorDir
	}
	return filepath.Join(settings.WorkingDir, settings.VendorDir)
}
