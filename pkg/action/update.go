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

	"github.com/stloyd/composer/internal/solver"
	"github.com/stloyd/composer/pkg/cli"
	"github.com/stloyd/composer/pkg/installer"
	"github.com/stloyd/composer/pkg/repo"
)

// Update lets the named installed packages (or all of them) move to newer
// versions, carrying their dependencies along when required.
type Update struct {
	DryRun       bool
	PreferSource bool
	AllowDev     bool

	// Config stores the action configuration so it can be retrieved and
	// used again
	Config *Configuration
}

// NewUpdate creates a new Update object with the given configuration.
func NewUpdate(cfg *Configuration) *Update {
	return &Update{Config: cfg}
}

// Run solves an update of the named packages; with no names, everything
// may move.
func (u *Update) Run(ctx context.Context, names []string, settings *cli.EnvSettings) (*solver.Transaction, error) {
	pool, installedIDs, err := u.Config.BuildWorld()
	if err != nil {
		return nil, err
	}

	request := solver.NewRequest()
	if len(names) == 0 {
		request.UpdateAll()
	}
	for _, name := range names {
		request.Update(name)
	}

	policy := solver.NewDefaultPolicy(false, u.AllowDev)
	s := solver.New(pool, policy, u.Config.Logger)
	s.SetInstalled(installedIDs...)

	tr, err := s.Solve(ctx, request)
	if err != nil {
		return nil, err
	}

	inst := installer.New(installer.Options{
		DryRun:       u.DryRun,
		PreferSource: u.PreferSource,
		VendorDir:    vendorDir(settings),
	}, u.Config.Logger)
	inst.SetFetcher(&repo.VCSFetcher{})

	if err := inst.Run(tr.Operations); err != nil {
		return tr, err
	}
	if u.DryRun {
		return tr, nil
	}
	return tr, u.Config.writeLock(tr)
}
