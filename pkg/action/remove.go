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
)

// Remove uninstalls the named packages. Removing a package another
// installed package still requires is unsolvable and reported as such.
type Remove struct {
	DryRun bool

	// Config stores the action configuration so it can be retrieved and
	// used again
	Config *Configuration
}

// NewRemove creates a new Remove object with the given configuration.
func NewRemove(cfg *Configuration) *Remove {
	return &Remove{Config: cfg}
}

// Run solves the removal of the named packages and executes it.
func (r *Remove) Run(ctx context.Context, names []string, settings *cli.EnvSettings) (*solver.Transaction, error) {
	pool, installedIDs, err := r.Config.BuildWorld()
	if err != nil {
		return nil, err
	}

	request := solver.NewRequest()
	for _, name := range names {
		request.Remove(name)
	}

	policy := solver.NewDefaultPolicy(true, true)
	s := solver.New(pool, policy, r.Config.Logger)
	s.SetInstalled(installedIDs...)

	tr, err := s.Solve(ctx, request)
	if err != nil {
		return nil, err
	}

	inst := installer.New(installer.Options{
		DryRun:    r.DryRun,
		VendorDir: vendorDir(settings),
	}, r.Config.Logger)

	if err := inst.Run(tr.Operations); err != nil {
		return tr, err
	}
	if r.DryRun {
		return tr, nil
	}
	return tr, r.Config.writeLock(tr)
}
