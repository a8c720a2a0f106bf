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

// Package action holds the operations the composer CLI exposes: install,
// update and remove. Each action assembles the package pool, runs the
// solver, executes the resulting transaction and rewrites the lock file.
package action

import (
	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"

	pkg "github.com/stloyd/composer/internal/package"
	"github.com/stloyd/composer/internal/solver"
	"github.com/stloyd/composer/pkg/lockfile"
	"github.com/stloyd/composer/pkg/repo"
)

// Configuration carries everything the actions share: the candidate
// repositories, the installed baseline, and where the lock file lives.
type Configuration struct {
	Repositories []repo.Repository
	Installed    repo.Repository
	LockFilePath string
	Logger       log.Logger
}

// BuildWorld assembles the pool: the installed baseline registers first so
// its ids stay stable, then every candidate repository in order. It
// returns the pool and the installed ids.
func (c *Configuration) BuildWorld() (*solver.Pool, []int, error) {
	pool := solver.NewPool()
	var installedIDs []int
	if c.Installed != nil {
		pkgs, err := c.Installed.Packages()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "unable to list installed packages of %s", c.Installed.Name())
		}
		pool.AddRepository(c.Installed.Name(), c.Installed.Priority(), pkgs...)
		for _, p := range pkgs {
			installedIDs = append(installedIDs, p.ID)
		}
	}
	for _, r := range c.Repositories {
		pkgs, err := r.Packages()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "unable to list packages of repository %s", r.Name())
		}
		pool.AddRepository(r.Name(), r.Priority(), pkgs...)
	}
	return pool, installedIDs, nil
}

// installedPackages lists the baseline packages, or nothing without a
// baseline.
func (c *Configuration) installedPackages() []*pkg.Pkg {
	if c.Installed == nil {
		return nil
	}
	pkgs, err := c.Installed.Packages()
	if err != nil {
		return nil
	}
	return pkgs
}

// finalPackages applies the transaction to the installed baseline,
// producing the set the lock file must pin.
func finalPackages(installed []*pkg.Pkg, tr *solver.Transaction) []*pkg.Pkg {
	gone := map[*pkg.Pkg]bool{}
	for _, op := range tr.Operations {
		switch op.Kind {
		case solver.OpRemove:
			gone[op.Pkg] = true
		case solver.OpUpdate:
			gone[op.PrevPkg] = true
		}
	}

	var out []*pkg.Pkg
	for _, p := range installed {
		if !gone[p] {
			out = append(out, p)
		}
	}
	for _, op := range tr.Operations {
		switch op.Kind {
		case solver.OpInstall, solver.OpUpdate, solver.OpMarkAliasInstalled:
			out = append(out, op.Pkg)
		}
	}
	return out
}

// writeLock pins the post-transaction install set.
func (c *Configuration) writeLock(tr *solver.Transaction) error {
	if c.LockFilePath == "" {
		return nil
	}
	lock := lockfile.FromPackages(finalPackages(c.installedPackages(), tr))
	return lock.Write(c.LockFilePath)
}
