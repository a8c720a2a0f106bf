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

// Package installer executes a solved transaction on disk: one package
// directory per package under the vendor dir, with script events around
// each operation. Execution is strictly sequential.
package installer

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/Masterminds/log-go"
	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/pkg/errors"

	pkg "github.com/stloyd/composer/internal/package"
	"github.com/stloyd/composer/internal/solver"
)

// metadataFile is dropped into every installed package directory.
const metadataFile = ".composer.json"

// SourceFetcher materializes a source checkout; satisfied by
// repo.VCSFetcher.
type SourceFetcher interface {
	Fetch(remote, local, reference string) error
}

// Options configure an installer run.
type Options struct {
	// DryRun prints the operations without touching the filesystem.
	DryRun bool
	// PreferSource checks packages out from their source instead of
	// materializing the dist layout.
	PreferSource bool
	// VendorDir is the installation root.
	VendorDir string
}

// Installer applies operations one by one. There is no parallel install.
type Installer struct {
	opts    Options
	logger  log.Logger
	fetcher SourceFetcher
	scripts *Dispatcher
}

func New(opts Options, logger log.Logger) *Installer {
	return &Installer{opts: opts, logger: logger}
}

// SetFetcher wires a source fetcher for --prefer-source installs.
func (i *Installer) SetFetcher(f SourceFetcher) {
	i.fetcher = f
}

// SetScripts wires the script event dispatcher.
func (i *Installer) SetScripts(d *Dispatcher) {
	i.scripts = d
}

// Run executes the operation list in order, stopping at the first failure.
func (i *Installer) Run(ops []*solver.Operation) error {
	for _, op := range ops {
		if i.opts.DryRun {
			i.logger.Infof("would %s", op)
			continue
		}
		if err := i.apply(op); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) apply(op *solver.Operation) error {
	switch op.Kind {
	case solver.OpInstall:
		return i.withEvents("install", op, func() error {
			return i.installPkg(op.Pkg)
		})
	case solver.OpRemove:
		return i.withEvents("uninstall", op, func() error {
			return i.removePkg(op.Pkg)
		})
	case solver.OpUpdate:
		return i.withEvents("update", op, func() error {
			if err := i.removePkg(op.PrevPkg); err != nil {
				return err
			}
			return i.installPkg(op.Pkg)
		})
	case solver.OpMarkAliasInstalled:
		// the alias shares its target's checkout; only note it
		i.logger.Debugf("marking alias %s as installed", op.Pkg)
		return nil
	}
	return errors.Errorf("unknown operation %v", op.Kind)
}

func (i *Installer) withEvents(kind string, op *solver.Operation, fn func() error) error {
	if err := i.scripts.RunEvent("pre-package-" + kind); err != nil {
		return err
	}
	i.logger.Infof("%s", op)
	if err := fn(); err != nil {
		return err
	}
	return i.scripts.RunEvent("post-package-" + kind)
}

// targetDir contains the package path inside the vendor dir; a package
// name can never escape it.
func (i *Installer) targetDir(p *pkg.Pkg) (string, error) {
	dir, err := securejoin.SecureJoin(i.opts.VendorDir, p.Name)
	if err != nil {
		return "", errors.Wrapf(err, "unsafe install path for %s", p.Name)
	}
	return dir, nil
}

func (i *Installer) installPkg(p *pkg.Pkg) error {
	dir, err := i.targetDir(p)
	if err != nil {
		return err
	}
	if i.opts.PreferSource && p.SourceURL != "" && i.fetcher != nil {
		if err := i.fetcher.Fetch(p.SourceURL, dir, p.SourceReference); err != nil {
			return err
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "unable to create %s", dir)
	}

	meta, err := p.JSON()
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(dir, metadataFile), meta, 0644)
}

func (i *Installer) removePkg(p *pkg.Pkg) error {
	dir, err := i.targetDir(p)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "unable to remove %s", dir)
	}
	return nil
}
