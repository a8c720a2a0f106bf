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

package repo

import (
	"encoding/json"
	"io/ioutil"
	"sort"

	"github.com/pkg/errors"

	pkg "github.com/stloyd/composer/internal/package"
)

// Repository yields candidate packages for the pool.
type Repository interface {
	Name() string
	Priority() int
	Packages() ([]*pkg.Pkg, error)
}

// ArrayRepository is an in-memory repository. It also serves as the
// installed-set baseline during solving.
type ArrayRepository struct {
	name     string
	priority int
	pkgs     []*pkg.Pkg
}

func NewArrayRepository(name string, priority int, pkgs ...*pkg.Pkg) *ArrayRepository {
	return &ArrayRepository{name: name, priority: priority, pkgs: pkgs}
}

func (r *ArrayRepository) Name() string {
	return r.name
}

func (r *ArrayRepository) Priority() int {
	return r.priority
}

func (r *ArrayRepository) Packages() ([]*pkg.Pkg, error) {
	return r.pkgs, nil
}

// AddPackage appends a package; alias records must directly follow the
// package they alias.
func (r *ArrayRepository) AddPackage(pkgs ...*pkg.Pkg) {
	r.pkgs = append(r.pkgs, pkgs...)
}

// packageDef is one entry of a packages.json definition file.
type packageDef struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Require         map[string]string `json:"require,omitempty"`
	Conflict        map[string]string `json:"conflict,omitempty"`
	Replace         map[string]string `json:"replace,omitempty"`
	Provide         map[string]string `json:"provide,omitempty"`
	Suggest         map[string]string `json:"suggest,omitempty"`
	Alias           string            `json:"alias,omitempty"`
	SourceURL       string            `json:"source-url,omitempty"`
	SourceReference string            `json:"source-reference,omitempty"`
}

type definitionsFile struct {
	Packages []*packageDef `json:"packages"`
}

// LoadDefinitions reads a packages.json definition file into an in-memory
// repository. Alias records are emitted right after their package.
func LoadDefinitions(path, name string, priority int) (*ArrayRepository, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't load package definitions (%s)", path)
	}
	var defs definitionsFile
	if err := json.Unmarshal(b, &defs); err != nil {
		return nil, errors.Wrapf(err, "invalid package definitions (%s)", path)
	}

	r := NewArrayRepository(name, priority)
	for _, def := range defs.Packages {
		p, err := def.toPkg(name, priority)
		if err != nil {
			return nil, err
		}
		r.AddPackage(p)
		if def.Alias != "" {
			r.AddPackage(pkg.NewAlias(p, def.Alias))
		}
	}
	return r, nil
}

func (def *packageDef) toPkg(repoName string, priority int) (*pkg.Pkg, error) {
	if def.Name == "" || def.Version == "" {
		return nil, errors.Errorf("package definition needs both name and version, got %q %q", def.Name, def.Version)
	}
	p := pkg.NewPkg(def.Name, def.Version, repoName, priority)
	p.SourceURL = def.SourceURL
	p.SourceReference = def.SourceReference

	var err error
	if p.Requires, err = toLinks(def.Require); err != nil {
		return nil, errors.Wrapf(err, "package %s", def.Name)
	}
	if p.Conflicts, err = toLinks(def.Conflict); err != nil {
		return nil, errors.Wrapf(err, "package %s", def.Name)
	}
	if p.Replaces, err = toLinks(def.Replace); err != nil {
		return nil, errors.Wrapf(err, "package %s", def.Name)
	}
	if p.Provides, err = toLinks(def.Provide); err != nil {
		return nil, errors.Wrapf(err, "package %s", def.Name)
	}
	if p.Suggests, err = toLinks(def.Suggest); err != nil {
		return nil, errors.Wrapf(err, "package %s", def.Name)
	}
	return p, nil
}

func toLinks(m map[string]string) ([]*pkg.Link, error) {
	if len(m) == 0 {
		return nil, nil
	}
	targets := make([]string, 0, len(m))
	for target := range m {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	links := make([]*pkg.Link, 0, len(m))
	for _, target := range targets {
		l, err := pkg.NewLink(target, m[target])
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, nil
}
