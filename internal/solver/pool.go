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

package solver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/log-go"
	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	pkg "github.com/stloyd/composer/internal/package"
)

// ErrInvalidPool flags a malformed pool: duplicate registrations or broken
// package records. It indicates a builder bug, not bad user input.
var ErrInvalidPool = errors.New("invalid pool")

// Pool is the canonical registry of every candidate package across all
// repositories. Ids are dense and start at 1; id 0 is reserved. A package's
// id never changes for the life of the pool.
//
// The pool is append-only while repositories load and read-only during a
// solve; WhatProvides results are cached and the cache is only dropped on
// mutation.
type Pool struct {
	packages []*pkg.Pkg // 1-based; index 0 unused
	byName   map[string][]int
	byExtra  map[string][]int // provided and replaced names
	frozen   bool
	cache    map[string][]int
}

func NewPool() *Pool {
	return &Pool{
		packages: []*pkg.Pkg{nil},
		byName:   map[string][]int{},
		byExtra:  map[string][]int{},
		cache:    map[string][]int{},
	}
}

// Add registers a package and returns its id. Adding to a frozen pool is an
// implementation bug.
func (pool *Pool) Add(p *pkg.Pkg) int {
	if pool.frozen {
		panic("solver: add to frozen pool")
	}
	id := len(pool.packages)
	p.ID = id
	pool.packages = append(pool.packages, p)
	pool.byName[p.Name] = append(pool.byName[p.Name], id)
	for _, l := range p.Provides {
		pool.byExtra[l.Target] = append(pool.byExtra[l.Target], id)
	}
	for _, l := range p.Replaces {
		pool.byExtra[l.Target] = append(pool.byExtra[l.Target], id)
	}
	pool.cache = map[string][]int{}
	return id
}

// AddRepository stamps the repository origin on each package and registers
// them in order. Alias records must be included by the caller, right after
// the package they alias.
func (pool *Pool) AddRepository(name string, priority int, pkgs ...*pkg.Pkg) {
	for _, p := range pkgs {
		p.Repository = name
		p.RepoPriority = priority
		pool.Add(p)
	}
}

// Freeze marks the pool read-only for solving.
func (pool *Pool) Freeze() {
	pool.frozen = true
}

// Size is the number of registered packages.
func (pool *Pool) Size() int {
	return len(pool.packages) - 1
}

// Validate checks pool invariants. A failure is assertion-class: it cannot
// occur with a well-formed builder.
func (pool *Pool) Validate() error {
	seen := map[string]bool{}
	for id := 1; id < len(pool.packages); id++ {
		p := pool.packages[id]
		if p == nil || p.ID != id {
			return errors.Wrapf(ErrInvalidPool, "package at id %d is misregistered", id)
		}
		if p.Name == "" {
			return errors.Wrapf(ErrInvalidPool, "package at id %d has no name", id)
		}
		fp := p.GetFingerPrint() + "@" + p.Repository
		if seen[fp] && !p.IsAlias() {
			return errors.Wrapf(ErrInvalidPool, "package %s registered twice", fp)
		}
		seen[fp] = true
	}
	return nil
}

// PackageByID resolves an id. Id 0 or out of range is an implementation
// bug.
func (pool *Pool) PackageByID(id int) *pkg.Pkg {
	if id <= 0 || id >= len(pool.packages) {
		panic(fmt.Sprintf("solver: package id %d out of range", id))
	}
	return pool.packages[id]
}

// LiteralToPackage resolves the package a literal speaks about.
func (pool *Pool) LiteralToPackage(l Literal) *pkg.Pkg {
	return pool.PackageByID(l.ID())
}

// WhatProvides returns the ids of every package that either bears the name
// with a version satisfying the constraint, or declares a matching
// provide/replace. A nil constraint matches any version. Results are
// ordered by repository priority, then registration order, and cached by
// (name, constraint).
func (pool *Pool) WhatProvides(name string, constraint *semver.Constraints) []int {
	name = strings.ToLower(name)
	key := name + "\x00*"
	if constraint != nil {
		key = name + "\x00" + constraint.String()
	}
	if ids, ok := pool.cache[key]; ok {
		return ids
	}

	var ids []int
	for _, id := range pool.byName[name] {
		if pool.packages[id].Satisfies(constraint) || constraint == nil {
			ids = append(ids, id)
		}
	}
	for _, id := range pool.byExtra[name] {
		p := pool.packages[id]
		if p.Name == name {
			// self-replace; already covered by the name index
			continue
		}
		if pool.provideMatches(p, name, constraint) {
			ids = append(ids, id)
		}
	}

	ids = dedupInts(ids)
	sort.SliceStable(ids, func(i, j int) bool {
		pi, pj := pool.packages[ids[i]], pool.packages[ids[j]]
		if pi.RepoPriority != pj.RepoPriority {
			return pi.RepoPriority > pj.RepoPriority
		}
		return ids[i] < ids[j]
	})

	pool.cache[key] = ids
	return ids
}

func (pool *Pool) provideMatches(p *pkg.Pkg, name string, constraint *semver.Constraints) bool {
	for _, set := range [][]*pkg.Link{p.Provides, p.Replaces} {
		for _, l := range set {
			if l.Target != name {
				continue
			}
			if constraint == nil {
				return true
			}
			v := p.ProvidedVersion(l)
			if v != nil && constraint.Check(v) {
				return true
			}
		}
	}
	return false
}

// PkgString pretty-prints the package behind an id, for diagnostics.
func (pool *Pool) PkgString(id int) string {
	return pool.PackageByID(id).GetFingerPrint()
}

// LiteralString pretty-prints a literal, for diagnostics.
func (pool *Pool) LiteralString(l Literal) string {
	if l.IsWanted() {
		return pool.PkgString(l.ID())
	}
	return "-" + pool.PkgString(l.ID())
}

// DebugPrintPool dumps the registry, one package per line.
func (pool *Pool) DebugPrintPool(logger log.Logger) {
	logger.Debugf("Pool of %d packages:", pool.Size())
	for id := 1; id < len(pool.packages); id++ {
		p := pool.packages[id]
		alias := ""
		if p.IsAlias() {
			alias = fmt.Sprintf(" (alias of %s)", p.AliasOf.GetFingerPrint())
		}
		logger.Debugf("  %d: %s from %s%s", id, p.GetFingerPrint(), p.Repository, alias)
	}
}

func dedupInts(in []int) []int {
	seen := map[int]bool{}
	out := in[:0]
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
