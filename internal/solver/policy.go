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
	"sort"

	pkg "github.com/stloyd/composer/internal/package"
)

// Policy is the preference oracle consulted during decision making. It must
// be deterministic and must never mutate its inputs.
type Policy interface {
	// SelectPreferredPackages ranks the given literals, most preferred
	// first. The input is not modified.
	SelectPreferredPackages(pool *Pool, decisions *Decisions, literals []Literal) []Literal
	// FindUpdatePackages lists the candidates that may replace an
	// installed package.
	FindUpdatePackages(pool *Pool, decisions *Decisions, p *pkg.Pkg) []*pkg.Pkg
}

// DefaultPolicy prefers, in order: already-installed packages when
// restoring from a lock, higher-priority repositories, greater versions,
// stabler releases (unless dev is allowed), concrete packages over aliases,
// and lower pool ids as the final tiebreak.
type DefaultPolicy struct {
	// PreferInstalled keeps the installed version on top when set
	// (install-from-lock mode).
	PreferInstalled bool
	// AllowDev stops dev-stability versions from being ranked last.
	AllowDev bool

	installed map[int]bool
}

func NewDefaultPolicy(preferInstalled, allowDev bool) *DefaultPolicy {
	return &DefaultPolicy{
		PreferInstalled: preferInstalled,
		AllowDev:        allowDev,
		installed:       map[int]bool{},
	}
}

// SetInstalled hands the policy the baseline install set, by pool id.
func (pol *DefaultPolicy) SetInstalled(ids map[int]bool) {
	pol.installed = ids
}

func (pol *DefaultPolicy) SelectPreferredPackages(pool *Pool, decisions *Decisions, literals []Literal) []Literal {
	ranked := make([]Literal, len(literals))
	copy(ranked, literals)
	sort.SliceStable(ranked, func(i, j int) bool {
		return pol.less(pool, ranked[i], ranked[j])
	})
	return ranked
}

func (pol *DefaultPolicy) less(pool *Pool, a, b Literal) bool {
	// positive literals first; a disjunction is preferably satisfied by
	// installing something rather than forbidding something
	if a.IsWanted() != b.IsWanted() {
		return a.IsWanted()
	}
	pa, pb := pool.LiteralToPackage(a), pool.LiteralToPackage(b)
	if pol.PreferInstalled {
		ia, ib := pol.installed[pa.ID], pol.installed[pb.ID]
		if ia != ib {
			return ia
		}
	}
	if pa.RepoPriority != pb.RepoPriority {
		return pa.RepoPriority > pb.RepoPriority
	}
	if !pol.AllowDev {
		da, db := pa.Stability() == pkg.Dev, pb.Stability() == pkg.Dev
		if da != db {
			return db
		}
	}
	if c := compareVersions(pa, pb); c != 0 {
		return c > 0
	}
	if pa.IsAlias() != pb.IsAlias() {
		return pb.IsAlias()
	}
	return pa.ID < pb.ID
}

func (pol *DefaultPolicy) FindUpdatePackages(pool *Pool, decisions *Decisions, p *pkg.Pkg) []*pkg.Pkg {
	var out []*pkg.Pkg
	for _, id := range pool.WhatProvides(p.Name, nil) {
		cand := pool.PackageByID(id)
		if cand.ID == p.ID {
			continue
		}
		if cand.AliasOf == p || p.AliasOf == cand {
			continue
		}
		if cand.Name == p.Name && cand.Version == p.Version {
			continue
		}
		if !pol.AllowDev && cand.Stability() == pkg.Dev && p.Stability() != pkg.Dev {
			continue
		}
		out = append(out, cand)
	}
	return out
}

// compareVersions orders two packages by parsed version; non-semver
// versions sort below parsed ones.
func compareVersions(a, b *pkg.Pkg) int {
	va, vb := a.Semver(), b.Semver()
	switch {
	case va == nil && vb == nil:
		return 0
	case va == nil:
		return -1
	case vb == nil:
		return 1
	}
	return va.Compare(vb)
}
