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
	"testing"

	"github.com/stretchr/testify/assert"

	pkg "github.com/stloyd/composer/internal/package"
)

func TestPolicyPrefersGreaterVersion(t *testing.T) {
	pool := NewPool()
	pool.AddRepository("packagist", 0,
		pkg.NewPkgMock("A", "1.0.0"),
		pkg.NewPkgMock("A", "2.0.0"),
		pkg.NewPkgMock("A", "1.5.0"),
	)

	pol := NewDefaultPolicy(false, false)
	ranked := pol.SelectPreferredPackages(pool, NewDecisions(), []Literal{1, 2, 3})
	assert.Equal(t, []Literal{2, 3, 1}, ranked)
}

func TestPolicyPrefersHigherPriorityRepo(t *testing.T) {
	pool := NewPool()
	pool.AddRepository("low", 0, pkg.NewPkgMock("A", "2.0.0"))
	pool.AddRepository("high", 5, pkg.NewPkgMock("A", "1.0.0"))

	pol := NewDefaultPolicy(false, false)
	ranked := pol.SelectPreferredPackages(pool, NewDecisions(), []Literal{1, 2})
	// repository priority outranks the greater version
	assert.Equal(t, []Literal{2, 1}, ranked)
}

func TestPolicyPrefersInstalledWhenConfigured(t *testing.T) {
	pool := NewPool()
	pool.AddRepository("installed", 0, pkg.NewPkgMock("A", "1.0.0"))
	pool.AddRepository("packagist", 0, pkg.NewPkgMock("A", "2.0.0"))

	pol := NewDefaultPolicy(true, false)
	pol.SetInstalled(map[int]bool{1: true})
	ranked := pol.SelectPreferredPackages(pool, NewDecisions(), []Literal{1, 2})
	assert.Equal(t, []Literal{1, 2}, ranked)

	pol = NewDefaultPolicy(false, false)
	ranked = pol.SelectPreferredPackages(pool, NewDecisions(), []Literal{1, 2})
	assert.Equal(t, []Literal{2, 1}, ranked)
}

func TestPolicyRanksDevLastWithoutAllowDev(t *testing.T) {
	pool := NewPool()
	pool.AddRepository("packagist", 0,
		pkg.NewPkgMock("A", "dev-master"),
		pkg.NewPkgMock("A", "1.0.0"),
	)

	pol := NewDefaultPolicy(false, false)
	ranked := pol.SelectPreferredPackages(pool, NewDecisions(), []Literal{1, 2})
	assert.Equal(t, []Literal{2, 1}, ranked)
}

func TestPolicyPrefersConcreteOverAlias(t *testing.T) {
	pool := NewPool()
	a := pkg.NewPkgMock("A", "1.0.0")
	alias := pkg.NewAlias(a, "1.0.0")
	pool.AddRepository("packagist", 0, a, alias)

	pol := NewDefaultPolicy(false, false)
	ranked := pol.SelectPreferredPackages(pool, NewDecisions(), []Literal{2, 1})
	assert.Equal(t, []Literal{1, 2}, ranked)
}

func TestPolicyRanksPositiveLiteralsFirst(t *testing.T) {
	pool := NewPool()
	pool.AddRepository("packagist", 0,
		pkg.NewPkgMock("A", "1.0.0"),
		pkg.NewPkgMock("B", "1.0.0"),
	)

	pol := NewDefaultPolicy(false, false)
	ranked := pol.SelectPreferredPackages(pool, NewDecisions(), []Literal{-1, 2})
	assert.Equal(t, []Literal{2, -1}, ranked)
}

func TestPolicyDoesNotMutateInput(t *testing.T) {
	pool := NewPool()
	pool.AddRepository("packagist", 0,
		pkg.NewPkgMock("A", "1.0.0"),
		pkg.NewPkgMock("A", "2.0.0"),
	)

	in := []Literal{1, 2}
	pol := NewDefaultPolicy(false, false)
	pol.SelectPreferredPackages(pool, NewDecisions(), in)
	assert.Equal(t, []Literal{1, 2}, in)
}

func TestPolicyFindUpdatePackages(t *testing.T) {
	pool := NewPool()
	installed := pkg.NewPkgMock("A", "1.0.0")
	pool.AddRepository("installed", 0, installed)
	pool.AddRepository("packagist", 0,
		pkg.NewPkgMock("A", "1.1.0"),
		pkg.NewPkgMock("A", "dev-master"),
		pkg.NewPkgMock("B", "1.0.0"),
	)

	pol := NewDefaultPolicy(false, false)
	cands := pol.FindUpdatePackages(pool, NewDecisions(), installed)
	var names []string
	for _, c := range cands {
		names = append(names, c.GetFingerPrint())
	}
	// dev candidates stay out while dev is not allowed
	assert.Equal(t, []string{"a-1.1.0"}, names)

	pol = NewDefaultPolicy(false, true)
	cands = pol.FindUpdatePackages(pool, NewDecisions(), installed)
	assert.Len(t, cands, 2)
}
