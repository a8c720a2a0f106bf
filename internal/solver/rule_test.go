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
	"github.com/stretchr/testify/require"
)

func TestNewRuleNormalizesLiterals(t *testing.T) {
	r := NewRule([]Literal{3, -1, 2, 3, -1}, PackageRequires)
	assert.Equal(t, []Literal{-1, 2, 3}, r.Literals)
}

func TestRuleEquality(t *testing.T) {
	a := NewRule([]Literal{-1, 2}, PackageRequires)
	b := NewRule([]Literal{2, -1}, PackageConflict)
	c := NewRule([]Literal{-1, 3}, PackageRequires)

	// reason is ignored; only the literal sequence counts
	assert.True(t, a.Equals(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equals(c))
}

func TestRuleIsAssertion(t *testing.T) {
	assert.True(t, NewRule([]Literal{-5}, JobRemove).IsAssertion())
	assert.False(t, NewRule([]Literal{1, 2}, JobInstall).IsAssertion())
	assert.False(t, NewRule(nil, JobInstall).IsAssertion())
}

func TestRuleSetInternsDuplicates(t *testing.T) {
	rs := NewRuleSet()
	a, fresh := rs.Add(NewRule([]Literal{-1, 2}, PackageRequires), TypePackage)
	require.True(t, fresh)
	assert.Equal(t, 0, a.ID)

	b, fresh := rs.Add(NewRule([]Literal{2, -1}, PackageConflict), TypePackage)
	assert.False(t, fresh)
	assert.Same(t, a, b)
	assert.Equal(t, 1, rs.Len())
}

func TestRuleSetBuckets(t *testing.T) {
	rs := NewRuleSet()
	rs.Add(NewRule([]Literal{-1, 2}, PackageRequires), TypePackage)
	rs.Add(NewRule([]Literal{1}, JobInstall), TypeJob)
	rs.Add(NewRule([]Literal{-2}, Learned), TypeLearned)

	assert.Len(t, rs.ByType(TypePackage), 1)
	assert.Len(t, rs.ByType(TypeJob), 1)
	assert.Len(t, rs.ByType(TypeLearned), 1)

	// insertion order is preserved and ids are dense
	for i, r := range rs.All() {
		assert.Equal(t, i, r.ID)
	}
}

func TestRuleSetWatchesFirstTwoLiterals(t *testing.T) {
	rs := NewRuleSet()
	r, _ := rs.Add(NewRule([]Literal{-1, 2, 3}, PackageRequires), TypePackage)

	assert.Equal(t, []int{r.ID}, rs.WatchesOn(Literal(-1)))
	assert.Equal(t, []int{r.ID}, rs.WatchesOn(Literal(2)))
	assert.Empty(t, rs.WatchesOn(Literal(3)))

	rs.MoveWatch(r.ID, Literal(2), Literal(3))
	assert.Empty(t, rs.WatchesOn(Literal(2)))
	assert.Equal(t, []int{r.ID}, rs.WatchesOn(Literal(3)))
}

func TestRuleSetDoesNotWatchAssertions(t *testing.T) {
	rs := NewRuleSet()
	rs.Add(NewRule([]Literal{-1}, JobRemove), TypeJob)
	assert.Empty(t, rs.WatchesOn(Literal(-1)))
}
