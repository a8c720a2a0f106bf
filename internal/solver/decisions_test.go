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
)

func TestDecisionsPolarity(t *testing.T) {
	d := NewDecisions()
	d.Decide(Literal(1), 0, 7)
	d.Decide(Literal(-2), 0, 8)

	assert.True(t, d.Satisfied(Literal(1)))
	assert.False(t, d.Satisfied(Literal(-1)))
	assert.True(t, d.Conflicting(Literal(-1)))
	assert.True(t, d.Satisfied(Literal(-2)))
	assert.True(t, d.Conflicting(Literal(2)))
	assert.True(t, d.Undecided(Literal(3)))

	assert.True(t, d.DecidedInstall(1))
	assert.False(t, d.DecidedInstall(2))
	assert.False(t, d.DecidedInstall(3))
}

func TestDecisionsLevelZeroKeepsPolarity(t *testing.T) {
	d := NewDecisions()
	d.Decide(Literal(-1), 0, 0)
	assert.Equal(t, 0, d.Level(Literal(-1)))
	assert.Equal(t, 0, d.Level(Literal(1)))
	assert.False(t, d.Undecided(Literal(1)))
	assert.False(t, d.DecidedInstall(1))
}

func TestDecisionsCause(t *testing.T) {
	d := NewDecisions()
	d.Decide(Literal(1), 0, 4)
	d.Decide(Literal(2), 1, noCause)

	assert.Equal(t, 4, d.Cause(Literal(1)))
	assert.Equal(t, noCause, d.Cause(Literal(2)))
	assert.Equal(t, noCause, d.Cause(Literal(9)))
}

func TestDecisionsRevertToLevel(t *testing.T) {
	d := NewDecisions()
	d.Decide(Literal(1), 0, 0)
	d.Decide(Literal(2), 1, noCause)
	d.Decide(Literal(-3), 1, 2)
	d.Decide(Literal(4), 2, noCause)

	d.RevertToLevel(1)
	assert.Equal(t, 3, d.Len())
	assert.True(t, d.Undecided(Literal(4)))
	assert.True(t, d.Satisfied(Literal(-3)))

	d.RevertToLevel(0)
	assert.Equal(t, 1, d.Len())
	assert.True(t, d.Satisfied(Literal(1)))
	assert.True(t, d.Undecided(Literal(2)))
	assert.True(t, d.Undecided(Literal(3)))
}

func TestDecisionsStackOrder(t *testing.T) {
	d := NewDecisions()
	d.Decide(Literal(5), 0, 0)
	d.Decide(Literal(-6), 1, 1)

	assert.Equal(t, Literal(5), d.At(0).Literal)
	assert.Equal(t, Literal(-6), d.At(1).Literal)
	assert.Equal(t, 1, d.At(1).Level)
}
