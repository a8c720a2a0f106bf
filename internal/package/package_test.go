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

package pkg

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStability(t *testing.T) {
	for _, tcase := range []struct {
		version string
		want    Stability
	}{
		{"1.0.0", Stable},
		{"1.0.0-RC1", RC},
		{"1.0.0-beta2", Beta},
		{"1.0.0-alpha1", Alpha},
		{"dev-master", Dev},
		{"1.0.x-dev", Dev},
		{"2.3.4", Stable},
	} {
		assert.Equal(t, tcase.want, ParseStability(tcase.version), tcase.version)
	}
}

func TestNewPkgNormalizes(t *testing.T) {
	p := NewPkg("Monolog/Monolog", "1.2.3", "packagist", 0)
	assert.Equal(t, "monolog/monolog", p.Name)
	require.NotNil(t, p.Semver())
	assert.Equal(t, "1.2.3", p.Semver().String())
	assert.False(t, p.IsDev)
	assert.Equal(t, "monolog/monolog-1.2.3", p.GetFingerPrint())
}

func TestNewPkgDevVersion(t *testing.T) {
	p := NewPkg("a/b", "dev-master", "packagist", 0)
	assert.Nil(t, p.Semver())
	assert.True(t, p.IsDev)
	assert.Equal(t, Dev, p.Stability())
}

func TestLinkMatching(t *testing.T) {
	l, err := NewLink("Psr/Log", "^1.0")
	require.NoError(t, err)
	assert.Equal(t, "psr/log", l.Target)

	v1 := semver.MustParse("1.4.0")
	v2 := semver.MustParse("2.0.0")
	assert.True(t, l.Matches(v1))
	assert.False(t, l.Matches(v2))
	assert.False(t, l.Matches(nil))

	any, err := NewLink("psr/log", "*")
	require.NoError(t, err)
	assert.True(t, any.Matches(nil))
	assert.True(t, any.Matches(v2))
}

func TestLinkRejectsBadConstraint(t *testing.T) {
	_, err := NewLink("a/b", "not a constraint")
	assert.Error(t, err)
}

func TestLinkExactVersion(t *testing.T) {
	l, err := NewLink("a/b", "1.2.0")
	require.NoError(t, err)
	require.NotNil(t, l.ExactVersion)
	assert.Equal(t, "1.2.0", l.ExactVersion.String())

	ranged, err := NewLink("a/b", "^1.2")
	require.NoError(t, err)
	assert.Nil(t, ranged.ExactVersion)
}

func TestSatisfies(t *testing.T) {
	p := NewPkgMock("a/b", "1.5.0")
	c, err := semver.NewConstraint("^1")
	require.NoError(t, err)
	assert.True(t, p.Satisfies(c))
	assert.True(t, p.Satisfies(nil))

	dev := NewPkgMock("a/b", "dev-master")
	assert.False(t, dev.Satisfies(c))
	assert.True(t, dev.Satisfies(nil))
}

func TestAlias(t *testing.T) {
	p := NewPkgMock("a/b", "dev-master", MustLink("c/d", "^2"))
	alias := NewAlias(p, "1.0.0")

	assert.True(t, alias.IsAlias())
	assert.False(t, p.IsAlias())
	assert.Same(t, p, alias.AliasOf)
	assert.Equal(t, "a/b", alias.Name)
	assert.Equal(t, "1.0.0", alias.Version)
	require.NotNil(t, alias.Semver())
	// the alias carries its target's links
	assert.Equal(t, p.Requires, alias.Requires)
}

func TestProvidedVersion(t *testing.T) {
	p := NewPkgMock("a/b", "2.0.0")
	exact := MustLink("x/y", "1.0.0")
	selfref := MustLink("x/z", "*")

	assert.Equal(t, "1.0.0", p.ProvidedVersion(exact).String())
	assert.Equal(t, "2.0.0", p.ProvidedVersion(selfref).String())
}

func TestPkgJSON(t *testing.T) {
	p := NewPkgMock("a/b", "1.0.0", MustLink("c/d", "^1"))
	out, err := p.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"Name":"a/b"`)
	assert.Contains(t, string(out), `"constraint":"^1"`)
}
