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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// Stability of a package version, derived from the version string.
type Stability int

const (
	Stable Stability = iota
	RC
	Beta
	Alpha
	Dev
)

func (s Stability) String() string {
	switch s {
	case Stable:
		return "stable"
	case RC:
		return "RC"
	case Beta:
		return "beta"
	case Alpha:
		return "alpha"
	case Dev:
		return "dev"
	}
	return "unknown"
}

// ParseStability derives the stability from a version string.
// "dev-master" and "1.0.x-dev" are dev, "1.0.0-beta2" is beta, and so on.
func ParseStability(version string) Stability {
	v := strings.ToLower(version)
	if strings.HasPrefix(v, "dev-") || strings.HasSuffix(v, "-dev") {
		return Dev
	}
	if i := strings.LastIndexAny(v, "-+"); i >= 0 {
		v = v[i+1:]
	}
	switch {
	case strings.HasPrefix(v, "rc"):
		return RC
	case strings.HasPrefix(v, "beta"):
		return Beta
	case strings.HasPrefix(v, "alpha"):
		return Alpha
	}
	return Stable
}

// Link relates a package to a target name under a version constraint. It
// backs requires, conflicts, replaces and provides entries alike.
type Link struct {
	Target     string              `json:"target"`
	Constraint *semver.Constraints `json:"-" yaml:"-"`
	// Pretty keeps the constraint as the user wrote it, for messages.
	Pretty string `json:"constraint"`
	// ExactVersion is set when the constraint text is a single version, as
	// provide/replace declarations usually are.
	ExactVersion *semver.Version `json:"-" yaml:"-"`
}

// NewLink builds a link from a target name and a constraint expression.
// An empty expression or "*" matches any version.
func NewLink(target, constraint string) (*Link, error) {
	l := &Link{Target: strings.ToLower(target), Pretty: constraint}
	if constraint == "" || constraint == "*" {
		l.Pretty = "*"
		return l, nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, errors.Wrapf(err, "link %q has an invalid version constraint %q", target, constraint)
	}
	l.Constraint = c
	if v, err := semver.NewVersion(constraint); err == nil {
		l.ExactVersion = v
	}
	return l, nil
}

// MustLink is NewLink for hand-written fixtures.
func MustLink(target, constraint string) *Link {
	l, err := NewLink(target, constraint)
	if err != nil {
		panic(err)
	}
	return l
}

// Matches reports whether a concrete version satisfies the link constraint.
// A nil version (non-semver dev version) only matches the any-constraint.
func (l *Link) Matches(v *semver.Version) bool {
	if l.Constraint == nil {
		return true
	}
	if v == nil {
		return false
	}
	return l.Constraint.Check(v)
}

func (l *Link) String() string {
	return fmt.Sprintf("%s %s", l.Target, l.Pretty)
}

// Pkg is the minimum object the solver reasons about: one concrete version
// of one named package, as published by one repository. The same name at a
// different version is a different package.
//
// An alias is a distinct Pkg sharing the source identity of AliasOf but
// bearing the aliased version.
type Pkg struct {
	ID      int    `json:"-" yaml:"-"` // pool id, 0 until registered
	Name    string // lowercase package name
	Version string // normalized version string
	ver     *semver.Version

	Requires  []*Link `json:",omitempty"`
	Conflicts []*Link `json:",omitempty"`
	Replaces  []*Link `json:",omitempty"`
	Provides  []*Link `json:",omitempty"`
	// Suggests are soft recommendations; they never constrain the solver.
	Suggests []*Link `json:",omitempty"`

	IsDev           bool   `json:",omitempty"`
	SourceURL       string `json:",omitempty"`
	SourceReference string `json:",omitempty"`
	Repository      string // origin repository name
	RepoPriority    int    // higher is preferred

	AliasOf *Pkg `json:"-" yaml:"-"`
}

// NewPkg creates a package. The version is parsed as semver when possible;
// non-semver versions (dev-master and friends) keep a nil parsed version
// and are matched through aliases or the any-constraint only.
func NewPkg(name, version, repository string, priority int) *Pkg {
	p := &Pkg{
		Name:         strings.ToLower(name),
		Version:      version,
		Repository:   repository,
		RepoPriority: priority,
	}
	if v, err := semver.NewVersion(version); err == nil {
		p.ver = v
	}
	if ParseStability(version) == Dev {
		p.IsDev = true
	}
	return p
}

// NewPkgMock creates a bare package from a name and version.
// Useful for testing.
func NewPkgMock(name, version string, requires ...*Link) *Pkg {
	p := NewPkg(name, version, "mockrepo", 0)
	p.Requires = requires
	return p
}

// NewAlias creates the alias record for p at the aliased version. The alias
// shares the source identity of p; the solver co-installs both when their
// versions agree.
func NewAlias(p *Pkg, version string) *Pkg {
	a := NewPkg(p.Name, version, p.Repository, p.RepoPriority)
	a.Requires = p.Requires
	a.Conflicts = p.Conflicts
	a.Replaces = p.Replaces
	a.Provides = p.Provides
	a.IsDev = p.IsDev
	a.SourceURL = p.SourceURL
	a.SourceReference = p.SourceReference
	a.AliasOf = p
	return a
}

// IsAlias reports whether p is an alias record.
func (p *Pkg) IsAlias() bool {
	return p.AliasOf != nil
}

// Semver returns the parsed version, or nil for non-semver versions.
func (p *Pkg) Semver() *semver.Version {
	return p.ver
}

// Stability of this package's version.
func (p *Pkg) Stability() Stability {
	return ParseStability(p.Version)
}

// Satisfies reports whether this package satisfies the constraint by its
// own name and version. A nil constraint matches any version.
func (p *Pkg) Satisfies(c *semver.Constraints) bool {
	if c == nil {
		return true
	}
	if p.ver == nil {
		return false
	}
	return c.Check(p.ver)
}

// ProvidedVersion resolves the version a provide/replace link offers: the
// exact version it names, or the package's own version for self-referential
// declarations.
func (p *Pkg) ProvidedVersion(l *Link) *semver.Version {
	if l.ExactVersion != nil {
		return l.ExactVersion
	}
	return p.ver
}

// GetFingerPrint returns a unique id of the package.
func (p *Pkg) GetFingerPrint() string {
	return fmt.Sprintf("%s-%s", p.Name, p.Version)
}

func (p *Pkg) String() string {
	return p.GetFingerPrint()
}

// JSON serializes package p into JSON, returning a []byte
func (p *Pkg) JSON() ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(p)
	return buffer.Bytes(), err
}
