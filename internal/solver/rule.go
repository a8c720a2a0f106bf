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

	"github.com/mitchellh/hashstructure"

	pkg "github.com/stloyd/composer/internal/package"
)

// Reason tags why a rule exists. The reason never takes part in rule
// equality; two rules with the same literals are the same rule.
type Reason int

const (
	InternalAllowUpdate Reason = iota
	JobInstall
	JobRemove
	PackageConflict
	PackageRequires
	PackageObsoletes
	InstalledPackageObsoletes
	PackageSameName
	PackageImplicitObsoletes
	Learned
	PackageAlias
)

func (r Reason) String() string {
	switch r {
	case InternalAllowUpdate:
		return "internal-allow-update"
	case JobInstall:
		return "job-install"
	case JobRemove:
		return "job-remove"
	case PackageConflict:
		return "package-conflict"
	case PackageRequires:
		return "package-requires"
	case PackageObsoletes:
		return "package-obsoletes"
	case InstalledPackageObsoletes:
		return "installed-package-obsoletes"
	case PackageSameName:
		return "package-same-name"
	case PackageImplicitObsoletes:
		return "package-implicit-obsoletes"
	case Learned:
		return "learned"
	case PackageAlias:
		return "package-alias"
	}
	return "unknown"
}

// Rule is an immutable disjunction of literals. At least one literal must
// hold in any satisfying assignment. The empty rule is the distinguished
// always-false clause produced by an unfillable install job.
type Rule struct {
	// Literals is sorted ascending by signed value and deduplicated.
	Literals []Literal
	Reason   Reason

	// ReasonLink is the source link for requires/conflict/obsolete rules.
	ReasonLink *pkg.Link
	// ReasonPkg is the source package for obsolete rules.
	ReasonPkg *pkg.Pkg
	// Job is the originating request job, when there is one.
	Job *Job

	// ID and Type are assigned by the RuleSet at insertion.
	ID   int
	Type RuleType

	Disabled bool

	hash uint64

	// watch positions into Literals, maintained by the solver. Only
	// meaningful for rules with two or more literals.
	w1, w2 int
}

// NewRule builds a rule over the given literals, sorting and deduplicating
// them. Passing no literals yields the empty clause.
func NewRule(literals []Literal, reason Reason) *Rule {
	lits := make([]Literal, len(literals))
	copy(lits, literals)
	sort.Slice(lits, func(i, j int) bool { return lits[i] < lits[j] })
	dedup := lits[:0]
	var last Literal
	for i, l := range lits {
		if l == 0 {
			panic("solver: literal 0 in rule")
		}
		if i > 0 && l == last {
			continue
		}
		dedup = append(dedup, l)
		last = l
	}
	r := &Rule{Literals: dedup, Reason: reason, ID: -1, w1: 0, w2: 1}
	h, err := hashstructure.Hash(dedup, nil)
	if err != nil {
		// hashstructure cannot fail on a slice of ints
		panic(err)
	}
	r.hash = h
	return r
}

// Hash is a fingerprint of the literal sequence. Equal rules have equal
// hashes; the converse needs Equals.
func (r *Rule) Hash() uint64 {
	return r.hash
}

// Equals reports literal-sequence equality. Reason and job are ignored.
func (r *Rule) Equals(o *Rule) bool {
	if len(r.Literals) != len(o.Literals) {
		return false
	}
	for i, l := range r.Literals {
		if o.Literals[i] != l {
			return false
		}
	}
	return true
}

// IsAssertion reports whether the rule is a unit clause.
func (r *Rule) IsAssertion() bool {
	return len(r.Literals) == 1
}

func (r *Rule) String() string {
	if len(r.Literals) == 0 {
		return fmt.Sprintf("(empty) [%s]", r.Reason)
	}
	parts := make([]string, len(r.Literals))
	for i, l := range r.Literals {
		parts[i] = fmt.Sprintf("%d", l)
	}
	return fmt.Sprintf("(%s) [%s]", strings.Join(parts, "|"), r.Reason)
}
