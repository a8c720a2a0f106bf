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
	"strings"
)

// LiteralRenderer resolves literals and ids to human-readable package
// strings. The pool implements it; problems stay decoupled from the pool
// itself.
type LiteralRenderer interface {
	LiteralString(l Literal) string
	PkgString(id int) string
}

// Problem is one independent piece of unsatisfiability evidence: the rules
// implicated by a failed derivation, attributed to a job when possible.
type Problem struct {
	Rules []*Rule
	Job   *Job
}

// AddRule records an implicated rule once.
func (p *Problem) AddRule(r *Rule) {
	for _, known := range p.Rules {
		if known.ID == r.ID && known.ID >= 0 {
			return
		}
	}
	p.Rules = append(p.Rules, r)
	if p.Job == nil && r.Job != nil {
		p.Job = r.Job
	}
}

// Render spells the problem out, one sentence per rule.
func (p *Problem) Render(lr LiteralRenderer) string {
	var sb strings.Builder
	if p.Job != nil {
		fmt.Fprintf(&sb, "Problem caused by job %q:\n", p.Job.String())
	} else {
		sb.WriteString("Problem:\n")
	}
	for _, r := range p.Rules {
		sb.WriteString("    - ")
		sb.WriteString(RenderRule(r, lr))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderRule explains a single rule through its reason tag.
func RenderRule(r *Rule, lr LiteralRenderer) string {
	switch r.Reason {
	case JobInstall:
		if len(r.Literals) == 0 {
			name := "?"
			if r.Job != nil {
				name = fmt.Sprintf("%s %s", r.Job.Name, r.Job.Pretty)
			}
			return fmt.Sprintf("Install command rule: no package found to satisfy %s.", name)
		}
		return fmt.Sprintf("Install command rule (%s)", renderLiterals(r.Literals, lr))
	case JobRemove:
		return fmt.Sprintf("Remove command rule (%s)", renderLiterals(r.Literals, lr))
	case PackageConflict:
		if len(r.Literals) == 2 {
			return fmt.Sprintf("%s conflicts with %s.",
				lr.PkgString(r.Literals[0].ID()), lr.PkgString(r.Literals[1].ID()))
		}
	case PackageRequires:
		return renderRequires(r, lr)
	case PackageObsoletes, PackageImplicitObsoletes, InstalledPackageObsoletes:
		// the three obsolete flavors read the same; the tag only matters
		// for diagnostics
		if len(r.Literals) == 2 {
			replacer, replaced := r.Literals[0].ID(), r.Literals[1].ID()
			if r.ReasonPkg != nil && replaced == r.ReasonPkg.ID {
				replacer, replaced = replaced, replacer
			}
			return fmt.Sprintf("%s replaces %s and thus cannot coexist with it.",
				lr.PkgString(replacer), lr.PkgString(replaced))
		}
	case PackageSameName:
		names := make([]string, len(r.Literals))
		for i, l := range r.Literals {
			names[i] = lr.PkgString(l.ID())
		}
		return fmt.Sprintf("Can only install one of: %s.", strings.Join(names, ", "))
	case PackageAlias:
		if len(r.Literals) == 2 {
			// ReasonPkg is the aliased package; the other literal is the alias
			alias, target := r.Literals[1].ID(), r.Literals[0].ID()
			if r.ReasonPkg != nil && alias == r.ReasonPkg.ID {
				alias, target = target, alias
			}
			return fmt.Sprintf("%s is an alias of %s and must be installed with it.",
				lr.PkgString(alias), lr.PkgString(target))
		}
	case InternalAllowUpdate:
		return fmt.Sprintf("Update rule (%s)", renderLiterals(r.Literals, lr))
	case Learned:
		return fmt.Sprintf("Conclusion: (%s)", renderLiterals(r.Literals, lr))
	}
	return fmt.Sprintf("(%s)", renderLiterals(r.Literals, lr))
}

func renderRequires(r *Rule, lr LiteralRenderer) string {
	if len(r.Literals) == 0 {
		return "(empty requirement)"
	}
	source := lr.PkgString(r.Literals[0].ID())
	link := r.ReasonLink
	if link == nil {
		return fmt.Sprintf("(%s)", renderLiterals(r.Literals, lr))
	}
	req := fmt.Sprintf("%s requires %s (%s)", source, link.Target, link.Pretty)

	if len(r.Literals) == 1 {
		switch {
		case strings.HasPrefix(link.Target, "ext-"):
			ext := strings.TrimPrefix(link.Target, "ext-")
			return fmt.Sprintf("%s -> the requested extension %s is missing from your system or has the wrong version.", req, ext)
		case strings.HasPrefix(link.Target, "lib-"):
			lib := strings.TrimPrefix(link.Target, "lib-")
			return fmt.Sprintf("%s -> the linked library %s has the wrong version installed or is missing.", req, lib)
		}
		return fmt.Sprintf("%s -> no matching package found.", req)
	}

	providers := make([]string, 0, len(r.Literals)-1)
	for _, l := range r.Literals {
		if l.IsWanted() {
			providers = append(providers, lr.PkgString(l.ID()))
		}
	}
	return fmt.Sprintf("%s -> satisfiable by %s.", req, strings.Join(providers, ", "))
}

func renderLiterals(lits []Literal, lr LiteralRenderer) string {
	parts := make([]string, len(lits))
	for i, l := range lits {
		parts[i] = lr.LiteralString(l)
	}
	return strings.Join(parts, "|")
}

// ProblemsError is the error a solve surfaces when the request cannot be
// satisfied. It carries the full problem tree.
type ProblemsError struct {
	Problems []*Problem
	renderer LiteralRenderer
}

func NewProblemsError(lr LiteralRenderer, problems ...*Problem) *ProblemsError {
	return &ProblemsError{Problems: problems, renderer: lr}
}

func (e *ProblemsError) Error() string {
	var sb strings.Builder
	sb.WriteString("the requested package set is not installable:\n")
	for i, p := range e.Problems {
		fmt.Fprintf(&sb, "  Problem %d\n", i+1)
		for _, line := range strings.Split(strings.TrimRight(p.Render(e.renderer), "\n"), "\n") {
			sb.WriteString("  " + line + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
