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
	"context"
	"sort"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"

	pkg "github.com/stloyd/composer/internal/package"
)

// Solver turns a pool and a request into an operation list, or into a
// proof that no consistent install set exists. It owns the rule set, the
// decisions and the transient watch structures; the pool is shared and
// read-only during the solve.
//
// The search is conflict-driven: unit propagation over watched literals,
// policy-guided branching over open disjunctions, and 1-UIP clause
// learning with backjumping on every conflict. Branching is not limited to
// job and update rules: any rule whose negative literals all hold and that
// still has two or more open candidates is branched on, in rule-insertion
// order.
type Solver struct {
	pool   *Pool
	policy Policy
	logger log.Logger

	installed map[int]bool

	rules     *RuleSet
	decisions *Decisions
	request   *Request

	// rule generation state
	generated     map[int]bool
	removeTargets map[int]bool
	updateTargets map[int]bool

	// index of the next decision-stack entry to propagate
	propagated int

	// learned rule id -> antecedent rule ids of its derivation
	learnedWhy map[int][]int

	problems []*Problem
}

func New(pool *Pool, policy Policy, logger log.Logger) *Solver {
	return &Solver{
		pool:          pool,
		policy:        policy,
		logger:        logger,
		installed:     map[int]bool{},
		rules:         NewRuleSet(),
		decisions:     NewDecisions(),
		generated:     map[int]bool{},
		removeTargets: map[int]bool{},
		updateTargets: map[int]bool{},
		learnedWhy:    map[int][]int{},
	}
}

// SetInstalled declares the baseline install set by pool id. A default
// policy is handed the same set for its installed-first preference.
func (s *Solver) SetInstalled(ids ...int) {
	for _, id := range ids {
		s.installed[id] = true
	}
	if pol, ok := s.policy.(*DefaultPolicy); ok {
		pol.SetInstalled(s.installed)
	}
}

// Rules exposes the rule set for diagnostics and tests.
func (s *Solver) Rules() *RuleSet {
	return s.rules
}

// Decisions exposes the assignment for diagnostics and tests.
func (s *Solver) Decisions() *Decisions {
	return s.decisions
}

// LearnedWhy returns the antecedent rule ids a learned rule was resolved
// from.
func (s *Solver) LearnedWhy(ruleID int) []int {
	return s.learnedWhy[ruleID]
}

// Solve resolves the request. On success it returns the transaction; on an
// impossible request it returns a *ProblemsError; on context expiry it
// returns the wrapped context error with no partial result.
func (s *Solver) Solve(ctx context.Context, request *Request) (*Transaction, error) {
	s.request = request
	s.pool.Freeze()
	if err := s.pool.Validate(); err != nil {
		return nil, err
	}

	s.buildRules(request)
	s.logger.Debugf("solver: %d rules over %d packages", s.rules.Len(), s.pool.Size())
	if len(s.problems) > 0 {
		return nil, NewProblemsError(s.pool, s.problems...)
	}

	if !s.makeAssertionDecisions() {
		return nil, NewProblemsError(s.pool, s.problems...)
	}

	if err := s.runSat(ctx); err != nil {
		return nil, err
	}

	return NewTransaction(s.pool, s.decisions, s.installed, s.rules), nil
}

// --- phase 1: rule generation ---

func (s *Solver) buildRules(request *Request) {
	updateAll := false
	for _, job := range request.Jobs {
		switch job.Kind {
		case JobKindRemove:
			for _, id := range s.pool.WhatProvides(job.Name, nil) {
				if s.installed[id] {
					s.removeTargets[id] = true
				}
			}
		case JobKindUpdate:
			for _, id := range s.pool.WhatProvides(job.Name, nil) {
				if s.installed[id] {
					s.updateTargets[id] = true
				}
			}
		case JobKindUpdateAll:
			updateAll = true
		}
	}
	if updateAll {
		for id := range s.installed {
			s.updateTargets[id] = true
		}
	}

	// package rules for everything reachable from the installed set
	for _, id := range s.sortedInstalled() {
		s.addRulesForPackage(s.pool.PackageByID(id))
	}

	// job rules
	for _, job := range request.Jobs {
		switch job.Kind {
		case JobKindInstall:
			providers := s.pool.WhatProvides(job.Name, job.Constraint)
			lits := make([]Literal, 0, len(providers))
			for _, id := range providers {
				lits = append(lits, Literal(id))
				s.addRulesForPackage(s.pool.PackageByID(id))
			}
			r := NewRule(lits, JobInstall)
			r.Job = job
			added, fresh := s.rules.Add(r, TypeJob)
			if fresh && len(added.Literals) == 0 {
				// nothing provides the requested name: the empty clause,
				// attributable to this job
				p := &Problem{}
				p.AddRule(added)
				s.problems = append(s.problems, p)
			}
		case JobKindRemove:
			for _, id := range s.pool.WhatProvides(job.Name, nil) {
				r := NewRule([]Literal{Literal(-id)}, JobRemove)
				r.Job = job
				s.rules.Add(r, TypeJob)
			}
		}
	}

	// every installed package not being removed keeps its place or moves
	// to one of its update candidates
	updateJobs := map[int]*Job{}
	for _, job := range request.Jobs {
		if job.Kind == JobKindUpdate {
			for _, id := range s.pool.WhatProvides(job.Name, nil) {
				updateJobs[id] = job
			}
		}
		if job.Kind == JobKindUpdateAll {
			for id := range s.installed {
				updateJobs[id] = job
			}
		}
	}
	for _, id := range s.sortedInstalled() {
		if s.removeTargets[id] {
			continue
		}
		p := s.pool.PackageByID(id)
		candidates := s.policy.FindUpdatePackages(s.pool, s.decisions, p)
		lits := []Literal{Literal(id)}
		for _, c := range candidates {
			lits = append(lits, Literal(c.ID))
			s.addRulesForPackage(c)
		}
		r := NewRule(lits, InternalAllowUpdate)
		r.ReasonPkg = p
		r.Job = updateJobs[id]
		s.rules.Add(r, TypeJob)
	}
}

func (s *Solver) sortedInstalled() []int {
	ids := make([]int, 0, len(s.installed))
	for id := range s.installed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// addRulesForPackage emits the package rules for p and everything
// reachable from it, breadth-first, each package once.
func (s *Solver) addRulesForPackage(root *pkg.Pkg) {
	queue := []*pkg.Pkg{root}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if s.generated[p.ID] {
			continue
		}
		s.generated[p.ID] = true

		for _, link := range p.Requires {
			providers := s.pool.WhatProvides(link.Target, link.Constraint)
			lits := []Literal{Literal(-p.ID)}
			for _, id := range providers {
				if id == p.ID {
					continue
				}
				lits = append(lits, Literal(id))
				queue = append(queue, s.pool.PackageByID(id))
			}
			r := NewRule(lits, PackageRequires)
			r.ReasonLink = link
			s.rules.Add(r, TypePackage)
		}

		for _, link := range p.Conflicts {
			for _, id := range s.pool.WhatProvides(link.Target, link.Constraint) {
				if id == p.ID {
					continue
				}
				r := NewRule([]Literal{Literal(-p.ID), Literal(-id)}, PackageConflict)
				r.ReasonLink = link
				s.rules.Add(r, TypePackage)
				queue = append(queue, s.pool.PackageByID(id))
			}
		}

		// at most one package per effective name
		for _, id := range s.pool.WhatProvides(p.Name, nil) {
			if id == p.ID {
				continue
			}
			q := s.pool.PackageByID(id)
			if q.AliasOf == p || p.AliasOf == q {
				continue
			}
			if q.Name != p.Name {
				// a replacer; handled as an obsolete below, from its side
				continue
			}
			r := NewRule([]Literal{Literal(-p.ID), Literal(-id)}, PackageSameName)
			s.rules.Add(r, TypePackage)
			queue = append(queue, q)
		}

		for _, link := range p.Replaces {
			for _, id := range s.pool.WhatProvides(link.Target, nil) {
				if id == p.ID {
					continue
				}
				q := s.pool.PackageByID(id)
				if q.AliasOf == p || p.AliasOf == q {
					continue
				}
				reason := PackageObsoletes
				if s.installed[p.ID] {
					reason = InstalledPackageObsoletes
				} else if link.Target == p.Name {
					reason = PackageImplicitObsoletes
				}
				r := NewRule([]Literal{Literal(-p.ID), Literal(-id)}, reason)
				r.ReasonLink = link
				r.ReasonPkg = p
				s.rules.Add(r, TypePackage)
				queue = append(queue, q)
			}
		}

		// aliases and their target must come and go together
		if p.IsAlias() {
			s.addAliasRules(p.AliasOf, p)
			queue = append(queue, p.AliasOf)
		}
		for _, id := range s.pool.WhatProvides(p.Name, nil) {
			q := s.pool.PackageByID(id)
			if q.AliasOf == p {
				s.addAliasRules(p, q)
				queue = append(queue, q)
			}
		}
	}
}

func (s *Solver) addAliasRules(concrete, alias *pkg.Pkg) {
	r := NewRule([]Literal{Literal(-alias.ID), Literal(concrete.ID)}, PackageAlias)
	r.ReasonPkg = concrete
	s.rules.Add(r, TypePackage)
	r = NewRule([]Literal{Literal(-concrete.ID), Literal(alias.ID)}, PackageAlias)
	r.ReasonPkg = concrete
	s.rules.Add(r, TypePackage)
}

// --- phase 2: level-0 assertions ---

// makeAssertionDecisions applies every unit rule at level 0. A
// contradiction between assertions is unsolvable before search even
// starts; all such contradictions are collected.
func (s *Solver) makeAssertionDecisions() bool {
	ok := true
	for _, r := range s.rules.All() {
		if r.Disabled || !r.IsAssertion() {
			continue
		}
		lit := r.Literals[0]
		if s.decisions.Satisfied(lit) {
			continue
		}
		if s.decisions.Conflicting(lit) {
			s.problems = append(s.problems, s.analyzeUnsolvable(r))
			ok = false
			continue
		}
		s.decisions.Decide(lit, 0, r.ID)
	}
	return ok
}

// --- phase 3: search ---

func (s *Solver) runSat(ctx context.Context) error {
	level := 0
	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "solver cancelled")
		}

		if conflict := s.propagate(level); conflict != nil {
			if level == 0 {
				return NewProblemsError(s.pool, s.analyzeUnsolvable(conflict))
			}
			var err error
			level, err = s.resolveConflict(conflict, level)
			if err != nil {
				return err
			}
			continue
		}

		if lit, ok := s.selectBranch(); ok {
			level++
			s.decisions.Decide(lit, level, noCause)
			continue
		}

		// no open disjunction wants anything installed; everything still
		// undecided stays out of the install set
		if id := s.firstUndecided(); id != 0 {
			level++
			s.decisions.Decide(Literal(-id), level, noCause)
			continue
		}

		return nil
	}
}

func (s *Solver) firstUndecided() int {
	for id := 1; id <= s.pool.Size(); id++ {
		if s.decisions.Undecided(Literal(id)) {
			return id
		}
	}
	return 0
}

// selectBranch scans the rules in insertion order for the first one that
// demands a decision: every negative literal already installed, no
// positive literal installed, and at least two candidates left. The policy
// picks among the candidates.
func (s *Solver) selectBranch() (Literal, bool) {
	for _, r := range s.rules.All() {
		if r.Disabled {
			continue
		}
		var undecided []Literal
		active := true
		for _, l := range r.Literals {
			if !l.IsWanted() {
				if !s.decisions.DecidedInstall(l.ID()) {
					active = false
					break
				}
				continue
			}
			if s.decisions.DecidedInstall(l.ID()) {
				active = false
				break
			}
			if s.decisions.Undecided(l) {
				undecided = append(undecided, l)
			}
		}
		// a single candidate is unit propagation's business
		if !active || len(undecided) < 2 {
			continue
		}
		// an installed package nobody asked to update keeps its place
		if r.Reason == InternalAllowUpdate && r.ReasonPkg != nil && !s.updateTargets[r.ReasonPkg.ID] {
			keep := Literal(r.ReasonPkg.ID)
			if s.decisions.Undecided(keep) {
				return keep, true
			}
		}
		ranked := s.policy.SelectPreferredPackages(s.pool, s.decisions, undecided)
		return ranked[0], true
	}
	return 0, false
}

// propagate drives unit propagation to fixpoint, returning the first rule
// with every literal false, or nil.
func (s *Solver) propagate(level int) *Rule {
	for s.propagated < s.decisions.Len() {
		d := s.decisions.At(s.propagated)
		s.propagated++
		falsified := d.Literal.Negate()
		// the watch list mutates while we walk it
		watchers := append([]int(nil), s.rules.WatchesOn(falsified)...)
		for _, id := range watchers {
			r := s.rules.At(id)
			if r.Disabled {
				continue
			}
			if conflict := s.propagateRule(r, falsified, level); conflict {
				return r
			}
		}
	}
	return nil
}

// propagateRule inspects one rule whose watched literal just became false.
// It moves the watch when it can, unit-propagates when only one non-false
// literal remains, and reports a conflict when none does.
func (s *Solver) propagateRule(r *Rule, falsified Literal, level int) bool {
	wi := r.w1
	other := r.Literals[r.w2]
	if r.Literals[r.w1] != falsified {
		if r.Literals[r.w2] != falsified {
			// stale watch entry left behind by MoveWatch; nothing to do
			return false
		}
		wi = r.w2
		other = r.Literals[r.w1]
	}

	if s.decisions.Satisfied(other) {
		return false
	}

	for k, l := range r.Literals {
		if k == r.w1 || k == r.w2 {
			continue
		}
		if !s.decisions.Conflicting(l) {
			if wi == r.w1 {
				r.w1 = k
			} else {
				r.w2 = k
			}
			s.rules.MoveWatch(r.ID, falsified, l)
			return false
		}
	}

	if s.decisions.Undecided(other) {
		s.decisions.Decide(other, level, r.ID)
		return false
	}
	return true
}

// resolveConflict learns the 1-UIP clause, backjumps, and asserts the
// learned literal. It returns the new decision level.
func (s *Solver) resolveConflict(conflict *Rule, level int) (int, error) {
	learnedLits, btLevel, why := s.analyze(conflict, level)
	if len(learnedLits) == 0 {
		return 0, NewProblemsError(s.pool, s.analyzeUnsolvable(conflict))
	}

	learned := NewRule(learnedLits, Learned)
	added, fresh := s.rules.Add(learned, TypeLearned)
	if fresh {
		s.learnedWhy[added.ID] = why
		s.rules.WatchLearned(added, learnedLits[0], s.decisions)
	}

	s.decisions.RevertToLevel(btLevel)
	s.propagated = s.decisions.Len()
	s.decisions.Decide(learnedLits[0], btLevel, added.ID)

	s.logger.Debugf("solver: learned %s, backjump to level %d", added, btLevel)
	return btLevel, nil
}

// analyze walks the implication trail backwards from the conflict,
// resolving against the causes of current-level literals until a single
// one remains: the unique implication point. The learned clause is the
// negated UIP first, then the contributing lower-level literals; the
// backtrack level is the highest level among the latter.
func (s *Solver) analyze(conflict *Rule, level int) ([]Literal, int, []int) {
	seen := map[int]bool{}
	var lower []Literal
	btLevel := 0
	counter := 0
	why := []int{}

	cur := conflict
	trailIdx := s.decisions.Len() - 1
	var uip Literal

	for {
		why = append(why, cur.ID)
		for _, q := range cur.Literals {
			id := q.ID()
			if seen[id] {
				continue
			}
			seen[id] = true
			qLevel := s.decisions.Level(q)
			switch {
			case qLevel == level:
				counter++
			case qLevel > 0:
				lower = append(lower, q)
				if qLevel > btLevel {
					btLevel = qLevel
				}
			}
		}

		for {
			d := s.decisions.At(trailIdx)
			trailIdx--
			if seen[d.Literal.ID()] {
				uip = d.Literal
				if counter > 1 {
					// not the UIP yet; resolve against its cause
					cur = s.rules.At(d.RuleID)
				}
				break
			}
		}

		counter--
		if counter == 0 {
			break
		}
	}

	return append([]Literal{uip.Negate()}, lower...), btLevel, why
}

// analyzeUnsolvable gathers every rule implicated in an unsolvable
// conflict: the seed rule, the causes of each of its literals, and the
// derivations of any learned rule among them.
func (s *Solver) analyzeUnsolvable(seed *Rule) *Problem {
	problem := &Problem{}
	seenRules := map[int]bool{}
	seenIDs := map[int]bool{}
	stack := []*Rule{seed}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r.ID >= 0 {
			if seenRules[r.ID] {
				continue
			}
			seenRules[r.ID] = true
		}
		problem.AddRule(r)
		if r.Reason == Learned {
			for _, id := range s.learnedWhy[r.ID] {
				stack = append(stack, s.rules.At(id))
			}
		}
		for _, l := range r.Literals {
			id := l.ID()
			if seenIDs[id] {
				continue
			}
			seenIDs[id] = true
			if s.decisions.Undecided(l) {
				continue
			}
			if cause := s.decisions.Cause(l); cause != noCause {
				stack = append(stack, s.rules.At(cause))
			}
		}
	}
	return problem
}
