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

// RuleType is the classification bucket a rule lands in at insertion.
type RuleType int

const (
	TypePackage RuleType = iota
	TypeJob
	TypeLearned
)

func (t RuleType) String() string {
	switch t {
	case TypePackage:
		return "package"
	case TypeJob:
		return "job"
	case TypeLearned:
		return "learned"
	}
	return "unknown"
}

// RuleSet owns every rule of a solve. Rules are interned by literal
// sequence: adding a duplicate returns the existing rule. Ids are assigned
// in insertion order and double as indexes into the insertion-ordered
// slice.
//
// The set also keeps the watched-literal index. Every rule with two or
// more literals watches two of them, initially the first two; the solver
// moves watches during propagation.
type RuleSet struct {
	rules   []*Rule
	byType  map[RuleType][]*Rule
	byHash  map[uint64][]*Rule
	watches map[Literal][]int
}

func NewRuleSet() *RuleSet {
	return &RuleSet{
		byType:  map[RuleType][]*Rule{},
		byHash:  map[uint64][]*Rule{},
		watches: map[Literal][]int{},
	}
}

// Add interns the rule under the given type. The bool reports whether the
// rule was new; a duplicate returns the already-known rule.
func (rs *RuleSet) Add(r *Rule, t RuleType) (*Rule, bool) {
	for _, known := range rs.byHash[r.hash] {
		if known.Equals(r) {
			return known, false
		}
	}
	r.ID = len(rs.rules)
	r.Type = t
	rs.rules = append(rs.rules, r)
	rs.byType[t] = append(rs.byType[t], r)
	rs.byHash[r.hash] = append(rs.byHash[r.hash], r)
	if len(r.Literals) >= 2 {
		r.w1, r.w2 = 0, 1
		rs.watches[r.Literals[0]] = append(rs.watches[r.Literals[0]], r.ID)
		rs.watches[r.Literals[1]] = append(rs.watches[r.Literals[1]], r.ID)
	}
	return r, true
}

// Len is the number of interned rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// At returns the rule with the given id.
func (rs *RuleSet) At(id int) *Rule {
	return rs.rules[id]
}

// All returns the rules in insertion order. The slice is shared; callers
// must not mutate it.
func (rs *RuleSet) All() []*Rule {
	return rs.rules
}

// ByType returns the rules of one bucket in insertion order.
func (rs *RuleSet) ByType(t RuleType) []*Rule {
	return rs.byType[t]
}

// WatchesOn returns ids of rules currently watching the literal. The slice
// is shared; callers must not mutate it.
func (rs *RuleSet) WatchesOn(l Literal) []int {
	return rs.watches[l]
}

// MoveWatch rewires rule id from watching `from` to watching `to`. The
// rule's own watch position must already point at `to`.
func (rs *RuleSet) MoveWatch(id int, from, to Literal) {
	rs.unwatch(id, from)
	rs.watches[to] = append(rs.watches[to], id)
}

func (rs *RuleSet) unwatch(id int, l Literal) {
	list := rs.watches[l]
	for i, rid := range list {
		if rid == id {
			rs.watches[l] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// WatchLearned points a learned rule's watches at the literal it asserts
// and at its highest-level other literal, so the watch invariant holds
// after the backjump. Must run before decisions are reverted.
func (rs *RuleSet) WatchLearned(r *Rule, assert Literal, d *Decisions) {
	if len(r.Literals) < 2 {
		return
	}
	ai, bi := 0, -1
	for i, l := range r.Literals {
		if l == assert {
			ai = i
			break
		}
	}
	best := -2
	for i, l := range r.Literals {
		if i == ai {
			continue
		}
		if lv := d.Level(l); lv > best {
			best = lv
			bi = i
		}
	}
	rs.unwatch(r.ID, r.Literals[r.w1])
	rs.unwatch(r.ID, r.Literals[r.w2])
	r.w1, r.w2 = ai, bi
	rs.watches[r.Literals[ai]] = append(rs.watches[r.Literals[ai]], r.ID)
	rs.watches[r.Literals[bi]] = append(rs.watches[r.Literals[bi]], r.ID)
}
