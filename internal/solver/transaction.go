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
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v2"

	pkg "github.com/stloyd/composer/internal/package"
)

// OperationKind is what the installer must do with one package.
type OperationKind int

const (
	OpInstall OperationKind = iota
	OpUpdate
	OpRemove
	OpMarkAliasInstalled
)

func (k OperationKind) String() string {
	switch k {
	case OpInstall:
		return "install"
	case OpUpdate:
		return "update"
	case OpRemove:
		return "remove"
	case OpMarkAliasInstalled:
		return "mark-alias-installed"
	}
	return "unknown"
}

// Operation is one step of the transaction. Update carries the outgoing
// version in PrevPkg.
type Operation struct {
	Kind    OperationKind
	Pkg     *pkg.Pkg
	PrevPkg *pkg.Pkg
	Reason  string
}

func (o *Operation) String() string {
	switch o.Kind {
	case OpUpdate:
		return fmt.Sprintf("update %s to %s", o.PrevPkg, o.Pkg)
	case OpMarkAliasInstalled:
		return fmt.Sprintf("mark alias %s installed", o.Pkg)
	}
	return fmt.Sprintf("%s %s", o.Kind, o.Pkg)
}

// OutputMode selects a rendering for FormatOutput.
type OutputMode int

const (
	JSON OutputMode = iota
	YAML
	Table
)

// Transaction is the ordered operation list turning the installed set into
// the solved set: removes of dependents before their dependencies,
// installs of dependencies before their dependents, alias marks trailing
// the install they belong to.
type Transaction struct {
	Operations []*Operation
}

// NewTransaction diffs the decided install set against the installed
// baseline.
func NewTransaction(pool *Pool, decisions *Decisions, installed map[int]bool, rules *RuleSet) *Transaction {
	var resultIDs, installIDs, removeIDs []int
	for id := 1; id <= pool.Size(); id++ {
		if decisions.DecidedInstall(id) {
			resultIDs = append(resultIDs, id)
			if !installed[id] {
				installIDs = append(installIDs, id)
			}
		} else if installed[id] {
			removeIDs = append(removeIDs, id)
		}
	}

	// ids named by any allow-update rule may coalesce into update
	// operations
	allowUpdate := map[int]bool{}
	for _, r := range rules.All() {
		if r.Reason != InternalAllowUpdate {
			continue
		}
		for _, l := range r.Literals {
			allowUpdate[l.ID()] = true
		}
	}

	updates := map[int]int{} // new id -> old id
	updated := map[int]bool{}
	for _, newID := range installIDs {
		np := pool.PackageByID(newID)
		if np.IsAlias() {
			continue
		}
		for _, oldID := range removeIDs {
			if updated[oldID] {
				continue
			}
			op := pool.PackageByID(oldID)
			if op.Name != np.Name {
				continue
			}
			if !allowUpdate[oldID] && !allowUpdate[newID] {
				continue
			}
			updates[newID] = oldID
			updated[oldID] = true
			break
		}
	}

	t := &Transaction{}

	// dependents go before the packages they require
	removeOrder := topoOrder(pool, removeIDs, resultIDs, true)
	for _, id := range removeOrder {
		if updated[id] {
			continue
		}
		t.Operations = append(t.Operations, &Operation{
			Kind:   OpRemove,
			Pkg:    pool.PackageByID(id),
			Reason: causeReason(decisions, rules, Literal(-id)),
		})
	}

	// dependencies go before the packages requiring them
	installOrder := topoOrder(pool, installIDs, resultIDs, false)
	for _, id := range installOrder {
		p := pool.PackageByID(id)
		reason := causeReason(decisions, rules, Literal(id))
		switch {
		case p.IsAlias():
			t.Operations = append(t.Operations, &Operation{Kind: OpMarkAliasInstalled, Pkg: p, Reason: reason})
		case updates[id] != 0:
			t.Operations = append(t.Operations, &Operation{
				Kind:    OpUpdate,
				Pkg:     p,
				PrevPkg: pool.PackageByID(updates[id]),
				Reason:  reason,
			})
		default:
			t.Operations = append(t.Operations, &Operation{Kind: OpInstall, Pkg: p, Reason: reason})
		}
	}

	return t
}

// topoOrder sorts ids so dependencies precede dependents (or the reverse).
// Edges follow requires links resolved inside the result set, plus one
// edge from each alias to the package it aliases; cycles are broken by id.
func topoOrder(pool *Pool, ids, resultIDs []int, dependentsFirst bool) []int {
	inSet := map[int]bool{}
	for _, id := range ids {
		inSet[id] = true
	}
	inResult := map[int]bool{}
	for _, id := range resultIDs {
		inResult[id] = true
	}

	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)

	visited := map[int]bool{}
	var order []int
	var visit func(id int)
	visit = func(id int) {
		if visited[id] {
			return
		}
		visited[id] = true
		p := pool.PackageByID(id)
		for _, link := range p.Requires {
			for _, dep := range pool.WhatProvides(link.Target, link.Constraint) {
				if dep == id {
					continue
				}
				// removals resolve their requirements against the old
				// installed world, installs against the new one
				if dependentsFirst {
					if inSet[dep] {
						visit(dep)
					}
				} else if inSet[dep] && inResult[dep] {
					visit(dep)
				}
			}
		}
		// an alias mark trails the install of the package it aliases
		if p.IsAlias() && inSet[p.AliasOf.ID] {
			visit(p.AliasOf.ID)
		}
		order = append(order, id)
	}
	for _, id := range sorted {
		visit(id)
	}

	if dependentsFirst {
		// post-order emits dependencies first; removals want dependents
		// first
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}
	return order
}

func causeReason(decisions *Decisions, rules *RuleSet, l Literal) string {
	if decisions.Undecided(l) && decisions.Undecided(l.Negate()) {
		return ""
	}
	cause := decisions.Cause(l)
	if cause == noCause {
		return ""
	}
	return rules.At(cause).Reason.String()
}

type transactionSummary struct {
	Install []string `json:"install,omitempty" yaml:"install,omitempty"`
	Update  []string `json:"update,omitempty" yaml:"update,omitempty"`
	Remove  []string `json:"remove,omitempty" yaml:"remove,omitempty"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

func (t *Transaction) summary() transactionSummary {
	var s transactionSummary
	for _, op := range t.Operations {
		switch op.Kind {
		case OpInstall:
			s.Install = append(s.Install, op.Pkg.GetFingerPrint())
		case OpUpdate:
			s.Update = append(s.Update, fmt.Sprintf("%s -> %s", op.PrevPkg.GetFingerPrint(), op.Pkg.GetFingerPrint()))
		case OpRemove:
			s.Remove = append(s.Remove, op.Pkg.GetFingerPrint())
		case OpMarkAliasInstalled:
			s.Aliases = append(s.Aliases, op.Pkg.GetFingerPrint())
		}
	}
	return s
}

// FormatOutput renders the operation list for the user.
func (t *Transaction) FormatOutput(mode OutputMode) string {
	var sb strings.Builder
	switch mode {
	case Table:
		table := uitable.New()
		table.AddRow("OPERATION", "PACKAGE", "VERSION")
		for _, op := range t.Operations {
			switch op.Kind {
			case OpUpdate:
				table.AddRow(op.Kind.String(), op.Pkg.Name,
					fmt.Sprintf("%s -> %s", op.PrevPkg.Version, op.Pkg.Version))
			default:
				table.AddRow(op.Kind.String(), op.Pkg.Name, op.Pkg.Version)
			}
		}
		sb.WriteString(table.String())
		sb.WriteString("\n")
	case YAML:
		o, _ := yaml.Marshal(t.summary())
		sb.Write(o)
	case JSON:
		o, _ := json.Marshal(t.summary())
		sb.Write(o)
	}
	return sb.String()
}
