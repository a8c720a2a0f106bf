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

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// JobKind is the intent of one request job.
type JobKind int

const (
	JobKindInstall JobKind = iota
	JobKindRemove
	JobKindUpdate
	JobKindUpdateAll
)

func (k JobKind) String() string {
	switch k {
	case JobKindInstall:
		return "install"
	case JobKindRemove:
		return "remove"
	case JobKindUpdate:
		return "update"
	case JobKindUpdateAll:
		return "update-all"
	}
	return "unknown"
}

// Job is one user intent. Unknown package names are allowed; the solver
// discovers them as unsatisfiable install jobs.
type Job struct {
	Kind       JobKind
	Name       string
	Constraint *semver.Constraints
	// Pretty keeps the constraint as the user wrote it, for messages.
	Pretty string
}

func (j *Job) String() string {
	switch j.Kind {
	case JobKindInstall:
		return fmt.Sprintf("install %s %s", j.Name, j.Pretty)
	case JobKindRemove:
		return fmt.Sprintf("remove %s", j.Name)
	case JobKindUpdate:
		return fmt.Sprintf("update %s", j.Name)
	}
	return "update all packages"
}

// Request is the ordered list of jobs the solver resolves in one run.
type Request struct {
	Jobs []*Job
}

func NewRequest() *Request {
	return &Request{}
}

// Install queues installation of name under a constraint expression.
// An empty expression or "*" allows any version.
func (r *Request) Install(name, constraint string) error {
	j := &Job{Kind: JobKindInstall, Name: strings.ToLower(name), Pretty: constraint}
	if constraint == "" || constraint == "*" {
		j.Pretty = "*"
	} else {
		c, err := semver.NewConstraint(constraint)
		if err != nil {
			return errors.Wrapf(err, "install %s: invalid constraint %q", name, constraint)
		}
		j.Constraint = c
	}
	r.Jobs = append(r.Jobs, j)
	return nil
}

// Remove queues removal of every installed provider of name.
func (r *Request) Remove(name string) {
	r.Jobs = append(r.Jobs, &Job{Kind: JobKindRemove, Name: strings.ToLower(name), Pretty: "*"})
}

// Update allows the installed providers of name to move to newer versions.
func (r *Request) Update(name string) {
	r.Jobs = append(r.Jobs, &Job{Kind: JobKindUpdate, Name: strings.ToLower(name), Pretty: "*"})
}

// UpdateAll allows every installed package to move.
func (r *Request) UpdateAll() {
	r.Jobs = append(r.Jobs, &Job{Kind: JobKindUpdateAll, Pretty: "*"})
}
