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

/*
Package solver resolves package installation requests against a pool of
candidate package versions, producing the concrete install, update and
remove operations that satisfy every requirement at once, or a readable
proof that no such set of operations exists.

To perform an operation, for example "install packageA", we:

 1. Build a pool of all packages in the world: the installed set, and
    every version published by the known repositories. Each package gets a
    dense positive id; a signed id (a literal) states that the package is
    (+) or is not (-) part of the install set.

 2. Translate the pool and the request into rules. A rule is a disjunction
    of literals that must hold: requirements ("not A, or one of its
    providers"), conflicts, one-version-per-name, replacements, alias
    co-installation, and the request's own jobs.

 3. Search for an assignment satisfying every rule: unit propagation over
    watched literals, preference-guided decisions over the open rules (job,
    update and requires rules alike), and on every dead end a learned
    clause (1-UIP) plus a backjump, so the same dead end is never visited
    twice.

 4. On success, diff the decided install set against the installed
    baseline into an ordered operation list. On failure, walk the conflict
    derivation and render the implicated rules as a problem report.

The pool is read-only during a solve and safe to share between solvers.
The solve itself is single-threaded and synchronous; cancellation goes
through the context handed to Solve.
*/
package solver
