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

package repo

import (
	"os"

	"github.com/Masterminds/vcs"
	"github.com/pkg/errors"
)

// VCSFetcher materializes version-control checkouts for packages carrying
// a source reference. The installer uses it when sources are preferred
// over dist archives.
type VCSFetcher struct{}

// Fetch clones or updates the remote into local and, when a reference is
// given, checks it out.
func (f *VCSFetcher) Fetch(remote, local, reference string) error {
	if err := os.MkdirAll(local, 0755); err != nil {
		return errors.Wrapf(err, "unable to create checkout directory %s", local)
	}
	r, err := vcs.NewRepo(remote, local)
	if err != nil {
		return errors.Wrapf(err, "unable to identify VCS for %s", remote)
	}
	if r.CheckLocal() {
		if err := r.Update(); err != nil {
			return errors.Wrapf(err, "unable to update checkout of %s", remote)
		}
	} else {
		if err := r.Get(); err != nil {
			return errors.Wrapf(err, "unable to clone %s", remote)
		}
	}
	if reference != "" {
		if err := r.UpdateVersion(reference); err != nil {
			return errors.Wrapf(err, "unable to check out reference %s of %s", reference, remote)
		}
	}
	return nil
}
