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

// Package lockfile reads and writes composer.lock: the exact package
// versions a previous solve settled on, used as the installed baseline of
// the next one.
package lockfile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"os"
	"sort"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	pkg "github.com/stloyd/composer/internal/package"
	"github.com/stloyd/composer/pkg/repo"
)

// LockedPackage pins one package.
type LockedPackage struct {
	Name            string            `json:"package"`
	Version         string            `json:"version"`
	SourceURL       string            `json:"source-url,omitempty"`
	SourceReference string            `json:"source-reference,omitempty"`
	Require         map[string]string `json:"require,omitempty"`
	Dev             bool              `json:"dev,omitempty"`
}

// LockedAlias pins one alias record.
type LockedAlias struct {
	Package string `json:"package"`
	Version string `json:"version"`
	Alias   string `json:"alias"`
}

// File is the composer.lock document.
type File struct {
	ContentHash string           `json:"content-hash,omitempty"`
	Packages    []*LockedPackage `json:"packages"`
	Aliases     []*LockedAlias   `json:"aliases,omitempty"`
}

// Read loads the lock file at the given path. A missing file yields an
// empty lock, not an error.
func Read(path string) (*File, error) {
	b, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read lock file (%s)", path)
	}
	f := &File{}
	if err := json.Unmarshal(b, f); err != nil {
		return nil, errors.Wrapf(err, "invalid lock file (%s)", path)
	}
	return f, nil
}

// Write persists the lock file under an advisory flock, so concurrent
// composer runs do not interleave writes.
func (f *File) Write(path string) error {
	f.ContentHash = f.hash()

	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(f); err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Wrapf(err, "unable to lock %s", path)
	}
	if !locked {
		return errors.Errorf("lock file %s is held by another process", path)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	return ioutil.WriteFile(path, buffer.Bytes(), 0644)
}

func (f *File) hash() string {
	h := sha256.New()
	for _, p := range f.Packages {
		h.Write([]byte(p.Name + "\x00" + p.Version + "\x00" + p.SourceReference + "\n"))
	}
	for _, a := range f.Aliases {
		h.Write([]byte(a.Package + "\x00" + a.Version + "\x00" + a.Alias + "\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FromPackages rebuilds the lock document from a solved install set.
// Packages are recorded sorted by name, aliases separately.
func FromPackages(pkgs []*pkg.Pkg) *File {
	f := &File{}
	for _, p := range pkgs {
		if p.IsAlias() {
			f.Aliases = append(f.Aliases, &LockedAlias{
				Package: p.Name,
				Version: p.AliasOf.Version,
				Alias:   p.Version,
			})
			continue
		}
		lp := &LockedPackage{
			Name:            p.Name,
			Version:         p.Version,
			SourceURL:       p.SourceURL,
			SourceReference: p.SourceReference,
			Dev:             p.IsDev,
		}
		for _, l := range p.Requires {
			if lp.Require == nil {
				lp.Require = map[string]string{}
			}
			lp.Require[l.Target] = l.Pretty
		}
		f.Packages = append(f.Packages, lp)
	}
	sort.Slice(f.Packages, func(i, j int) bool { return f.Packages[i].Name < f.Packages[j].Name })
	sort.Slice(f.Aliases, func(i, j int) bool { return f.Aliases[i].Package < f.Aliases[j].Package })
	return f
}

// ToRepository reconstructs the installed baseline from the lock.
func (f *File) ToRepository(name string) (*repo.ArrayRepository, error) {
	r := repo.NewArrayRepository(name, 0)
	byFingerprint := map[string]*pkg.Pkg{}
	for _, lp := range f.Packages {
		p := pkg.NewPkg(lp.Name, lp.Version, name, 0)
		p.SourceURL = lp.SourceURL
		p.SourceReference = lp.SourceReference
		targets := make([]string, 0, len(lp.Require))
		for target := range lp.Require {
			targets = append(targets, target)
		}
		sort.Strings(targets)
		for _, target := range targets {
			l, err := pkg.NewLink(target, lp.Require[target])
			if err != nil {
				return nil, errors.Wrapf(err, "locked package %s", lp.Name)
			}
			p.Requires = append(p.Requires, l)
		}
		r.AddPackage(p)
		byFingerprint[p.GetFingerPrint()] = p
	}
	for _, a := range f.Aliases {
		target, ok := byFingerprint[a.Package+"-"+a.Version]
		if !ok {
			return nil, errors.Errorf("lock aliases %s %s, which it does not contain", a.Package, a.Version)
		}
		r.AddPackage(pkg.NewAlias(target, a.Alias))
	}
	return r, nil
}
