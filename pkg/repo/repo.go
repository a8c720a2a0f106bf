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

// Package repo deals with package repositories: the repositories.yaml
// configuration, loading package definitions, and source checkouts.
package repo

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Entry describes one configured repository.
type Entry struct {
	Name string `yaml:"name"`
	// Type is "file" for local package definitions or "vcs" for a
	// version-control checkout.
	Type string `yaml:"type"`
	URL  string `yaml:"url"`
	// Priority breaks provider ties; higher wins.
	Priority int `yaml:"priority"`
}

// File represents the repositories.yaml file.
type File struct {
	APIVersion   string   `yaml:"apiVersion"`
	Repositories []*Entry `yaml:"repositories"`
}

// NewFile generates an empty repositories file.
func NewFile() *File {
	return &File{APIVersion: "v1", Repositories: []*Entry{}}
}

// LoadFile takes a file at the given path and returns a File object
func LoadFile(path string) (*File, error) {
	r := new(File)
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return r, errors.Wrapf(err, "couldn't load repositories file (%s)", path)
	}

	err = yaml.Unmarshal(b, r)
	return r, err
}

// Has returns true if the given name is already an entry.
func (f *File) Has(name string) bool {
	return f.Get(name) != nil
}

// Get returns the entry with the given name, or nil.
func (f *File) Get(name string) *Entry {
	for _, entry := range f.Repositories {
		if entry.Name == name {
			return entry
		}
	}
	return nil
}

// Add appends entries to the file.
func (f *File) Add(entries ...*Entry) {
	f.Repositories = append(f.Repositories, entries...)
}

// Remove drops the entry with the given name, reporting whether it was
// present.
func (f *File) Remove(name string) bool {
	for i, entry := range f.Repositories {
		if entry.Name == name {
			f.Repositories = append(f.Repositories[:i], f.Repositories[i+1:]...)
			return true
		}
	}
	return false
}

// WriteFile writes the repositories file to the given path.
func (f *File) WriteFile(path string, perm os.FileMode) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, perm)
}
