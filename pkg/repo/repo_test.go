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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "composer-repo")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "repositories.yaml")
	content := `apiVersion: v1
repositories:
- name: packagist
  type: file
  url: /srv/packagist/packages.json
  priority: 0
- name: internal
  type: file
  url: /srv/internal/packages.json
  priority: 10
`
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))

	f, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, f.Repositories, 2)
	assert.True(t, f.Has("packagist"))
	assert.Equal(t, 10, f.Get("internal").Priority)
	assert.False(t, f.Has("missing"))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/repositories.yaml")
	assert.Error(t, err)
}

func TestFileAddRemoveWrite(t *testing.T) {
	dir, err := ioutil.TempDir("", "composer-repo")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	f := NewFile()
	f.Add(&Entry{Name: "packagist", Type: "file", URL: "/srv/packages.json"})
	assert.True(t, f.Has("packagist"))
	assert.True(t, f.Remove("packagist"))
	assert.False(t, f.Remove("packagist"))

	f.Add(&Entry{Name: "internal", Type: "file", URL: "/srv/internal.json", Priority: 3})
	path := filepath.Join(dir, "repositories.yaml")
	require.NoError(t, f.WriteFile(path, 0644))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Get("internal").Priority)
}

func TestLoadDefinitions(t *testing.T) {
	dir, err := ioutil.TempDir("", "composer-repo")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "packages.json")
	content := `{
  "packages": [
    {
      "name": "monolog/monolog",
      "version": "1.0.0",
      "require": {"psr/log": "^1"},
      "suggest": {"ext-curl": "*"},
      "source-reference": "abc123"
    },
    {
      "name": "psr/log",
      "version": "1.1.0",
      "replace": {"psr/log-implementation": "1.0.0"}
    },
    {
      "name": "symfony/http",
      "version": "dev-master",
      "alias": "2.0.0"
    }
  ]
}`
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))

	r, err := LoadDefinitions(path, "packagist", 5)
	require.NoError(t, err)
	assert.Equal(t, "packagist", r.Name())
	assert.Equal(t, 5, r.Priority())

	pkgs, err := r.Packages()
	require.NoError(t, err)
	require.Len(t, pkgs, 4)

	monolog := pkgs[0]
	assert.Equal(t, "monolog/monolog", monolog.Name)
	require.Len(t, monolog.Requires, 1)
	assert.Equal(t, "psr/log", monolog.Requires[0].Target)
	require.Len(t, monolog.Suggests, 1)
	assert.Equal(t, "abc123", monolog.SourceReference)

	psr := pkgs[1]
	require.Len(t, psr.Replaces, 1)
	assert.Equal(t, "psr/log-implementation", psr.Replaces[0].Target)

	// the alias record follows its package
	assert.False(t, pkgs[2].IsAlias())
	assert.True(t, pkgs[3].IsAlias())
	assert.Equal(t, "2.0.0", pkgs[3].Version)
	assert.Same(t, pkgs[2], pkgs[3].AliasOf)
}

func TestLoadDefinitionsRejectsIncomplete(t *testing.T) {
	dir, err := ioutil.TempDir("", "composer-repo")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "packages.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(`{"packages":[{"name":"x/y"}]}`), 0644))

	_, err = LoadDefinitions(path, "packagist", 0)
	assert.Error(t, err)
}
