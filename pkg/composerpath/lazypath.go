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

package composerpath

import (
	"os"
	"path/filepath"

	"github.com/stloyd/composer/pkg/composerpath/xdg"
)

// lazypath is an lazy-loaded path buffer for the XDG base directory
// specification. The environment is consulted on every call, so tests can
// repoint it at runtime.
type lazypath string

func (l lazypath) path(composerEnvVar, xdgEnvVar string, defaultFn func() string, elem ...string) string {
	// a composer-specific environment variable beats the XDG dirs
	if base := os.Getenv(composerEnvVar); base != "" {
		return filepath.Join(base, filepath.Join(elem...))
	}
	base := os.Getenv(xdgEnvVar)
	if base == "" {
		base = defaultFn()
	}
	return filepath.Join(base, string(l), filepath.Join(elem...))
}

// cachePath defines the base directory relative to which user specific
// non-essential data files should be stored.
func (l lazypath) cachePath(elem ...string) string {
	return l.path("COMPOSER_CACHE_DIR", xdg.CacheHomeEnvVar, cacheHome, elem...)
}

// configPath defines the base directory relative to which user specific
// configuration files should be stored.
func (l lazypath) configPath(elem ...string) string {
	return l.path("COMPOSER_HOME", xdg.ConfigHomeEnvVar, configHome, elem...)
}

// dataPath defines the base directory relative to which user specific data
// files should be stored.
func (l lazypath) dataPath(elem ...string) string {
	return l.path("COMPOSER_DATA_DIR", xdg.DataHomeEnvVar, dataHome, elem...)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func cacheHome() string { return filepath.Join(homeDir(), ".cache") }

func configHome() string { return filepath.Join(homeDir(), ".config") }

func dataHome() string { return filepath.Join(homeDir(), ".local", "share") }
