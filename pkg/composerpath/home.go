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

// Package composerpath calculates filesystem paths to composer's
// configuration, cache and data.
package composerpath

const lp = lazypath("composer")

// ConfigPath returns the path where composer stores configuration.
func ConfigPath(elem ...string) string { return lp.configPath(elem...) }

// CachePath returns the path where composer stores cached objects, such as
// repository metadata.
func CachePath(elem ...string) string { return lp.cachePath(elem...) }

// DataPath returns the path where composer stores data.
func DataPath(elem ...string) string { return lp.dataPath(elem...) }

// CacheRepoFile returns the path to the cached package definitions of the
// given named repository.
func CacheRepoFile(name string) string {
	if name != "" {
		name += "-"
	}
	return name + "packages.json"
}
