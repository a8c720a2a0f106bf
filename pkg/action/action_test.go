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

package action

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkg "github.com/stloyd/composer/internal/package"
	"github.com/stloyd/composer/internal/solver"
	"github.com/stloyd/composer/pkg/cli"
	"github.com/stloyd/composer/pkg/lockfile"
	"github.com/stloyd/composer/pkg/repo"
)

func newTestLogger() log.Logger {
	buf := new(bytes.Buffer)
	logger := logcli.NewStandard()
	logger.InfoOut = buf
	logger.WarnOut = buf
	logger.ErrorOut = buf
	logger.DebugOut = buf
	return logger
}

func testSettings(t *testing.T) (*cli.EnvSettings, string) {
	t.Helper()
	dir, err := ioutil.TempDir("", "composer-action")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return &cli.EnvSettings{WorkingDir: dir, VendorDir: "vendor"}, dir
}

func TestInstallActionEndToEnd(t *testing.T) {
	settings, dir := testSettings(t)

	packagist := repo.NewArrayRepository("packagist", 0,
		pkg.NewPkgMock("monolog/monolog", "1.0.0", pkg.MustLink("psr/log", "^1")),
		pkg.NewPkgMock("psr/log", "1.1.0"),
	)
	cfg := &Configuration{
		Repositories: []repo.Repository{packagist},
		LockFilePath: filepath.Join(dir, "composer.lock"),
		Logger:       newTestLogger(),
	}

	client := NewInstall(cfg)
	tr, err := client.Run(context.Background(), map[string]string{"monolog/monolog": "^1"}, settings)
	require.NoError(t, err)
	require.Len(t, tr.Operations, 2)

	// packages landed in the vendor dir
	_, err = os.Stat(filepath.Join(dir, "vendor", "monolog/monolog"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "vendor", "psr/log"))
	assert.NoError(t, err)

	// and the lock pins both
	lock, err := lockfile.Read(cfg.LockFilePath)
	require.NoError(t, err)
	require.Len(t, lock.Packages, 2)
	assert.Equal(t, "monolog/monolog", lock.Packages[0].Name)
	assert.Equal(t, "psr/log", lock.Packages[1].Name)
}

func TestInstallActionDryRun(t *testing.T) {
	settings, dir := testSettings(t)

	packagist := repo.NewArrayRepository("packagist", 0,
		pkg.NewPkgMock("psr/log", "1.1.0"),
	)
	cfg := &Configuration{
		Repositories: []repo.Repository{packagist},
		LockFilePath: filepath.Join(dir, "composer.lock"),
		Logger:       newTestLogger(),
	}

	client := NewInstall(cfg)
	client.DryRun = true
	tr, err := client.Run(context.Background(), map[string]string{"psr/log": "^1"}, settings)
	require.NoError(t, err)
	require.Len(t, tr.Operations, 1)

	_, err = os.Stat(filepath.Join(dir, "vendor"))
	assert.True(t, os.IsNotExist(err), "dry run must not touch the vendor dir")
	_, err = os.Stat(cfg.LockFilePath)
	assert.True(t, os.IsNotExist(err), "dry run must not write the lock file")
}

func TestInstallActionUnsolvable(t *testing.T) {
	settings, _ := testSettings(t)

	packagist := repo.NewArrayRepository("packagist", 0,
		pkg.NewPkgMock("a/a", "1.0.0", pkg.MustLink("c/c", "^1")),
		pkg.NewPkgMock("b/b", "1.0.0", pkg.MustLink("c/c", "^2")),
		pkg.NewPkgMock("c/c", "1.0.0"),
		pkg.NewPkgMock("c/c", "2.0.0"),
	)
	cfg := &Configuration{
		Repositories: []repo.Repository{packagist},
		Logger:       newTestLogger(),
	}

	client := NewInstall(cfg)
	_, err := client.Run(context.Background(),
		map[string]string{"a/a": "^1", "b/b": "^1"}, settings)
	require.Error(t, err)
	_, ok := err.(*solver.ProblemsError)
	assert.True(t, ok, "expected a ProblemsError, got %T", err)
}

func TestUpdateActionMovesInstalled(t *testing.T) {
	settings, dir := testSettings(t)

	installed := repo.NewArrayRepository("installed", 0,
		pkg.NewPkgMock("psr/log", "1.0.0"),
	)
	packagist := repo.NewArrayRepository("packagist", 0,
		pkg.NewPkgMock("psr/log", "1.1.0"),
	)
	cfg := &Configuration{
		Repositories: []repo.Repository{packagist},
		Installed:    installed,
		LockFilePath: filepath.Join(dir, "composer.lock"),
		Logger:       newTestLogger(),
	}

	client := NewUpdate(cfg)
	tr, err := client.Run(context.Background(), nil, settings)
	require.NoError(t, err)
	require.Len(t, tr.Operations, 1)
	assert.Equal(t, solver.OpUpdate, tr.Operations[0].Kind)

	lock, err := lockfile.Read(cfg.LockFilePath)
	require.NoError(t, err)
	require.Len(t, lock.Packages, 1)
	assert.Equal(t, "1.1.0", lock.Packages[0].Version)
}

func TestRemoveActionDropsLeaf(t *testing.T) {
	settings, dir := testSettings(t)

	installed := repo.NewArrayRepository("installed", 0,
		pkg.NewPkgMock("monolog/monolog", "1.0.0"),
		pkg.NewPkgMock("psr/log", "1.1.0"),
	)
	cfg := &Configuration{
		Installed:    installed,
		LockFilePath: filepath.Join(dir, "composer.lock"),
		Logger:       newTestLogger(),
	}

	client := NewRemove(cfg)
	tr, err := client.Run(context.Background(), []string{"monolog/monolog"}, settings)
	require.NoError(t, err)
	require.Len(t, tr.Operations, 1)
	assert.Equal(t, solver.OpRemove, tr.Operations[0].Kind)

	lock, err := lockfile.Read(cfg.LockFilePath)
	require.NoError(t, err)
	require.Len(t, lock.Packages, 1)
	assert.Equal(t, "psr/log", lock.Packages[0].Name)
}

func TestRemoveActionRefusesRequired(t *testing.T) {
	settings, _ := testSettings(t)

	installed := repo.NewArrayRepository("installed", 0,
		pkg.NewPkgMock("monolog/monolog", "1.0.0", pkg.MustLink("psr/log", "^1")),
		pkg.NewPkgMock("psr/log", "1.1.0"),
	)
	cfg := &Configuration{
		Installed: installed,
		Logger:    newTestLogger(),
	}

	client := NewRemove(cfg)
	_, err := client.Run(context.Background(), []string{"psr/log"}, settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monolog/monolog-1.0.0 requires psr/log")
}

func TestInstallSuggests(t *testing.T) {
	settings, _ := testSettings(t)

	mono := pkg.NewPkgMock("monolog/monolog", "1.0.0")
	mono.Suggests = []*pkg.Link{pkg.MustLink("psr/log", "*")}
	packagist := repo.NewArrayRepository("packagist", 0,
		mono,
		pkg.NewPkgMock("psr/log", "1.1.0"),
	)
	cfg := &Configuration{
		Repositories: []repo.Repository{packagist},
		Logger:       newTestLogger(),
	}

	client := NewInstall(cfg)
	client.DryRun = true
	client.InstallSuggests = true
	tr, err := client.Run(context.Background(), map[string]string{"monolog/monolog": "^1"}, settings)
	require.NoError(t, err)
	assert.Len(t, tr.Operations, 2, "the suggested package installs too")
}
