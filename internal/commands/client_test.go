package commands_test

import (
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/teller/internal/activity"
	"github.com/cleared-dev/teller/internal/config"
	"github.com/cleared-dev/teller/internal/model"
)

func newProject(t *testing.T, driver string, git bool) string {
	t.Helper()
	dir := t.TempDir()
	args := []string{"init", dir, "--bank", "Banco Test", "--driver", driver}
	if !git {
		args = append(args, "--no-git")
	}
	_, err := runTeller(t, args...)
	require.NoError(t, err)
	return dir
}

func registerPepe(t *testing.T, dir string) {
	t.Helper()
	_, err := runTeller(t, "--repo", dir, "--log-level", "disabled",
		"client", "register", "--dni", "29.857.643",
		"--first-name", "Pepe", "--last-name", "Rino", "--birth-date", "1990-05-10")
	require.NoError(t, err)
}

func TestClientRegister(t *testing.T) {
	for _, driver := range []string{"csv", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			dir := newProject(t, driver, false)

			out, err := runTeller(t, "--repo", dir, "--log-level", "disabled",
				"client", "register", "--dni", "29857643",
				"--first-name", "Pepe", "--last-name", "Rino", "--birth-date", "1990-05-10")
			require.NoError(t, err)
			assert.Contains(t, out, "Registered client 29.857.643 (Pepe Rino)")

			out, err = runTeller(t, "--repo", dir, "--log-level", "disabled", "client", "show", "29857643")
			require.NoError(t, err)
			assert.Contains(t, out, "Pepe Rino")
			assert.Contains(t, out, "1990-05-10")
			assert.Contains(t, out, string(model.PersonTypeNatural))
			assert.Contains(t, out, "Accounts:    none")

			_, err = runTeller(t, "--repo", dir, "--log-level", "disabled",
				"client", "register", "--dni", "29.857.643",
				"--first-name", "Otro", "--last-name", "Nombre", "--birth-date", "1980-01-01")
			require.ErrorIs(t, err, model.ErrClientAlreadyExists, "the first registration must persist across commands")
		})
	}
}

func TestCommand_RejectsMemoryDriverInConfig(t *testing.T) {
	dir := newProject(t, "csv", false)
	path := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	cfg.Storage.Driver = "memory"
	cfg.Storage.Path = ""
	require.NoError(t, config.Save(path, cfg))

	_, err = runTeller(t, "--repo", dir, "--log-level", "disabled",
		"client", "register", "--dni", "29857643",
		"--first-name", "Pepe", "--last-name", "Rino", "--birth-date", "1990-05-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not persist")
}

func TestClientRegister_Duplicate(t *testing.T) {
	dir := newProject(t, "csv", false)
	registerPepe(t, dir)

	_, err := runTeller(t, "--repo", dir, "--log-level", "disabled",
		"client", "register", "--dni", "29857643",
		"--first-name", "Otro", "--last-name", "Nombre", "--birth-date", "1980-01-01")
	require.ErrorIs(t, err, model.ErrClientAlreadyExists)
}

func TestClientRegister_Underage(t *testing.T) {
	dir := newProject(t, "csv", false)

	_, err := runTeller(t, "--repo", dir, "--log-level", "disabled",
		"client", "register", "--dni", "40111222",
		"--first-name", "Nino", "--last-name", "Chico", "--birth-date", "2020-01-01")
	require.ErrorIs(t, err, model.ErrInvalidArgument)

	entries, err := activity.Read(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClientRegister_BadInput(t *testing.T) {
	dir := newProject(t, "csv", false)

	tests := []struct {
		name string
		args []string
	}{
		{"bad dni", []string{"--dni", "29.85.643", "--birth-date", "1990-05-10"}},
		{"bad date", []string{"--dni", "29857643", "--birth-date", "10/05/1990"}},
		{"bad person type", []string{"--dni", "29857643", "--birth-date", "1990-05-10", "--person-type", "SOCIEDAD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--repo", dir, "--log-level", "disabled",
				"client", "register", "--first-name", "Pepe", "--last-name", "Rino"}, tt.args...)
			_, err := runTeller(t, args...)
			require.Error(t, err)
		})
	}
}

func TestClientShow_Unknown(t *testing.T) {
	dir := newProject(t, "csv", false)
	_, err := runTeller(t, "--repo", dir, "--log-level", "disabled", "client", "show", "12345678")
	require.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestClientRegister_RecordsActivity(t *testing.T) {
	dir := newProject(t, "csv", false)
	registerPepe(t, dir)

	entries, err := activity.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activity.OpClientRegistered, entries[0].Operation)
	assert.Equal(t, int64(29857643), entries[0].NationalID)
	assert.Equal(t, "Pepe Rino", entries[0].Details)
}

func TestClientRegister_Commits(t *testing.T) {
	requireGit(t)
	dir := newProject(t, "csv", true)
	registerPepe(t, dir)

	log := exec.Command("git", "log", "--format=%s")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "client: Register 29.857.643", lines[0])
}

func TestCommand_NoProject(t *testing.T) {
	_, err := runTeller(t, "--repo", t.TempDir(), "products")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading project")
}
