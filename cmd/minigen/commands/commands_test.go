package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/minigen/config"
	"github.com/teranos/minigen/diag/diagfmt"
	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/kinds/flux"
)

const pingSource = `package app

//mini:action
type Ping struct{}

//mini:action
type Pong struct{ Ping }
`

// writeModule creates a small module and keeps the user config out of it.
func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	t.Setenv(config.UserConfigEnv, filepath.Join(dir, ".user", config.FileName))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/app\n\ngo 1.22\n"), 0o644))
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append([]string{"--no-color", "-C", dir}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersionJSON(t *testing.T) {
	dir := writeModule(t, nil)
	stdout, _, err := run(t, dir, "version", "--json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, "dev", info["version"])
	assert.NotEmpty(t, info["go_version"])
}

func TestKinds(t *testing.T) {
	dir := writeModule(t, nil)
	stdout, _, err := run(t, dir, "kinds")
	require.NoError(t, err)
	assert.Contains(t, stdout, "//mini:reducer")
	assert.Contains(t, stdout, "param:store")

	stdout, _, err = run(t, dir, "kinds", "--json")
	require.NoError(t, err)
	var infos []KindInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, flux.ActionsKind, infos[0].Name)
	assert.Equal(t, flux.StoreKind, infos[1].Name)
	assert.Equal(t, "container", infos[1].Roles[0].Name)
}

func TestGenerateThenCheck(t *testing.T) {
	dir := writeModule(t, map[string]string{"app.go": pingSource})
	generated := filepath.Join(dir, flux.ActionsFile)

	_, stderr, err := run(t, dir, "generate")
	require.NoError(t, err)
	assert.Contains(t, stderr, "1 file(s) written")
	body, err := os.ReadFile(generated)
	require.NoError(t, err)
	assert.Contains(t, string(body), "reflect.TypeFor[Pong]()")

	_, stderr, err = run(t, dir, "check")
	require.NoError(t, err)
	assert.Contains(t, stderr, "up to date")

	require.NoError(t, os.WriteFile(generated, append(body, []byte("// edited\n")...), 0o644))
	_, stderr, err = run(t, dir, "check")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStale))
	assert.Contains(t, stderr, "modified")

	_, stderr, err = run(t, dir, "generate")
	require.NoError(t, err)
	assert.Contains(t, stderr, "1 file(s) written")
	_, _, err = run(t, dir, "check")
	assert.NoError(t, err)
}

func TestCheckReportsMissingAndOrphaned(t *testing.T) {
	dir := writeModule(t, map[string]string{"app.go": pingSource})
	_, _, err := run(t, dir, "check")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStale))

	_, _, err = run(t, dir, "generate")
	require.NoError(t, err)
	orphan := "// Code generated by minigen. DO NOT EDIT.\n\npackage app\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zz_old_gen.go"), []byte(orphan), 0o644))

	_, stderr, err := run(t, dir, "check")
	require.Error(t, err)
	assert.Contains(t, stderr, "orphaned")
	assert.Contains(t, stderr, "zz_old_gen.go")
}

func TestGenerateStdout(t *testing.T) {
	dir := writeModule(t, map[string]string{"app.go": pingSource})
	stdout, _, err := run(t, dir, "generate", "--stdout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "==> "+filepath.Join(dir, flux.ActionsFile)+" <==")
	assert.Contains(t, stdout, "reflect.TypeFor[Ping]()")

	_, err = os.Stat(filepath.Join(dir, flux.ActionsFile))
	assert.True(t, os.IsNotExist(err), "stdout mode writes nothing")
}

func TestGenerateReportsErrors(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"app.go": "package app\n\n//mini:action broken=\"\ntype Ping struct{}\n",
	})

	_, stderr, err := run(t, dir, "generate")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReported))
	assert.Contains(t, stderr, "ERROR")

	stdout, _, err := run(t, dir, "generate", "--diagnostics-format", "json")
	require.Error(t, err)
	var out diagfmt.DiagnosticsOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 1, out.Errors)
}

func TestGenerateSARIF(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"app.go": "package app\n\n//mini:action broken=\"\ntype Ping struct{}\n",
	})
	stdout, _, err := run(t, dir, "check", "--diagnostics-format", "sarif")
	require.Error(t, err)

	var log map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &log))
	assert.Equal(t, "2.1.0", log["version"])
}

func TestUnknownDiagnosticsFormat(t *testing.T) {
	dir := writeModule(t, map[string]string{"app.go": pingSource})
	_, _, err := run(t, dir, "generate", "--diagnostics-format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestConfigCommands(t *testing.T) {
	dir := writeModule(t, map[string]string{"app.go": pingSource})
	path := filepath.Join(dir, config.FileName)

	_, _, err := run(t, dir, "config", "init")
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, _, err = run(t, dir, "config", "init")
	require.Error(t, err, "existing file needs --force")

	_, _, err = run(t, dir, "config", "init", "--force")
	require.NoError(t, err)
	_, err = os.Stat(path + ".back1")
	assert.NoError(t, err)

	stdout, _, err := run(t, dir, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration is valid")
	assert.Contains(t, stdout, path)

	stdout, _, err = run(t, dir, "config", "show", "--format", "json")
	require.NoError(t, err)
	var shown config.Config
	require.NoError(t, json.Unmarshal([]byte(stdout), &shown))
	assert.Equal(t, config.ModeWrite, shown.Output.Mode)

	stdout, _, err = run(t, dir, "config", "show", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "mode: write")

	stdout, _, err = run(t, dir, "config", "show", "--sources")
	require.NoError(t, err)
	assert.Contains(t, stdout, "output.mode")
	assert.Contains(t, stdout, "project")
}

func TestConfigSelectsCheckMode(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"app.go":         pingSource,
		config.FileName: "[output]\nmode = \"check\"\n",
	})
	_, _, err := run(t, dir, "generate")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStale), "check mode never writes")
}

func TestInvalidConfig(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"app.go":         pingSource,
		config.FileName: "[kinds]\nbuiltin = [\"redux\"]\n",
	})
	_, _, err := run(t, dir, "generate")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownKind))
}

func TestGenerateVerboseListsFiles(t *testing.T) {
	dir := writeModule(t, map[string]string{"app.go": pingSource})
	_, stderr, err := run(t, dir, "generate", "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote "+flux.ActionsFile)

	_, stderr, err = run(t, dir, "generate")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "wrote ")
	assert.Contains(t, stderr, "1 unchanged")
}
