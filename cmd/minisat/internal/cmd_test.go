package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cybercalc/minisat-recipe/formula"
	"github.com/cybercalc/minisat-recipe/recipes/minisat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettings(t *testing.T) {
	host := formula.DefaultSettings()

	got, err := parseSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, host, got)

	got, err = parseSettings(map[string]string{"build_type": "Debug", "compiler": "clang"})
	require.NoError(t, err)
	assert.Equal(t, "Debug", got.BuildType)
	assert.Equal(t, "clang", got.Compiler)
	assert.Equal(t, host.OS, got.OS)
	assert.Equal(t, host.Arch, got.Arch)
}

func TestParseSettingsUnknownKey(t *testing.T) {
	_, err := parseSettings(map[string]string{"compiler.version": "13"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
}

func TestDescribe(t *testing.T) {
	info := describe(minisat.New())

	assert.Equal(t, "minisat", info.Name)
	assert.Equal(t, "MIT", info.License)
	assert.Equal(t, []string{"minisat"}, info.Libs)
	require.Contains(t, info.Options, "shared")
	require.Contains(t, info.Options, "lto")
	assert.Equal(t, formula.False, info.Options["shared"].Default)
	assert.Equal(t, []string{formula.False, formula.True}, info.Options["lto"].Values)
}

func TestPrintInfo(t *testing.T) {
	r := minisat.New()
	var buf bytes.Buffer
	printInfo(&buf, r.Options(), describe(r))
	out := buf.String()

	assert.Contains(t, out, "name:        minisat\n")
	assert.Contains(t, out, "  lto: [False, True] default False\n")
	assert.Contains(t, out, "  shared: [False, True] default False\n")
	assert.Contains(t, out, "libs:        minisat\n")
	assert.Less(t, strings.Index(out, "  lto:"), strings.Index(out, "  shared:"))
}

func TestInfoCommandJSON(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"info", "--json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		infoJSON = false
	})
	require.NoError(t, rootCmd.Execute())

	var got recipeInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, describe(minisat.New()), got)
}

func TestSourceCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CMakeLists.txt"),
		[]byte("cmake_minimum_required(VERSION 3.10)\n"+minisat.ProjectLine+"\n"), 0o644))

	rootCmd.SetArgs([]string{"source", dir})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(filepath.Join(dir, "CMakeLists.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "llar_basic_setup()")
}

func TestCreateRejectsAllOptionsWithOverrides(t *testing.T) {
	rootCmd.SetArgs([]string{"create", "--all-options", "-o", "shared=True", t.TempDir()})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		createAllOptions = false
		createOptions = nil
	})

	err := rootCmd.Execute()
	assert.True(t, errors.Is(err, errAllOptionsWithOverrides), "error = %v", err)
}
