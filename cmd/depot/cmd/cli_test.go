// Copyright © 2018 One Concern

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/oneconcern/depot/pkg/model"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exitMocks struct {
	fatalCalls int
	exitCodes  []int
}

func setupCLI(t *testing.T) (string, *exitMocks) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("DEPOT_CONFIG", filepath.Join(root, "no-config.yaml"))
	color.NoColor = true

	mocks := &exitMocks{}
	savedFatalln, savedFatalf, savedExit := logFatalln, logFatalf, osExit
	logFatalln = func(v ...interface{}) { mocks.fatalCalls++ }
	logFatalf = func(format string, v ...interface{}) { mocks.fatalCalls++ }
	osExit = func(code int) { mocks.exitCodes = append(mocks.exitCodes, code) }
	t.Cleanup(func() {
		logFatalln, logFatalf, osExit = savedFatalln, savedFatalf, savedExit
	})
	return root, mocks
}

func resetFlags() {
	depotFlags.version.file = ""
	depotFlags.version.inputDir = ""
	depotFlags.version.versionID = ""
	depotFlags.version.hashes = append([]string(nil), model.DefaultHashes...)
	depotFlags.version.tags = nil
	depotFlags.version.steps = nil
	depotFlags.version.recursive = false
	depotFlags.version.test = false
	depotFlags.version.output = "."
	depotFlags.version.format = "text"
	depotFlags.version.dirs = false
	for _, value := range depotFlags.version.source {
		*value = ""
	}
	depotFlags.filter.excludeDependencies = nil
	depotFlags.filter.include = nil
	depotFlags.filter.exclude = nil
}

func runCLI(t *testing.T, home string, args ...string) string {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--home", home, "--loglevel", "none"))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for pth, content := range files {
		target := filepath.Join(dir, filepath.FromSlash(pth))
		require.NoError(t, os.MkdirAll(filepath.Dir(target), 0700))
		require.NoError(t, os.WriteFile(target, []byte(content), 0600))
	}
}

func buildAndImport(t *testing.T, root, home string) {
	t.Helper()
	comp := filepath.Join(root, "comp")
	writeFiles(t, comp, map[string]string{"aa.txt": "aa", "sub/b.txt": "bb"})
	compFile := filepath.Join(comp, model.MetadataFileName)
	out := runCLI(t, home, "version", "build", "-f", compFile, "-v", "test/comp/13", "--source-author", "jdoe", "*")
	assert.Contains(t, out, "2 files")
	out = runCLI(t, home, "version", "import", "-f", compFile, "-t")
	assert.Contains(t, out, "Imported test/comp/13")

	product := filepath.Join(root, "product")
	writeFiles(t, product, map[string]string{"p.txt": "p"})
	productFile := filepath.Join(product, model.MetadataFileName)
	runCLI(t, home, "version", "build", "-f", productFile, "-v", "test/product/1",
		"-d", "test/comp/13,name=dep-comp,path=comp",
		"-o", "cp *.txt dep-txt/",
		"-O", "cp *.txt product-txt/",
		"*.txt",
	)
	runCLI(t, home, "version", "import", "-f", productFile)
}

func TestBuildImportList(t *testing.T) {
	root, mocks := setupCLI(t)
	home := filepath.Join(root, "home")
	buildAndImport(t, root, home)

	metadata, err := model.LoadFile(afero.NewOsFs(), filepath.Join(root, "product", model.MetadataFileName))
	require.NoError(t, err)
	require.Len(t, metadata.Dependencies, 1)
	require.Len(t, metadata.Dependencies[0].Operations, 1)
	assert.Equal(t, "cp *.txt dep-txt/", metadata.Dependencies[0].Operations[0].String())
	require.Len(t, metadata.Operations, 1)

	out := runCLI(t, home, "version", "files", "test/product/1")
	for _, pth := range []string{
		"comp/aa.txt", "comp/sub/b.txt", "dep-txt/aa.txt", "dep-txt/b.txt",
		"p.txt", "product-txt/aa.txt", "product-txt/b.txt", "product-txt/p.txt",
	} {
		assert.Contains(t, out, pth)
	}

	out = runCLI(t, home, "version", "files", "test/product/1", "*aa*")
	assert.Contains(t, out, "product-txt/aa.txt")
	assert.NotContains(t, out, "p.txt")

	out = runCLI(t, home, "version", "files", "test/product/1", "-e", "dep-comp")
	assert.Contains(t, out, "product-txt/p.txt")
	assert.NotContains(t, out, "aa.txt")

	out = runCLI(t, home, "version", "test", "-r", "test/product/1")
	assert.Contains(t, out, "All files ok.")

	out = runCLI(t, home, "version", "show", "-r", "test/product/1")
	assert.Contains(t, out, "Version: test/product/1")
	assert.Contains(t, out, "Version: test/comp/13")
	assert.Contains(t, out, "Source: author=jdoe")
	assert.Contains(t, out, "cp *.txt dep-txt/")

	out = runCLI(t, home, "version", "show", "--output", "yaml", "test/comp/13")
	assert.Contains(t, out, "version_id: test/comp/13")

	out = runCLI(t, home, "config", "show")
	assert.Contains(t, out, "home: "+home)

	assert.Zero(t, mocks.fatalCalls)
	assert.Empty(t, mocks.exitCodes)
}

func TestExport(t *testing.T) {
	root, mocks := setupCLI(t)
	home := filepath.Join(root, "home")
	buildAndImport(t, root, home)

	target := filepath.Join(root, "out")
	out := runCLI(t, home, "version", "export", "test/product/1", "-o", target, "-t")
	assert.Contains(t, out, "8 files")

	data, err := os.ReadFile(filepath.Join(target, "product-txt", "aa.txt"))
	require.NoError(t, err)
	assert.Equal(t, "aa", string(data))
	assert.Zero(t, mocks.fatalCalls)
}

func TestAlteredFile(t *testing.T) {
	root, mocks := setupCLI(t)
	home := filepath.Join(root, "home")
	buildAndImport(t, root, home)

	require.NoError(t, os.WriteFile(filepath.Join(home, "packages", "test", "comp", "13", "aa.txt"), []byte("ab"), 0600))

	out := runCLI(t, home, "version", "test", "test/comp/13")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "'aa.txt' sha1 digest mismatch")
	assert.Equal(t, []int{1}, mocks.exitCodes)
}

func TestOperationWithoutDependency(t *testing.T) {
	root, mocks := setupCLI(t)
	home := filepath.Join(root, "home")

	runCLI(t, home, "version", "build", "-f", filepath.Join(root, model.MetadataFileName), "-v", "a/1", "-o", "rm docs")
	assert.Equal(t, 1, mocks.fatalCalls)
}

func TestListStatusDirs(t *testing.T) {
	root, mocks := setupCLI(t)
	home := filepath.Join(root, "home")
	buildAndImport(t, root, home)

	out := runCLI(t, home, "version", "list")
	assert.Equal(t, "test/comp/13\ntest/product/1\n", out)

	out = runCLI(t, home, "version", "status", "add", "test/comp/13", "qa", "passed", "by=jdoe")
	assert.Contains(t, out, "Added status qa=passed (by=jdoe) to test/comp/13")

	out = runCLI(t, home, "version", "show", "--dirs", "test/comp/13")
	assert.Contains(t, out, "Statuses(1):\nqa=passed (by=jdoe)\n")
	assert.Contains(t, out, "Version directories: localfs@"+filepath.Join(home, "packages")+":test/comp/13")

	out = runCLI(t, home, "version", "show", "test/product/1")
	assert.NotContains(t, out, "Statuses")
	assert.NotContains(t, out, "Version directories")

	out = runCLI(t, home, "version", "list")
	assert.Equal(t, "test/comp/13\ntest/product/1\n", out, "statuses are not versions")
	assert.Zero(t, mocks.fatalCalls)

	runCLI(t, home, "version", "status", "add", "test/comp/14", "qa", "passed")
	assert.Equal(t, 1, mocks.fatalCalls)
	runCLI(t, home, "version", "status", "add", "test/comp/13", "qa", "passed", "by")
	assert.Equal(t, 2, mocks.fatalCalls)
}

func TestExcludeDependencyWithComma(t *testing.T) {
	root, mocks := setupCLI(t)
	home := filepath.Join(root, "home")
	buildAndImport(t, root, home)

	out := runCLI(t, home, "version", "files", "test/product/1", "-e", "dep-co{1,2}mp")
	assert.Contains(t, out, "product-txt/p.txt")
	assert.NotContains(t, out, "aa.txt")
	assert.Zero(t, mocks.fatalCalls)
}
