package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namefmt/internal/testutil"
	"namefmt/pkg/config"
)

type commandFlags struct {
	dryRun      bool
	recursive   bool
	lower       bool
	capitalize  bool
	filesOnly   bool
	excludeDirs []string
	substitute  string
	namePrefix  string
	verify      bool
	verbose     bool
}

func setCommandGlobals(t *testing.T, f commandFlags) {
	t.Helper()

	prev := commandFlags{
		dryRun: dryRun, recursive: recursive, lower: lower, capitalize: capitalize,
		filesOnly: filesOnly, excludeDirs: excludeDirs, substitute: substitute,
		namePrefix: namePrefix, verify: verify, verbose: verbose,
	}
	prevCfgFile := cfgFile

	dryRun, recursive, lower, capitalize = f.dryRun, f.recursive, f.lower, f.capitalize
	filesOnly, excludeDirs, substitute = f.filesOnly, f.excludeDirs, f.substitute
	namePrefix, verify, verbose = f.namePrefix, f.verify, f.verbose
	cfgFile = ""

	// Keep the user's config file out of the tests.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	t.Cleanup(func() {
		dryRun, recursive, lower, capitalize = prev.dryRun, prev.recursive, prev.lower, prev.capitalize
		filesOnly, excludeDirs, substitute = prev.filesOnly, prev.excludeDirs, prev.substitute
		namePrefix, verify, verbose = prev.namePrefix, prev.verify, prev.verbose
		cfgFile = prevCfgFile
	})
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	reader, writer, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = writer
	defer func() {
		os.Stdout = oldStdout
	}()

	fn()

	require.NoError(t, writer.Close())
	out, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())

	return string(out)
}

func TestBuildConfig(t *testing.T) {
	t.Run("plain flags leave tunables to the defaults", func(t *testing.T) {
		setCommandGlobals(t, commandFlags{recursive: true})

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.True(t, cfg.Recursive)
		assert.Empty(t, cfg.StagingSuffix)
		assert.NoError(t, cfg.WithDefaults(config.DefaultDefaults()).Validate())
	})

	t.Run("lower wins over capitalize", func(t *testing.T) {
		setCommandGlobals(t, commandFlags{lower: true, capitalize: true})

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, config.CaseLower, cfg.CaseMode)
	})

	t.Run("capitalize", func(t *testing.T) {
		setCommandGlobals(t, commandFlags{capitalize: true})

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, config.CaseCapitalize, cfg.CaseMode)
	})

	t.Run("substitution", func(t *testing.T) {
		setCommandGlobals(t, commandFlags{substitute: "TEST/SAMPLE/X"})

		cfg, err := buildConfig()
		require.NoError(t, err)
		require.NotNil(t, cfg.Substitute)
		assert.Equal(t, "TEST", cfg.Substitute.Old)
		assert.Equal(t, "SAMPLE/X", cfg.Substitute.New)
	})

	t.Run("substitution without separator", func(t *testing.T) {
		setCommandGlobals(t, commandFlags{substitute: "TEST"})

		_, err := buildConfig()
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("sequential with recursive", func(t *testing.T) {
		setCommandGlobals(t, commandFlags{namePrefix: "sample", recursive: true})

		_, err := buildConfig()
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestBuildRootCommand_Flags(t *testing.T) {
	cmd := buildRootCommand()

	for long, short := range map[string]string{
		"dry-run":      "d",
		"recursive":    "r",
		"lower":        "l",
		"capitalize":   "c",
		"files":        "f",
		"exclude_dirs": "e",
		"substitute":   "s",
		"name":         "n",
		"verbose":      "v",
	} {
		flag := cmd.Flags().Lookup(long)
		require.NotNil(t, flag, long)
		assert.Equal(t, short, flag.Shorthand, long)
	}
	assert.NotNil(t, cmd.Flags().Lookup("verify"))
	assert.NotNil(t, cmd.Flags().Lookup("config"))
}

func TestBuildRootCommand_RequiresTarget(t *testing.T) {
	setCommandGlobals(t, commandFlags{})

	cmd := buildRootCommand()
	cmd.SetArgs([]string{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	assert.Error(t, cmd.Execute())
}

func TestBuildRootCommand_RepeatableExclude(t *testing.T) {
	setCommandGlobals(t, commandFlags{})

	cmd := buildRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-e", "KEEP", "--exclude_dirs", "ALSO"}))
	assert.Equal(t, []string{"KEEP", "ALSO"}, excludeDirs)
}

func TestRunRename_PrintsRenames(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFile(t, filepath.Join(dir, "TEST FILE"), "content")

	setCommandGlobals(t, commandFlags{})

	output := captureStdout(t, func() {
		require.NoError(t, runRename(nil, []string{filepath.Join(dir, "TEST FILE")}))
	})

	assert.Equal(t, formatRename("TEST FILE", "TEST_FILE")+"\n", output)
	assert.Contains(t, output, "TEST FILE"+strings.Repeat(" ", 41)+" --> TEST_FILE")
	assert.Equal(t, []string{"TEST_FILE"}, testutil.ListNames(t, dir))
}

func TestRunRename_DryRun(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFile(t, filepath.Join(dir, "TEST FILE"), "content")

	setCommandGlobals(t, commandFlags{dryRun: true, lower: true})

	output := captureStdout(t, func() {
		require.NoError(t, runRename(nil, []string{filepath.Join(dir, "TEST FILE")}))
	})

	assert.Contains(t, output, "DRY-RUN")
	assert.Contains(t, output, "~~> test_file")
	assert.NotContains(t, output, "-->")
	assert.Equal(t, []string{"TEST FILE"}, testutil.ListNames(t, dir))
}

func TestRunRename_NothingToDo(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFile(t, filepath.Join(dir, "test_file"), "content")

	setCommandGlobals(t, commandFlags{lower: true})

	output := captureStdout(t, func() {
		require.NoError(t, runRename(nil, []string{filepath.Join(dir, "test_file")}))
	})

	assert.Contains(t, output, "Not items found that need formatting.")
}

func TestRunRename_ConfigError(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFile(t, filepath.Join(dir, "TEST FILE"), "content")

	setCommandGlobals(t, commandFlags{namePrefix: "sample", recursive: true})

	output := captureStdout(t, func() {
		err := runRename(nil, []string{dir})
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	assert.Empty(t, output)
	assert.Equal(t, []string{"TEST FILE"}, testutil.ListNames(t, dir))
}

func TestRunRename_VerboseSummary(t *testing.T) {
	root := t.TempDir()
	testutil.CreateFile(t, filepath.Join(root, "TEST DIR", "TEST FILE"), "content")

	setCommandGlobals(t, commandFlags{recursive: true, verbose: true, verify: true})

	output := captureStdout(t, func() {
		require.NoError(t, runRename(nil, []string{filepath.Join(root, "TEST DIR")}))
	})

	assert.Contains(t, output, formatRename("TEST DIR", "TEST_DIR"))
	assert.Contains(t, output, formatRename("TEST FILE", "TEST_FILE"))
	assert.Contains(t, output, "Directories")
	assert.Contains(t, output, "Files")
	assert.Contains(t, output, "Content verified: tree digests match.")
}

func TestRunRename_ConfigFileDefaults(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFile(t, filepath.Join(dir, "PIC.png"), "image")
	testutil.CreateFile(t, filepath.Join(dir, "PIC.png.xmp"), "sidecar")

	setCommandGlobals(t, commandFlags{lower: true})
	cfgFile = filepath.Join(t.TempDir(), "config.yaml")
	testutil.CreateFile(t, cfgFile, "image_extensions: [png]\ncompanion_suffixes: [.xmp]\n")

	output := captureStdout(t, func() {
		require.NoError(t, runRename(nil, []string{filepath.Join(dir, "PIC.png")}))
	})

	assert.Contains(t, output, formatRename("PIC.png.xmp", "pic.png.xmp"))
	assert.Equal(t, []string{"pic.png", "pic.png.xmp"}, testutil.ListNames(t, dir))
}

func TestFormatRename(t *testing.T) {
	setCommandGlobals(t, commandFlags{})
	assert.Equal(t, "a"+strings.Repeat(" ", 49)+" --> b", formatRename("a", "b"))

	long := "a_name_that_is_longer_than_fifty_characters_in_total_yes"
	assert.Equal(t, long+" --> b", formatRename(long, "b"))

	dryRun = true
	assert.Equal(t, "a"+strings.Repeat(" ", 49)+" ~~> b", formatRename("a", "b"))
}
