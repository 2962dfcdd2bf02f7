package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchema = `entity users {
  id int pk
  name text
}

entity posts {
  id int pk
  user_id int fk -> users.id
}

rel {
  users 1 -- * posts
}
`

// newTestRootCmd resets global flags and rebuilds a fresh command tree, the
// way table-driven cobra tests in this corpus isolate state between cases.
func newTestRootCmd() *cobra.Command {
	renderOutput, renderView, renderDetail, renderWatch = "", "", "pk_fk", false
	convertOutput, convertDialect = "", "auto"
	validateView, validateDetail, validateVerbose = "", "all", false

	testRoot := &cobra.Command{
		Use:           "diagtool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	testRoot.AddCommand(renderCmd)
	testRoot.AddCommand(convertCmd)
	testRoot.AddCommand(validateCmd)
	testRoot.AddCommand(versionCmd)
	return testRoot
}

func TestVersionNotEmpty(t *testing.T) {
	assert.NotEmpty(t, Version)
}

func TestRenderCommandRequiresInput(t *testing.T) {
	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"render"})
	assert.Error(t, cmd.Execute())
}

func TestRenderCommandFileNotFound(t *testing.T) {
	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"render", "nonexistent.erd"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestRenderCommandInvalidDetail(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "s.erd")
	require.NoError(t, os.WriteFile(inputFile, []byte(sampleSchema), 0644))

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"render", inputFile, "-d", "bogus"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options")
}

func TestRenderCommandSVGOutput(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "s.erd")
	outputFilePath := filepath.Join(tmpDir, "out.svg")
	require.NoError(t, os.WriteFile(inputFile, []byte(sampleSchema), 0644))

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"render", inputFile, "-o", outputFilePath})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(outputFilePath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<svg")
	assert.Contains(t, string(content), "users")
}

func TestRenderCommandDefaultOutputName(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "s.erd")
	require.NoError(t, os.WriteFile(inputFile, []byte(sampleSchema), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(wd)

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"render", "s.erd"})
	require.NoError(t, cmd.Execute())

	_, err = os.Stat(filepath.Join(tmpDir, "s.svg"))
	assert.NoError(t, err)
}

func TestRenderCommandViewFiltering(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "s.erd")
	outputFilePath := filepath.Join(tmpDir, "out.svg")
	source := sampleSchema + "\nview justusers { include users }\n"
	require.NoError(t, os.WriteFile(inputFile, []byte(source), 0644))

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"render", inputFile, "-o", outputFilePath, "-v", "justusers"})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(outputFilePath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "posts")
}

func TestValidateCommandRequiresInput(t *testing.T) {
	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"validate"})
	assert.Error(t, cmd.Execute())
}

func TestValidateCommandValidSchema(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "s.erd")
	require.NoError(t, os.WriteFile(inputFile, []byte(sampleSchema), 0644))

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"validate", inputFile})
	assert.NoError(t, cmd.Execute())
}

func TestValidateCommandInvalidSyntax(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "bad.erd")
	require.NoError(t, os.WriteFile(inputFile, []byte("entity {{{ not valid"), 0644))

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"validate", inputFile})
	assert.Error(t, cmd.Execute())
}

func TestConvertCommandRequiresInput(t *testing.T) {
	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"convert"})
	assert.Error(t, cmd.Execute())
}

func TestConvertCommandProducesDSL(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "dump.sql")
	outputFilePath := filepath.Join(tmpDir, "out.erd")
	sql := `CREATE TABLE users (id INT PRIMARY KEY, name TEXT);`
	require.NoError(t, os.WriteFile(inputFile, []byte(sql), 0644))

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"convert", inputFile, "-o", outputFilePath})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(outputFilePath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "users")
}

func TestConvertCommandInvalidDialect(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "dump.sql")
	require.NoError(t, os.WriteFile(inputFile, []byte("CREATE TABLE t (id INT);"), 0644))

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"convert", inputFile, "-d", "oracle"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options")
}

func TestResolveRenderOutputDefaultsToSVGExtension(t *testing.T) {
	assert.Equal(t, "diagram.svg", resolveRenderOutput("diagram.erd", ""))
	assert.Equal(t, "custom.svg", resolveRenderOutput("diagram.erd", "custom.svg"))
	assert.Equal(t, "-", resolveRenderOutput("-", ""))
}

func TestWatchFlagRecognized(t *testing.T) {
	flag := renderCmd.Flags().Lookup("watch")
	require.NotNil(t, flag)
	assert.Equal(t, "w", flag.Shorthand)
}

func TestReadInputFromFilePath(t *testing.T) {
	// readInput treats "-" as stdin; a real file path reads through the
	// normal os.ReadFile path.
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "s.erd")
	require.NoError(t, os.WriteFile(inputFile, []byte(sampleSchema), 0644))

	content, err := readInput(inputFile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(content, "entity users"))
}
