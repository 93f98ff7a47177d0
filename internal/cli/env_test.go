package cli

import (
	"testing"

	"crosseco/internal/config"
	"crosseco/internal/flags"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand(c *config.Config) *cobra.Command {
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().StringVar(&c.Input.Dir, flags.FlagInput, c.Input.Dir, "")
	cmd.Flags().StringVar(&c.Output.Dir, flags.FlagOutput, c.Output.Dir, "")
	cmd.Flags().StringSliceVar(&c.Input.Ecosystems, flags.FlagEcosystems, c.Input.Ecosystems, "")
	cmd.Flags().IntVar(&c.Runtime.Concurrency, flags.FlagConcurrency, c.Runtime.Concurrency, "")
	return cmd
}

func TestApplyEnv_FillsUnsetFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvInputDir, "/env/in")
	t.Setenv(config.EnvEcosystems, "NPM,PyPI")
	t.Setenv(config.EnvConcurrency, "7")

	c := config.New()
	cmd := testCommand(c)
	require.NoError(t, cmd.ParseFlags(nil))
	require.NoError(t, applyEnv(cmd, c))

	assert.Equal(t, "/env/in", c.Input.Dir)
	assert.Equal(t, []string{"NPM", "PyPI"}, c.Input.Ecosystems)
	assert.Equal(t, 7, c.Runtime.Concurrency)
}

func TestApplyEnv_FlagsWin(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvInputDir, "/env/in")
	t.Setenv(config.EnvEcosystems, "NPM,PyPI")
	t.Setenv(config.EnvConcurrency, "7")

	c := config.New()
	cmd := testCommand(c)
	require.NoError(t, cmd.ParseFlags([]string{"--input", "/flag/in", "--ecosystems", "Go,Ruby", "--concurrency", "2"}))
	require.NoError(t, applyEnv(cmd, c))

	assert.Equal(t, "/flag/in", c.Input.Dir)
	assert.Equal(t, []string{"Go", "Ruby"}, c.Input.Ecosystems)
	assert.Equal(t, 2, c.Runtime.Concurrency)
}

func TestApplyEnv_BadValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvConcurrency, "lots")

	c := config.New()
	cmd := testCommand(c)
	require.NoError(t, cmd.ParseFlags(nil))
	assert.Error(t, applyEnv(cmd, c))
}

func TestInitLogging(t *testing.T) {
	t.Cleanup(func() { log.SetLevel(log.InfoLevel) })

	c := config.New()
	initLogging(c)
	assert.Equal(t, log.InfoLevel, log.GetLevel())

	c.Runtime.Verbose = true
	initLogging(c)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	c.Runtime.Verbose, c.Runtime.Quiet = false, true
	initLogging(c)
	assert.Equal(t, log.ErrorLevel, log.GetLevel())
}

func TestVersionCommand(t *testing.T) {
	SetBuildInfo("1.2.3", "abc123", "2026-01-01")
	version, commit, date := BuildInfo()
	assert.Equal(t, "1.2.3", version)
	assert.Equal(t, "abc123", commit)
	assert.Equal(t, "2026-01-01", date)
	assert.Equal(t, "1.2.3 (abc123) 2026-01-01", rootCmd.Version)
}
