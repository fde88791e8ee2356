package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlavioCFOliveira/fraudscope/internal/config"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// TestSynthThenAnalyze tests the commands end to end on generated data.
func TestSynthThenAnalyze(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "creditcard.csv")
	promPath := filepath.Join(dir, "fraudscope.prom")

	out, _, err := execute(t, "synth", csvPath, "--rows", "200", "--fraud-rate", "0.05", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 200 transaction records (10 fraud)")

	cfgPath := filepath.Join(dir, "fraudscope.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("forest:\n  trees: 5\nlogistic:\n  max_iter: 20\n"), 0o644))

	out, logs, err := execute(t, "analyze", csvPath,
		"--config", cfgPath,
		"--metrics-out", promPath,
		"--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "Counter({0: 190, 1: 190})")
	assert.Contains(t, out, "random_forest")
	assert.Contains(t, out, "logistic_regression")
	assert.Contains(t, out, "accuracy:")
	assert.Contains(t, logs, `"msg":"analysis complete"`)
	assert.FileExists(t, promPath)
}

// TestAnalyzeModelsFlag tests narrowing the fitted models.
func TestAnalyzeModelsFlag(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "creditcard.csv")
	_, _, err := execute(t, "synth", csvPath, "--rows", "120", "--fraud-rate", "0.1")
	require.NoError(t, err)

	out, _, err := execute(t, "analyze", csvPath, "--models", "Random_Forest", "--resample-first=false", "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "random_forest")
	assert.NotContains(t, out, "logistic_regression")

	_, _, err = execute(t, "analyze", csvPath, "--models", "svm")
	assert.ErrorContains(t, err, `unknown model "svm"`)
}

// TestAnalyzeHistoryDir tests that the history directory is created up front
// and that an unusable one fails before any analysis output.
func TestAnalyzeHistoryDir(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "creditcard.csv")
	_, _, err := execute(t, "synth", csvPath, "--rows", "120", "--fraud-rate", "0.1")
	require.NoError(t, err)

	out, _, err := execute(t, "analyze", csvPath, "--history-dir", csvPath, "--log-level", "warn")
	assert.ErrorContains(t, err, "history dir")
	assert.Empty(t, out)

	histDir := filepath.Join(dir, "runs", "1")
	_, _, err = execute(t, "analyze", csvPath,
		"--history-dir", histDir,
		"--models", "logistic_regression",
		"--log-level", "warn")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(histDir, "logistic_regression_history.csv"))
}

// TestExploreCommand tests the descriptive subcommand.
func TestExploreCommand(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "creditcard.csv")
	_, _, err := execute(t, "synth", csvPath, "--rows", "50", "--fraud-rate", "0.1")
	require.NoError(t, err)

	out, _, err := execute(t, "explore", csvPath, "--full-matrix")
	require.NoError(t, err)
	assert.Contains(t, out, "Imbalanced Correlation Matrix")
	assert.NotContains(t, out, "accuracy:")
}

// TestCommandErrors tests argument and input validation.
func TestCommandErrors(t *testing.T) {
	_, _, err := execute(t, "analyze")
	assert.Error(t, err)

	_, _, err = execute(t, "analyze", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, _, err = execute(t, "synth", filepath.Join(t.TempDir(), "x.csv"), "--rows", "1")
	assert.Error(t, err)
}

// TestNewLogger tests handler selection.
func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	logger.Debug("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = newLogger(&buf, config.LogConfig{Level: "loud", Format: "text"})
	assert.Error(t, err)
	_, err = newLogger(&buf, config.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
