package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exampleArgs = []string{
	"--apparent-power", "500000000",
	"--voltage", "20000",
	"--voltage-offset-pct", "0.05",
	"--frequency", "60",
	"--x-subtransient", "0.15",
	"--x-transient", "0.24",
	"--x-synchronous", "1.1",
	"--t-subtransient", "0.035",
	"--t-transient", "2",
	"--t-armature", "0.2",
}

func TestRunFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(exampleArgs, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "101036.")
	assert.Contains(t, stdout.String(), "301 (0..3 s")
	assert.NotContains(t, stdout.String(), "Please enter")
}

func TestRunPrompts(t *testing.T) {
	answers := "500000000\n20000\n0.05\n60\n0.15\n0.24\n1.1\n0.035\n2\n0.2\n"
	var stdout, stderr bytes.Buffer
	code := run([]string{"--t-end", "1"}, strings.NewReader(answers), &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Equal(t, 10, strings.Count(stdout.String(), "Please enter"))
	assert.Contains(t, stdout.String(), "101 (0..1 s")
}

func TestRunMixesFlagsAndPrompts(t *testing.T) {
	args := append([]string{}, exampleArgs[:len(exampleArgs)-2]...)
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader("0.2\n"), &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Equal(t, 1, strings.Count(stdout.String(), "Please enter"))
}

func TestRunRejectsInput(t *testing.T) {
	cases := map[string][]string{
		"non numeric": withFlag("--voltage", "twenty"),
		"empty":       withFlag("--frequency", ""),
		"zero":        withFlag("--x-synchronous", "0"),
		"bad step":    append(append([]string{}, exampleArgs...), "--t-step", "0"),
		"huge grid":   append(append([]string{}, exampleArgs...), "--t-end", "1e300", "--t-step", "1e-300"),
		"strict":      append(withFlag("--x-transient", "2"), "--strict"),
		"bad flag":    append(append([]string{}, exampleArgs...), "--nope"),
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(args, strings.NewReader(""), &stdout, &stderr)
			assert.Equal(t, exitValidation, code)
			assert.NotEmpty(t, stderr.String())
			assert.NotContains(t, stdout.String(), "Base current")
		})
	}
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-h"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr.String(), "Usage: faultcli")
	assert.NotContains(t, stdout.String(), "Please enter")
}

func TestRunPromptEOF(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader("500000000\n"), &stdout, &stderr)
	assert.Equal(t, exitValidation, code)
	assert.Contains(t, stderr.String(), "voltage")
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"--png":  filepath.Join(dir, "fault.png"),
		"--svg":  filepath.Join(dir, "fault.svg"),
		"--html": filepath.Join(dir, "fault.html"),
		"--xlsx": filepath.Join(dir, "fault.xlsx"),
		"--pdf":  filepath.Join(dir, "fault.pdf"),
	}
	args := append([]string{}, exampleArgs...)
	for flag, path := range files {
		args = append(args, flag, path)
	}
	args = append(args, "--table", "--t-end", "0.2")

	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "Iac-rms")

	for _, path := range files {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Greater(t, info.Size(), int64(0), path)
	}
}

func TestRunOutputError(t *testing.T) {
	args := append(append([]string{}, exampleArgs...), "--png", filepath.Join(t.TempDir(), "missing", "fault.png"))
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitFailure, run(args, strings.NewReader(""), &stdout, &stderr))
}

func withFlag(name, value string) []string {
	out := append([]string{}, exampleArgs...)
	for i := 0; i < len(out); i += 2 {
		if out[i] == name {
			out[i+1] = value
		}
	}
	return out
}
