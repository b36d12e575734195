package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"igatool/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestRunRoundTrip(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "hello")
	writeFile(t, filepath.Join(src, "b.s"), "world")
	archive := filepath.Join(t.TempDir(), "data.iga")

	code, _, stderr := run(t, "compress", archive, filepath.Join(src, "a.txt"), filepath.Join(src, "b.s"))
	require.Equal(t, 0, code, stderr)

	out := filepath.Join(t.TempDir(), "nested", "out")
	code, stdout, stderr := run(t, "x", archive, out)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "a.txt\nb.s\n", stdout)

	for name, want := range map[string]string{"a.txt": "hello", "b.s": "world"} {
		got, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestRunForceDecrypt(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "hello")
	archive := filepath.Join(t.TempDir(), "data.iga")
	code, _, _ := run(t, "compress", archive, filepath.Join(src, "a.txt"))
	require.Equal(t, 0, code)

	out := t.TempDir()
	code, _, stderr := run(t, "extract", "--force-decrypt", archive, out)
	require.Equal(t, 0, code, stderr)
	got, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.NotEqual(t, "hello", string(got))
	for i := range got {
		got[i] ^= 0xff
	}
	assert.Equal(t, "hello", string(got))
}

func TestRunBadSignature(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	archive := filepath.Join(t.TempDir(), "bad.iga")
	writeFile(t, archive, strings.Repeat("\x00", 32))
	out := t.TempDir()

	code, stdout, stderr := run(t, "extract", archive, out)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error: ")
	assert.Contains(t, stderr, "unexpected signature: 0x00000000")
	assert.NotContains(t, stderr, "Usage:")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunBadSignatureLeavesOutputDirAlone(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	dir := t.TempDir()
	archive := filepath.Join(dir, "bad.iga")
	writeFile(t, archive, strings.Repeat("\x00", 32))
	out := filepath.Join(dir, "new", "out")

	code, _, stderr := run(t, "extract", archive, out)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unexpected signature: 0x00000000")
	_, err := os.Stat(filepath.Join(dir, "new"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunLZ4(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "b.s"), "world")
	archive := filepath.Join(t.TempDir(), "data.iga.lz4")
	code, _, stderr := run(t, "compress", "--lz4", archive, filepath.Join(src, "b.s"))
	require.Equal(t, 0, code, stderr)

	code, _, stderr = run(t, "extract", archive, t.TempDir())
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unexpected signature: 0x04224D18")

	out := t.TempDir()
	code, stdout, stderr := run(t, "extract", "--lz4", archive, out)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "b.s\n", stdout)
	assert.Contains(t, stderr, "extracted "+archive)
	got, err := os.ReadFile(filepath.Join(out, "b.s"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(got))

	code, stdout, _ = run(t, "list", "--lz4", archive)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "b.s")
}

func TestRunUsageErrors(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	tests := []struct {
		name string
		args []string
	}{
		{"missing command", nil},
		{"unknown command", []string{"explode", "x.iga"}},
		{"extract without archive", []string{"extract"}},
		{"extract too many args", []string{"extract", "a", "b", "c"}},
		{"compress without archive", []string{"compress"}},
		{"list two archives", []string{"list", "a", "b"}},
		{"unknown flag", []string{"list", "--bogus", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := run(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Error: ")
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func TestRunMissingArchive(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	code, _, stderr := run(t, "extract", filepath.Join(t.TempDir(), "missing.iga"), t.TempDir())
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "open archive")
}

func TestRunList(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "hello")
	writeFile(t, filepath.Join(src, "b.s"), "world")
	archive := filepath.Join(t.TempDir(), "data.iga")
	code, _, _ := run(t, "c", archive, filepath.Join(src, "a.txt"), filepath.Join(src, "b.s"))
	require.Equal(t, 0, code)

	code, stdout, stderr := run(t, "l", archive)
	require.Equal(t, 0, code, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"NAME", "OFFSET", "SIZE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"a.txt", "32", "5"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"b.s", "37", "5"}, strings.Fields(lines[2]))

	code, stdout, _ = run(t, "list", "--digest", archive)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
}

func TestRunConfigFile(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "hello")
	archive := filepath.Join(dir, "data.iga")
	code, _, _ := run(t, "compress", archive, filepath.Join(dir, "a.txt"))
	require.Equal(t, 0, code)

	cfgPath := filepath.Join(dir, "igatool.yaml")
	writeFile(t, cfgPath, "outputDir: extracted\nbufferSize: 512\nlogs:\n  file: logs/igatool.log\n  verbose: true\n")

	code, stdout, stderr := run(t, "--config", cfgPath, "extract", archive)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "a.txt\n", stdout)
	got, err := os.ReadFile(filepath.Join(dir, "extracted", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	logged, err := os.ReadFile(filepath.Join(dir, "logs", "igatool.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logged), "extract "+archive)
	assert.Contains(t, string(logged), "extracted "+archive+" into ")
	assert.Contains(t, stderr, "[igatool] ")

	t.Setenv(config.EnvVar, cfgPath)
	writeFile(t, cfgPath, "bufferSize: 100\n")
	code, _, stderr = run(t, "list", archive)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "load config")
}
