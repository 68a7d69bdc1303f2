package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func load(t *testing.T, opts Options) *Config {
	t.Helper()
	v, err := New(opts)
	require.NoError(t, err)
	cfg, err := Decode(v)
	require.NoError(t, err)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := load(t, Options{StartDir: t.TempDir(), HomeDir: t.TempDir()})

	assert.Equal(t, "python", cfg.Lang)
	assert.Equal(t, "-", cfg.Output)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce())
}

func TestPrecedence(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	write(t, UserFile(home), "lang = \"bash\"\noutput = \"user\"\n[log]\nlevel = \"info\"\n")
	write(t, filepath.Join(root, ProjectFile), "output = \"build/cli\"\n[watch]\ndebounce_ms = 50\n")

	cfg := load(t, Options{StartDir: nested, HomeDir: home})
	assert.Equal(t, "bash", cfg.Lang)
	assert.Equal(t, "build/cli", cfg.Output)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Watch.DebounceMS)

	t.Setenv("CLIMETA_LOG_LEVEL", "debug")
	t.Setenv("CLIMETA_LANG", "js-cla")
	cfg = load(t, Options{StartDir: nested, HomeDir: home})
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "js-cla", cfg.Lang)
}

func TestExplicitFile(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ProjectFile), "lang = \"bash\"\n")
	explicit := filepath.Join(t.TempDir(), "other.toml")
	write(t, explicit, "lang = \"cpp-cxxopts\"\n")

	cfg := load(t, Options{File: explicit, StartDir: dir, HomeDir: t.TempDir()})
	assert.Equal(t, "cpp-cxxopts", cfg.Lang)

	_, err := New(Options{File: filepath.Join(dir, "absent.toml"), HomeDir: t.TempDir()})
	assert.Error(t, err)
}

func TestInvalidFile(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ProjectFile), "lang = [\n")

	_, err := New(Options{StartDir: dir, HomeDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "TOML")
}

func TestNegativeDebounce(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ProjectFile), "[watch]\ndebounce_ms = -1\n")

	v, err := New(Options{StartDir: dir, HomeDir: t.TempDir()})
	require.NoError(t, err)
	_, err = Decode(v)
	assert.ErrorContains(t, err, "debounce_ms")
}

func TestFindProjectFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "x", "y")
	require.NoError(t, os.MkdirAll(nested, 0755))

	_, err := FindProjectFile(nested)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	write(t, filepath.Join(root, "x", ProjectFile), "")
	got, err := FindProjectFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "x", ProjectFile), got)
}
