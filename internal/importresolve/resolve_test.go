package importresolve_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btdsl/btdsl/internal/importresolve"
)

func TestResolveRelativeImport(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "main.ast.json")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "util.ast.json"), []byte("{}"), 0o644))

	r := importresolve.New(nil)
	got, err := r.Resolve(from, "./util.ast.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "util.ast.json"), got)
}

func TestResolveRejectsAbsolutePath(t *testing.T) {
	r := importresolve.New(nil)
	_, err := r.Resolve("/a/main.ast.json", "/etc/passwd.ast.json")
	assert.ErrorIs(t, err, importresolve.ErrAbsolute)
}

func TestResolveRejectsBadExtension(t *testing.T) {
	r := importresolve.New(nil)
	_, err := r.Resolve("/a/main.ast.json", "./util.bt")
	assert.ErrorIs(t, err, importresolve.ErrBadExtension)
}

func TestResolvePackageSpecRequiresExactlyOneMatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "robotics", "nav"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "robotics", "nav", "nav.ast.json"), []byte("{}"), 0o644))

	r := importresolve.New([]string{root})
	got, err := r.Resolve("/a/main.ast.json", "bt-dsl-pkg://robotics/nav/nav")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "robotics", "nav", "nav.ast.json"), got)
}

func TestResolvePackageSpecNoMatchIsAnError(t *testing.T) {
	root := t.TempDir()
	r := importresolve.New([]string{root})
	_, err := r.Resolve("/a/main.ast.json", "bt-dsl-pkg://nothing/here")
	assert.Error(t, err)
}

func TestResolvePackageSpecAmbiguousIsAnError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "robotics"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "robotics", "nav1.ast.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "robotics", "nav2.ast.json"), []byte("{}"), 0o644))

	r := importresolve.New([]string{root})
	_, err := r.Resolve("/a/main.ast.json", "bt-dsl-pkg://robotics/*")
	assert.Error(t, err)
}

func TestResolveBareSpecWithNoPackageMatchIsAnError(t *testing.T) {
	r := importresolve.New(nil)
	_, err := r.Resolve("/a/main.ast.json", "util.ast.json")
	assert.Error(t, err)
}
