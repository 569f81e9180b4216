package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNested(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, EnsureDir(dir))

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "processed")

	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	require.Error(t, EnsureDir(filepath.Join(blocker, "sub")))
}

func TestMoveInto(t *testing.T) {
	tmp := t.TempDir()
	dst := filepath.Join(tmp, "processed")

	write := func(name, body string) string {
		p := filepath.Join(tmp, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	got, err := MoveInto(write("s1__a.jpg", "one"), dst)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dst, "s1__a.jpg"), got)

	got, err = MoveInto(write("s1__a.jpg", "two"), dst)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dst, "s1__a-1.jpg"), got)

	got, err = MoveInto(write("s1__a.jpg", "three"), dst)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dst, "s1__a-2.jpg"), got)

	b, err := os.ReadFile(filepath.Join(dst, "s1__a.jpg"))
	require.NoError(t, err)
	require.Equal(t, "one", string(b), "first file must not be overwritten")

	_, err = os.Stat(filepath.Join(tmp, "s1__a.jpg"))
	require.True(t, os.IsNotExist(err))
}

func TestMoveInto_MissingSource(t *testing.T) {
	_, err := MoveInto(filepath.Join(t.TempDir(), "nope.jpg"), t.TempDir())
	require.Error(t, err)
}
