package pathres_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	def "hush/definitions"
	"hush/internal/pathres"
)

func TestRelativeTo(t *testing.T) {
	tests := []struct {
		name    string
		child   string
		root    string
		want    string
		wantErr bool
	}{
		{name: "direct child", child: "/data/a.bin", root: "/data", want: "./a.bin"},
		{name: "nested", child: "/data/x/y/a.bin", root: "/data", want: "./x/y/a.bin"},
		{name: "trailing slash root", child: "/data/a.bin", root: "/data/", want: "./a.bin"},
		{name: "filesystem root", child: "/a/b", root: "/", want: "./a/b"},
		{name: "windows style", child: "C:/Folder1/Data/f.txt", root: "C:/Folder1", want: "./Data/f.txt"},
		{name: "partial segment", child: "/data/ab/c", root: "/data/a", wantErr: true},
		{name: "sibling", child: "/other/a.bin", root: "/data", wantErr: true},
		{name: "same path", child: "/data", root: "/data", wantErr: true},
		{name: "root deeper than child", child: "/data", root: "/data/x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pathres.RelativeTo(tt.child, tt.root)
			if tt.wantErr {
				require.ErrorIs(t, err, def.ErrPathNotRelocatable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRoundTrip(t *testing.T) {
	for _, tc := range []struct{ root, file string }{
		{"/data", "/data/a.bin"},
		{"/data", "/data/x/y/z.txt"},
		{"/", "/etc/hosts"},
	} {
		rel, err := pathres.RelativeTo(tc.file, tc.root)
		require.NoError(t, err)
		assert.Equal(t, tc.file, pathres.Resolve(tc.root, rel))
	}
}

func TestToAbsoluteAndResolveExisting(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	file := filepath.Join(sub, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	root, err := pathres.ToAbsolute(dir)
	require.NoError(t, err)
	abs, err := pathres.ToAbsolute(filepath.Join(dir, "sub", "..", "sub", "f.txt"))
	require.NoError(t, err)

	rel, err := pathres.RelativeTo(abs, root)
	require.NoError(t, err)
	assert.Equal(t, "./sub/f.txt", rel)

	got, err := pathres.ResolveExisting(root, rel)
	require.NoError(t, err)
	assert.Equal(t, abs, got)

	_, err = pathres.ResolveExisting(root, "./sub/missing.txt")
	require.ErrorIs(t, err, def.ErrFileNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "..", filepath.Base(dir)+".outside"), []byte("x"), 0o600))
	for _, rel := range []string{"./../" + filepath.Base(dir) + ".outside", "./sub/../../x", "./", "./sub/.."} {
		_, err = pathres.ResolveExisting(root, rel)
		require.ErrorIs(t, err, def.ErrManifestMalformed, rel)
	}

	got, err = pathres.ResolveExisting(root, "./sub/../sub/f.txt")
	require.NoError(t, err)
	assert.Equal(t, abs, got)

	_, err = pathres.ToAbsolute(filepath.Join(dir, "nope"))
	require.ErrorIs(t, err, def.ErrFileNotFound)
}

func TestToAbsolute_ResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o600))
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	want, err := pathres.ToAbsolute(target)
	require.NoError(t, err)
	got, err := pathres.ToAbsolute(link)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
