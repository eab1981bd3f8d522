package export

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func TestCopy(t *testing.T) {
	cb := &fakeClipboard{}
	require.NoError(t, Copy(cb, "#!/bin/bash\n"))
	assert.Equal(t, "#!/bin/bash\n", cb.text)

	failing := &fakeClipboard{err: errors.New("no display")}
	err := Copy(failing, "x")
	assert.ErrorContains(t, err, "no display")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "script.sh")

	abs, err := WriteFile(path, "#!/bin/bash\necho hi\n")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/bash\necho hi\n", string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	}

	_, err = WriteFile(path, "#!/bin/bash\necho bye\n")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/bash\necho bye\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
