//
//  Copyright 2024 The zenfs-core authors
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//  	http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package zenfs_test

import (
	"strings"
	"testing"

	zenfs "github.com/SardineFish/zenfs-core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	vfs := newTestVFS(t)

	require.NoError(t, vfs.WriteFile(zenfs.RootContext, "/src.txt", []byte("payload"), zenfs.OpenFlag{Writable: true, Truncating: true}, 0o644))
	require.NoError(t, vfs.CopyFile(zenfs.RootContext, "/src.txt", "/dst.txt", zenfs.CopyFileOptions{}))

	data, err := vfs.ReadFile(zenfs.RootContext, "/dst.txt", zenfs.OpenFlag{})
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestCopyFileExclusiveFailsOnExisting(t *testing.T) {
	vfs := newTestVFS(t)

	require.NoError(t, vfs.WriteFile(zenfs.RootContext, "/src.txt", []byte("a"), zenfs.OpenFlag{Writable: true, Truncating: true}, 0o644))
	require.NoError(t, vfs.WriteFile(zenfs.RootContext, "/dst.txt", []byte("b"), zenfs.OpenFlag{Writable: true, Truncating: true}, 0o644))

	err := vfs.CopyFile(zenfs.RootContext, "/src.txt", "/dst.txt", zenfs.CopyFileOptions{Exclusive: true})
	assert.ErrorIs(t, err, zenfs.EEXIST)
}

func TestCpRecursive(t *testing.T) {
	vfs := newTestVFS(t)

	_, err := vfs.Mkdir(zenfs.RootContext, "/src/sub", zenfs.MkdirOptions{Mode: 0o755, Recursive: true})
	require.NoError(t, err)
	require.NoError(t, vfs.WriteFile(zenfs.RootContext, "/src/a.txt", []byte("a"), zenfs.OpenFlag{Writable: true, Truncating: true}, 0o644))
	require.NoError(t, vfs.WriteFile(zenfs.RootContext, "/src/sub/b.txt", []byte("b"), zenfs.OpenFlag{Writable: true, Truncating: true}, 0o644))

	require.NoError(t, vfs.Cp(zenfs.RootContext, "/src", "/dst", zenfs.CopyOptions{}))

	data, err := vfs.ReadFile(zenfs.RootContext, "/dst/sub/b.txt", zenfs.OpenFlag{})
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestCpFilterSkipsSubtree(t *testing.T) {
	vfs := newTestVFS(t)

	_, err := vfs.Mkdir(zenfs.RootContext, "/src/skip", zenfs.MkdirOptions{Mode: 0o755, Recursive: true})
	require.NoError(t, err)
	require.NoError(t, vfs.WriteFile(zenfs.RootContext, "/src/skip/x.txt", []byte("x"), zenfs.OpenFlag{Writable: true, Truncating: true}, 0o644))
	require.NoError(t, vfs.WriteFile(zenfs.RootContext, "/src/keep.txt", []byte("k"), zenfs.OpenFlag{Writable: true, Truncating: true}, 0o644))

	filter := func(path string, st zenfs.Stats) bool { return !strings.Contains(path, "skip") }
	require.NoError(t, vfs.Cp(zenfs.RootContext, "/src", "/dst", zenfs.CopyOptions{Filter: filter}))

	_, err = vfs.ReadFile(zenfs.RootContext, "/dst/keep.txt", zenfs.OpenFlag{})
	require.NoError(t, err)

	_, err = vfs.Stat("/dst/skip")
	assert.ErrorIs(t, err, zenfs.ENOENT)
}

func TestReadvWritev(t *testing.T) {
	vfs := newTestVFS(t)

	require.NoError(t, vfs.WriteFile(zenfs.RootContext, "/a.txt", nil, zenfs.OpenFlag{Writable: true, Truncating: true}, 0o644))

	fd, err := vfs.Open(zenfs.RootContext, "/a.txt", zenfs.DefaultOpenOptions(zenfs.OpenFlag{Readable: true, Writable: true, MustExist: true}, 0))
	require.NoError(t, err)

	n, err := vfs.Writev(fd, [][]byte{[]byte("abc"), []byte("def")}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)

	require.NoError(t, vfs.Close(fd))

	fd2, err := vfs.Open(zenfs.RootContext, "/a.txt", zenfs.DefaultOpenOptions(zenfs.OpenFlag{Readable: true, MustExist: true}, 0))
	require.NoError(t, err)

	buf1 := make([]byte, 3)
	buf2 := make([]byte, 3)

	n, err = vfs.Readv(fd2, [][]byte{buf1, buf2}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)
	assert.Equal(t, "abc", string(buf1))
	assert.Equal(t, "def", string(buf2))

	require.NoError(t, vfs.Close(fd2))
}

func TestReadvWritevAtPosition(t *testing.T) {
	vfs := newTestVFS(t)

	require.NoError(t, vfs.WriteFile(zenfs.RootContext, "/a.txt", []byte("000000"), zenfs.OpenFlag{Writable: true, Truncating: true}, 0o644))

	fd, err := vfs.Open(zenfs.RootContext, "/a.txt", zenfs.DefaultOpenOptions(zenfs.OpenFlag{Readable: true, Writable: true, MustExist: true}, 0))
	require.NoError(t, err)

	pos := int64(2)
	n, err := vfs.Writev(fd, [][]byte{[]byte("ab"), []byte("cd")}, &pos)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	// the handle's own position must still be untouched at 0.
	untouched := make([]byte, 2)
	n, err = vfs.Readv(fd, [][]byte{untouched}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, "00", string(untouched), "positioned Writev must not move the handle's own position")

	require.NoError(t, vfs.Close(fd))

	data, err := vfs.ReadFile(zenfs.RootContext, "/a.txt", zenfs.OpenFlag{})
	require.NoError(t, err)
	assert.Equal(t, "00abcd", string(data))

	fd2, err := vfs.Open(zenfs.RootContext, "/a.txt", zenfs.DefaultOpenOptions(zenfs.OpenFlag{Readable: true, MustExist: true}, 0))
	require.NoError(t, err)

	buf1 := make([]byte, 2)
	buf2 := make([]byte, 2)

	readPos := int64(2)
	n, err = vfs.Readv(fd2, [][]byte{buf1, buf2}, &readPos)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.Equal(t, "ab", string(buf1))
	assert.Equal(t, "cd", string(buf2))

	// the handle's own position must still be untouched at 0.
	untouched2 := make([]byte, 2)
	n, err = vfs.Readv(fd2, [][]byte{untouched2}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, "00", string(untouched2), "positioned Readv must not move the handle's own position")

	require.NoError(t, vfs.Close(fd2))
}

func TestMkdtemp(t *testing.T) {
	vfs := newTestVFS(t)

	_, err := vfs.Mkdir(zenfs.RootContext, "/tmp", zenfs.DefaultMkdirOptions())
	require.NoError(t, err)

	dir1, err := vfs.Mkdtemp(zenfs.RootContext, "run-")
	require.NoError(t, err)

	dir2, err := vfs.Mkdtemp(zenfs.RootContext, "run-")
	require.NoError(t, err)

	assert.NotEqual(t, dir1, dir2)
	assert.True(t, strings.HasPrefix(dir1, "/tmp/run-"))

	st, err := vfs.Stat(dir1)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestStatfsUnsupportedBackend(t *testing.T) {
	vfs := newTestVFS(t)

	fss, err := vfs.Statfs("/")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), fss.TotalBytes)
}
