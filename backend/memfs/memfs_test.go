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

package memfs

import (
	"io/fs"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zenfs "github.com/SardineFish/zenfs-core"
)

func TestBackendCreateAndStat(t *testing.T) {
	b := New()

	f, err := b.CreateFile("/foo.txt", zenfs.OpenFlag{}, 0o644)
	require.NoError(t, err)

	n, err := f.WriteAt([]byte("hello"), 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	st, err := b.Stat("/foo.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), st.Size())
	assert.False(t, st.IsDir())
}

func TestBackendCreateExclusive(t *testing.T) {
	b := New()

	_, err := b.CreateFile("/foo.txt", zenfs.OpenFlag{}, 0o644)
	require.NoError(t, err)

	_, err = b.CreateFile("/foo.txt", zenfs.OpenFlag{Exclusive: true}, 0o644)
	assert.ErrorIs(t, err, zenfs.EEXIST)
}

func TestBackendMkdirAndReadDir(t *testing.T) {
	b := New()

	require.NoError(t, b.Mkdir("/dir", 0o755))

	_, err := b.CreateFile("/dir/a.txt", zenfs.OpenFlag{}, 0o644)
	require.NoError(t, err)

	_, err = b.CreateFile("/dir/b.txt", zenfs.OpenFlag{}, 0o644)
	require.NoError(t, err)

	names, err := b.ReadDir("/dir")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)
}

func TestBackendMkdirExists(t *testing.T) {
	b := New()

	require.NoError(t, b.Mkdir("/dir", 0o755))
	assert.ErrorIs(t, b.Mkdir("/dir", 0o755), zenfs.EEXIST)
}

func TestBackendRmdirNotEmpty(t *testing.T) {
	b := New()

	require.NoError(t, b.Mkdir("/dir", 0o755))

	_, err := b.CreateFile("/dir/a.txt", zenfs.OpenFlag{}, 0o644)
	require.NoError(t, err)

	assert.ErrorIs(t, b.Rmdir("/dir"), zenfs.ENOTEMPTY)
}

func TestBackendUnlinkRejectsDir(t *testing.T) {
	b := New()

	require.NoError(t, b.Mkdir("/dir", 0o755))
	assert.ErrorIs(t, b.Unlink("/dir"), zenfs.EISDIR)
}

func TestBackendRename(t *testing.T) {
	b := New()

	_, err := b.CreateFile("/a.txt", zenfs.OpenFlag{}, 0o644)
	require.NoError(t, err)

	require.NoError(t, b.Rename("/a.txt", "/b.txt"))
	assert.False(t, b.Exists("/a.txt"))
	assert.True(t, b.Exists("/b.txt"))
}

func TestBackendRenameOntoNonEmptyDirLeavesSourceInPlace(t *testing.T) {
	b := New()

	_, err := b.CreateFile("/a.txt", zenfs.OpenFlag{}, 0o644)
	require.NoError(t, err)

	require.NoError(t, b.Mkdir("/dir", 0o755))

	_, err = b.CreateFile("/dir/occupied.txt", zenfs.OpenFlag{}, 0o644)
	require.NoError(t, err)

	err = b.Rename("/a.txt", "/dir")
	assert.ErrorIs(t, err, zenfs.ENOTEMPTY)

	assert.True(t, b.Exists("/a.txt"), "failed rename must leave the source reachable")
}

func TestBackendLinkSharesData(t *testing.T) {
	b := New()

	f, err := b.CreateFile("/a.txt", zenfs.OpenFlag{}, 0o644)
	require.NoError(t, err)

	_, err = f.WriteAt([]byte("shared"), 0)
	require.NoError(t, err)

	require.NoError(t, b.Link("/a.txt", "/b.txt"))

	linked, err := b.OpenFile("/b.txt", zenfs.OpenFlag{})
	require.NoError(t, err)

	buf := make([]byte, 6)
	n, err := linked.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "shared", string(buf[:n]))
}

func TestBackendSymlinkModeBitSurvivesChmod(t *testing.T) {
	b := New()

	f, err := b.CreateFile("/link", zenfs.OpenFlag{}, 0o644)
	require.NoError(t, err)

	require.NoError(t, f.Chmod(uint32(fs.ModeSymlink)|0o777))

	st, err := b.Stat("/link")
	require.NoError(t, err)
	assert.True(t, st.IsSymlink())

	require.NoError(t, f.Chmod(0o644))

	st, err = b.Stat("/link")
	require.NoError(t, err)
	assert.True(t, st.IsSymlink(), "plain Chmod must not clear the symlink type bit")
	assert.Equal(t, fs.FileMode(0o644), st.Mode().Perm())
}

func TestBackendConcurrentCreate(t *testing.T) {
	b := New()

	require.NoError(t, b.Mkdir("/dir", 0o755))

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, err := b.CreateFile("/dir/f", zenfs.OpenFlag{}, 0o644)
			assert.NoError(t, err)
		}(i)
	}

	wg.Wait()

	names, err := b.ReadDir("/dir")
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, names)
}

func TestBackendTruncate(t *testing.T) {
	b := New()

	f, err := b.CreateFile("/a.txt", zenfs.OpenFlag{}, 0o644)
	require.NoError(t, err)

	_, err = f.WriteAt([]byte("hello world"), 0)
	require.NoError(t, err)

	require.NoError(t, f.Truncate(5))

	st, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), st.Size())
}
