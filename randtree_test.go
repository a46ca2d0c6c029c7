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
	"testing"

	zenfs "github.com/SardineFish/zenfs-core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRandTreeParams() zenfs.RandTreeParams {
	return zenfs.RandTreeParams{
		MinName: 1, MaxName: 4,
		MinDirs: 2, MaxDirs: 4,
		MinFiles: 3, MaxFiles: 6,
		MinFileSize: 0, MaxFileSize: 32,
		MinSymlinks: 1, MaxSymlinks: 2,
	}
}

func TestNewRandTreeValidatesRanges(t *testing.T) {
	vfs := newTestVFS(t)

	_, err := zenfs.NewRandTree(vfs, zenfs.RootContext, "/tree", zenfs.RandTreeParams{MinName: 0, MaxName: 4})
	assert.ErrorIs(t, err, zenfs.ErrNameOutOfRange)

	p := validRandTreeParams()
	p.MinDirs = 5
	p.MaxDirs = 2
	_, err = zenfs.NewRandTree(vfs, zenfs.RootContext, "/tree", p)
	assert.ErrorIs(t, err, zenfs.ErrDirsOutOfRange)
}

func TestRandTreeCreateMaterializesShape(t *testing.T) {
	vfs := newTestVFS(t)

	rt, err := zenfs.NewRandTree(vfs, zenfs.RootContext, "/tree", validRandTreeParams())
	require.NoError(t, err)
	require.NoError(t, rt.Create())

	for _, dir := range rt.Dirs {
		st, err := vfs.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, st.IsDir())
	}

	for _, f := range rt.Files {
		st, err := vfs.Stat(f)
		require.NoError(t, err, f)
		assert.False(t, st.IsDir())
	}

	for _, sl := range rt.Symlinks {
		lst, err := vfs.Lstat(sl.NewName)
		require.NoError(t, err, sl.NewName)
		assert.True(t, lst.IsSymlink())
	}
}

func TestRandTreeOneLevelKeepsFilesAtBase(t *testing.T) {
	vfs := newTestVFS(t)

	p := validRandTreeParams()
	p.OneLevel = true

	rt, err := zenfs.NewRandTree(vfs, zenfs.RootContext, "/flat", p)
	require.NoError(t, err)
	require.NoError(t, rt.Create())

	for _, f := range rt.Files {
		assert.Equal(t, "/flat", zenfs.Dirname(f))
	}
}
