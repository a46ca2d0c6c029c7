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

package zenfs

import (
	"strings"

	"github.com/valyala/fastrand"
)

// DefaultDirPerm is the mode Mkdir applies to directories created by the
// random tree generator below.
const DefaultDirPerm = 0o755

// Component P — a random tree generator, adapted from the teacher's
// RndTree (rndtree.go), rebuilt against the VFS dispatch surface instead
// of avfs.VFS and reseeded with fastrand.Uint32n in place of math/rand so
// every call site draws from the same generator the teacher's go.mod
// already depends on. randtree_test.go uses it to exercise Stat and
// Lstat (and so realpath) over an unpredictable tree shape rather than a
// handful of hand-written fixtures.

// ErrRandTreeOutOfRange reports an invalid RandTreeParams field.
type ErrRandTreeOutOfRange string

func (e ErrRandTreeOutOfRange) Error() string {
	return string(e) + " parameter out of range"
}

var (
	ErrNameOutOfRange     = ErrRandTreeOutOfRange("name")
	ErrDirsOutOfRange     = ErrRandTreeOutOfRange("dirs")
	ErrFilesOutOfRange    = ErrRandTreeOutOfRange("files")
	ErrFileSizeOutOfRange = ErrRandTreeOutOfRange("file size")
	ErrSymlinksOutOfRange = ErrRandTreeOutOfRange("symlinks")
)

// RandTreeParams bounds the shape of a generated tree.
type RandTreeParams struct {
	MinName     int
	MaxName     int
	MinDirs     int
	MaxDirs     int
	MinFiles    int
	MaxFiles    int
	MinFileSize int
	MaxFileSize int
	MinSymlinks int
	MaxSymlinks int
	OneLevel    bool
}

type symlinkParams struct {
	OldName, NewName string
}

// RandTree generates and can materialize a random directory structure
// under a VFS, within a single mount, for stress-testing the resolver.
type RandTree struct {
	vfs      *VFS
	ctx      Context
	baseDir  string
	Dirs     []string
	Files    []string
	Symlinks []symlinkParams
	params   RandTreeParams
}

// NewRandTree validates p and pre-computes the tree's paths without
// creating anything on vfs yet.
func NewRandTree(vfs *VFS, ctx Context, baseDir string, p RandTreeParams) (*RandTree, error) {
	switch {
	case p.MinName < 1 || p.MinName > p.MaxName:
		return nil, ErrNameOutOfRange
	case p.MinDirs < 0 || p.MinDirs > p.MaxDirs:
		return nil, ErrDirsOutOfRange
	case p.MinFiles < 0 || p.MinFiles > p.MaxFiles:
		return nil, ErrFilesOutOfRange
	case p.MinFileSize < 0 || p.MinFileSize > p.MaxFileSize:
		return nil, ErrFileSizeOutOfRange
	case p.MinSymlinks < 0 || p.MinSymlinks > p.MaxSymlinks:
		return nil, ErrSymlinksOutOfRange
	}

	rt := &RandTree{vfs: vfs, ctx: ctx, baseDir: baseDir, params: p}

	rt.generateDirs()
	rt.generateFiles()
	rt.generateSymlinks()

	return rt, nil
}

func (rt *RandTree) generateDirs() {
	n := randRange(rt.params.MinDirs, rt.params.MaxDirs)
	rt.Dirs = make([]string, n)

	for i := 0; i < n; i++ {
		rt.Dirs[i] = Join(rt.randDir(i), rt.randName())
	}
}

func (rt *RandTree) generateFiles() {
	n := randRange(rt.params.MinFiles, rt.params.MaxFiles)
	rt.Files = make([]string, n)

	for i := 0; i < n; i++ {
		rt.Files[i] = Join(rt.randDir(len(rt.Dirs)), rt.randName())
	}
}

func (rt *RandTree) generateSymlinks() {
	n := randRange(rt.params.MinSymlinks, rt.params.MaxSymlinks)
	if n == 0 || len(rt.Files) == 0 {
		return
	}

	rt.Symlinks = make([]symlinkParams, n)

	for i := 0; i < n; i++ {
		rt.Symlinks[i] = symlinkParams{
			OldName: rt.randFile(),
			NewName: Join(rt.randDir(len(rt.Dirs)), rt.randName()),
		}
	}
}

// Create materializes the generated tree's directories, files and
// symlinks on the tree's VFS.
func (rt *RandTree) Create() error {
	if _, err := rt.vfs.Mkdir(rt.ctx, rt.baseDir, MkdirOptions{Mode: DefaultDirPerm, Recursive: true}); err != nil {
		return err
	}

	for _, dir := range rt.Dirs {
		if _, err := rt.vfs.Mkdir(rt.ctx, dir, MkdirOptions{Mode: DefaultDirPerm}); err != nil {
			return err
		}
	}

	for _, name := range rt.Files {
		size := randRange(rt.params.MinFileSize, rt.params.MaxFileSize)
		buf := make([]byte, size)

		for i := range buf {
			buf[i] = byte(fastrand.Uint32n(256))
		}

		if err := rt.vfs.WriteFile(rt.ctx, name, buf, OpenFlag{Writable: true, Truncating: true}, DefaultFilePerm); err != nil {
			return err
		}
	}

	for _, sl := range rt.Symlinks {
		if err := rt.vfs.Symlink(rt.ctx, sl.OldName, sl.NewName, SymlinkFile); err != nil {
			return err
		}
	}

	return nil
}

func (rt *RandTree) randDir(upperBound int) string {
	if rt.params.OneLevel || upperBound <= 0 {
		return rt.baseDir
	}

	return rt.Dirs[fastrand.Uint32n(uint32(upperBound))]
}

func (rt *RandTree) randFile() string {
	return rt.Files[fastrand.Uint32n(uint32(len(rt.Files)))]
}

func (rt *RandTree) randName() string {
	return randName(rt.params.MinName, rt.params.MaxName)
}

func randRange(min, max int) int {
	if min >= max {
		return min
	}

	return min + int(fastrand.Uint32n(uint32(max-min)))
}

// randName draws a short name from a mix of ASCII, Cyrillic and
// Devanagari code points, the way the teacher's randName exercises
// non-ASCII path handling (rndtree.go).
func randName(minName, maxName int) string {
	n := randRange(minName, maxName)

	var sb strings.Builder

	ranges := [4][2]rune{
		{65, 90},     // ASCII uppercase.
		{97, 122},    // ASCII lowercase.
		{0x400, 0x4ff},  // Cyrillic.
		{0x900, 0x97f},  // Devanagari.
	}

	for i := 0; i < n; i++ {
		rg := ranges[fastrand.Uint32n(4)]
		r := rg[0] + rune(fastrand.Uint32n(uint32(rg[1]-rg[0])))
		sb.WriteRune(r)
	}

	return sb.String()
}
