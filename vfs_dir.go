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
	"io"
	"io/fs"
)

// MkdirOptions collapses mkdir's overloaded shapes (§9).
type MkdirOptions struct {
	Mode      uint32
	Recursive bool
}

// DefaultMkdirOptions matches §4.H's mode=0o777, recursive=false default.
func DefaultMkdirOptions() MkdirOptions {
	return MkdirOptions{Mode: 0o777}
}

// Mkdir implements §4.H's mkdir. Non-recursive requires a writable
// parent. Recursive walks upward collecting non-existent ancestors and
// creates them top-down, emitting 'rename' for each and returning the
// first directory created (caller-visible path), or "" if none were
// needed because path already existed.
func (vfs *VFS) Mkdir(ctx Context, path string, opts MkdirOptions) (string, error) {
	cache, clear := withCache(nil)
	defer clear()

	abs, err := Normalize(path)
	if err != nil {
		return "", err
	}

	if !opts.Recursive {
		if err := vfs.checkParentAccess(ctx, abs, WantWrite, cache); err != nil {
			return "", err
		}

		rm, _, err := vfs.resolve(abs, cache)
		if err != nil {
			return "", err
		}

		if err := rm.Backend.Mkdir(rm.Path, GlobalConfig.applyUMask(opts.Mode)); err != nil {
			return "", vfs.restore(NewPathError("mkdir", path, err), cache)
		}

		vfs.emit(EventRename, abs)

		return abs, nil
	}

	var missing []string

	cur := abs
	for cur != "/" {
		rm, _, err := vfs.resolve(cur, cache)
		if err != nil {
			return "", err
		}

		if rm.Backend.Exists(rm.Path) {
			break
		}

		missing = append(missing, cur)
		cur = Dirname(cur)
	}

	if len(missing) == 0 {
		return "", nil
	}

	first := missing[len(missing)-1]

	for i := len(missing) - 1; i >= 0; i-- {
		rm, _, err := vfs.resolve(missing[i], cache)
		if err != nil {
			return "", err
		}

		if err := rm.Backend.Mkdir(rm.Path, GlobalConfig.applyUMask(opts.Mode)); err != nil {
			return "", vfs.restore(NewPathError("mkdir", missing[i], err), cache)
		}

		vfs.emit(EventRename, missing[i])
	}

	return first, nil
}

// DirEntry is one result of ReadDir: the entry name and its Stats (always
// fetched, §4.H). For an entry produced by a recursive descent, Name is
// prefixed by the parent entry's name.
type DirEntry struct {
	Name  string
	Stats Stats
}

// ReadDirOptions collapses readdir's overloaded shapes (§9).
type ReadDirOptions struct {
	Recursive bool
}

// ReadDir implements §4.H's readdir: stat must be a directory, read
// access is checked, each entry is stat'd and cached. When Recursive,
// directory entries are depth-first descended into and their results are
// prefixed by the entry name.
func (vfs *VFS) ReadDir(ctx Context, path string, opts ReadDirOptions) ([]DirEntry, error) {
	cache, clear := withCache(nil)
	defer clear()

	return vfs.readDir(ctx, path, opts, cache)
}

func (vfs *VFS) readDir(ctx Context, path string, opts ReadDirOptions, cache *opCache) ([]DirEntry, error) {
	rm, abs, err := vfs.resolve(path, cache)
	if err != nil {
		return nil, err
	}

	st, err := vfs.statCached(rm, abs, cache)
	if err != nil {
		return nil, vfs.restore(NewPathError("readdir", path, err), cache)
	}

	if !st.IsDir() {
		return nil, NewPathError("readdir", path, ENOTDIR)
	}

	if !HasAccess(st.ModeField, st.UID, st.GID, ctx, WantRead) {
		return nil, NewPathError("readdir", path, EACCES)
	}

	names, err := rm.Backend.ReadDir(rm.Path)
	if err != nil {
		return nil, vfs.restore(NewPathError("readdir", path, err), cache)
	}

	entries := make([]DirEntry, 0, len(names))

	for _, name := range names {
		childAbs := Join(abs, name)

		crm, _, err := vfs.resolve(childAbs, cache)
		if err != nil {
			return nil, err
		}

		cst, err := vfs.statCached(crm, childAbs, cache)
		if err != nil {
			return nil, vfs.restore(NewPathError("readdir", childAbs, err), cache)
		}

		entries = append(entries, DirEntry{Name: name, Stats: cst})

		if opts.Recursive && cst.IsDir() {
			sub, err := vfs.readDir(ctx, childAbs, opts, cache)
			if err != nil {
				return nil, err
			}

			for _, se := range sub {
				entries = append(entries, DirEntry{Name: name + "/" + se.Name, Stats: se.Stats})
			}
		}
	}

	return entries, nil
}

// Dir is an iterator over one directory's entries, bound to the path and
// context it was opened with. Its ReadDir(n) cursor mirrors the teacher's
// own File.Readdirnames convention (avfs.go) and io/fs.ReadDirFile: n<=0
// drains every remaining entry, n>0 returns at most n and advances the
// cursor by however many were actually available.
type Dir struct {
	vfs     *VFS
	ctx     Context
	path    string
	entries []DirEntry
	pos     int
}

// Opendir implements §4.H's opendir: stats path, requires a readable
// directory, and returns a Dir iterator bound to path and ctx. The
// backing entry list is fetched eagerly at open time, the way ReadDir
// already fetches it, rather than streamed lazily per call.
func (vfs *VFS) Opendir(ctx Context, path string) (*Dir, error) {
	cache, clear := withCache(nil)
	defer clear()

	abs, err := Normalize(path)
	if err != nil {
		return nil, err
	}

	entries, err := vfs.readDir(ctx, path, ReadDirOptions{}, cache)
	if err != nil {
		return nil, err
	}

	return &Dir{vfs: vfs, ctx: ctx, path: abs, entries: entries}, nil
}

// Path returns the directory path the iterator is bound to.
func (d *Dir) Path() string { return d.path }

// ReadDir returns the next n entries and advances the cursor. n<=0
// drains and returns every remaining entry, with a nil error even when
// none remain. Once exhausted, ReadDir with n>0 returns io.EOF, matching
// io/fs.ReadDirFile's contract.
func (d *Dir) ReadDir(n int) ([]DirEntry, error) {
	remaining := d.entries[d.pos:]

	if n <= 0 {
		d.pos = len(d.entries)

		return remaining, nil
	}

	if len(remaining) == 0 {
		return nil, io.EOF
	}

	if n > len(remaining) {
		n = len(remaining)
	}

	d.pos += n

	return remaining[:n], nil
}

// Close releases the iterator. The reference implementation holds no
// resource beyond the pre-fetched entry slice, so this exists only for
// symmetry with the dispatch layer's other Open/Close pairs.
func (d *Dir) Close() error { return nil }

// RmOptions collapses rm's overloaded shapes (§9).
type RmOptions struct {
	Recursive bool
	Force     bool
}

// Rm implements §4.H's rm: lstat, then dispatch by file type.
func (vfs *VFS) Rm(ctx Context, path string, opts RmOptions) error {
	cache, clear := withCache(nil)
	defer clear()

	return vfs.rm(ctx, path, opts, cache)
}

func (vfs *VFS) rm(ctx Context, path string, opts RmOptions, cache *opCache) error {
	rm, abs, err := vfs.resolve(path, cache)
	if err != nil {
		return err
	}

	st, err := rm.Backend.Stat(rm.Path)
	if err != nil {
		if IsNotExist(err) {
			if opts.Force {
				return nil
			}

			return NewPathError("rm", path, ENOENT)
		}

		return vfs.restore(NewPathError("rm", path, err), cache)
	}

	switch {
	case st.IsDir():
		if opts.Recursive {
			entries, err := vfs.readDir(ctx, abs, ReadDirOptions{}, cache)
			if err != nil {
				return err
			}

			for _, e := range entries {
				if err := vfs.rm(ctx, Join(abs, e.Name), opts, cache); err != nil {
					return err
				}
			}
		}

		return vfs.Rmdir(ctx, abs)

	case st.ModeField&fs.ModeType == 0, st.IsSymlink(),
		st.ModeField&fs.ModeDevice != 0, st.ModeField&fs.ModeCharDevice != 0:
		return vfs.Unlink(ctx, abs)

	default:
		return NewPathError("rm", path, EPERM)
	}
}
