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

import "time"

// Stat calls RealPath first, then stats the dereferenced path (§4.H).
func (vfs *VFS) Stat(path string) (Stats, error) {
	cache, clear := withCache(nil)
	defer clear()

	rp, err := vfs.realPath(path, cache, make(map[string]bool))
	if err != nil {
		return Stats{}, vfs.restore(err, cache)
	}

	rm, _, err := vfs.resolve(rp, cache)
	if err != nil {
		return Stats{}, err
	}

	st, err := rm.Backend.Stat(rm.Path)
	if err != nil {
		return Stats{}, vfs.restore(NewPathError("stat", path, err), cache)
	}

	return st, nil
}

// Lstat stats path without following a final symlink component (§4.H).
func (vfs *VFS) Lstat(path string) (Stats, error) {
	cache, clear := withCache(nil)
	defer clear()

	rm, _, err := vfs.resolve(path, cache)
	if err != nil {
		return Stats{}, err
	}

	st, err := rm.Backend.Stat(rm.Path)
	if err != nil {
		return Stats{}, vfs.restore(NewPathError("lstat", path, err), cache)
	}

	return st, nil
}

// Fstat stats the file bound to fd.
func (vfs *VFS) Fstat(fd FD) (Stats, error) {
	h, err := vfs.fds.Get(fd)
	if err != nil {
		return Stats{}, err
	}

	return h.Stat()
}

func (vfs *VFS) withWritableHandle(ctx Context, path string, lopen bool, fn func(*Handle) error) error {
	opts := DefaultOpenOptions(OpenFlag{Readable: true, Writable: true, MustExist: true}, 0)
	opts.ResolveSymlinks = !lopen

	cache, clear := withCache(nil)
	defer clear()

	h, err := vfs.open(ctx, path, opts, cache)
	if err != nil {
		return vfs.restore(err, cache)
	}

	defer h.Close()

	return fn(h)
}

// Chmod changes the mode of the named file, following symlinks (§4.H).
func (vfs *VFS) Chmod(ctx Context, path string, mode uint32) error {
	return vfs.withWritableHandle(ctx, path, false, func(h *Handle) error { return h.Chmod(mode) })
}

// Lchmod changes the mode of a symlink itself, not its target.
func (vfs *VFS) Lchmod(ctx Context, path string, mode uint32) error {
	return vfs.withWritableHandle(ctx, path, true, func(h *Handle) error { return h.Chmod(mode) })
}

// Chown changes uid/gid of the named file, following symlinks.
func (vfs *VFS) Chown(ctx Context, path string, uid, gid int) error {
	return vfs.withWritableHandle(ctx, path, false, func(h *Handle) error { return h.Chown(uid, gid) })
}

// Lchown changes uid/gid of a symlink itself.
func (vfs *VFS) Lchown(ctx Context, path string, uid, gid int) error {
	return vfs.withWritableHandle(ctx, path, true, func(h *Handle) error { return h.Chown(uid, gid) })
}

// Utimes changes access/modification times, following symlinks.
func (vfs *VFS) Utimes(ctx Context, path string, atime, mtime time.Time) error {
	return vfs.withWritableHandle(ctx, path, false, func(h *Handle) error { return h.Utimes(atime, mtime) })
}

// Lutimes changes access/modification times of a symlink itself.
func (vfs *VFS) Lutimes(ctx Context, path string, atime, mtime time.Time) error {
	return vfs.withWritableHandle(ctx, path, true, func(h *Handle) error { return h.Utimes(atime, mtime) })
}

// Truncate changes the size of the named file. A negative length is
// EINVAL (§4.H).
func (vfs *VFS) Truncate(ctx Context, path string, size int64) error {
	if size < 0 {
		return NewPathError("truncate", path, EINVAL)
	}

	return vfs.withWritableHandle(ctx, path, false, func(h *Handle) error { return h.Truncate(size) })
}

// Ftruncate changes the size of the file bound to fd.
func (vfs *VFS) Ftruncate(fd FD, size int64) error {
	if size < 0 {
		return EINVAL
	}

	h, err := vfs.fds.Get(fd)
	if err != nil {
		return err
	}

	return h.Truncate(size)
}
