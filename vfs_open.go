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

// OpenOptions collapses Open's overloaded shapes into the tagged-variant
// options record §9 asks for.
type OpenOptions struct {
	Flag            OpenFlag
	Mode            uint32
	ResolveSymlinks bool
}

// DefaultOpenOptions resolves symlinks, matching the default in §4.H.
func DefaultOpenOptions(flag OpenFlag, mode uint32) OpenOptions {
	return OpenOptions{Flag: flag, Mode: mode, ResolveSymlinks: true}
}

// Open implements §4.H's open: normalize, optionally realpath, resolve
// the mount, stat the resolved path, then either create (if absent and
// the flag permits writing) or open-with-access-check (if present).
func (vfs *VFS) Open(ctx Context, path string, opts OpenOptions) (FD, error) {
	return vfs.openIndirect(ctx, path, opts, nil)
}

func (vfs *VFS) openIndirect(ctx Context, path string, opts OpenOptions, parent *opCache) (FD, error) {
	cache, clear := withCache(parent)
	defer clear()

	h, err := vfs.open(ctx, path, opts, cache)
	if err != nil {
		return 0, vfs.restore(err, cache)
	}

	return vfs.fds.Alloc(h), nil
}

func (vfs *VFS) open(ctx Context, path string, opts OpenOptions, cache *opCache) (*Handle, error) {
	const op = "open"

	target := path
	if opts.ResolveSymlinks {
		rp, err := vfs.realPath(path, cache, make(map[string]bool))
		if err != nil {
			return nil, err
		}

		target = rp
	}

	rm, abs, err := vfs.resolve(target, cache)
	if err != nil {
		return nil, err
	}

	st, statErr := vfs.statCached(rm, abs, cache)

	switch {
	case IsNotExist(statErr):
		if !opts.Flag.CreatesIfMissing() {
			return nil, NewPathError(op, path, ENOENT)
		}

		parentDir := Dirname(abs)
		prm, _, err := vfs.resolve(parentDir, cache)
		if err != nil {
			return nil, err
		}

		pst, err := prm.Backend.Stat(prm.Path)
		if err != nil {
			return nil, vfs.restore(NewPathError(op, path, translateStatErr(err)), cache)
		}

		if !pst.IsDir() {
			return nil, NewPathError(op, path, ENOTDIR)
		}

		if !HasAccess(pst.ModeField, pst.UID, pst.GID, ctx, WantWrite) {
			return nil, NewPathError(op, path, EACCES)
		}

		bf, err := rm.Backend.CreateFile(rm.Path, opts.Flag, GlobalConfig.applyUMask(opts.Mode))
		if err != nil {
			return nil, vfs.restore(NewPathError(op, path, err), cache)
		}

		vfs.emit(EventRename, abs)

		return newHandle(abs, opts.Flag, bf, &mount{point: rm.Root, backend: rm.Backend}), nil

	case statErr != nil:
		return nil, vfs.restore(NewPathError(op, path, statErr), cache)

	default:
		if st.IsDir() && (opts.Flag.Writable || opts.Flag.Appendable) {
			return nil, NewPathError(op, path, EISDIR)
		}

		if opts.Flag.Exclusive {
			return nil, NewPathError(op, path, EEXIST)
		}

		if !HasAccess(st.ModeField, st.UID, st.GID, ctx, opts.Flag.RequiredAccess()) {
			return nil, NewPathError(op, path, EACCES)
		}

		bf, err := rm.Backend.OpenFile(rm.Path, opts.Flag)
		if err != nil {
			return nil, vfs.restore(NewPathError(op, path, err), cache)
		}

		if opts.Flag.Truncating {
			if terr := bf.Truncate(0); terr != nil {
				bf.Close()

				return nil, vfs.restore(NewPathError(op, path, terr), cache)
			}

			vfs.emit(EventChange, abs)
		}

		return newHandle(abs, opts.Flag, bf, &mount{point: rm.Root, backend: rm.Backend}), nil
	}
}

func (vfs *VFS) statCached(rm ResolvedMount, abs string, cache *opCache) (Stats, error) {
	if st, ok := cache.cachedStat(abs); ok {
		return st, nil
	}

	st, err := rm.Backend.Stat(rm.Path)
	if err != nil {
		return Stats{}, err
	}

	cache.storeStat(abs, st)

	return st, nil
}

// translateStatErr normalizes a bare backend error that isn't already an
// Errno into EIO, so callers never leak backend-internal error types.
func translateStatErr(err error) error {
	if _, ok := err.(Errno); ok { //nolint:errorlint // Errno comparisons use direct type assertion by design.
		return err
	}

	return EIO
}

// Close releases fd. Double-close fails with EBADF (§4.D).
func (vfs *VFS) Close(fd FD) error {
	h, err := vfs.fds.Get(fd)
	if err != nil {
		return err
	}

	if err := h.Close(); err != nil {
		return err
	}

	return vfs.fds.Release(fd)
}

// ReadFile implements §4.H's read_file: opens, stats, allocates a buffer
// sized to stat.size, reads once from offset 0, closes, returns the
// bytes.
func (vfs *VFS) ReadFile(ctx Context, path string, flag OpenFlag) ([]byte, error) {
	if !flag.Readable {
		flag = OpenFlag{Readable: true, MustExist: true}
	}

	cache, clear := withCache(nil)
	defer clear()

	h, err := vfs.open(ctx, path, DefaultOpenOptions(flag, 0), cache)
	if err != nil {
		return nil, vfs.restore(err, cache)
	}

	defer h.Close()

	st, err := h.Stat()
	if err != nil {
		return nil, vfs.restore(err, cache)
	}

	buf := make([]byte, st.Size())
	if st.Size() == 0 {
		return buf, nil
	}

	n, err := h.ReadAt(buf, 0)
	if err != nil {
		return nil, vfs.restore(err, cache)
	}

	return buf[:n], nil
}

// WriteFile implements §4.H's write_file: opens with a writable flag
// (a zero OpenFlag defaults to "w+" and a zero mode to 0644), writes data
// at offset 0, emits 'change'. A non-zero flag that is neither writable
// nor appendable is EINVAL.
func (vfs *VFS) WriteFile(ctx Context, path string, data []byte, flag OpenFlag, mode uint32) error {
	if flag == (OpenFlag{}) {
		flag = OpenFlag{Readable: true, Writable: true, Truncating: true}
	}

	if mode == 0 {
		mode = DefaultFilePerm
	}

	if !flag.Writable && !flag.Appendable {
		return NewPathError("write", path, EINVAL)
	}

	cache, clear := withCache(nil)
	defer clear()

	h, err := vfs.open(ctx, path, DefaultOpenOptions(flag, mode), cache)
	if err != nil {
		return vfs.restore(err, cache)
	}

	defer h.Close()

	_, err = h.WriteAt(data, 0)
	if err != nil {
		return vfs.restore(err, cache)
	}

	abs, _ := Normalize(path)
	vfs.emit(EventChange, abs)

	return nil
}

// AppendFile implements §4.H's append_file: identical to WriteFile but
// requires Appendable and writes starting at the handle's current
// position (EOF, since newHandle seeds it there on append-open) instead
// of forcing offset 0.
func (vfs *VFS) AppendFile(ctx Context, path string, data []byte, mode uint32) error {
	flag := OpenFlag{Writable: true, Appendable: true}

	cache, clear := withCache(nil)
	defer clear()

	h, err := vfs.open(ctx, path, DefaultOpenOptions(flag, mode), cache)
	if err != nil {
		return vfs.restore(err, cache)
	}

	defer h.Close()

	_, err = h.Write(data)
	if err != nil {
		return vfs.restore(err, cache)
	}

	abs, _ := Normalize(path)
	vfs.emit(EventChange, abs)

	return nil
}
