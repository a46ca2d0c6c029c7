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

import "io/fs"

// SymlinkType is the type tag §4.H's symlink asks for.
type SymlinkType int

const (
	SymlinkFile SymlinkType = iota
	SymlinkDir
	SymlinkJunction
)

func (vfs *VFS) checkParentAccess(ctx Context, abs string, want WantMode, cache *opCache) error {
	parentDir := Dirname(abs)

	rm, _, err := vfs.resolve(parentDir, cache)
	if err != nil {
		return err
	}

	pst, err := rm.Backend.Stat(rm.Path)
	if err != nil {
		return vfs.restore(err, cache)
	}

	if !HasAccess(pst.ModeField, pst.UID, pst.GID, ctx, want) {
		return NewPathError("access", parentDir, EACCES)
	}

	return nil
}

// Unlink removes the named file, checking write access on its parent
// directory, and emits 'rename' (§4.H).
func (vfs *VFS) Unlink(ctx Context, path string) error {
	cache, clear := withCache(nil)
	defer clear()

	rm, abs, err := vfs.resolve(path, cache)
	if err != nil {
		return err
	}

	if err := vfs.checkParentAccess(ctx, abs, WantWrite, cache); err != nil {
		return err
	}

	if err := rm.Backend.Unlink(rm.Path); err != nil {
		return vfs.restore(NewPathError("unlink", path, err), cache)
	}

	vfs.emit(EventRename, abs)

	return nil
}

// Rmdir removes the named empty directory (§4.H).
func (vfs *VFS) Rmdir(ctx Context, path string) error {
	cache, clear := withCache(nil)
	defer clear()

	rm, abs, err := vfs.resolve(path, cache)
	if err != nil {
		return err
	}

	st, err := rm.Backend.Stat(rm.Path)
	if err != nil {
		return vfs.restore(NewPathError("rmdir", path, err), cache)
	}

	if !st.IsDir() {
		return NewPathError("rmdir", path, ENOTDIR)
	}

	if err := vfs.checkParentAccess(ctx, abs, WantWrite, cache); err != nil {
		return err
	}

	if err := rm.Backend.Rmdir(rm.Path); err != nil {
		return vfs.restore(NewPathError("rmdir", path, err), cache)
	}

	vfs.emit(EventRename, abs)

	return nil
}

// Rename implements §4.H's rename: same-backend delegates to
// Backend.Rename; cross-backend falls back to copy-then-unlink.
func (vfs *VFS) Rename(ctx Context, oldpath, newpath string) error {
	cache, clear := withCache(nil)
	defer clear()

	oldRM, oldAbs, err := vfs.resolve(oldpath, cache)
	if err != nil {
		return err
	}

	newRM, newAbs, err := vfs.resolve(newpath, cache)
	if err != nil {
		return err
	}

	if err := vfs.checkParentAccess(ctx, oldAbs, WantWrite, cache); err != nil {
		return err
	}

	if oldRM.Root == newRM.Root {
		if err := oldRM.Backend.Rename(oldRM.Path, newRM.Path); err != nil {
			return vfs.restore(NewLinkError("rename", oldpath, newpath, err), cache)
		}

		vfs.emit(EventRename, oldAbs)
		vfs.emit(EventChange, newAbs)

		return nil
	}

	data, err := vfs.ReadFile(ctx, oldpath, OpenFlag{Readable: true, MustExist: true})
	if err != nil {
		return err
	}

	if err := vfs.WriteFile(ctx, newpath, data, OpenFlag{Writable: true, Truncating: true}, DefaultFilePerm); err != nil {
		return err
	}

	if err := vfs.Unlink(ctx, oldpath); err != nil {
		return err
	}

	vfs.emit(EventRename, oldAbs)

	return nil
}

// Link creates newname as a hard link to oldname. Both must resolve to
// the same backend, else EXDEV (§4.H) — cross-mount hard links are a
// stated Non-goal.
func (vfs *VFS) Link(ctx Context, oldname, newname string) error {
	cache, clear := withCache(nil)
	defer clear()

	oldRM, _, err := vfs.resolve(oldname, cache)
	if err != nil {
		return err
	}

	newRM, newAbs, err := vfs.resolve(newname, cache)
	if err != nil {
		return err
	}

	if oldRM.Root != newRM.Root {
		return NewLinkError("link", oldname, newname, EXDEV)
	}

	oldSt, err := oldRM.Backend.Stat(oldRM.Path)
	if err != nil {
		return vfs.restore(NewLinkError("link", oldname, newname, err), cache)
	}

	if !HasAccess(oldSt.ModeField, oldSt.UID, oldSt.GID, ctx, WantRead) {
		return NewLinkError("link", oldname, newname, EACCES)
	}

	if err := vfs.checkParentAccess(ctx, newAbs, WantWrite, cache); err != nil {
		return err
	}

	if err := oldRM.Backend.Link(oldRM.Path, newRM.Path); err != nil {
		return vfs.restore(NewLinkError("link", oldname, newname, err), cache)
	}

	vfs.emit(EventRename, newAbs)

	return nil
}

// Symlink creates newname as a symbolic link to oldname (§4.H). The link
// target is stored as the body of a regular file, then the file is
// marked with the ModeSymlink bit, matching §3's "symlink content is a
// regular file whose body is the UTF-8 link target" invariant.
func (vfs *VFS) Symlink(ctx Context, oldname, newname string, typ SymlinkType) error {
	if typ != SymlinkFile && typ != SymlinkDir && typ != SymlinkJunction {
		return NewLinkError("symlink", oldname, newname, EINVAL)
	}

	cache, clear := withCache(nil)
	defer clear()

	rm, abs, err := vfs.resolve(newname, cache)
	if err != nil {
		return err
	}

	if rm.Backend.Exists(rm.Path) {
		return NewLinkError("symlink", oldname, newname, EEXIST)
	}

	if err := vfs.checkParentAccess(ctx, abs, WantWrite, cache); err != nil {
		return err
	}

	bf, err := rm.Backend.CreateFile(rm.Path, OpenFlag{Writable: true, Truncating: true, Exclusive: true}, 0o777)
	if err != nil {
		return vfs.restore(NewLinkError("symlink", oldname, newname, err), cache)
	}

	_, werr := bf.WriteAt([]byte(oldname), 0)
	if werr != nil {
		bf.Close()

		return vfs.restore(NewLinkError("symlink", oldname, newname, werr), cache)
	}

	modeErr := bf.Chmod(uint32(fs.ModeSymlink) | 0o777)
	closeErr := bf.Close()

	if modeErr != nil {
		return vfs.restore(NewLinkError("symlink", oldname, newname, modeErr), cache)
	}

	if closeErr != nil {
		return vfs.restore(NewLinkError("symlink", oldname, newname, closeErr), cache)
	}

	vfs.emit(EventRename, abs)

	return nil
}

// Readlink reads the body of the symlink at path (open with
// resolve_symlinks=false) and returns it as a string (§4.H).
func (vfs *VFS) Readlink(path string) (string, error) {
	abs, err := Normalize(path)
	if err != nil {
		return "", err
	}

	cache, clear := withCache(nil)
	defer clear()

	return vfs.readSymlinkBody(abs, cache)
}
