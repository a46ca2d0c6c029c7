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

import "unicode/utf8"

// Component G — the symlink-aware path resolver. Grounded on the
// teacher's MemFs.searchNode (fs/memfs/memfs_internal.go), which walks a
// path component by component and restarts the walk at the root whenever
// it crosses a symlink; here the walk is expressed as the recursive
// realpath §4.G specifies, because resolution must be able to cross mount
// boundaries (searchNode never leaves a single backend).

// RealPath returns the fully dereferenced absolute path for path, or the
// original path unchanged if any intermediate component does not exist
// (POSIX realpath(3) compatibility for unresolvable tails, §4.G step 7).
func (vfs *VFS) RealPath(path string) (string, error) {
	cache, clear := withCache(nil)
	defer clear()

	return vfs.realPath(path, cache, make(map[string]bool))
}

func (vfs *VFS) realPath(path string, cache *opCache, visiting map[string]bool) (string, error) {
	abs, err := Normalize(path)
	if err != nil {
		return "", err
	}

	if rp, ok := cache.cachedRealpath(abs); ok {
		return rp, nil
	}

	if abs == "/" {
		cache.storeRealpath(abs, "/")

		return "/", nil
	}

	if visiting[abs] {
		return "", NewPathError("realpath", abs, ELOOP)
	}

	visiting[abs] = true
	defer delete(visiting, abs)

	dir, base := Parse(abs)

	realDir, err := vfs.realPath(dir, cache, visiting)
	if err != nil {
		if IsNotExist(err) {
			return path, nil
		}

		return "", err
	}

	lpath := Join(realDir, base)

	st, ok := cache.cachedStat(lpath)
	if !ok {
		rm := vfs.mounts.Resolve(lpath)
		cache.rememberRewrite(rm.Path, lpath)

		st, err = rm.Backend.Stat(rm.Path)
		if err != nil {
			if IsNotExist(err) {
				return path, nil
			}

			return "", vfs.restore(err, cache)
		}

		cache.storeStat(lpath, st)
	}

	if !st.IsSymlink() {
		cache.storeRealpath(abs, lpath)

		return lpath, nil
	}

	link, err := vfs.readSymlinkBody(lpath, cache)
	if err != nil {
		return "", err
	}

	target := Resolve(realDir, link)

	real, err := vfs.realPath(target, cache, visiting)
	if err != nil {
		return "", err
	}

	cache.storeRealpath(abs, real)

	return real, nil
}

// readSymlinkBody reads the regular-file body stored at a symlink's
// backend-relative location and decodes it as UTF-8, per §3's invariant
// that a symlink target is a regular file whose body is the target path.
func (vfs *VFS) readSymlinkBody(path string, cache *opCache) (string, error) {
	rm := vfs.mounts.Resolve(path)
	cache.rememberRewrite(rm.Path, path)

	st, err := rm.Backend.Stat(rm.Path)
	if err != nil {
		return "", vfs.restore(err, cache)
	}

	bf, err := rm.Backend.OpenFile(rm.Path, OpenFlag{Readable: true, MustExist: true})
	if err != nil {
		return "", vfs.restore(err, cache)
	}

	defer bf.Close()

	buf := make([]byte, st.Size())

	n, err := bf.ReadAt(buf, 0)
	if err != nil && n == 0 {
		return "", vfs.restore(err, cache)
	}

	buf = buf[:n]
	if !utf8.Valid(buf) {
		return "", NewPathError("readlink", path, EINVAL)
	}

	return string(buf), nil
}
