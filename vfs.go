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

// Package zenfs implements the core of a portable virtual file system: a
// dispatch layer that normalizes paths, routes them through a mount table
// to pluggable backends, and exposes a POSIX-style file API, together
// with a symlink-aware path resolver. See SPEC_FULL.md for the full
// component breakdown.
package zenfs

// VFS is the dispatch surface of component H. It owns the mount table,
// the process-wide FD table, and the notifier used for change events —
// the same three pieces of shared state the teacher's MountFS
// (vfs/mountfs/mountfs_types.go) and MemFs (fs/memfs/memfs_types.go)
// each own a version of, unified here behind one dispatch type instead
// of one type per backend.
type VFS struct {
	mounts   *MountTable
	fds      *FDTable
	notifier Notifier
	cfg      *Config
}

// New creates a VFS with root backed by root and a NopNotifier. Use
// Mount to add further backends and SetNotifier to observe change
// events.
func New(root Backend) *VFS {
	return &VFS{
		mounts:   NewMountTable(root),
		fds:      NewFDTable(),
		notifier: NopNotifier{},
		cfg:      GlobalConfig,
	}
}

// Mount binds an additional backend at point.
func (vfs *VFS) Mount(point string, backend Backend) error {
	return vfs.mounts.Mount(point, backend)
}

// Unmount removes the backend bound at point.
func (vfs *VFS) Unmount(point string) error {
	return vfs.mounts.Unmount(point)
}

// SetNotifier replaces the change-event sink.
func (vfs *VFS) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier{}
	}

	vfs.notifier = n
}

func (vfs *VFS) emit(event Event, path string) {
	vfs.notifier.Emit(event, path)
}

// resolve normalizes path and routes it through the mount table,
// recording the backend-relative→caller-visible mapping in cache for
// later error rewriting (§4.E, §4.J).
func (vfs *VFS) resolve(path string, cache *opCache) (ResolvedMount, string, error) {
	abs, err := Normalize(path)
	if err != nil {
		return ResolvedMount{}, "", err
	}

	rm := vfs.mounts.Resolve(abs)
	cache.rememberRewrite(rm.Path, abs)

	return rm, abs, nil
}

// restore rewrites backend-relative paths embedded in err back to the
// caller-visible paths recorded in cache, per §4.J.
func (vfs *VFS) restore(err error, cache *opCache) error {
	return RestoreError(err, cache.rewrite)
}
