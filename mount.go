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
	"sort"
	"sync"
)

// Component E — the mount table. Grounded on the teacher's MountFS
// (vfs/mountfs/mountfs_types.go, mountfs_internal.go, mountfs_cfg.go):
// the same (mount point, backend) pairing and the same idea of a
// restoreError that rewrites backend-relative paths, adapted to the
// longest-prefix-match semantics §4.E asks for explicitly rather than
// the teacher's single-char PathIterator walk.
type mount struct {
	point   string
	backend Backend
}

// MountTable routes absolute paths to a backend and a backend-relative
// path. Exactly one root mount ("/") exists at all times (§3); mount
// points are unique. Mutations are the host's responsibility to
// externally serialize with outstanding operations (§5) — the mutex here
// only protects the map itself from concurrent Mount/Unmount/resolve.
type MountTable struct {
	mu     sync.RWMutex
	mounts map[string]Backend
}

// NewMountTable creates a mount table with root backed by root.
func NewMountTable(root Backend) *MountTable {
	return &MountTable{mounts: map[string]Backend{"/": root}}
}

// Mount binds point to backend. point must not already be mounted.
func (t *MountTable) Mount(point string, backend Backend) error {
	point, err := Normalize(point)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.mounts[point]; ok {
		return NewPathError("mount", point, EEXIST)
	}

	t.mounts[point] = backend

	return nil
}

// Unmount removes the mount at point. The root mount ("/") can never be
// unmounted, preserving the "exactly one root mount always exists"
// invariant of §3.
func (t *MountTable) Unmount(point string) error {
	point, err := Normalize(point)
	if err != nil {
		return err
	}

	if point == "/" {
		return NewPathError("umount", point, EPERM)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.mounts[point]; !ok {
		return NewPathError("umount", point, ENOENT)
	}

	delete(t.mounts, point)

	return nil
}

// ResolvedMount is the {fs, path, root} triple §4.E's resolve_mount
// returns.
type ResolvedMount struct {
	Backend Backend
	Path    string // backend-relative path, leading "/" preserved.
	Root    string // the mount point that matched.
}

// Resolve picks the longest mount point that is a prefix of path,
// iterating mount points sorted by descending length so the first match
// wins (§4.E). The backend-relative path is the remainder, or "/" when
// the mount point equals path exactly.
func (t *MountTable) Resolve(path string) ResolvedMount {
	t.mu.RLock()
	defer t.mu.RUnlock()

	points := make([]string, 0, len(t.mounts))
	for p := range t.mounts {
		points = append(points, p)
	}

	sort.Slice(points, func(i, j int) bool { return len(points[i]) > len(points[j]) })

	for _, p := range points {
		if HasPrefix(path, p) {
			rel := path[len(p):]
			if rel == "" {
				rel = "/"
			}

			return ResolvedMount{Backend: t.mounts[p], Path: rel, Root: p}
		}
	}

	// Unreachable: "/" is always mounted and is a prefix of every
	// normalized absolute path.
	return ResolvedMount{Backend: t.mounts["/"], Path: path, Root: "/"}
}

// ToCallerPath rewrites a backend-relative path back into the
// caller-visible absolute path under root, the way mount.toAbsPath does
// in the teacher (vfs/mountfs/mountfs_internal.go).
func ToCallerPath(root, backendPath string) string {
	return Join(root, backendPath)
}
