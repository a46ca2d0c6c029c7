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

// Package memfs is an in-memory, writable zenfs.Backend, adapted from the
// teacher's MemFs node design (fs/memfs/memfs_internal.go,
// fs/memfs/memfs_types.go): a tree of dirNode/fileNode values guarded by
// per-node locks, with the teacher's separate symlinkNode dropped since
// this core stores symlink targets as regular-file bodies (§3) rather
// than as a distinct node kind. Intended as the writable backend exercised
// by the core's own test suite (§4.O).
package memfs

import (
	"sort"
	"strings"
	"sync"
	"time"

	"io/fs"

	zenfs "github.com/SardineFish/zenfs-core"
)

type node interface {
	stat(name string) zenfs.Stats
	mode() fs.FileMode
	setMode(m fs.FileMode)
	setOwner(uid, gid int)
	setTimes(atime, mtime time.Time)
	touch()
}

// baseNode is the attribute set common to directories and files, mirroring
// the teacher's baseNode (memfs_types.go) minus the identity-manager hooks.
type baseNode struct {
	mu          sync.RWMutex
	modeVal     fs.FileMode
	uid, gid    int
	atime, mtime, ctime time.Time
}

func newBaseNode(mode fs.FileMode, uid, gid int) baseNode {
	now := time.Now()

	return baseNode{modeVal: mode, uid: uid, gid: gid, atime: now, mtime: now, ctime: now}
}

func (b *baseNode) mode() fs.FileMode { return b.modeVal }

// setMode replaces the permission bits with m's and unions in any type bit
// m carries (e.g. fs.ModeSymlink) rather than overwriting the type outright:
// Symlink (vfs_link.go) marks a freshly created regular file as a symlink
// by Chmod-ing in the ModeSymlink bit, and that marker must survive a later
// plain permission-only Chmod call.
func (b *baseNode) setMode(m fs.FileMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.modeVal = b.modeVal.Type() | m.Type() | m.Perm()
	b.ctime = time.Now()
}

func (b *baseNode) setOwner(uid, gid int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.uid, b.gid = uid, gid
	b.ctime = time.Now()
}

func (b *baseNode) setTimes(atime, mtime time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.atime, b.mtime = atime, mtime
}

func (b *baseNode) touch() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mtime = time.Now()
}

// dirNode is a directory, keyed by child name the way the teacher's
// dirNode.children map is (memfs_types.go).
type dirNode struct {
	baseNode
	children map[string]node
}

func newDirNode(mode fs.FileMode, uid, gid int) *dirNode {
	return &dirNode{baseNode: newBaseNode(mode|fs.ModeDir, uid, gid), children: make(map[string]node)}
}

func (d *dirNode) stat(name string) zenfs.Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return zenfs.Stats{
		NameField: name,
		SizeField: int64(len(d.children)),
		ModeField: d.modeVal,
		ATime:     d.atime,
		MTime:     d.mtime,
		CTime:     d.ctime,
		UID:       d.uid,
		GID:       d.gid,
	}
}

func (d *dirNode) sortedNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.children))
	for name := range d.children {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// fileNode is a regular file, including symlink bodies (§3): data is the
// raw byte content, nlink tracks hardlinks the way the teacher's
// fileNode.nlink does (memfs_types.go).
type fileNode struct {
	baseNode
	data  []byte
	nlink int
}

func newFileNode(mode fs.FileMode, uid, gid int) *fileNode {
	return &fileNode{baseNode: newBaseNode(mode, uid, gid), nlink: 1}
}

func (f *fileNode) stat(name string) zenfs.Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return zenfs.Stats{
		NameField: name,
		SizeField: int64(len(f.data)),
		ModeField: f.modeVal,
		ATime:     f.atime,
		MTime:     f.mtime,
		CTime:     f.ctime,
		UID:       f.uid,
		GID:       f.gid,
	}
}

// Backend is an in-memory zenfs.Backend rooted at a single dirNode.
type Backend struct {
	mu   sync.RWMutex
	root *dirNode
}

// New creates an empty in-memory backend with root mode 0o755.
func New() *Backend {
	return &Backend{root: newDirNode(0o755, 0, 0)}
}

// Features reports that this backend supports both hardlinks and
// symlinks, satisfying zenfs.Featurer.
func (b *Backend) Features() zenfs.Features {
	return zenfs.FeatHardlink | zenfs.FeatSymlink
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}

	return strings.Split(path, "/")
}

// lookup walks path from the root, returning the final node and its
// immediate parent directory (nil for the root itself).
func (b *Backend) lookup(path string) (parent *dirNode, name string, n node, err error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, "/", b.root, nil
	}

	cur := b.root

	for i, part := range parts {
		cur.mu.RLock()
		child, ok := cur.children[part]
		cur.mu.RUnlock()

		if !ok {
			return nil, "", nil, zenfs.ENOENT
		}

		if i == len(parts)-1 {
			return cur, part, child, nil
		}

		dn, ok := child.(*dirNode)
		if !ok {
			return nil, "", nil, zenfs.ENOTDIR
		}

		cur = dn
	}

	return nil, "", nil, zenfs.ENOENT
}

func (b *Backend) Name() string { return "memfs" }

func (b *Backend) Stat(path string) (zenfs.Stats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, name, n, err := b.lookup(path)
	if err != nil {
		return zenfs.Stats{}, err
	}

	return n.stat(name), nil
}

func (b *Backend) Exists(path string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, _, _, err := b.lookup(path)

	return err == nil
}

func (b *Backend) OpenFile(path string, flag zenfs.OpenFlag) (zenfs.BackendFile, error) {
	b.mu.RLock()
	_, _, n, err := b.lookup(path)
	b.mu.RUnlock()

	if err != nil {
		return nil, err
	}

	fn, ok := n.(*fileNode)
	if !ok {
		return nil, zenfs.EISDIR
	}

	return &memFile{node: fn}, nil
}

func (b *Backend) CreateFile(path string, flag zenfs.OpenFlag, mode uint32) (zenfs.BackendFile, error) {
	dir, name := splitParent(path)

	b.mu.Lock()
	defer b.mu.Unlock()

	parentDir, err := b.mkdirLookup(dir)
	if err != nil {
		return nil, err
	}

	parentDir.mu.Lock()
	defer parentDir.mu.Unlock()

	if existing, ok := parentDir.children[name]; ok {
		if flag.Exclusive {
			return nil, zenfs.EEXIST
		}

		fn, ok := existing.(*fileNode)
		if !ok {
			return nil, zenfs.EISDIR
		}

		return &memFile{node: fn}, nil
	}

	fn := newFileNode(fs.FileMode(mode).Perm(), 0, 0)
	parentDir.children[name] = fn
	parentDir.touch()

	return &memFile{node: fn}, nil
}

func (b *Backend) Mkdir(path string, mode uint32) error {
	dir, name := splitParent(path)

	b.mu.Lock()
	defer b.mu.Unlock()

	parentDir, err := b.mkdirLookup(dir)
	if err != nil {
		return err
	}

	parentDir.mu.Lock()
	defer parentDir.mu.Unlock()

	if _, ok := parentDir.children[name]; ok {
		return zenfs.EEXIST
	}

	parentDir.children[name] = newDirNode(fs.FileMode(mode).Perm(), 0, 0)
	parentDir.touch()

	return nil
}

// mkdirLookup resolves dir to a *dirNode without taking b.mu itself —
// callers already hold it.
func (b *Backend) mkdirLookup(dir string) (*dirNode, error) {
	parts := splitPath(dir)
	cur := b.root

	for _, part := range parts {
		child, ok := cur.children[part]
		if !ok {
			return nil, zenfs.ENOENT
		}

		dn, ok := child.(*dirNode)
		if !ok {
			return nil, zenfs.ENOTDIR
		}

		cur = dn
	}

	return cur, nil
}

func (b *Backend) Rmdir(path string) error {
	dir, name := splitParent(path)

	b.mu.Lock()
	defer b.mu.Unlock()

	parentDir, err := b.mkdirLookup(dir)
	if err != nil {
		return err
	}

	parentDir.mu.Lock()
	defer parentDir.mu.Unlock()

	child, ok := parentDir.children[name]
	if !ok {
		return zenfs.ENOENT
	}

	dn, ok := child.(*dirNode)
	if !ok {
		return zenfs.ENOTDIR
	}

	dn.mu.RLock()
	empty := len(dn.children) == 0
	dn.mu.RUnlock()

	if !empty {
		return zenfs.ENOTEMPTY
	}

	delete(parentDir.children, name)
	parentDir.touch()

	return nil
}

func (b *Backend) Unlink(path string) error {
	dir, name := splitParent(path)

	b.mu.Lock()
	defer b.mu.Unlock()

	parentDir, err := b.mkdirLookup(dir)
	if err != nil {
		return err
	}

	parentDir.mu.Lock()
	defer parentDir.mu.Unlock()

	child, ok := parentDir.children[name]
	if !ok {
		return zenfs.ENOENT
	}

	if _, ok := child.(*dirNode); ok {
		return zenfs.EISDIR
	}

	if fn, ok := child.(*fileNode); ok {
		fn.mu.Lock()
		fn.nlink--
		fn.mu.Unlock()
	}

	delete(parentDir.children, name)
	parentDir.touch()

	return nil
}

func (b *Backend) Rename(oldpath, newpath string) error {
	oldDir, oldName := splitParent(oldpath)
	newDir, newName := splitParent(newpath)

	b.mu.Lock()
	defer b.mu.Unlock()

	oldParent, err := b.mkdirLookup(oldDir)
	if err != nil {
		return err
	}

	newParent, err := b.mkdirLookup(newDir)
	if err != nil {
		return err
	}

	oldParent.mu.Lock()
	defer oldParent.mu.Unlock()

	if newParent != oldParent {
		newParent.mu.Lock()
		defer newParent.mu.Unlock()
	}

	child, ok := oldParent.children[oldName]
	if !ok {
		return zenfs.ENOENT
	}

	if existing, ok := newParent.children[newName]; ok {
		if dn, ok := existing.(*dirNode); ok {
			dn.mu.RLock()
			empty := len(dn.children) == 0
			dn.mu.RUnlock()

			if !empty {
				return zenfs.ENOTEMPTY
			}
		}
	}

	delete(oldParent.children, oldName)
	oldParent.touch()

	newParent.children[newName] = child
	newParent.touch()

	return nil
}

func (b *Backend) Link(oldpath, newpath string) error {
	oldDir, oldName := splitParent(oldpath)
	newDir, newName := splitParent(newpath)

	b.mu.Lock()
	defer b.mu.Unlock()

	oldParent, err := b.mkdirLookup(oldDir)
	if err != nil {
		return err
	}

	newParent, err := b.mkdirLookup(newDir)
	if err != nil {
		return err
	}

	oldParent.mu.RLock()
	child, ok := oldParent.children[oldName]
	oldParent.mu.RUnlock()

	if !ok {
		return zenfs.ENOENT
	}

	fn, ok := child.(*fileNode)
	if !ok {
		return zenfs.EPERM
	}

	newParent.mu.Lock()
	defer newParent.mu.Unlock()

	if _, ok := newParent.children[newName]; ok {
		return zenfs.EEXIST
	}

	fn.mu.Lock()
	fn.nlink++
	fn.mu.Unlock()

	newParent.children[newName] = fn
	newParent.touch()

	return nil
}

func (b *Backend) ReadDir(path string) ([]string, error) {
	b.mu.RLock()
	_, _, n, err := b.lookup(path)
	b.mu.RUnlock()

	if err != nil {
		return nil, err
	}

	dn, ok := n.(*dirNode)
	if !ok {
		return nil, zenfs.ENOTDIR
	}

	return dn.sortedNames(), nil
}

// splitParent is strings.Split's last-component variant used throughout
// this file instead of zenfs.Parse, since backend paths are already
// normalized by the dispatch layer before reaching a Backend (§3).
func splitParent(path string) (dir, name string) {
	path = strings.TrimRight(path, "/")

	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", path
	}

	return path[:i], path[i+1:]
}
