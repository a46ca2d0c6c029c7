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

package memfs

import (
	"io/fs"
	"time"

	zenfs "github.com/SardineFish/zenfs-core"
)

// memFile is the zenfs.BackendFile handed back by Backend.OpenFile and
// Backend.CreateFile, backed directly by the shared fileNode — reads and
// writes observe concurrent mutations the way a real open file descriptor
// on a shared inode would.
type memFile struct {
	node *fileNode
}

func (f *memFile) Stat() (zenfs.Stats, error) {
	return f.node.stat(""), nil
}

func (f *memFile) ReadAt(buf []byte, offset int64) (int, error) {
	f.node.mu.RLock()
	defer f.node.mu.RUnlock()

	if offset >= int64(len(f.node.data)) {
		return 0, nil
	}

	n := copy(buf, f.node.data[offset:])

	return n, nil
}

func (f *memFile) WriteAt(buf []byte, offset int64) (int, error) {
	f.node.mu.Lock()
	defer f.node.mu.Unlock()

	end := offset + int64(len(buf))
	if end > int64(len(f.node.data)) {
		grown := make([]byte, end)
		copy(grown, f.node.data)
		f.node.data = grown
	}

	n := copy(f.node.data[offset:end], buf)
	f.node.mtime = time.Now()

	return n, nil
}

func (f *memFile) Truncate(size int64) error {
	f.node.mu.Lock()
	defer f.node.mu.Unlock()

	switch {
	case size == int64(len(f.node.data)):
		return nil
	case size < int64(len(f.node.data)):
		f.node.data = f.node.data[:size]
	default:
		grown := make([]byte, size)
		copy(grown, f.node.data)
		f.node.data = grown
	}

	f.node.mtime = time.Now()

	return nil
}

func (f *memFile) Chmod(mode uint32) error {
	f.node.setMode(fs.FileMode(mode))

	return nil
}

func (f *memFile) Chown(uid, gid int) error {
	f.node.setOwner(uid, gid)

	return nil
}

func (f *memFile) Utimes(atime, mtime time.Time) error {
	f.node.setTimes(atime, mtime)

	return nil
}

func (f *memFile) Sync() error     { return nil }
func (f *memFile) Datasync() error { return nil }
func (f *memFile) Close() error    { return nil }
