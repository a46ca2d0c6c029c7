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

import "sync"

// Component D — the file-descriptor table. FD is the process-wide integer
// handle spec.md §3/§4.D describes; allocation returns the smallest
// unused positive integer, matching POSIX and the teacher's own
// File.Fd()-returns-an-int convention (avfs.go's File interface).
type FD uint32

// FDTable maps integer descriptors to open file handles. It is
// process-wide mutable state (§5): a single RWMutex guards it at dispatch
// granularity, the same granularity the teacher's MemFs uses for its
// per-node locks (fs/memfs/memfs_internal.go).
type FDTable struct {
	mu      sync.RWMutex
	handles map[FD]*Handle
}

// NewFDTable returns an empty FD table. File descriptor 0 is never
// issued; allocation starts at 1, so 1 and 2 are handed out like any
// other descriptor (this core wires up no stdio descriptors).
func NewFDTable() *FDTable {
	return &FDTable{handles: make(map[FD]*Handle)}
}

// Alloc installs h and returns the smallest unused positive FD. The scan
// always starts at 1, per §3's "smallest unused positive integer"
// invariant: a released low-numbered fd must be reused before a new high
// one is issued, not skipped forever in favor of a monotonically
// increasing counter.
func (t *FDTable) Alloc(h *Handle) FD {
	t.mu.Lock()
	defer t.mu.Unlock()

	var fd FD = 1
	for {
		if _, used := t.handles[fd]; !used {
			break
		}

		fd++
	}

	t.handles[fd] = h

	GlobalMetrics.fdOpened()

	return fd
}

// Get looks up the handle bound to fd. A retired or never-issued fd fails
// with EBADF (§4.D).
func (t *FDTable) Get(fd FD) (*Handle, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	h, ok := t.handles[fd]
	if !ok {
		return nil, EBADF
	}

	return h, nil
}

// Release removes fd from the table. It fails with EBADF if fd was
// already absent, making double-close an error as §3 requires.
func (t *FDTable) Release(fd FD) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.handles[fd]; !ok {
		return EBADF
	}

	delete(t.handles, fd)

	GlobalMetrics.fdClosed()

	return nil
}
