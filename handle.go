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
	"sync"
	"time"
)

// Handle is the file handle record of §3: {path, flags, position,
// backend_ref}, exclusively owning its position. It wraps a BackendFile
// the way the teacher's MemFile wraps a *node (fs/memfs/memfs_types.go),
// adding the position bookkeeping the backend itself does not do.
type Handle struct {
	mu       sync.Mutex
	path     string // caller-visible path, for error rewriting.
	flag     OpenFlag
	position int64
	backend  BackendFile
	mount    *mount
}

func newHandle(path string, flag OpenFlag, bf BackendFile, m *mount) *Handle {
	h := &Handle{path: path, flag: flag, backend: bf, mount: m}

	if flag.Appendable {
		if st, err := bf.Stat(); err == nil {
			h.position = st.Size()
		}
	}

	return h
}

// Read reads up to len(buf) bytes starting at the handle's current
// position, advancing it by the number of bytes read.
func (h *Handle) Read(buf []byte) (int, error) {
	if !h.flag.Readable {
		return 0, NewPathError("read", h.path, EACCES)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	n, err := h.backend.ReadAt(buf, h.position)
	h.position += int64(n)

	return n, err
}

// Write writes buf starting at the handle's current position, advancing
// it by the number of bytes written.
func (h *Handle) Write(buf []byte) (int, error) {
	if !h.flag.Writable && !h.flag.Appendable {
		return 0, NewPathError("write", h.path, EACCES)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	n, err := h.backend.WriteAt(buf, h.position)
	h.position += int64(n)

	return n, err
}

// ReadAt reads len(buf) bytes at offset without touching the handle's
// position, used by readv (§4.H).
func (h *Handle) ReadAt(buf []byte, offset int64) (int, error) {
	if !h.flag.Readable {
		return 0, NewPathError("read", h.path, EACCES)
	}

	return h.backend.ReadAt(buf, offset)
}

// WriteAt writes buf at offset without touching the handle's position,
// used by writev (§4.H).
func (h *Handle) WriteAt(buf []byte, offset int64) (int, error) {
	if !h.flag.Writable && !h.flag.Appendable {
		return 0, NewPathError("write", h.path, EACCES)
	}

	return h.backend.WriteAt(buf, offset)
}

// Seek repositions the handle the way io.Seeker does, for callers wanting
// raw positioning. The dispatch layer itself does not call it: WriteFile
// writes at offset 0 through WriteAt.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch whence {
	case 0:
		h.position = offset
	case 1:
		h.position += offset
	case 2:
		st, err := h.backend.Stat()
		if err != nil {
			return 0, err
		}

		h.position = st.Size() + offset
	}

	if h.position < 0 {
		return 0, EINVAL
	}

	return h.position, nil
}

func (h *Handle) Stat() (Stats, error)              { return h.backend.Stat() }
func (h *Handle) Truncate(size int64) error         { return h.backend.Truncate(size) }
func (h *Handle) Chmod(mode uint32) error           { return h.backend.Chmod(mode) }
func (h *Handle) Chown(uid, gid int) error          { return h.backend.Chown(uid, gid) }
func (h *Handle) Utimes(atime, mtime time.Time) error { return h.backend.Utimes(atime, mtime) }
func (h *Handle) Sync() error                       { return h.backend.Sync() }
func (h *Handle) Datasync() error                    { return h.backend.Datasync() }
func (h *Handle) Close() error                      { return h.backend.Close() }
