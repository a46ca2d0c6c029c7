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
	"fmt"
	"io"
	"time"

	"github.com/valyala/fastrand"
)

// copyBufPool copies src to dst using a buffer from the global pool, the
// way the teacher's copyBufPool does (copy.go), generalized from *os.File
// to the Handle abstraction this core dispatches through.
func copyBufPool(dst *Handle, src *Handle) (int64, error) {
	bufPtr := GlobalConfig.getBuf()
	defer GlobalConfig.putBuf(bufPtr)

	buf := *bufPtr

	var written int64

	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			wn, werr := dst.Write(buf[:n])
			written += int64(wn)

			if werr != nil {
				return written, werr
			}
		}

		if rerr != nil {
			if rerr == io.EOF { //nolint:errorlint // a backend that reports io.EOF returns it verbatim, not wrapped.
				return written, nil
			}

			return written, rerr
		}

		// The bundled backends report end of file as a zero-byte read with
		// a nil error rather than io.EOF.
		if n == 0 {
			return written, nil
		}
	}
}

// CopyFileOptions collapses copy_file's overloaded shapes (§9).
type CopyFileOptions struct {
	Exclusive          bool // COPYFILE_EXCL: fail with EEXIST if dst exists.
	PreserveTimestamps bool
}

// CopyFile implements §4.H's copy_file: open src for read, create dst
// (respecting Exclusive), copy the contents through the shared buffer
// pool, optionally carry over src's mtime/atime, and emit 'rename' for
// the new destination entry.
func (vfs *VFS) CopyFile(ctx Context, srcPath, dstPath string, opts CopyFileOptions) error {
	cache, clear := withCache(nil)
	defer clear()

	srcH, err := vfs.open(ctx, srcPath, DefaultOpenOptions(OpenFlag{Readable: true, MustExist: true}, 0), cache)
	if err != nil {
		return vfs.restore(err, cache)
	}

	defer srcH.Close()

	dstFlag := OpenFlag{Writable: true, Truncating: true}
	if opts.Exclusive {
		dstFlag = OpenFlag{Writable: true, Exclusive: true}
	}

	dstH, err := vfs.open(ctx, dstPath, DefaultOpenOptions(dstFlag, DefaultFilePerm), cache)
	if err != nil {
		return vfs.restore(err, cache)
	}

	defer dstH.Close()

	if _, err := copyBufPool(dstH, srcH); err != nil {
		return vfs.restore(NewLinkError("copyfile", srcPath, dstPath, err), cache)
	}

	if err := dstH.Sync(); err != nil {
		return vfs.restore(err, cache)
	}

	if opts.PreserveTimestamps {
		st, err := srcH.Stat()
		if err != nil {
			return vfs.restore(err, cache)
		}

		if err := dstH.Utimes(st.ATime, st.MTime); err != nil {
			return vfs.restore(err, cache)
		}
	}

	abs, _ := Normalize(dstPath)
	vfs.emit(EventRename, abs)

	return nil
}

// CopyFilter decides whether path (with its lstat'd Stats) should be
// copied by Cp. A nil filter copies everything.
type CopyFilter func(path string, st Stats) bool

// CopyOptions collapses cp's overloaded shapes (§9).
type CopyOptions struct {
	Filter             CopyFilter
	PreserveTimestamps bool
}

// Cp implements §4.H's cp: recursively copies srcPath to dstPath. Regular
// files go through CopyFile; directories are created (see Mkdir) and
// descended into; entries rejected by Filter are skipped entirely,
// including their subtree.
func (vfs *VFS) Cp(ctx Context, srcPath, dstPath string, opts CopyOptions) error {
	st, err := vfs.Lstat(srcPath)
	if err != nil {
		return err
	}

	if opts.Filter != nil && !opts.Filter(srcPath, st) {
		return nil
	}

	if st.IsDir() {
		if _, err := vfs.Mkdir(ctx, dstPath, DefaultMkdirOptions()); err != nil && !IsExist(err) {
			return err
		}

		entries, err := vfs.ReadDir(ctx, srcPath, ReadDirOptions{})
		if err != nil {
			return err
		}

		for _, e := range entries {
			if err := vfs.Cp(ctx, Join(srcPath, e.Name), Join(dstPath, e.Name), opts); err != nil {
				return err
			}
		}

		if opts.PreserveTimestamps {
			return vfs.Utimes(ctx, dstPath, st.ATime, st.MTime)
		}

		return nil
	}

	return vfs.CopyFile(ctx, srcPath, dstPath, CopyFileOptions{PreserveTimestamps: opts.PreserveTimestamps})
}

// Readv reads into each buffer in bufs in turn, each one advancing the
// cursor by its own byte length, starting from position when non-nil
// (positioned I/O via the backend's ReadAt, leaving the fd's own position
// untouched) or from the fd's current position otherwise (§4.H's readv:
// "starting from the optional position").
func (vfs *VFS) Readv(fd FD, bufs [][]byte, position *int64) (int64, error) {
	h, err := vfs.fds.Get(fd)
	if err != nil {
		return 0, err
	}

	var total int64

	if position != nil {
		pos := *position

		for _, buf := range bufs {
			n, err := h.ReadAt(buf, pos)
			total += int64(n)
			pos += int64(n)

			if err != nil {
				return total, err
			}
		}

		return total, nil
	}

	for _, buf := range bufs {
		n, err := h.Read(buf)
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// Writev writes each buffer in bufs in turn, each one advancing the
// cursor by its own byte length, starting from position when non-nil
// (positioned I/O via the backend's WriteAt, leaving the fd's own
// position untouched) or from the fd's current position otherwise
// (§4.H's writev).
func (vfs *VFS) Writev(fd FD, bufs [][]byte, position *int64) (int64, error) {
	h, err := vfs.fds.Get(fd)
	if err != nil {
		return 0, err
	}

	var total int64

	if position != nil {
		pos := *position

		for _, buf := range bufs {
			n, err := h.WriteAt(buf, pos)
			total += int64(n)
			pos += int64(n)

			if err != nil {
				return total, err
			}
		}

		return total, nil
	}

	for _, buf := range bufs {
		n, err := h.Write(buf)
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// Mkdtemp implements §4.H's mkdtemp: creates a new directory under "/tmp"
// named prefix + a timestamp + a random suffix, and returns its full
// path. The random suffix is drawn from fastrand, the generator
// randtree.go already uses for randomized test trees.
func (vfs *VFS) Mkdtemp(ctx Context, prefix string) (string, error) {
	name := fmt.Sprintf("%s%d-%08x", prefix, time.Now().UnixNano(), fastrand.Uint32())
	path := Join("/tmp", name)

	if _, err := vfs.Mkdir(ctx, path, DefaultMkdirOptions()); err != nil {
		return "", err
	}

	return path, nil
}

// FSStat is the aggregate filesystem usage record returned by Statfs.
// Fields are -1 when a backend does not track them.
type FSStat struct {
	TotalBytes int64
	FreeBytes  int64
	Files      int64
}

// statfsBackend is an optional Backend capability; backends that do not
// implement it report an unknown FSStat (all fields -1).
type statfsBackend interface {
	Statfs() (FSStat, error)
}

// Statfs implements §4.H's statfs for the mount covering path.
func (vfs *VFS) Statfs(path string) (FSStat, error) {
	cache, clear := withCache(nil)
	defer clear()

	rm, _, err := vfs.resolve(path, cache)
	if err != nil {
		return FSStat{}, err
	}

	if sb, ok := rm.Backend.(statfsBackend); ok {
		return sb.Statfs()
	}

	return FSStat{TotalBytes: -1, FreeBytes: -1, Files: -1}, nil
}
