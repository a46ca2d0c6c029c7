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
	"errors"
	"io/fs"
	"os"
	"strconv"
)

// Errno is the structured error type returned by every dispatch operation.
// It mirrors syscall.Errno without depending on a particular OS package,
// so the same codes are returned on every build target.
type Errno uint32

const (
	EPERM   Errno = 1  // operation not permitted.
	ENOENT  Errno = 2  // no such file or directory.
	EIO     Errno = 5  // I/O error.
	EBADF   Errno = 9  // bad file descriptor.
	EACCES  Errno = 13 // permission denied.
	EEXIST  Errno = 17 // file exists.
	ENOTDIR Errno = 20 // not a directory.
	EISDIR  Errno = 21 // is a directory.
	EINVAL  Errno = 22 // invalid argument.
	EXDEV   Errno = 18 // cross-device link.
	ENOTEMPTY Errno = 39 // directory not empty.
	ELOOP   Errno = 40 // too many levels of symbolic links.
)

var errText = map[Errno]string{
	EPERM:   "operation not permitted",
	ENOENT:  "no such file or directory",
	EIO:     "input/output error",
	EBADF:   "bad file descriptor",
	EACCES:  "permission denied",
	EEXIST:  "file exists",
	ENOTDIR: "not a directory",
	EISDIR:  "is a directory",
	EINVAL:  "invalid argument",
	EXDEV:   "cross-device link",
	ENOTEMPTY: "directory not empty",
	ELOOP:   "too many levels of symbolic links",
}

func (e Errno) Error() string {
	s, ok := errText[e]
	if ok {
		return s
	}

	return "errno " + strconv.Itoa(int(e))
}

// Is allows errors.Is(err, ENOENT) style comparisons against a wrapping
// *fs.PathError or *os.LinkError.
func (e Errno) Is(target error) bool {
	switch target { //nolint:errorlint // comparing sentinel stdlib errnos directly is intentional here.
	case fs.ErrNotExist:
		return e == ENOENT
	case fs.ErrExist:
		return e == EEXIST
	case fs.ErrPermission:
		return e == EACCES || e == EPERM
	case fs.ErrInvalid:
		return e == EINVAL
	}

	return false
}

// NewPathError wraps an Errno in a *fs.PathError carrying the caller-visible
// path and the syscall name, the way the teacher wraps avfs.Errno.
func NewPathError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	return &fs.PathError{Op: op, Path: path, Err: err}
}

// NewLinkError wraps an Errno in an *os.LinkError, used by link-like
// operations that carry two paths (rename, link, symlink).
func NewLinkError(op, oldpath, newpath string, err error) error {
	if err == nil {
		return nil
	}

	return &os.LinkError{Op: op, Old: oldpath, New: newpath, Err: err}
}

// RestoreError rewrites the backend-relative path(s) embedded in err back
// to the caller-visible path(s), using the lookup table built at the VFS
// dispatch entry point (VFS.resolve in vfs.go records each mapping in the
// per-operation cache's rewrite map, opcache.go). This is §4.J of the
// specification: callers must never observe mount-stripped paths.
func RestoreError(err error, rewrite map[string]string) error {
	if err == nil || len(rewrite) == 0 {
		return err
	}

	var pe *fs.PathError
	if errors.As(err, &pe) {
		if caller, ok := rewrite[pe.Path]; ok {
			pe.Path = caller
		}

		return pe
	}

	var le *os.LinkError
	if errors.As(err, &le) {
		if caller, ok := rewrite[le.Old]; ok {
			le.Old = caller
		}

		if caller, ok := rewrite[le.New]; ok {
			le.New = caller
		}

		return le
	}

	return err
}

// IsNotExist reports whether err is an ENOENT, possibly wrapped.
func IsNotExist(err error) bool {
	return errors.Is(err, ENOENT)
}

// IsExist reports whether err is an EEXIST, possibly wrapped.
func IsExist(err error) bool {
	return errors.Is(err, EEXIST)
}
