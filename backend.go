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

import "time"

// Backend is the capability interface every concrete file store must
// implement (§3). Dynamic dispatch over backends (§9) becomes this Go
// interface instead of inheritance, the way the teacher's mountfs treats
// every mounted file system as an avfs.VFS value (vfs/mountfs/mountfs.go).
//
// All paths passed to a Backend are already backend-relative (the mount
// point has been stripped) and normalized.
type Backend interface {
	Name() string

	Stat(path string) (Stats, error)
	OpenFile(path string, flag OpenFlag) (BackendFile, error)
	CreateFile(path string, flag OpenFlag, mode uint32) (BackendFile, error)
	Mkdir(path string, mode uint32) error
	Rmdir(path string) error
	Unlink(path string) error
	Rename(oldpath, newpath string) error
	Link(oldpath, newpath string) error
	ReadDir(path string) ([]string, error)
	Exists(path string) bool
}

// BackendFile is the open-file capability a Backend hands back from
// OpenFile/CreateFile. It is wrapped by Handle, which adds the
// POSIX-style position tracking and the flag checks §4.H performs before
// delegating.
type BackendFile interface {
	Stat() (Stats, error)
	ReadAt(buf []byte, offset int64) (int, error)
	WriteAt(buf []byte, offset int64) (int, error)
	Truncate(size int64) error
	Chmod(mode uint32) error
	Chown(uid, gid int) error
	Utimes(atime, mtime time.Time) error
	Sync() error
	Datasync() error
	Close() error
}

// ReadOnlyFile is a BackendFile embeddable by backends that never accept
// writes (e.g. the reference HTTP-indexed backend); it turns every
// mutating method into EPERM, the way the teacher's RoFs wraps a
// read-only file system around any backing VFS (vfs/rofs's stated
// purpose, adapted here at the single-file granularity).
type ReadOnlyFile struct{}

func (ReadOnlyFile) WriteAt([]byte, int64) (int, error)     { return 0, EPERM }
func (ReadOnlyFile) Truncate(int64) error                   { return EPERM }
func (ReadOnlyFile) Chmod(uint32) error                     { return EPERM }
func (ReadOnlyFile) Chown(int, int) error                   { return EPERM }
func (ReadOnlyFile) Utimes(time.Time, time.Time) error      { return EPERM }
func (ReadOnlyFile) Sync() error                            { return nil }
func (ReadOnlyFile) Datasync() error                        { return nil }
func (ReadOnlyFile) Close() error                           { return nil }
