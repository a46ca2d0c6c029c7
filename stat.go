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
	"io/fs"
	"time"
)

// Component B — stats & mode bits. Mode type discriminants mirror the
// constants the teacher imports from syscall (see fsutil.AsStatT and
// fs/memfs's use of os.ModeDir/os.ModeSymlink), expressed directly as
// fs.FileMode bits since io/fs already defines the type discriminant
// portion of S_IFMT.
const (
	// AccessMode bits, matching POSIX access(2).
	F_OK AccessMode = 0
	X_OK AccessMode = 1 << 0
	W_OK AccessMode = 1 << 1
	R_OK AccessMode = 1 << 2
)

// AccessMode is the bitmask passed to HasAccess.
type AccessMode uint8

// WantMode is the permission bitmask (owner/group/other rwx), adapted
// from the teacher's avfs.WantMode — collapsed to a single octal field
// since this core does not model a separate identity manager.
type WantMode uint32

const (
	WantRead   WantMode = 0o4
	WantWrite  WantMode = 0o2
	WantLookup WantMode = 0o1
	WantRWX    WantMode = 0o7
)

// Stats is the file metadata record described in §3: mode, size, three
// timestamps, owner uid/gid. It implements fs.FileInfo so it composes
// with the standard library the way the teacher's fStat does.
type Stats struct {
	NameField  string
	SizeField  int64
	ModeField  fs.FileMode
	ATime      time.Time
	MTime      time.Time
	CTime      time.Time
	UID        int
	GID        int
}

func (s Stats) Name() string       { return s.NameField }
func (s Stats) Size() int64        { return s.SizeField }
func (s Stats) Mode() fs.FileMode  { return s.ModeField }
func (s Stats) ModTime() time.Time { return s.MTime }
func (s Stats) IsDir() bool        { return s.ModeField.IsDir() }
func (s Stats) Sys() any           { return &StatT{UIDField: s.UID, GIDField: s.GID} }

// IsFile reports whether the entry is a regular file.
func (s Stats) IsFile() bool { return s.ModeField&fs.ModeType == 0 }

// IsSymlink reports whether the entry is a symbolic link — the S_IFLNK
// discriminant of §3. Symlinks are stored as regular files whose body is
// the link target, so this is orthogonal to IsFile for the purpose of
// content access but distinct for the purpose of realpath resolution.
func (s Stats) IsSymlink() bool { return s.ModeField&fs.ModeSymlink != 0 }

// StatT is returned by Stats.Sys(), mirroring the teacher's avfs.StatT
// returned by fStat.Sys() (fs/memfs/memfs_internal.go).
type StatT struct {
	UIDField  int
	GIDField  int
	NlinkVal  uint64
}

func (s *StatT) Uid() int        { return s.UIDField } //nolint:revive,stylecheck // matches POSIX field naming.
func (s *StatT) Gid() int        { return s.GIDField } //nolint:revive,stylecheck
func (s *StatT) Nlink() uint64   { return s.NlinkVal }

// HasAccess reports whether ctx's uid/gid satisfies want against mode,
// owner uid and gid, the way fsutil.CheckPermission does. Access checking
// is globally gated by Config.CheckAccess (§4.B): when disabled, every
// access check trivially succeeds, matching the teacher's root-bypass for
// the admin user but applied unconditionally.
func HasAccess(mode fs.FileMode, uid, gid int, ctx Context, want WantMode) bool {
	if !GlobalConfig.CheckAccess {
		return true
	}

	if ctx.UID == 0 {
		return true
	}

	perm := WantMode(mode.Perm())

	switch {
	case uid == ctx.UID:
		perm >>= 6
	case gid == ctx.GID:
		perm >>= 3
	}

	want &= WantRWX

	return perm&want == want
}
