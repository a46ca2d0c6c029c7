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

// DefaultFilePerm is the mode applied when a caller writes a file without
// specifying one (e.g. Rename's cross-backend copy fallback).
const DefaultFilePerm = 0o644

// Component C — flag parsing. OpenFlag is the capability record §4.C asks
// for, named after the teacher's avfs.OpenMode bits (avfs.go) but carrying
// the derived booleans directly instead of forcing every call site to
// re-mask a bitfield.
type OpenFlag struct {
	Readable   bool
	Writable   bool
	Appendable bool
	Truncating bool
	Exclusive  bool
	MustExist  bool
}

// ParseFlag translates a node-style open-mode string ("r", "r+", "w",
// "w+", "a", "a+", "wx", "ax", "rs+", ...) into an OpenFlag. Unknown
// strings return EINVAL, matching §4.C.
func ParseFlag(flag string) (OpenFlag, error) {
	switch flag {
	case "r", "rs", "sr":
		return OpenFlag{Readable: true, MustExist: true}, nil
	case "r+", "rs+", "sr+":
		return OpenFlag{Readable: true, Writable: true, MustExist: true}, nil
	case "w":
		return OpenFlag{Writable: true, Truncating: true}, nil
	case "w+":
		return OpenFlag{Readable: true, Writable: true, Truncating: true}, nil
	case "wx", "xw":
		return OpenFlag{Writable: true, Truncating: true, Exclusive: true}, nil
	case "wx+", "xw+":
		return OpenFlag{Readable: true, Writable: true, Truncating: true, Exclusive: true}, nil
	case "a":
		return OpenFlag{Writable: true, Appendable: true}, nil
	case "a+":
		return OpenFlag{Readable: true, Writable: true, Appendable: true}, nil
	case "ax", "xa":
		return OpenFlag{Writable: true, Appendable: true, Exclusive: true}, nil
	case "ax+", "xa+":
		return OpenFlag{Readable: true, Writable: true, Appendable: true, Exclusive: true}, nil
	default:
		return OpenFlag{}, EINVAL
	}
}

// Numeric open-mode bits, mirroring avfs.OpenMode (avfs.go) so numeric
// flags (as used by raw OpenFile-style callers) map onto the same bits a
// POSIX open(2) caller would pass.
const (
	ORead      = 1 << 0
	OWrite     = 1 << 1
	OAppend    = 1 << 2
	OCreate    = 1 << 3
	OExclusive = 1 << 4
	OTruncate  = 1 << 5
)

// ParseNumericFlag translates numeric open flags into an OpenFlag.
func ParseNumericFlag(flag int) (OpenFlag, error) {
	if flag&(ORead|OWrite) == 0 {
		return OpenFlag{}, EINVAL
	}

	f := OpenFlag{
		Readable:   flag&ORead != 0,
		Writable:   flag&OWrite != 0,
		Appendable: flag&OAppend != 0,
		Truncating: flag&OTruncate != 0,
		Exclusive:  flag&OExclusive != 0,
	}

	f.MustExist = f.Readable && !f.Writable || (flag&OCreate == 0 && !f.Exclusive)

	return f, nil
}

// RequiredAccess returns the minimum WantMode the caller must hold on the
// target for this flag, per flag_to_mode in §4.C.
func (f OpenFlag) RequiredAccess() WantMode {
	var want WantMode

	if f.Readable {
		want |= WantRead
	}

	if f.Writable || f.Appendable || f.Truncating {
		want |= WantWrite
	}

	return want
}

// CreatesIfMissing reports whether this flag permits creating a new file
// when the target does not already exist.
func (f OpenFlag) CreatesIfMissing() bool {
	return f.Writable && !f.MustExist
}
