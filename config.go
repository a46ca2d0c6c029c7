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
	"sync"
)

// Config is the process-wide configuration described in SPEC_FULL.md §4.L,
// adapted from the teacher's global avfs.Config/avfs.Cfg singleton.
type Config struct {
	// CheckAccess globally gates HasAccess (§4.B's config.check_access).
	CheckAccess bool

	// UMask is the file mode creation mask cleared from the requested
	// mode bits by CreateFile and Mkdir.
	UMask fs.FileMode

	bufPool *sync.Pool
	bufSize int
}

// GlobalConfig is the package-level configuration, mirroring the
// teacher's Cfg global. Tests may mutate it directly; it is not
// goroutine-safe to change concurrently with dispatch calls, matching the
// teacher's own assumption that Cfg is set up once at startup.
var GlobalConfig = NewConfig() //nolint:gochecknoglobals

// NewConfig returns a Config with access checking enabled and the default
// 666/777 umask-free permissions, buffer-pooled for Copy/CopyFile the same
// way the teacher sizes its pool (32KiB, see copy.go).
func NewConfig() *Config {
	const bufSize = 32 * 1024

	cfg := &Config{
		CheckAccess: true,
		bufSize:     bufSize,
	}

	cfg.bufPool = &sync.Pool{New: func() any {
		buf := make([]byte, cfg.bufSize)

		return &buf
	}}

	return cfg
}

func (cfg *Config) getBuf() *[]byte {
	return cfg.bufPool.Get().(*[]byte) //nolint:forcetypeassert // pool only ever stores *[]byte.
}

func (cfg *Config) putBuf(buf *[]byte) {
	cfg.bufPool.Put(buf)
}

// applyUMask clears the bits set in UMask from mode, the way the teacher's
// BaseFS documents umask application at create time (basefs.go: "perm
// (before umask)") even though MemFs itself never wired it through.
func (cfg *Config) applyUMask(mode uint32) uint32 {
	return mode &^ uint32(cfg.UMask)
}
