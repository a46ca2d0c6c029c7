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

import "strings"

// Component A — path utilities. Adapted from the teacher's avfs.Utils
// (utils.go) and trimmed to the single POSIX separator this core targets;
// no volume names, no case folding.

const pathSeparator = '/'

// Normalize converts p to an absolute, canonicalized POSIX path: forward
// slashes, no "." or ".." components, a leading "/", no trailing "/"
// except for the root itself. An empty input is rejected with EINVAL.
func Normalize(p string) (string, error) {
	if p == "" {
		return "", EINVAL
	}

	if p[0] != pathSeparator {
		p = "/" + p
	}

	return Clean(p), nil
}

// Clean is the POSIX equivalent of path.Clean restricted to '/' as the
// only separator, matching the teacher's Utils.Clean semantics.
func Clean(p string) string {
	if p == "" {
		return "."
	}

	rooted := p[0] == pathSeparator

	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
				continue
			}

			if !rooted {
				out = append(out, "..")
			}
		default:
			out = append(out, part)
		}
	}

	cleaned := strings.Join(out, "/")

	switch {
	case rooted:
		return "/" + cleaned
	case cleaned == "":
		return "."
	default:
		return cleaned
	}
}

// Join joins any number of path elements into a single path, cleaning the
// result. Empty elements are ignored.
func Join(elem ...string) string {
	for i, e := range elem {
		if e != "" {
			return Clean(strings.Join(elem[i:], "/"))
		}
	}

	return ""
}

// Split splits path immediately following the final separator, separating
// it into a directory and a file name component.
func Split(p string) (dir, base string) {
	i := strings.LastIndexByte(p, pathSeparator)

	return p[:i+1], p[i+1:]
}

// Parse splits path into {dir, base} as described in §4.A, normalizing
// the directory component the way Dirname does (trailing separators
// stripped, "/" preserved for the root).
func Parse(p string) (dir, base string) {
	dir, base = Split(p)
	dir = Dirname(dir)

	return dir, base
}

// Dirname returns all but the last element of path, typically the path's
// directory, Cleaned, with trailing separators removed unless it is root.
func Dirname(p string) string {
	dir, _ := Split(p)

	return Clean(dir)
}

// Basename returns the last element of path.
func Basename(p string) string {
	if p == "" {
		return "."
	}

	for len(p) > 0 && p[len(p)-1] == pathSeparator {
		p = p[:len(p)-1]
	}

	i := strings.LastIndexByte(p, pathSeparator)
	if i >= 0 {
		p = p[i+1:]
	}

	if p == "" {
		return "/"
	}

	return p
}

// Resolve resolves rel against base, returning an absolute, cleaned path.
// If rel is already absolute it is returned Cleaned, ignoring base.
func Resolve(base, rel string) string {
	if rel == "" {
		return Clean(base)
	}

	if rel[0] == pathSeparator {
		return Clean(rel)
	}

	return Join(base, rel)
}

// IsAbs reports whether path is an absolute POSIX path.
func IsAbs(p string) bool {
	return len(p) > 0 && p[0] == pathSeparator
}

// HasPrefix reports whether path is equal to prefix or is rooted under
// it, used by the mount table's longest-prefix match (§4.E). Unlike a raw
// strings.HasPrefix, it never matches a sibling that merely shares a
// string prefix: HasPrefix("/roar", "/ro") is false.
func HasPrefix(path, prefix string) bool {
	if prefix == "/" {
		return true
	}

	if !strings.HasPrefix(path, prefix) {
		return false
	}

	rest := path[len(prefix):]

	return rest == "" || rest[0] == pathSeparator
}
