//
//  Copyright 2023 The AVFS authors
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

// Features reports what a Backend supports, adapted from the teacher's
// avfs.Features (features.go) but trimmed to the capabilities a Backend
// can actually vary on here: there is no identity manager or OS-type
// switch in this core, so those bits are dropped.
type Features uint64

const (
	// FeatHardlink indicates the backend supports Link/Unlink.
	FeatHardlink Features = 1 << iota

	// FeatSymlink indicates the backend supports Symlink/Readlink.
	FeatSymlink

	// FeatReadOnly marks a backend that rejects every mutating call with
	// EPERM (see ReadOnlyFile and backend/httpindex).
	FeatReadOnly
)

// Featurer is implemented by backends that want to advertise a feature
// set different from the zero value (no optional capabilities). It is
// read through HasFeature; the dispatch layer (Cp, Link and the rest)
// does not consult it and leaves an unsupported operation to the
// backend's own method, which returns the error.
type Featurer interface {
	Features() Features
}

// HasFeature reports whether backend declares feature, treating a
// backend that does not implement Featurer as supporting none of the
// optional ones.
func HasFeature(backend Backend, feature Features) bool {
	f, ok := backend.(Featurer)
	if !ok {
		return false
	}

	return f.Features()&feature == feature
}
