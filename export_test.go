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

// ResolveMountForTest exposes VFS.mounts.Resolve to external tests that
// cannot import this package's unexported fields directly (they live in
// package zenfs_test to avoid an import cycle with backend/memfs).
func (vfs *VFS) ResolveMountForTest(path string) ResolvedMount {
	return vfs.mounts.Resolve(path)
}
