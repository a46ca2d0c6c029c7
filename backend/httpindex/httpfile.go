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

package httpindex

import zenfs "github.com/SardineFish/zenfs-core"

// httpFile is the zenfs.BackendFile handed back by Backend.OpenFile. Its
// body is already resident (OpenFile calls ensureResident before handing
// one back), so ReadAt is a plain slice copy with no further fetching.
type httpFile struct {
	zenfs.ReadOnlyFile

	backend *Backend
	node    *inode
}

func (f *httpFile) Stat() (zenfs.Stats, error) {
	return f.node.stat(f.node.name), nil
}

func (f *httpFile) ReadAt(buf []byte, offset int64) (int, error) {
	f.node.mu.Lock()
	defer f.node.mu.Unlock()

	body := f.node.body

	if offset >= int64(len(body)) {
		return 0, nil
	}

	n := copy(buf, body[offset:])

	return n, nil
}
