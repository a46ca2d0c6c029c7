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

// Component F — the per-operation cache. Two write-through maps scoped to
// a single compound VFS call (§3, §4.F): paths memoizes realpath lookups,
// stats memoizes backend.Stat results. The cache is a value owned by the
// outermost dispatch frame and threaded into sub-calls through a hidden
// parameter, per §9's explicit translation of the source's implicit
// global — never package-level state.
type opCache struct {
	paths map[string]string
	stats map[string]Stats

	// rewrite maps backend-relative paths observed during this call back
	// to the caller-visible path, built at the entry point (§4.J) and
	// consulted by RestoreError before the call returns.
	rewrite map[string]string

	indirect bool
}

func newOpCache() *opCache {
	return &opCache{
		paths:   make(map[string]string),
		stats:   make(map[string]Stats),
		rewrite: make(map[string]string),
	}
}

// withCache returns c unchanged if it is already set (a sub-call passing
// its inherited cache, _is_indirect=true in spec.md's vocabulary), or a
// fresh cache plus a clear function the outermost caller must defer.
func withCache(c *opCache) (*opCache, func()) {
	if c != nil {
		return c, func() {}
	}

	nc := newOpCache()

	return nc, func() {
		nc.paths = nil
		nc.stats = nil
		nc.rewrite = nil
	}
}

func (c *opCache) rememberRewrite(backendPath, callerPath string) {
	if backendPath != callerPath {
		c.rewrite[backendPath] = callerPath
	}
}

func (c *opCache) cachedStat(path string) (Stats, bool) {
	st, ok := c.stats[path]
	if ok {
		GlobalMetrics.hit()
	} else {
		GlobalMetrics.miss()
	}

	return st, ok
}

func (c *opCache) storeStat(path string, st Stats) {
	c.stats[path] = st
}

func (c *opCache) cachedRealpath(path string) (string, bool) {
	rp, ok := c.paths[path]
	if ok {
		GlobalMetrics.hit()
	} else {
		GlobalMetrics.miss()
	}

	return rp, ok
}

func (c *opCache) storeRealpath(path, real string) {
	c.paths[path] = real
}
