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

// Package httpindex is the reference read-only zenfs.Backend of §4.N: a
// directory tree described by a JSON index document, with file bodies
// fetched lazily over HTTP and cached in memory once read. It is the
// "real fs, no write path" counterpart to backend/memfs, grounded on the
// teacher's RoFs (the stated purpose of vfs/rofs — wrap read-only access
// around a backing store) but built from scratch against net/http instead
// of wrapping another avfs.VFS, since this backend's store lives over the
// network rather than on another in-process file system.
package httpindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"io/fs"

	zenfs "github.com/SardineFish/zenfs-core"
)

// nodeState is the file-inode state machine of §4.I: every file starts
// listed (its existence and position in the tree are known from the
// index), advances to sized once a HEAD request pins down its length,
// and to resident once its body has been fetched and cached.
type nodeState int

const (
	stateListed nodeState = iota
	stateSized
	stateResident
)

type inode struct {
	mu       sync.Mutex
	name     string
	isDir    bool
	children map[string]*inode
	url      string // fetch URL, file nodes only.
	state    nodeState
	size     int64
	body     []byte
	mtime    time.Time
}

// Backend is the read-only HTTP-indexed zenfs.Backend.
type Backend struct {
	prefixURL string
	client    *http.Client
	root      *inode
}

var nullJSON = []byte("null")

// NewHTTPIndexBackend fetches listingURL synchronously over client as JSON
// and builds a Backend rooted at prefixURL for file body fetches, per
// §4.I's construction step. prefixURL is normalized to end in "/".
func NewHTTPIndexBackend(client *http.Client, listingURL, prefixURL string) (*Backend, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Get(listingURL) //nolint:noctx // backend API is context-free by design (§9).
	if err != nil {
		return nil, fmt.Errorf("httpindex: fetch index: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpindex: fetch index: status %s", resp.Status)
	}

	var top map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&top); err != nil {
		return nil, fmt.Errorf("httpindex: decode index: %w", err)
	}

	if !strings.HasSuffix(prefixURL, "/") {
		prefixURL += "/"
	}

	b := &Backend{
		prefixURL: prefixURL,
		client:    client,
		root:      &inode{isDir: true, children: make(map[string]*inode), mtime: time.Now()},
	}

	if err := b.root.build(top, prefixURL); err != nil {
		return nil, err
	}

	return b, nil
}

// build decodes one level of the §6 index format — `Listing := {name:
// Listing | null}` — into children of n: a null leaf is a file, any other
// value must itself decode as a Listing object (a subdirectory).
func (n *inode) build(entries map[string]json.RawMessage, urlPrefix string) error {
	for name, raw := range entries {
		child := &inode{name: name, mtime: time.Now()}
		childURL := urlPrefix + name

		if bytes.Equal(bytes.TrimSpace(raw), nullJSON) {
			child.url = childURL
		} else {
			var sub map[string]json.RawMessage
			if err := json.Unmarshal(raw, &sub); err != nil {
				return fmt.Errorf("httpindex: decode index at %q: %w", name, err)
			}

			child.isDir = true
			child.children = make(map[string]*inode)

			if err := child.build(sub, childURL+"/"); err != nil {
				return err
			}
		}

		n.children[name] = child
	}

	return nil
}

// Preload eagerly fetches every file's body, concurrently, instead of
// lazily on first read. Unlike most of this backend's operations,
// preloading genuinely benefits from concurrency (many independent HTTP
// round trips), so — unlike the rest of §4.I, which deliberately has no
// separate async variant — this one does fan out goroutines rather than
// wrapping a synchronous loop.
func (b *Backend) Preload() {
	b.preload(b.root)
}

func (b *Backend) preload(n *inode) {
	var wg sync.WaitGroup

	for _, child := range n.children {
		if child.isDir {
			b.preload(child)

			continue
		}

		wg.Add(1)

		go func(n *inode) {
			defer wg.Done()

			_ = b.ensureResident(n)
		}(child)
	}

	wg.Wait()
}

// ensureSized advances n to at least stateSized, issuing a HEAD request
// if its size is not already known.
func (b *Backend) ensureSized(n *inode) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state >= stateSized {
		return nil
	}

	resp, err := b.client.Head(n.url) //nolint:noctx // backend API is context-free by design (§9).
	if err != nil {
		return zenfs.EIO
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return zenfs.ENOENT
	}

	n.size = resp.ContentLength
	n.state = stateSized

	if n.size == 0 {
		n.state = stateResident
		n.body = []byte{}
	}

	return nil
}

// ensureResident advances n to stateResident, fetching and caching its
// body over GET if it has not already been fetched.
func (b *Backend) ensureResident(n *inode) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == stateResident {
		return nil
	}

	resp, err := b.client.Get(n.url) //nolint:noctx // backend API is context-free by design (§9).
	if err != nil {
		return zenfs.EIO
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return zenfs.ENOENT
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zenfs.EIO
	}

	n.body = body
	n.size = int64(len(body))
	n.state = stateResident

	return nil
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}

	return strings.Split(path, "/")
}

func (b *Backend) lookup(path string) (*inode, error) {
	parts := splitPath(path)

	cur := b.root
	for _, part := range parts {
		if !cur.isDir {
			return nil, zenfs.ENOTDIR
		}

		child, ok := cur.children[part]
		if !ok {
			return nil, zenfs.ENOENT
		}

		cur = child
	}

	return cur, nil
}

func (n *inode) mode() fs.FileMode {
	if n.isDir {
		return fs.ModeDir | 0o555
	}

	return 0o444
}

func (n *inode) stat(name string) zenfs.Stats {
	n.mu.Lock()
	defer n.mu.Unlock()

	size := n.size
	if n.isDir {
		size = int64(len(n.children))
	}

	return zenfs.Stats{
		NameField: name,
		SizeField: size,
		ModeField: n.mode(),
		ATime:     n.mtime,
		MTime:     n.mtime,
		CTime:     n.mtime,
	}
}

func (b *Backend) Name() string { return "httpindex" }

func (b *Backend) Stat(path string) (zenfs.Stats, error) {
	n, err := b.lookup(path)
	if err != nil {
		return zenfs.Stats{}, err
	}

	if !n.isDir {
		if err := b.ensureSized(n); err != nil {
			return zenfs.Stats{}, err
		}
	}

	name := n.name
	if path == "/" {
		name = "/"
	}

	return n.stat(name), nil
}

func (b *Backend) Exists(path string) bool {
	_, err := b.lookup(path)

	return err == nil
}

func (b *Backend) OpenFile(path string, flag zenfs.OpenFlag) (zenfs.BackendFile, error) {
	n, err := b.lookup(path)
	if err != nil {
		return nil, err
	}

	if n.isDir {
		return nil, zenfs.EISDIR
	}

	if err := b.ensureResident(n); err != nil {
		return nil, err
	}

	return &httpFile{backend: b, node: n}, nil
}

func (b *Backend) ReadDir(path string) ([]string, error) {
	n, err := b.lookup(path)
	if err != nil {
		return nil, err
	}

	if !n.isDir {
		return nil, zenfs.ENOTDIR
	}

	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}

	return names, nil
}

func (b *Backend) CreateFile(string, zenfs.OpenFlag, uint32) (zenfs.BackendFile, error) {
	return nil, zenfs.EPERM
}

func (b *Backend) Mkdir(string, uint32) error  { return zenfs.EPERM }
func (b *Backend) Rmdir(string) error          { return zenfs.EPERM }
func (b *Backend) Unlink(string) error         { return zenfs.EPERM }
func (b *Backend) Rename(string, string) error { return zenfs.EPERM }
func (b *Backend) Link(string, string) error   { return zenfs.EPERM }

// Features reports no mutation support at all: the §6 index format has no
// symlink leaf, so this backend never holds a symlink-mode node, and there
// is no write path to create one either.
func (b *Backend) Features() zenfs.Features {
	return zenfs.FeatReadOnly
}
