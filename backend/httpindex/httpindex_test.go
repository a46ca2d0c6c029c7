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

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zenfs "github.com/SardineFish/zenfs-core"
)

// indexJSON is exactly spec.md §8 scenario 1's listing: a root containing
// a file leaf ("a.txt") and a subdirectory ("d") containing one file leaf
// ("b.txt"). File sizes are unknown until stat (HEAD), per §4.I.
const indexJSON = `{"a.txt":null,"d":{"b.txt":null}}`

// runJSON adds a second top-level file so OpenFile/ReadDir have more than
// one entry to exercise against.
const runJSON = `{"a.txt":null,"bin":{"run.sh":null},"README.md":null}`

func newTestServer(t *testing.T, listing string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/index.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listing))
	})
	mux.HandleFunc("/README.md", func(w http.ResponseWriter, r *http.Request) {
		body := "hello, world\n"
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "13")

			return
		}

		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/bin/run.sh", func(w http.ResponseWriter, r *http.Request) {
		body := "#!/bin/sh\necho hi\n"
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "18")

			return
		}

		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/a.txt", func(w http.ResponseWriter, r *http.Request) {
		body := "a"
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "1")

			return
		}

		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/d/b.txt", func(w http.ResponseWriter, r *http.Request) {
		body := "b"
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "1")

			return
		}

		_, _ = w.Write([]byte(body))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newBackend(t *testing.T, listing string) *Backend {
	t.Helper()

	srv := newTestServer(t, listing)

	b, err := NewHTTPIndexBackend(srv.Client(), srv.URL+"/index.json", srv.URL)
	require.NoError(t, err)

	return b
}

func TestBackendDecodesNestedListing(t *testing.T) {
	b := newBackend(t, indexJSON)

	st, err := b.Stat("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Size())
	assert.False(t, st.IsDir())

	st, err = b.Stat("/d")
	require.NoError(t, err)
	assert.True(t, st.IsDir())

	st, err = b.Stat("/d/b.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Size())
}

func TestBackendStatFile(t *testing.T) {
	b := newBackend(t, runJSON)

	st, err := b.Stat("/README.md")
	require.NoError(t, err)
	assert.Equal(t, int64(13), st.Size())
	assert.False(t, st.IsDir())
}

func TestBackendStatDir(t *testing.T) {
	b := newBackend(t, runJSON)

	st, err := b.Stat("/bin")
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestBackendReadDir(t *testing.T) {
	b := newBackend(t, runJSON)

	names, err := b.ReadDir("/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "bin", "README.md"}, names)
}

func TestBackendOpenFileFetchesLazily(t *testing.T) {
	b := newBackend(t, runJSON)

	f, err := b.OpenFile("/bin/run.sh", zenfs.OpenFlag{})
	require.NoError(t, err)

	buf := make([]byte, 64)

	n, err := f.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho hi\n", string(buf[:n]))
}

func TestBackendOpenFileRejectsDir(t *testing.T) {
	b := newBackend(t, runJSON)

	_, err := b.OpenFile("/bin", zenfs.OpenFlag{})
	assert.ErrorIs(t, err, zenfs.EISDIR)
}

func TestBackendMutationsRejected(t *testing.T) {
	b := newBackend(t, runJSON)

	assert.ErrorIs(t, b.Mkdir("/newdir", 0o755), zenfs.EPERM)
	assert.ErrorIs(t, b.Unlink("/README.md"), zenfs.EPERM)
	assert.ErrorIs(t, b.Rename("/README.md", "/x"), zenfs.EPERM)

	_, err := b.CreateFile("/new.txt", zenfs.OpenFlag{}, 0o644)
	assert.ErrorIs(t, err, zenfs.EPERM)
}

func TestBackendPreload(t *testing.T) {
	b := newBackend(t, runJSON)

	b.Preload()

	n, err := b.lookup("/README.md")
	require.NoError(t, err)
	assert.Equal(t, stateResident, n.state)
}

func TestBackendFeatures(t *testing.T) {
	b := newBackend(t, runJSON)

	assert.True(t, zenfs.HasFeature(b, zenfs.FeatReadOnly))
	assert.False(t, zenfs.HasFeature(b, zenfs.FeatSymlink))
	assert.False(t, zenfs.HasFeature(b, zenfs.FeatHardlink))
}

func TestBackendNotFound(t *testing.T) {
	b := newBackend(t, runJSON)

	_, err := b.Stat("/nope")
	assert.ErrorIs(t, err, zenfs.ENOENT)
}
