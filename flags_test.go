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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagTable(t *testing.T) {
	cases := []struct {
		flag string
		want OpenFlag
	}{
		{"r", OpenFlag{Readable: true, MustExist: true}},
		{"r+", OpenFlag{Readable: true, Writable: true, MustExist: true}},
		{"w", OpenFlag{Writable: true, Truncating: true}},
		{"w+", OpenFlag{Readable: true, Writable: true, Truncating: true}},
		{"wx", OpenFlag{Writable: true, Truncating: true, Exclusive: true}},
		{"a", OpenFlag{Writable: true, Appendable: true}},
		{"a+", OpenFlag{Readable: true, Writable: true, Appendable: true}},
		{"ax", OpenFlag{Writable: true, Appendable: true, Exclusive: true}},
	}

	for _, c := range cases {
		got, err := ParseFlag(c.flag)
		require.NoError(t, err, c.flag)
		assert.Equal(t, c.want, got, c.flag)
	}
}

func TestParseFlagRejectsUnknown(t *testing.T) {
	_, err := ParseFlag("bogus")
	assert.ErrorIs(t, err, EINVAL)
}

func TestParseNumericFlagRequiresReadOrWrite(t *testing.T) {
	_, err := ParseNumericFlag(0)
	assert.ErrorIs(t, err, EINVAL)
}

func TestParseNumericFlagReadOnlyMustExist(t *testing.T) {
	f, err := ParseNumericFlag(ORead)
	require.NoError(t, err)
	assert.True(t, f.Readable)
	assert.True(t, f.MustExist)
}

func TestParseNumericFlagCreateDoesNotRequireExist(t *testing.T) {
	f, err := ParseNumericFlag(OWrite | OCreate)
	require.NoError(t, err)
	assert.True(t, f.Writable)
	assert.False(t, f.MustExist)
}

func TestParseNumericFlagExclusiveImpliesNotMustExist(t *testing.T) {
	f, err := ParseNumericFlag(OWrite | OExclusive)
	require.NoError(t, err)
	assert.True(t, f.Exclusive)
	assert.False(t, f.MustExist)
}

func TestRequiredAccess(t *testing.T) {
	assert.Equal(t, WantRead, OpenFlag{Readable: true}.RequiredAccess())
	assert.Equal(t, WantWrite, OpenFlag{Writable: true}.RequiredAccess())
	assert.Equal(t, WantRead|WantWrite, OpenFlag{Readable: true, Appendable: true}.RequiredAccess())
}

func TestCreatesIfMissing(t *testing.T) {
	assert.True(t, OpenFlag{Writable: true}.CreatesIfMissing())
	assert.False(t, OpenFlag{Writable: true, MustExist: true}.CreatesIfMissing())
	assert.False(t, OpenFlag{Readable: true}.CreatesIfMissing())
}
