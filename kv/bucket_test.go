// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is a minimal in-memory GetPutter for exercising buckets.
type memStore struct {
	data map[string][]byte
}

var errNotFound = errors.New("not found")

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(key []byte) ([]byte, error) {
	v, ok := m.data[string(key)]
	if !ok {
		return nil, errNotFound
	}
	return v, nil
}

func (m *memStore) Has(key []byte) (bool, error) {
	_, ok := m.data[string(key)]
	return ok, nil
}

func (m *memStore) IsNotFound(err error) bool { return err == errNotFound }

func (m *memStore) NewIterator(r Range) Iterator { panic("not implemented") }

func (m *memStore) Put(key, val []byte) error {
	m.data[string(key)] = append([]byte(nil), val...)
	return nil
}

func (m *memStore) Delete(key []byte) error {
	delete(m.data, string(key))
	return nil
}

func (m *memStore) NewBatch() Batch { panic("not implemented") }

func TestBucketPrefixing(t *testing.T) {
	src := newMemStore()
	store := Bucket("b1-").NewStore(src)

	require.NoError(t, store.Put([]byte("key"), []byte("val")))

	// prefixed in the source, transparent through the bucket
	v, err := src.Get([]byte("b1-key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("val"), v)

	v, err = store.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("val"), v)

	has, err := store.Has([]byte("key"))
	require.NoError(t, err)
	assert.True(t, has)

	_, err = store.Get([]byte("b1-key"))
	assert.True(t, store.IsNotFound(err))

	require.NoError(t, store.Delete([]byte("key")))
	has, _ = src.Has([]byte("b1-key"))
	assert.False(t, has)
}

func TestBucketsAreDisjoint(t *testing.T) {
	src := newMemStore()
	s1 := Bucket("b1-").NewStore(src)
	s2 := Bucket("b2-").NewStore(src)

	require.NoError(t, s1.Put([]byte("key"), []byte("one")))
	require.NoError(t, s2.Put([]byte("key"), []byte("two")))

	v, err := s1.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), v)

	v, err = s2.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), v)
}

func TestMakeRange(t *testing.T) {
	b := Bucket("b1")

	r := b.makeRange(Range{From: []byte("a"), To: []byte("z")})
	assert.Equal(t, []byte("b1a"), r.From)
	assert.Equal(t, []byte("b1z"), r.To)

	// nil To covers the whole bucket
	r = b.makeRange(Range{})
	assert.Equal(t, []byte("b1"), r.From)
	assert.Equal(t, []byte("b2"), r.To)
}
