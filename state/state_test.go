// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adranet/adrd/lvldb"
)

func newTestStore(t *testing.T) *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReadYourWrites(t *testing.T) {
	db := newTestStore(t)
	require.NoError(t, db.Put([]byte("k1"), []byte("stored")))

	st := New(db)

	v, ok, err := st.Get([]byte("k1"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("stored"), v)

	_, ok, err = st.Get([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	st.Set([]byte("k1"), []byte("buffered"))
	v, ok, _ = st.Get([]byte("k1"))
	assert.True(t, ok)
	assert.Equal(t, []byte("buffered"), v)

	// buffered deletion hides the stored value
	st.Delete([]byte("k1"))
	_, ok, _ = st.Get([]byte("k1"))
	assert.False(t, ok)

	// nothing committed yet
	v, err = db.Get([]byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("stored"), v)
}

func TestCommit(t *testing.T) {
	db := newTestStore(t)
	require.NoError(t, db.Put([]byte("gone"), []byte("x")))

	st := New(db)
	st.Set([]byte("a"), []byte("1"))
	st.Set([]byte("b"), []byte("2"))
	st.Delete([]byte("gone"))
	assert.Equal(t, 3, st.Len())

	batch := db.NewBatch()
	require.NoError(t, st.Commit(batch))
	require.NoError(t, batch.Write())

	v, err := db.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
	_, err = db.Get([]byte("gone"))
	assert.True(t, db.IsNotFound(err))
}

func TestStructuredRoundTrip(t *testing.T) {
	type record struct {
		Name  string
		Count uint64
	}

	db := newTestStore(t)
	st := New(db)

	var out record
	ok, err := st.GetStructured([]byte("rec"), &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.SetStructured([]byte("rec"), &record{Name: "x", Count: 7}))
	ok, err = st.GetStructured([]byte("rec"), &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, record{Name: "x", Count: 7}, out)
}

func TestDroppedStateLeavesStoreUntouched(t *testing.T) {
	db := newTestStore(t)

	st := New(db)
	st.Set([]byte("a"), []byte("1"))
	// st goes out of scope without Commit

	st = New(db)
	_, ok, err := st.Get([]byte("a"))
	require.NoError(t, err)
	assert.False(t, ok)
}
