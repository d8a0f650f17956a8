// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
type Bucket string

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &bucketGetter{b, src}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &bucketPutter{b, src}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src GetPutter) GetPutter {
	return &struct {
		Getter
		Putter
	}{
		b.NewGetter(src),
		b.NewPutter(src),
	}
}

type bucketGetter struct {
	b   Bucket
	src Getter
}

func (g *bucketGetter) Get(key []byte) ([]byte, error) {
	return g.src.Get(append([]byte(g.b), key...))
}

func (g *bucketGetter) Has(key []byte) (bool, error) {
	return g.src.Has(append([]byte(g.b), key...))
}

func (g *bucketGetter) IsNotFound(err error) bool {
	return g.src.IsNotFound(err)
}

func (g *bucketGetter) NewIterator(r Range) Iterator {
	return &bucketIterator{g.src.NewIterator(g.b.makeRange(r)), len(g.b)}
}

type bucketPutter struct {
	b   Bucket
	src Putter
}

func (p *bucketPutter) Put(key, val []byte) error {
	return p.src.Put(append([]byte(p.b), key...), val)
}

func (p *bucketPutter) Delete(key []byte) error {
	return p.src.Delete(append([]byte(p.b), key...))
}

func (p *bucketPutter) NewBatch() Batch {
	return &bucketBatch{p.b, p.src.NewBatch()}
}

type bucketBatch struct {
	b   Bucket
	src Batch
}

func (bb *bucketBatch) Put(key, val []byte) error {
	return bb.src.Put(append([]byte(bb.b), key...), val)
}

func (bb *bucketBatch) Delete(key []byte) error {
	return bb.src.Delete(append([]byte(bb.b), key...))
}

func (bb *bucketBatch) NewBatch() Batch { return bb }

func (bb *bucketBatch) Len() int { return bb.src.Len() }

func (bb *bucketBatch) Write() error { return bb.src.Write() }

// bucketIterator strips the bucket prefix off iterated keys.
type bucketIterator struct {
	Iterator
	prefixLen int
}

func (i *bucketIterator) Key() []byte {
	return i.Iterator.Key()[i.prefixLen:]
}

func (b Bucket) makeRange(r Range) Range {
	from := append([]byte(b), r.From...)
	var to []byte
	if r.To == nil {
		to = util.BytesPrefix([]byte(b)).Limit
	} else {
		to = append([]byte(b), r.To...)
	}
	return Range{From: from, To: to}
}
