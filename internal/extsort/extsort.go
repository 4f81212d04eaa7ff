// Package extsort provides a bounded-memory external sorter. Items are
// buffered up to a fixed count; full buffers are stable-sorted in parallel
// and spilled to JSON-lines run files in a scratch directory, and iteration
// merges the runs back with a k-way heap merge. Given identical input and
// buffer size the output order is deterministic.
package extsort

import (
	"bufio"
	"container/heap"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sorter sorts a stream of items of type T using at most maxInMemory items
// of buffer. Items must round-trip through encoding/json.
type Sorter[T any] struct {
	dir  string
	max  int
	less func(a, b T) bool

	buf  []T
	runs []string
}

// DefaultMaxInMemory is the default in-memory record budget per sort stage.
const DefaultMaxInMemory = 10_000

// New creates a Sorter spilling run files into dir. A maxInMemory of 0 or
// less selects DefaultMaxInMemory.
func New[T any](dir string, maxInMemory int, less func(a, b T) bool) *Sorter[T] {
	if maxInMemory <= 0 {
		maxInMemory = DefaultMaxInMemory
	}
	return &Sorter[T]{
		dir:  dir,
		max:  maxInMemory,
		less: less,
		buf:  make([]T, 0, maxInMemory),
	}
}

// Add buffers one item, spilling a sorted run to disk when the buffer is
// full.
func (s *Sorter[T]) Add(item T) error {
	s.buf = append(s.buf, item)
	if len(s.buf) >= s.max {
		return s.spill()
	}
	return nil
}

// spill stable-sorts the buffer and writes it out as one run file.
func (s *Sorter[T]) spill() error {
	stableSort(s.buf, s.less)

	path := filepath.Join(s.dir, fmt.Sprintf("run-%06d.jsonl", len(s.runs)))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create run file %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := range s.buf {
		if err := enc.Encode(&s.buf[i]); err != nil {
			f.Close()
			return fmt.Errorf("write run file %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush run file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close run file %s: %w", path, err)
	}

	s.runs = append(s.runs, path)
	s.buf = s.buf[:0]
	return nil
}

// Iterate stable-sorts the remaining buffer and streams all items in sorted
// order to fn. Stopping early by returning an error from fn aborts the
// merge. Iterate consumes the sorter; run files are removed afterwards.
func (s *Sorter[T]) Iterate(fn func(T) error) error {
	defer func() {
		for _, path := range s.runs {
			os.Remove(path)
		}
	}()

	stableSort(s.buf, s.less)

	// Common case: everything fit in memory.
	if len(s.runs) == 0 {
		for i := range s.buf {
			if err := fn(s.buf[i]); err != nil {
				return err
			}
		}
		return nil
	}

	sources := make([]*runReader[T], 0, len(s.runs)+1)
	for _, path := range s.runs {
		r, err := openRun[T](path)
		if err != nil {
			return err
		}
		defer r.close()
		sources = append(sources, r)
	}
	sources = append(sources, memRun(s.buf))

	return mergeRuns(sources, s.less, fn)
}

// runReader yields the items of one sorted run, either from a spill file or
// from the residual in-memory buffer.
type runReader[T any] struct {
	path string
	f    *os.File
	dec  *json.Decoder

	mem []T
	pos int

	cur T
	ok  bool
}

func openRun[T any](path string) (*runReader[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run file %s: %w", path, err)
	}
	return &runReader[T]{path: path, f: f, dec: json.NewDecoder(bufio.NewReader(f))}, nil
}

func memRun[T any](items []T) *runReader[T] {
	return &runReader[T]{mem: items}
}

// next advances to the next item; r.ok is false once the run is exhausted.
func (r *runReader[T]) next() error {
	if r.f == nil {
		if r.pos >= len(r.mem) {
			r.ok = false
			return nil
		}
		r.cur = r.mem[r.pos]
		r.pos++
		r.ok = true
		return nil
	}

	var item T
	if err := r.dec.Decode(&item); err != nil {
		if errors.Is(err, io.EOF) {
			r.ok = false
			return nil
		}
		return fmt.Errorf("read run file %s: %w", r.path, err)
	}
	r.cur = item
	r.ok = true
	return nil
}

func (r *runReader[T]) close() {
	if r.f != nil {
		r.f.Close()
	}
}

// mergeHeap orders run readers by their current item; ties break on the run
// index, so the merge of stable runs is itself stable.
type mergeHeap[T any] struct {
	readers []*runReader[T]
	index   map[*runReader[T]]int
	less    func(a, b T) bool
}

func (h *mergeHeap[T]) Len() int { return len(h.readers) }

func (h *mergeHeap[T]) Less(i, j int) bool {
	a, b := h.readers[i], h.readers[j]
	if h.less(a.cur, b.cur) {
		return true
	}
	if h.less(b.cur, a.cur) {
		return false
	}
	return h.index[a] < h.index[b]
}

func (h *mergeHeap[T]) Swap(i, j int) { h.readers[i], h.readers[j] = h.readers[j], h.readers[i] }

func (h *mergeHeap[T]) Push(x any) { h.readers = append(h.readers, x.(*runReader[T])) }

func (h *mergeHeap[T]) Pop() any {
	last := h.readers[len(h.readers)-1]
	h.readers = h.readers[:len(h.readers)-1]
	return last
}

func mergeRuns[T any](sources []*runReader[T], less func(a, b T) bool, fn func(T) error) error {
	h := &mergeHeap[T]{less: less, index: make(map[*runReader[T]]int, len(sources))}
	for i, r := range sources {
		h.index[r] = i
		if err := r.next(); err != nil {
			return err
		}
		if r.ok {
			h.readers = append(h.readers, r)
		}
	}
	heap.Init(h)

	for h.Len() > 0 {
		r := h.readers[0]
		if err := fn(r.cur); err != nil {
			return err
		}
		if err := r.next(); err != nil {
			return err
		}
		if r.ok {
			heap.Fix(h, 0)
		} else {
			heap.Pop(h)
		}
	}
	return nil
}
