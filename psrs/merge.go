// Package psrs implements Parallel Sort by Regular Sampling.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs

import (
	"cmp"
	"container/heap"
	"slices"
)

// merge produces the final segment out of the received segment: sorted
// sub-blocks, one per source participant, delimited by counts.
func merge[T cmp.Ordered](recv []T, counts []int, kind, sortKind string) []T {
	if kind == MergeResort {
		out := slices.Clone(recv)
		sortLocal(out, sortKind)
		return out
	}
	runs := make([][]T, 0, len(counts))
	var off int
	for _, n := range counts {
		if n > 0 {
			runs = append(runs, recv[off:off+n])
		}
		off += n
	}
	return mergeK(runs, len(recv))
}

// mergeK merges k sorted runs in O(n log k); on equal keys the earlier run
// goes first.
func mergeK[T cmp.Ordered](runs [][]T, n int) []T {
	out := make([]T, 0, n)
	switch len(runs) {
	case 0:
		return out
	case 1:
		return append(out, runs[0]...)
	}
	h := &runHeap[T]{runs: runs, heads: make([]cursor, 0, len(runs))}
	for i := range runs {
		h.heads = append(h.heads, cursor{run: i})
	}
	heap.Init(h)
	for h.Len() > 0 {
		top := &h.heads[0]
		out = append(out, runs[top.run][top.pos])
		top.pos++
		if top.pos == len(runs[top.run]) {
			heap.Pop(h)
		} else {
			heap.Fix(h, 0)
		}
	}
	return out
}

type (
	cursor struct {
		run int
		pos int
	}
	runHeap[T cmp.Ordered] struct {
		runs  [][]T
		heads []cursor
	}
)

// interface guard
var _ heap.Interface = (*runHeap[int])(nil)

func (h *runHeap[T]) Len() int { return len(h.heads) }

func (h *runHeap[T]) Less(i, j int) bool {
	a, b := h.heads[i], h.heads[j]
	if c := cmp.Compare(h.runs[a.run][a.pos], h.runs[b.run][b.pos]); c != 0 {
		return c < 0
	}
	return a.run < b.run
}

func (h *runHeap[T]) Swap(i, j int) { h.heads[i], h.heads[j] = h.heads[j], h.heads[i] }

func (h *runHeap[T]) Push(x any) { h.heads = append(h.heads, x.(cursor)) }

func (h *runHeap[T]) Pop() any {
	n := len(h.heads)
	x := h.heads[n-1]
	h.heads = h.heads[:n-1]
	return x
}
