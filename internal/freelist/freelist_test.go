// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package freelist

import "testing"

func TestAddGetRemove(t *testing.T) {
	l := New[string](8)

	a := l.Add("a")
	b := l.Add("b")
	c := l.Add("c")

	if l.Len() != 3 {
		t.Fatalf("Len = %d, want 3", l.Len())
	}
	if got := l.Get(b); got == nil || *got != "b" {
		t.Fatalf("Get(b) = %v", got)
	}

	if !l.Remove(b) {
		t.Fatal("Remove(b) failed")
	}
	if l.Len() != 2 {
		t.Fatalf("Len after remove = %d", l.Len())
	}
	// a and c survive the swap-with-last compaction.
	if got := l.Get(a); got == nil || *got != "a" {
		t.Fatalf("Get(a) after remove = %v", got)
	}
	if got := l.Get(c); got == nil || *got != "c" {
		t.Fatalf("Get(c) after remove = %v", got)
	}
}

func TestStaleIDRejected(t *testing.T) {
	l := New[int](4)

	id := l.Add(7)
	l.Remove(id)

	if l.Contains(id) {
		t.Fatal("removed id still contained")
	}
	if l.Get(id) != nil {
		t.Fatal("Get on removed id returned an object")
	}
	if l.Remove(id) {
		t.Fatal("double remove succeeded")
	}

	// Recycling the slot bumps the generation, so the old id stays dead.
	id2 := l.Add(8)
	if id2 == id {
		t.Fatal("recycled slot reused the old generation")
	}
	if l.Contains(id) {
		t.Fatal("old generation id matches recycled slot")
	}
	if got := l.Get(id2); got == nil || *got != 8 {
		t.Fatalf("Get(id2) = %v", got)
	}
}

func TestNeverAllocatedID(t *testing.T) {
	l := New[int](4)
	if l.Contains(0x12340002) {
		t.Fatal("unallocated id reported live")
	}
	if l.Contains(0xFFFF) {
		t.Fatal("out-of-range slot reported live")
	}
}

func TestAll(t *testing.T) {
	l := New[int](8)
	want := map[ID]int{}
	for i := 0; i < 5; i++ {
		want[l.Add(i*10)] = i * 10
	}

	seen := 0
	l.All(func(id ID, v *int) {
		if want[id] != *v {
			t.Errorf("All: id %#x has %d, want %d", id, *v, want[id])
		}
		seen++
	})
	if seen != 5 {
		t.Fatalf("All visited %d, want 5", seen)
	}
}

func TestFillAndDrain(t *testing.T) {
	const n = 16
	l := New[int](n)
	ids := make([]ID, n)
	for i := range ids {
		ids[i] = l.Add(i)
	}
	if l.Len() != n {
		t.Fatalf("Len = %d", l.Len())
	}
	for i, id := range ids {
		if got := l.Get(id); got == nil || *got != i {
			t.Fatalf("Get(ids[%d]) = %v", i, got)
		}
	}
	for _, id := range ids {
		if !l.Remove(id) {
			t.Fatalf("Remove(%#x) failed", id)
		}
	}
	if l.Len() != 0 {
		t.Fatalf("Len after drain = %d", l.Len())
	}
	// The slots are all reusable again.
	for i := 0; i < n; i++ {
		l.Add(i)
	}
	if l.Len() != n {
		t.Fatalf("Len after refill = %d", l.Len())
	}
}
