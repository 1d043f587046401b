package core

import (
	"testing"
	"time"
)

func TestParseDMY(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"15/01/24", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"29/02/24", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), true},
		// Two-digit years always land in the 2000s, never the 1900s.
		{"31/12/99", time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{"01/01/69", time.Date(2069, 1, 1, 0, 0, 0, 0, time.UTC), true},
		// Pattern-valid but calendar-invalid dates roll forward.
		{"32/01/24", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{"31/02/24", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-01", time.Time{}, false},
		{"1/1/24", time.Time{}, false},
		{"aa/01/24", time.Time{}, false},
		{"15-01-24", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for i, tc := range cases {
		got, err := ParseDMY(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q): unexpected error %v", i, tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q): expected error", i, tc.in)
		}
		if tc.ok && !got.Equal(tc.want) {
			t.Fatalf("case %d (%q): got %v, want %v", i, tc.in, got, tc.want)
		}
	}
}

func TestCategoryAt(t *testing.T) {
	e := ExpenseRecord{Level1: "Regular", Level2: "Food", Level3: "Groceries"}
	if got := e.CategoryAt(Level1); got != "Regular" {
		t.Fatalf("level1: got %q", got)
	}
	if got := e.CategoryAt(Level2); got != "Food" {
		t.Fatalf("level2: got %q", got)
	}
	if got := e.CategoryAt(Level3); got != "Groceries" {
		t.Fatalf("level3: got %q", got)
	}
	if got := e.CategoryAt(Level("bogus")); got != "" {
		t.Fatalf("unknown level: got %q", got)
	}
}

func TestOrderedMapInsertionOrder(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("b", 3) // re-set must not move the key
	m.Set("c", 4)

	want := []string{"b", "a", "c"}
	keys := m.Keys()
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("key %d: got %q, want %q", i, keys[i], k)
		}
	}
	if v, _ := m.Get("b"); v != 3 {
		t.Fatalf("b: got %d, want 3", v)
	}
}

func TestTotalsAccumulate(t *testing.T) {
	tot := NewTotals()
	tot.Add("Food", 100)
	tot.Add("Travel", 50)
	tot.Add("Food", -20)

	if got := tot.Get("Food"); got != 80 {
		t.Fatalf("Food: got %v, want 80", got)
	}
	if got := tot.Get("Missing"); got != 0 {
		t.Fatalf("Missing: got %v, want 0", got)
	}
	keys := tot.Keys()
	if keys[0] != "Food" || keys[1] != "Travel" {
		t.Fatalf("unexpected key order: %v", keys)
	}
}
