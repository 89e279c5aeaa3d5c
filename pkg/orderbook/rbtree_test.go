package orderbook

import "testing"

func TestOrderedMapUpsertGet(t *testing.T) {
	m := newOrderedMap[int]()
	m.Upsert(100, func() int { return 1 })
	m.Upsert(100, func() int { return 99 }) // existing key: factory not used
	v, ok := m.Get(100)
	if !ok || v != 1 {
		t.Fatalf("expected 1, got %d ok=%v", v, ok)
	}
	if m.Len() != 1 {
		t.Errorf("expected len 1, got %d", m.Len())
	}
}

func TestOrderedMapMinMax(t *testing.T) {
	m := newOrderedMap[int]()
	for _, p := range []Price{50, 10, 90, 30, 70} {
		p := p
		m.Upsert(p, func() int { return int(p) })
	}
	if p, _, ok := m.Min(); !ok || p != 10 {
		t.Errorf("expected min 10, got %d", p)
	}
	if p, _, ok := m.Max(); !ok || p != 90 {
		t.Errorf("expected max 90, got %d", p)
	}
}

func TestOrderedMapDelete(t *testing.T) {
	m := newOrderedMap[int]()
	m.Upsert(10, func() int { return 1 })
	m.Upsert(20, func() int { return 2 })

	if !m.Delete(10) {
		t.Fatalf("expected delete of 10 to succeed")
	}
	if m.Delete(10) {
		t.Fatalf("expected second delete of 10 to fail")
	}
	if _, ok := m.Get(10); ok {
		t.Errorf("expected 10 to be gone")
	}
	if m.Len() != 1 {
		t.Errorf("expected len 1, got %d", m.Len())
	}
}

func TestOrderedMapForEachOrder(t *testing.T) {
	m := newOrderedMap[int]()
	prices := []Price{40, 10, 30, 20, 50}
	for _, p := range prices {
		p := p
		m.Upsert(p, func() int { return int(p) })
	}

	var asc []Price
	m.ForEachAscending(func(p Price, v int) bool {
		asc = append(asc, p)
		return true
	})
	want := []Price{10, 20, 30, 40, 50}
	if !pricesEqual(asc, want) {
		t.Errorf("ascending order wrong: %v", asc)
	}

	var desc []Price
	m.ForEachDescending(func(p Price, v int) bool {
		desc = append(desc, p)
		return true
	})
	wantDesc := []Price{50, 40, 30, 20, 10}
	if !pricesEqual(desc, wantDesc) {
		t.Errorf("descending order wrong: %v", desc)
	}
}

func TestOrderedMapForEachEarlyStop(t *testing.T) {
	m := newOrderedMap[int]()
	for _, p := range []Price{10, 20, 30, 40} {
		p := p
		m.Upsert(p, func() int { return int(p) })
	}
	var seen []Price
	m.ForEachAscending(func(p Price, v int) bool {
		seen = append(seen, p)
		return p < 20
	})
	if !pricesEqual(seen, []Price{10, 20}) {
		t.Errorf("expected early stop after 20, got %v", seen)
	}
}

func TestOrderedMapManyInsertsStayBalanced(t *testing.T) {
	m := newOrderedMap[int]()
	for i := 0; i < 1000; i++ {
		p := Price(i)
		m.Upsert(p, func() int { return i })
	}
	if m.Len() != 1000 {
		t.Fatalf("expected len 1000, got %d", m.Len())
	}
	for i := 999; i >= 0; i-- {
		if !m.Delete(Price(i)) {
			t.Fatalf("expected delete of %d to succeed", i)
		}
	}
	if m.Len() != 0 {
		t.Errorf("expected empty map, got len %d", m.Len())
	}
}

func pricesEqual(a, b []Price) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
