package orderbook

// orderedMap is a red-black tree keyed by Price, giving O(log P) best /
// insert-level / remove-level as required by §4.3. It is generic over the
// level value (*PriceLevel for a SideBook, *StopLevel for a StopBook) so
// the rotation/fixup machinery — the fiddly part — is written once.
type orderedMap[V any] struct {
	root, sentinel *rbNode[V]
	size           int
}

type rbColor uint8

const (
	red rbColor = iota
	black
)

type rbNode[V any] struct {
	key    Price
	value  V
	color  rbColor
	left   *rbNode[V]
	right  *rbNode[V]
	parent *rbNode[V]
}

func newOrderedMap[V any]() *orderedMap[V] {
	nilNode := &rbNode[V]{color: black}
	return &orderedMap[V]{root: nilNode, sentinel: nilNode}
}

func (t *orderedMap[V]) Len() int { return t.size }

func (t *orderedMap[V]) Get(price Price) (V, bool) {
	n := t.search(price)
	if n == t.sentinel {
		var zero V
		return zero, false
	}
	return n.value, true
}

// Upsert returns the existing value at price, or creates one with make()
// and inserts it.
func (t *orderedMap[V]) Upsert(price Price, make func() V) V {
	y := t.sentinel
	x := t.root
	for x != t.sentinel {
		y = x
		switch {
		case price < x.key:
			x = x.left
		case price > x.key:
			x = x.right
		default:
			return x.value
		}
	}

	v := make()
	z := &rbNode[V]{key: price, value: v, color: red, left: t.sentinel, right: t.sentinel, parent: y}
	if y == t.sentinel {
		t.root = z
	} else if z.key < y.key {
		y.left = z
	} else {
		y.right = z
	}
	t.insertFixup(z)
	t.size++
	return v
}

func (t *orderedMap[V]) Delete(price Price) bool {
	z := t.search(price)
	if z == t.sentinel {
		return false
	}
	t.deleteNode(z)
	t.size--
	return true
}

func (t *orderedMap[V]) Min() (Price, V, bool) {
	n := t.minNode(t.root)
	if n == t.sentinel {
		var zero V
		return 0, zero, false
	}
	return n.key, n.value, true
}

func (t *orderedMap[V]) Max() (Price, V, bool) {
	n := t.maxNode(t.root)
	if n == t.sentinel {
		var zero V
		return 0, zero, false
	}
	return n.key, n.value, true
}

// ForEachAscending visits every (price, value) in increasing price order,
// stopping early if fn returns false.
func (t *orderedMap[V]) ForEachAscending(fn func(Price, V) bool) {
	for n := t.minNode(t.root); n != t.sentinel; n = t.next(n) {
		if !fn(n.key, n.value) {
			return
		}
	}
}

// ForEachDescending visits every (price, value) in decreasing price order.
func (t *orderedMap[V]) ForEachDescending(fn func(Price, V) bool) {
	for n := t.maxNode(t.root); n != t.sentinel; n = t.prev(n) {
		if !fn(n.key, n.value) {
			return
		}
	}
}

/* --- internals: classic CLRS red-black tree, sentinel-based --- */

func (t *orderedMap[V]) search(price Price) *rbNode[V] {
	n := t.root
	for n != t.sentinel {
		switch {
		case price < n.key:
			n = n.left
		case price > n.key:
			n = n.right
		default:
			return n
		}
	}
	return t.sentinel
}

func (t *orderedMap[V]) minNode(n *rbNode[V]) *rbNode[V] {
	if n == t.sentinel {
		return t.sentinel
	}
	for n.left != t.sentinel {
		n = n.left
	}
	return n
}

func (t *orderedMap[V]) maxNode(n *rbNode[V]) *rbNode[V] {
	if n == t.sentinel {
		return t.sentinel
	}
	for n.right != t.sentinel {
		n = n.right
	}
	return n
}

func (t *orderedMap[V]) next(n *rbNode[V]) *rbNode[V] {
	if n.right != t.sentinel {
		return t.minNode(n.right)
	}
	p := n.parent
	for p != t.sentinel && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (t *orderedMap[V]) prev(n *rbNode[V]) *rbNode[V] {
	if n.left != t.sentinel {
		return t.maxNode(n.left)
	}
	p := n.parent
	for p != t.sentinel && n == p.left {
		n = p
		p = p.parent
	}
	return p
}

func (t *orderedMap[V]) leftRotate(x *rbNode[V]) {
	y := x.right
	x.right = y.left
	if y.left != t.sentinel {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.sentinel {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *orderedMap[V]) rightRotate(y *rbNode[V]) {
	x := y.left
	y.left = x.right
	if x.right != t.sentinel {
		x.right.parent = y
	}
	x.parent = y.parent
	if y.parent == t.sentinel {
		t.root = x
	} else if y == y.parent.right {
		y.parent.right = x
	} else {
		y.parent.left = x
	}
	x.right = y
	y.parent = x
}

func (t *orderedMap[V]) insertFixup(z *rbNode[V]) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.leftRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rightRotate(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rightRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.leftRotate(z.parent.parent)
			}
		}
	}
	t.root.color = black
}

func (t *orderedMap[V]) transplant(u, v *rbNode[V]) {
	if u.parent == t.sentinel {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *orderedMap[V]) deleteNode(z *rbNode[V]) {
	y := z
	yOrigColor := y.color
	var x *rbNode[V]

	if z.left == t.sentinel {
		x = z.right
		t.transplant(z, z.right)
	} else if z.right == t.sentinel {
		x = z.left
		t.transplant(z, z.left)
	} else {
		y = t.minNode(z.right)
		yOrigColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	if yOrigColor == black {
		t.deleteFixup(x)
	}
}

func (t *orderedMap[V]) deleteFixup(x *rbNode[V]) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.leftRotate(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rightRotate(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.leftRotate(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rightRotate(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.leftRotate(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rightRotate(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}
