package ecs

// Each2 visits every live entity that has both A and B enabled, across all
// pools registering both types. It does nothing if either type is unknown.
func Each2[A, B any](w *World, fn func(EntityID, *A, *B)) {
	ia, okA := IDOf[A](w)
	ib, okB := IDOf[B](w)
	if !okA || !okB {
		return
	}
	var mask PoolMask
	mask.Set(ia)
	mask.Set(ib)
	for _, p := range w.pools {
		if !p.registered.Contains(mask) {
			continue
		}
		la, _ := p.LocalIndexOf(ia)
		lb, _ := p.LocalIndexOf(ib)
		sa, sb := p.components[la].data, p.components[lb].data
		var em EntityMask
		em.Set(la)
		em.Set(lb)
		for it := p.Begin(em); !it.Done(); it.Next() {
			s := it.Slot()
			fn(it.Entity(), sa.at(s).(*A), sb.at(s).(*B))
		}
	}
}

// Each3 visits every live entity that has A, B and C enabled.
func Each3[A, B, C any](w *World, fn func(EntityID, *A, *B, *C)) {
	ia, okA := IDOf[A](w)
	ib, okB := IDOf[B](w)
	ic, okC := IDOf[C](w)
	if !okA || !okB || !okC {
		return
	}
	var mask PoolMask
	mask.Set(ia)
	mask.Set(ib)
	mask.Set(ic)
	for _, p := range w.pools {
		if !p.registered.Contains(mask) {
			continue
		}
		la, _ := p.LocalIndexOf(ia)
		lb, _ := p.LocalIndexOf(ib)
		lc, _ := p.LocalIndexOf(ic)
		sa, sb, sc := p.components[la].data, p.components[lb].data, p.components[lc].data
		var em EntityMask
		em.Set(la)
		em.Set(lb)
		em.Set(lc)
		for it := p.Begin(em); !it.Done(); it.Next() {
			s := it.Slot()
			fn(it.Entity(), sa.at(s).(*A), sb.at(s).(*B), sc.at(s).(*C))
		}
	}
}
