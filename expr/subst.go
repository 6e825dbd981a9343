package expr

// Substitute returns e with every occurrence of v (compared by identity)
// replaced by term, rebuilding composite nodes bottom-up.
func (e Expr) Substitute(v, term Expr) Expr {
	if e.Equal(v) {
		return term
	}
	if len(e.n.children) == 0 {
		return e
	}
	children := make([]Expr, len(e.n.children))
	changed := false
	for i, ch := range e.n.children {
		nc := ch.Substitute(v, term)
		children[i] = nc
		if !nc.Equal(ch) {
			changed = true
		}
	}
	if !changed {
		return e
	}
	n := &node{op: e.n.op, sort: e.n.sort, children: children, name: e.n.name, num: e.n.num, modulus: e.n.modulus}
	return Expr{e.ctx, n}
}
