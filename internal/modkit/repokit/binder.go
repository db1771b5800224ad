package repokit

// Binder binds a domain repo to a specific Queryer, either the pool or an open transaction
type Binder[T any] interface {
	Bind(Queryer) T
}

// MustBind binds b to q and panics on a nil q
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}
