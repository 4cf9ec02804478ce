package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several tenants can
// share one backend without colliding:
//
//	k := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "entitymap:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) TreeKey(root string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(root, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash, format string) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, format)
}
