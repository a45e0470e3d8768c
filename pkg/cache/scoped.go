package cache

// ScopedKeyer wraps a Keyer with a prefix.
// The serve command uses it to keep its entries apart from a CLI sharing the
// same Redis instance.
//
// Example usage:
//
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "server:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for catalog response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ImageKey generates a prefixed key for image caching.
func (k *ScopedKeyer) ImageKey(ref string) string {
	return k.prefix + k.inner.ImageKey(ref)
}
