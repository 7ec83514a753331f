package cache

// ScopedKeyer prefixes every key of an inner Keyer, so that callers sharing
// one backend (the CLI and the HTTP API on the same Redis) do not collide.
//
//	apiKeyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey returns the prefixed layout key.
func (k *ScopedKeyer) LayoutKey(configHash string, opts LayoutKeyOpts) string {
	return k.scope(k.inner.LayoutKey(configHash, opts))
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.scope(k.inner.ArtifactKey(layoutHash, opts))
}

// scope keeps empty keys empty.
func (k *ScopedKeyer) scope(key string) string {
	if key == "" {
		return ""
	}
	return k.prefix + key
}
