package ttcache

// Callback return directives: a callback passed to Remember or Wrap
// normally just returns its payload. Wrapping that payload in one of
// these alters how the façade stores and returns it. Dispatched by type
// switch after the callback returns.

// bypassDirective marks a value that should be returned as-is without
// being written to the tagged store.
type bypassDirective struct {
	value interface{}
}

// BypassCache wraps value so Remember returns it without caching it.
func BypassCache(value interface{}) interface{} {
	return bypassDirective{value: value}
}

// revealDirective marks a value that should be stored normally, but
// whose caller should receive the tags snapshot alongside the payload.
type revealDirective struct {
	value interface{}
}

// RevealTags wraps value so Remember stores it normally but returns a
// RevealedTagged{value, tagsSnapshot} to the caller instead of the bare
// value. Cache hits on the same key also yield a RevealedTagged.
func RevealTags(value interface{}) interface{} {
	return revealDirective{value: value}
}

// unwrapDirective inspects a callback's return value for a directive,
// returning the underlying payload and which directive (if any) applied.
func unwrapDirective(v interface{}) (payload interface{}, bypass, reveal bool) {
	switch d := v.(type) {
	case bypassDirective:
		return d.value, true, false
	case revealDirective:
		return d.value, false, true
	default:
		return v, false, false
	}
}
