package ttcache

import "github.com/ttcache/ttcache/serializer"

// TaggedValue is the unit written to the KV store under a cache key.
// Tags is a snapshot of tag-key → fingerprint taken at write time; a
// TaggedValue is valid only while every one of those fingerprints is
// still current.
type TaggedValue struct {
	Value    interface{}       `json:"value" msgpack:"value"`
	Tags     map[string]string `json:"tags" msgpack:"tags"`
	Revealed bool              `json:"revealed,omitempty" msgpack:"revealed,omitempty"`
}

// RevealedTagged is what Remember returns to the caller when the
// callback's result carries the RevealTags directive: the payload plus
// the tags snapshot it was stored with.
type RevealedTagged struct {
	value interface{}
	tags  map[string]string
}

// Value returns the callback's original payload.
func (r RevealedTagged) Value() interface{} { return r.value }

// Tags returns the tag-key → fingerprint snapshot the value was cached with.
func (r RevealedTagged) Tags() map[string]string { return r.tags }

// encodeTaggedValue serializes a TaggedValue for storage.
func encodeTaggedValue(s serializer.Serializer, tv TaggedValue) ([]byte, error) {
	return s.Marshal(tv)
}

// decodeTaggedValue deserializes a TaggedValue read from storage.
func decodeTaggedValue(s serializer.Serializer, data []byte) (TaggedValue, error) {
	var tv TaggedValue
	if err := s.Unmarshal(data, &tv); err != nil {
		return TaggedValue{}, err
	}
	return tv, nil
}
