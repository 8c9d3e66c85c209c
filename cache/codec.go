package cache

import (
	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes a snapshot into the opaque payload stored in the cache.
func Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode deserializes a cached payload back into its snapshot type.
func Decode[T any](data []byte) (T, error) {
	var v T
	if err := msgpack.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
