package golem

import (
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotAttr carries a serialized state value on the host element, so
// server-rendered markup can rehydrate an instance mid-life. Written on
// every state change of a snapshot-enabled instance; consumed once at
// first connection.
const snapshotAttr = "data-golem-state"

// encodeSnapshot packs a state value into attribute-safe text:
// msgpack for density, url-safe base64 for the attribute value.
func encodeSnapshot(v any) (string, error) {
	packed, err := msgpack.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("pack state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(packed), nil
}

// decodeSnapshot inverts encodeSnapshot.
func decodeSnapshot(raw string) (any, error) {
	packed, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	var v any
	if err := msgpack.Unmarshal(packed, &v); err != nil {
		return nil, fmt.Errorf("unpack state: %w", err)
	}
	return v, nil
}
