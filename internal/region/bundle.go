package region

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Bundle maps canonical region keys to metric records and remembers the order
// keys appeared in the backend document. The substring fallback in Resolve
// scans keys in that order, so ties are broken the same way for the same
// payload.
//
// A Bundle is read-only once built; refreshes replace it wholesale.
type Bundle struct {
	keys    []string
	records map[string]MetricRecord
}

// NewBundle builds a bundle from ordered keys. Later duplicates overwrite the
// record but keep the first position.
func NewBundle(entries ...Entry) *Bundle {
	b := &Bundle{records: make(map[string]MetricRecord, len(entries))}
	for _, e := range entries {
		b.put(e.Key, e.Record)
	}
	return b
}

// Entry is one key/record pair used to build a Bundle.
type Entry struct {
	Key    string
	Record MetricRecord
}

func (b *Bundle) put(key string, rec MetricRecord) {
	if b.records == nil {
		b.records = make(map[string]MetricRecord)
	}
	if _, exists := b.records[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.records[key] = rec
}

// Lookup returns the record stored under key.
func (b *Bundle) Lookup(key string) (MetricRecord, bool) {
	if b == nil {
		return MetricRecord{}, false
	}
	rec, ok := b.records[key]
	return rec, ok
}

// Keys returns the keys in document order.
func (b *Bundle) Keys() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.keys...)
}

// Len returns the number of regions in the bundle.
func (b *Bundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// UnmarshalJSON decodes a JSON object while preserving key order.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	*b = Bundle{records: make(map[string]MetricRecord)}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode metric bundle: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode metric bundle: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode metric bundle key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decode metric bundle: unexpected key %v", tok)
		}
		var rec MetricRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("decode metric bundle record %q: %w", key, err)
		}
		b.put(key, rec)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode metric bundle: %w", err)
	}
	return nil
}

// MarshalJSON encodes the bundle as an object in document order.
func (b Bundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range b.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(b.records[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
