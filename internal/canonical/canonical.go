package canonical

import (
	"encoding/binary"
	"fmt"
)

// Type tags, one per supported primitive. The tag byte precedes every value
// so that no two field sequences can collide byte-wise.
const (
	tagString byte = 0x01
	tagBytes  byte = 0x02
	tagInt    byte = 0x03
	tagUint   byte = 0x04
)

// Field is one named primitive in a signing tuple. Order is significant:
// Encode emits fields exactly in the order given.
type Field struct {
	Name  string
	Value any
}

// Encode serialises fields deterministically.
//
// Layout per field: uvarint(len(name)) || name || tag || value, where
// strings and byte slices are uvarint length-prefixed and integers are
// 8-byte big-endian. An unsupported value type is a programmer error and
// returns a non-nil error; there are no other failure modes.
func Encode(fields []Field) ([]byte, error) {
	var out []byte
	var scratch [binary.MaxVarintLen64]byte

	appendUvarint := func(v uint64) {
		n := binary.PutUvarint(scratch[:], v)
		out = append(out, scratch[:n]...)
	}

	for _, f := range fields {
		appendUvarint(uint64(len(f.Name)))
		out = append(out, f.Name...)

		switch v := f.Value.(type) {
		case string:
			out = append(out, tagString)
			appendUvarint(uint64(len(v)))
			out = append(out, v...)
		case []byte:
			out = append(out, tagBytes)
			appendUvarint(uint64(len(v)))
			out = append(out, v...)
		case int64:
			out = append(out, tagInt)
			out = binary.BigEndian.AppendUint64(out, uint64(v))
		case uint64:
			out = append(out, tagUint)
			out = binary.BigEndian.AppendUint64(out, v)
		default:
			return nil, fmt.Errorf("canonical: unsupported field type %T for %q", f.Value, f.Name)
		}
	}
	return out, nil
}
