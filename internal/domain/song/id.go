package song

import (
	"cmp"
	"fmt"
)

const (
	// IDLength is the length of a canonical song id string.
	IDLength = 32

	idAlphabet    = "01689DIOPQbdiloq"
	nibblesPerU64 = 16
)

// idIndex maps an id byte to its alphabet position, or -1.
var idIndex = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(idAlphabet); i++ {
		t[idAlphabet[i]] = int8(i)
	}
	return t
}()

// ID is the canonical song id assigned by the primary source.
//
// The 32-character id is hex in a custom alphabet, so it packs into 128 bits.
// The first character occupies the highest nibble of hi. The alphabet is in
// ASCII order, so Compare agrees with comparing the id strings.
type ID struct {
	hi, lo uint64
}

// ParseID parses a 32-character song id.
func ParseID(s string) (ID, error) {
	if len(s) != IDLength {
		return ID{}, fmt.Errorf("%w: got length %d", ErrInvalidIDLength, len(s))
	}
	var id ID
	for i := 0; i < IDLength; i++ {
		n := idIndex[s[i]]
		if n < 0 {
			return ID{}, fmt.Errorf("%w: %q at position %d", ErrInvalidIDChar, s[i], i)
		}
		shift := uint(4 * (nibblesPerU64 - 1 - i%nibblesPerU64))
		if i < nibblesPerU64 {
			id.hi |= uint64(n) << shift
		} else {
			id.lo |= uint64(n) << shift
		}
	}
	return id, nil
}

// MustParseID is ParseID that panics on error. Intended for tests and constants.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String renders the id in its 32-character form.
func (id ID) String() string {
	var out [IDLength]byte
	for i := 0; i < IDLength; i++ {
		word := id.hi
		if i >= nibblesPerU64 {
			word = id.lo
		}
		shift := uint(4 * (nibblesPerU64 - 1 - i%nibblesPerU64))
		out[i] = idAlphabet[(word>>shift)&0xF]
	}
	return string(out[:])
}

// Compare returns -1, 0 or +1. The order is total.
func (id ID) Compare(other ID) int {
	if c := cmp.Compare(id.hi, other.hi); c != 0 {
		return c
	}
	return cmp.Compare(id.lo, other.lo)
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id.hi == 0 && id.lo == 0
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// LocalID is the secondary source's integer song index. It is only meaningful
// within one secondary catalog pull.
type LocalID uint16
