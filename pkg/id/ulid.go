// Package id generates lexicographically sortable identifiers.
package id

import (
	"crypto/rand"
	"errors"
	"sync"
	"time"
)

// ErrInvalidULID is returned by Time for strings that are not ULIDs.
var ErrInvalidULID = errors.New("id: invalid ULID")

// Crockford base32 without I, L, O and U.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ULIDLen is the length of an encoded ULID.
const ULIDLen = 26

var gen = &generator{now: time.Now}

type generator struct {
	mu   sync.Mutex
	now  func() time.Time
	last uint64
	rnd  [10]byte
}

// NewULID returns a 26-character ULID: a 48-bit millisecond timestamp
// followed by 80 random bits. IDs from one process are strictly increasing;
// within the same millisecond the random part is incremented.
func NewULID() string {
	return gen.next()
}

func (g *generator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := uint64(g.now().UnixMilli())
	if ms <= g.last && !increment(g.rnd[:]) {
		ms = g.last
	} else if ms > g.last {
		_, _ = rand.Read(g.rnd[:])
	} else {
		// random part overflowed; borrow the next millisecond
		ms = g.last + 1
		_, _ = rand.Read(g.rnd[:])
	}
	g.last = ms

	var raw [16]byte
	for i := range 6 {
		raw[i] = byte(ms >> (40 - 8*i))
	}
	copy(raw[6:], g.rnd[:])
	return encode(raw)
}

// increment adds one to b as a big-endian integer and reports whether it
// wrapped around.
func increment(b []byte) (overflow bool) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return false
		}
	}
	return true
}

// encode writes 128 bits as 26 base32 characters. The first character
// carries only the top 3 bits.
func encode(raw [16]byte) string {
	var out [ULIDLen]byte
	var acc uint32
	bits := 2 // 130 output bits, 128 input bits
	pos := 0
	for _, b := range raw {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = alphabet[(acc>>bits)&0x1f]
			pos++
		}
	}
	return string(out[:])
}

// Time returns the creation time encoded in a ULID, at millisecond
// precision. Lower-case input is accepted.
func Time(ulid string) (time.Time, error) {
	if len(ulid) != ULIDLen {
		return time.Time{}, ErrInvalidULID
	}
	var ms uint64
	for i := range 10 {
		v := value(ulid[i])
		if v < 0 || (i == 0 && v > 7) {
			return time.Time{}, ErrInvalidULID
		}
		ms = ms<<5 | uint64(v)
	}
	for i := 10; i < ULIDLen; i++ {
		if value(ulid[i]) < 0 {
			return time.Time{}, ErrInvalidULID
		}
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}

func value(c byte) int {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	for i := range len(alphabet) {
		if alphabet[i] == c {
			return i
		}
	}
	return -1
}
