package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: a 48-bit millisecond timestamp followed by 80 bits of
// randomness, Crockford Base32 encoded into 26 characters. IDs minted in the
// same millisecond carry an increasing sequence in the first two random bytes
// so they still sort in creation order.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

type ulidSource struct {
	mu      sync.Mutex
	now     func() time.Time
	lastTS  uint64
	lastSeq uint16
}

var jobIDs = &ulidSource{now: time.Now}

func newJobID() string {
	return jobIDs.next()
}

func (s *ulidSource) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := uint64(s.now().UnixMilli())
	if ts == s.lastTS {
		s.lastSeq++
	} else {
		s.lastTS = ts
		s.lastSeq = 0
	}

	var b [16]byte
	var tsBytes [8]byte
	binary.BigEndian.PutUint64(tsBytes[:], ts)
	copy(b[:6], tsBytes[2:])
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], s.lastSeq)

	return encodeULID(b)
}

// encodeULID writes the 128 bits as 26 five-bit groups, most significant
// first. The leading group only carries 3 bits.
func encodeULID(b [16]byte) string {
	var out [26]byte
	// Two leading zero bits pad 128 bits to 130.
	var acc uint32
	bits := 2
	i := 0
	for _, v := range b {
		acc = acc<<8 | uint32(v)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[i] = crockford[(acc>>uint(bits))&31]
			i++
		}
	}
	return string(out[:])
}
