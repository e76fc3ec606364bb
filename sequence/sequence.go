package sequence

import (
	"fmt"
)

// Base codes used by the fingerprinting layer. CodeN marks any base that
// cannot take part in a 2-bit k-mer; ingestion only admits A,C,G,T,N so in
// practice CodeN means N.
const (
	CodeA = byte(0)
	CodeC = byte(1)
	CodeG = byte(2)
	CodeT = byte(3)
	CodeN = byte(4)
)

var baseCodes [256]byte
var complements [256]byte

func init() {
	for i := range baseCodes {
		baseCodes[i] = 0xFF
	}
	for b, code := range map[byte]byte{'A': CodeA, 'C': CodeC, 'G': CodeG, 'T': CodeT, 'N': CodeN} {
		baseCodes[b] = code
		baseCodes[b+32] = code //lowercase
	}
	for i := range complements {
		complements[i] = byte(i)
	}
	for a, b := range map[byte]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A', 'a': 't', 'c': 'g', 'g': 'c', 't': 'a'} {
		complements[a] = b
	}
}

// Sequence is one immutable stored sequence. The original bytes are kept
// untouched so that graph paths can reconstruct them exactly; 2-bit codes
// are derived on demand via Code.
type Sequence struct {
	id   int
	name string
	data []byte
}

func (s *Sequence) ID() int {
	return s.id
}

func (s *Sequence) Name() string {
	if s.name == "" {
		return fmt.Sprint(s.id)
	}
	return s.name
}

func (s *Sequence) Len() int {
	return len(s.data)
}

// Bytes returns the underlying data. Callers must not modify it.
func (s *Sequence) Bytes() []byte {
	return s.data
}

// Slice returns the bytes in [start,end), clamped to the sequence.
func (s *Sequence) Slice(start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > len(s.data) {
		end = len(s.data)
	}
	if start >= end {
		return nil
	}
	return s.data[start:end]
}

// Code returns the 2-bit code of the base at i, or CodeN for ambiguity.
func (s *Sequence) Code(i int) byte {
	return baseCodes[s.data[i]]
}

func (s *Sequence) String() string {
	return string(s.data)
}

// ReverseComplement returns the reverse-complement of a byte slice. Case is
// preserved, N complements to itself.
func ReverseComplement(data []byte) []byte {
	rc := make([]byte, len(data))
	for i, b := range data {
		rc[len(data)-1-i] = complements[b]
	}
	return rc
}

// ValidByte reports whether b is in the accepted alphabet.
func ValidByte(b byte) bool {
	return baseCodes[b] != 0xFF
}
