package accumulator

import (
	"errors"
	"io"
	"sort"

	"github.com/taurusgroup/allosaur/pkg/math/curve"
	"github.com/taurusgroup/allosaur/pkg/math/sample"
)

var (
	// ErrNotMember is returned when deleting an identifier that is not accumulated.
	ErrNotMember = errors.New("accumulator: element is not a member")
	// ErrAlreadyMember is returned when adding an identifier twice.
	ErrAlreadyMember = errors.New("accumulator: element is already a member")
	// ErrInvalidElement is returned for the single identifier y = -α.
	ErrInvalidElement = errors.New("accumulator: invalid element")
)

// Element is a member identifier in ℤᵣ.
type Element = curve.Scalar

// NewElement samples a fresh random identifier.
func NewElement(rand io.Reader) *Element {
	return sample.Scalar(rand)
}

// HashElement derives an identifier from arbitrary data.
func HashElement(data []byte) *Element {
	return curve.HashToScalar("Accumulator Element", data)
}

// Members answers membership queries about the tracked set.
//
// The accumulator value alone cannot answer them, so deletion requires a Members.
type Members interface {
	Contains(y *Element) bool
}

// MemberSet is the set of identifiers currently accumulated.
type MemberSet struct {
	elements map[string]*Element
}

// NewMemberSet returns a set containing the given elements.
func NewMemberSet(elements ...*Element) *MemberSet {
	s := &MemberSet{elements: make(map[string]*Element, len(elements))}
	for _, y := range elements {
		s.Add(y)
	}
	return s
}

func key(y *Element) string {
	data, _ := y.MarshalBinary()
	return string(data)
}

// Contains implements Members.
func (s *MemberSet) Contains(y *Element) bool {
	_, ok := s.elements[key(y)]
	return ok
}

// Add inserts y, and returns false if it was already present.
func (s *MemberSet) Add(y *Element) bool {
	k := key(y)
	if _, ok := s.elements[k]; ok {
		return false
	}
	s.elements[k] = y.Clone()
	return true
}

// Remove deletes y, and returns false if it was absent.
func (s *MemberSet) Remove(y *Element) bool {
	k := key(y)
	if _, ok := s.elements[k]; !ok {
		return false
	}
	delete(s.elements, k)
	return true
}

// Len returns the number of members.
func (s *MemberSet) Len() int {
	return len(s.elements)
}

// Elements returns the members, sorted by their encoding.
func (s *MemberSet) Elements() []*Element {
	keys := make([]string, 0, len(s.elements))
	for k := range s.elements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Element, len(keys))
	for i, k := range keys {
		out[i] = s.elements[k].Clone()
	}
	return out
}

// Clone returns an independent copy of s.
func (s *MemberSet) Clone() *MemberSet {
	return NewMemberSet(s.Elements()...)
}
