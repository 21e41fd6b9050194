package main

import "hash/fnv"

// Ident is the dense identifier id assigned to a unique interned name.
// Id 0 is reserved (never assigned to a real name) so a zero Ident can
// mean "none" without a separate boolean.
type Ident uint32

// IdentMap interns byte-string keys into dense Ident values using double
// hashing open addressing: primary probe by hash&mask, a single second
// probe by the upper hash bits, then linear scan. Keys live in one
// growable byte pool rather than per-entry allocations.
type IdentMap struct {
	tab  []uint32 // bucket -> id (0 = empty)
	keys []byte   // zero-terminated key pool
	pos  []uint32 // id -> offset into keys
	tbit uint     // log2(len(tab))
	next Ident
}

const identMapMinBuckets = 16

// NewIdentMap preallocates for an estimated identifier count.
func NewIdentMap(estCount int) *IdentMap {
	n := identMapMinBuckets
	bit := uint(4)
	for n < estCount*4 {
		n <<= 1
		bit++
	}
	return &IdentMap{
		tab:  make([]uint32, n),
		keys: make([]byte, 0, estCount*8),
		pos:  make([]uint32, 1, estCount+1),
		tbit: bit,
		next: 1,
	}
}

func fnvHash(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b)
	return h.Sum32()
}

func (m *IdentMap) mask() uint32 { return uint32(len(m.tab)) - 1 }

func (m *IdentMap) check(b []byte, x uint32) bool {
	off := m.pos[x]
	end := off + uint32(len(b))
	if int(end) >= len(m.keys) || m.keys[end] != 0 {
		return false
	}
	for i, c := range b {
		if m.keys[int(off)+i] != c {
			return false
		}
	}
	return true
}

func (m *IdentMap) add(b []byte, bucket uint32) Ident {
	id := m.next
	m.next++
	m.pos = append(m.pos, uint32(len(m.keys)))
	m.keys = append(m.keys, b...)
	m.keys = append(m.keys, 0)
	m.tab[bucket] = uint32(id)
	if int(id)*2 > len(m.tab) {
		m.grow()
	}
	return id
}

func (m *IdentMap) grow() {
	nt := make([]uint32, len(m.tab)*2)
	mask := uint32(len(nt)) - 1
	tbit := m.tbit + 1
	for _, id := range m.tab {
		if id == 0 {
			continue
		}
		off := m.pos[id]
		end := int(off)
		for end < len(m.keys) && m.keys[end] != 0 {
			end++
		}
		h := fnvHash(m.keys[off:end])
		// same probe order as GetAdd: primary, one second probe, then linear
		v := h & mask
		if nt[v] != 0 {
			h2 := h >> tbit
			if h2 == 0 {
				h2 = 1
			}
			v = (v + h2) & mask
			for nt[v] != 0 {
				v = (v + 1) & mask
			}
		}
		nt[v] = id
	}
	m.tab = nt
	m.tbit = tbit
}

// GetAdd returns the Ident for b, interning it if not already present.
func (m *IdentMap) GetAdd(b []byte) Ident {
	h := fnvHash(b)
	mask := m.mask()

	v := h & mask
	x := m.tab[v]
	if x == 0 {
		return Ident(m.add(b, v))
	}
	if m.check(b, x) {
		return Ident(x)
	}

	h2 := h >> m.tbit
	if h2 == 0 {
		h2 = 1
	}
	v = (v + h2) & mask
	x = m.tab[v]
	if x == 0 {
		return Ident(m.add(b, v))
	}
	if m.check(b, x) {
		return Ident(x)
	}

	for {
		v = (v + 1) & mask
		x = m.tab[v]
		if x == 0 {
			return Ident(m.add(b, v))
		}
		if m.check(b, x) {
			return Ident(x)
		}
	}
}

// Name returns the interned bytes for id. Panics on id 0 (never assigned).
func (m *IdentMap) Name(id Ident) []byte {
	if id == 0 {
		panic("IdentMap.Name: id 0 is never assigned")
	}
	off := m.pos[id]
	end := int(off)
	for end < len(m.keys) && m.keys[end] != 0 {
		end++
	}
	return m.keys[off:end]
}

// Count returns the number of distinct identifiers interned so far.
func (m *IdentMap) Count() int { return int(m.next) - 1 }
