// Arena allocator implementing the three-tier size discipline: small
// permanent data bump-allocates from a mini-pool and is never freed
// individually; medium allocations promote to a plain heap slice; large
// allocations promote again to a slice sized against the OS page size,
// standing in for the reference implementation's mmap tier. Content is
// copied across each promotion; callers hold byte offsets into the
// arena, never slices of its backing store, so an offset stays valid
// across a promotion.
package main

import "golang.org/x/sys/unix"

// ArenaScope names which lifetime an arena is reclaimed at.
type ArenaScope int

const (
	ArenaGlobal ArenaScope = iota // whole compilation
	ArenaFrame                    // one function frame
	ArenaBlock                    // one nested block
)

func (s ArenaScope) String() string {
	switch s {
	case ArenaGlobal:
		return "global"
	case ArenaFrame:
		return "frame"
	case ArenaBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Size-tier thresholds.
const (
	arenaMiniCap = 1 << 10  // 1 KB
	arenaHeapCap = 64 << 10 // 64 KB
)

// Growth factor applied when a tier's backing store must expand without
// crossing into the next tier.
const (
	arenaGrowthNumerator   = 13
	arenaGrowthDenominator = 10
)

// ArenaTier names which backing store currently holds an Arena's bytes.
type ArenaTier int

const (
	TierMini ArenaTier = iota
	TierHeap
	TierMapped
)

func (t ArenaTier) String() string {
	switch t {
	case TierMini:
		return "mini"
	case TierHeap:
		return "heap"
	case TierMapped:
		return "mapped"
	default:
		return "unknown"
	}
}

// Arena is a bump allocator: individual allocations are never freed, the
// whole arena is reclaimed at scope exit via Reset.
type Arena struct {
	scope ArenaScope
	tier  ArenaTier
	buf   []byte
	used  int

	pageSize int
}

func NewArena(scope ArenaScope) *Arena {
	return &Arena{scope: scope, tier: TierMini, buf: make([]byte, 0, 64), pageSize: pageSize()}
}

func pageSize() int {
	n := unix.Getpagesize()
	if n <= 0 {
		return 4096
	}
	return n
}

// Alloc reserves n zeroed bytes and returns their offset into the
// arena's current backing store.
func (a *Arena) Alloc(n int) int {
	a.growFor(n)
	off := a.used
	a.buf = a.buf[:a.used+n]
	a.used += n
	return off
}

// Bytes returns the n bytes starting at off in the arena's current
// backing store. Re-derive this after any Alloc call that may have
// promoted the arena, rather than holding a slice across a promotion.
func (a *Arena) Bytes(off, n int) []byte { return a.buf[off : off+n] }

func (a *Arena) Used() int       { return a.used }
func (a *Arena) Tier() ArenaTier { return a.tier }

// growFor ensures n more bytes of capacity are available, promoting
// tiers as the resulting size crosses each threshold.
func (a *Arena) growFor(n int) {
	need := a.used + n
	if need <= cap(a.buf) {
		return
	}
	newCap := cap(a.buf)
	if newCap == 0 {
		newCap = 64
	}
	for newCap < need {
		newCap = newCap * arenaGrowthNumerator / arenaGrowthDenominator
		if newCap < need {
			newCap = need
		}
	}

	newTier := a.tier
	switch {
	case newCap > arenaHeapCap:
		newTier = TierMapped
		if a.pageSize > 0 {
			pages := (newCap + a.pageSize - 1) / a.pageSize
			newCap = pages * a.pageSize
		}
	case newCap > arenaMiniCap:
		if newTier == TierMini {
			newTier = TierHeap
		}
	}

	nb := make([]byte, a.used, newCap)
	copy(nb, a.buf[:a.used])
	a.buf = nb
	a.tier = newTier
}

// Reset reclaims the whole arena at once.
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
	a.used = 0
	a.tier = TierMini
}
