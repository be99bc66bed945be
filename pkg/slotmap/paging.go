package slotmap

import "math"

// PagedAddress is the (page, offset) decomposition of a linear slot index
// given a power-of-two page size.
type PagedAddress struct {
	Page   uint32
	Offset uint32
}

// isPowerOfTwo reports whether p is a positive power of two.
func isPowerOfTwo(p uint32) bool {
	return p != 0 && p&(p-1) == 0
}

// pageSizeShift returns log2(pageSize), valid only when isPowerOfTwo(pageSize).
func pageSizeShift(pageSize uint32) uint {
	shift := uint(0)
	for 1<<shift < pageSize {
		shift++
	}

	return shift
}

// toLinearIndex folds a PagedAddress back into a linear slot index.
func toLinearIndex(addr PagedAddress, pageSize uint32) uint64 {
	return uint64(addr.Page)*uint64(pageSize) + uint64(addr.Offset)
}

// fromLinearIndex decomposes a linear slot index into a PagedAddress. Since
// pageSize is a power of two this is a shift/mask rather than a division.
func fromLinearIndex(i uint64, pageSize uint32) PagedAddress {
	shift := pageSizeShift(pageSize)
	mask := uint64(pageSize) - 1

	return PagedAddress{
		Page:   uint32(i >> shift),
		Offset: uint32(i & mask),
	}
}

// maxPageCount returns the maximum number of pages addressable with a
// pageSize-sized page: min(ceil(2^32/pageSize), the platform's maximum
// slice length).
func maxPageCount(pageSize uint32) uint64 {
	byIndexSpace := (uint64(1)<<32 + uint64(pageSize) - 1) / uint64(pageSize)

	platformMax := uint64(math.MaxInt64)
	if byIndexSpace < platformMax {
		return byIndexSpace
	}

	return platformMax
}

// findPagedAddress returns the PagedAddress for key's index, or an error if
// the key is invalid or its index falls outside the currently allocated
// pages. It never panics; callers decide whether to escalate.
func findPagedAddress(pageCount uint64, pageSize uint32, key Key) (PagedAddress, error) {
	if !key.IsValid() {
		return PagedAddress{}, ErrInvalidKey
	}

	addr := fromLinearIndex(uint64(key.Index()), pageSize)
	if uint64(addr.Page) >= pageCount {
		return PagedAddress{}, ErrIndexOutOfRange
	}

	return addr, nil
}
