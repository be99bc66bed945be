package slotmap

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Options configures a DenseSlotMap or SparseSlotMap at construction.
//
// The zero value is not valid on its own; pass Options through normalize
// (done internally by NewDenseSlotMap/NewSparseSlotMap) or construct one via
// DefaultOptions.
type Options struct {
	// PageSize is the number of slots per page. Must be a positive power of
	// two no greater than maxPageSize. Zero means DefaultPageSize.
	PageSize uint32

	// FreeIndicesLimit is the free-queue threshold: retired keys are only
	// handed back out for reuse once the queue's length strictly exceeds
	// this value. It is clamped into [0, PageSize] rather than rejected; see
	// Options.normalize.
	FreeIndicesLimit uint32
}

// DefaultOptions returns the Options used when NewDenseSlotMap/
// NewSparseSlotMap are called with a zero Options value.
func DefaultOptions() Options {
	return Options{
		PageSize:         DefaultPageSize,
		FreeIndicesLimit: DefaultFreeIndicesLimit,
	}
}

// advisory carries a non-fatal note produced while normalizing Options, e.g.
// a FreeIndicesLimit clamp. It is never returned as an error.
type advisory struct {
	msg string
}

func (a advisory) String() string {
	return a.msg
}

// normalize fills in defaults (a zero PageSize becomes DefaultPageSize; a
// zero FreeIndicesLimit becomes DefaultFreeIndicesLimit only when PageSize
// was zero too), validates PageSize, and clamps FreeIndicesLimit into
// [0, PageSize]. The returned advisory is non-nil only when a clamp actually
// changed the caller's requested value.
func (o Options) normalize() (Options, *advisory, error) {
	out := o

	if out.PageSize == 0 {
		out.PageSize = DefaultPageSize

		if out.FreeIndicesLimit == 0 {
			out.FreeIndicesLimit = DefaultFreeIndicesLimit
		}
	}

	if !isPowerOfTwo(out.PageSize) {
		return Options{}, nil, fmt.Errorf("slotmap: PageSize %d is not a power of two", out.PageSize)
	}

	if out.PageSize > maxPageSize {
		return Options{}, nil, fmt.Errorf("slotmap: PageSize %d exceeds maximum %d", out.PageSize, maxPageSize)
	}

	var note *advisory

	if out.FreeIndicesLimit > out.PageSize {
		note = &advisory{msg: fmt.Sprintf(
			"FreeIndicesLimit %d exceeds PageSize %d, clamped to %d",
			out.FreeIndicesLimit, out.PageSize, out.PageSize,
		)}
		out.FreeIndicesLimit = out.PageSize
	}

	return out, note, nil
}

// fileOptions is the on-disk JSONC shape accepted by LoadOptions. Fields are
// pointers so an absent key is distinguishable from an explicit zero.
type fileOptions struct {
	PageSize         *uint32 `json:"page_size"`
	FreeIndicesLimit *uint32 `json:"free_indices_limit"`
}

// LoadOptions reads Options from a JSON-with-Comments file at path. Missing
// fields fall back to DefaultOptions' values, not zero.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("slotmap: reading options file %s: %w", path, err)
	}

	return parseOptions(data)
}

func parseOptions(data []byte) (Options, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Options{}, fmt.Errorf("slotmap: invalid JSONC: %w", err)
	}

	var fo fileOptions

	if err := json.Unmarshal(standardized, &fo); err != nil {
		return Options{}, fmt.Errorf("slotmap: invalid JSON: %w", err)
	}

	opts := DefaultOptions()

	if fo.PageSize != nil {
		opts.PageSize = *fo.PageSize
	}

	if fo.FreeIndicesLimit != nil {
		opts.FreeIndicesLimit = *fo.FreeIndicesLimit
	}

	return opts, nil
}
