package alloc

// Block identifies one allocation made by a Backend.
// The zero Block is the null block and never refers to live memory.
type Block struct {
	Addr uint32
	Gen  uint32
	Size int64
}

// IsNil reports whether b is the null block.
func (b Block) IsNil() bool {
	return b.Addr == 0
}

// Backend provides the underlying storage for blocks.
type Backend interface {
	// Alloc returns a zeroed block of exactly size bytes.
	// Exhaustion is reported as an error of kind allocation.
	Alloc(size int64) (Block, error)

	// Free releases a block. Freeing a released or foreign block is an error.
	Free(b Block) error

	// Bytes returns the contents of a live block.
	Bytes(b Block) ([]byte, error)

	// Live returns the number of outstanding blocks.
	Live() int

	// Close releases everything held by the backend.
	Close() error
}
