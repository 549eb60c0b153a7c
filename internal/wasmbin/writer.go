package wasmbin

import (
	"bytes"
)

// MemoryExport is the export name of the memory in modules built by MemoryModule.
const MemoryExport = "memory"

// PageSize is the size of one WebAssembly memory page.
const PageSize = 65536

// MaxPages is the page limit of a 32-bit linear memory.
const MaxPages = 65536

const (
	sectionMemory byte = 5
	sectionExport byte = 7

	kindMemory byte = 2

	limitsMinOnly byte = 0x00
	limitsMinMax  byte = 0x01
)

var header = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
}

// Writer provides buffered writing utilities for WASM binary encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteU32 writes an unsigned LEB128 encoded uint32.
func (w *Writer) WriteU32(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// WriteName writes a UTF-8 encoded name (length-prefixed).
func (w *Writer) WriteName(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf.WriteString(s)
}

// Section writes a section with the given id whose body is produced by fn.
func (w *Writer) Section(id byte, fn func(body *Writer)) {
	body := NewWriter()
	fn(body)
	w.Byte(id)
	w.WriteU32(uint32(body.Len()))
	w.WriteBytes(body.Bytes())
}

// MemoryModule returns a module declaring one memory of minPages pages that may
// grow up to maxPages, exported as MemoryExport. A maxPages of zero leaves the
// memory without an upper limit.
func MemoryModule(minPages, maxPages uint32) []byte {
	w := NewWriter()
	w.WriteBytes(header)

	w.Section(sectionMemory, func(body *Writer) {
		body.WriteU32(1)
		if maxPages == 0 {
			body.Byte(limitsMinOnly)
			body.WriteU32(minPages)
			return
		}
		body.Byte(limitsMinMax)
		body.WriteU32(minPages)
		body.WriteU32(maxPages)
	})

	w.Section(sectionExport, func(body *Writer) {
		body.WriteU32(1)
		body.WriteName(MemoryExport)
		body.Byte(kindMemory)
		body.WriteU32(0)
	})

	return w.Bytes()
}
