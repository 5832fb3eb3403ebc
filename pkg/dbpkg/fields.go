package dbpkg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DecimalSize is the width of a decimal field: its canonical text, NUL padded.
const DecimalSize = 32

// RecordWriter fills a fixed-size record field by field in little endian.
// The first error is kept and returned by Bytes.
type RecordWriter struct {
	buf []byte
	off int
	err error
}

// NewRecordWriter returns a writer for a record of size bytes.
func NewRecordWriter(size int) *RecordWriter {
	return &RecordWriter{buf: make([]byte, size)}
}

func (w *RecordWriter) next(n int) []byte {
	if w.err != nil {
		return nil
	}

	if w.off+n > len(w.buf) {
		w.err = fmt.Errorf("field at %d overflows %d byte record", w.off, len(w.buf))
		return nil
	}

	b := w.buf[w.off : w.off+n]
	w.off += n

	return b
}

// Int32 writes v.
func (w *RecordWriter) Int32(v int32) {
	if b := w.next(4); b != nil {
		binary.LittleEndian.PutUint32(b, uint32(v))
	}
}

// Int64 writes v.
func (w *RecordWriter) Int64(v int64) {
	if b := w.next(8); b != nil {
		binary.LittleEndian.PutUint64(b, uint64(v))
	}
}

// Bool writes v as one byte.
func (w *RecordWriter) Bool(v bool) {
	if b := w.next(1); b != nil && v {
		b[0] = 1
	}
}

// String writes s into n bytes, NUL padded. A longer s is cut at the last
// rune boundary that fits.
func (w *RecordWriter) String(s string, n int) {
	if b := w.next(n); b != nil {
		copy(b, Truncate(s, n))
	}
}

// Truncate returns the longest prefix of s that is at most n bytes and does
// not split a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n]
}

// Decimal writes d as text. Values whose text does not fit are an error.
func (w *RecordWriter) Decimal(d decimal.Decimal) {
	s := d.String()
	if len(s) > DecimalSize {
		if w.err == nil {
			w.err = fmt.Errorf("decimal %s exceeds %d bytes", s, DecimalSize)
		}

		return
	}

	w.String(s, DecimalSize)
}

// Skip leaves n zero bytes.
func (w *RecordWriter) Skip(n int) {
	w.next(n)
}

// Bytes returns the encoded record.
func (w *RecordWriter) Bytes() ([]byte, error) {
	return w.buf, w.err
}

// RecordReader is the counterpart of RecordWriter.
type RecordReader struct {
	buf []byte
	off int
	err error
}

// NewRecordReader returns a reader over one record.
func NewRecordReader(b []byte) *RecordReader {
	return &RecordReader{buf: b}
}

func (r *RecordReader) next(n int) []byte {
	if r.err != nil {
		return nil
	}

	if r.off+n > len(r.buf) {
		r.err = fmt.Errorf("field at %d overflows %d byte record", r.off, len(r.buf))
		return nil
	}

	b := r.buf[r.off : r.off+n]
	r.off += n

	return b
}

// Int32 reads an int32.
func (r *RecordReader) Int32() int32 {
	if b := r.next(4); b != nil {
		return int32(binary.LittleEndian.Uint32(b))
	}

	return 0
}

// Int64 reads an int64.
func (r *RecordReader) Int64() int64 {
	if b := r.next(8); b != nil {
		return int64(binary.LittleEndian.Uint64(b))
	}

	return 0
}

// Bool reads one byte as a bool.
func (r *RecordReader) Bool() bool {
	if b := r.next(1); b != nil {
		return b[0] != 0
	}

	return false
}

// String reads an n byte NUL padded string.
func (r *RecordReader) String(n int) string {
	b := r.next(n)
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	return string(b)
}

// Decimal reads a decimal field. An empty field is zero.
func (r *RecordReader) Decimal() decimal.Decimal {
	s := r.String(DecimalSize)
	if s == "" || r.err != nil {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		r.err = err
		return decimal.Zero
	}

	return d
}

// Skip ignores n bytes.
func (r *RecordReader) Skip(n int) {
	r.next(n)
}

// Err returns the first decoding error.
func (r *RecordReader) Err() error {
	return r.err
}
