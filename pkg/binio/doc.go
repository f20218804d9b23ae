// ABOUTME: Binary cursor package shared by the container formats
// ABOUTME: Seekable readers and writers with an explicit byte order
// Package binio provides a small seekable cursor over binary streams.
//
// Both the RIFF container (little-endian) and the DSP file format
// (big-endian) read and write through it, so byte order is a property of
// the cursor rather than of each call site.
//
// Example:
//
//	r := binio.NewReader(file, binary.BigEndian)
//	sampleCount, err := r.U32()
//
//	buf := binio.NewBuffer(nil)
//	w := binio.NewWriter(buf, binary.LittleEndian)
//	w.Tag([4]byte{'R', 'I', 'F', 'F'})
//	w.U32(0)
//	if err := w.Err(); err != nil {
//	    return err
//	}
package binio
