package vector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ReadVec decodes the compact binary matrix format: dimension (uint32 LE),
// count (uint32 LE), then count*dimension float32 LE values in row order.
func ReadVec(r io.Reader) (*Store, error) {
	return readVec(r, -1)
}

// readVec is ReadVec for a stream of known total size; size < 0 means unknown.
func readVec(r io.Reader, size int64) (*Store, error) {
	br := bufio.NewReader(r)
	var dim, n uint32
	if err := binary.Read(br, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("%w: read dimensions: %v", ErrLoad, err)
	}
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("%w: read count: %v", ErrLoad, err)
	}
	avail := int64(-1)
	if size >= 0 {
		avail = size - 8
	}
	if err := checkShape(int(n), int(dim), 4, avail); err != nil {
		return nil, err
	}
	d := int(dim)
	data := make([]float32, 0, initialCap(int(n)*d))
	buf := make([]byte, d*4)
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: read row %d: %v", ErrLoad, i, err)
		}
		data = append(data, bytesToFloat32Slice(buf)...)
	}
	return newStoreFlat(d, int(n), data), nil
}

// WriteVec encodes the store in the compact binary matrix format.
func WriteVec(w io.Writer, s *Store) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint32(s.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(s.size)); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	if _, err := bw.Write(float32SliceToBytes(s.data)); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	return bw.Flush()
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
