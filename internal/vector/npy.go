package vector

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

// maxNPYHeader bounds the header dict; real headers are well under 1 KiB.
const maxNPYHeader = 1 << 16

var (
	npyDescrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	npyFortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	npyShapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

type npyHeader struct {
	order    binary.ByteOrder
	wordSize int
	fortran  bool
	shape    []int
}

// ReadNPY decodes a 2-D float32 or float64 NumPy array in C order.
// float64 input is narrowed to float32.
func ReadNPY(r io.Reader) (*Store, error) {
	return readNPY(r, -1)
}

// readNPY is ReadNPY for a stream of known total size; size < 0 means unknown.
func readNPY(r io.Reader, size int64) (*Store, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(npyMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("%w: read npy magic: %v", ErrLoad, err)
	}
	if !bytes.Equal(magic, npyMagic) {
		return nil, fmt.Errorf("%w: not an npy file", ErrLoad)
	}
	var version [2]byte
	if _, err := io.ReadFull(br, version[:]); err != nil {
		return nil, fmt.Errorf("%w: read npy version: %v", ErrLoad, err)
	}

	var headerLen, prefix int
	switch version[0] {
	case 1:
		var n uint16
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("%w: read npy header length: %v", ErrLoad, err)
		}
		headerLen, prefix = int(n), len(npyMagic)+4
	case 2, 3:
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("%w: read npy header length: %v", ErrLoad, err)
		}
		headerLen, prefix = int(n), len(npyMagic)+6
	default:
		return nil, fmt.Errorf("%w: unsupported npy version %d.%d", ErrLoad, version[0], version[1])
	}

	if headerLen > maxNPYHeader {
		return nil, fmt.Errorf("%w: npy header length %d exceeds %d", ErrLoad, headerLen, maxNPYHeader)
	}
	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(br, raw); err != nil {
		return nil, fmt.Errorf("%w: read npy header: %v", ErrLoad, err)
	}
	h, err := parseNPYHeader(string(raw))
	if err != nil {
		return nil, err
	}
	if h.fortran {
		return nil, fmt.Errorf("%w: fortran-ordered arrays are not supported", ErrLoad)
	}
	if len(h.shape) != 2 {
		return nil, fmt.Errorf("%w: expected a 2-D array, got shape %v", ErrLoad, h.shape)
	}
	n, d := h.shape[0], h.shape[1]
	avail := int64(-1)
	if size >= 0 {
		avail = size - int64(prefix+headerLen)
	}
	if err := checkShape(n, d, h.wordSize, avail); err != nil {
		return nil, err
	}

	data := make([]float32, 0, initialCap(n*d))
	buf := make([]byte, d*h.wordSize)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrLoad, i, err)
		}
		for j := 0; j < d; j++ {
			if h.wordSize == 4 {
				data = append(data, math.Float32frombits(h.order.Uint32(buf[j*4:])))
			} else {
				data = append(data, float32(math.Float64frombits(h.order.Uint64(buf[j*8:]))))
			}
		}
	}
	return newStoreFlat(d, n, data), nil
}

func parseNPYHeader(s string) (*npyHeader, error) {
	m := npyDescrRe.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: npy header has no descr", ErrLoad)
	}
	h := &npyHeader{}
	descr := m[1]
	if len(descr) != 3 {
		return nil, fmt.Errorf("%w: unsupported dtype %q", ErrLoad, descr)
	}
	switch descr[0] {
	case '<', '=', '|':
		h.order = binary.LittleEndian
	case '>':
		h.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: unsupported dtype %q", ErrLoad, descr)
	}
	switch descr[1:] {
	case "f4":
		h.wordSize = 4
	case "f8":
		h.wordSize = 8
	default:
		return nil, fmt.Errorf("%w: unsupported dtype %q (want f4 or f8)", ErrLoad, descr)
	}

	if m := npyFortranRe.FindStringSubmatch(s); m != nil {
		h.fortran = m[1] == "True"
	}

	m = npyShapeRe.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: npy header has no shape", ErrLoad)
	}
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: bad shape entry %q", ErrLoad, part)
		}
		h.shape = append(h.shape, v)
	}
	return h, nil
}

// WriteNPY encodes the store as a version 1.0 little-endian float32 array.
func WriteNPY(w io.Writer, s *Store) error {
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", s.size, s.dimensions)
	// magic(6) + version(2) + length(2) + header + '\n' must align to 64 bytes.
	pad := 64 - (len(npyMagic)+4+len(header)+1)%64
	if pad == 64 {
		pad = 0
	}
	header += strings.Repeat(" ", pad) + "\n"

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(npyMagic); err != nil {
		return fmt.Errorf("write npy magic: %w", err)
	}
	if _, err := bw.Write([]byte{1, 0}); err != nil {
		return fmt.Errorf("write npy version: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint16(len(header))); err != nil {
		return fmt.Errorf("write npy header length: %w", err)
	}
	if _, err := bw.WriteString(header); err != nil {
		return fmt.Errorf("write npy header: %w", err)
	}
	if _, err := bw.Write(float32SliceToBytes(s.data)); err != nil {
		return fmt.Errorf("write npy data: %w", err)
	}
	return bw.Flush()
}
