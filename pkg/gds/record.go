package gds

import (
	"encoding/binary"
	"io"
	"math"
)

// Record types, high byte of the record header.
const (
	recHeader   = 0x00
	recBgnLib   = 0x01
	recLibName  = 0x02
	recUnits    = 0x03
	recEndLib   = 0x04
	recBgnStr   = 0x05
	recStrName  = 0x06
	recEndStr   = 0x07
	recBoundary = 0x08
	recPath     = 0x09
	recSRef     = 0x0A
	recARef     = 0x0B
	recText     = 0x0C
	recLayer    = 0x0D
	recDatatype = 0x0E
	recWidth    = 0x0F
	recXY       = 0x10
	recEndEl    = 0x11
	recSName    = 0x12
	recColRow   = 0x13
	recTextType = 0x16
	recString   = 0x19
	recSTrans   = 0x1A
	recMag      = 0x1B
	recAngle    = 0x1C
)

// Data types, low byte of the record header.
const (
	dtNone   = 0x00
	dtBits   = 0x01
	dtInt16  = 0x02
	dtInt32  = 0x03
	dtReal8  = 0x05
	dtString = 0x06
)

// maxRecordLen is the largest record the 16-bit length field can describe.
const maxRecordLen = 0xFFFF &^ 1

// stransReflect is the STRANS bit for reflection about the x axis.
const stransReflect = 0x8000

// EncodeReal8 converts v to the GDSII 8-byte real: sign bit, 7-bit
// excess-64 base-16 exponent and 56-bit mantissa.
func EncodeReal8(v float64) uint64 {
	if v == 0 {
		return 0
	}
	var sign uint64
	if v < 0 {
		sign = 1 << 63
		v = -v
	}
	exp := 0
	for v >= 1 {
		v /= 16
		exp++
	}
	for v < 1.0/16 {
		v *= 16
		exp--
	}
	mant := uint64(math.Round(v * (1 << 56)))
	if mant >= 1<<56 {
		mant >>= 4
		exp++
	}
	return sign | uint64(exp+64)<<56 | mant
}

// DecodeReal8 converts a GDSII 8-byte real to float64.
func DecodeReal8(b uint64) float64 {
	if b&^(1<<63) == 0 {
		return 0
	}
	exp := int((b>>56)&0x7F) - 64
	mant := float64(b&(1<<56-1)) / (1 << 56)
	v := mant * math.Pow(16, float64(exp))
	if b>>63 != 0 {
		v = -v
	}
	return v
}

// recordWriter buffers records into w and remembers the first error.
type recordWriter struct {
	w   io.Writer
	err error
	buf []byte
}

func (rw *recordWriter) record(typ, dt byte, payload []byte) {
	if rw.err != nil {
		return
	}
	n := 4 + len(payload)
	rw.buf = rw.buf[:0]
	rw.buf = binary.BigEndian.AppendUint16(rw.buf, uint16(n))
	rw.buf = append(rw.buf, typ, dt)
	rw.buf = append(rw.buf, payload...)
	_, rw.err = rw.w.Write(rw.buf)
}

func (rw *recordWriter) empty(typ byte) {
	rw.record(typ, dtNone, nil)
}

func (rw *recordWriter) int16s(typ byte, vals ...int16) {
	p := make([]byte, 0, 2*len(vals))
	for _, v := range vals {
		p = binary.BigEndian.AppendUint16(p, uint16(v))
	}
	rw.record(typ, dtInt16, p)
}

func (rw *recordWriter) int32s(typ byte, vals ...int32) {
	p := make([]byte, 0, 4*len(vals))
	for _, v := range vals {
		p = binary.BigEndian.AppendUint32(p, uint32(v))
	}
	rw.record(typ, dtInt32, p)
}

func (rw *recordWriter) reals(typ byte, vals ...float64) {
	p := make([]byte, 0, 8*len(vals))
	for _, v := range vals {
		p = binary.BigEndian.AppendUint64(p, EncodeReal8(v))
	}
	rw.record(typ, dtReal8, p)
}

func (rw *recordWriter) bits(typ byte, v uint16) {
	rw.record(typ, dtBits, binary.BigEndian.AppendUint16(nil, v))
}

func (rw *recordWriter) str(typ byte, s string) {
	p := []byte(s)
	if len(p)%2 == 1 {
		p = append(p, 0)
	}
	rw.record(typ, dtString, p)
}

// record is one parsed stream record.
type record struct {
	typ  byte
	dt   byte
	data []byte
}

func readRecord(r io.Reader) (record, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return record{}, err
	}
	n := int(binary.BigEndian.Uint16(hdr[:2]))
	if n < 4 {
		return record{}, errShortRecord
	}
	data := make([]byte, n-4)
	if _, err := io.ReadFull(r, data); err != nil {
		return record{}, err
	}
	return record{typ: hdr[2], dt: hdr[3], data: data}, nil
}

func (r record) int16s() []int16 {
	out := make([]int16, len(r.data)/2)
	for i := range out {
		out[i] = int16(binary.BigEndian.Uint16(r.data[2*i:]))
	}
	return out
}

func (r record) int32s() []int32 {
	out := make([]int32, len(r.data)/4)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(r.data[4*i:]))
	}
	return out
}

func (r record) reals() []float64 {
	out := make([]float64, len(r.data)/8)
	for i := range out {
		out[i] = DecodeReal8(binary.BigEndian.Uint64(r.data[8*i:]))
	}
	return out
}

func (r record) str() string {
	b := r.data
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}
