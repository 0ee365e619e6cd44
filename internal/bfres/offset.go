package bfres

import (
	"fmt"

	"github.com/jchantrell/fresdb/internal/binio"
)

// Offset is a self-relative pointer read from the file. A zero raw value
// means the target does not exist.
type Offset struct {
	// Address is where the offset field was read
	Address int
	Raw     int32
	// Target is the resolved absolute position; meaningless when Absent
	Target int
}

func (o Offset) Absent() bool {
	return o.Raw == 0
}

func (o Offset) String() string {
	if o.Absent() {
		return "<absent>"
	}
	return fmt.Sprintf("0x%X", o.Target)
}

func (d *decoder) offset() Offset {
	if d.err != nil {
		return Offset{}
	}
	addr := d.c.Tell()
	raw, err := d.c.Int32()
	if err != nil {
		d.fail(err)
		return Offset{}
	}
	o := Offset{Address: addr, Raw: raw}
	if raw == 0 {
		return o
	}

	base := addr
	if d.origin == OriginAfterField {
		base += 4
	}
	o.Target = base + int(raw)
	// The end of the data is a valid target for an empty blob; reads of
	// any size there fail as truncated.
	if o.Target < 0 || o.Target > d.c.Len() {
		d.fail(binio.NewError(binio.KindOffsetOutOfBounds, addr, fmt.Sprintf("[0, %d]", d.c.Len()), o.Target))
		return Offset{}
	}
	return o
}

// name reads a name offset and resolves it into the string it points at.
// String pool entries carry a uint32 length before the first character and
// are zero-terminated; the terminator is what ends the read.
func (d *decoder) name() string {
	o := d.offset()
	if d.err != nil || o.Absent() {
		return ""
	}
	return d.stringAt(o)
}

func (d *decoder) stringAt(o Offset) string {
	var s string
	err := d.c.At(o.Target, func() error {
		var err error
		s, err = d.c.CString()
		return err
	})
	d.fail(err)
	return s
}
