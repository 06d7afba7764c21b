package tagtree

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrMalformedContainer is returned when the byte stream ends prematurely
// or carries an unrecognised tag kind.
var ErrMalformedContainer = errors.New("tagtree: malformed container")

// Parse reads a single tagged value from data, rooted at a named tag (the
// usual NBT shape: a root Compound). Returns a nil Tag if the stream opens
// with a bare End tag.
func Parse(data []byte) (*Tag, error) {
	r := &reader{src: data}
	tag, err := r.readNamed()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	return tag, nil
}

type reader struct {
	src []byte
	pos int
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.src) {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.src[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readN(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.src) {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.src[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readUint16() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) readInt32() (int32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (r *reader) readInt64() (int64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// readNamed reads one (kind, name, payload) tuple, as found at the root of
// the stream and inside a Compound.
func (r *reader) readNamed() (*Tag, error) {
	kb, err := r.readByte()
	if err != nil {
		return nil, err
	}
	kind := Kind(kb)
	if kind == KindEnd {
		return nil, nil
	}

	nameLen, err := r.readUint16()
	if err != nil {
		return nil, err
	}
	nameBytes, err := r.readN(int(nameLen))
	if err != nil {
		return nil, err
	}
	name := string(nameBytes)

	value, err := r.readPayload(kind)
	if err != nil {
		return nil, err
	}
	return &Tag{Kind: kind, Name: name, Value: value}, nil
}

// readPayload reads the payload for kind, with no surrounding name (used
// for list elements too, via readUnnamed).
func (r *reader) readPayload(kind Kind) (any, error) {
	switch kind {
	case KindByte:
		b, err := r.readByte()
		return int8(b), err
	case KindShort:
		b, err := r.readN(2)
		if err != nil {
			return nil, err
		}
		return int16(binary.BigEndian.Uint16(b)), nil
	case KindInt:
		v, err := r.readInt32()
		return v, err
	case KindLong:
		v, err := r.readInt64()
		return v, err
	case KindFloat:
		b, err := r.readN(4)
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
	case KindDouble:
		b, err := r.readN(8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	case KindByteArray:
		n, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		b, err := r.readN(int(n))
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	case KindString:
		n, err := r.readUint16()
		if err != nil {
			return nil, err
		}
		b, err := r.readN(int(n))
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case KindList:
		return r.readList()
	case KindCompound:
		return r.readCompound()
	case KindIntArray:
		n, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		out := make([]int32, n)
		for i := range out {
			v, err := r.readInt32()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case KindLongArray:
		n, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		out := make([]int64, n)
		for i := range out {
			v, err := r.readInt64()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown tag kind %d", byte(kind))
	}
}

func (r *reader) readList() (*List, error) {
	kb, err := r.readByte()
	if err != nil {
		return nil, err
	}
	elemKind := Kind(kb)

	count, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("negative list length %d", count)
	}

	items := make([]any, count)
	if elemKind != KindEnd {
		for i := range items {
			v, err := r.readPayload(elemKind)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
	}
	return &List{ElemKind: elemKind, Items: items}, nil
}

func (r *reader) readCompound() (*Compound, error) {
	c := NewCompound()
	for {
		tag, err := r.readNamed()
		if err != nil {
			return nil, err
		}
		if tag == nil {
			return c, nil
		}
		c.Set(tag.Name, tag)
	}
}
