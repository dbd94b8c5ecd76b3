package code

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var imageMagic = []byte("LBC1")

var ErrBadImage = errors.New("bad bytecode image")

// Image is a linked program together with the variable names that own its
// slots, so it can be run by a fresh machine.
type Image struct {
	Slots   []string
	Program Program
}

// Header packs the opcode into the high and the operand mode into the low
// four bits of a 16-bit word.
func Header(ins Instruction) uint16 {
	return uint16(ins.Op)<<4 | uint16(ins.Arg.Mode&0x0f)
}

// AppendInstruction appends the encoded form of ins: the big-endian header
// followed by one big-endian operand word when the mode is not ModeNone.
func AppendInstruction(dst []byte, ins Instruction) []byte {
	dst = binary.BigEndian.AppendUint16(dst, Header(ins))
	if ins.Arg.Mode != ModeNone {
		dst = binary.BigEndian.AppendUint64(dst, uint64(ins.Arg.Value))
	}
	return dst
}

// ReadInstruction decodes one instruction and reports how many bytes it used.
func ReadInstruction(b []byte) (Instruction, int, error) {
	if len(b) < 2 {
		return Instruction{}, 0, fmt.Errorf("%w: truncated header", ErrBadImage)
	}
	h := binary.BigEndian.Uint16(b)
	op := h >> 4
	if op > 0xff {
		return Instruction{}, 0, fmt.Errorf("%w: opcode %d out of range", ErrBadImage, op)
	}
	def, ok := Lookup(Opcode(op))
	if !ok {
		return Instruction{}, 0, fmt.Errorf("%w: unknown opcode %d", ErrBadImage, op)
	}
	ins := Instruction{Op: Opcode(op), Arg: Operand{Mode: Mode(h & 0x0f)}}
	if !def.Accepts(ins.Arg.Mode) {
		return Instruction{}, 0, fmt.Errorf("%w: %s with mode %d", ErrBadImage, def.Name, ins.Arg.Mode)
	}
	n := 2
	if ins.Arg.Mode != ModeNone {
		if len(b) < n+8 {
			return Instruction{}, 0, fmt.Errorf("%w: truncated operand", ErrBadImage)
		}
		ins.Arg.Value = int64(binary.BigEndian.Uint64(b[n:]))
		n += 8
	}
	return ins, n, nil
}

func Encode(img Image) []byte {
	out := append([]byte{}, imageMagic...)
	out = binary.AppendUvarint(out, uint64(len(img.Slots)))
	for _, name := range img.Slots {
		out = binary.AppendUvarint(out, uint64(len(name)))
		out = append(out, name...)
	}
	out = binary.AppendUvarint(out, uint64(len(img.Program)))
	for _, ins := range img.Program {
		out = AppendInstruction(out, ins)
	}
	return out
}

func Decode(b []byte) (Image, error) {
	if !bytes.HasPrefix(b, imageMagic) {
		return Image{}, fmt.Errorf("%w: missing magic", ErrBadImage)
	}
	b = b[len(imageMagic):]

	readCount := func(what string) (int, error) {
		v, n := binary.Uvarint(b)
		if n <= 0 || v > uint64(len(b)) {
			return 0, fmt.Errorf("%w: bad %s count", ErrBadImage, what)
		}
		b = b[n:]
		return int(v), nil
	}

	nslots, err := readCount("slot")
	if err != nil {
		return Image{}, err
	}
	img := Image{Slots: make([]string, 0, nslots)}
	for i := 0; i < nslots; i++ {
		size, err := readCount("name")
		if err != nil {
			return Image{}, err
		}
		if len(b) < size {
			return Image{}, fmt.Errorf("%w: truncated slot name", ErrBadImage)
		}
		img.Slots = append(img.Slots, string(b[:size]))
		b = b[size:]
	}

	nins, err := readCount("instruction")
	if err != nil {
		return Image{}, err
	}
	img.Program = make(Program, 0, nins)
	for i := 0; i < nins; i++ {
		ins, n, err := ReadInstruction(b)
		if err != nil {
			return Image{}, err
		}
		img.Program = append(img.Program, ins)
		b = b[n:]
	}
	if len(b) != 0 {
		return Image{}, fmt.Errorf("%w: %d trailing bytes", ErrBadImage, len(b))
	}
	return img, nil
}
