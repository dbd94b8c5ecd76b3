package code

import (
	"bytes"
	"fmt"
	"io"
)

// String renders one instruction as MNEMONIC[\t<sigil><operand>].
func (ins Instruction) String() string {
	if ins.Arg.Mode == ModeNone {
		return ins.Op.String()
	}
	return fmt.Sprintf("%s\t%s%d", ins.Op, ins.Arg.Sigil(), ins.Arg.Value)
}

// String is the listing printed by ASM: one "<address>\t<instruction>" line
// per instruction.
func (p Program) String() string {
	var out bytes.Buffer
	_ = p.Disassemble(&out)
	return out.String()
}

func (p Program) Disassemble(w io.Writer) error {
	for i, ins := range p {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", i, ins); err != nil {
			return err
		}
	}
	return nil
}
