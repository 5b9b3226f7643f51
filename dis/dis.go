// Package dis supports analysis of compiled chunks by disassembling them.
// It decodes instructions using only the chunk's code stream, line table and
// constant pool, with operand widths taken from the `op` package.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/loxvm/chunk"
	"github.com/deepnoodle-ai/loxvm/op"
	"github.com/deepnoodle-ai/loxvm/value"
	"github.com/fatih/color"
)

// Instruction represents a single decoded instruction and its operands.
type Instruction struct {
	Offset   int          `json:"offset"`
	Line     int          `json:"line"`
	SameLine bool         `json:"same_line,omitempty"`
	Name     string       `json:"name"`
	Opcode   op.Code      `json:"opcode"`
	Operands []byte       `json:"operands,omitempty"`
	Constant *value.Value `json:"constant,omitempty"`
}

// Disassemble returns a parsed representation of the given chunk.
func Disassemble(c *chunk.Chunk) ([]Instruction, error) {
	var instructions []Instruction
	prevLine := -1
	iter := chunk.NewInstructionIter(c)
	for {
		raw, ok := iter.Next()
		if !ok {
			break
		}
		info := op.GetInfo(raw.Opcode)
		instr := Instruction{
			Offset:   raw.Offset,
			Line:     raw.Line,
			SameLine: raw.Line == prevLine,
			Name:     raw.Opcode.String(),
			Opcode:   raw.Opcode,
			Operands: raw.Operands,
		}
		prevLine = raw.Line
		if info.Valid() && len(raw.Operands) != info.OperandCount {
			return nil, fmt.Errorf("truncated %s instruction at offset %d", info.Name, raw.Offset)
		}
		if raw.Opcode == op.Constant {
			constant, err := getConstantValue(c, int(raw.Operands[0]))
			if err != nil {
				return nil, err
			}
			instr.Constant = &constant
		}
		instructions = append(instructions, instr)
	}
	return instructions, nil
}

// Print writes a listing of the given instructions, one per line, in the
// form "0000  123 CONSTANT            0 '1.2'". The line column shows "|"
// when an instruction comes from the same line as the one before it.
func Print(instructions []Instruction, writer io.Writer) {
	bold := color.New(color.Bold).SprintFunc()
	for _, instr := range instructions {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%04d ", instr.Offset))
		if instr.SameLine {
			sb.WriteString(color.HiBlackString("   | "))
		} else {
			sb.WriteString(fmt.Sprintf("%4d ", instr.Line))
		}
		if instr.Constant != nil {
			sb.WriteString(bold(fmt.Sprintf("%-16s", instr.Name)))
			sb.WriteString(fmt.Sprintf(" %4d ", instr.Operands[0]))
			sb.WriteString(formatConstant(*instr.Constant))
		} else {
			sb.WriteString(bold(instr.Name))
		}
		fmt.Fprintln(writer, sb.String())
	}
}

// PrintChunk disassembles c and writes its listing under a "== name ==" header.
func PrintChunk(c *chunk.Chunk, name string, writer io.Writer) error {
	instructions, err := Disassemble(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(writer, "== %s ==\n", name)
	Print(instructions, writer)
	return nil
}

// FormatInstruction renders the instruction at offset without color and
// returns it along with the offset of the next instruction. It is used for
// execution traces, so it tolerates malformed chunks.
func FormatInstruction(c *chunk.Chunk, offset int) (string, int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%04d ", offset))
	line := c.LineAt(offset)
	if offset > 0 && line == c.LineAt(offset-1) {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", line))
	}

	code := c.OpAt(offset)
	info := op.GetInfo(code)
	if !info.Valid() {
		sb.WriteString(fmt.Sprintf("Unknown opcode %d", code))
		return sb.String(), offset + 1
	}
	if code != op.Constant {
		sb.WriteString(info.Name)
		return sb.String(), offset + info.Width()
	}
	if offset+1 >= c.Count() {
		sb.WriteString(info.Name)
		return sb.String(), c.Count()
	}
	index := int(c.ByteAt(offset + 1))
	sb.WriteString(fmt.Sprintf("%-16s %4d ", info.Name, index))
	if index < c.ConstantCount() {
		sb.WriteString("'" + c.ConstantAt(index).String() + "'")
	} else {
		sb.WriteString("<invalid>")
	}
	return sb.String(), offset + info.Width()
}

func formatConstant(v value.Value) string {
	s := v.String()
	if v.IsString() && len(s) > 80 {
		s = s[:77] + "..."
	}
	quoted := "'" + s + "'"
	switch v.Kind() {
	case value.KindNumber:
		return color.YellowString(quoted)
	case value.KindObject:
		return color.GreenString(quoted)
	default:
		return color.CyanString(quoted)
	}
}

func getConstantValue(c *chunk.Chunk, index int) (value.Value, error) {
	if c.ConstantCount() <= index {
		return value.Nil, fmt.Errorf("constant index out of range: %d", index)
	}
	return c.ConstantAt(index), nil
}
