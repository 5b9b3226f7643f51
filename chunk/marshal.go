package chunk

import (
	"bytes"
	"fmt"

	"github.com/deepnoodle-ai/loxvm/op"
	"github.com/deepnoodle-ai/loxvm/value"
	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/uuid"
)

// FormatVersion is the version of the serialized program format.
const FormatVersion = 1

// Magic prefixes every serialized program.
var Magic = []byte("LOXC")

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("chunk: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Program is the serialized form of a Chunk.
type Program struct {
	ID        string        `cbor:"id"`
	Version   int           `cbor:"version"`
	Code      []byte        `cbor:"code"`
	Lines     []int         `cbor:"lines"`
	Constants []constantDef `cbor:"constants"`
}

type constantDef struct {
	Kind   value.Kind `cbor:"kind"`
	Bool   bool       `cbor:"bool,omitempty"`
	Number float64    `cbor:"number"`
	String []byte     `cbor:"string,omitempty"`
}

// IsProgram reports whether data looks like a serialized program.
func IsProgram(data []byte) bool {
	return bytes.HasPrefix(data, Magic)
}

// Marshal serializes a chunk. Each call stamps the program with a new build ID.
func Marshal(c *Chunk) ([]byte, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("chunk: generate build id: %w", err)
	}
	constants := make([]constantDef, c.ConstantCount())
	for i := range constants {
		def, err := constantFromValue(c.ConstantAt(i))
		if err != nil {
			return nil, err
		}
		constants[i] = def
	}
	prog := &Program{
		ID:        id.String(),
		Version:   FormatVersion,
		Code:      c.Code(),
		Lines:     c.Lines(),
		Constants: constants,
	}
	data, err := encMode.Marshal(prog)
	if err != nil {
		return nil, fmt.Errorf("chunk: marshal: %w", err)
	}
	return append(append([]byte{}, Magic...), data...), nil
}

// Decode parses a serialized program without building a chunk.
func Decode(data []byte) (*Program, error) {
	if !IsProgram(data) {
		return nil, fmt.Errorf("chunk: missing program header")
	}
	var prog Program
	if err := cbor.Unmarshal(data[len(Magic):], &prog); err != nil {
		return nil, fmt.Errorf("chunk: unmarshal: %w", err)
	}
	if prog.Version != FormatVersion {
		return nil, fmt.Errorf("chunk: unsupported program version %d", prog.Version)
	}
	if _, err := uuid.FromString(prog.ID); err != nil {
		return nil, fmt.Errorf("chunk: invalid build id %q: %w", prog.ID, err)
	}
	return &prog, nil
}

// Unmarshal deserializes a chunk. String constants are allocated in heap.
func Unmarshal(data []byte, heap *value.Heap) (*Chunk, error) {
	prog, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return prog.Chunk(heap)
}

// Chunk rebuilds and validates the chunk described by the program.
func (p *Program) Chunk(heap *value.Heap) (*Chunk, error) {
	if len(p.Code) != len(p.Lines) {
		return nil, fmt.Errorf("chunk: code has %d bytes but line table has %d entries",
			len(p.Code), len(p.Lines))
	}
	if len(p.Constants) > MaxConstants {
		return nil, fmt.Errorf("chunk: constant pool has %d entries (max %d)",
			len(p.Constants), MaxConstants)
	}
	c := New()
	for _, def := range p.Constants {
		v, err := def.toValue(heap)
		if err != nil {
			return nil, err
		}
		if _, err := c.AddConstant(v); err != nil {
			return nil, err
		}
	}
	for i, b := range p.Code {
		c.Write(b, p.Lines[i])
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func validate(c *Chunk) error {
	iter := NewInstructionIter(c)
	for {
		instr, ok := iter.Next()
		if !ok {
			return nil
		}
		info := op.GetInfo(instr.Opcode)
		if !info.Valid() {
			return fmt.Errorf("chunk: unknown opcode %d at offset %d", instr.Opcode, instr.Offset)
		}
		if len(instr.Operands) != info.OperandCount {
			return fmt.Errorf("chunk: truncated %s at offset %d", info.Name, instr.Offset)
		}
		if instr.Opcode == op.Constant && int(instr.Operands[0]) >= c.ConstantCount() {
			return fmt.Errorf("chunk: constant index %d out of range at offset %d",
				instr.Operands[0], instr.Offset)
		}
	}
}

func constantFromValue(v value.Value) (constantDef, error) {
	switch v.Kind() {
	case value.KindBool:
		return constantDef{Kind: value.KindBool, Bool: v.AsBool()}, nil
	case value.KindNil:
		return constantDef{Kind: value.KindNil}, nil
	case value.KindNumber:
		return constantDef{Kind: value.KindNumber, Number: v.AsNumber()}, nil
	case value.KindObject:
		if s := v.AsString(); s != nil {
			return constantDef{Kind: value.KindObject, String: []byte(s.Chars())}, nil
		}
	}
	return constantDef{}, fmt.Errorf("chunk: unsupported constant type: %s", v.TypeName())
}

func (d constantDef) toValue(heap *value.Heap) (value.Value, error) {
	switch d.Kind {
	case value.KindBool:
		return value.Bool(d.Bool), nil
	case value.KindNil:
		return value.Nil, nil
	case value.KindNumber:
		return value.Number(d.Number), nil
	case value.KindObject:
		// The decoder allocated a fresh buffer, so the heap can own it.
		return value.FromObject(heap.TakeString(d.String)), nil
	default:
		return value.Nil, fmt.Errorf("chunk: unknown constant kind %d", d.Kind)
	}
}
