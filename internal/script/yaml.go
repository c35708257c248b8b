package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"pkt.systems/vgabios/internal/cpu"
	"pkt.systems/vgabios/internal/render"
)

// defaultTextAttr is light gray on black.
const defaultTextAttr = 0x07

// Document is a YAML call script.
type Document struct {
	Calls []Step `yaml:"calls"`
}

// Step is one entry of a Document. A step either writes Text or issues an
// interrupt with the listed registers; Poke runs first in both cases. A step
// with Poke and all registers zero only pokes.
type Step struct {
	Name string `yaml:"name,omitempty"`

	AX uint16 `yaml:"ax,omitempty"`
	BX uint16 `yaml:"bx,omitempty"`
	CX uint16 `yaml:"cx,omitempty"`
	DX uint16 `yaml:"dx,omitempty"`
	ES uint16 `yaml:"es,omitempty"`
	DI uint16 `yaml:"di,omitempty"`
	BP uint16 `yaml:"bp,omitempty"`

	Text string `yaml:"text,omitempty"`
	Attr *uint8 `yaml:"attr,omitempty"`

	Poke *Poke `yaml:"poke,omitempty"`
}

// Poke places bytes in guest memory. Text is encoded to CP437 and appended
// after Bytes.
type Poke struct {
	Addr  uint32 `yaml:"addr"`
	Bytes []int  `yaml:"bytes,omitempty"`
	Text  string `yaml:"text,omitempty"`
}

// ParseYAML decodes a call script. Unknown keys are rejected.
func ParseYAML(data []byte) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("parse script: %w", err)
	}
	for i, step := range doc.Calls {
		if step.Poke == nil {
			continue
		}
		for _, b := range step.Poke.Bytes {
			if b < 0 || b > 0xFF {
				return Document{}, fmt.Errorf("call %d: poke byte %d out of range", i, b)
			}
		}
	}
	return doc, nil
}

// RunYAML parses and executes a YAML call script.
func (r *Runner) RunYAML(ctx context.Context, data []byte) error {
	doc, err := ParseYAML(data)
	if err != nil {
		return err
	}
	return r.RunDocument(ctx, doc)
}

// RunDocument executes the steps of doc in order.
func (r *Runner) RunDocument(ctx context.Context, doc Document) error {
	for i, step := range doc.Calls {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("call %d", i)
		}
		if step.Poke != nil {
			data := make([]byte, 0, len(step.Poke.Bytes)+len(step.Poke.Text))
			for _, b := range step.Poke.Bytes {
				data = append(data, byte(b))
			}
			data = append(data, render.Encode(step.Poke.Text)...)
			if err := r.Poke(step.Poke.Addr, data); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		if step.Text != "" {
			attr := uint8(defaultTextAttr)
			if step.Attr != nil {
				attr = *step.Attr
			}
			if err := r.Text(render.Encode(step.Text), attr); err != nil {
				r.logger.Warn("script text write failed", "name", name, "error", err)
			}
			continue
		}
		if step.Poke != nil && step.registers() == (cpu.Registers{}) {
			continue
		}
		r.Call(name, step.registers())
	}
	return nil
}

func (s Step) registers() cpu.Registers {
	var regs cpu.Registers
	regs.SetReg16(cpu.AX, s.AX)
	regs.SetReg16(cpu.BX, s.BX)
	regs.SetReg16(cpu.CX, s.CX)
	regs.SetReg16(cpu.DX, s.DX)
	regs.SetReg16(cpu.ES, s.ES)
	regs.SetReg16(cpu.DI, s.DI)
	regs.SetReg16(cpu.BP, s.BP)
	return regs
}
