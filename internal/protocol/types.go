// Package protocol defines the wire format of saved screen captures.
package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"pkt.systems/vgabios/internal/display"
)

// Version is the current frame format version.
const Version = 1

// Frame field numbers.
const (
	frameVersion  protowire.Number = 1
	frameMode     protowire.Number = 2
	frameModeName protowire.Number = 3
	frameSnapshot protowire.Number = 4
)

// Frame is a captured screen: the surface snapshot plus the video mode that
// produced it.
type Frame struct {
	Version  uint32
	Mode     uint16
	ModeName string
	Snapshot display.Snapshot
}

// NewFrame wraps a snapshot in a frame of the current version.
func NewFrame(mode uint16, name string, snap display.Snapshot) Frame {
	return Frame{Version: Version, Mode: mode, ModeName: name, Snapshot: snap}
}

// MarshalFrame encodes f.
func MarshalFrame(f Frame) []byte {
	var b []byte
	b = appendVarint(b, frameVersion, uint64(f.Version))
	b = appendVarint(b, frameMode, uint64(f.Mode))
	if f.ModeName != "" {
		b = protowire.AppendTag(b, frameModeName, protowire.BytesType)
		b = protowire.AppendString(b, f.ModeName)
	}
	b = protowire.AppendTag(b, frameSnapshot, protowire.BytesType)
	b = protowire.AppendBytes(b, MarshalSnapshot(f.Snapshot))
	return b
}

// UnmarshalFrame decodes a frame. Frames from a newer format version are
// rejected.
func UnmarshalFrame(b []byte) (Frame, error) {
	var f Frame
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Frame{}, fmt.Errorf("frame tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == frameVersion && typ == protowire.VarintType:
			v, rest, err := consumeVarint(b)
			if err != nil {
				return Frame{}, fmt.Errorf("frame version: %w", err)
			}
			f.Version, b = uint32(v), rest
		case num == frameMode && typ == protowire.VarintType:
			v, rest, err := consumeVarint(b)
			if err != nil {
				return Frame{}, fmt.Errorf("frame mode: %w", err)
			}
			f.Mode, b = uint16(v), rest
		case num == frameModeName && typ == protowire.BytesType:
			v, rest, err := consumeBytes(b)
			if err != nil {
				return Frame{}, fmt.Errorf("frame mode name: %w", err)
			}
			f.ModeName, b = string(v), rest
		case num == frameSnapshot && typ == protowire.BytesType:
			v, rest, err := consumeBytes(b)
			if err != nil {
				return Frame{}, fmt.Errorf("frame snapshot: %w", err)
			}
			snap, err := UnmarshalSnapshot(v)
			if err != nil {
				return Frame{}, err
			}
			f.Snapshot, b = snap, rest
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Frame{}, fmt.Errorf("frame field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if f.Version == 0 {
		return Frame{}, fmt.Errorf("frame missing version")
	}
	if f.Version > Version {
		return Frame{}, fmt.Errorf("frame version %d is newer than supported version %d", f.Version, Version)
	}
	return f, nil
}
