// Package protocol holds the catalog of known vendor byte encodings for BLE LED
// controllers, and the codecs that turn semantic commands into frames.
//
// Every encode function is pure: the same command always yields the same
// bytes, and nothing is written anywhere. Writing is the dispatcher's job.
//
// The production format is "starlight", reverse-engineered from the vendor
// app. Its quirks (hue split by 255 but brightness by 256, inverted power
// polarity, the mode index gap above 112) are reproduced exactly because the
// firmware performs no negotiation.
package protocol

import (
	"bytes"
	"fmt"

	"github.com/lunixbochs/struc"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

// Codec encodes commands for one bound format
type Codec interface {
	// Format returns the catalog name of the bound format
	Format() string
	// Encode returns the exact frame for cmd, or common.ErrUnsupportedCommand
	Encode(cmd common.Command) ([]byte, error)
}

// EncodeFunc is the pure function behind a Template
type EncodeFunc func(cmd common.Command) ([]byte, error)

// Template describes the layout of one frame kind. Opcode, Terminator and Size
// are informational; Encode is authoritative.
type Template struct {
	Name       string
	Kind       common.CommandKind
	Opcode     byte
	Terminator byte
	Size       int
	Encode     EncodeFunc
}

// Format is a named vendor protocol: a set of templates keyed by command kind
type Format struct {
	Name        string
	Description string
	templates   map[common.CommandKind]Template
	order       []common.CommandKind
}

// NewFormat returns a Format serving templates. A later template for the same
// kind replaces an earlier one.
func NewFormat(name, description string, templates ...Template) *Format {
	f := &Format{
		Name:        name,
		Description: description,
		templates:   make(map[common.CommandKind]Template, len(templates)),
	}
	for _, t := range templates {
		if _, ok := f.templates[t.Kind]; !ok {
			f.order = append(f.order, t.Kind)
		}
		f.templates[t.Kind] = t
	}
	return f
}

// Format implements Codec
func (f *Format) Format() string {
	return f.Name
}

// Supports reports whether the format can encode kind
func (f *Format) Supports(kind common.CommandKind) bool {
	_, ok := f.templates[kind]
	return ok
}

// Template returns the template for kind
func (f *Format) Template(kind common.CommandKind) (Template, bool) {
	t, ok := f.templates[kind]
	return t, ok
}

// Templates returns the templates in registration order
func (f *Format) Templates() []Template {
	out := make([]Template, 0, len(f.order))
	for _, k := range f.order {
		out = append(out, f.templates[k])
	}
	return out
}

// Encode implements Codec
func (f *Format) Encode(cmd common.Command) ([]byte, error) {
	if cmd == nil {
		return nil, fmt.Errorf(`%s: nil command: %w`, f.Name, common.ErrUnsupportedCommand)
	}
	t, ok := f.templates[cmd.Kind()]
	if !ok {
		return nil, fmt.Errorf(`%s: %v: %w`, f.Name, cmd.Kind(), common.ErrUnsupportedCommand)
	}
	return t.Encode(cmd)
}

// pack serializes a struc-tagged frame
func pack(frame interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := struc.Pack(buf, frame); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// colorOf extracts the RGB color carried by color-like commands
func colorOf(cmd common.Command) (common.Color, bool) {
	switch c := cmd.(type) {
	case common.SetRGB:
		return c.Color, true
	case common.Flash:
		return c.Color, true
	case common.SetHSV:
		return common.HSVToRGB(common.HSV{Hue: c.Hue, Saturation: c.Saturation}), true
	}
	return common.Color{}, false
}

func unexpected(format string, cmd common.Command) error {
	return fmt.Errorf(`%s: unexpected command %s: %w`, format, common.FormatCommand(cmd), common.ErrUnsupportedCommand)
}
