package entity

import (
	"encoding/binary"

	"husk/internal/source"
)

// Path is an interned handle for one entity. Two paths are equal iff they
// name the same entity; paths carry no source locations.
type Path uint32

const NoPath Path = 0

func (p Path) IsValid() bool { return p != NoPath }

// Data is the structural description a Path is interned from.
type Data struct {
	Kind          Kind
	Parent        Path
	Ident         source.StringID
	Disambiguator uint8
	// Target and Trait are set for impl blocks only.
	Target Path
	Trait  Path
	// Args are generic argument handles (ethereal terms) for instantiated routes.
	Args []uint32
}

type dataKey struct {
	Kind          Kind
	Parent        Path
	Ident         source.StringID
	Disambiguator uint8
	Target        Path
	Trait         Path
	Args          string
}

func (d *Data) key() dataKey {
	var args string
	if len(d.Args) > 0 {
		buf := make([]byte, 0, 4*len(d.Args))
		for _, a := range d.Args {
			buf = binary.LittleEndian.AppendUint32(buf, a)
		}
		args = string(buf)
	}
	return dataKey{
		Kind:          d.Kind,
		Parent:        d.Parent,
		Ident:         d.Ident,
		Disambiguator: d.Disambiguator,
		Target:        d.Target,
		Trait:         d.Trait,
		Args:          args,
	}
}
