/*
Copyright (C) 2026  The RefPerSys-Go Authors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package rpsval

import (
	"encoding/binary"
	"hash/maphash"
	"math"
	"sort"
)

// stableSeed is fixed once per process so Hash is stable across calls
// within a run (it need not be stable across processes — nothing
// persists a hash value).
var stableSeed = maphash.MakeSeed()

// Hash computes a variant-seeded, collision-resistant hash:
// order-sensitive for Tuple/Closure, order-insensitive for Set.
func (v Value) Hash() uint64 {
	var h maphash.Hash
	h.SetSeed(stableSeed)
	hashInto(&h, v)
	return h.Sum64()
}

func (id ObjectId) Hash() uint32 {
	var h maphash.Hash
	h.SetSeed(stableSeed)
	var b [12]byte
	binary.LittleEndian.PutUint64(b[0:8], id.Hi)
	binary.LittleEndian.PutUint32(b[8:12], id.Lo)
	h.Write(b[:])
	return uint32(h.Sum64())
}

func hashInto(h *maphash.Hash, v Value) {
	switch v.tag {
	case TagEmpty:
		h.WriteByte(0)
	case TagInt:
		h.WriteByte(1)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(v.i))
		h.Write(b[:])
	case TagDouble:
		h.WriteByte(2)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v.f))
		h.Write(b[:])
	case TagString:
		h.WriteByte(3)
		h.WriteString(v.s)
	case TagObjectRef:
		h.WriteByte(4)
		hashRefInto(h, v.ref)
	case TagSet:
		h.WriteByte(5)
		// order-insensitive: combine element hashes with a commutative op
		var acc uint64
		for _, r := range v.objs {
			acc ^= refHash64(r)
		}
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], acc)
		h.Write(b[:])
		writeLen(h, len(v.objs))
	case TagTuple:
		h.WriteByte(6)
		writeLen(h, len(v.objs))
		for _, r := range v.objs {
			hashRefInto(h, r)
		}
	case TagClosure:
		h.WriteByte(7)
		hashRefInto(h, v.clos.Connective)
		writeLen(h, len(v.clos.Environment))
		for _, e := range v.clos.Environment {
			hashInto(h, e)
		}
		hashMetaInto(h, v.clos.Meta)
	case TagInstance:
		h.WriteByte(8)
		hashRefInto(h, v.inst.Class)
		hashMetaInto(h, v.inst.Meta)
		keys := v.inst.Attrs.Keys()
		sort.Slice(keys, func(i, j int) bool { return refLess(keys[i], keys[j]) })
		writeLen(h, len(keys))
		for _, k := range keys {
			hashRefInto(h, k)
			val, _ := v.inst.Attrs.Get(k)
			hashInto(h, val)
		}
		writeLen(h, len(v.inst.Components))
		for _, c := range v.inst.Components {
			hashInto(h, c)
		}
	case TagJSON:
		h.WriteByte(9)
		h.Write(v.raw)
	}
}

func hashMetaInto(h *maphash.Hash, m *MetaInfo) {
	if m == nil || m.Metaobject == nil {
		h.WriteByte(0)
		return
	}
	h.WriteByte(1)
	hashRefInto(h, m.Metaobject)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(m.Metarank))
	h.Write(b[:])
}

func hashRefInto(h *maphash.Hash, r ObjectRef) {
	if r == nil {
		h.WriteByte(0)
		return
	}
	h.WriteByte(1)
	id := r.RefId()
	var b [12]byte
	binary.LittleEndian.PutUint64(b[0:8], id.Hi)
	binary.LittleEndian.PutUint32(b[8:12], id.Lo)
	h.Write(b[:])
}

func refHash64(r ObjectRef) uint64 {
	if r == nil {
		return 0
	}
	id := r.RefId()
	return id.Hi*1099511628211 + uint64(id.Lo)
}

func writeLen(h *maphash.Hash, n int) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(n))
	h.Write(b[:])
}
