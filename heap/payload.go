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
package heap

import (
	"sync"

	"github.com/refpersys/rpsheap/rpsval"
)

// Payload is the open extension point of the object model: a typed
// additional state owned by an object, keyed by a symbolic kind. New
// kinds register themselves via RegisterPayloadKind rather than
// extending a closed enum.
type Payload interface {
	Kind() string
	// DumpScan forwards every reference the payload itself holds into visit.
	DumpScan(visit func(rpsval.ObjectRef))
	// DumpJSON produces the payload-specific fields merged into the
	// object's body JSON at dump time.
	DumpJSON() (map[string]any, error)
}

// PayloadDeserializer builds a Payload from the object body JSON and
// returns it; the loader installs the result on o. It receives the owning object, the loader driving the
// second pass, the full body map, and position information for
// diagnostics: the resolved function is invoked with (object, loader,
// body_json, space_id, line_no).
type PayloadDeserializer func(o *Object, ld *Loader, body map[string]any, spaceID string, line int) (Payload, error)

// payloadRegistry maps a symbolic payload kind name to its deserializer.
// It is process-wide but guarded by its own mutex, independent of the
// object Registry, since payload kinds are a compile-time/plugin-time
// concept rather than load-time state.
type payloadRegistry struct {
	mu    sync.RWMutex
	kinds map[string]PayloadDeserializer
}

var globalPayloadKinds = &payloadRegistry{kinds: make(map[string]PayloadDeserializer)}

// RegisterPayloadKind installs the deserializer for a payload kind name.
// Built-in kinds (space, symbol, classinfo, setob, vectob, vectval) are
// registered by this package's init(); external collaborators may add
// more. Registering the same name twice is a programming error, not a
// recoverable one: it panics rather than silently shadowing a kind that
// already has live objects depending on it.
func RegisterPayloadKind(name string, fn PayloadDeserializer) {
	globalPayloadKinds.mu.Lock()
	defer globalPayloadKinds.mu.Unlock()
	if _, dup := globalPayloadKinds.kinds[name]; dup {
		panic("heap: payload kind " + name + " registered twice")
	}
	globalPayloadKinds.kinds[name] = fn
}

func lookupPayloadKind(name string) (PayloadDeserializer, bool) {
	globalPayloadKinds.mu.RLock()
	defer globalPayloadKinds.mu.RUnlock()
	fn, ok := globalPayloadKinds.kinds[name]
	return fn, ok
}

func init() {
	RegisterPayloadKind("space", deserializeSpacePayload)
	RegisterPayloadKind("symbol", deserializeSymbolPayload)
	RegisterPayloadKind("classinfo", deserializeClassInfoPayload)
	RegisterPayloadKind("setob", deserializeSetObPayload)
	RegisterPayloadKind("vectob", deserializeVectObPayload)
	RegisterPayloadKind("vectval", deserializeVectValPayload)
}
