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

// Package heap implements the reflective persistent object heap: the
// object model and payloads, the process-wide registry, the two-pass
// loader, and the mark-scan dumper.
package heap

import (
	"errors"
	"fmt"

	"github.com/refpersys/rpsheap/rpsval"
)

// Kind names one of the fatal or recoverable error categories a load or
// dump can run into. It lets callers (and log fields) classify an error
// without string-matching its message.
type Kind string

const (
	KindInvalidIdString     Kind = "InvalidIdString"
	KindDuplicateObject      Kind = "DuplicateObject"
	KindObjectCountMismatch  Kind = "ObjectCountMismatch"
	KindBadManifest          Kind = "BadManifest"
	KindBadPrologue          Kind = "BadPrologue"
	KindNonUtf8Line          Kind = "NonUtf8Line"
	KindUnresolvedId         Kind = "UnresolvedId"
	KindUnknownPayloadKind   Kind = "UnknownPayloadKind"
	KindMissingDynamicSymbol Kind = "MissingDynamicSymbol"
	KindDeferredOverflow     Kind = "DeferredOverflow"
	KindRootCountMismatch    Kind = "RootCountMismatch"
	KindSymbolCountMismatch  Kind = "SymbolCountMismatch"
	KindFormatVersionRejected Kind = "FormatVersionRejected"
	KindUnknownValueShape    Kind = "UnknownValueShape"
	KindTransientValueRejected Kind = "TransientValueRejected"
	KindPayloadAlreadyPresent Kind = "PayloadAlreadyPresent"
	KindIoError              Kind = "IoError"
	KindRenameFailed          Kind = "RenameFailed"
)

// PositionedError carries the position information required on every
// error and warning: the space id and line number where it was detected,
// plus the object id when one is known.
type PositionedError struct {
	Kind    Kind
	SpaceID string
	Line    int
	ObjID   rpsval.ObjectId
	Path    string
	Err     error
}

func (e *PositionedError) Error() string {
	var pos string
	switch {
	case e.Path != "" && e.Line > 0:
		pos = fmt.Sprintf("%s:%d", e.Path, e.Line)
	case e.SpaceID != "" && e.Line > 0:
		pos = fmt.Sprintf("space %s line %d", e.SpaceID, e.Line)
	case e.SpaceID != "":
		pos = fmt.Sprintf("space %s", e.SpaceID)
	}
	msg := fmt.Sprintf("%s", e.Kind)
	if pos != "" {
		msg += " at " + pos
	}
	if e.ObjID.Valid() {
		msg += " (object " + e.ObjID.String() + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PositionedError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrKind(KindX)) work against a Kind value.
func (e *PositionedError) Is(target error) bool {
	k, ok := target.(kindSentinel)
	return ok && e.Kind == Kind(k)
}

type kindSentinel string

func (k kindSentinel) Error() string { return string(k) }

// ErrKind returns a sentinel comparable via errors.Is against any
// *PositionedError carrying the same Kind.
func ErrKind(k Kind) error { return kindSentinel(k) }

func newErr(kind Kind, spaceID string, line int, objID rpsval.ObjectId, path string, cause error) *PositionedError {
	return &PositionedError{Kind: kind, SpaceID: spaceID, Line: line, ObjID: objID, Path: path, Err: cause}
}

// fatal reports whether kind aborts the current load/dump: every Kind
// except UnknownValueShape does. Warnings do not pass through here; they
// go to the logger via warnPosition, some tagged with a Kind and some
// (version skew, for one) with none.
func fatal(kind Kind) bool {
	return kind != KindUnknownValueShape
}

var errNotRoot = errors.New("heap: object is not a root")
var errDeferredStuck = errors.New("heap: deferred task made no progress after maximum retries")

var rpsvalNilID = rpsval.NilObjectId
