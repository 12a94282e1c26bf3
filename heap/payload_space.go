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

import "github.com/refpersys/rpsheap/rpsval"

// SpacePayload carries no content; its presence alone marks the owner as
// a persistence bucket.
type SpacePayload struct{}

func (SpacePayload) Kind() string                          { return "space" }
func (SpacePayload) DumpScan(visit func(rpsval.ObjectRef))  {}
func (SpacePayload) DumpJSON() (map[string]any, error)      { return map[string]any{}, nil }

func deserializeSpacePayload(o *Object, ld *Loader, body map[string]any, spaceID string, line int) (Payload, error) {
	return SpacePayload{}, nil
}
