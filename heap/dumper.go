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
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/refpersys/rpsheap/rpsval"
)

// Dumper drives one dump_into(dir) run.
// It is created fresh for every dump and carries only the bookkeeping a
// single run needs: the scan queue's visited set, the discovered
// constants (in discovery order), and the per-space accumulation of
// scanned objects.
type Dumper struct {
	Registry *Registry
	Config   *Config

	visited      map[rpsval.ObjectId]bool
	constants    []rpsval.ObjectId
	constantsSet map[rpsval.ObjectId]bool
	bySpace      map[rpsval.ObjectId][]*Object
	newObjects   int
	dumpStart    time.Time
}

// SourceFile is one C++-like source file the dumper scans for constant
// literals. Path is used only for diagnostics; Contents is
// scanned as text.
type SourceFile struct {
	Path     string
	Contents []byte
}

// Dump performs's "Control flow at dump": seed the scan queue from
// roots plus source-discovered constants, drain the queue recording each
// reachable object under its space, then write every space file plus the
// generated headers and manifest under a temp suffix before an atomic
// rename.
func Dump(ctx context.Context, cfg *Config, reg *Registry, sources []SourceFile) error {
	if cfg.Store == nil {
		return fmt.Errorf("heap: Config.Store is required")
	}
	d := &Dumper{
		Registry:     reg,
		Config:       cfg,
		visited:      make(map[rpsval.ObjectId]bool),
		constantsSet: make(map[rpsval.ObjectId]bool),
		bySpace:      make(map[rpsval.ObjectId][]*Object),
		dumpStart:    time.Now(),
	}

	d.scanConstants(sources)

	var queue []*Object
	reg.EachRoot(func(o *Object) { queue = append(queue, o) })
	for _, id := range d.constants {
		if o, ok := reg.FindByID(id); ok {
			queue = append(queue, o)
		}
	}

	for len(queue) > 0 {
		o := queue[0]
		queue = queue[1:]
		if o == nil || o.RefTransient() {
			continue
		}
		id := o.Id()
		if d.visited[id] {
			continue
		}
		d.visited[id] = true

		if space := o.Space(); space != nil {
			d.bySpace[space.RefId()] = append(d.bySpace[space.RefId()], o)
		}
		if o.Mtime() > float64(d.dumpStart.Unix()) {
			d.newObjects++
		}

		o.DumpScan(func(ref rpsval.ObjectRef) {
			if ref == nil {
				return
			}
			if no, ok := ref.(*Object); ok {
				queue = append(queue, no)
			}
		})
	}

	if err := cfg.Store.MkdirAll(ctx, "persistore"); err != nil {
		return newErr(KindIoError, "", 0, rpsvalNilID, "persistore", err)
	}
	if err := cfg.Store.MkdirAll(ctx, "generated"); err != nil {
		return newErr(KindIoError, "", 0, rpsvalNilID, "generated", err)
	}

	suffix := "." + uuid.NewString() + ".tmp"

	var spaceIDs []string
	for spaceID, members := range d.bySpace {
		sort.Slice(members, func(i, j int) bool { return members[i].Id().Less(members[j].Id()) })
		if err := d.writeSpaceFile(ctx, spaceID, members, suffix); err != nil {
			return err
		}
		spaceIDs = append(spaceIDs, spaceID.String())
	}
	sort.Strings(spaceIDs)

	if err := d.writeRootsHeader(ctx, suffix); err != nil {
		return err
	}
	if err := d.writeNamesHeader(ctx, suffix); err != nil {
		return err
	}
	if err := d.writeConstantsHeader(ctx, suffix); err != nil {
		return err
	}
	if err := d.writeManifest(ctx, spaceIDs, suffix); err != nil {
		return err
	}

	return nil
}

// scanConstants implements Phase 1's source scan: every occurrence
// of a 23-char object-id-shaped literal that resolves to a known object
// (and is not Restricted) is added to the constants set, in first-seen
// order. Files under generated/ or an "attic" directory, and non-UTF-8
// lines, are skipped.
func (d *Dumper) scanConstants(sources []SourceFile) {
	for _, sf := range sources {
		if strings.Contains(sf.Path, "/generated/") ||
			strings.HasPrefix(sf.Path, "generated/") ||
			strings.Contains(sf.Path, "attic") {
			continue
		}
		for _, line := range strings.Split(string(sf.Contents), "\n") {
			if !utf8.ValidString(line) {
				continue
			}
			d.scanLineForConstants(line)
		}
	}
}

func (d *Dumper) scanLineForConstants(line string) {
	for i := 0; i+23 <= len(line); i++ {
		if line[i] != '_' {
			continue
		}
		candidate := line[i : i+23]
		if !rpsval.LooksLikeObjectId(candidate) {
			continue
		}
		id, err := rpsval.ParseObjectId(candidate)
		if err != nil {
			continue
		}
		o, ok := d.Registry.FindByID(id)
		if !ok || o.Restricted() || d.constantsSet[id] {
			continue
		}
		d.constantsSet[id] = true
		d.constants = append(d.constants, id)
	}
}

// writeSpaceFile writes one persistore/sp<ID>-rps.json under its temp
// suffix, then rotates and renames onto the final name.
func (d *Dumper) writeSpaceFile(ctx context.Context, spaceID rpsval.ObjectId, members []*Object, suffix string) error {
	var b strings.Builder
	b.WriteString("# rpsheap generated space file, do not hand-edit\n\n")

	prologue := spacePrologue{
		Format:          d.Config.AcceptedFormats[0],
		SpaceID:         spaceID.String(),
		NbObjects:       len(members),
		RpsMajorVersion: d.Config.RpsMajorVersion,
		RpsMinorVersion: d.Config.RpsMinorVersion,
	}
	prologueJSON, err := json.Marshal(prologue)
	if err != nil {
		return newErr(KindIoError, spaceID.String(), 0, spaceID, "", err)
	}
	b.Write(prologueJSON)
	b.WriteString("\n")

	for _, o := range members {
		body, err := d.objectBodyJSON(o)
		if err != nil {
			return err
		}
		bodyJSON, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return newErr(KindIoError, spaceID.String(), 0, o.Id(), "", err)
		}
		b.WriteString("\n")
		b.WriteString(objectBeginMarker)
		b.WriteString(o.Id().String())
		b.WriteString("\n")
		b.Write(bodyJSON)
		b.WriteString("\n")
		b.WriteString(objectEndMarker)
		b.WriteString(o.Id().String())
		b.WriteString("\n")
	}
	b.WriteString("\n# end of space file\n")

	finalPath := spacePath(spaceID.String())
	tmpPath := finalPath + suffix
	if err := d.Config.Store.WriteFile(ctx, tmpPath, []byte(b.String())); err != nil {
		return newErr(KindIoError, spaceID.String(), 0, spaceID, tmpPath, err)
	}
	if err := RotateBackup(ctx, d.Config.Store, finalPath); err != nil {
		return newErr(KindRenameFailed, spaceID.String(), 0, spaceID, finalPath, err)
	}
	if err := d.Config.Store.Rename(ctx, tmpPath, finalPath); err != nil {
		return newErr(KindRenameFailed, spaceID.String(), 0, spaceID, finalPath, err)
	}
	return nil
}

// objectBodyJSON produces one object's emitted body.
// Transient sub-values encountered mid-object are dropped with a warning
// rather than aborting the whole dump.
func (d *Dumper) objectBodyJSON(o *Object) (map[string]any, error) {
	body := map[string]any{
		"oid":   o.Id().String(),
		"mtime": o.Mtime(),
	}
	if o.Restricted() {
		body["restricted"] = true
	}
	if class := o.Class(); class != nil {
		if class.RefTransient() {
			warnPosition(d.Config.logger(), KindTransientValueRejected, "", 0, o.Id(), "class is transient, omitted")
		} else {
			body["class"] = class.RefId().String()
		}
	}

	comps := o.Comps()
	if len(comps) > 0 {
		out := make([]any, 0, len(comps))
		for _, c := range comps {
			jv, err := d.dumpableValueJSON(o.Id(), c)
			if err != nil {
				continue
			}
			out = append(out, jv)
		}
		body["comps"] = out
	}

	attrs := o.AttrMap()
	if attrs.Len() > 0 {
		var out []any
		attrs.Iterate(func(k rpsval.ObjectRef, v rpsval.Value) bool {
			if k.RefTransient() {
				warnPosition(d.Config.logger(), KindTransientValueRejected, "", 0, o.Id(), "attribute key is transient, skipped")
				return true
			}
			va, err := d.dumpableValueJSON(o.Id(), v)
			if err != nil {
				return true
			}
			out = append(out, map[string]any{"at": k.RefId().String(), "va": va})
			return true
		})
		if out != nil {
			body["attrs"] = out
		}
	}

	if o.hasMagicGetter() {
		body["magicattr"] = true
	}
	if o.hasApplyingFn() {
		body["applying"] = true
	}

	if payload := o.Payload(); payload != nil {
		body["payload"] = payload.Kind()
		fields, err := payload.DumpJSON()
		if err != nil {
			return nil, newErr(KindIoError, "", 0, o.Id(), "", err)
		}
		for k, v := range fields {
			body[k] = v
		}
	}

	return body, nil
}

// dumpableValueJSON converts v to its JSON form, treating a transient
// reference as recoverable: log and drop rather than fail the whole
// object.
func (d *Dumper) dumpableValueJSON(owner rpsval.ObjectId, v rpsval.Value) (any, error) {
	jv, err := rpsval.ValueToJSON(v)
	if err != nil {
		warnPosition(d.Config.logger(), KindTransientValueRejected, "", 0, owner, err.Error())
		return nil, err
	}
	return jv, nil
}

func (d *Dumper) writeRootsHeader(ctx context.Context, suffix string) error {
	var roots []rpsval.ObjectId
	d.Registry.EachRoot(func(o *Object) { roots = append(roots, o.Id()) })
	sort.Slice(roots, func(i, j int) bool { return roots[i].Less(roots[j]) })

	var b strings.Builder
	b.WriteString("/* generated by rpsheap, do not edit */\n")
	for _, id := range roots {
		fmt.Fprintf(&b, "RPS_INSTALL_ROOT_OB(%s)\n", id.String())
	}
	fmt.Fprintf(&b, "#define RPS_NB_ROOT_OB %d\n", len(roots))
	return d.writeGeneratedHeader(ctx, "rps-roots.hh", b.String(), suffix)
}

func (d *Dumper) writeNamesHeader(ctx context.Context, suffix string) error {
	type namedRoot struct {
		id   rpsval.ObjectId
		name string
	}
	var named []namedRoot
	d.Registry.EachRoot(func(o *Object) {
		payload, ok := o.Payload().(*SymbolPayload)
		if !ok || payload.Weak {
			return
		}
		named = append(named, namedRoot{id: o.Id(), name: payload.Name})
	})
	sort.Slice(named, func(i, j int) bool { return named[i].id.Less(named[j].id) })

	var b strings.Builder
	b.WriteString("/* generated by rpsheap, do not edit */\n")
	for _, n := range named {
		fmt.Fprintf(&b, "RPS_INSTALL_NAMED_ROOT_OB(%s, %s)\n", n.id.String(), n.name)
	}
	fmt.Fprintf(&b, "#define RPS_NB_NAMED_ROOT_OB %d\n", len(named))
	return d.writeGeneratedHeader(ctx, "rps-names.hh", b.String(), suffix)
}

func (d *Dumper) writeConstantsHeader(ctx context.Context, suffix string) error {
	var b strings.Builder
	b.WriteString("/* generated by rpsheap, do not edit */\n")
	for _, id := range d.constants {
		fmt.Fprintf(&b, "RPS_INSTALL_CONSTANT_OB(%s)\n", id.String())
	}
	fmt.Fprintf(&b, "#define RPS_NB_CONSTANT_OB %d\n", len(d.constants))
	return d.writeGeneratedHeader(ctx, "rps-constants.hh", b.String(), suffix)
}

func (d *Dumper) writeGeneratedHeader(ctx context.Context, name, content, suffix string) error {
	finalPath := "generated/" + name
	tmpPath := finalPath + suffix
	if err := d.Config.Store.WriteFile(ctx, tmpPath, []byte(content)); err != nil {
		return newErr(KindIoError, "", 0, rpsvalNilID, tmpPath, err)
	}
	if err := RotateBackup(ctx, d.Config.Store, finalPath); err != nil {
		return newErr(KindRenameFailed, "", 0, rpsvalNilID, finalPath, err)
	}
	if err := d.Config.Store.Rename(ctx, tmpPath, finalPath); err != nil {
		return newErr(KindRenameFailed, "", 0, rpsvalNilID, finalPath, err)
	}
	return nil
}

func (d *Dumper) writeManifest(ctx context.Context, spaceIDs []string, suffix string) error {
	var roots []string
	d.Registry.EachRoot(func(o *Object) { roots = append(roots, o.Id().String()) })
	sort.Strings(roots)

	constants := make([]string, len(d.constants))
	for i, id := range d.constants {
		constants[i] = id.String()
	}

	var globalNames []NamedEntry
	d.Registry.EachRoot(func(o *Object) {
		payload, ok := o.Payload().(*SymbolPayload)
		if !ok {
			return
		}
		globalNames = append(globalNames, NamedEntry{Nam: payload.Name, Obj: o.Id().String()})
	})
	sort.Slice(globalNames, func(i, j int) bool { return globalNames[i].Nam < globalNames[j].Nam })

	m := Manifest{
		Format:          d.Config.AcceptedFormats[0],
		RpsMajorVersion: d.Config.RpsMajorVersion,
		RpsMinorVersion: d.Config.RpsMinorVersion,
		SpaceSet:        spaceIDs,
		GlobalRoots:     roots,
		Plugins:         []string{},
		ConstSet:        constants,
		GlobalNames:     globalNames,
		DumpDate:        d.dumpStart.UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return newErr(KindIoError, "", 0, rpsvalNilID, manifestPath, err)
	}

	tmpPath := manifestPath + suffix
	if err := d.Config.Store.WriteFile(ctx, tmpPath, data); err != nil {
		return newErr(KindIoError, "", 0, rpsvalNilID, tmpPath, err)
	}
	if err := RotateBackup(ctx, d.Config.Store, manifestPath); err != nil {
		return newErr(KindRenameFailed, "", 0, rpsvalNilID, manifestPath, err)
	}
	if err := d.Config.Store.Rename(ctx, tmpPath, manifestPath); err != nil {
		return newErr(KindRenameFailed, "", 0, rpsvalNilID, manifestPath, err)
	}
	return nil
}

// NewObjects reports how many scanned objects had mtime after the dump
// started, the "new objects" counter of Phase 1.
func (d *Dumper) NewObjects() int { return d.newObjects }
