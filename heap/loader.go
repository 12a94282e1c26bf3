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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/refpersys/rpsheap/rpsval"
)

// Manifest is rps_manifest.json.
type Manifest struct {
	Format          string       `json:"format"`
	RpsMajorVersion int          `json:"rpsmajorversion"`
	RpsMinorVersion int          `json:"rpsminorversion"`
	SpaceSet        []string     `json:"spaceset"`
	GlobalRoots     []string     `json:"globalroots"`
	Plugins         []string     `json:"plugins"`
	ConstSet        []string     `json:"constset"`
	GlobalNames     []NamedEntry `json:"globalnames"`
	// DumpDate is the RFC3339 timestamp the dump that produced this
	// manifest started at. It is informational only: the loader parses
	// it for logging but never compares against it.
	DumpDate string `json:"dump-date"`
}

type NamedEntry struct {
	Nam string `json:"nam"`
	Obj string `json:"obj"`
}

// Loader drives one load_from(dir) run. It is created fresh for
// every load; nothing about a run's position state (current space/line)
// survives it.
type Loader struct {
	Registry  *Registry
	Config    *Config
	deferred  *DeferredQueue
	loadStart time.Time
	manifest  *Manifest
}

// resolver returns an rpsval.Resolver bound to one position, for error
// reporting from deep inside value decoding; actual resolution always
// succeeds (auto-vivifying a placeholder) and is checked at end-of-load.
func (ld *Loader) resolver(spaceID string, line int, objID rpsval.ObjectId) rpsval.Resolver {
	return func(id rpsval.ObjectId) (rpsval.ObjectRef, error) {
		return ld.Registry.InternByID(id), nil
	}
}

const manifestPath = "rps_manifest.json"

// perUserManifestPath is the optional supplemental manifest a single
// user/installation may drop alongside the shared one, contributing
// extra roots and plugins without touching the generated manifest.
const perUserManifestPath = "rps_user_manifest.json"

// userManifest is the shape of perUserManifestPath: a narrow subset of
// Manifest's fields, since a per-user overlay never redeclares spaces,
// versions, or the format tag.
type userManifest struct {
	GlobalRoots []string `json:"globalroots"`
	Plugins     []string `json:"plugins"`
}

// routineClassName is the well-known symbol name of the "routine" class:
// instances of it carry an applying function resolved by oid suffix
// rather than an explicit "applying" body flag.
const routineClassName = "rps_routine"

func spacePath(spaceID string) string { return "persistore/sp" + spaceID + "-rps.json" }

// Load runs the full load control flow: parse the manifest, merge in an
// optional per-user manifest's roots and plugins, first-pass every
// space, bind hardcoded slots, second-pass every space (draining
// deferred tasks between spaces), drain remaining deferred tasks, and
// check for unresolved ids.
func Load(ctx context.Context, cfg *Config) (*Registry, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("heap: Config.Store is required")
	}
	reg := NewRegistry()
	ld := &Loader{Registry: reg, Config: cfg, deferred: NewDeferredQueue(), loadStart: time.Now()}

	manifestBytes, err := cfg.Store.ReadFile(ctx, manifestPath)
	if err != nil {
		return nil, newErr(KindBadManifest, "", 0, rpsvalNilID, manifestPath, err)
	}
	var m Manifest
	if err := json.Unmarshal(manifestBytes, &m); err != nil {
		return nil, newErr(KindBadManifest, "", 0, rpsvalNilID, manifestPath, err)
	}
	if !acceptedFormat(m.Format, cfg.AcceptedFormats) {
		return nil, newErr(KindFormatVersionRejected, "", 0, rpsvalNilID, manifestPath,
			fmt.Errorf("format %q not in accepted set", m.Format))
	}
	if m.RpsMinorVersion != cfg.RpsMinorVersion {
		warnPosition(cfg.logger(), "", "", 0, rpsvalNilID,
			fmt.Sprintf("manifest minor version %d differs from %d", m.RpsMinorVersion, cfg.RpsMinorVersion))
	}
	ld.manifest = &m
	if m.DumpDate != "" {
		cfg.logger().WithFields(logrus.Fields{"dump_date": m.DumpDate}).Debug("loading heap dumped at")
	}

	if exists, err := cfg.Store.Exists(ctx, perUserManifestPath); err != nil {
		return nil, newErr(KindIoError, "", 0, rpsvalNilID, perUserManifestPath, err)
	} else if exists {
		userBytes, err := cfg.Store.ReadFile(ctx, perUserManifestPath)
		if err != nil {
			return nil, newErr(KindIoError, "", 0, rpsvalNilID, perUserManifestPath, err)
		}
		var um userManifest
		if err := json.Unmarshal(userBytes, &um); err != nil {
			return nil, newErr(KindBadManifest, "", 0, rpsvalNilID, perUserManifestPath, err)
		}
		m.GlobalRoots = append(m.GlobalRoots, um.GlobalRoots...)
		m.Plugins = append(m.Plugins, um.Plugins...)
	}

	for _, spaceIDStr := range m.SpaceSet {
		if err := ld.firstPassSpace(ctx, spaceIDStr); err != nil {
			return nil, err
		}
	}

	// A negative HardcodedRootCount means the host has no compile-time
	// root table of its own (e.g. a generic CLI tool) and accepts
	// whatever count the manifest itself declares.
	if cfg.HardcodedRootCount >= 0 && len(m.GlobalRoots) != cfg.HardcodedRootCount {
		return nil, newErr(KindRootCountMismatch, "", 0, rpsvalNilID, manifestPath,
			fmt.Errorf("manifest declares %d roots, host expects %d", len(m.GlobalRoots), cfg.HardcodedRootCount))
	}
	for _, idStr := range m.GlobalRoots {
		id, err := rpsval.ParseObjectId(idStr)
		if err != nil {
			return nil, newErr(KindInvalidIdString, "", 0, rpsvalNilID, manifestPath, err)
		}
		if _, ok := reg.BindHardcodedRootSlot(id); !ok {
			return nil, newErr(KindRootCountMismatch, "", 0, id, manifestPath,
				fmt.Errorf("root id %s not found in any loaded space", idStr))
		}
	}
	for _, missing := range reg.ResolveConstantSlots() {
		warnPosition(cfg.logger(), "", "", 0, missing, "constant slot not found at end of binding")
	}

	for _, spaceIDStr := range m.SpaceSet {
		if err := ld.secondPassSpace(ctx, spaceIDStr); err != nil {
			return nil, err
		}
		if err := ld.deferred.Drain(ld); err != nil {
			return nil, err
		}
	}
	if err := ld.deferred.Drain(ld); err != nil {
		return nil, err
	}

	if unresolved := reg.UnresolvedIDs(); len(unresolved) > 0 {
		return nil, newErr(KindUnresolvedId, "", 0, unresolved[0], "",
			fmt.Errorf("%d id(s) never materialized", len(unresolved)))
	}

	return reg, nil
}

func acceptedFormat(tag string, accepted []string) bool {
	for _, a := range accepted {
		if a == tag {
			return true
		}
	}
	return false
}

// spacePrologue is the comment-header JSON object at the top of a space
// file.
type spacePrologue struct {
	Format          string `json:"format"`
	SpaceID         string `json:"spaceid"`
	NbObjects       int    `json:"nbobjects"`
	RpsMajorVersion int    `json:"rpsmajorversion"`
	RpsMinorVersion int    `json:"rpsminorversion"`
}

const objectBeginMarker = "//+ob"
const objectEndMarker = "//-ob"

// splitSpaceLines validates UTF-8 line-by-line and splits
// on '\n', preserving line numbers (1-based).
func splitSpaceLines(spaceID string, data []byte) ([]string, error) {
	lines := strings.Split(string(data), "\n")
	for i, l := range lines {
		if !utf8.ValidString(l) {
			return nil, newErr(KindNonUtf8Line, spaceID, i+1, rpsvalNilID, "", nil)
		}
	}
	return lines, nil
}

func (ld *Loader) firstPassSpace(ctx context.Context, spaceIDStr string) error {
	data, err := ld.Config.Store.ReadFile(ctx, spacePath(spaceIDStr))
	if err != nil {
		return newErr(KindIoError, spaceIDStr, 0, rpsvalNilID, spacePath(spaceIDStr), err)
	}
	lines, err := splitSpaceLines(spaceIDStr, data)
	if err != nil {
		return err
	}

	var prologueLines []string
	var prologue *spacePrologue
	seen := make(map[rpsval.ObjectId]bool)
	count := 0

	for i, line := range lines {
		lineNo := i + 1
		if prologue == nil && !strings.HasPrefix(line, objectBeginMarker) {
			if strings.HasPrefix(strings.TrimSpace(line), "#") {
				continue
			}
			prologueLines = append(prologueLines, line)
			continue
		}
		if prologue == nil {
			var p spacePrologue
			if err := json.Unmarshal([]byte(strings.Join(prologueLines, "\n")), &p); err != nil {
				return newErr(KindBadPrologue, spaceIDStr, lineNo, rpsvalNilID, "", err)
			}
			if p.SpaceID != spaceIDStr {
				return newErr(KindBadPrologue, spaceIDStr, lineNo, rpsvalNilID, "",
					fmt.Errorf("prologue spaceid %q does not match %q", p.SpaceID, spaceIDStr))
			}
			if p.Format != ld.manifest.Format {
				warnPosition(ld.Config.logger(), "", spaceIDStr, lineNo, rpsvalNilID,
					fmt.Sprintf("space prologue format %q differs from manifest format %q", p.Format, ld.manifest.Format))
			}
			prologue = &p
		}
		if !strings.HasPrefix(line, objectBeginMarker) {
			continue
		}
		id, ok := parseObjectBeginID(line)
		if !ok {
			return newErr(KindBadPrologue, spaceIDStr, lineNo, rpsvalNilID, "",
				fmt.Errorf("malformed object-begin marker %q", line))
		}
		if seen[id] {
			return newErr(KindDuplicateObject, spaceIDStr, lineNo, id, "", nil)
		}
		seen[id] = true
		count++
		ld.Registry.InternByID(id)
	}
	if prologue == nil {
		var p spacePrologue
		if err := json.Unmarshal([]byte(strings.Join(prologueLines, "\n")), &p); err != nil {
			return newErr(KindBadPrologue, spaceIDStr, len(lines), rpsvalNilID, "", err)
		}
		prologue = &p
	}
	if count != prologue.NbObjects {
		return newErr(KindObjectCountMismatch, spaceIDStr, len(lines), rpsvalNilID, "",
			fmt.Errorf("prologue declares %d objects, found %d", prologue.NbObjects, count))
	}
	return nil
}

func parseObjectBeginID(line string) (rpsval.ObjectId, bool) {
	rest := line[len(objectBeginMarker):]
	if len(rest) < 23 {
		return rpsval.NilObjectId, false
	}
	id, err := rpsval.ParseObjectId(rest[:23])
	if err != nil {
		return rpsval.NilObjectId, false
	}
	return id, true
}

func (ld *Loader) secondPassSpace(ctx context.Context, spaceIDStr string) error {
	data, err := ld.Config.Store.ReadFile(ctx, spacePath(spaceIDStr))
	if err != nil {
		return newErr(KindIoError, spaceIDStr, 0, rpsvalNilID, spacePath(spaceIDStr), err)
	}
	lines, err := splitSpaceLines(spaceIDStr, data)
	if err != nil {
		return err
	}

	spaceObj, spaceOK := ld.Registry.FindByID(mustParseSpaceOrSelf(spaceIDStr))
	var spaceRef rpsval.ObjectRef
	if spaceOK {
		spaceRef = spaceObj
	}

	i := 0
	for i < len(lines) {
		line := lines[i]
		if !strings.HasPrefix(line, objectBeginMarker) {
			i++
			continue
		}
		lineNo := i + 1
		id, ok := parseObjectBeginID(line)
		if !ok {
			return newErr(KindBadPrologue, spaceIDStr, lineNo, rpsvalNilID, "", fmt.Errorf("malformed object-begin marker"))
		}
		var bodyLines []string
		j := i + 1
		for j < len(lines) {
			l := lines[j]
			if strings.HasPrefix(l, objectBeginMarker) || strings.HasPrefix(l, objectEndMarker) {
				break
			}
			if strings.HasPrefix(strings.TrimSpace(l), "#") {
				j++
				continue
			}
			bodyLines = append(bodyLines, l)
			j++
		}
		var body map[string]any
		dec := json.NewDecoder(bytes.NewReader([]byte(strings.Join(bodyLines, "\n"))))
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return newErr(KindBadPrologue, spaceIDStr, lineNo, id, "", fmt.Errorf("object body: %w", err))
		}
		if err := ld.fillObject(spaceIDStr, lineNo, id, body, spaceRef); err != nil {
			return err
		}
		if spaceOK {
			ld.Registry.IndexInSpace(spaceObj.Id(), ld.Registry.InternByID(id))
		}
		i = j
	}
	return nil
}

// mustParseSpaceOrSelf resolves a space id string (as it appears in the
// manifest spaceset) to an rpsval.ObjectId; space ids are themselves
// object ids.
func mustParseSpaceOrSelf(spaceIDStr string) rpsval.ObjectId {
	id, err := rpsval.ParseObjectId(spaceIDStr)
	if err != nil {
		return rpsval.NilObjectId
	}
	return id
}

func (ld *Loader) fillObject(spaceIDStr string, lineNo int, id rpsval.ObjectId, body map[string]any, space rpsval.ObjectRef) error {
	o := ld.Registry.InternByID(id)
	oidStr, _ := body["oid"].(string)
	if oidStr != id.String() {
		return newErr(KindBadPrologue, spaceIDStr, lineNo, id, "", fmt.Errorf("oid field %q does not match object-begin id", oidStr))
	}

	resolve := ld.resolver(spaceIDStr, lineNo, id)

	if classStr, ok := body["class"].(string); ok {
		classID, err := rpsval.ParseObjectId(classStr)
		if err != nil {
			return newErr(KindInvalidIdString, spaceIDStr, lineNo, id, "", err)
		}
		o.LoaderSetClass(ld.Registry.InternByID(classID))
	}
	o.LoaderSetSpace(space)

	if restricted, ok := body["restricted"].(bool); ok {
		o.SetRestricted(restricted)
	}

	if mtimeRaw, ok := body["mtime"]; ok {
		mtime, err := jsonNumberToFloat(mtimeRaw)
		if err != nil {
			return newErr(KindBadPrologue, spaceIDStr, lineNo, id, "", err)
		}
		o.LoaderSetMtime(mtime, ld.loadStart, ld.Config.logger())
	}

	if compsRaw, ok := body["comps"].([]any); ok {
		o.LoaderReserveComps(len(compsRaw))
		for _, c := range compsRaw {
			v, err := ld.decodeValue(spaceIDStr, lineNo, id, c, resolve)
			if err != nil {
				return err
			}
			o.LoaderAddComp(v)
		}
	}

	if attrsRaw, ok := body["attrs"].([]any); ok {
		for _, entryRaw := range attrsRaw {
			entry, ok := entryRaw.(map[string]any)
			if !ok {
				continue
			}
			atV, err := ld.decodeValue(spaceIDStr, lineNo, id, entry["at"], resolve)
			if err != nil {
				return err
			}
			atRef, err := atV.AsObjectRef()
			if err != nil {
				return newErr(KindBadPrologue, spaceIDStr, lineNo, id, "", err)
			}
			vaV, err := ld.decodeValue(spaceIDStr, lineNo, id, entry["va"], resolve)
			if err != nil {
				return err
			}
			o.LoaderPutAttr(atRef, vaV)
		}
	}

	if magic, _ := body["magicattr"].(bool); magic {
		name := GetterPrefix + id.String()
		fnAny, ok := ld.Config.symbols().Resolve(name)
		if !ok {
			return newErr(KindMissingDynamicSymbol, spaceIDStr, lineNo, id, "", fmt.Errorf("missing getter symbol %s", name))
		}
		fn, ok := fnAny.(GetterFunc)
		if !ok {
			return newErr(KindMissingDynamicSymbol, spaceIDStr, lineNo, id, "", fmt.Errorf("symbol %s has wrong type", name))
		}
		o.LoaderPutMagicGetter(fn)
	}

	if applying, _ := body["applying"].(bool); applying {
		name := ApplyPrefix + id.String()
		fnAny, ok := ld.Config.symbols().Resolve(name)
		if !ok {
			return newErr(KindMissingDynamicSymbol, spaceIDStr, lineNo, id, "", fmt.Errorf("missing applying symbol %s", name))
		}
		fn, ok := fnAny.(ApplyFunc)
		if !ok {
			return newErr(KindMissingDynamicSymbol, spaceIDStr, lineNo, id, "", fmt.Errorf("symbol %s has wrong type", name))
		}
		o.LoaderPutApplyingFn(fn)
	}

	if payloadTok, ok := body["payload"].(string); ok {
		if err := ld.installPayloadFromToken(o, payloadTok, body, spaceIDStr, lineNo); err != nil {
			return err
		}
	}

	if class := o.Class(); class != nil {
		if routineClass, ok := ld.Registry.FindSymbol(routineClassName); ok && class.RefId() == routineClass.RefId() {
			name := ApplyPrefix + id.String()
			fnAny, ok := ld.Config.symbols().Resolve(name)
			if !ok {
				warnPosition(ld.Config.logger(), KindMissingDynamicSymbol, spaceIDStr, lineNo, id,
					"no applying symbol "+name+" for rps_routine instance")
			} else if fn, ok := fnAny.(ApplyFunc); ok {
				o.LoaderPutApplyingFn(fn)
			} else {
				warnPosition(ld.Config.logger(), KindMissingDynamicSymbol, spaceIDStr, lineNo, id,
					"symbol "+name+" has wrong type for rps_routine applying fn")
			}
		}
	}

	if loadrout, ok := body["loadrout"].(string); ok {
		fnAny, ok := ld.Config.symbols().Resolve(loadrout)
		if !ok {
			return newErr(KindMissingDynamicSymbol, spaceIDStr, lineNo, id, "", fmt.Errorf("missing loadrout symbol %s", loadrout))
		}
		if fn, ok := fnAny.(func(*Object, *Loader)); ok {
			fn(o, ld)
		}
	}

	return nil
}

// decodeValue decodes one comp/attr value, special-casing the
// `{"vtype":"instance",...}` shape that rpsval.ValueFromJSON cannot
// handle on its own: only the loader knows whether the class's
// classinfo payload is materialized yet.
func (ld *Loader) decodeValue(spaceIDStr string, lineNo int, id rpsval.ObjectId, raw any, resolve rpsval.Resolver) (rpsval.Value, error) {
	if instBody, ok := rpsval.IsInstanceShape(raw); ok {
		return ld.decodeInstance(spaceIDStr, lineNo, id, instBody, resolve)
	}
	return rpsval.ValueFromJSON(raw, resolve)
}

// decodeInstance builds an Instance value from its `{"vtype":"instance",
// ...}` body. The instance is constructed eagerly — it does not itself
// need the class's classinfo payload — but attribute-set conformance can
// only be checked once that payload exists, so that check is enqueued
// as a deferred task rather than done inline.
func (ld *Loader) decodeInstance(spaceIDStr string, lineNo int, id rpsval.ObjectId, body map[string]any, resolve rpsval.Resolver) (rpsval.Value, error) {
	classStr, _ := body["class"].(string)
	classID, err := rpsval.ParseObjectId(classStr)
	if err != nil {
		return rpsval.Empty, newErr(KindInvalidIdString, spaceIDStr, lineNo, id, "", err)
	}
	classObj := ld.Registry.InternByID(classID)

	iattrsRaw, _ := body["iattrs"].([]any)
	attrs := rpsval.NewAttrMap(len(iattrsRaw))
	for _, entryRaw := range iattrsRaw {
		entry, ok := entryRaw.(map[string]any)
		if !ok {
			continue
		}
		atV, err := ld.decodeValue(spaceIDStr, lineNo, id, entry["at"], resolve)
		if err != nil {
			return rpsval.Empty, err
		}
		atRef, err := atV.AsObjectRef()
		if err != nil {
			return rpsval.Empty, newErr(KindBadPrologue, spaceIDStr, lineNo, id, "", err)
		}
		vaV, err := ld.decodeValue(spaceIDStr, lineNo, id, entry["va"], resolve)
		if err != nil {
			return rpsval.Empty, err
		}
		attrs.Put(atRef, vaV)
	}

	icompsRaw, _ := body["icomps"].([]any)
	comps := make([]rpsval.Value, 0, len(icompsRaw))
	for _, c := range icompsRaw {
		v, err := ld.decodeValue(spaceIDStr, lineNo, id, c, resolve)
		if err != nil {
			return rpsval.Empty, err
		}
		comps = append(comps, v)
	}

	meta, err := ld.decodeMeta(body, resolve)
	if err != nil {
		return rpsval.Empty, newErr(KindBadPrologue, spaceIDStr, lineNo, id, "", err)
	}

	ld.enqueueInstanceAttrCheck(spaceIDStr, lineNo, id, classObj, attrs)

	return rpsval.NewInstance(classObj, attrs, comps, meta), nil
}

// decodeMeta decodes the optional "metaobj"/"metarank" pair shared by
// the closure and instance wire shapes, using only rpsval's exported
// surface.
func (ld *Loader) decodeMeta(body map[string]any, resolve rpsval.Resolver) (*rpsval.MetaInfo, error) {
	metaObjRaw, hasMeta := body["metaobj"]
	if !hasMeta {
		return nil, nil
	}
	metaIDStr, ok := metaObjRaw.(string)
	if !ok {
		return nil, rpsval.ErrUnknownValueShape
	}
	metaID, err := rpsval.ParseObjectId(metaIDStr)
	if err != nil {
		return nil, rpsval.ErrUnknownValueShape
	}
	ref, err := resolve(metaID)
	if err != nil {
		return nil, err
	}
	var rank int32
	if r, ok := body["metarank"]; ok {
		f, err := jsonNumberToFloat(r)
		if err != nil {
			return nil, err
		}
		rank = int32(f)
	}
	return &rpsval.MetaInfo{Metaobject: ref, Metarank: rank}, nil
}

// enqueueInstanceAttrCheck defers the instance's attribute-set
// conformance check until classObj's classinfo payload is available
// (it may be a forward reference still to be filled by a later
// object-begin line, possibly in another space). A missing symbol-set
// membership is a warning, not a fatal error, consistent with every
// other best-effort check the loader runs at end-of-binding.
func (ld *Loader) enqueueInstanceAttrCheck(spaceIDStr string, lineNo int, id rpsval.ObjectId, classObj *Object, attrs *rpsval.AttrMap) {
	task := func(ld *Loader) (bool, error) {
		info, ok := classObj.Payload().(*ClassInfoPayload)
		if !ok {
			return false, nil
		}
		attrs.Iterate(func(k rpsval.ObjectRef, _ rpsval.Value) bool {
			if !info.HasAttribute(k) {
				warnPosition(ld.Config.logger(), KindBadPrologue, spaceIDStr, lineNo, id,
					"instance attribute "+k.RefId().String()+" not in class "+classObj.Id().String()+"'s declared attribute set")
			}
			return true
		})
		return true, nil
	}
	if err := ld.deferred.Add(task); err != nil {
		warnPosition(ld.Config.logger(), KindDeferredOverflow, spaceIDStr, lineNo, id,
			"could not enqueue instance attribute-set validation: "+err.Error())
	}
}

// installPayloadFromToken resolves the payload token: a built-in/plugin
// kind name goes through the payloadRegistry; an id-shaped token is
// validated but needs no symbol resolution.
func (ld *Loader) installPayloadFromToken(o *Object, token string, body map[string]any, spaceIDStr string, lineNo int) error {
	if rpsval.LooksLikeObjectId(token) {
		if _, err := rpsval.ParseObjectId(token); err != nil {
			return newErr(KindInvalidIdString, spaceIDStr, lineNo, o.Id(), "", err)
		}
		return nil
	}
	deser, ok := lookupPayloadKind(token)
	if !ok {
		warnPosition(ld.Config.logger(), "", spaceIDStr, lineNo, o.Id(), "unknown payload kind "+token)
		return nil
	}
	payload, err := deser(o, ld, body, spaceIDStr, lineNo)
	if err != nil {
		return err
	}
	return o.InstallPayload(payload)
}

func jsonNumberToFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	default:
		switch n := v.(type) {
		case float64:
			return n, nil
		}
	}
	if jn, ok := raw.(interface{ Float64() (float64, error) }); ok {
		return jn.Float64()
	}
	return 0, fmt.Errorf("mtime: not a number")
}
