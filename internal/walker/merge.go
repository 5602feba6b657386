package walker

import (
	"fmt"

	"github.com/cfnts/cfnts/internal/diagnostic"
	"github.com/cfnts/cfnts/internal/schema"
)

// flattenAllOf expands frag into the list of fragments it is the
// conjunction of: frag itself (without allOf) followed by every allOf
// member, recursively. Members that only reference another local fragment
// are replaced by that fragment.
func (w *Walker) flattenAllOf(frag *schema.Map, path string) []*schema.Map {
	all, ok := frag.Get(fieldAllOf)
	if !ok {
		return []*schema.Map{frag}
	}
	base := frag.Clone()
	base.Delete(fieldAllOf)
	out := []*schema.Map{base}

	if all.Kind != schema.Array {
		w.warn(diagnostic.CategoryShape, path+"/allOf", "allOf must be an array, got %s", all.Kind)
		return out
	}
	for i, m := range all.Arr {
		mpath := fmt.Sprintf("%s/allOf/%d", path, i)
		if m.Kind != schema.Object {
			w.warn(diagnostic.CategoryShape, mpath, "allOf member is not a schema object")
			continue
		}
		if target, tpath, ok := w.refOnlyTarget(m.Obj, mpath); ok {
			w.inlineStack = append(w.inlineStack, tpath)
			out = append(out, w.flattenAllOf(target, tpath)...)
			w.inlineStack = w.inlineStack[:len(w.inlineStack)-1]
			continue
		}
		out = append(out, w.flattenAllOf(m.Obj, mpath)...)
	}
	return out
}

// refOnlyTarget resolves a fragment whose only shape field is a local $ref.
// It reports false when the fragment is not such a reference or the target
// cannot be used (the reference is then left for walkType to report).
func (w *Walker) refOnlyTarget(frag *schema.Map, path string) (*schema.Map, string, bool) {
	ref, ok := frag.Get(fieldRef)
	if !ok || ref.Kind != schema.String || !schema.IsLocalPointer(ref.Str) {
		return nil, "", false
	}
	for _, k := range frag.Keys() {
		if k != fieldRef && shapeFields[k] {
			return nil, "", false
		}
	}
	if w.onInlineStack(ref.Str) {
		w.warn(diagnostic.CategoryReference, path, "cyclic allOf reference %s", ref.Str)
		return nil, "", false
	}
	target, err := w.doc.Resolve(ref.Str)
	if err != nil || target.Kind != schema.Object {
		return nil, "", false
	}
	return target.Obj, ref.Str, true
}

func (w *Walker) onInlineStack(ref string) bool {
	for _, r := range w.inlineStack {
		if r == ref {
			return true
		}
	}
	return false
}

// mergeFragments merges fragments field by field. List fields named in
// concatFields are concatenated without duplicates, name-keyed maps are
// merged per member, and disagreeing scalar values are reported as a
// conflict with the first value kept.
func (w *Walker) mergeFragments(frags []*schema.Map, path string) *schema.Map {
	if len(frags) == 0 {
		panic("walker: mergeFragments called with no fragments")
	}
	if len(frags) == 1 {
		return frags[0]
	}
	out := frags[0].Clone()
	for _, frag := range frags[1:] {
		for _, k := range frag.Keys() {
			v, _ := frag.Get(k)
			existing, ok := out.Get(k)
			switch {
			case !ok:
				out.Set(k, v)
			case concatFields[k]:
				out.Set(k, concatUnique(existing, v))
			case objectMergeFields[k] && existing.Kind == schema.Object && v.Kind == schema.Object:
				out.Set(k, schema.ObjectValue(w.mergeMembers(existing.Obj, v.Obj, path+"/"+k)))
			case !existing.Equal(v):
				w.warn(diagnostic.CategoryMerge, path, "conflicting values for %q in allOf: %s and %s, keeping the first",
					k, abbreviate(existing), abbreviate(v))
			}
		}
	}
	return out
}

// mergeMembers merges two name-keyed schema maps such as "properties".
// Members present in both are merged as fragments.
func (w *Walker) mergeMembers(a, b *schema.Map, path string) *schema.Map {
	out := a.Clone()
	for _, name := range b.Keys() {
		bv, _ := b.Get(name)
		av, ok := out.Get(name)
		if !ok {
			out.Set(name, bv)
			continue
		}
		if av.Kind == schema.Object && bv.Kind == schema.Object {
			merged := w.mergeFragments([]*schema.Map{av.Obj, bv.Obj}, path+"/"+name)
			out.Set(name, schema.ObjectValue(merged))
			continue
		}
		if !av.Equal(bv) {
			w.warn(diagnostic.CategoryMerge, path+"/"+name, "conflicting definitions in allOf, keeping the first")
		}
	}
	return out
}

func concatUnique(a, b schema.Value) schema.Value {
	var out []schema.Value
	add := func(v schema.Value) {
		for _, e := range out {
			if e.Equal(v) {
				return
			}
		}
		out = append(out, v)
	}
	for _, v := range []schema.Value{a, b} {
		if v.Kind == schema.Array {
			for _, e := range v.Arr {
				add(e)
			}
		} else {
			add(v)
		}
	}
	return schema.ArrayValue(out...)
}

func abbreviate(v schema.Value) string {
	r := []rune(v.String())
	if len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return string(r)
}
