package crud

import "reflect"

// shapeKey identifies a record instance inside one shaping call. Repeats of
// the same (entity, pk) pair collapse to null, which bounds mutually
// referential relation graphs at the cost of an incomplete second
// occurrence.
type shapeKey struct {
	t  reflect.Type
	pk any
}

// Shape normalizes a backend record into the entity's public shape: only
// declared fields are emitted, and relation fields are omitted entirely
// unless includeRelations is set, so non-expanded responses never mention
// them. Relation graphs are shaped one level per declared relation,
// recursively, with a per-call seen set guarding against reference cycles.
func Shape(desc *Descriptor, rec any, includeRelations bool) map[string]any {
	seen := map[shapeKey]bool{}
	shaped, _ := shapeRecord(desc, reflect.ValueOf(rec), includeRelations, seen)
	return shaped
}

// ShapeList shapes every record of a result page. Each record gets its own
// seen set: cycle collapsing is per top-level record, not per page.
func ShapeList[E any](desc *Descriptor, recs []E, includeRelations bool) []map[string]any {
	out := make([]map[string]any, 0, len(recs))
	for i := range recs {
		out = append(out, Shape(desc, recs[i], includeRelations))
	}
	return out
}

func shapeRecord(desc *Descriptor, v reflect.Value, include bool, seen map[shapeKey]bool) (map[string]any, bool) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if !v.IsValid() || desc == nil {
		return nil, false
	}

	key := shapeKey{t: desc.goType, pk: desc.PKValue(v.Interface())}
	if seen[key] {
		return nil, false
	}
	seen[key] = true

	out := make(map[string]any, len(desc.fields)+len(desc.relations))
	for _, f := range desc.fields {
		out[f.Name] = f.Value(v.Interface())
	}
	if !include {
		return out, true
	}

	for _, rel := range desc.relations {
		target := descriptorFor(rel.Target)
		rv := rel.value(v)
		if rel.Many {
			items := make([]any, 0)
			if rv.Kind() == reflect.Slice {
				for i := 0; i < rv.Len(); i++ {
					if shaped, ok := shapeRecord(target, rv.Index(i), include, seen); ok {
						items = append(items, shaped)
					} else {
						items = append(items, nil)
					}
				}
			}
			out[rel.Name] = items
			continue
		}
		if rv.Kind() == reflect.Struct && rv.IsZero() {
			out[rel.Name] = nil
			continue
		}
		if shaped, ok := shapeRecord(target, rv, include, seen); ok {
			out[rel.Name] = shaped
		} else {
			out[rel.Name] = nil
		}
	}
	return out, true
}
