package crud

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm/schema"
)

// Audit fields shared by every entity. They are stamped by the engine from
// the caller context and are never client-settable.
const (
	FieldCreationDate = "creation_date"
	FieldCreatedBy    = "created_by"
	FieldUpdationDate = "updation_date"
	FieldUpdatedBy    = "updated_by"
	FieldEnabledFlag  = "enabled_flag"
	FieldTraceID      = "trace_id"
)

// serverManaged fields are stripped from every client payload before
// persistence; the engine or the storage backend owns them.
var serverManaged = map[string]bool{
	FieldCreationDate: true,
	FieldUpdationDate: true,
	FieldEnabledFlag:  true,
}

// Field is one declared non-relation attribute of an entity.
type Field struct {
	Name     string // wire name, from the json tag
	GoName   string
	Column   string // database column name
	Required bool
	Kind     reflect.Kind
	index    []int
}

// Relation is a declared relationship attribute.
type Relation struct {
	Name      string // wire name of the nested field, e.g. "teams"
	GoName    string
	Target    reflect.Type // struct type of the related entity
	Many      bool
	RefIDsKey string // wire key carrying replacement ids, e.g. "teams_refids"
	index     []int
}

// Descriptor is the immutable metadata of one entity type: field allow-list,
// primary key and relationship map. Built once per type at startup and shared
// by every backend and generated route.
type Descriptor struct {
	Name       string
	Table      string
	PrimaryKey string // wire name of the primary-key field

	goType    reflect.Type
	pk        *Field
	fields    []*Field
	fieldSet  map[string]*Field
	relations []*Relation
	relSet    map[string]*Relation
}

var (
	descriptors sync.Map // reflect.Type -> *Descriptor
	naming      = schema.NamingStrategy{}
)

// Describe builds (or returns the cached) descriptor for the entity type E.
func Describe[E any]() (*Descriptor, error) {
	var zero E
	return describeType(reflect.TypeOf(zero))
}

// DescriptorOf returns the descriptor for the given entity type, building
// and caching it on first use. It returns nil for non-entity types.
func DescriptorOf(t reflect.Type) *Descriptor {
	return descriptorFor(t)
}

// descriptorFor returns the descriptor previously built for t, or nil.
func descriptorFor(t reflect.Type) *Descriptor {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if d, ok := descriptors.Load(t); ok {
		return d.(*Descriptor)
	}
	d, err := describeType(t)
	if err != nil {
		return nil
	}
	return d
}

func describeType(t reflect.Type) (*Descriptor, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entity type must be a struct, got %s", t.Kind())
	}
	if d, ok := descriptors.Load(t); ok {
		return d.(*Descriptor), nil
	}

	d := &Descriptor{
		Name:     t.Name(),
		Table:    naming.TableName(t.Name()),
		goType:   t,
		fieldSet: map[string]*Field{},
		relSet:   map[string]*Relation{},
	}
	refIDs := map[string]string{} // relation wire name -> refids wire key
	if err := d.collectFields(t, nil, refIDs); err != nil {
		return nil, err
	}

	if d.pk == nil {
		return nil, fmt.Errorf("entity %s has no primary key field", d.Name)
	}
	d.PrimaryKey = d.pk.Name
	for _, rel := range d.relations {
		if key, ok := refIDs[rel.Name]; ok {
			rel.RefIDsKey = key
		} else {
			rel.RefIDsKey = rel.Name + "_refids"
		}
	}

	actual, _ := descriptors.LoadOrStore(t, d)
	return actual.(*Descriptor), nil
}

func (d *Descriptor) collectFields(t reflect.Type, path []int, refIDs map[string]string) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		index := append(append([]int{}, path...), i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if err := d.collectFields(sf.Type, index, refIDs); err != nil {
				return err
			}
			continue
		}

		name := wireName(sf)
		if name == "" {
			continue
		}
		gormTag := sf.Tag.Get("gorm")

		// virtual *_refids inputs carry relation membership, they are not
		// persisted columns
		if strings.HasSuffix(name, "_refids") {
			refIDs[strings.TrimSuffix(name, "_refids")] = name
			continue
		}
		if gormTag == "-" {
			continue
		}

		if target, many, ok := relationTarget(sf.Type); ok {
			rel := &Relation{
				Name:   name,
				GoName: sf.Name,
				Target: target,
				Many:   many,
				index:  index,
			}
			d.relations = append(d.relations, rel)
			d.relSet[name] = rel
			continue
		}

		f := &Field{
			Name:     name,
			GoName:   sf.Name,
			Column:   naming.ColumnName("", sf.Name),
			Required: strings.Contains(sf.Tag.Get("binding"), "required"),
			Kind:     derefKind(sf.Type),
			index:    index,
		}
		d.fields = append(d.fields, f)
		d.fieldSet[name] = f
		if d.pk == nil && (strings.Contains(gormTag, "primaryKey") || sf.Name == "ID") {
			d.pk = f
		}
	}
	return nil
}

func wireName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	if tag != "" {
		return tag
	}
	return naming.ColumnName("", sf.Name)
}

// relationTarget reports whether t declares a relationship: a struct,
// *struct, []struct or []*struct value that is not a time.
func relationTarget(t reflect.Type) (reflect.Type, bool, bool) {
	many := false
	if t.Kind() == reflect.Slice {
		many = true
		t = t.Elem()
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == reflect.TypeOf(time.Time{}) {
		return nil, false, false
	}
	return t, many, true
}

func derefKind(t reflect.Type) reflect.Kind {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind()
}

// Field returns the declared value field with the given wire name.
func (d *Descriptor) Field(name string) (*Field, bool) {
	f, ok := d.fieldSet[name]
	return f, ok
}

// Fields returns the declared value fields in declaration order.
func (d *Descriptor) Fields() []*Field { return d.fields }

// Relation returns the declared relation with the given wire name.
func (d *Descriptor) Relation(name string) (*Relation, bool) {
	r, ok := d.relSet[name]
	return r, ok
}

// Relations returns the declared relations in declaration order.
func (d *Descriptor) Relations() []*Relation { return d.relations }

// Column resolves a wire field name into its database column, rejecting
// anything outside the descriptor's allow-list. Backends only ever
// interpolate column names that passed through here.
func (d *Descriptor) Column(field string) (string, error) {
	f, ok := d.fieldSet[field]
	if !ok {
		return "", InvalidQueryf("unknown field %q", field)
	}
	return f.Column, nil
}

// Value reads the given field from an entity record.
func (f *Field) Value(rec any) any {
	v := reflect.ValueOf(rec)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	fv := v.FieldByIndex(f.index)
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	return fv.Interface()
}

// value reads the raw (possibly pointer/slice) relation field.
func (r *Relation) value(v reflect.Value) reflect.Value {
	return v.FieldByIndex(r.index)
}

// PKValue reads the primary-key value of an entity record.
func (d *Descriptor) PKValue(rec any) any {
	return d.pk.Value(rec)
}

// CoercePK converts a wire-supplied id (JSON number, string path segment)
// into the primary key's native type.
func (d *Descriptor) CoercePK(v any) (any, error) {
	switch d.pk.Kind {
	case reflect.String:
		return fmt.Sprint(v), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(v)
		if err != nil {
			return nil, InvalidQueryf("invalid id %v", v)
		}
		return n, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt64(v)
		if err != nil || n < 0 {
			return nil, InvalidQueryf("invalid id %v", v)
		}
		return uint64(n), nil
	default:
		return v, nil
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case uint:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case float32:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

// FilterPayload reduces a client payload to the entity's writable fields and
// stamps the audit attributes from the caller context. Server-managed fields
// and unknown keys are dropped, as are explicit nulls. The primary key is
// dropped unless keepPK is set (upsert keeps it, create never does).
func (d *Descriptor) FilterPayload(payload map[string]any, caller Caller, create, keepPK bool) map[string]any {
	params := make(map[string]any, len(payload)+4)
	for key, value := range payload {
		if value == nil || serverManaged[key] {
			continue
		}
		if key == d.PrimaryKey && !keepPK {
			continue
		}
		if _, ok := d.fieldSet[key]; !ok {
			continue
		}
		params[key] = value
	}

	params[FieldTraceID] = caller.TraceID
	params[FieldUpdatedBy] = caller.UserID
	if create {
		params[FieldCreatedBy] = caller.UserID
	}
	return params
}

// RelationIDs extracts the *_refids membership lists from a client payload.
func (d *Descriptor) RelationIDs(payload map[string]any) map[string][]any {
	out := map[string][]any{}
	for _, rel := range d.relations {
		raw, ok := payload[rel.RefIDsKey]
		if !ok || raw == nil {
			continue
		}
		list, ok := raw.([]any)
		if !ok {
			continue
		}
		out[rel.Name] = list
	}
	return out
}

// ValidateCreate checks that every required field is present in a create
// payload.
func (d *Descriptor) ValidateCreate(payload map[string]any) error {
	var missing []string
	for _, f := range d.fields {
		if !f.Required || f.Name == d.PrimaryKey {
			continue
		}
		if v, ok := payload[f.Name]; !ok || v == nil {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return ValidationErrorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
