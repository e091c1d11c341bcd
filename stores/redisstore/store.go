// Package redisstore serves entities from Redis hashes. Each entity table
// maps to one hash; every record is a msgpack-encoded document keyed by its
// primary key. Filtering, sorting and paging happen client-side with the
// engine's shared predicate matcher, so the same query semantics hold on
// both backends.
package redisstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"crudapi/crud"
)

// Store holds the shared client and the registry of collections. The
// registry is what lets one collection expand relations into another.
type Store struct {
	client *redis.Client
	prefix string

	mu          sync.RWMutex
	collections map[string]rawCollection
}

type rawCollection interface {
	rawDoc(ctx context.Context, pk string) (map[string]any, bool, error)
}

// NewStore wraps a Redis client. All keys live under the given prefix.
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "crud"
	}
	return &Store{
		client:      client,
		prefix:      prefix,
		collections: make(map[string]rawCollection),
	}
}

func (s *Store) register(table string, c rawCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[table] = c
}

func (s *Store) collection(table string) (rawCollection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[table]
	return c, ok
}

// Collection serves one entity type from its hash.
type Collection[E any] struct {
	store *Store
	desc  *crud.Descriptor
}

// NewCollection builds the adapter for entity type E and registers it with
// the store so sibling collections can expand relations into it.
func NewCollection[E any](store *Store) (*Collection[E], error) {
	desc, err := crud.Describe[E]()
	if err != nil {
		return nil, err
	}
	c := &Collection[E]{store: store, desc: desc}
	store.register(desc.Table, c)
	return c, nil
}

// Descriptor exposes the entity metadata the collection was built from.
func (c *Collection[E]) Descriptor() *crud.Descriptor { return c.desc }

func (c *Collection[E]) hashKey() string {
	return c.store.prefix + ":" + c.desc.Table
}

func (c *Collection[E]) seqKey() string {
	return c.hashKey() + ":seq"
}

func (c *Collection[E]) rawDoc(ctx context.Context, pk string) (map[string]any, bool, error) {
	raw, err := c.store.client.HGet(ctx, c.hashKey(), pk).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, crud.BackendError(err)
	}
	doc, err := decodeDoc([]byte(raw))
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (c *Collection[E]) rawDocs(ctx context.Context) (map[string]map[string]any, error) {
	raw, err := c.store.client.HGetAll(ctx, c.hashKey()).Result()
	if err != nil {
		return nil, crud.BackendError(err)
	}
	docs := make(map[string]map[string]any, len(raw))
	for pk, blob := range raw {
		doc, err := decodeDoc([]byte(blob))
		if err != nil {
			return nil, err
		}
		docs[pk] = doc
	}
	return docs, nil
}

func (c *Collection[E]) writeDoc(ctx context.Context, pk string, doc map[string]any) error {
	blob, err := msgpack.Marshal(doc)
	if err != nil {
		return crud.BackendError(err)
	}
	if err := c.store.client.HSet(ctx, c.hashKey(), pk, blob).Err(); err != nil {
		return crud.BackendError(err)
	}
	return nil
}

func decodeDoc(blob []byte) (map[string]any, error) {
	var doc map[string]any
	if err := msgpack.Unmarshal(blob, &doc); err != nil {
		return nil, crud.BackendError(err)
	}
	return doc, nil
}

// matchScope applies the soft-delete filter and caller restriction to a
// single document.
func matchScope(doc map[string]any, scope crud.Scope) bool {
	if !scope.IncludeDisabled && !docEnabled(doc) {
		return false
	}
	if scope.SelfOnly {
		owner, _ := doc[crud.FieldCreatedBy].(string)
		if owner != scope.UserID {
			return false
		}
	}
	return true
}

func docEnabled(doc map[string]any) bool {
	switch v := doc[crud.FieldEnabledFlag].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

// selectDocs filters the full hash down to matching documents in stable
// primary key order.
func (c *Collection[E]) selectDocs(ctx context.Context, scope crud.Scope, q *crud.Query) ([]map[string]any, error) {
	all, err := c.rawDocs(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]map[string]any, 0, len(all))
	for _, doc := range all {
		if matchScope(doc, scope) && crud.MatchRecord(doc, q) {
			matched = append(matched, doc)
		}
	}
	pk := c.desc.PrimaryKey
	sort.SliceStable(matched, func(i, j int) bool {
		cmp, ok := crud.Compare(matched[i][pk], matched[j][pk])
		return ok && cmp < 0
	})
	return matched, nil
}

func sortDocs(docs []map[string]any, s *crud.Sort) {
	if s == nil {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		cmp, ok := crud.Compare(docs[i][s.Field], docs[j][s.Field])
		if !ok {
			return false
		}
		if s.Desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func (c *Collection[E]) Count(ctx context.Context, scope crud.Scope, q *crud.Query) (int64, error) {
	docs, err := c.selectDocs(ctx, scope, q)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (c *Collection[E]) FetchAll(ctx context.Context, scope crud.Scope, q *crud.Query, page crud.Page, s *crud.Sort, expand bool) ([]E, int64, error) {
	docs, err := c.selectDocs(ctx, scope, q)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(docs))

	sortDocs(docs, s)
	low, high := page.Window(len(docs))
	docs = docs[low:high]

	models := make([]E, 0, len(docs))
	for _, doc := range docs {
		model, err := c.materialize(ctx, doc, expand)
		if err != nil {
			return nil, 0, err
		}
		models = append(models, model)
	}
	return models, total, nil
}

func (c *Collection[E]) FetchOne(ctx context.Context, scope crud.Scope, q *crud.Query, expand bool) (E, error) {
	var zero E
	docs, err := c.selectDocs(ctx, scope, q)
	if err != nil {
		return zero, err
	}
	if len(docs) == 0 {
		return zero, crud.ErrNotFound
	}
	return c.materialize(ctx, docs[0], expand)
}

// materialize decodes a document into the entity type, optionally grafting
// related documents in first so nested structs decode alongside.
func (c *Collection[E]) materialize(ctx context.Context, doc map[string]any, expand bool) (E, error) {
	var model E
	if expand && len(c.desc.Relations()) > 0 {
		expanded, err := c.expandDoc(ctx, doc)
		if err != nil {
			return model, err
		}
		doc = expanded
	}
	if err := crud.DecodeRecord(doc, &model); err != nil {
		return model, err
	}
	return model, nil
}

// pkString renders a primary key value as a stable hash-field name. Ids
// off the wire arrive as float64, which fmt alone renders in exponent form
// past 1e6, so coerce to the key's native kind first.
func pkString(desc *crud.Descriptor, id any) string {
	if coerced, err := desc.CoercePK(id); err == nil {
		return fmt.Sprint(coerced)
	}
	return fmt.Sprint(id)
}

// expandDoc resolves relation membership into nested documents. To-many
// membership lives in the document as a list of foreign primary keys under
// the relation's refids key; to-one follows the foreign key field.
func (c *Collection[E]) expandDoc(ctx context.Context, doc map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	for _, rel := range c.desc.Relations() {
		target := crud.DescriptorOf(rel.Target)
		if target == nil {
			continue
		}
		coll, ok := c.store.collection(target.Table)
		if !ok {
			continue
		}
		if rel.Many {
			ids, ok := doc[rel.RefIDsKey].([]any)
			if !ok {
				continue
			}
			nested := make([]map[string]any, 0, len(ids))
			for _, id := range ids {
				related, found, err := coll.rawDoc(ctx, pkString(target, id))
				if err != nil {
					return nil, err
				}
				if found && docEnabled(related) {
					nested = append(nested, related)
				}
			}
			out[rel.Name] = nested
		} else {
			fk := rel.Name + "_id"
			id, ok := doc[fk]
			if !ok || id == nil {
				continue
			}
			related, found, err := coll.rawDoc(ctx, pkString(target, id))
			if err != nil {
				return nil, err
			}
			if found && docEnabled(related) {
				out[rel.Name] = related
			}
		}
	}
	return out, nil
}

func (c *Collection[E]) Insert(ctx context.Context, fields map[string]any) (E, error) {
	var zero E
	doc := make(map[string]any, len(fields)+4)
	for k, v := range fields {
		doc[k] = v
	}

	pkValue, hasPK := doc[c.desc.PrimaryKey]
	if !hasPK || pkValue == nil {
		id, err := c.store.client.Incr(ctx, c.seqKey()).Result()
		if err != nil {
			return zero, crud.BackendError(err)
		}
		pkValue = id
		doc[c.desc.PrimaryKey] = id
	} else if coerced, err := c.desc.CoercePK(pkValue); err == nil {
		pkValue = coerced
		doc[c.desc.PrimaryKey] = coerced
	}
	pk := fmt.Sprint(pkValue)

	now := time.Now().UTC()
	doc[crud.FieldCreationDate] = now
	doc[crud.FieldUpdationDate] = now
	doc[crud.FieldEnabledFlag] = true

	blob, err := msgpack.Marshal(doc)
	if err != nil {
		return zero, crud.BackendError(err)
	}
	set, err := c.store.client.HSetNX(ctx, c.hashKey(), pk, blob).Result()
	if err != nil {
		return zero, crud.BackendError(err)
	}
	if !set {
		return zero, fmt.Errorf("%w: %s %q already exists", crud.ErrConstraintViolation, c.desc.PrimaryKey, pk)
	}
	return c.materialize(ctx, doc, false)
}

func (c *Collection[E]) UpdateByID(ctx context.Context, id any, fields map[string]any, relations map[string][]any) (E, error) {
	var zero E
	pk := pkString(c.desc, id)
	doc, found, err := c.rawDoc(ctx, pk)
	if err != nil {
		return zero, err
	}
	if !found || !docEnabled(doc) {
		return zero, crud.ErrNotFound
	}

	for k, v := range fields {
		if k == c.desc.PrimaryKey {
			continue
		}
		doc[k] = v
	}
	for name, ids := range relations {
		rel, ok := c.desc.Relation(name)
		if !ok {
			return zero, crud.InvalidQueryf("unknown relation %q", name)
		}
		doc[rel.RefIDsKey] = ids
	}
	doc[crud.FieldUpdationDate] = time.Now().UTC()

	if err := c.writeDoc(ctx, pk, doc); err != nil {
		return zero, err
	}
	return c.materialize(ctx, doc, false)
}

func (c *Collection[E]) DeleteByID(ctx context.Context, id any, hard bool) (bool, error) {
	pk := pkString(c.desc, id)
	if hard {
		n, err := c.store.client.HDel(ctx, c.hashKey(), pk).Result()
		if err != nil {
			return false, crud.BackendError(err)
		}
		return n > 0, nil
	}

	doc, found, err := c.rawDoc(ctx, pk)
	if err != nil {
		return false, err
	}
	if !found || !docEnabled(doc) {
		return false, nil
	}
	doc[crud.FieldEnabledFlag] = false
	doc[crud.FieldUpdationDate] = time.Now().UTC()
	if err := c.writeDoc(ctx, pk, doc); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Collection[E]) DeleteAll(ctx context.Context, scope crud.Scope, hard bool) (int64, error) {
	all, err := c.rawDocs(ctx)
	if err != nil {
		return 0, err
	}

	var affected int64
	now := time.Now().UTC()
	for pk, doc := range all {
		if scope.SelfOnly {
			owner, _ := doc[crud.FieldCreatedBy].(string)
			if owner != scope.UserID {
				continue
			}
		}
		if hard {
			n, err := c.store.client.HDel(ctx, c.hashKey(), pk).Result()
			if err != nil {
				return affected, crud.BackendError(err)
			}
			affected += n
			continue
		}
		if !docEnabled(doc) {
			continue
		}
		doc[crud.FieldEnabledFlag] = false
		doc[crud.FieldUpdationDate] = now
		if err := c.writeDoc(ctx, pk, doc); err != nil {
			return affected, err
		}
		affected++
	}
	return affected, nil
}

func (c *Collection[E]) Upsert(ctx context.Context, fields map[string]any, conflictKey string) (E, bool, error) {
	var zero E
	if _, ok := c.desc.Field(conflictKey); !ok {
		return zero, false, crud.InvalidQueryf("unknown field %q", conflictKey)
	}
	keyValue, hasKey := fields[conflictKey]

	if hasKey && keyValue != nil {
		all, err := c.rawDocs(ctx)
		if err != nil {
			return zero, false, err
		}
		for pk, doc := range all {
			cmp, ok := crud.Compare(doc[conflictKey], keyValue)
			if !ok || cmp != 0 {
				continue
			}
			updates := make(map[string]any, len(fields))
			for k, v := range fields {
				if k == conflictKey || k == c.desc.PrimaryKey {
					continue
				}
				updates[k] = v
			}
			model, err := c.UpdateByID(ctx, pk, updates, nil)
			return model, false, err
		}
	}

	model, err := c.Insert(ctx, fields)
	return model, true, err
}
