// Package gormstore adapts a GORM-mapped relational database to the generic
// CRUD engine. Every filter is translated into parameterized clauses over
// validated column names; values are never interpolated into SQL text.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crudapi/crud"
)

// Store serves one entity type from a relational database through GORM.
type Store[E any] struct {
	db   *gorm.DB
	desc *crud.Descriptor
}

// New builds the adapter for entity type E over the given GORM handle.
func New[E any](db *gorm.DB) (*Store[E], error) {
	desc, err := crud.Describe[E]()
	if err != nil {
		return nil, err
	}
	return &Store[E]{db: db, desc: desc}, nil
}

// Descriptor exposes the entity metadata the store was built from.
func (s *Store[E]) Descriptor() *crud.Descriptor { return s.desc }

func (s *Store[E]) model(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(new(E))
}

// applyScope adds the implicit soft-delete filter and the per-caller row
// restriction.
func (s *Store[E]) applyScope(tx *gorm.DB, scope crud.Scope) *gorm.DB {
	if !scope.IncludeDisabled {
		tx = tx.Where("enabled_flag = ?", true)
	}
	if scope.SelfOnly {
		tx = tx.Where("created_by = ?", scope.UserID)
	}
	return tx
}

// applyQuery translates the backend-neutral predicate tree. Field names
// were validated against the descriptor upstream; resolving them through
// Column here keeps raw client strings out of the SQL text anyway.
func (s *Store[E]) applyQuery(tx *gorm.DB, q *crud.Query) (*gorm.DB, error) {
	if q == nil {
		return tx, nil
	}
	for _, cond := range q.Conditions {
		col, err := s.desc.Column(cond.Field)
		if err != nil {
			return nil, err
		}
		switch cond.Op {
		case crud.OpEq:
			tx = tx.Where(col+" = ?", cond.Value)
		case crud.OpNe:
			tx = tx.Where(col+" <> ?", cond.Value)
		case crud.OpGt:
			tx = tx.Where(col+" > ?", cond.Value)
		case crud.OpLt:
			tx = tx.Where(col+" < ?", cond.Value)
		case crud.OpGte:
			tx = tx.Where(col+" >= ?", cond.Value)
		case crud.OpLte:
			tx = tx.Where(col+" <= ?", cond.Value)
		case crud.OpLike:
			tx = tx.Where(col+" LIKE ?", "%"+fmt.Sprint(cond.Value)+"%")
		case crud.OpIn:
			tx = tx.Where(col+" IN ?", cond.Value)
		default:
			return nil, crud.InvalidQueryf("unknown operator %q", cond.Op)
		}
	}
	return tx, nil
}

func (s *Store[E]) applySort(tx *gorm.DB, sort *crud.Sort) (*gorm.DB, error) {
	if sort == nil {
		return tx, nil
	}
	col, err := s.desc.Column(sort.Field)
	if err != nil {
		return nil, err
	}
	return tx.Order(clause.OrderByColumn{
		Column: clause.Column{Name: col},
		Desc:   sort.Desc,
	}), nil
}

// preload eager-loads every declared relation, one level deep.
func (s *Store[E]) preload(tx *gorm.DB) *gorm.DB {
	for _, rel := range s.desc.Relations() {
		tx = tx.Preload(rel.GoName)
	}
	return tx
}

func (s *Store[E]) Count(ctx context.Context, scope crud.Scope, q *crud.Query) (int64, error) {
	tx, err := s.applyQuery(s.applyScope(s.model(ctx), scope), q)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, translate(err)
	}
	return total, nil
}

func (s *Store[E]) FetchAll(ctx context.Context, scope crud.Scope, q *crud.Query, page crud.Page, sort *crud.Sort, expand bool) ([]E, int64, error) {
	tx, err := s.applyQuery(s.applyScope(s.model(ctx), scope), q)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	tx, err = s.applySort(tx, sort)
	if err != nil {
		return nil, 0, err
	}
	if page.Skip > 0 {
		tx = tx.Offset(page.Skip)
	}
	if page.Limit > 0 {
		tx = tx.Limit(page.Limit)
	}
	if expand {
		tx = s.preload(tx)
	}

	var models []E
	if err := tx.Find(&models).Error; err != nil {
		return nil, 0, translate(err)
	}
	return models, total, nil
}

func (s *Store[E]) FetchOne(ctx context.Context, scope crud.Scope, q *crud.Query, expand bool) (E, error) {
	var model E
	tx, err := s.applyQuery(s.applyScope(s.model(ctx), scope), q)
	if err != nil {
		return model, err
	}
	if expand {
		tx = s.preload(tx)
	}
	if err := tx.First(&model).Error; err != nil {
		return model, translate(err)
	}
	return model, nil
}

func (s *Store[E]) Insert(ctx context.Context, fields map[string]any) (E, error) {
	var model E
	if err := crud.DecodeRecord(fields, &model); err != nil {
		return model, err
	}
	if err := s.setEnabled(&model); err != nil {
		return model, err
	}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return model, translate(err)
	}
	return model, nil
}

func (s *Store[E]) UpdateByID(ctx context.Context, id any, fields map[string]any, relations map[string][]any) (E, error) {
	var model E
	pkCol, err := s.desc.Column(s.desc.PrimaryKey)
	if err != nil {
		return model, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(pkCol+" = ?", id).Where("enabled_flag = ?", true).First(&model).Error; err != nil {
			return translate(err)
		}

		// relation updates replace the full membership set atomically
		// within this transaction
		for name, ids := range relations {
			if err := s.replaceRelation(tx, &model, name, ids); err != nil {
				return err
			}
		}

		updates := s.columnMap(fields)
		if len(updates) > 0 {
			if err := tx.Model(&model).Updates(updates).Error; err != nil {
				return translate(err)
			}
		}
		return translate(tx.Where(pkCol+" = ?", id).First(&model).Error)
	})
	return model, err
}

// replaceRelation swaps the named association to exactly the given foreign
// ids, covering both to-one reassignment and join-table replacement.
func (s *Store[E]) replaceRelation(tx *gorm.DB, model *E, name string, ids []any) error {
	rel, ok := s.desc.Relation(name)
	if !ok {
		return crud.InvalidQueryf("unknown relation %q", name)
	}
	target := crud.DescriptorOf(rel.Target)
	if target == nil {
		return crud.InvalidQueryf("relation %q has no registered target", name)
	}
	targetPK, err := target.Column(target.PrimaryKey)
	if err != nil {
		return err
	}

	related := reflect.New(reflect.SliceOf(reflect.PointerTo(rel.Target)))
	if err := tx.Where(targetPK+" IN ?", ids).Find(related.Interface()).Error; err != nil {
		return translate(err)
	}
	if err := tx.Model(model).Association(rel.GoName).Replace(related.Elem().Interface()); err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store[E]) DeleteByID(ctx context.Context, id any, hard bool) (bool, error) {
	pkCol, err := s.desc.Column(s.desc.PrimaryKey)
	if err != nil {
		return false, err
	}

	var res *gorm.DB
	if hard {
		res = s.db.WithContext(ctx).Where(pkCol+" = ?", id).Delete(new(E))
	} else {
		res = s.model(ctx).
			Where(pkCol+" = ?", id).
			Where("enabled_flag = ?", true).
			Update("enabled_flag", false)
	}
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store[E]) DeleteAll(ctx context.Context, scope crud.Scope, hard bool) (int64, error) {
	session := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})

	var res *gorm.DB
	if hard {
		tx := session
		if scope.SelfOnly {
			tx = tx.Where("created_by = ?", scope.UserID)
		}
		res = tx.Delete(new(E))
	} else {
		res = s.applyScope(session.Model(new(E)), scope).Update("enabled_flag", false)
	}
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store[E]) Upsert(ctx context.Context, fields map[string]any, conflictKey string) (E, bool, error) {
	var model E
	col, err := s.desc.Column(conflictKey)
	if err != nil {
		return model, false, err
	}
	keyValue, hasKey := fields[conflictKey]

	inserted := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if hasKey && keyValue != nil {
			err := tx.Where(col+" = ?", keyValue).First(&model).Error
			if err == nil {
				updates := s.columnMap(fields)
				delete(updates, col)
				if err := tx.Model(&model).Updates(updates).Error; err != nil {
					return translate(err)
				}
				return translate(tx.Where(col+" = ?", keyValue).First(&model).Error)
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return translate(err)
			}
		}

		if err := crud.DecodeRecord(fields, &model); err != nil {
			return err
		}
		if err := s.setEnabled(&model); err != nil {
			return err
		}
		if err := tx.Create(&model).Error; err != nil {
			return translate(err)
		}
		inserted = true
		return nil
	})
	return model, inserted, err
}

// columnMap rewires a wire-name keyed field map onto database columns,
// dropping anything outside the allow-list.
func (s *Store[E]) columnMap(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if key == s.desc.PrimaryKey {
			continue
		}
		col, err := s.desc.Column(key)
		if err != nil {
			continue
		}
		out[col] = value
	}
	return out
}

// setEnabled marks a fresh row live; clients cannot supply the flag.
func (s *Store[E]) setEnabled(model *E) error {
	return crud.DecodeRecord(map[string]any{crud.FieldEnabledFlag: true}, model)
}

// translate maps GORM failures onto the engine's error classes.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, crud.ErrNotFound), errors.Is(err, crud.ErrInvalidQuery),
		errors.Is(err, crud.ErrValidation), errors.Is(err, crud.ErrConstraintViolation):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return crud.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: duplicated key", crud.ErrConstraintViolation)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: foreign key violated", crud.ErrConstraintViolation)
	default:
		return crud.BackendError(err)
	}
}
