package gormstore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"crudapi/crud"
)

type widget struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" binding:"required"`
	Price        float64   `json:"price"`
	CreationDate time.Time `json:"creation_date"`
	CreatedBy    string    `json:"created_by"`
	UpdationDate time.Time `json:"updation_date"`
	UpdatedBy    string    `json:"updated_by"`
	EnabledFlag  bool      `json:"enabled_flag"`
	TraceID      string    `json:"trace_id"`
}

func newMockStore(t *testing.T) (*Store[widget], sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	store, err := New[widget](gdb)
	require.NoError(t, err)
	return store, mock
}

func TestFetchAllAppliesScopeQueryAndPaging(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "widgets" WHERE enabled_flag = \$1 AND price >= \$2`).
		WithArgs(true, 10.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT \* FROM "widgets" WHERE enabled_flag = \$1 AND price >= \$2 ORDER BY "price" DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).
			AddRow(2, "b", 20.0).
			AddRow(1, "a", 15.0))

	q := crud.Eq("price", 10.0)
	q.Conditions[0].Op = crud.OpGte
	sort := &crud.Sort{Field: "price", Desc: true}

	models, total, err := store.FetchAll(context.Background(), crud.Scope{}, q, crud.Page{Limit: 10}, sort, false)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, models, 2)
	assert.Equal(t, "b", models[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchAllSelfScope(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "widgets" WHERE enabled_flag = \$1 AND created_by = \$2`).
		WithArgs(true, "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "widgets" WHERE enabled_flag = \$1 AND created_by = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	scope := crud.Scope{SelfOnly: true, UserID: "u-1"}
	models, total, err := store.FetchAll(context.Background(), scope, nil, crud.Page{Limit: 100}, nil, false)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, models)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchAllRejectsUnknownFieldBeforeSQL(t *testing.T) {
	store, _ := newMockStore(t)

	_, _, err := store.FetchAll(context.Background(), crud.Scope{}, crud.Eq("ghost", 1), crud.Page{}, nil, false)
	assert.ErrorIs(t, err, crud.ErrInvalidQuery)
}

func TestLikeQueryWrapsPattern(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "widgets" WHERE enabled_flag = \$1 AND name LIKE \$2`).
		WithArgs(true, "%pen%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	q := &crud.Query{Conditions: []crud.Condition{{Field: "name", Op: crud.OpLike, Value: "pen"}}}
	total, err := store.Count(context.Background(), crud.Scope{}, q)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchOneNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "widgets" WHERE enabled_flag = \$1 AND id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.FetchOne(context.Background(), crud.Scope{}, crud.Eq("id", int64(9)), false)
	assert.ErrorIs(t, err, crud.ErrNotFound)
}

func TestInsertDecodesFields(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "widgets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	model, err := store.Insert(context.Background(), map[string]any{
		"name":       "pencil",
		"price":      float64(2),
		"created_by": "u-1",
		"updated_by": "u-1",
		"trace_id":   "t-1",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(5), model.ID)
	assert.Equal(t, "pencil", model.Name)
	assert.True(t, model.EnabledFlag)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteByID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "widgets" SET "enabled_flag"=\$1 WHERE id = \$2 AND enabled_flag = \$3`).
		WithArgs(false, int64(4), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, err := store.DeleteByID(context.Background(), int64(4), false)
	require.NoError(t, err)
	assert.True(t, affected)
}

func TestSoftDeleteByIDAlreadyDisabled(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "widgets" SET "enabled_flag"=\$1 WHERE id = \$2 AND enabled_flag = \$3`).
		WithArgs(false, int64(4), true).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	affected, err := store.DeleteByID(context.Background(), int64(4), false)
	require.NoError(t, err)
	assert.False(t, affected)
}

func TestHardDeleteByID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "widgets" WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, err := store.DeleteByID(context.Background(), int64(4), true)
	require.NoError(t, err)
	assert.True(t, affected)
}

func TestDeleteAllSoft(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "widgets" SET "enabled_flag"=\$1 WHERE enabled_flag = \$2`).
		WithArgs(false, true).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectCommit()

	count, err := store.DeleteAll(context.Background(), crud.Scope{}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 7, count)
}

func TestUpdateByID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "widgets" WHERE id = \$1 AND enabled_flag = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow(4, "old", 1.0))
	mock.ExpectExec(`UPDATE "widgets" SET "price"=\$1 WHERE "id" = \$2`).
		WithArgs(2.5, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "widgets" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow(4, "old", 2.5))
	mock.ExpectCommit()

	model, err := store.UpdateByID(context.Background(), int64(4), map[string]any{"price": 2.5}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.5, model.Price)
}

func TestUpdateByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "widgets" WHERE id = \$1 AND enabled_flag = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := store.UpdateByID(context.Background(), int64(9), map[string]any{"price": 2.5}, nil)
	assert.ErrorIs(t, err, crud.ErrNotFound)
}

func TestUpsertInsertsWhenKeyMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "widgets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(6))
	mock.ExpectCommit()

	model, inserted, err := store.Upsert(context.Background(), map[string]any{"name": "n"}, "id")
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, uint(6), model.ID)
}

func TestUpsertUpdatesExistingRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "widgets" WHERE name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow(3, "pencil", 1.0))
	// the conflict column itself never lands in the update set
	mock.ExpectExec(`UPDATE "widgets" SET "price"=\$1 WHERE "id" = \$2`).
		WithArgs(3.5, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "widgets" WHERE name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow(3, "pencil", 3.5))
	mock.ExpectCommit()

	model, inserted, err := store.Upsert(context.Background(), map[string]any{
		"name":  "pencil",
		"price": 3.5,
	}, "name")
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, uint(3), model.ID)
	assert.Equal(t, 3.5, model.Price)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateConstraintViolation(t *testing.T) {
	err := translate(gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, err, crud.ErrConstraintViolation)

	err = translate(gorm.ErrForeignKeyViolated)
	assert.ErrorIs(t, err, crud.ErrConstraintViolation)

	err = translate(assert.AnError)
	assert.ErrorIs(t, err, crud.ErrBackend)
}
