package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkylarKelty/Rapid/internal/infrastructure/database"
	apperrors "github.com/SkylarKelty/Rapid/pkg/errors"
	"github.com/SkylarKelty/Rapid/pkg/fieldtypes"
	"github.com/SkylarKelty/Rapid/pkg/models"
	"github.com/SkylarKelty/Rapid/pkg/query"
)

func newMockStore(t *testing.T, dialect query.Dialect) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(database.New(db, dialect, "rp_")), mock
}

func TestGetRecords(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rp_users` WHERE `active` = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).
			AddRow(2, []byte("bob")).
			AddRow(1, "alice"))

	rs, err := store.GetRecords(context.Background(), "users", query.Params{"active": 1})
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())

	// database order is preserved and byte values become strings
	assert.Equal(t, "bob", rs.Rows[0]["username"])
	assert.Equal(t, "alice", rs.Rows[1]["username"])
	assert.Equal(t, []string{"id", "username"}, rs.Columns)

	byID := rs.ByID()
	assert.Equal(t, "alice", byID["1"]["username"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecords_NoParamsSelectsAll(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id`, `email` FROM `rp_users`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	rs, err := store.GetRecords(context.Background(), "users", nil, "id", "email")
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())
	assert.Nil(t, rs.First())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecords_RejectsBadIdentifier(t *testing.T) {
	store, _ := newMockStore(t, query.MySQL)

	_, err := store.GetRecords(context.Background(), "users; DROP TABLE x", nil)
	assert.True(t, apperrors.IsInvalidIdentifier(err))
}

func TestGetRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("single row", func(t *testing.T) {
		store, mock := newMockStore(t, query.MySQL)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rp_users` WHERE `id` = ?")).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "sky"))

		row, err := store.GetRecord(ctx, "users", query.Params{"id": 1})
		require.NoError(t, err)
		assert.Equal(t, "sky", row.GetString("username"))
	})

	t.Run("no row", func(t *testing.T) {
		store, mock := newMockStore(t, query.MySQL)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rp_users` WHERE `id` = ?")).
			WithArgs(9).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		row, err := store.GetRecord(ctx, "users", query.Params{"id": 9})
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("multiple rows", func(t *testing.T) {
		store, mock := newMockStore(t, query.MySQL)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rp_users` WHERE `role` = ?")).
			WithArgs("admin").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

		_, err := store.GetRecord(ctx, "users", query.Params{"role": "admin"})
		assert.True(t, apperrors.IsMultipleResults(err))
	})
}

func TestGetField(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `email` FROM `rp_users` WHERE `id` = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("sky@example.com"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `email` FROM `rp_users` WHERE `id` = ?")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"email"}))

	v, err := store.GetField(ctx, "users", "email", query.Params{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, "sky@example.com", v)

	v, err = store.GetField(ctx, "users", "email", query.Params{"id": 2})
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFieldset(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `email` FROM `rp_users` WHERE `active` = ?")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("a@x").AddRow("b@x"))

	values, err := store.GetFieldset(context.Background(), "users", "email", query.Params{"active": true})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a@x", "b@x"}, values)
}

func TestInsertRecord(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `rp_users` (`email`, `username`) VALUES (?, ?)")).
		WithArgs("sky@example.com", "sky").
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := store.InsertRecord(context.Background(), "users", query.Params{"username": "sky", "email": "sky@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRecord_Empty(t *testing.T) {
	store, _ := newMockStore(t, query.MySQL)

	_, err := store.InsertRecord(context.Background(), "users", query.Params{})
	assert.True(t, apperrors.IsEmptyParams(err))
}

func TestInsertRecord_PostgresReturning(t *testing.T) {
	store, mock := newMockStore(t, query.Postgres)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "rp_users" ("email") VALUES ($1) RETURNING "id"`)).
		WithArgs("sky@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := store.InsertRecord(context.Background(), "users", query.Params{"email": "sky@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRecords(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `rp_users` (`email`, `username`) VALUES (?, ?), (?, ?)")).
		WithArgs("a@x", "a", "b@x", "b").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := store.InsertRecords(context.Background(), "users", []query.Params{
		{"username": "a", "email": "a@x"},
		{"username": "b", "email": "b@x"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRecords_InconsistentColumns(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	_, err := store.InsertRecords(context.Background(), "users", []query.Params{
		{"username": "a", "email": "a@x"},
		{"username": "b"},
	})
	assert.True(t, apperrors.IsInconsistentColumns(err))
	// nothing reaches the driver
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRecord(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `rp_users` SET `email` = ? WHERE `id` = ?")).
		WithArgs("new@x", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.UpdateRecord(context.Background(), "users", query.Params{"id": 3, "email": "new@x"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRecord_MissingID(t *testing.T) {
	store, _ := newMockStore(t, query.MySQL)

	_, err := store.UpdateRecord(context.Background(), "users", query.Params{"email": "x"})
	assert.True(t, apperrors.IsMissingIdentifier(err))
}

func TestUpdateOrInsert_Updates(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rp_users` WHERE `username` = ?")).
		WithArgs("sky").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(5, "sky"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `rp_users` SET `email` = ? WHERE `id` = ?")).
		WithArgs("sky@x", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := store.UpdateOrInsert(context.Background(), "users",
		query.Params{"username": "sky"}, query.Params{"email": "sky@x"})
	require.NoError(t, err)
	assert.False(t, res.Inserted)
	assert.EqualValues(t, 5, res.ID)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrInsert_Inserts(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rp_users` WHERE `username` = ?")).
		WithArgs("sky").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `rp_users` (`email`, `username`) VALUES (?, ?)")).
		WithArgs("sky@x", "sky").
		WillReturnResult(sqlmock.NewResult(11, 1))

	res, err := store.UpdateOrInsert(context.Background(), "users",
		query.Params{"username": "sky"}, query.Params{"username": "sky", "email": "sky@x"})
	require.NoError(t, err)
	assert.True(t, res.Inserted)
	assert.Equal(t, int64(11), res.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrInsert_MultipleMatches(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rp_users` WHERE `role` = ?")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	_, err := store.UpdateOrInsert(context.Background(), "users",
		query.Params{"role": "admin"}, query.Params{"email": "x"})
	assert.True(t, apperrors.IsMultipleResults(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrInsertTx_LocksAndCommits(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rp_users` WHERE `username` = ? FOR UPDATE")).
		WithArgs("sky").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(5, "sky"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `rp_users` SET `email` = ? WHERE `id` = ?")).
		WithArgs("sky@x", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := store.UpdateOrInsertTx(context.Background(), "users",
		query.Params{"username": "sky"}, query.Params{"email": "sky@x"})
	require.NoError(t, err)
	assert.False(t, res.Inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRecords(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `rp_users` WHERE `id` = ?")).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.DeleteRecords(context.Background(), "users", query.Params{"id": 4})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.DeleteRecords(context.Background(), "users", query.Params{})
	assert.True(t, apperrors.IsEmptyParams(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountRecords(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `rp_users` WHERE `active` = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(3))

	n, err := store.CountRecords(context.Background(), "users", query.Params{"active": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountRecords_Zero(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `rp_users` WHERE `active` = ?")).
		WithArgs(0).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))

	n, err := store.CountRecords(context.Background(), "users", query.Params{"active": 0})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountRecords_NoResult(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `rp_users`")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}))

	_, err := store.CountRecords(context.Background(), "users", nil)
	assert.True(t, apperrors.IsNoResult(err))
}

func TestTruncate(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectExec(regexp.QuoteMeta("TRUNCATE `rp_users`")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Truncate(context.Background(), "users"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_PositionalArgs(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE rp_users SET active = 0 WHERE id IN (?, ?)")).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 2))

	_, err := store.Execute(context.Background(), "UPDATE {users} SET active = 0 WHERE id IN (?, ?)", 1, 2)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var widgetSchema = models.NewSchema("Widget", "widgets").
	Field("id", fieldtypes.Int).
	Field("name", fieldtypes.String, models.WithLength(32)).
	Field("secret", fieldtypes.String, models.Hidden())

func newWidget() *models.Record {
	return models.NewRecord(widgetSchema)
}

func TestGetModels(t *testing.T) {
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rp_widgets`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "secret"}).
			AddRow(1, "gear", "s1").
			AddRow(2, "cog", "s2"))

	widgets, err := GetModels(context.Background(), store, newWidget, nil)
	require.NoError(t, err)
	require.Len(t, widgets, 2)
	assert.Equal(t, "cog", widgets[1].StringValue("name"))

	// forced hydration keeps hidden values, public export drops them
	assert.Equal(t, "s1", widgets[0].StringValue("secret"))
	_, exported := widgets[0].Export(false)["secret"]
	assert.False(t, exported)
}

func TestGetModel(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t, query.MySQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rp_widgets` WHERE `id` = ?")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rp_widgets` WHERE `name` = ?")).
		WithArgs("gear").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "gear").AddRow(2, "gear"))

	w, err := GetModel(ctx, store, newWidget, query.Params{"id": 9})
	require.NoError(t, err)
	assert.Nil(t, w)

	_, err = GetModel(ctx, store, newWidget, query.Params{"name": "gear"})
	assert.True(t, apperrors.IsMultipleResults(err))
}

func TestSaveModel_InsertThenUpdate(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t, query.MySQL)

	w := newWidget()
	require.NoError(t, w.Set("name", "gear"))
	require.NoError(t, w.Set("secret", "s"))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `rp_widgets` (`name`, `secret`) VALUES (?, ?)")).
		WithArgs("gear", "s").
		WillReturnResult(sqlmock.NewResult(3, 1))

	_, err := SaveModel(ctx, store, w)
	require.NoError(t, err)
	assert.Equal(t, int64(3), w.IntValue("id"))

	require.NoError(t, w.Set("name", "cog"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `rp_widgets` SET `name` = ?, `secret` = ? WHERE `id` = ?")).
		WithArgs("cog", "s", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := SaveModel(ctx, store, w)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
