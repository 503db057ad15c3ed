package itemrepo_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	itemrepo "github.com/Ahmadfnugroho/gpr-sub003/repository/item"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (itemrepo.Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return itemrepo.New(db), mock
}

func TestProductExists(t *testing.T) {
	r, mock := setup(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := r.ProductExists(context.Background(), 4)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountItems(t *testing.T) {
	r, mock := setup(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	n, err := r.CountItems(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListSerials(t *testing.T) {
	r, mock := setup(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT serial_number`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"serial_number"}).AddRow("SN001").AddRow("SN002"))

	got, err := r.ListSerials(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []string{"SN001", "SN002"}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListSerials_NoStockIsEmptyNotNil(t *testing.T) {
	r, mock := setup(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT serial_number`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"serial_number"}))

	got, err := r.ListSerials(context.Background(), 9)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestAddItems_Commit(t *testing.T) {
	r, mock := setup(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO product_items`)).
		WithArgs(int64(1), "SN001").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO product_items`)).
		WithArgs(int64(1), "SN002").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	n, err := r.AddItems(context.Background(), 1, []string{"SN001", "SN002"})
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItems_RollbackOnError(t *testing.T) {
	r, mock := setup(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO product_items`)).
		WithArgs(int64(1), "SN001").WillReturnError(errors.New("duplicate"))
	mock.ExpectRollback()

	_, err := r.AddItems(context.Background(), 1, []string{"SN001"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAvailable(t *testing.T) {
	r, mock := setup(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE product_items`)).
		WithArgs(int64(3), false).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE product_items`)).
		WithArgs(int64(4), true).WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := r.SetAvailable(context.Background(), 3, false)
	require.NoError(t, err)
	require.True(t, found)

	found, err = r.SetAvailable(context.Background(), 4, true)
	require.NoError(t, err)
	require.False(t, found)
}
