package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/dirk.krummacker/contact-form-service/internal/model"
)

var (
	fixedNow = time.Date(2024, time.March, 2, 10, 30, 0, 123000000, time.UTC)
	columns  = []string{"id", "name", "email", "subject", "message", "date"}
	annDraft = model.Draft{Name: "Ann", Email: "ann@example.com", Subject: "Hi", Message: "Hello"}
)

// createMockStore builds a SQL store on top of a mock database and waits
// until its monitor reports the connection as usable.
func createMockStore(t *testing.T, opts Options) (*SQLStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	opts.HeartbeatInterval = time.Hour
	s := NewSQLStore(db, opts)
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		s.monitor.stop()
		db.Close()
	})
	require.Eventually(t, func() bool { return s.State() == Connected }, time.Second, time.Millisecond)
	return s, mock
}

func TestCreate(t *testing.T) {
	s, mock := createMockStore(t, Options{})
	mock.ExpectExec("INSERT INTO contacts").
		WithArgs("Ann", "ann@example.com", "Hi", "Hello", fixedNow).
		WillReturnResult(sqlmock.NewResult(42, 1))

	contact, err := s.Create(context.Background(), annDraft)
	require.NoError(t, err)
	assert.Equal(t, model.Contact{
		Id:      "42",
		Name:    "Ann",
		Email:   "ann@example.com",
		Subject: "Hi",
		Message: "Hello",
		Date:    fixedNow,
	}, contact)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestCreateThenGet expects a contact read back by id to equal the one that
// Create returned.
func TestCreateThenGet(t *testing.T) {
	s, mock := createMockStore(t, Options{})
	mock.ExpectExec("INSERT INTO contacts").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT (.+) FROM contacts WHERE id = ?").
		WithArgs(int64(7)).
		WillReturnRows(mock.NewRows(columns).
			AddRow(int64(7), "Ann", "ann@example.com", "Hi", "Hello", fixedNow))

	created, err := s.Create(context.Background(), annDraft)
	require.NoError(t, err)
	found, err := s.GetByID(context.Background(), created.Id)
	require.NoError(t, err)
	assert.Equal(t, created, found)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestCreateTimeout lets the insert take longer than the save timeout. It
// expects ErrSaveTimeout as soon as the timeout elapses.
func TestCreateTimeout(t *testing.T) {
	s, mock := createMockStore(t, Options{SaveTimeout: 20 * time.Millisecond})
	mock.ExpectExec("INSERT INTO contacts").
		WillDelayFor(500 * time.Millisecond).
		WillReturnResult(sqlmock.NewResult(1, 1))

	start := time.Now()
	_, err := s.Create(context.Background(), annDraft)
	assert.ErrorIs(t, err, ErrSaveTimeout)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

// TestCreateStoreRules bypasses the submission checks with a draft that breaks
// the table rules. It expects a validation error without any SQL being run.
func TestCreateStoreRules(t *testing.T) {
	s, mock := createMockStore(t, Options{})

	_, err := s.Create(context.Background(), model.Draft{Email: "ann@example.com", Subject: "Hi", Message: "Hello"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ErrorIs(t, err, ErrPersistenceValidation)
	assert.Equal(t, []string{"Path `name` is required."}, validationErr.Messages)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestCreateRejectedByDatabase expects rule violations reported by MySQL to
// come back as validation errors and anything else as a plain error.
func TestCreateRejectedByDatabase(t *testing.T) {
	s, mock := createMockStore(t, Options{})
	mock.ExpectExec("INSERT INTO contacts").
		WillReturnError(&mysql.MySQLError{Number: 1406, Message: "Data too long for column 'name' at row 1"})
	mock.ExpectExec("INSERT INTO contacts").
		WillReturnError(errors.New("connection reset by peer"))

	_, err := s.Create(context.Background(), annDraft)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"Data too long for column 'name' at row 1"}, validationErr.Messages)

	_, err = s.Create(context.Background(), annDraft)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPersistenceValidation)
	assert.NotErrorIs(t, err, ErrSaveTimeout)
}

func TestListAll(t *testing.T) {
	s, mock := createMockStore(t, Options{})
	t3 := fixedNow
	t2 := fixedNow.Add(-time.Minute)
	t1 := fixedNow.Add(-time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM contacts ORDER BY date DESC, id DESC").
		WillReturnRows(mock.NewRows(columns).
			AddRow(int64(3), "Carla", "carla@example.com", "c", "c", t3).
			AddRow(int64(2), "Berta", "berta@example.com", "b", "b", t2).
			AddRow(int64(1), "Aaron", "aaron@example.com", "a", "a", t1))

	contacts, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 3)
	assert.Equal(t, "3", contacts[0].Id)
	assert.Equal(t, "Carla", contacts[0].Name)
	assert.Equal(t, t3, contacts[0].Date)
	assert.Equal(t, "2", contacts[1].Id)
	assert.Equal(t, "1", contacts[2].Id)
	assert.Equal(t, t1, contacts[2].Date)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestListAllEmpty(t *testing.T) {
	s, mock := createMockStore(t, Options{})
	mock.ExpectQuery("SELECT (.+) FROM contacts").
		WillReturnRows(mock.NewRows(columns))

	contacts, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}

func TestGetByIDNotFound(t *testing.T) {
	s, mock := createMockStore(t, Options{})
	mock.ExpectQuery("SELECT (.+) FROM contacts WHERE id = ?").
		WithArgs(int64(9999)).
		WillReturnRows(mock.NewRows(columns))

	_, err := s.GetByID(context.Background(), "9999")
	assert.ErrorIs(t, err, ErrNotFound)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestGetByIDInvalid expects ids that cannot be a row id to be rejected
// without reaching out to the database.
func TestGetByIDInvalid(t *testing.T) {
	s, mock := createMockStore(t, Options{})
	for _, id := range []string{"INVALID", "0", "-3", "1.5", "65f1c0ffee0000000000beef"} {
		_, err := s.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidID, "id: "+id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestStoreUnavailable expects every operation to fail fast while the
// monitor reports the connection as down.
func TestStoreUnavailable(t *testing.T) {
	s, mock := createMockStore(t, Options{})
	s.monitor.set(Disconnected)

	_, err := s.Create(context.Background(), annDraft)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = s.ListAll(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = s.GetByID(context.Background(), "1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestClose(t *testing.T) {
	s, mock := createMockStore(t, Options{})
	mock.ExpectClose()

	require.NoError(t, s.Close(context.Background()))
	assert.Equal(t, Disconnected, s.State())
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
