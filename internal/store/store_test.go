package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/models"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(db), mock
}

func TestListRestaurants(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT code, name, city, phone FROM restaurants ORDER BY name")).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name", "city", "phone"}).
			AddRow("PAR", "La Parrilla", "Buenos Aires", "+541144443333").
			AddRow("TRA", "Trattoria Nonna", "Buenos Aires", "+541155556666"))

	restaurants, err := st.ListRestaurants(context.Background())
	require.NoError(t, err)
	require.Len(t, restaurants, 2)
	assert.Equal(t, "PAR", restaurants[0].Code)
	assert.Equal(t, "Trattoria Nonna", restaurants[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailability(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT available, seats_left, message FROM check_availability($1, $2, $3, $4)")).
		WithArgs("PAR", "2030-05-10", "dinner", 4).
		WillReturnRows(sqlmock.NewRows([]string{"available", "seats_left", "message"}).
			AddRow(true, 12, nil))

	avail, err := st.CheckAvailability(context.Background(), "PAR", "2030-05-10", "dinner", 4)
	require.NoError(t, err)
	assert.True(t, avail.Available)
	assert.Equal(t, 12, avail.SeatsLeft)
	assert.Empty(t, avail.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservation(t *testing.T) {
	req := &models.ReservationRequest{
		Restaurant:    "PAR",
		Date:          "2030-05-10",
		Service:       "dinner",
		Party:         4,
		CustomerName:  "Ana",
		CustomerPhone: "5491100000000",
	}

	t.Run("returns the new id", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT create_reservation($1, $2, $3, $4, $5, $6)")).
			WithArgs("PAR", "2030-05-10", "dinner", 4, "Ana", "5491100000000").
			WillReturnRows(sqlmock.NewRows([]string{"create_reservation"}).AddRow(int64(1042)))

		id, err := st.CreateReservation(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, int64(1042), id)
	})

	t.Run("unique violation maps to ErrConflict", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT create_reservation($1, $2, $3, $4, $5, $6)")).
			WithArgs("PAR", "2030-05-10", "dinner", 4, "Ana", "5491100000000").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := st.CreateReservation(context.Background(), req)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("NULL id maps to ErrConflict", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT create_reservation($1, $2, $3, $4, $5, $6)")).
			WithArgs("PAR", "2030-05-10", "dinner", 4, "Ana", "5491100000000").
			WillReturnRows(sqlmock.NewRows([]string{"create_reservation"}).AddRow(nil))

		_, err := st.CreateReservation(context.Background(), req)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestCancelReservation(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT cancel_reservation($1)")).
			WithArgs(int64(1042)).
			WillReturnRows(sqlmock.NewRows([]string{"cancel_reservation"}).AddRow(true))

		assert.NoError(t, st.CancelReservation(context.Background(), 1042))
	})

	t.Run("unknown id maps to ErrNotFound", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT cancel_reservation($1)")).
			WithArgs(int64(9999)).
			WillReturnRows(sqlmock.NewRows([]string{"cancel_reservation"}).AddRow(false))

		assert.ErrorIs(t, st.CancelReservation(context.Background(), 9999), ErrNotFound)
	})
}

func TestGetSession(t *testing.T) {
	t.Run("unknown wa_id yields a fresh IDLE session", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectQuery("SELECT state, restaurant_code").
			WithArgs("5491100000000").
			WillReturnError(sql.ErrNoRows)

		sess, err := st.GetSession(context.Background(), "5491100000000")
		require.NoError(t, err)
		assert.Equal(t, models.StateIdle, sess.State)
		assert.Equal(t, "5491100000000", sess.WaID)
	})

	t.Run("existing session with alternatives", func(t *testing.T) {
		st, mock := newMockStore(t)
		alts := `[{"restaurant_code":"PAR","service_date":"2030-05-11","service":"dinner","seats_left":6}]`
		mock.ExpectQuery("SELECT state, restaurant_code").
			WithArgs("5491100000000").
			WillReturnRows(sqlmock.NewRows([]string{"state", "restaurant_code", "party_size", "service_date", "service", "alternatives"}).
				AddRow(models.StateAskAltPick, "PAR", 4, "2030-05-10", "dinner", []byte(alts)))

		sess, err := st.GetSession(context.Background(), "5491100000000")
		require.NoError(t, err)
		assert.Equal(t, models.StateAskAltPick, sess.State)
		assert.Equal(t, 4, sess.PartySize)
		require.Len(t, sess.Alternatives, 1)
		assert.Equal(t, "2030-05-11", sess.Alternatives[0].ServiceDate)
	})
}

func TestSaveSession(t *testing.T) {
	st, mock := newMockStore(t)

	sess := models.NewSession("5491100000000")
	sess.State = models.StateAskDate
	sess.RestaurantCode = "PAR"
	sess.PartySize = 4

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs("5491100000000", models.StateAskDate, "PAR", 4, "", "", []byte(nil)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.SaveSession(context.Background(), sess))
	assert.NoError(t, mock.ExpectationsWereMet())
}
