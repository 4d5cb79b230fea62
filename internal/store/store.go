package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/models"
)

var (
	// ErrConflict means the requested slot is already taken.
	ErrConflict = errors.New("reservation conflict")
	// ErrNotFound means the referenced reservation does not exist.
	ErrNotFound = errors.New("reservation not found")
)

// Store is everything the handlers and the conversation flow need from
// the backend. Availability logic lives in remote stored procedures; this
// layer only forwards calls and maps errors.
type Store interface {
	Ping(ctx context.Context) error
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	CheckAvailability(ctx context.Context, restaurant, date, service string, party int) (*models.Availability, error)
	SuggestAlternatives(ctx context.Context, restaurant, date, service string, party, days int) ([]models.Alternative, error)
	CreateReservation(ctx context.Context, req *models.ReservationRequest) (int64, error)
	CancelReservation(ctx context.Context, reservationID int64) error
	GetSession(ctx context.Context, waID string) (*models.Session, error)
	SaveSession(ctx context.Context, s *models.Session) error
}

// SQLStore implements Store on top of a Postgres connection pool.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, name, city, phone FROM restaurants ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	for rows.Next() {
		var r models.Restaurant
		if err := rows.Scan(&r.Code, &r.Name, &r.City, &r.Phone); err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, rows.Err()
}

func (s *SQLStore) CheckAvailability(ctx context.Context, restaurant, date, service string, party int) (*models.Availability, error) {
	var a models.Availability
	var msg sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT available, seats_left, message FROM check_availability($1, $2, $3, $4)`,
		restaurant, date, service, party,
	).Scan(&a.Available, &a.SeatsLeft, &msg)
	if err != nil {
		return nil, fmt.Errorf("check_availability: %w", err)
	}
	a.Message = msg.String
	return &a, nil
}

func (s *SQLStore) SuggestAlternatives(ctx context.Context, restaurant, date, service string, party, days int) ([]models.Alternative, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT restaurant_code, service_date, service, seats_left
		   FROM suggest_alternatives($1, $2, $3, $4, $5)`,
		restaurant, date, service, party, days)
	if err != nil {
		return nil, fmt.Errorf("suggest_alternatives: %w", err)
	}
	defer rows.Close()

	var alts []models.Alternative
	for rows.Next() {
		var a models.Alternative
		var d time.Time
		if err := rows.Scan(&a.RestaurantCode, &d, &a.Service, &a.SeatsLeft); err != nil {
			return nil, fmt.Errorf("scan alternative: %w", err)
		}
		a.ServiceDate = d.Format("2006-01-02")
		alts = append(alts, a)
	}
	return alts, rows.Err()
}

// CreateReservation returns the new reservation id. A unique violation
// raised by the procedure (someone took the last table between the
// availability check and the insert) maps to ErrConflict, as does a
// NULL or zero id, which the procedure uses to signal a full service.
func (s *SQLStore) CreateReservation(ctx context.Context, req *models.ReservationRequest) (int64, error) {
	var id sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT create_reservation($1, $2, $3, $4, $5, $6)`,
		req.Restaurant, req.Date, req.Service, req.Party, req.CustomerName, req.CustomerPhone,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("create_reservation: %w", err)
	}
	if !id.Valid || id.Int64 == 0 {
		return 0, ErrConflict
	}
	return id.Int64, nil
}

func (s *SQLStore) CancelReservation(ctx context.Context, reservationID int64) error {
	var cancelled bool
	err := s.db.QueryRowContext(ctx,
		`SELECT cancel_reservation($1)`, reservationID,
	).Scan(&cancelled)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("cancel_reservation: %w", err)
	}
	if !cancelled {
		return ErrNotFound
	}
	return nil
}

// GetSession loads the conversation record for a wa_id, or a fresh IDLE
// session when the user has never written before.
func (s *SQLStore) GetSession(ctx context.Context, waID string) (*models.Session, error) {
	sess := models.NewSession(waID)
	var restaurant, date, service sql.NullString
	var party sql.NullInt64
	var alts []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state, restaurant_code, party_size, service_date, service, alternatives
		   FROM sessions WHERE wa_id = $1`, waID,
	).Scan(&sess.State, &restaurant, &party, &date, &service, &alts)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	sess.RestaurantCode = restaurant.String
	sess.PartySize = int(party.Int64)
	sess.ServiceDate = date.String
	sess.Service = service.String
	if len(alts) > 0 {
		if err := json.Unmarshal(alts, &sess.Alternatives); err != nil {
			// A corrupt scratch column should not strand the user.
			logrus.WithError(err).WithField("wa_id", waID).Warn("Dropping unreadable alternatives column")
			sess.Alternatives = nil
		}
	}
	return sess, nil
}

// SaveSession upserts the session row. Last write wins.
func (s *SQLStore) SaveSession(ctx context.Context, sess *models.Session) error {
	var alts []byte
	if len(sess.Alternatives) > 0 {
		var err error
		alts, err = json.Marshal(sess.Alternatives)
		if err != nil {
			return fmt.Errorf("marshal alternatives: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (wa_id, state, restaurant_code, party_size, service_date, service, alternatives, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (wa_id) DO UPDATE SET
		   state = EXCLUDED.state,
		   restaurant_code = EXCLUDED.restaurant_code,
		   party_size = EXCLUDED.party_size,
		   service_date = EXCLUDED.service_date,
		   service = EXCLUDED.service,
		   alternatives = EXCLUDED.alternatives,
		   updated_at = now()`,
		sess.WaID, sess.State, sess.RestaurantCode, sess.PartySize,
		sess.ServiceDate, sess.Service, alts)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
