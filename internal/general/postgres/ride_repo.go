package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ride-share/internal/domain/ride"
	"ride-share/internal/ports"

	"github.com/jackc/pgx/v5"
)

// RideRepo persists rides using pgx and plain SQL. It is also the ride
// inventory store: Reserve/Release are the only seat mutation paths.
type RideRepo struct{}

// NewRideRepo constructs a new RideRepo.
func NewRideRepo() ports.RideRepository {
	return &RideRepo{}
}

const rideColumns = `
	id, driver_id, origin, destination, departure_at,
	seats_total, seats_available, price_per_seat, status,
	created_at, updated_at`

// CreateRide inserts a new ride row with all seats available.
func (repo *RideRepo) CreateRide(ctx context.Context, r *ride.Ride) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO rides (
			driver_id, origin, destination, departure_at,
			seats_total, seats_available, price_per_seat, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`,
		r.DriverID,
		r.Origin,
		r.Destination,
		r.DepartureAt,
		r.SeatsTotal,
		r.SeatsAvailable,
		r.PricePerSeat,
		r.Status.String(),
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}

	return nil
}

// GetByID fetches a ride by primary key (uuid).
func (repo *RideRepo) GetByID(ctx context.Context, id string) (*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, id)
	out, err := scanRide(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ride.ErrNotFound
		}
		return nil, fmt.Errorf("query ride by id: %w", err)
	}

	return out, nil
}

// ListByDriver returns recent rides for a driver.
func (repo *RideRepo) ListByDriver(ctx context.Context, driverID string, limit int) ([]*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+rideColumns+`
		FROM rides
		WHERE driver_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, driverID, limit)
	if err != nil {
		return nil, fmt.Errorf("query rides by driver: %w", err)
	}
	defer rows.Close()

	return collectRides(rows)
}

// ListActive returns a page of active rides ordered by departure time.
func (repo *RideRepo) ListActive(ctx context.Context, limit, offset int) ([]*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+rideColumns+`
		FROM rides
		WHERE status = 'active'
		ORDER BY departure_at ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query active rides: %w", err)
	}
	defer rows.Close()

	return collectRides(rows)
}

// UpdateStatus moves the ride to a new status, refusing to leave terminal states.
func (repo *RideRepo) UpdateStatus(ctx context.Context, id string, status ride.Status, updatedAt time.Time) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	// lock the row and read current status to enforce transitions
	var current string
	err = tx.QueryRow(ctx, `
		SELECT status
		FROM rides
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ride.ErrNotFound
		}
		return err
	}

	// idempotent success
	if current == status.String() {
		return nil
	}

	if !status.Valid() {
		return ride.ErrInvalidStatus
	}

	if ride.Status(current).Terminal() {
		return ride.ErrTerminalStatus
	}

	_, err = tx.Exec(ctx, `
		UPDATE rides
		SET status = $1,
		    updated_at = $2
		WHERE id = $3
	`, status.String(), updatedAt, id)
	if err != nil {
		return fmt.Errorf("update ride status: %w", err)
	}

	return nil
}

// Reserve is the atomic check-and-decrement on seats_available. The guarded
// UPDATE serializes concurrent callers on the row lock; when it matches no
// row, a second read classifies the failure without mutating anything.
func (repo *RideRepo) Reserve(ctx context.Context, rideID string, seats int) error {
	if seats < 1 {
		return ride.ErrSeatCountInvalid
	}

	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	ct, err := tx.Exec(ctx, `
		UPDATE rides
		SET seats_available = seats_available - $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'active'
		  AND seats_available >= $2
	`, rideID, seats)
	if err != nil {
		return fmt.Errorf("reserve seats: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// nothing matched: figure out why
	var status string
	var available int
	err = tx.QueryRow(ctx, `
		SELECT status, seats_available
		FROM rides
		WHERE id = $1
	`, rideID).Scan(&status, &available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ride.ErrNotFound
		}
		return fmt.Errorf("classify reserve failure: %w", err)
	}

	if ride.Status(status) != ride.StatusActive {
		return ride.ErrRideNotActive
	}
	return ride.ErrInsufficientSeats
}

// Release returns seats to the pool. LEAST clamps at seats_total so a
// double release can never push availability above the total.
func (repo *RideRepo) Release(ctx context.Context, rideID string, seats int) error {
	if seats < 1 {
		return ride.ErrSeatCountInvalid
	}

	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	ct, err := tx.Exec(ctx, `
		UPDATE rides
		SET seats_available = LEAST(seats_total, seats_available + $2),
		    updated_at = now()
		WHERE id = $1
	`, rideID, seats)
	if err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ride.ErrNotFound
	}

	return nil
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*ride.Ride, error) {
	var out ride.Ride
	var status string

	err := row.Scan(
		&out.ID, &out.DriverID, &out.Origin, &out.Destination, &out.DepartureAt,
		&out.SeatsTotal, &out.SeatsAvailable, &out.PricePerSeat, &status,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	out.Status = ride.Status(status)

	return &out, nil
}

func collectRides(rows pgx.Rows) ([]*ride.Ride, error) {
	var rides []*ride.Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		rides = append(rides, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return rides, nil
}
