package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresRepository stores bookings in the relational database.
type PostgresRepository struct {
	db pgxDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db pgxDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const bookingColumns = `
	id, objective, objective_details, first_name, last_name, email, phone,
	COALESCE(age, 0), gender, COALESCE(height, 0), COALESCE(weight, 0),
	fitness_level, health_issues, to_char(selected_date, 'YYYY-MM-DD'),
	selected_time, location, address, terms_accepted, status, created_at`

func (r *PostgresRepository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (
			id, objective, objective_details, first_name, last_name, email, phone,
			age, gender, height, weight, fitness_level, health_issues,
			selected_date, selected_time, location, address, terms_accepted,
			status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14::date, $15, $16, $17, $18, $19, $20)
	`
	_, err := r.db.Exec(ctx, query,
		b.ID,
		string(b.Objective),
		b.ObjectiveDetails,
		b.FirstName,
		b.LastName,
		b.Email,
		b.Phone,
		nullableMeasure(b.Age),
		string(b.Gender),
		nullableMeasure(b.Height),
		nullableMeasure(b.Weight),
		string(b.FitnessLevel),
		b.HealthIssues,
		b.SelectedDate,
		b.SelectedTime,
		string(b.Location),
		b.Address,
		b.TermsAccepted,
		string(b.Status),
		b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("bookings: insert failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings: select failed: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) ListByDate(ctx context.Context, date string) ([]*Booking, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if date == "" {
		rows, err = r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at, id`)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE selected_date = $1::date ORDER BY created_at, id`, date)
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan failed: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Booking, error) {
	query := `UPDATE bookings SET status = $2 WHERE id = $1 RETURNING ` + bookingColumns
	b, err := scanBooking(r.db.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings: update status failed: %w", err)
	}
	return b, nil
}

// Ping checks database connectivity.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b                     Booking
		objective, gender     string
		level, location, stat string
		age, height, weight   float64
	)
	if err := row.Scan(
		&b.ID,
		&objective,
		&b.ObjectiveDetails,
		&b.FirstName,
		&b.LastName,
		&b.Email,
		&b.Phone,
		&age,
		&gender,
		&height,
		&weight,
		&level,
		&b.HealthIssues,
		&b.SelectedDate,
		&b.SelectedTime,
		&location,
		&b.Address,
		&b.TermsAccepted,
		&stat,
		&b.CreatedAt,
	); err != nil {
		return nil, err
	}
	b.Objective = Objective(objective)
	b.Gender = Gender(gender)
	b.FitnessLevel = FitnessLevel(level)
	b.Location = Location(location)
	b.Status = Status(stat)
	b.Age = measureFromColumn(age)
	b.Height = measureFromColumn(height)
	b.Weight = measureFromColumn(weight)
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}

func nullableMeasure(m Measure) any {
	if !m.Valid {
		return nil
	}
	return m.Value
}

// NULL columns come back as zero through COALESCE; no profile measure is
// legitimately zero.
func measureFromColumn(v float64) Measure {
	if v == 0 {
		return Measure{}
	}
	return NewMeasure(v)
}
