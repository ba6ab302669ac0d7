package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/internal/domain/repository"
)

const pgUniqueViolation = "23505"

// eventSelect embeds the attendee list as a json_agg subquery so every read
// comes back with attendees in one round trip.
const eventSelect = `
	SELECT
		e.id, e.title, e.description, e.start_date, e.end_date, e.deadline,
		e.location, e.capacity, e.image, e.status, e.owner_id,
		COALESCE(u.username, ''), COALESCE(u.email, ''),
		e.created_at, e.updated_at,
		COALESCE((
			SELECT json_agg(json_build_object(
				'userId', ea.user_id,
				'username', au.username,
				'email', au.email,
				'registeredAt', ea.registered_at
			) ORDER BY ea.registered_at)
			FROM event_attendees ea
			JOIN users au ON au.id = ea.user_id
			WHERE ea.event_id = e.id
		), '[]'::json)
	FROM events e
	LEFT JOIN users u ON u.id = e.owner_id
`

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row pgx.Row) (*entity.Event, error) {
	e := &entity.Event{}
	var attendees []byte
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &e.Deadline,
		&e.Location, &e.Capacity, &e.Image, &e.Status, &e.OwnerID,
		&e.OwnerName, &e.OwnerEmail,
		&e.CreatedAt, &e.UpdatedAt,
		&attendees,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attendees, &e.Attendees); err != nil {
		return nil, fmt.Errorf("decode attendees: %w", err)
	}
	return e, nil
}

func (r *EventRepository) queryEvents(ctx context.Context, where, order string, args ...any) ([]*entity.Event, error) {
	q := eventSelect
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY " + order

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*entity.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Create inserts the event and bumps the owner's denormalized event counter
// in the same transaction, so the count can never drift from the rows.
func (r *EventRepository) Create(ctx context.Context, e *entity.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO events (title, description, start_date, end_date, deadline,
			location, capacity, image, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, status, created_at, updated_at
	`, e.Title, e.Description, e.StartDate, e.EndDate, e.Deadline,
		e.Location, e.Capacity, e.Image, e.OwnerID)
	if err := row.Scan(&e.ID, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE owner_profiles SET total_events = total_events + 1, updated_at = now()
		WHERE user_id = $1
	`, e.OwnerID); err != nil {
		return err
	}

	if e.Attendees == nil {
		e.Attendees = []entity.Attendee{}
	}
	return tx.Commit(ctx)
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*entity.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, eventSelect+" WHERE e.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *EventRepository) FindAll(ctx context.Context) ([]*entity.Event, error) {
	return r.queryEvents(ctx, "", "e.start_date ASC")
}

func (r *EventRepository) FindByOwner(ctx context.Context, ownerID string) ([]*entity.Event, error) {
	return r.queryEvents(ctx, "e.owner_id = $1", "e.created_at DESC", ownerID)
}

func (r *EventRepository) FindByAttendee(ctx context.Context, userID string) ([]*entity.Event, error) {
	where := "e.id IN (SELECT event_id FROM event_attendees WHERE user_id = $1)"
	return r.queryEvents(ctx, where, "e.start_date ASC", userID)
}

// Update applies only the fields present in the patch. An empty patch is a
// caller bug and rejected before touching the store.
func (r *EventRepository) Update(ctx context.Context, id int64, patch *entity.EventPatch) (*entity.Event, error) {
	sets := make([]string, 0, 10)
	args := make([]any, 0, 10)

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.StartDate != nil {
		add("start_date", *patch.StartDate)
	}
	if patch.EndDate != nil {
		add("end_date", *patch.EndDate)
	}
	if patch.Deadline != nil {
		add("deadline", *patch.Deadline)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Capacity != nil {
		add("capacity", *patch.Capacity)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	if len(sets) == 0 {
		return nil, errors.New("no fields to update")
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	q := fmt.Sprintf("UPDATE events SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the event row and decrements the owner's event counter in
// one transaction. Attendee rows go with the event via ON DELETE CASCADE.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ownerID string
	if err := tx.QueryRow(ctx, `
		DELETE FROM events WHERE id = $1 RETURNING owner_id
	`, id).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE owner_profiles
		SET total_events = GREATEST(total_events - 1, 0), updated_at = now()
		WHERE user_id = $1
	`, ownerID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// RegisterAttendee is the atomic check-then-insert: the event row lock
// serializes concurrent registrations so the capacity check and the insert
// cannot interleave, and the (event_id, user_id) primary key backs up the
// duplicate check.
func (r *EventRepository) RegisterAttendee(ctx context.Context, eventID int64, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var capacity int
	err = tx.QueryRow(ctx, `
		SELECT capacity FROM events WHERE id = $1 FOR UPDATE
	`, eventID).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}

	// Full wins over duplicate: a registered user asking again for a full
	// event hears "full", matching the check order at the API surface.
	var count int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM event_attendees WHERE event_id = $1
	`, eventID).Scan(&count)
	if err != nil {
		return err
	}
	if count >= capacity {
		return repository.ErrEventFull
	}

	var registered bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)
	`, eventID, userID).Scan(&registered)
	if err != nil {
		return err
	}
	if registered {
		return repository.ErrAlreadyRegistered
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO event_attendees (event_id, user_id) VALUES ($1, $2)
	`, eventID, userID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return repository.ErrAlreadyRegistered
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *EventRepository) UnregisterAttendee(ctx context.Context, eventID int64, userID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2
	`, eventID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotRegistered
	}
	return nil
}

var _ repository.EventRepository = (*EventRepository)(nil)
