package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-trackjournal/pkg/store"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

const vehicleColumns = `id, owner_id, make, model, year, type, engine, transmission, color, vin, license_plate, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (vehicle.Vehicle, error) {
	var (
		v                vehicle.Vehicle
		kind             string
		created, updated int64
	)
	err := row.Scan(&v.ID, &v.OwnerID, &v.Make, &v.Model, &v.Year, &kind,
		&v.Engine, &v.Transmission, &v.Color, &v.VIN, &v.LicensePlate, &v.Notes,
		&created, &updated)
	if err != nil {
		return vehicle.Vehicle{}, err
	}
	v.Type = vehicle.Type(kind)
	v.CreatedAt = fromUnix(created)
	v.UpdatedAt = fromUnix(updated)
	return v, nil
}

func (s *Store) List(ctx context.Context, ownerID string) ([]vehicle.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT `+vehicleColumns+` FROM vehicles WHERE owner_id = ? ORDER BY created_at DESC, id DESC`), ownerID)
	if err != nil {
		return nil, store.Normalize(err, store.FallbackList)
	}
	defer func() { _ = rows.Close() }()

	out := make([]vehicle.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, store.Normalize(err, store.FallbackList)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Normalize(err, store.FallbackList)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (vehicle.Vehicle, error) {
	v, err := s.get(ctx, s.db, id)
	if err != nil {
		return vehicle.Vehicle{}, store.Normalize(err, store.FallbackGet)
	}
	return v, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) get(ctx context.Context, q querier, id string) (vehicle.Vehicle, error) {
	row := q.QueryRowContext(ctx, s.rebind(`SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`), id)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return vehicle.Vehicle{}, store.NotFound()
	}
	return v, err
}

func (s *Store) Create(ctx context.Context, ownerID string, data vehicle.Data) (vehicle.Vehicle, error) {
	now := s.now()
	v := vehicle.Vehicle{ID: s.newID(), OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	vehicle.FullPatch(data).Apply(&v)

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO vehicles (`+vehicleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		v.ID, v.OwnerID, v.Make, v.Model, v.Year, string(v.Type), v.Engine, v.Transmission,
		v.Color, v.VIN, v.LicensePlate, v.Notes, toUnix(v.CreatedAt), toUnix(v.UpdatedAt))
	if err != nil {
		return vehicle.Vehicle{}, store.Normalize(err, store.FallbackCreate)
	}
	return s.Get(ctx, v.ID)
}

func (s *Store) Update(ctx context.Context, id string, patch vehicle.Patch) (vehicle.Vehicle, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return vehicle.Vehicle{}, store.Normalize(err, store.FallbackUpdate)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.get(ctx, tx, id)
	if err != nil {
		return vehicle.Vehicle{}, store.Normalize(err, store.FallbackUpdate)
	}
	patch.Apply(&current)
	current.UpdatedAt = s.now()

	_, err = tx.ExecContext(ctx, s.rebind(`UPDATE vehicles SET
		make = ?, model = ?, year = ?, type = ?, engine = ?, transmission = ?,
		color = ?, vin = ?, license_plate = ?, notes = ?, updated_at = ?
		WHERE id = ?`),
		current.Make, current.Model, current.Year, string(current.Type), current.Engine,
		current.Transmission, current.Color, current.VIN, current.LicensePlate, current.Notes,
		toUnix(current.UpdatedAt), id)
	if err != nil {
		return vehicle.Vehicle{}, store.Normalize(err, store.FallbackUpdate)
	}

	updated, err := s.get(ctx, tx, id)
	if err != nil {
		return vehicle.Vehicle{}, store.Normalize(err, store.FallbackUpdate)
	}
	if err := tx.Commit(); err != nil {
		return vehicle.Vehicle{}, store.Normalize(err, store.FallbackUpdate)
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM vehicles WHERE id = ?`), id)
	if err != nil {
		return store.Normalize(err, store.FallbackDelete)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.Normalize(err, store.FallbackDelete)
	}
	if n == 0 {
		return store.NotFound()
	}
	return nil
}

// CreateProfile upserts the profile document for uid.
func (s *Store) CreateProfile(ctx context.Context, uid, email string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO profiles (id, email, created_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET email = excluded.email, created_at = excluded.created_at`),
		uid, email, toUnix(s.now()))
	if err != nil {
		return store.Normalize(err, store.FallbackCreateProfile)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, uid string) (store.Profile, error) {
	var (
		p       store.Profile
		created int64
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, email, created_at FROM profiles WHERE id = ?`), uid).
		Scan(&p.ID, &p.Email, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Profile{}, store.ProfileNotFound()
	}
	if err != nil {
		return store.Profile{}, store.Normalize(err, store.FallbackGetProfile)
	}
	p.CreatedAt = fromUnix(created)
	return p, nil
}
