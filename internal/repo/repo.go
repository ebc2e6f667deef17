package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"Shortcircuit/internal/calc/fault"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

//go:embed schema.sql
var schema string

// Preset is a named set of machine parameters. Only inputs are stored,
// computed series never are.
type Preset struct {
	ID         int                     `json:"id"`
	UserID     int                     `json:"user_id"`
	Name       string                  `json:"name"`
	Parameters fault.MachineParameters `json:"parameters"`
	CreatedAt  time.Time               `json:"created_at"`
}

type UserRepository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)
}

type PresetRepository interface {
	CreatePreset(ctx context.Context, userID int, name string, p fault.MachineParameters) (Preset, error)
	ListPresets(ctx context.Context, userID int) ([]Preset, error)
	GetPreset(ctx context.Context, userID, id int) (Preset, error)
	DeletePreset(ctx context.Context, userID, id int) error
}

type Repository interface {
	UserRepository
	PresetRepository
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects to Postgres, requiring TLS unless the DSN says otherwise.
func Open(connStr string) (*sql.DB, error) {
	if !strings.Contains(connStr, "sslmode=") {
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			sep := "?"
			if strings.Contains(connStr, "?") {
				sep = "&"
			}
			connStr = connStr + sep + "sslmode=require"
		} else {
			connStr = connStr + " sslmode=require"
		}
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("configure db: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *PostgresRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, mapError(err)
}

func (r *PostgresRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

const presetColumns = `id, user_id, name, apparent_power, voltage, voltage_offset, frequency,
	x_subtransient, x_transient, x_synchronous, t_subtransient, t_transient, t_armature, created_at`

func (r *PostgresRepository) CreatePreset(ctx context.Context, userID int, name string, p fault.MachineParameters) (Preset, error) {
	query := `INSERT INTO presets (user_id, name, apparent_power, voltage, voltage_offset, frequency,
	x_subtransient, x_transient, x_synchronous, t_subtransient, t_transient, t_armature)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING ` + presetColumns
	row := r.db.QueryRowContext(ctx, query, userID, name,
		p.ApparentPower, p.Voltage, p.VoltageOffset, p.Frequency,
		p.XSubtransient, p.XTransient, p.XSynchronous,
		p.TSubtransient, p.TTransient, p.TArmature)
	pr, err := scanPreset(row)
	return pr, mapError(err)
}

func (r *PostgresRepository) ListPresets(ctx context.Context, userID int) ([]Preset, error) {
	query := "SELECT " + presetColumns + " FROM presets WHERE user_id=$1 ORDER BY name"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Preset{}
	for rows.Next() {
		pr, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetPreset(ctx context.Context, userID, id int) (Preset, error) {
	query := "SELECT " + presetColumns + " FROM presets WHERE user_id=$1 AND id=$2"
	pr, err := scanPreset(r.db.QueryRowContext(ctx, query, userID, id))
	return pr, mapError(err)
}

func (r *PostgresRepository) DeletePreset(ctx context.Context, userID, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM presets WHERE user_id=$1 AND id=$2", userID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(s scanner) (Preset, error) {
	var pr Preset
	p := &pr.Parameters
	err := s.Scan(&pr.ID, &pr.UserID, &pr.Name,
		&p.ApparentPower, &p.Voltage, &p.VoltageOffset, &p.Frequency,
		&p.XSubtransient, &p.XTransient, &p.XSynchronous,
		&p.TSubtransient, &p.TTransient, &p.TArmature, &pr.CreatedAt)
	return pr, err
}

// mapError turns driver errors the handlers care about into sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pqErr.Constraint, ErrDuplicate)
	}
	return err
}
