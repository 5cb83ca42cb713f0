package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)
	GetUser(ctx context.Context, id int) (User, error)
	AnalysisRepository
}

type AnalysisRepository interface {
	SaveAnalysis(ctx context.Context, rec AnalysisRecord) error
	ListAnalyses(ctx context.Context, userID, limit int) ([]AnalysisRecord, error)
	GetAnalysis(ctx context.Context, userID int, id string) (AnalysisRecord, error)
	CountAnalyses(ctx context.Context, userID int) (int, error)
}

type User struct {
	ID        int       `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AnalysisRecord is one stored /analyze exchange. Request and Response are
// kept as the JSON documents that went over the wire.
type AnalysisRecord struct {
	ID        string          `json:"id"`
	UserID    int             `json:"user_id"`
	Title     string          `json:"title"`
	Status    string          `json:"status"`
	Request   json.RawMessage `json:"request"`
	Response  json.RawMessage `json:"response"`
	CreatedAt time.Time       `json:"created_at"`
}

type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// SQLRepository serves both Postgres (lib/pq) and SQLite (modernc) handles.
// Queries are written with ? placeholders and rebound per dialect.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewPostgresUserDB(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, dialect: Postgres}
}

func NewSQLiteDB(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, dialect: SQLite}
}

func (r *SQLRepository) rebind(query string) string {
	if r.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *SQLRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := r.rebind("INSERT INTO users (login, email, password) VALUES (?, ?, ?) RETURNING id")
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (r *SQLRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := r.rebind("SELECT id, password FROM users WHERE login = ?")

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrNotFound
		}
		return 0, "", fmt.Errorf("get user by login: %w", err)
	}
	return id, hash, nil
}

func (r *SQLRepository) GetUser(ctx context.Context, id int) (User, error) {
	var u User
	query := r.rebind("SELECT id, login, email, created_at FROM users WHERE id = ?")
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Login, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *SQLRepository) SaveAnalysis(ctx context.Context, rec AnalysisRecord) error {
	query := r.rebind(`INSERT INTO analyses (id, user_id, title, status, request, response, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.Title, rec.Status,
		string(rec.Request), string(rec.Response), rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListAnalyses(ctx context.Context, userID, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.rebind(`SELECT id, user_id, title, status, request, response, created_at
		FROM analyses WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) GetAnalysis(ctx context.Context, userID int, id string) (AnalysisRecord, error) {
	query := r.rebind(`SELECT id, user_id, title, status, request, response, created_at
		FROM analyses WHERE user_id = ? AND id = ?`)
	rec, err := scanAnalysis(r.db.QueryRowContext(ctx, query, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return AnalysisRecord{}, ErrNotFound
	}
	return rec, err
}

func (r *SQLRepository) CountAnalyses(ctx context.Context, userID int) (int, error) {
	var n int
	query := r.rebind("SELECT COUNT(*) FROM analyses WHERE user_id = ?")
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (AnalysisRecord, error) {
	var rec AnalysisRecord
	var req, res string
	err := s.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Status, &req, &res, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnalysisRecord{}, err
		}
		return AnalysisRecord{}, fmt.Errorf("scan analysis: %w", err)
	}
	rec.Request = json.RawMessage(req)
	rec.Response = json.RawMessage(res)
	return rec, nil
}
