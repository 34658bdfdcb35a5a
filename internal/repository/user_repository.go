package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/iliyamo/auth-service/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number for unique key violations.
const mysqlDuplicateEntry = 1062

const userColumns = "id,username,email,password_hash,first_name,last_name,role,created_at,updated_at"

// UserRepo is the credential store.  A user and its addresses form one
// document: every write replaces both inside a single transaction, so
// concurrent saves of the same user resolve as last-write-wins.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// FindByEmailOrUsername returns the first user whose email equals email or
// whose username equals username.  Login passes the same identifier twice.
func (r *UserRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (model.User, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? OR username=? LIMIT 1",
		email, username)
	return r.load(ctx, row)
}

// FindByID fetches a user and its addresses by primary key.
func (r *UserRepo) FindByID(ctx context.Context, id string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return r.load(ctx, row)
}

// Create inserts a new user with its addresses.  An empty ID is replaced by
// a fresh UUID.  Unique index violations surface as ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = normalizeEmail(u.Email)
	now := time.Now().UTC().Truncate(time.Second)
	u.CreatedAt, u.UpdatedAt = now, now

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?)",
			u.ID, u.Username, u.Email, u.PasswordHash,
			u.FullName.FirstName, u.FullName.LastName, string(u.Role),
			u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return translate(err, "insert user")
		}
		return insertAddresses(ctx, tx, u.ID, u.Addresses)
	})
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Save writes the whole user document: the user row is updated and the
// address rows are replaced in order.
func (r *UserRepo) Save(ctx context.Context, u model.User) (model.User, error) {
	u.Email = normalizeEmail(u.Email)
	u.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"UPDATE users SET username=?, email=?, first_name=?, last_name=?, role=?, updated_at=? WHERE id=?",
			u.Username, u.Email, u.FullName.FirstName, u.FullName.LastName, string(u.Role), u.UpdatedAt, u.ID)
		if err != nil {
			return translate(err, "update user")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM user_addresses WHERE user_id=?", u.ID); err != nil {
			return fmt.Errorf("delete addresses: %w", err)
		}
		return insertAddresses(ctx, tx, u.ID, u.Addresses)
	})
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// withTx runs fn inside a transaction and commits when it returns nil.
func (r *UserRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

func (r *UserRepo) load(ctx context.Context, row *sql.Row) (model.User, error) {
	var (
		u    model.User
		role string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FullName.FirstName, &u.FullName.LastName, &role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = model.Role(role)

	addrs, err := loadAddresses(ctx, r.DB, u.ID)
	if err != nil {
		return model.User{}, err
	}
	u.Addresses = addrs
	return u, nil
}

func loadAddresses(ctx context.Context, q queryer, userID string) ([]model.Address, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id,street,city,state,zip,country,is_default FROM user_addresses WHERE user_id=? ORDER BY position",
		userID)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	defer rows.Close()

	addrs := []model.Address{}
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.Street, &a.City, &a.State, &a.Zip, &a.Country, &a.IsDefault); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addrs = append(addrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses: %w", err)
	}
	return addrs, nil
}

// insertAddresses writes all addresses with one multi-row INSERT.  The slice
// index becomes the position column so reads keep the original order.
func insertAddresses(ctx context.Context, tx *sql.Tx, userID string, addrs []model.Address) error {
	if len(addrs) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("INSERT INTO user_addresses (id,user_id,position,street,city,state,zip,country,is_default) VALUES ")
	args := make([]any, 0, len(addrs)*9)
	for i, a := range addrs {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?,?,?,?,?,?,?,?,?)")
		args = append(args, a.ID, userID, i, a.Street, a.City, a.State, a.Zip, a.Country, a.IsDefault)
	}
	if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert addresses: %w", err)
	}
	return nil
}

// translate maps duplicate-key errors to ErrUserExists and wraps the rest.
func translate(err error, op string) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return ErrUserExists
	}
	return fmt.Errorf("%s: %w", op, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
