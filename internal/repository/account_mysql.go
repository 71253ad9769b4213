package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/bocattovalley/bocatto-server/internal/model"
)

// MySQLAccountRepo mirrors the 'accounts' table.
type MySQLAccountRepo struct{ DB *sqlx.DB }

func NewMySQLAccountRepo(db *sqlx.DB) *MySQLAccountRepo { return &MySQLAccountRepo{DB: db} }

// EnsureTable creates the accounts table if it does not exist. The email
// column is indexed but not unique, matching the find-then-insert flow.
func (r *MySQLAccountRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS accounts (
  id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  name VARCHAR(100) NOT NULL,
  surname VARCHAR(100) NOT NULL,
  email VARCHAR(255) NOT NULL,
  password_hash VARCHAR(255) NOT NULL,
  phone VARCHAR(32) NOT NULL DEFAULT '',
  address VARCHAR(255) NOT NULL DEFAULT '',
  registered_at DATETIME NOT NULL,
  is_active TINYINT(1) NOT NULL DEFAULT 1,
  INDEX idx_accounts_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	_, err := r.DB.ExecContext(ctx, ddl)
	return err
}

// FindByEmail fetches the first account with email.
func (r *MySQLAccountRepo) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	var a model.Account
	err := r.DB.GetContext(ctx, &a,
		"SELECT name,surname,email,password_hash,phone,address,registered_at,is_active FROM accounts WHERE email=? LIMIT 1",
		email)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// Insert adds one account row.
func (r *MySQLAccountRepo) Insert(ctx context.Context, a model.Account) error {
	_, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO accounts (name,surname,email,password_hash,phone,address,registered_at,is_active)
		 VALUES (:name,:surname,:email,:password_hash,:phone,:address,:registered_at,:is_active)`,
		a)
	return err
}
