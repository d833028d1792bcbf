package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"portfolio-tracker/internal/models"
)

const (
	queryTimeout    = 4 * time.Second
	uniqueViolation = "23505"
	stockColumns    = `id::text, user_id::text, symbol, shares, purchase_price, current_price, created_at, updated_at`
	fundColumns     = `id::text, user_id::text, symbol, fund, units, nav, current_price, created_at, updated_at`
	userColumns     = `id::text, username, email, password, created_at, updated_at`
)

type pgxRows interface {
	Next() bool
	Close()
	Scan(dest ...interface{}) error
	Err() error
}

var _ pgxRows = (pgx.Rows)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := uuid.New()
	err := r.db.QueryRow(ctx, `
        INSERT INTO users (id, username, email, password)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at
    `, id, user.Username, user.Email, user.Password).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	user.ID = id.String()
	return nil
}

func (r *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uid)
}

func (r *PostgresStore) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u models.User
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func scanStock(row pgx.Row, st *models.Stock) error {
	return row.Scan(&st.ID, &st.UserID, &st.Symbol, &st.Shares, &st.PurchasePrice, &st.CurrentPrice, &st.CreatedAt, &st.UpdatedAt)
}

func scanFund(row pgx.Row, f *models.MutualFund) error {
	return row.Scan(&f.ID, &f.UserID, &f.Symbol, &f.Fund, &f.Units, &f.NAV, &f.CurrentPrice, &f.CreatedAt, &f.UpdatedAt)
}

func (r *PostgresStore) ListStocks(ctx context.Context, userID string) ([]models.Stock, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return []models.Stock{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+stockColumns+` FROM stocks WHERE user_id = $1 ORDER BY symbol`, uid)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanStock)
}

func (r *PostgresStore) GetStock(ctx context.Context, userID, symbol string) (*models.Stock, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var st models.Stock
	row := r.db.QueryRow(ctx, `SELECT `+stockColumns+` FROM stocks WHERE user_id = $1 AND symbol = $2`,
		uid, models.NormalizeStockSymbol(symbol))
	if err = scanStock(row, &st); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (r *PostgresStore) ListFunds(ctx context.Context, userID string) ([]models.MutualFund, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return []models.MutualFund{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+fundColumns+` FROM mutual_funds WHERE user_id = $1 ORDER BY symbol`, uid)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFund)
}

func (r *PostgresStore) GetFund(ctx context.Context, userID, symbol string) (*models.MutualFund, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var f models.MutualFund
	row := r.db.QueryRow(ctx, `SELECT `+fundColumns+` FROM mutual_funds WHERE user_id = $1 AND lower(symbol) = lower($2)`,
		uid, symbol)
	if err = scanFund(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// BuyStock is a single upsert: the weighted average is computed by the server
// against the locked row, so concurrent buys serialize on (user_id, symbol).
func (r *PostgresStore) BuyStock(ctx context.Context, userID string, lot models.StockLot) (*models.Stock, bool, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, false, fmt.Errorf("invalid user id %q: %w", userID, ErrNotFound)
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const buySQL = `
        INSERT INTO stocks (id, user_id, symbol, shares, purchase_price, current_price)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id, symbol) DO UPDATE SET
            purchase_price = (stocks.shares * stocks.purchase_price + EXCLUDED.shares * EXCLUDED.purchase_price)
                             / (stocks.shares + EXCLUDED.shares),
            shares         = stocks.shares + EXCLUDED.shares,
            current_price  = EXCLUDED.current_price,
            updated_at     = now()
        RETURNING ` + stockColumns + `, (xmax = 0) AS inserted
    `
	var (
		st      models.Stock
		created bool
	)
	err = r.db.QueryRow(ctx, buySQL,
		uuid.New(), uid, models.NormalizeStockSymbol(lot.Symbol),
		lot.Shares, lot.PurchasePrice, lot.CurrentPrice,
	).Scan(&st.ID, &st.UserID, &st.Symbol, &st.Shares, &st.PurchasePrice, &st.CurrentPrice, &st.CreatedAt, &st.UpdatedAt, &created)
	if err != nil {
		return nil, false, fmt.Errorf("buy %s: %w", lot.Symbol, err)
	}
	return &st, created, nil
}

func (r *PostgresStore) CreateFund(ctx context.Context, fund *models.MutualFund) error {
	uid, err := uuid.Parse(fund.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", fund.UserID, ErrNotFound)
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := uuid.New()
	err = r.db.QueryRow(ctx, `
        INSERT INTO mutual_funds (id, user_id, symbol, fund, units, nav, current_price)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at
    `, id, uid, fund.Symbol, fund.Fund, fund.Units, fund.NAV, fund.CurrentPrice).Scan(&fund.CreatedAt, &fund.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	fund.ID = id.String()
	return nil
}

func (r *PostgresStore) DeleteHoldings(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `DELETE FROM stocks WHERE user_id = $1`, uid); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM mutual_funds WHERE user_id = $1`, uid); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresStore) Close(context.Context) error {
	r.db.Close()
	return nil
}

func collect[T any](rows pgxRows, scan func(pgx.Row, *T) error) ([]T, error) {
	defer rows.Close()

	list := []T{}
	for rows.Next() {
		var item T
		if err := scan(rows, &item); err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
