package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) CreateBox(ctx context.Context, name string) (Box, error) {
	const query = `
		INSERT INTO boxes (name)
		VALUES ($1)
		RETURNING id, name`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var b Box
	if err := r.db.QueryRow(timeoutCtx, query, name).Scan(&b.ID, &b.Name); err != nil {
		return Box{}, err
	}
	return b, nil
}

func (r *PostgresRepo) ListBoxes(ctx context.Context) ([]Box, error) {
	const query = `SELECT id, name FROM boxes ORDER BY id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Box
	for rows.Next() {
		var b Box
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetBoxByName(ctx context.Context, name string) (Box, error) {
	const query = `SELECT id, name FROM boxes WHERE name = $1 LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var b Box
	err := r.db.QueryRow(timeoutCtx, query, name).Scan(&b.ID, &b.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Box{}, ErrNoSuchBox
		}
		return Box{}, err
	}
	return b, nil
}

func (r *PostgresRepo) CreateBook(ctx context.Context, book *Book) error {
	const query = `
		INSERT INTO books (title, isbn, author, year, description, box_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query,
		book.Title, book.ISBN, book.Author, book.Year, book.Description, book.BoxID,
	).Scan(&book.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateISBN
		}
		return err
	}
	return nil
}

func (r *PostgresRepo) AttachCover(ctx context.Context, bookID int64, cover []byte) (bool, error) {
	const query = `UPDATE books SET cover = $2 WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, bookID, cover)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepo) SearchBooks(ctx context.Context, keyword string) ([]Book, error) {
	const query = `
		SELECT id, title, isbn, author, year, description, cover, box_id
		FROM books
		WHERE title ILIKE $1 OR author ILIKE $1 OR description ILIKE $1
		ORDER BY id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, "%"+keyword+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBooks(rows)
}

func (r *PostgresRepo) BooksInBox(ctx context.Context, boxName string) ([]Book, error) {
	const query = `
		SELECT b.id, b.title, b.isbn, b.author, b.year, b.description, b.cover, b.box_id
		FROM books b
		JOIN boxes x ON x.id = b.box_id
		WHERE x.name = $1
		ORDER BY b.id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, boxName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBooks(rows)
}

func scanBooks(rows pgx.Rows) ([]Book, error) {
	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.ISBN, &b.Author, &b.Year, &b.Description, &b.Cover, &b.BoxID,
		); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
