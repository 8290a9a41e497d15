package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"apexpos/backend/internal/store"
)

func listDocs[T any](ctx context.Context, db *sql.DB, collection string, oldestFirst bool, limit int) ([]T, error) {
	order := "DESC"
	if oldestFirst {
		order = "ASC"
	}
	return queryDocs[T](ctx, db, `
		SELECT body FROM documents
		WHERE collection = $1
		ORDER BY sort_at `+order+`, id `+order+`
		LIMIT $2
	`, collection, limitArg(limit))
}

// listDocsBetween returns documents with from <= sort_at < to, newest first.
func listDocsBetween[T any](ctx context.Context, db *sql.DB, collection string, from time.Time, to time.Time) ([]T, error) {
	return queryDocs[T](ctx, db, `
		SELECT body FROM documents
		WHERE collection = $1 AND sort_at >= $2 AND sort_at < $3
		ORDER BY sort_at DESC, id DESC
	`, collection, from, to)
}

func queryDocs[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query documents")
	}
	defer rows.Close()

	out := make([]T, 0, 32)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var doc T
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, errors.Wrap(err, "decode document")
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func getDoc[T any](ctx context.Context, db *sql.DB, collection string, id string) (*T, error) {
	var body []byte
	err := db.QueryRowContext(ctx, `
		SELECT body FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s %s", collection, id)
	}
	return decodeDoc[T](body)
}

// updateDoc runs an UPDATE ... RETURNING body and reports ErrNotFound when no
// row matched.
func updateDoc[T any](ctx context.Context, db *sql.DB, query string, args ...any) (*T, error) {
	var body []byte
	err := db.QueryRowContext(ctx, query, args...).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "update document")
	}
	return decodeDoc[T](body)
}

func insertDoc(ctx context.Context, db *sql.DB, collection string, id string, sortAt time.Time, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode document")
	}
	if sortAt.IsZero() {
		sortAt = time.Now()
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, sort_at)
		VALUES ($1, $2, $3, $4)
	`, collection, id, body, sortAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return errors.Wrapf(err, "insert %s", collection)
	}
	return nil
}

func replaceDoc(ctx context.Context, db *sql.DB, collection string, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode document")
	}
	res, err := db.ExecContext(ctx, `
		UPDATE documents SET body = $3 WHERE collection = $1 AND id = $2
	`, collection, id, body)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return errors.Wrapf(err, "replace %s %s", collection, id)
	}
	return requireAffected(res)
}

func deleteDoc(ctx context.Context, db *sql.DB, collection string, id string) error {
	res, err := db.ExecContext(ctx, `
		DELETE FROM documents WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return errors.Wrapf(err, "delete %s %s", collection, id)
	}
	return requireAffected(res)
}

// countDocs counts a collection, optionally restricted to the given statuses.
func countDocs(ctx context.Context, db *sql.DB, collection string, statuses []string) (int64, error) {
	if statuses == nil {
		statuses = []string{}
	}
	var n int64
	err := db.QueryRowContext(ctx, `
		SELECT count(*) FROM documents
		WHERE collection = $1 AND (cardinality($2::text[]) = 0 OR body->>'status' = ANY($2))
	`, collection, statuses).Scan(&n)
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", collection)
	}
	return n, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func decodeDoc[T any](body []byte) (*T, error) {
	var doc T
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "decode document")
	}
	return &doc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// stamp formats t the way encoding/json writes time.Time, so partial updates
// stay decodable.
func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
