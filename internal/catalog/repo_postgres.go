package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/mehmetcc/travelize/internal/database"
	"go.uber.org/zap"
)

const (
	findDocumentsQuery = `
						SELECT id, body FROM documents
						WHERE collection = $1
						  AND ($2::text = '' OR owner_email = $2)
						ORDER BY created_at
						LIMIT $3
						`
	findDocumentQuery = `
						SELECT id, body FROM documents
						WHERE collection = $1 AND id = $2
						`
	insertDocumentQuery = `
						INSERT INTO documents (id, collection, owner_email, body)
						VALUES ($1, $2, NULLIF($3, ''), $4::jsonb)
						`
	deleteOwnedDocumentQuery = `
						DELETE FROM documents
						WHERE collection = $1 AND id = $2 AND owner_email = $3
						`
)

type postgresRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresRepo stores every collection in one JSONB documents table.
func NewPostgresRepo(db *sql.DB, logger *zap.Logger) Repository {
	return &postgresRepo{db: db, logger: logger}
}

func (p *postgresRepo) Find(ctx context.Context, coll Collection, f Filter) ([]Document, error) {
	var limit sql.NullInt64
	if f.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(f.Limit), Valid: true}
	}

	rows, err := p.db.QueryContext(ctx, findDocumentsQuery, string(coll), f.Email, limit)
	if err != nil {
		p.logger.Error("failed to query documents", zap.String("collection", string(coll)), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (p *postgresRepo) FindOne(ctx context.Context, coll Collection, id string) (Document, error) {
	d, err := scanDocument(p.db.QueryRowContext(ctx, findDocumentQuery, string(coll), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || database.IsInvalidInput(err) {
			return nil, ErrNotFound
		}
		p.logger.Error("failed to find document", zap.String("collection", string(coll)), zap.Error(err))
		return nil, err
	}
	return d, nil
}

func (p *postgresRepo) Insert(ctx context.Context, coll Collection, doc Document) (string, error) {
	body := cloneDoc(doc)
	delete(body, "_id")
	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if _, err := p.db.ExecContext(ctx, insertDocumentQuery, id, string(coll), doc.Owner(), string(raw)); err != nil {
		p.logger.Error("failed to insert document", zap.String("collection", string(coll)), zap.Error(err))
		return "", err
	}
	return id, nil
}

func (p *postgresRepo) DeleteOwned(ctx context.Context, coll Collection, id, email string) (int64, error) {
	res, err := p.db.ExecContext(ctx, deleteOwnedDocumentQuery, string(coll), id, email)
	if err != nil {
		if database.IsInvalidInput(err) {
			return 0, nil
		}
		p.logger.Error("failed to delete document", zap.String("collection", string(coll)), zap.Error(err))
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		id   string
		body []byte
	)
	if err := row.Scan(&id, &body); err != nil {
		return nil, err
	}
	d := Document{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &d); err != nil {
			return nil, err
		}
	}
	d["_id"] = id
	return d, nil
}
