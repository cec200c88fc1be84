package catalog

import "context"

type Repository interface {
	Find(ctx context.Context, coll Collection, f Filter) ([]Document, error)
	FindOne(ctx context.Context, coll Collection, id string) (Document, error)
	Insert(ctx context.Context, coll Collection, doc Document) (string, error)
	DeleteOwned(ctx context.Context, coll Collection, id, email string) (int64, error)
}
