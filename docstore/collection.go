package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/mbannour/go-docmap/docmap"
	"github.com/mbannour/go-docmap/query"
)

// Collection provides typed access to the documents of one record type
// stored under a shared collection name.
type Collection[T any] struct {
	store *Store
	name  string
	desc  *docmap.RecordDescriptor
}

// NewCollection binds record type T to the named collection. The record
// descriptor is built eagerly so mapping problems surface here rather than
// on first use.
func NewCollection[T any](store *Store, name string) (*Collection[T], error) {
	if name == "" {
		return nil, errors.New("docstore: collection name must not be empty")
	}
	desc, err := docmap.DescriptorOf[T]()
	if err != nil {
		return nil, fmt.Errorf("docstore: collection %s: %w", name, err)
	}
	return &Collection[T]{store: store, name: name, desc: desc}, nil
}

// MustCollection is like NewCollection but panics on error.
func MustCollection[T any](store *Store, name string) *Collection[T] {
	c, err := NewCollection[T](store, name)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// ensureID reads the record's id field, generating and writing back a fresh
// uuid when the field is empty. Records without an id field always get a
// fresh uuid; their identity lives only in the id column.
func (c *Collection[T]) ensureID(instance *T) string {
	fd, ok := c.desc.IDField()
	if !ok {
		return uuid.NewString()
	}
	rv := reflect.ValueOf(instance).Elem().Field(fd.FieldIndex)
	if id := rv.String(); id != "" {
		return id
	}
	id := uuid.NewString()
	rv.SetString(id)
	return id
}

// encode converts the instance to its stored body. The id field is carried
// by the id column, not the body.
func (c *Collection[T]) encode(instance *T) ([]byte, error) {
	doc, err := docmap.ToDocument(instance)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode %s: %w", c.desc.Name, err)
	}
	if fd, ok := c.desc.IDField(); ok {
		delete(doc, fd.DocName)
	}
	return encodeBody(doc)
}

// decodeDoc turns a stored body back into a document, restoring declared
// scalar types and the id field.
func (c *Collection[T]) decodeDoc(id string, body []byte) (docmap.Document, error) {
	doc, err := decodeBody(body)
	if err != nil {
		return nil, err
	}
	if err := reviveDocument(c.desc, doc); err != nil {
		return nil, fmt.Errorf("docstore: revive %s/%s: %w", c.name, id, err)
	}
	if fd, ok := c.desc.IDField(); ok {
		doc[fd.DocName] = id
	}
	return doc, nil
}

// materialize builds a typed record from a decoded document.
func (c *Collection[T]) materialize(id string, doc docmap.Document) (*T, error) {
	instance, err := docmap.Materialize[T](doc)
	if err != nil {
		return nil, fmt.Errorf("docstore: load %s/%s: %w", c.name, id, err)
	}
	return instance, nil
}

// Insert stores a new document and returns its id. An empty id field is
// populated with a generated uuid before storing; inserting an id that
// already exists fails.
func (c *Collection[T]) Insert(ctx context.Context, instance *T) (string, error) {
	if instance == nil {
		return "", errors.New("docstore: nil instance")
	}
	db, err := c.store.handle()
	if err != nil {
		return "", err
	}
	id := c.ensureID(instance)
	body, err := c.encode(instance)
	if err != nil {
		return "", err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)`,
		c.name, id, body)
	if err != nil {
		return "", fmt.Errorf("docstore: insert %s/%s: %w", c.name, id, err)
	}
	return id, nil
}

// Put inserts or replaces the document with the instance's id. An empty id
// field is populated with a generated uuid, which makes Put behave like
// Insert for fresh records.
func (c *Collection[T]) Put(ctx context.Context, instance *T) (string, error) {
	if instance == nil {
		return "", errors.New("docstore: nil instance")
	}
	db, err := c.store.handle()
	if err != nil {
		return "", err
	}
	id := c.ensureID(instance)
	body, err := c.encode(instance)
	if err != nil {
		return "", err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body`,
		c.name, id, body)
	if err != nil {
		return "", fmt.Errorf("docstore: put %s/%s: %w", c.name, id, err)
	}
	return id, nil
}

// Get loads the document with the given id, or ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	db, err := c.store.handle()
	if err != nil {
		return nil, err
	}
	var body []byte
	err = db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		c.name, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: get %s/%s: %w", c.name, id, err)
	}
	doc, err := c.decodeDoc(id, body)
	if err != nil {
		return nil, err
	}
	return c.materialize(id, doc)
}

// All returns every document in the collection, ordered by id.
func (c *Collection[T]) All(ctx context.Context) ([]*T, error) {
	return c.Find(ctx, nil)
}

// Find returns the documents matching the filter, ordered by id. A nil
// filter matches everything.
func (c *Collection[T]) Find(ctx context.Context, filter query.Filter) ([]*T, error) {
	rows, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}
	var out []*T
	for _, row := range rows {
		doc, err := c.decodeDoc(row.id, row.body)
		if err != nil {
			return nil, err
		}
		if filter != nil && !filter.Matches(doc) {
			continue
		}
		instance, err := c.materialize(row.id, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, instance)
	}
	return out, nil
}

// FindOne returns the first document matching the filter in id order, or
// ErrNotFound.
func (c *Collection[T]) FindOne(ctx context.Context, filter query.Filter) (*T, error) {
	rows, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		doc, err := c.decodeDoc(row.id, row.body)
		if err != nil {
			return nil, err
		}
		if filter != nil && !filter.Matches(doc) {
			continue
		}
		return c.materialize(row.id, doc)
	}
	return nil, ErrNotFound
}

// Count returns the number of documents matching the filter. A nil filter
// counts the whole collection without decoding bodies.
func (c *Collection[T]) Count(ctx context.Context, filter query.Filter) (int, error) {
	db, err := c.store.handle()
	if err != nil {
		return 0, err
	}
	if filter == nil {
		var n int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM documents WHERE collection = ?`,
			c.name).Scan(&n)
		if err != nil {
			return 0, fmt.Errorf("docstore: count %s: %w", c.name, err)
		}
		return n, nil
	}
	rows, err := c.scan(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, row := range rows {
		doc, err := c.decodeDoc(row.id, row.body)
		if err != nil {
			return 0, err
		}
		if filter.Matches(doc) {
			n++
		}
	}
	return n, nil
}

// UpdateByID applies the update to the document with the given id, or
// returns ErrNotFound. The decode, apply, and re-encode run in one SQL
// transaction.
func (c *Collection[T]) UpdateByID(ctx context.Context, id string, u *query.Update) error {
	db, err := c.store.handle()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("docstore: update %s/%s: %w", c.name, id, err)
	}
	defer tx.Rollback()

	var body []byte
	err = tx.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		c.name, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("docstore: update %s/%s: %w", c.name, id, err)
	}

	next, err := c.applyUpdate(id, body, u)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET body = ? WHERE collection = ? AND id = ?`,
		next, c.name, id); err != nil {
		return fmt.Errorf("docstore: update %s/%s: %w", c.name, id, err)
	}
	return tx.Commit()
}

// UpdateMany applies the update to every document matching the filter and
// returns the number updated. A nil filter updates the whole collection.
func (c *Collection[T]) UpdateMany(ctx context.Context, filter query.Filter, u *query.Update) (int, error) {
	db, err := c.store.handle()
	if err != nil {
		return 0, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("docstore: update %s: %w", c.name, err)
	}
	defer tx.Rollback()

	rows, err := c.scanTx(ctx, tx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, row := range rows {
		if filter != nil {
			doc, err := c.decodeDoc(row.id, row.body)
			if err != nil {
				return 0, err
			}
			if !filter.Matches(doc) {
				continue
			}
		}
		next, err := c.applyUpdate(row.id, row.body, u)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE documents SET body = ? WHERE collection = ? AND id = ?`,
			next, c.name, row.id); err != nil {
			return 0, fmt.Errorf("docstore: update %s/%s: %w", c.name, row.id, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("docstore: update %s: %w", c.name, err)
	}
	return n, nil
}

// DeleteByID removes the document with the given id, or returns ErrNotFound.
func (c *Collection[T]) DeleteByID(ctx context.Context, id string) error {
	db, err := c.store.handle()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		c.name, id)
	if err != nil {
		return fmt.Errorf("docstore: delete %s/%s: %w", c.name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("docstore: delete %s/%s: %w", c.name, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes every document matching the filter and returns the
// number removed. A nil filter empties the collection.
func (c *Collection[T]) DeleteMany(ctx context.Context, filter query.Filter) (int, error) {
	db, err := c.store.handle()
	if err != nil {
		return 0, err
	}
	if filter == nil {
		res, err := db.ExecContext(ctx,
			`DELETE FROM documents WHERE collection = ?`, c.name)
		if err != nil {
			return 0, fmt.Errorf("docstore: delete %s: %w", c.name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("docstore: delete %s: %w", c.name, err)
		}
		return int(n), nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("docstore: delete %s: %w", c.name, err)
	}
	defer tx.Rollback()

	rows, err := c.scanTx(ctx, tx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, row := range rows {
		doc, err := c.decodeDoc(row.id, row.body)
		if err != nil {
			return 0, err
		}
		if !filter.Matches(doc) {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM documents WHERE collection = ? AND id = ?`,
			c.name, row.id); err != nil {
			return 0, fmt.Errorf("docstore: delete %s/%s: %w", c.name, row.id, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("docstore: delete %s: %w", c.name, err)
	}
	return n, nil
}

// applyUpdate runs the update against a decoded body and re-encodes it.
// The id column stays authoritative: an id the update may have written into
// the document is stripped before encoding.
func (c *Collection[T]) applyUpdate(id string, body []byte, u *query.Update) ([]byte, error) {
	doc, err := c.decodeDoc(id, body)
	if err != nil {
		return nil, err
	}
	if err := u.Apply(doc); err != nil {
		return nil, fmt.Errorf("docstore: update %s/%s: %w", c.name, id, err)
	}
	if fd, ok := c.desc.IDField(); ok {
		delete(doc, fd.DocName)
	}
	return encodeBody(doc)
}

type storedRow struct {
	id   string
	body []byte
}

// scan reads all rows of the collection in id order.
func (c *Collection[T]) scan(ctx context.Context) ([]storedRow, error) {
	db, err := c.store.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, body FROM documents WHERE collection = ? ORDER BY id`,
		c.name)
	if err != nil {
		return nil, fmt.Errorf("docstore: scan %s: %w", c.name, err)
	}
	return collectRows(c.name, rows)
}

// scanTx is scan inside an open transaction.
func (c *Collection[T]) scanTx(ctx context.Context, tx *sql.Tx) ([]storedRow, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, body FROM documents WHERE collection = ? ORDER BY id`,
		c.name)
	if err != nil {
		return nil, fmt.Errorf("docstore: scan %s: %w", c.name, err)
	}
	return collectRows(c.name, rows)
}

func collectRows(name string, rows *sql.Rows) ([]storedRow, error) {
	defer rows.Close()
	var out []storedRow
	for rows.Next() {
		var row storedRow
		if err := rows.Scan(&row.id, &row.body); err != nil {
			return nil, fmt.Errorf("docstore: scan %s: %w", name, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docstore: scan %s: %w", name, err)
	}
	return out, nil
}
