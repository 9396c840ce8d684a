package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/clubhub/docstore"
)

// ErrMalformedDocument is returned when a stored document does not decode
// into a valid model.
var ErrMalformedDocument = errors.New("malformed document")

// Executor is satisfied by both docstore.Store and docstore.Tx, so every
// repository method can run inside or outside a transaction.
type Executor interface {
	Get(ctx context.Context, collection, id string) (*docstore.Document, error)
	List(ctx context.Context, collection string, q docstore.Query) ([]*docstore.Document, error)
	Set(ctx context.Context, collection, id string, data any) error
	Update(ctx context.Context, collection, id string, updates ...docstore.Update) error
	Delete(ctx context.Context, collection, id string) error
}

func getExecutor(store docstore.Store, exec Executor) Executor {
	if exec != nil {
		return exec
	}
	return store
}

// validatable is implemented by every model stored through a repository.
type validatable interface {
	Validate() error
}

// decode is the one place documents become models. setID copies the
// document id into the model before validation.
func decode[T any, PT interface {
	*T
	validatable
}](doc *docstore.Document, setID func(PT, string)) (PT, error) {
	var v T
	ptr := PT(&v)
	if err := doc.DataTo(ptr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	setID(ptr, doc.ID)
	if err := ptr.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDocument, doc.ID, err)
	}
	return ptr, nil
}

func decodeAll[T any, PT interface {
	*T
	validatable
}](docs []*docstore.Document, setID func(PT, string)) ([]PT, error) {
	out := make([]PT, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T, PT](doc, setID)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return notFound
	}
	return err
}
