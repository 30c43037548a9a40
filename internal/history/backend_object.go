package history

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/storage/object"
)

// ObjectBackend stores each key as a JSON object in an object store (local dir or S3).
type ObjectBackend struct {
	Store  object.ObjectStore
	Prefix string
}

// NewObjectBackend constructs an ObjectBackend writing under "history/".
func NewObjectBackend(store object.ObjectStore) *ObjectBackend {
	return &ObjectBackend{Store: store, Prefix: "history/"}
}

func (o *ObjectBackend) objectKey(key string) string {
	return o.Prefix + key + ".json"
}

func (o *ObjectBackend) Load(ctx context.Context, key string) ([]byte, error) {
	rc, err := o.Store.Open(ctx, o.objectKey(key))
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("open history object: %w", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (o *ObjectBackend) Put(ctx context.Context, key string, data []byte) error {
	if _, err := o.Store.SaveWithKey(ctx, o.objectKey(key), "application/json", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("save history object: %w", err)
	}
	return nil
}
