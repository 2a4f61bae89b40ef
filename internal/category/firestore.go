package category

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// FirestoreStore reads the category catalog from a Firestore collection of
// category documents. Ordering by the persisted priority field is what makes
// first-match classification stable across deployments.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a Firestore-backed catalog over the given
// collection. The caller owns the client's lifecycle.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = "categories"
	}
	return &FirestoreStore{client: client, collection: collection}
}

// List returns all catalog entries ordered by priority.
func (s *FirestoreStore) List(ctx context.Context) ([]Category, error) {
	iter := s.client.Collection(s.collection).OrderBy("priority", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var categories []Category
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		var cat Category
		if err := doc.DataTo(&cat); err != nil {
			return nil, fmt.Errorf("parse category %s: %w", doc.Ref.ID, err)
		}
		categories = append(categories, cat)
	}
	return categories, nil
}
