// internal/domain/product/repository_port.go
package product

import "context"

// Repository is a read-only persistence port for Product point reads.
//
// Storage (Firestore):
// - collection: products
// - docId: productId
//
// Not-found policy:
// - GetByID returns (Product{}, ErrNotFound) when the doc does not exist.
type Repository interface {
	GetByID(ctx context.Context, id string) (Product, error)
}

// Snapshot is one full catalog emission: productId -> Product.
// Each emission replaces the previous one; there is no partial-update shape.
type Snapshot map[string]Product

// Watcher is a streaming port over the products collection.
//
// Contract:
//   - onSnapshot receives the complete current contents of the collection,
//     in the order the store emits them. The map must be treated as immutable
//     by the receiver.
//   - onError receives stream failures. The stream keeps trying after an
//     error; a later onSnapshot supersedes the error.
//   - The returned cancel func releases the subscription. It must be called
//     on teardown and is safe to call more than once.
type Watcher interface {
	Watch(ctx context.Context, onSnapshot func(Snapshot), onError func(error)) (cancel func(), err error)
}
