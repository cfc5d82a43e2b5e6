// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	productdom "costtracker/internal/domain/product"
)

const defaultProductsCollection = "products"

// watchRetryDelay is the pause before re-opening a broken snapshot stream.
const watchRetryDelay = 5 * time.Second

// ProductRepositoryFS implements the product read ports on Firestore.
//
// Collection design:
// - collection: products
// - docId: productId
// - fields: name, cost(number), description, avatar(image object name)
type ProductRepositoryFS struct {
	Client *firestore.Client

	// Collection overrides the collection name (defaults to "products").
	Collection string
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	name := strings.TrimSpace(r.Collection)
	if name == "" {
		name = defaultProductsCollection
	}
	return r.Client.Collection(name)
}

// GetByID is the point read used by the reference resolver.
// Returns productdom.ErrNotFound when the doc does not exist.
func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errors.New("product_repository_fs: firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}

	return docToProduct(snap)
}

// Watch opens a collection snapshot stream and feeds whole-catalog
// snapshots to onSnapshot. A broken stream reports once to onError and is
// re-opened after a short delay; a successful emission after recovery
// supersedes the error. The returned cancel func stops the stream.
func (r *ProductRepositoryFS) Watch(ctx context.Context, onSnapshot func(productdom.Snapshot), onError func(error)) (func(), error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}
	if onSnapshot == nil || onError == nil {
		return nil, errors.New("product_repository_fs: nil watch callback")
	}

	wctx, cancel := context.WithCancel(ctx)

	go func() {
		for {
			it := r.col().Snapshots(wctx)
			for {
				qsnap, err := it.Next()
				if err != nil {
					it.Stop()
					if wctx.Err() != nil {
						return
					}
					onError(err)
					break
				}

				snap := productdom.Snapshot{}
				docs := qsnap.Documents
				for {
					doc, derr := docs.Next()
					if derr == iterator.Done {
						break
					}
					if derr != nil {
						log.Printf("[product_repository_fs] snapshot doc iterate failed: %v", derr)
						break
					}

					p, perr := docToProduct(doc)
					if perr != nil {
						// one malformed doc must not sink the snapshot
						log.Printf("[product_repository_fs] skip malformed product doc id=%q: %v", doc.Ref.ID, perr)
						continue
					}
					snap[p.ID] = p
				}

				onSnapshot(snap)
			}

			select {
			case <-wctx.Done():
				return
			case <-time.After(watchRetryDelay):
			}
		}
	}()

	return cancel, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type productDoc struct {
	Name        string  `firestore:"name"`
	Cost        float64 `firestore:"cost"`
	Description string  `firestore:"description"`
	Avatar      string  `firestore:"avatar"`
}

func docToProduct(snap *firestore.DocumentSnapshot) (productdom.Product, error) {
	if snap == nil {
		return productdom.Product{}, errors.New("product_repository_fs: snapshot is nil")
	}

	var d productDoc
	if err := snap.DataTo(&d); err != nil {
		return productdom.Product{}, err
	}

	p := productdom.Product{
		ID:   snap.Ref.ID,
		Name: strings.TrimSpace(d.Name),
		// store keeps cost as a number; all arithmetic happens on decimal
		UnitCost:    decimal.NewFromFloat(d.Cost),
		Description: d.Description,
		ImageRef:    strings.TrimSpace(d.Avatar),
	}
	if err := p.Validate(); err != nil {
		return productdom.Product{}, err
	}
	return p, nil
}
