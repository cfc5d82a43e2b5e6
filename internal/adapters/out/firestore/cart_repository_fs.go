// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "costtracker/internal/domain/cart"
)

const (
	defaultUsersCollection     = "users"
	defaultCartItemsCollection = "cartItems"
)

// CartRepositoryFS implements the cart write and watch ports on Firestore.
//
// Collection design:
// - collection: users/{ownerId}/cartItems
// - docId: entry id (= productId, one entry per product per user)
// - fields: productId, quantity, addedAt
type CartRepositoryFS struct {
	Client *firestore.Client

	UsersCollection     string
	CartItemsCollection string
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col(ownerID string) *firestore.CollectionRef {
	users := strings.TrimSpace(r.UsersCollection)
	if users == "" {
		users = defaultUsersCollection
	}
	items := strings.TrimSpace(r.CartItemsCollection)
	if items == "" {
		items = defaultCartItemsCollection
	}
	return r.Client.Collection(users).Doc(ownerID).Collection(items)
}

// Create writes a brand-new entry. Firestore's conditional Create is the
// upsert guard: an existing doc id surfaces as cartdom.ErrEntryExists so
// the caller can take the atomic-increment path instead.
func (r *CartRepositoryFS) Create(ctx context.Context, e cartdom.Entry) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if err := e.Validate(); err != nil {
		return err
	}

	_, err := r.col(e.OwnerID).Doc(e.ID).Create(ctx, entryToDoc(e))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return cartdom.ErrEntryExists
		}
		return fmt.Errorf("cart_repository_fs: create %s/%s: %w", e.OwnerID, e.ID, err)
	}
	return nil
}

// IncrementQuantity applies the store's atomic increment to quantity and
// refreshes addedAt. No client-side read-modify-write: concurrent adds
// never lose increments.
func (r *CartRepositoryFS) IncrementQuantity(ctx context.Context, ownerID, entryID string, delta int, now time.Time) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	oid := strings.TrimSpace(ownerID)
	eid := strings.TrimSpace(entryID)
	if oid == "" || eid == "" {
		return cartdom.ErrInvalidEntry
	}

	_, err := r.col(oid).Doc(eid).Update(ctx, []firestore.Update{
		{Path: "quantity", Value: firestore.Increment(delta)},
		{Path: "addedAt", Value: now.UTC()},
	})
	if err != nil {
		return fmt.Errorf("cart_repository_fs: increment %s/%s: %w", oid, eid, err)
	}
	return nil
}

// SetQuantity overwrites the stored quantity. Quantity validation happens
// in the usecase before this is reached.
func (r *CartRepositoryFS) SetQuantity(ctx context.Context, ownerID, entryID string, quantity int) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	oid := strings.TrimSpace(ownerID)
	eid := strings.TrimSpace(entryID)
	if oid == "" || eid == "" {
		return cartdom.ErrInvalidEntry
	}

	_, err := r.col(oid).Doc(eid).Update(ctx, []firestore.Update{
		{Path: "quantity", Value: quantity},
	})
	if err != nil {
		return fmt.Errorf("cart_repository_fs: set quantity %s/%s: %w", oid, eid, err)
	}
	return nil
}

// Delete removes the entry. NotFound is swallowed: deleting an absent id
// is a success from the caller's perspective.
func (r *CartRepositoryFS) Delete(ctx context.Context, ownerID, entryID string) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	oid := strings.TrimSpace(ownerID)
	eid := strings.TrimSpace(entryID)
	if oid == "" || eid == "" {
		return cartdom.ErrInvalidEntry
	}

	_, err := r.col(oid).Doc(eid).Delete(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return fmt.Errorf("cart_repository_fs: delete %s/%s: %w", oid, eid, err)
	}
	return nil
}

// WatchByOwner opens a snapshot stream over one user's cartItems, ordered
// by addedAt (doc id tiebreak), and feeds whole ordered lists to
// onSnapshot. Stream failures go to onError; the session decides how to
// surface them. The returned cancel func stops the stream.
func (r *CartRepositoryFS) WatchByOwner(ctx context.Context, ownerID string, onSnapshot func([]cartdom.Entry), onError func(error)) (func(), error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}
	if onSnapshot == nil || onError == nil {
		return nil, errors.New("cart_repository_fs: nil watch callback")
	}

	oid := strings.TrimSpace(ownerID)
	if oid == "" {
		return nil, cartdom.ErrInvalidEntry
	}

	wctx, cancel := context.WithCancel(ctx)
	q := r.col(oid).
		OrderBy("addedAt", firestore.Asc).
		OrderBy(firestore.DocumentID, firestore.Asc)

	go func() {
		it := q.Snapshots(wctx)
		defer it.Stop()

		for {
			qsnap, err := it.Next()
			if err != nil {
				if wctx.Err() != nil {
					return
				}
				// cart streams are scoped to a session; a broken stream is
				// terminal for the scope, re-subscription happens on the
				// next identity change.
				onError(err)
				return
			}

			entries := make([]cartdom.Entry, 0, 8)
			docs := qsnap.Documents
			for {
				doc, derr := docs.Next()
				if derr == iterator.Done {
					break
				}
				if derr != nil {
					log.Printf("[cart_repository_fs] snapshot doc iterate failed owner=%q: %v", oid, derr)
					break
				}

				e, eerr := docToEntry(oid, doc)
				if eerr != nil {
					log.Printf("[cart_repository_fs] skip malformed cart doc owner=%q id=%q: %v", oid, doc.Ref.ID, eerr)
					continue
				}
				entries = append(entries, e)
			}

			onSnapshot(entries)
		}
	}()

	return cancel, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type entryDoc struct {
	ProductID string    `firestore:"productId"`
	Quantity  int       `firestore:"quantity"`
	AddedAt   time.Time `firestore:"addedAt"`
}

func entryToDoc(e cartdom.Entry) entryDoc {
	return entryDoc{
		ProductID: e.ProductID,
		Quantity:  e.Quantity,
		AddedAt:   e.AddedAt.UTC(),
	}
}

func docToEntry(ownerID string, snap *firestore.DocumentSnapshot) (cartdom.Entry, error) {
	if snap == nil {
		return cartdom.Entry{}, errors.New("cart_repository_fs: snapshot is nil")
	}

	var d entryDoc
	if err := snap.DataTo(&d); err != nil {
		return cartdom.Entry{}, err
	}

	e := cartdom.Entry{
		ID:        snap.Ref.ID,
		OwnerID:   ownerID,
		ProductID: strings.TrimSpace(d.ProductID),
		Quantity:  d.Quantity,
		AddedAt:   d.AddedAt,
	}
	if err := e.Validate(); err != nil {
		return cartdom.Entry{}, err
	}
	return e, nil
}
