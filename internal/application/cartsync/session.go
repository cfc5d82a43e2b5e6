// internal/application/cartsync/session.go
package cartsync

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	cartdom "costtracker/internal/domain/cart"
	productdom "costtracker/internal/domain/product"
)

// Session is the per-user half of the sync engine: it mirrors one signed-in
// user's cart, resolves product references against the shared catalog
// mirror (falling back to point reads), and keeps a recomputed View with
// the running total.
//
// Concurrency model: one event-loop goroutine owns all mutable state.
// Identity changes, cart snapshots, cart stream errors, catalog change
// notifications and fetch results are all loop events; watcher callbacks
// and fetch goroutines only ever hand events to the loop. Every scoped
// event carries the scope token of the subscription that produced it, so a
// late result from a previous user is discarded instead of corrupting the
// new scope.
type Session struct {
	catalog  *CatalogMirror
	carts    cartdom.Watcher
	products productdom.Repository

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	userCh  chan string
	eventCh chan event

	viewMu sync.RWMutex
	view   View

	updates chan struct{}
}

type eventKind int

const (
	evCartSnapshot eventKind = iota
	evCartError
	evFetchResult
)

// event is one scoped loop input. token identifies the cart subscription
// generation it belongs to.
type event struct {
	token     string
	kind      eventKind
	entries   []cartdom.Entry
	err       error
	productID string
	product   *productdom.Product // nil = not found / fetch failed
}

// NewSession starts a session with no signed-in user. catalog must already
// be started; it is shared between sessions and not owned here.
func NewSession(catalog *CatalogMirror, carts cartdom.Watcher, products productdom.Repository) (*Session, error) {
	if catalog == nil || carts == nil || products == nil {
		return nil, errors.New("cartsync: session dependencies are nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		catalog:  catalog,
		carts:    carts,
		products: products,
		ctx:      ctx,
		cancel:   cancel,
		userCh:   make(chan string),
		eventCh:  make(chan event),
		view:     View{State: StateEmpty, Summary: cartdom.Summarize(nil, nil)},
		updates:  make(chan struct{}, 1),
	}

	catalogCh, unsubscribe := catalog.Subscribe()

	s.wg.Add(1)
	go s.run(catalogCh, unsubscribe)

	return s, nil
}

// SetUser switches the session scope to uid ("" = signed out). The old
// scope's cart subscription is cancelled before the new one is opened; a
// transition to "no user" immediately yields an empty view and stops all
// cart traffic until a user reappears.
func (s *Session) SetUser(uid string) {
	select {
	case s.userCh <- strings.TrimSpace(uid):
	case <-s.ctx.Done():
	}
}

// View returns the current consumer-visible snapshot.
func (s *Session) View() View {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	return s.view
}

// Updates notifies (latest-wins) whenever the view changed. The channel is
// closed when the session closes.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Close tears the session down: cart subscription, catalog registration
// and in-flight fetches are all cancelled, and the loop goroutine exits.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
	close(s.updates)
}

func (s *Session) run(catalogCh <-chan struct{}, unsubscribe func()) {
	defer s.wg.Done()
	defer unsubscribe()

	var (
		uid        string
		token      string
		cancelCart func()
		entries    []cartdom.Entry
		st         = StateEmpty
		errMsg     string
		summary    = cartdom.Summarize(nil, nil)
		res        = newResolver()
	)

	defer func() {
		if cancelCart != nil {
			cancelCart()
		}
	}()

	publish := func() {
		v := View{
			State:      st,
			UserID:     uid,
			Summary:    summary,
			ErrMessage: errMsg,
			Pending:    res.pendingFetches() > 0,
		}
		s.viewMu.Lock()
		s.view = v
		s.viewMu.Unlock()

		select {
		case s.updates <- struct{}{}:
		default:
		}
	}

	// recompute re-derives the summary from the current entries and the
	// catalog snapshot, kicking off point reads for anything unresolved.
	// Full recompute per change; carts are small.
	recompute := func() {
		snap := s.catalog.Snapshot()

		for _, id := range res.missing(entries, snap) {
			s.fetch(token, id)
		}

		summary = cartdom.Summarize(entries, res.merged(entries, snap))
		res.prune(entries)
	}

	for {
		select {
		case <-s.ctx.Done():
			return

		case newUID := <-s.userCh:
			if newUID == uid {
				continue
			}

			// old scope first: cancel before (or concurrently with) the new
			// subscription so nothing stale lands in the new scope.
			if cancelCart != nil {
				cancelCart()
				cancelCart = nil
			}
			uid = newUID
			token = uuid.NewString()
			entries = nil
			errMsg = ""
			res.invalidateAll()

			if uid == "" {
				st = StateEmpty
				summary = cartdom.Summarize(nil, nil)
				publish()
				continue
			}

			st = StateLoading
			summary = cartdom.Summarize(nil, nil)
			publish()

			tok := token
			cancel, err := s.carts.WatchByOwner(s.ctx, uid,
				func(es []cartdom.Entry) {
					s.deliver(event{token: tok, kind: evCartSnapshot, entries: es})
				},
				func(werr error) {
					s.deliver(event{token: tok, kind: evCartError, err: werr})
				},
			)
			if err != nil {
				st = StateError
				errMsg = (&SubscriptionError{Scope: "cart:" + uid, Err: err}).Error()
				log.Printf("[session] cart subscribe failed uid=%q: %v", uid, err)
				publish()
				continue
			}
			cancelCart = cancel

		case ev := <-s.eventCh:
			if ev.token != token {
				continue // late arrival from a torn-down scope
			}

			switch ev.kind {
			case evCartSnapshot:
				entries = ev.entries
				st = stateForEntries(entries)
				errMsg = ""
				recompute()
				publish()

			case evCartError:
				st = StateError
				errMsg = (&SubscriptionError{Scope: "cart:" + uid, Err: ev.err}).Error()
				log.Printf("[session] cart stream error uid=%q: %v", uid, ev.err)
				publish()

			case evFetchResult:
				res.apply(ev.productID, ev.product)
				if st == StateEmpty || st == StatePopulated {
					recompute()
					publish()
				}
			}

		case <-catalogCh:
			if st == StateEmpty || st == StatePopulated {
				recompute()
				publish()
			}
		}
	}
}

// fetch issues one concurrent point read. Reads for distinct ids run
// independently: one failure tombstones that id only.
func (s *Session) fetch(token, id string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		p, err := s.products.GetByID(s.ctx, id)

		var pp *productdom.Product
		switch {
		case err == nil:
			pp = &p
		case errors.Is(err, productdom.ErrNotFound):
			// dangling reference; tombstone silently
		case errors.Is(err, context.Canceled):
			return
		default:
			log.Printf("[session] %v", &FetchError{ProductID: id, Err: err})
		}

		s.deliver(event{token: token, kind: evFetchResult, productID: id, product: pp})
	}()
}

func (s *Session) deliver(ev event) {
	select {
	case s.eventCh <- ev:
	case <-s.ctx.Done():
	}
}
