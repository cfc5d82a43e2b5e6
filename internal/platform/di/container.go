// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"log"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	httpin "costtracker/internal/adapters/in/http"
	"costtracker/internal/adapters/in/http/middleware"
	fsrepo "costtracker/internal/adapters/out/firestore"
	"costtracker/internal/adapters/out/gcs"
	"costtracker/internal/application/cartsync"
	"costtracker/internal/application/query"
	"costtracker/internal/application/usecase"
	appcfg "costtracker/internal/infra/config"
	fsinfra "costtracker/internal/infra/firestore"
	"costtracker/internal/infra/secrets"
)

// Container is the shared runtime wiring:
//   - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager)
//   - owns the process-wide catalog mirror and the session manager
//   - owns env/config-resolved runtime settings
//
// Firestore is strict (init error fails the container); Firebase Auth, GCS
// and Secret Manager are best-effort (warn + continue), matching how the
// service must keep serving reads when an optional dependency is down.
type Container struct {
	Config    *appcfg.Config
	ProjectID string

	// Clients (owned; Close-managed)
	Firestore     *fsinfra.ClientWrapper
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client

	// Repositories
	ProductRepo *fsrepo.ProductRepositoryFS
	CartRepo    *fsrepo.CartRepositoryFS

	// Application
	Catalog      *cartsync.CatalogMirror
	Sessions     *cartsync.Manager
	CartUsecase  *usecase.CartUsecase
	CatalogQuery *query.CatalogQuery

	cancel context.CancelFunc
}

// NewContainer initializes all dependencies and starts the catalog mirror.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := appcfg.Load()

	projectID := strings.TrimSpace(cfg.FirestoreProjectID)
	if projectID == "" {
		return nil, errors.New("di: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	c := &Container{
		Config:    cfg,
		ProjectID: projectID,
	}

	clientOpts, err := c.resolveClientOptions(ctx, cfg, projectID)
	if err != nil {
		return nil, err
	}

	// 1) Firestore (strict)
	fsw, err := fsinfra.NewClient(ctx, projectID, clientOpts...)
	if err != nil {
		return nil, err
	}
	c.Firestore = fsw

	// 2) Firebase Auth (best-effort: /api/me routes 503 until it exists)
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: strings.TrimSpace(cfg.FirebaseProjectID)}, clientOpts...)
	if err != nil {
		log.Printf("[di] WARN: firebase app init failed: %v", err)
	} else {
		c.FirebaseApp = fbApp
		if authClient, aerr := fbApp.Auth(ctx); aerr != nil {
			log.Printf("[di] WARN: firebase auth init failed: %v", aerr)
		} else {
			c.FirebaseAuth = authClient
		}
	}

	// 3) GCS (best-effort: products are served without image URLs)
	if gcsClient, gerr := storage.NewClient(ctx, clientOpts...); gerr != nil {
		log.Printf("[di] WARN: gcs init failed: %v", gerr)
	} else {
		c.GCS = gcsClient
	}

	// Repositories
	c.ProductRepo = &fsrepo.ProductRepositoryFS{
		Client:     fsw.Client,
		Collection: cfg.ProductsCollection,
	}
	c.CartRepo = &fsrepo.CartRepositoryFS{
		Client:              fsw.Client,
		UsersCollection:     cfg.UsersCollection,
		CartItemsCollection: cfg.CartItemsCollection,
	}

	// Catalog mirror: one live subscription for the process lifetime.
	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.Catalog = cartsync.NewCatalogMirror(c.ProductRepo)
	if err := c.Catalog.Start(runCtx); err != nil {
		cancel()
		_ = fsw.Close()
		return nil, err
	}

	c.Sessions, err = cartsync.NewManager(c.Catalog, c.CartRepo, c.ProductRepo)
	if err != nil {
		cancel()
		_ = fsw.Close()
		return nil, err
	}

	c.CartUsecase = usecase.NewCartUsecase(c.CartRepo)

	var images query.ImageURLResolver
	if c.GCS != nil && strings.TrimSpace(cfg.ProductImageBucket) != "" {
		images = gcs.NewProductImageGCS(c.GCS, cfg.ProductImageBucket)
	}
	c.CatalogQuery, err = query.NewCatalogQuery(c.Catalog, images)
	if err != nil {
		cancel()
		_ = fsw.Close()
		return nil, err
	}

	log.Printf("[di] container ready (project=%s firebaseAuth=%t gcs=%t imageBucket=%q)",
		projectID, c.FirebaseAuth != nil, c.GCS != nil, cfg.ProductImageBucket)

	return c, nil
}

// resolveClientOptions picks credentials for all GCP clients:
// Secret Manager payload > credentials file > ADC.
func (c *Container) resolveClientOptions(ctx context.Context, cfg *appcfg.Config, projectID string) ([]option.ClientOption, error) {
	if sid := strings.TrimSpace(cfg.FirestoreCredentialsSecret); sid != "" {
		sm, err := secretmanager.NewClient(ctx)
		if err != nil {
			log.Printf("[di] WARN: secretmanager init failed, falling back to file/ADC: %v", err)
		} else {
			c.SecretManager = sm
			payload, ferr := secrets.FetchCredentialsJSON(ctx, sm, projectID, sid)
			if ferr != nil {
				log.Printf("[di] WARN: credentials secret fetch failed, falling back to file/ADC: %v", ferr)
			} else {
				log.Printf("[di] using credentials from secret manager (secret=%s)", sid)
				return []option.ClientOption{option.WithCredentialsJSON(payload)}, nil
			}
		}
	}

	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	if credFile != "" {
		log.Printf("[di] using credentials file for GCP clients")
		return []option.ClientOption{option.WithCredentialsFile(credFile)}, nil
	}

	log.Printf("[di] using Application Default Credentials (no credentials configured)")
	return nil, nil
}

// RouterDeps assembles the wiring the HTTP router needs.
func (c *Container) RouterDeps() httpin.RouterDeps {
	var fbAuth *middleware.FirebaseAuthClient
	if c.FirebaseAuth != nil {
		fbAuth = c.FirebaseAuth
	}

	return httpin.RouterDeps{
		FirebaseAuth:  fbAuth,
		CartUsecase:   c.CartUsecase,
		Sessions:      c.Sessions,
		CatalogQuery:  c.CatalogQuery,
		AllowedOrigin: c.Config.AllowedOrigin,
	}
}

// Close releases owned resources in reverse order of acquisition.
func (c *Container) Close() {
	if c == nil {
		return
	}

	if c.Catalog != nil {
		c.Catalog.Close()
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.GCS != nil {
		if err := c.GCS.Close(); err != nil {
			log.Printf("[di] gcs close error: %v", err)
		}
	}
	if c.SecretManager != nil {
		if err := c.SecretManager.Close(); err != nil {
			log.Printf("[di] secretmanager close error: %v", err)
		}
	}
	if c.Firestore != nil {
		if err := c.Firestore.Close(); err != nil {
			log.Printf("[di] firestore close error: %v", err)
		}
	}
}
