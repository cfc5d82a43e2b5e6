// internal/infra/config/config.go
package config

import "os"

// Config holds the environment configuration for the whole service.
type Config struct {
	Port string

	GCPProjectID             string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	GCPCreds                 string

	// FirestoreCredentialsSecret optionally names a Secret Manager secret
	// holding the service-account JSON. When set, it wins over the
	// credentials file (useful on Cloud Run where no key file is mounted).
	FirestoreCredentialsSecret string

	FirebaseProjectID string

	// ProductImageBucket is the GCS bucket product image objects live in.
	// Empty disables image URL resolution.
	ProductImageBucket string

	// AllowedOrigin is the browser origin allowed by CORS.
	AllowedOrigin string

	// Collection names (override only when the Firestore schema differs).
	ProductsCollection  string
	UsersCollection     string
	CartItemsCollection string
}

// Load reads environment variables and returns the Config.
func Load() *Config {
	defaultProject := os.Getenv("GCP_PROJECT_ID")

	return &Config{
		Port: getenvDefault("PORT", "8080"),

		GCPProjectID:               defaultProject,
		FirestoreProjectID:         getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile:   os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		GCPCreds:                   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirestoreCredentialsSecret: os.Getenv("FIRESTORE_CREDENTIALS_SECRET"),

		FirebaseProjectID: getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		ProductImageBucket: os.Getenv("PRODUCT_IMAGE_BUCKET"),

		AllowedOrigin: getenvDefault("ALLOWED_ORIGIN", "*"),

		ProductsCollection:  getenvDefault("PRODUCTS_COLLECTION", "products"),
		UsersCollection:     getenvDefault("USERS_COLLECTION", "users"),
		CartItemsCollection: getenvDefault("CART_ITEMS_COLLECTION", "cartItems"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
