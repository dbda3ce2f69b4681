package supabase

import (
	"log/slog"
	"strings"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/postgrest-go"
	storage_go "github.com/supabase-community/storage-go"
)

const hostedSuffix = ".supabase.co"

// Clients bundles the Supabase sub-clients used by the server.
type Clients struct {
	Auth    gotrue.Client
	Rest    *postgrest.Client
	Storage *storage_go.Client
}

// extractProjectRef extracts just the project reference ID from a Supabase URL
// From: akrqbuajqkirdekonpzy.supabase.co
// To: akrqbuajqkirdekonpzy
func extractProjectRef(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")

	parts := strings.Split(url, ".")
	return parts[0]
}

func isHosted(url string) bool {
	return strings.HasSuffix(strings.TrimSuffix(url, "/"), hostedSuffix)
}

// NewAuthClient returns a gotrue client for the project. Self-hosted and local
// projects are addressed through their /auth/v1 URL.
func NewAuthClient(baseURL, apiKey string) gotrue.Client {
	client := gotrue.New(extractProjectRef(baseURL), apiKey)
	if !isHosted(baseURL) {
		client = client.WithCustomGoTrueURL(strings.TrimSuffix(baseURL, "/") + "/auth/v1")
	}
	return client
}

// NewClients creates every sub-client. serviceKey is used for data and storage;
// anonKey for end-user auth calls.
func NewClients(baseURL, anonKey, serviceKey string) *Clients {
	base := strings.TrimSuffix(baseURL, "/")

	// Truncate key for logging to avoid exposing the full key
	truncatedKey := ""
	if len(serviceKey) > 10 {
		truncatedKey = serviceKey[:10] + "..."
	}
	slog.Info("Initializing Supabase clients", "project", extractProjectRef(base), "service_key", truncatedKey)

	headers := map[string]string{
		"apikey":        serviceKey,
		"Authorization": "Bearer " + serviceKey,
	}

	return &Clients{
		Auth:    NewAuthClient(base, anonKey),
		Rest:    postgrest.NewClient(base+"/rest/v1", "public", headers),
		Storage: storage_go.NewClient(base+"/storage/v1", serviceKey, map[string]string{"apikey": serviceKey}),
	}
}
