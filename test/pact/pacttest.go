//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "storekeeper-api"
	ConsumerName = "store-chat-bot"

	StateOwnerWithStock = "owner 1 has green tea in stock"
	StateOwnerMissing   = "no owner with id 404"
)

const (
	ExistingOwnerID int64 = 1
	MissingOwnerID  int64 = 404

	ConversationID = "chat-1001"
)

const (
	exampleChatID    int64 = 1001
	exampleEmail           = "pact.shop@example.com"
	exampleStoreName       = "Pact Corner Shop"
	exampleProduct         = "Green tea"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the chat bot consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOwnerPayload is the registration body the provider state seeds.
func ExampleOwnerPayload() map[string]any {
	return map[string]any{
		"chatId":    exampleChatID,
		"email":     exampleEmail,
		"storeName": exampleStoreName,
		"language":  "en",
	}
}

// ExampleProductPayload is the product the provider state seeds.
func ExampleProductPayload() map[string]any {
	return map[string]any{
		"name":          exampleProduct,
		"purchasePrice": "10.00",
		"salePrice":     "15.50",
		"quantity":      5,
	}
}

// ExampleProductName is the seeded product's display name.
func ExampleProductName() string { return exampleProduct }

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
