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
	ProviderName = "store-api"
	ConsumerName = "perfume-storefront"

	StateNoCart       = "shopper 7 has no cart"
	StateEmptyCart    = "shopper 7 has empty cart 1"
	StateCartWithItem = "cart 1 of shopper 7 holds item 1"
)

// Ids line up with the fake store API, which numbers carts and items from 1 after a reset.
const (
	ShopperID      int64 = 7
	CartID         int64 = 1
	LineItemID     int64 = 1
	ProductID      int64 = 11
	SeededQuantity       = 2

	ProductName        = "Oud Noir"
	ProductPrice       = 100.0
	BearerToken        = "pact-shopper-token"
	ExampleRequestID   = "3f1c1a8e-5b7d-4c1e-9a53-2f0d1b6a7c9e"
	RequestIDPattern   = `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`
	AuthorizationRegex = `^Bearer \S+$`
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

// PactFile returns the pact file written by the storefront consumer test.
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

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
