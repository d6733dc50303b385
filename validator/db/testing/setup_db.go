// Package testing provides helpers to open throwaway slashing protection databases in tests.
package testing

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/signer-protection/validator/db/iface"
	"github.com/prysmaticlabs/signer-protection/validator/db/kv"
)

// Backends lists every storage backend, for tests exercising all of them.
var Backends = []string{kv.BadgerBackend, kv.BoltBackend}

// SetupDB instantiates and returns a DB instance for the slashing protection tests.
func SetupDB(t testing.TB, config *kv.Config) iface.ValidatorDB {
	db, err := kv.NewKVStore(context.Background(), t.TempDir(), config)
	if err != nil {
		t.Fatalf("Failed to instantiate DB: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("Failed to close database: %v", err)
		}
		if err := db.ClearDB(); err != nil {
			t.Fatalf("Failed to clear database: %v", err)
		}
	})
	return db
}
