package testing

import (
	"context"
	"os"
	"testing"

	"github.com/prysmaticlabs/signer-protection/validator/db/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDB(t *testing.T) {
	for _, backend := range Backends {
		t.Run(backend, func(t *testing.T) {
			db := SetupDB(t, &kv.Config{Backend: backend})
			_, err := os.Stat(db.DatabasePath())
			require.NoError(t, err)
			root, err := db.GenesisValidatorsRoot(context.Background())
			require.NoError(t, err)
			assert.Nil(t, root)
		})
	}
}
