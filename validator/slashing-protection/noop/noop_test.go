package noop

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prysmaticlabs/signer-protection/validator/slashing-protection/iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ = iface.Protector(Protector{})

func TestProtector_ApprovesEverything(t *testing.T) {
	ctx := context.Background()
	p := Protector{}
	require.NoError(t, p.RegisterValidators(ctx, [][]byte{{1}}))

	// Conflicting requests are all approved, including for unknown validators.
	for _, root := range [][]byte{{1}, {2}, nil} {
		ok, err := p.MaySignBlock(ctx, []byte{2}, root, 10)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := p.MaySignAttestation(ctx, []byte{1}, []byte{1}, 2, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = p.MaySignAttestation(ctx, []byte{1}, []byte{2}, 3, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = p.MaySignAttestation(ctx, []byte{1}, []byte{2}, 5, 4)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProtector_HistoryOperationsFail(t *testing.T) {
	ctx := context.Background()
	p := Protector{}
	assert.ErrorIs(t, p.ImportData(ctx, strings.NewReader("{}")), ErrProtectionDisabled)
	buf := new(bytes.Buffer)
	assert.ErrorIs(t, p.ExportData(ctx, buf), ErrProtectionDisabled)
	assert.Equal(t, 0, buf.Len())
}
