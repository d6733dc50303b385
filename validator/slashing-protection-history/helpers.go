package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
)

// Uint64FromString converts a string into a uint64 representation.
func Uint64FromString(str string) (uint64, error) {
	return strconv.ParseUint(str, 10, 64)
}

// EpochFromString converts a string into Epoch.
func EpochFromString(str string) (primitives.Epoch, error) {
	e, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return primitives.Epoch(e), err
	}
	return primitives.Epoch(e), nil
}

// SlotFromString converts a string into Slot.
func SlotFromString(str string) (primitives.Slot, error) {
	s, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return primitives.Slot(s), err
	}
	return primitives.Slot(s), nil
}

// PubKeyFromHex takes in a hex string, verifies it is non-empty hex, and returns the decoded bytes.
func PubKeyFromHex(str string) ([]byte, error) {
	pubKey, err := decodeHex(str)
	if err != nil {
		return nil, err
	}
	if len(pubKey) == 0 {
		return nil, errors.New("public key is empty")
	}
	return pubKey, nil
}

// RootFromHex decodes an optional hex root. An empty string or a bare 0x prefix yields a nil root.
func RootFromHex(str string) ([]byte, error) {
	if str == "" {
		return nil, nil
	}
	root, err := decodeHex(str)
	if err != nil {
		return nil, err
	}
	if len(root) == 0 {
		return nil, nil
	}
	return root, nil
}

func decodeHex(str string) ([]byte, error) {
	if !strings.HasPrefix(str, "0x") && !strings.HasPrefix(str, "0X") {
		str = "0x" + str
	}
	b, err := hexutil.Decode(str)
	if err != nil {
		return nil, fmt.Errorf("%q is not valid hex: %w", str, err)
	}
	return b, nil
}

func rootToHexString(root []byte) string {
	// Nil signing roots are allowed in EIP-3076.
	if len(root) == 0 {
		return ""
	}
	return hexutil.Encode(root)
}

func pubKeyToHexString(pubKey []byte) string {
	return hexutil.Encode(pubKey)
}
