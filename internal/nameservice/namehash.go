package nameservice

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Namehash computes the EIP-137 node of name. Labels are lower-cased but no
// further UTS-46 normalisation is applied.
func Namehash(name string) (common.Hash, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return common.Hash{}, fmt.Errorf("%w: name is empty", ErrInvalidName)
	}

	var node common.Hash
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		if labels[i] == "" {
			return common.Hash{}, fmt.Errorf("%w: empty label in %q", ErrInvalidName, name)
		}
		node = crypto.Keccak256Hash(node.Bytes(), crypto.Keccak256([]byte(labels[i])))
	}
	return node, nil
}
