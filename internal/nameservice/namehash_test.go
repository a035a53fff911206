package nameservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamehash(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"eth", "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"},
		{"foo.eth", "0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"},
		{"  Foo.ETH ", "0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Namehash(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.Hex())
		})
	}
}

func TestNamehashRejectsInvalidNames(t *testing.T) {
	for _, name := range []string{"", "   ", "foo..eth", ".eth", "alice."} {
		t.Run(name, func(t *testing.T) {
			_, err := Namehash(name)
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}
}
