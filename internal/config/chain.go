package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"
)

// ChainConfig holds the Ethereum JSON-RPC endpoint used for name lookups.
// Resolution is disabled when RPCURL is empty.
type ChainConfig struct {
	RPCURL         string `env:"RPC_URL" yaml:"rpc_url"`
	ENSRegistry    string `env:"ENS_REGISTRY_ADDRESS" yaml:"ens_registry" default:"0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"`
	BaseRegistry   string `env:"BASE_NS_CONTRACT" yaml:"base_registry"` // Optional: enables Base names
	TimeoutSeconds int    `env:"RPC_TIMEOUT_SECONDS" yaml:"timeout_seconds" default:"10"`
}

// Enabled reports whether an RPC endpoint is configured.
func (c ChainConfig) Enabled() bool {
	return strings.TrimSpace(c.RPCURL) != ""
}

// Timeout returns the per-lookup RPC timeout.
func (c ChainConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks contract addresses when resolution is enabled.
func (c ChainConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}

	var result error
	if !common.IsHexAddress(c.ENSRegistry) {
		result = multierror.Append(result, fmt.Errorf("ens_registry must be a hex address, got %q", c.ENSRegistry))
	}
	if c.BaseRegistry != "" && !common.IsHexAddress(c.BaseRegistry) {
		result = multierror.Append(result, fmt.Errorf("base_registry must be a hex address, got %q", c.BaseRegistry))
	}
	if c.TimeoutSeconds <= 0 {
		result = multierror.Append(result, fmt.Errorf("rpc timeout_seconds must be greater than 0"))
	}
	return result
}
