// Package nameservice resolves ENS and Base names to Ethereum addresses with
// read-only contract calls. It never signs or sends transactions.
package nameservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gethcore "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	appconfig "github.com/lewisedginton/zapbot/internal/config"
	"github.com/lewisedginton/zapbot/pkg/logger"
)

var (
	// ErrInvalidName is returned for names that cannot be hashed.
	ErrInvalidName = errors.New("invalid name")
	// ErrNotFound is returned when a name has no resolver or no address.
	ErrNotFound = errors.New("name not found")
	// ErrNotConfigured is returned when the needed registry is not set.
	ErrNotConfigured = errors.New("name service not configured")
)

const (
	registryABIJSON     = `[{"inputs":[{"name":"node","type":"bytes32"}],"name":"resolver","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}]`
	addrResolverABIJSON = `[{"inputs":[{"name":"node","type":"bytes32"}],"name":"addr","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}]`
	baseRegistryABIJSON = `[{"inputs":[{"name":"node","type":"bytes32"}],"name":"getNode","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}]`
)

var (
	registryABI     = mustParseABI(registryABIJSON)
	addrResolverABI = mustParseABI(addrResolverABIJSON)
	baseRegistryABI = mustParseABI(baseRegistryABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI: %v", err))
	}
	return parsed
}

// Config configures a Resolver.
type Config struct {
	Caller       gethcore.ContractCaller // Required
	ENSRegistry  common.Address          // Required
	BaseRegistry common.Address          // Zero disables Base lookups
	Timeout      time.Duration           // Per lookup, zero for none
	Logger       logger.Logger           // Required
}

// Resolver looks names up through an Ethereum JSON-RPC endpoint.
type Resolver struct {
	caller       gethcore.ContractCaller
	ensRegistry  common.Address
	baseRegistry common.Address
	timeout      time.Duration
	log          logger.Logger
	closeFn      func()
}

// New creates a Resolver over an existing contract caller.
func New(cfg Config) (*Resolver, error) {
	if cfg.Caller == nil {
		return nil, fmt.Errorf("contract caller is required")
	}
	if cfg.ENSRegistry == (common.Address{}) {
		return nil, fmt.Errorf("ens registry address is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Resolver{
		caller:       cfg.Caller,
		ensRegistry:  cfg.ENSRegistry,
		baseRegistry: cfg.BaseRegistry,
		timeout:      cfg.Timeout,
		log:          cfg.Logger.WithFields(logger.StringField("component", "nameservice")),
	}, nil
}

// Dial connects to the configured RPC endpoint. Close releases the connection.
func Dial(ctx context.Context, cfg appconfig.ChainConfig, log logger.Logger) (*Resolver, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	client, err := ethclient.DialContext(ctx, strings.TrimSpace(cfg.RPCURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rpc endpoint: %w", err)
	}

	rcfg := Config{
		Caller:      client,
		ENSRegistry: common.HexToAddress(cfg.ENSRegistry),
		Timeout:     cfg.Timeout(),
		Logger:      log,
	}
	if cfg.BaseRegistry != "" {
		rcfg.BaseRegistry = common.HexToAddress(cfg.BaseRegistry)
	}

	r, err := New(rcfg)
	if err != nil {
		client.Close()
		return nil, err
	}
	r.closeFn = client.Close
	return r, nil
}

// Close releases the RPC connection opened by Dial.
func (r *Resolver) Close() {
	if r.closeFn != nil {
		r.closeFn()
		r.closeFn = nil
	}
}

// ResolveENS asks the ENS registry for the name's resolver, then asks the
// resolver for the address.
func (r *Resolver) ResolveENS(ctx context.Context, name string) (common.Address, error) {
	node, err := Namehash(name)
	if err != nil {
		return common.Address{}, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	resolver, err := r.callAddress(ctx, r.ensRegistry, registryABI, "resolver", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to look up resolver: %w", err)
	}
	if resolver == (common.Address{}) {
		return common.Address{}, ErrNotFound
	}

	addr, err := r.callAddress(ctx, resolver, addrResolverABI, "addr", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to resolve address: %w", err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, ErrNotFound
	}

	r.log.Debug("Resolved ENS name",
		logger.StringField("name", name),
		logger.StringField("address", addr.Hex()))
	return addr, nil
}

// ResolveBase reads the name's address from the Base name registry.
func (r *Resolver) ResolveBase(ctx context.Context, name string) (common.Address, error) {
	if r.baseRegistry == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: base registry address is not set", ErrNotConfigured)
	}

	node, err := Namehash(name)
	if err != nil {
		return common.Address{}, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	addr, err := r.callAddress(ctx, r.baseRegistry, baseRegistryABI, "getNode", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to resolve address: %w", err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, ErrNotFound
	}

	r.log.Debug("Resolved Base name",
		logger.StringField("name", name),
		logger.StringField("address", addr.Hex()))
	return addr, nil
}

func (r *Resolver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// callAddress calls a view method taking a bytes32 node and returning an address.
func (r *Resolver) callAddress(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, node common.Hash) (common.Address, error) {
	data, err := contractABI.Pack(method, [32]byte(node))
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to encode %s call: %w", method, err)
	}

	out, err := r.caller.CallContract(ctx, gethcore.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s call to %s failed: %w", method, contract.Hex(), err)
	}

	values, err := contractABI.Unpack(method, out)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	if len(values) != 1 {
		return common.Address{}, fmt.Errorf("unexpected %s result length %d", method, len(values))
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected %s result type %T", method, values[0])
	}
	return addr, nil
}
