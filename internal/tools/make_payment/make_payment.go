// Package make_payment exposes the payment capability to the agent runtime.
package make_payment //nolint:revive // var-naming: package mirrors the tool name

import (
	"fmt"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"github.com/lewisedginton/zapbot/internal/payment"
	"github.com/lewisedginton/zapbot/pkg/logger"
	"github.com/lewisedginton/zapbot/pkg/metrics"
)

// Name is the capability name the agent runtime sees.
const Name = "make_payment"

// Args are the capability parameters. Currency is optional and defaults to USD.
type Args struct {
	Recipient string  `json:"recipient" jsonschema:"Name, handle or address of the person receiving the money"`
	Amount    float64 `json:"amount" jsonschema:"Amount to send, as a number"`
	Currency  string  `json:"currency,omitempty" jsonschema:"ISO currency code, defaults to USD"`
}

// Result carries the confirmation text back to the agent.
type Result struct {
	Result string `json:"result"`
}

// Config holds dependencies for the tool
type Config struct {
	Logger  logger.Logger
	Metrics *metrics.Metrics // optional
}

func createHandler(config Config) func(tool.Context, Args) (Result, error) {
	log := config.Logger.WithFields(logger.StringField("tool", Name))

	return func(ctx tool.Context, args Args) (Result, error) {
		req := payment.NewRequest(args.Recipient, args.Amount, args.Currency)

		log.Info("Payment capability invoked",
			logger.StringField("recipient", req.Recipient),
			logger.StringField("amount", req.AmountString()),
			logger.StringField("currency", req.Currency))
		config.Metrics.ObserveCapability(Name, req.Currency)

		return Result{Result: req.Confirmation()}, nil
	}
}

// New creates the make_payment tool
func New(config Config) (tool.Tool, error) {
	if config.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return functiontool.New(functiontool.Config{
		Name: Name,
		Description: "Initiate a payment of an amount of money to a recipient. " +
			"Only call this once the user has confirmed the recipient, amount and currency.",
	}, createHandler(config))
}
