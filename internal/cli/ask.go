package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"
)

const prompt = "Say something: "

// AskCommand runs a single request through the agent and prints the reply.
func AskCommand(opts Options) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Aliases:   []string{"a"},
		Usage:     "Send one request to the payment agent",
		ArgsUsage: "[request text]",
		Action:    askAction(opts),
	}
}

func askAction(opts Options) cli.ActionFunc {
	return func(c *cli.Context) error {
		log := getLogger(c)

		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		handler, err := buildHandler(c.Context, cfg, log, nil, opts.NewModel)
		if err != nil {
			return err
		}

		input := strings.Join(c.Args().Slice(), " ")
		if input == "" {
			if _, err := fmt.Fprint(opts.Stdout, prompt); err != nil {
				return err
			}
			if input, err = readLine(opts.Stdin); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
		}

		output, err := handler.Handle(c.Context, input)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(opts.Stdout, output)
		return err
	}
}

// readLine reads up to the first newline. A final line without a newline
// is accepted.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
