package app

import (
	"fmt"
	"io"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"mcbeam/util/conf"
)

func ValidateChain(w io.Writer, c *conf.Chain) error {
	chain, states, err := c.Build(nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "chain OK: %d states, initial state %s\n", len(states), chain.Current())
	return nil
}

func Validate(cmd *commander.Command, args []string) error {
	if err := VerifyFlags(cmd, []string{"c"}); err != nil {
		return err
	}
	c, err := ChainConf(chainFile, initial)
	if err != nil {
		return err
	}
	return ValidateChain(os.Stdout, c)
}

func ValidateCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Validate,
		UsageLine: "validate -c <chain file>",
		Short:     "checks a chain file",
		Long: `
checks that every row of a chain file is a valid distribution and that every
reachable state has a row, reporting all problems at once

	$ ./mcbeam validate -c <chain file>

`,
		Flag: *flag.NewFlagSet("validate", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&chainFile, "c", "", "Chain File (yaml)")
	cmd.Flag.StringVar(&initial, "i", "", "Initial state (overrides the chain file)")
	return cmd
}
