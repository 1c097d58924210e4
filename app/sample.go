package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"mcbeam/alg/dist"
	"mcbeam/util/conf"
)

// SampleWalk takes steps random transitions from the chain's initial state
// and writes the visited states.
func SampleWalk(w io.Writer, c *conf.Chain, steps int, r dist.Rand) error {
	chain, _, err := c.Build(r)
	if err != nil {
		return err
	}
	walk := make([]string, 1, steps+1)
	walk[0] = chain.Current()
	for i := 0; i < steps; i++ {
		s, err := chain.Forward()
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		walk = append(walk, s)
	}
	fmt.Fprintln(w, strings.Join(walk, " -> "))
	return nil
}

func Sample(cmd *commander.Command, args []string) error {
	log.Println("Configuration")
	log.Printf("Steps:\t%d", Steps)
	log.Printf("Seed:\t%d", Seed)
	c, err := ChainConf(chainFile, initial)
	if err != nil {
		return err
	}
	return SampleWalk(os.Stdout, c, Steps, NewRand(Seed))
}

func SampleCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Sample,
		UsageLine: "sample [-c <chain file>] [-n steps] [-seed n]",
		Short:     "samples a random walk from a markov chain",
		Long: `
samples a random walk by repeatedly moving to a successor drawn from the
current state's distribution

	$ ./mcbeam sample -c <chain file> -n 10 -seed 1

`,
		Flag: *flag.NewFlagSet("sample", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&chainFile, "c", "", "Chain File (yaml)")
	cmd.Flag.StringVar(&initial, "i", "", "Initial state (overrides the chain file)")
	cmd.Flag.IntVar(&Steps, "n", 10, "Number of steps")
	cmd.Flag.Int64Var(&Seed, "seed", 0, "Random seed (0 = clock)")
	return cmd
}
