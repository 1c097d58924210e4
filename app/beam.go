package app

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"mcbeam/util/conf"
)

func BeamConfigOut() {
	log.Println("Configuration")
	log.Printf("Beam Size:\t\t%d", BeamSize)
	log.Printf("Sweep Widths:\t\t%v", Sweep)
	log.Printf("Generations:\t\t%d", Generations)
	log.Printf("Max Path Length:\t%d", MaxPath)
	log.Println("Data")
	if chainFile == "" {
		log.Printf("Chain:\t\t\t<demo>")
	} else {
		log.Printf("Chain:\t\t\t%s", chainFile)
	}
	if initial != "" {
		log.Printf("Initial State:\t\t%s", initial)
	}
}

// BeamReport runs one beam per width over c and writes every final path.
func BeamReport(w io.Writer, c *conf.Chain, widths []int, generations, maxPath int) error {
	for _, width := range widths {
		chain, _, err := c.Build(nil)
		if err != nil {
			return err
		}
		b, err := RunBeam(chain, width, generations, maxPath)
		if err != nil {
			return fmt.Errorf("width %d: %w", width, err)
		}
		fmt.Fprintf(w, "\n**** Testing beam: width: %d\n", width)
		if err := WritePaths(w, b); err != nil {
			return err
		}
	}
	return nil
}

func BeamSearch(cmd *commander.Command, args []string) error {
	BeamConfigOut()
	c, err := ChainConf(chainFile, initial)
	if err != nil {
		return err
	}
	widths := []int{BeamSize}
	if Sweep {
		widths = make([]int, 0, BeamSize)
		for i := 1; i <= BeamSize; i++ {
			widths = append(widths, i)
		}
	}
	return BeamReport(os.Stdout, c, widths, Generations, MaxPath)
}

func BeamCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       BeamSearch,
		UsageLine: "beam [-c <chain file>] [options]",
		Short:     "runs beam search over a markov chain",
		Long: `
runs a fixed number of beam search generations over a markov chain and
prints every path left in the final beam

	$ ./mcbeam beam -c <chain file> -b 3 -g 3 [-sweep]

without -c the built-in six state demo chain is used
`,
		Flag: *flag.NewFlagSet("beam", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&chainFile, "c", "", "Chain File (yaml)")
	cmd.Flag.StringVar(&initial, "i", "", "Initial state (overrides the chain file)")
	cmd.Flag.IntVar(&BeamSize, "b", 3, "Beam Size")
	cmd.Flag.BoolVar(&Sweep, "sweep", false, "Run every beam size from 1 to -b")
	cmd.Flag.IntVar(&Generations, "g", 3, "Number of generations")
	cmd.Flag.IntVar(&MaxPath, "maxpath", 0, "Max path length reported (0 = default)")
	return cmd
}
