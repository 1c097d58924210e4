package app

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gonuts/commander"

	"mcbeam/alg/dist"
	"mcbeam/alg/markov"
	"mcbeam/alg/search"
	"mcbeam/util/conf"
)

var (
	// processing options
	BeamSize    int
	Generations int
	MaxPath     int
	Sweep       bool
	Steps       int
	Seed        int64

	// chain selection
	chainFile string
	initial   string

	// file names
	outChart string
)

type MarkovBeam = search.Beam[string, *dist.Distribution[string]]

func VerifyExists(filename string) bool {
	_, err := os.Stat(filename)
	if err != nil {
		log.Println("Error accessing file", filename)
		log.Println(err)
		return false
	}
	return true
}

func VerifyFlags(cmd *commander.Command, required []string) error {
	for _, flag := range required {
		f := cmd.Flag.Lookup(flag)
		if f == nil || f.Value.String() == "" {
			log.Printf("Required flag %s not set", flag)
			cmd.Usage()
			return fmt.Errorf("required flag -%s not set", flag)
		}
	}
	return nil
}

// ChainConf reads the chain named by filename, or the built-in demo chain
// when filename is empty, and applies an initial state override.
func ChainConf(filename, initialState string) (*conf.Chain, error) {
	var (
		c   *conf.Chain
		err error
	)
	if filename == "" {
		c = conf.Demo()
	} else {
		if !VerifyExists(filename) {
			return nil, fmt.Errorf("chain file %s not accessible", filename)
		}
		if c, err = conf.ReadFile(filename); err != nil {
			return nil, err
		}
	}
	if initialState != "" {
		c.Initial = initialState
	}
	return c, nil
}

// NewRand seeds from the clock when seed is 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// RunBeam builds a beam over chain and advances it the given number of
// generations.
func RunBeam(chain *markov.Chain[string], width, generations, maxPath int) (*MarkovBeam, error) {
	b, err := markov.NewBeam(chain, width)
	if err != nil {
		return nil, err
	}
	b.MaxPathLength = maxPath
	b.Log = Verbose
	for i := 0; i < generations; i++ {
		if err := b.Advance(); err != nil {
			return nil, fmt.Errorf("generation %d: %w", i+1, err)
		}
	}
	return b, nil
}

func WritePaths(w io.Writer, b *MarkovBeam) error {
	paths, err := b.Paths()
	if err != nil {
		return err
	}
	for i, p := range paths {
		fmt.Fprintf(w, "---- beam %d ----\n", i)
		fmt.Fprintln(w, p.String())
	}
	return nil
}
