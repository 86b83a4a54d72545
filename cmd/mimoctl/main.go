package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dudk/mimo"
	"github.com/dudk/mimo/internal/demo"
)

type command interface {
	Name() string
	Help() string
	Run() error
	Register(*flag.FlagSet)
}

type config struct {
	args []string
}

func (c *config) run() int {
	cmdName, args := parseArgs(c.args)
	if cmdName == "" {
		printUsage()
		return errorExitCode
	}

	for _, cmd := range commands {
		if cmd.Name() == cmdName {
			flags := flag.NewFlagSet(cmdName, flag.ExitOnError)
			cmd.Register(flags)
			if err := flags.Parse(args); err != nil {
				flags.PrintDefaults()
				return errorExitCode
			}
			if err := cmd.Run(); err != nil {
				fmt.Printf("Command failed: %v\n", err)
				return errorExitCode
			}
			return successExitCode
		}
	}

	printUsage()
	return errorExitCode
}

var (
	successExitCode = 0
	errorExitCode   = 1
	commands        []command
)

func main() {
	commands = []command{&toneCommand{}}
	c := config{args: os.Args}
	os.Exit(c.run())
}

func parseArgs(args []string) (string, []string) {
	if len(args) < 2 {
		return "", nil
	}
	return args[1], args[2:]
}

func printUsage() {
	fmt.Println("mimoctl is a local smoke-test host for the mimo processing core")
	fmt.Println()
	fmt.Println("Usage: mimoctl <command>")
	fmt.Println()
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("\t%s\t%s\n", cmd.Name(), cmd.Help())
	}
}

// toneCommand runs a synthetic tone through a Processor for a fixed
// number of cycles, via internal/demo — not a real device binding.
type toneCommand struct {
	freq       float64
	blockSize  int
	sampleRate int
	cycles     int
}

func (*toneCommand) Name() string { return "tone" }
func (*toneCommand) Help() string { return "run a synthetic tone through the processing core" }

func (t *toneCommand) Register(f *flag.FlagSet) {
	f.Float64Var(&t.freq, "freq", 440, "tone frequency in Hz")
	f.IntVar(&t.blockSize, "block-size", 256, "samples per cycle")
	f.IntVar(&t.sampleRate, "sample-rate", 48000, "samples per second")
	f.IntVar(&t.cycles, "cycles", 100, "number of cycles to run")
}

func (t *toneCommand) Run() error {
	h, err := demo.New(t.freq, mimo.BlockSize(t.blockSize), mimo.SampleRate(t.sampleRate))
	if err != nil {
		return err
	}
	if err := h.Run(t.cycles); err != nil {
		return err
	}
	fmt.Printf("recorded %d samples\n", len(h.Recorder.History))
	return nil
}
