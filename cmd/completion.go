package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion tree of the commands registered
// in commander, with their flags.
//
// Install it with `COMP_INSTALL=1 pts`.
func Completion(commander *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors(commander.VisitAll),
	}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(f.VisitAll)}
	})
	if verify, ok := root.Sub["verify"]; ok {
		verify.Args = predict.Files("*.jsonl")
	}
	return root
}

// flagPredictors predicts files for path-like flags and nothing for the others.
func flagPredictors(visitAll func(func(*flag.Flag))) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	visitAll(func(fl *flag.Flag) {
		switch fl.Name {
		case "config":
			flags[fl.Name] = predict.Files("*")
		case "prices":
			flags[fl.Name] = predict.Files("*.json")
		case "currency":
			flags[fl.Name] = predict.Set{"USD", "EUR", "GBP", "JPY", "CHF"}
		default:
			flags[fl.Name] = predict.Nothing
		}
	})
	return flags
}
