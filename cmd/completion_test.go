package cmd

import (
	"flag"
	"io"
	"testing"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2/predict"
)

func TestCompletion(t *testing.T) {
	top := flag.NewFlagSet("pts", flag.ContinueOnError)
	top.SetOutput(io.Discard)
	top.String("config", "", "configuration file")
	commander := subcommands.NewCommander(top, "pts")
	Register(commander)

	root := Completion(commander)
	for _, name := range []string{"shell", "serve", "prices", "verify"} {
		if _, ok := root.Sub[name]; !ok {
			t.Errorf("completion has no %q subcommand", name)
		}
	}
	if _, ok := root.Flags["config"]; !ok {
		t.Error("completion has no -config flag")
	}

	shell := root.Sub["shell"]
	for _, name := range []string{"plain", "currency", "prices"} {
		if _, ok := shell.Flags[name]; !ok {
			t.Errorf("shell completion has no -%s flag", name)
		}
	}
	if _, ok := shell.Flags["currency"].(predict.Set); !ok {
		t.Errorf("-currency predictor is %T, want a set of codes", shell.Flags["currency"])
	}
	if root.Sub["verify"].Args == nil {
		t.Error("verify completion does not predict files")
	}
}
