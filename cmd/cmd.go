// Package cmd implements the pts command line tool: an interactive paper
// trading shell, the HTTP API server and a few utilities.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/config"
	"github.com/etnz/papertrade/kafka"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the configuration file (yaml, json or toml). Defaults to ./papertrade.yaml if it exists.")

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&shellCmd{}, "trading")
	c.Register(&serveCmd{}, "trading")

	c.Register(&pricesCmd{}, "tools")
	c.Register(&verifyCmd{}, "tools")
}

// loadConfig loads the configuration and sets up logging.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ConfigureLogger(os.Stderr); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newPublisher returns the kafka publisher of the configuration, nil if
// events are disabled. The returned function releases it.
func newPublisher(cfg config.Config) (papertrade.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, func() {}
	}
	p := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	logrus.WithFields(logrus.Fields{"brokers": cfg.KafkaBrokers, "topic": cfg.KafkaTopic}).Info("publishing events")
	return p, func() {
		if err := p.Close(); err != nil {
			logrus.WithError(err).Warn("cannot close event publisher")
		}
	}
}

// printMarkdown renders md for the terminal, or prints it as is when plain.
func printMarkdown(w io.Writer, md string, plain bool) {
	if plain {
		fmt.Fprint(w, md)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Fprint(w, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(w, md)
		return
	}
	fmt.Fprint(w, out)
}
