package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	observe "github.com/podhmo/go-observe"
	"gopkg.in/yaml.v3"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(os.Stdout, configPath); err != nil {
		log.Fatalf("!! %+v", err)
	}
}

// run prints the effective configuration and the converters and behaviors
// an engine built from it resolves.
func run(w io.Writer, configPath string) error {
	cfg := observe.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = observe.LoadConfigFile(configPath)
		if err != nil {
			return err
		}
	}
	e := observe.New(cfg)
	converters, behaviors := e.Registry.Names()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "converters: %s\n", strings.Join(converters, ", "))
	fmt.Fprintf(w, "behaviors: %s\n", strings.Join(behaviors, ", "))
	return nil
}
