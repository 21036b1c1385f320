// Package main is the command-line client for the card collection.
//
// Usage:
//
//	collector [-config path] <command> [flags]
//
// Commands:
//
//	import       add the cards of a decklist to the collection
//	deck-import  create a deck from a decklist
//	export       write the collection as json, csv or txt
//	stats        print collection totals
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ramonehamilton/mtg-collector/internal/app"
	"github.com/ramonehamilton/mtg-collector/internal/config"
	"github.com/ramonehamilton/mtg-collector/internal/logging"
	"github.com/ramonehamilton/mtg-collector/internal/version"
)

const programName = "collector"

var (
	configPath  = flag.String("config", "", "Config file path (default: ~/.mtg-collector/config.toml)")
	debugMode   = flag.Bool("d", false, "Enable debug logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String(programName))
		return
	}
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if *debugMode {
		level = zerolog.DebugLevel
	}
	log := logging.New(logging.Options{
		ServiceName: programName,
		Level:       level,
		Format:      "console",
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{Logger: log})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := &commands{service: a.Service, stdin: os.Stdin, stdout: os.Stdout}
	err = cli.run(ctx, flag.Arg(0), flag.Args()[1:])
	if closeErr := a.Close(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("error closing store")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFrom(*configPath)
	}
	return config.Load()
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-config path] [-d] <command> [flags]\n\n", programName)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  import       Add the cards of a decklist to the collection")
	fmt.Fprintln(os.Stderr, "  deck-import  Create a deck from a decklist")
	fmt.Fprintln(os.Stderr, "  export       Write the collection as json, csv or txt")
	fmt.Fprintln(os.Stderr, "  stats        Print collection totals")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Global flags:")
	flag.PrintDefaults()
}
