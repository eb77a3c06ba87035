// cmd/geoaid/main.go
package main

import (
	"log"
	"os"

	"geoaid/cmd/geoaid/commands"
)

const VERSION = "0.1.0"

var commandAliases = map[string]string{
	"c": "compile",
	"v": "version",
}

func main() {
	logger := log.New(os.Stderr, "geoaid: ", 0)

	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		logger.Printf("geoaid %s", VERSION)
	case "compile":
		if err := commands.CompileCommand(logger, args[1:]); err != nil {
			logger.Fatal(err)
		}
	default:
		logger.Printf("unrecognized command %q", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	log.Print(`geoaid - Geo-Aid compilation core demo CLI

Usage:
  geoaid compile <fixture.json>   compile a JSON unrolled-program fixture
  geoaid version                  print the version
  geoaid help                     show this message
`)
}
