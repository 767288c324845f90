package main

import (
	"fmt"
	"log"
	"os"

	"github.com/consensys/gnark/frontend"

	"github.com/nullset-labs/imt/circuits/insertion"
	"github.com/nullset-labs/imt/circuits/membership"
	"github.com/nullset-labs/imt/pkg/setup"
)

// circuitRegistry maps circuit names to their constructors. Both circuits
// use Groth16; there is no PLONK/universal-SRS path in this module.
var circuitRegistry = map[string]func() frontend.Circuit{
	"membership": func() frontend.Circuit { return &membership.Circuit{} },
	"insertion":  func() frontend.Circuit { return &insertion.Circuit{} },
}

func main() {
	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}

	circuitName := os.Args[1]
	newCircuit, ok := circuitRegistry[circuitName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown circuit: %s\n", circuitName)
		fmt.Fprint(os.Stderr, "Available circuits: ")
		for name := range circuitRegistry {
			fmt.Fprintf(os.Stderr, "%s ", name)
		}
		fmt.Fprintln(os.Stderr)
		os.Exit(1)
	}

	switch os.Args[2] {
	case "dev":
		if err := setup.DevSetup(newCircuit(), ".", circuitName); err != nil {
			log.Fatal(err)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage:
  go run ./cmd/compile <circuit> dev    Dev mode (single-party/unsafe setup, NOT for production)

Available circuits: membership, insertion`)
}
