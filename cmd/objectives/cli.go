package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/OCAP2/objectives/internal/bridge"
	"github.com/OCAP2/objectives/internal/storage"
)

// main only runs when the module is built as an executable. It offers a few
// maintenance commands over the configured save backend.
func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Println("usage: objectives show [map] | check <definitions.yaml> [map]")
		return
	}

	var err error
	switch strings.ToLower(args[0]) {
	case "show":
		mapName := ""
		if len(args) > 1 {
			mapName = args[1]
		}
		err = showSession(mapName)
	case "check":
		if len(args) < 2 {
			fmt.Println("No definitions file provided.")
			return
		}
		mapName := ""
		if len(args) > 2 {
			mapName = args[2]
		}
		err = checkDefinitions(args[1], mapName)
	default:
		err = fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil {
		Logger.Error("Command failed", "command", args[0], "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// showSession prints the saved session for mapName as JSON.
func showSession(mapName string) error {
	if storageBackend == nil {
		return fmt.Errorf("no storage backend available")
	}
	defer storageBackend.Close()

	s, err := storageBackend.Load(mapName)
	if errors.Is(err, storage.ErrNoSession) {
		fmt.Println("No saved session.")
		return nil
	}
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// checkDefinitions reports every definition in path that applies to mapName
// and whether it is valid.
func checkDefinitions(path, mapName string) error {
	f, err := bridge.ReadDefinitions(path)
	if err != nil {
		return err
	}
	bad := 0
	for _, spec := range f.For(mapName) {
		if _, _, _, err := spec.Definition(); err != nil {
			fmt.Printf("INVALID %q: %v\n", spec.Description, err)
			bad++
			continue
		}
		fmt.Printf("ok      %q\n", spec.Description)
	}
	if bad > 0 {
		return fmt.Errorf("%d invalid definitions", bad)
	}
	return nil
}
