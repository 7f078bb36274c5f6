// Package main provides the treedump command line tool: it reads a
// tree from a markup (XML) or binary stream file, prints its contents,
// and converts between the two formats.
//
// Usage:
//
//	treedump dump <file>
//	treedump convert <in> <out>
//
// The input format is sniffed from the file contents; the convert
// output format is chosen by the output extension (.xml writes markup,
// anything else writes the binary stream).
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/datatree/pkg/markup"
	"github.com/go-drift/datatree/pkg/stream"
	"github.com/go-drift/datatree/pkg/tree"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printHelp()
		return nil
	}

	switch args[0] {
	case "dump":
		if len(args) != 2 {
			return fmt.Errorf("usage: treedump dump <file>")
		}
		return runDump(args[1])
	case "convert":
		if len(args) != 3 {
			return fmt.Errorf("usage: treedump convert <in> <out>")
		}
		return runConvert(args[1], args[2])
	default:
		printHelp()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printHelp() {
	fmt.Println(`treedump - inspect and convert tree files

Usage:
  treedump dump <file>          Print every node path and property
  treedump convert <in> <out>   Convert between markup and binary

Formats are sniffed on input. On output, a .xml extension selects
markup; any other extension selects the binary stream.`)
}

func runDump(path string) error {
	root, err := load(path)
	if err != nil {
		return err
	}
	root.Dump(os.Stdout)
	return nil
}

func runConvert(inPath, outPath string) error {
	root, err := load(inPath)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if strings.EqualFold(filepath.Ext(outPath), ".xml") {
		return markup.Export(root, out)
	}
	return stream.Write(root, out)
}

// load reads a tree file in either format, sniffing the stream magic.
func load(path string) (tree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tree.Node{}, err
	}
	if stream.Sniff(data) {
		return stream.Read(bytes.NewReader(data), nil)
	}
	return markup.Import(bytes.NewReader(data), nil)
}
