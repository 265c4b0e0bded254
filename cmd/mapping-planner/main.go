// Package main provides the CLI entrypoint for mapping-planner.
//
// mapping-planner works with mapping profile YAML files:
//   - check: parse and validate a profile, report diagnostics
//   - schema: print the JSON Schema for the profile format
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/fsnotify/fsnotify"

	"mapping-planner/internal/diagnostic"
	"mapping-planner/internal/profile"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "check":
		os.Exit(runCheck(os.Args[2:]))
	case "schema":
		os.Exit(runSchema())
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mapping-planner check [-dump] [-watch] <profile.yaml>")
	fmt.Fprintln(os.Stderr, "       mapping-planner schema")
}

func runSchema() int {
	data, err := profile.JSONSchema()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	fmt.Println(string(data))

	return 0
}

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	dump := fs.Bool("dump", false, "dump the parsed profile")
	watch := fs.Bool("watch", false, "re-validate when the profile changes")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		usage()
		return 2
	}

	path := fs.Arg(0)

	code := checkOnce(path, *dump)
	if !*watch {
		return code
	}

	if err := watchLoop(path, *dump); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	return 0
}

func checkOnce(path string, dump bool) int {
	f, err := profile.LoadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	if dump {
		spew.Dump(f)
	}

	diags := profile.Validate(f)
	printDiagnostics(diags)

	if diags.HasErrors() {
		return 1
	}

	fmt.Printf("%s: ok (%d mappings)\n", path, len(f.Mappings))

	return 0
}

func printDiagnostics(diags diagnostic.Diagnostics) {
	for _, d := range diags.All() {
		out := os.Stdout
		if d.Severity == diagnostic.SeverityError {
			out = os.Stderr
		}

		fmt.Fprintf(out, "%s: %s\n", d.Severity, d)
	}
}

func watchLoop(path string, dump bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which would drop
	// a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	target := filepath.Clean(path)
	fmt.Println("watching", target)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != target {
				continue
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			checkOnce(path, dump)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			fmt.Fprintln(os.Stderr, "watch error:", err)
		}
	}
}
