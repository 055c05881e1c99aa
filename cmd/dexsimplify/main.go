// cmd/dexsimplify/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"dexsimplify/internal/config"
	"dexsimplify/internal/dex"
	"dexsimplify/internal/enginerr"
	"dexsimplify/internal/launcher"
	"dexsimplify/internal/report"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(-1)
	}

	if args[0] == "--help" || args[0] == "-h" {
		showUsage()
		return
	}
	if args[0] == "--version" {
		fmt.Println("dexsimplify " + version)
		return
	}

	opts, err := config.Parse(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		showUsage()
		os.Exit(-1)
	}
	if opts.Help {
		showUsage()
		return
	}

	manager, err := newClassManager(opts.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(-1)
	}

	l := &launcher.Launcher{Manager: manager, Opts: opts, Workers: 1}
	summary, err := l.Run()
	if err != nil {
		if enginerr.IsKind(err, enginerr.ConfigError) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			showUsage()
			os.Exit(-1)
		}
		log.Fatalf("Error: %v", err)
	}

	report.NewWriter(os.Stdout, opts.Quiet, opts.Verbose).Print(summary)
}

// newClassManager is the seam a real build wires to a DEX/APK parsing
// library — actual byte-level parsing and a real Dalvik runtime are out
// of this repository's scope. Left as an explicit, clearly-failing seam
// rather than a fabricated parser.
var newClassManager = func(path string) (dex.ClassManager, error) {
	return nil, enginerr.WrapIO(fmt.Errorf("no DEX/APK parsing backend is wired into this build"), "loading "+path)
}

func showUsage() {
	fmt.Println(`dexsimplify - DEX/APK bytecode deobfuscation engine

Usage:
  dexsimplify <input> [options]

Positional:
  <input>                         path to an APK or DEX file

Options:
  --out <path>                    output path (defaults to overwriting <input>)
  --include-filter <regex>        only optimize methods matching this signature regex
  --exclude-filter <regex>        never optimize methods matching this signature regex
  --include-support-library       disable the default skip of Landroid/support/(annotation|vNN)/...
  --output-api-level <int>        API level to stamp on the output DEX
  --max-address-visits <int>      per-address visit bound before a method is skipped (default 10000)
  --max-call-depth <int>          recursive invoke depth bound (default 50)
  --max-method-visits <int>       per-class method visit bound (default 10000)
  --max-execution-time <seconds>  wall-clock bound per analyzed class (default 10)
  --max-optimization-passes <int> re-execution bound for the optimizer pipeline (default 10)
  --quiet                         print only a one-line result
  --verbose[=1|2|3]               print progressively more of the run summary
  --help                          show this message

Exit code 0 on success, -1 on argument parse error.`)
}
