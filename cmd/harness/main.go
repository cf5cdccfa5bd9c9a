// harness is the in-container test driver. It reads one configuration
// document, builds and runs the user's solve function, and writes a result
// document. The exit code encodes which path failed: 0 run path completed,
// 1 compile failure, 2 run failure, 3 and above internal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"judgemicro/internal/harness"
)

func main() {
	reuse := flag.Bool("reuse", false, "Reuse the compiled test_runner when the schema fingerprint matches")
	workDir := flag.String("workdir", "", "Working directory (defaults to the config file's directory)")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: harness [-reuse] [-workdir dir] <config.json> <result.json>")
		os.Exit(harness.ExitInternal)
	}

	os.Exit(harness.Run(context.Background(), harness.Options{
		ConfigPath: flag.Arg(0),
		OutPath:    flag.Arg(1),
		WorkDir:    *workDir,
		Reuse:      *reuse,
	}))
}
