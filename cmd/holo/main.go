package main

/*------------------------------------------------------------------
 *
 * Purpose:	Command-line front end for the holographic codec.
 *
 *		holo <path> [chunk_kb]          encode a file / decode a
 *		                                .holo chunk directory
 *		holo --stack <chunk_kb> <frame>...
 *		                                average frames, then encode
 *		                                the stacked image
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/ciaoidea/holocodec/holo"
)

func main() {
	os.Exit(run())
}

func run() int {
	var stack = pflag.Bool("stack", false, "Average the given frames pixel-wise, write <first>_stack.png, then encode it.")
	var verbose = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s <path> [chunk_kb]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --stack <chunk_kb> <frame>...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A file encodes into <file>.holo/; a directory ending in .holo decodes.\n\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()

		return 0
	}

	if *verbose {
		holo.SetLogLevel(log.DebugLevel)
	}

	var args = pflag.Args()

	if *stack {
		return runStack(args)
	}

	if len(args) < 1 || len(args) > 2 {
		pflag.Usage()

		return 1
	}

	var targetKB = 0
	if len(args) == 2 {
		var kb, err = strconv.Atoi(args[1])
		if err != nil || kb <= 0 {
			fmt.Fprintf(os.Stderr, "chunk_kb must be a positive integer, got %q\n", args[1])

			return 1
		}

		targetKB = kb
	}

	var path = args[0]

	var info, statErr = os.Stat(path)
	if statErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", statErr)

		return 1
	}

	if info.IsDir() {
		if !strings.HasSuffix(strings.TrimRight(path, "/"), ".holo") {
			fmt.Fprintf(os.Stderr, "directory %s does not end in .holo\n", path)

			return 1
		}

		var out, err = holo.DecodePath(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)

			return 1
		}

		fmt.Println(out)

		return 0
	}

	var outDir, _, encErr = holo.EncodePath(path, holo.EncodeOptions{TargetKB: targetKB})
	if encErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", encErr)

		return 1
	}

	fmt.Println(outDir)

	return 0
}

func runStack(args []string) int {
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "--stack needs <chunk_kb> and at least one frame\n")

		return 1
	}

	var kb, kbErr = strconv.Atoi(args[0])
	if kbErr != nil || kb <= 0 {
		fmt.Fprintf(os.Stderr, "chunk_kb must be a positive integer, got %q\n", args[0])

		return 1
	}

	var outPath, stackErr = stackFrames(args[1:])
	if stackErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", stackErr)

		return 1
	}

	var outDir, _, encErr = holo.EncodePath(outPath, holo.EncodeOptions{TargetKB: kb})
	if encErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", encErr)

		return 1
	}

	fmt.Println(outDir)

	return 0
}
