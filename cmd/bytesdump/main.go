// Command bytesdump is an interactive inspector for mapped files: an
// REPL offering peek/watch/chunks commands against a live
// memory-mapped file, the direct descendant of cmd/sloty's use of
// liner for an interactive prompt.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/pflag"

	"github.com/calvinalkan/gobytes/pkg/fs"
	"github.com/calvinalkan/gobytes/pkg/reentrantlock"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "bytesdump: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("bytesdump", pflag.ContinueOnError)
	chunkSize := flags.Int64("chunk-size", 1<<20, "chunk size in bytes for the mapped file")

	if err := flags.Parse(args); err != nil {
		return err
	}

	rest := flags.Args()
	if len(rest) != 1 {
		return fmt.Errorf("usage: bytesdump [--chunk-size N] <path>")
	}

	path := rest[0]

	locks := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))

	insp, err := openInspector(fs.NewReal(), locks, path, *chunkSize)
	if err != nil {
		return err
	}
	defer func() { _ = insp.Close() }()

	return repl(insp, os.Stdout)
}

func repl(insp *inspector, out io.Writer) error {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()

	line.SetCtrlCAborts(true)

	fmt.Fprintln(out, "bytesdump: peek <offset> <length>, watch <offset>, chunks, quit")

	for {
		input, err := line.Prompt("bytesdump> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return nil
			}

			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		if shouldQuit := handleCommand(insp, out, input); shouldQuit {
			return nil
		}
	}
}

func handleCommand(insp *inspector, out io.Writer, input string) (quit bool) {
	fields := strings.Fields(input)
	cmd := fields[0]
	argv := fields[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "peek":
		runPeek(insp, out, argv)
	case "watch":
		runWatch(insp, out, argv)
	case "chunks":
		runChunks(insp, out)
	default:
		fmt.Fprintf(out, "unknown command %q (try peek, watch, chunks, quit)\n", cmd)
	}

	return false
}

func runPeek(insp *inspector, out io.Writer, argv []string) {
	if len(argv) != 2 {
		fmt.Fprintln(out, "usage: peek <offset> <length>")
		return
	}

	offset, err := strconv.ParseInt(argv[0], 0, 64)
	if err != nil {
		fmt.Fprintf(out, "invalid offset: %v\n", err)
		return
	}

	length, err := strconv.ParseInt(argv[1], 0, 64)
	if err != nil {
		fmt.Fprintf(out, "invalid length: %v\n", err)
		return
	}

	dump, err := insp.Peek(offset, length)
	if err != nil {
		fmt.Fprintf(out, "peek failed: %v\n", err)
		return
	}

	fmt.Fprint(out, dump)
}

func runWatch(insp *inspector, out io.Writer, argv []string) {
	if len(argv) != 1 {
		fmt.Fprintln(out, "usage: watch <offset>")
		return
	}

	offset, err := strconv.ParseInt(argv[0], 0, 64)
	if err != nil {
		fmt.Fprintf(out, "invalid offset: %v\n", err)
		return
	}

	v, err := insp.WatchUint64(offset)
	if err != nil {
		fmt.Fprintf(out, "watch failed: %v\n", err)
		return
	}

	fmt.Fprintf(out, "offset %#x: volatile uint64 = %d (%#016x)\n", offset, v, v)
}

func runChunks(insp *inspector, out io.Writer) {
	fmt.Fprintf(out, "file length: %d bytes, chunk size: %d bytes, chunks: %d\n",
		insp.FileLength(), insp.ChunkSize(), insp.ChunkCount())
}
