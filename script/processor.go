// Package script implements the line-oriented command front end for an
// arena.Arena. It parses whitespace-separated command lines and dispatches
// them to the engine, reporting each result on its own output line. The
// engine's semantics are untouched by this layer; any front end (CLI, RPC,
// test harness) could replace it.
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"

	"github.com/arenautils/memarena/arena"
)

// Processor reads command scripts and drives a single arena with them.
//
// The command grammar, one command per line:
//
//	INSERT <size> <data>
//	DELETE <id>
//	FIND <id>
//	READ <id>
//	UPDATE <id> <data>
//	DUMP
//
// Malformed lines (unknown verb, wrong argument count, non-numeric size or
// id) are logged and skipped; engine errors are reported on the output and
// processing continues with the next line.
type Processor struct {
	arena *arena.Arena
	out   io.Writer
	log   *slog.Logger
}

// NewProcessor creates a Processor bound to the provided arena. Results are
// written to out and diagnostics for skipped lines to log; passing nil uses
// os.Stdout and slog.Default respectively.
func NewProcessor(a *arena.Arena, out io.Writer, log *slog.Logger) *Processor {
	if out == nil {
		out = os.Stdout
	}
	if log == nil {
		log = slog.Default()
	}

	return &Processor{
		arena: a,
		out:   out,
		log:   log,
	}
}

// Process executes every command line read from r, in order. It returns an
// error only when reading from r fails; command failures never abort the run.
func (p *Processor) Process(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		p.processLine(lineNo, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return cerrors.Wrapf(err, "reading command script at line %d", lineNo)
	}
	return nil
}

// ProcessFile opens the script at path and runs Process on its contents.
func (p *Processor) ProcessFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return cerrors.Wrapf(err, "opening command script %s", path)
	}
	defer f.Close()

	return p.Process(f)
}

func (p *Processor) processLine(lineNo int, line string) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return
	}

	verb := tokens[0]
	args := tokens[1:]

	switch verb {
	case "INSERT":
		if len(args) != 2 {
			p.skip(lineNo, verb, "expected INSERT <size> <data>")
			return
		}
		size, err := strconv.Atoi(args[0])
		if err != nil {
			p.skip(lineNo, verb, "size is not numeric")
			return
		}
		p.insert(size, []byte(args[1]))
	case "DELETE":
		id, ok := p.parseID(lineNo, verb, args)
		if !ok {
			return
		}
		if err := p.arena.Release(id); err != nil {
			p.report(err)
			return
		}
		fmt.Fprintf(p.out, "Deleted ID: %d\n", id)
	case "FIND", "READ":
		id, ok := p.parseID(lineNo, verb, args)
		if !ok {
			return
		}
		data, err := p.arena.Read(id)
		if err != nil {
			p.report(err)
			return
		}
		fmt.Fprintf(p.out, "Data at ID %d: %q\n", id, data)
	case "UPDATE":
		if len(args) != 2 {
			p.skip(lineNo, verb, "expected UPDATE <id> <data>")
			return
		}
		raw, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			p.skip(lineNo, verb, "id is not numeric")
			return
		}
		id := arena.BlockID(raw)
		if err := p.arena.Update(id, []byte(args[1])); err != nil {
			p.report(err)
			return
		}
		fmt.Fprintf(p.out, "Updated ID: %d\n", id)
	case "DUMP":
		if len(args) != 0 {
			p.skip(lineNo, verb, "expected DUMP with no arguments")
			return
		}
		p.dump()
	default:
		p.skip(lineNo, verb, "unknown command")
	}
}

func (p *Processor) insert(size int, data []byte) {
	id, err := p.arena.Allocate(size, data)
	if err != nil {
		p.report(err)
		return
	}
	fmt.Fprintf(p.out, "Allocated ID: %d\n", id)
}

func (p *Processor) dump() {
	listing := p.arena.Snapshot()

	fmt.Fprintln(p.out, "Memory Dump:")
	for _, r := range listing.Free {
		fmt.Fprintf(p.out, "FREE: Start: %#06x, Size: %d\n", r.Offset, r.Size)
	}
	for _, b := range listing.Allocated {
		fmt.Fprintf(p.out, "ALLOCATED: ID: %d, Start: %#06x, Size: %d\n", b.ID, b.Offset, b.Size)
	}
}

func (p *Processor) parseID(lineNo int, verb string, args []string) (arena.BlockID, bool) {
	if len(args) != 1 {
		p.skip(lineNo, verb, fmt.Sprintf("expected %s <id>", verb))
		return 0, false
	}

	raw, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		p.skip(lineNo, verb, "id is not numeric")
		return 0, false
	}

	return arena.BlockID(raw), true
}

func (p *Processor) skip(lineNo int, verb string, reason string) {
	p.log.Warn("skipping malformed command line",
		"line", lineNo,
		"verb", verb,
		"reason", reason)
}

func (p *Processor) report(err error) {
	fmt.Fprintf(p.out, "Error: %v\n", err)
}
