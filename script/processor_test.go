package script_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/arenautils/memarena/arena"
	"github.com/arenautils/memarena/script"
)

func newTestProcessor(t *testing.T, capacity int) (*script.Processor, *arena.Arena, *bytes.Buffer) {
	t.Helper()

	a, err := arena.New(capacity)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(io.Discard))
	return script.NewProcessor(a, out, logger), a, out
}

func TestProcessTranscript(t *testing.T) {
	p, _, out := newTestProcessor(t, 32)

	input := strings.Join([]string{
		"INSERT 5 hello",
		"READ 1",
		"UPDATE 1 ab",
		"FIND 1",
		"DELETE 1",
		"DELETE 1",
		"DUMP",
	}, "\n")

	require.NoError(t, p.Process(strings.NewReader(input)))

	require.Equal(t, strings.Join([]string{
		"Allocated ID: 1",
		`Data at ID 1: "hello"`,
		"Updated ID: 1",
		`Data at ID 1: "abllo"`,
		"Deleted ID: 1",
		"Error: id 1: no allocated block exists with the provided id",
		"Memory Dump:",
		"FREE: Start: 0x0000, Size: 5",
		"FREE: Start: 0x0005, Size: 27",
		"",
	}, "\n"), out.String())
}

func TestMalformedLinesAreSkipped(t *testing.T) {
	p, a, out := newTestProcessor(t, 32)

	input := strings.Join([]string{
		"INSERT 5",
		"INSERT abc hello",
		"DELETE",
		"DELETE xyz",
		"FROB 1",
		"DUMP extra",
		"",
		"INSERT 3 abc",
	}, "\n")

	require.NoError(t, p.Process(strings.NewReader(input)))

	require.Equal(t, "Allocated ID: 1\n", out.String())
	require.Equal(t, 1, a.AllocationCount())
	require.NoError(t, a.Validate())
}

func TestEngineErrorsDoNotAbortTheRun(t *testing.T) {
	p, a, out := newTestProcessor(t, 4)

	input := strings.Join([]string{
		"INSERT 3 abc",
		"INSERT 3 abc",
		"INSERT 5 abc",
		"UPDATE 1 abcd",
		"READ 1",
	}, "\n")

	require.NoError(t, p.Process(strings.NewReader(input)))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "Allocated ID: 1", lines[0])
	require.Contains(t, lines[1], "no free block is large enough")
	require.Contains(t, lines[2], "payload is shorter than the requested size")
	require.Contains(t, lines[3], "does not fit in the allocated block")
	require.Equal(t, `Data at ID 1: "abc"`, lines[4])

	require.Equal(t, 1, a.AllocationCount())
	require.NoError(t, a.Validate())
}

func TestDumpShowsAllocatedBlocksInIDOrder(t *testing.T) {
	p, _, out := newTestProcessor(t, 16)

	input := strings.Join([]string{
		"INSERT 4 aaaa",
		"INSERT 4 bbbb",
		"DUMP",
	}, "\n")

	require.NoError(t, p.Process(strings.NewReader(input)))

	require.Equal(t, strings.Join([]string{
		"Allocated ID: 1",
		"Allocated ID: 2",
		"Memory Dump:",
		"FREE: Start: 0x0008, Size: 8",
		"ALLOCATED: ID: 1, Start: 0x0000, Size: 4",
		"ALLOCATED: ID: 2, Start: 0x0004, Size: 4",
		"",
	}, "\n"), out.String())
}

func TestProcessFile(t *testing.T) {
	p, _, out := newTestProcessor(t, 32)

	path := filepath.Join(t.TempDir(), "commands.cmmd")
	require.NoError(t, os.WriteFile(path, []byte("INSERT 4 data\nREAD 1\n"), 0o644))

	require.NoError(t, p.ProcessFile(path))

	require.Equal(t, strings.Join([]string{
		"Allocated ID: 1",
		`Data at ID 1: "data"`,
		"",
	}, "\n"), out.String())
}

func TestProcessFileMissing(t *testing.T) {
	p, _, _ := newTestProcessor(t, 32)

	err := p.ProcessFile(filepath.Join(t.TempDir(), "nope.cmmd"))
	require.Error(t, err)
}
