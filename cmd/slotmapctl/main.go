// slotmapctl is an interactive REPL for exercising a slotmap.DenseSlotMap or
// slotmap.SparseSlotMap with string values, useful for manual testing and
// benchmarking outside of a Go program.
//
// Usage:
//
//	slotmapctl [--engine dense|sparse] [--page-size N] [--free-limit N] [--options FILE]
//
// Commands (in REPL):
//
//	add <value>               Insert a value, printing its key
//	get <key>                 Retrieve a value by key
//	replace <key> <value>     Replace a value, printing the refreshed key
//	del <key>                 Remove a value by key
//	contains <key>            Check whether a key is live
//	scan                      List all live (key, value) pairs
//	len                       Count live entries
//	info                      Show engine configuration and counters
//	bulk <count>              Insert N random values
//	bench <count>             Benchmark add+get performance
//	reset                     Empty the engine
//	help                      Show this help
//	exit / quit / q           Exit
package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/nearcore/slotmap/pkg/slotmap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		engineName  string
		pageSize    uint32
		freeLimit   uint32
		optionsPath string
	)

	flag.StringVar(&engineName, "engine", "dense", "engine to exercise: dense or sparse")
	flag.Uint32Var(&pageSize, "page-size", 0, "slots per page (0 = default, must be a power of two)")
	flag.Uint32Var(&freeLimit, "free-limit", 0, "free-key recycling threshold (0 = default when --page-size is also 0)")
	flag.StringVar(&optionsPath, "options", "", "load Options from a JSONC file instead of flags")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: slotmapctl [flags]\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nOn this platform the kernel page size is %d bytes"+
			" (unrelated to --page-size, shown for reference).\n", unix.Getpagesize())
	}

	flag.Parse()

	opts := slotmap.Options{PageSize: pageSize, FreeIndicesLimit: freeLimit}

	if optionsPath != "" {
		loaded, err := slotmap.LoadOptions(optionsPath)
		if err != nil {
			return fmt.Errorf("loading options: %w", err)
		}

		opts = loaded
	}

	engine, err := newEngine(engineName, opts)
	if err != nil {
		return err
	}

	repl := &REPL{engine: engine, engineName: engineName}

	return repl.Run()
}

// engine is the subset of DenseSlotMap/SparseSlotMap's contract the REPL
// drives; both engines satisfy it for V = string.
type engine interface {
	Add(value string) (slotmap.Key, error)
	Get(key slotmap.Key) (string, error)
	Replace(key slotmap.Key, value string) (slotmap.Key, error)
	Remove(key slotmap.Key) (string, error)
	Contains(key slotmap.Key) bool
	Reset()
	PageSize() uint32
	PageCount() int
	SlotCount() int
	TombstoneCount() int
	FreeIndicesLimit() uint32
	All() slotmap.Seq[string]
}

func newEngine(name string, opts slotmap.Options) (engine, error) {
	switch strings.ToLower(name) {
	case "dense":
		return slotmap.NewDenseSlotMap[string](opts)
	case "sparse":
		return slotmap.NewSparseSlotMap[string](opts)
	default:
		return nil, fmt.Errorf("unknown engine %q (want dense or sparse)", name)
	}
}

// REPL is the interactive command loop.
type REPL struct {
	engine     engine
	engineName string
	liner      *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".slotmapctl_history")
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("slotmapctl - %s engine (page_size=%d, free_limit=%d)\n",
		r.engineName, r.engine.PageSize(), r.engine.FreeIndicesLimit())
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("slotmapctl> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()

			return nil

		case "help", "?":
			r.printHelp()

		case "add":
			r.cmdAdd(args)

		case "get":
			r.cmdGet(args)

		case "replace":
			r.cmdReplace(args)

		case "del", "delete":
			r.cmdDelete(args)

		case "contains":
			r.cmdContains(args)

		case "scan", "ls", "list":
			r.cmdScan()

		case "len", "count":
			r.cmdLen()

		case "info":
			r.cmdInfo()

		case "bulk":
			r.cmdBulk(args)

		case "bench":
			r.cmdBench(args)

		case "reset":
			r.engine.Reset()
			fmt.Println("reset")

		case "clear", "cls":
			fmt.Print("\033[H\033[2J")

		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{
		"add", "get", "replace", "del", "delete", "contains",
		"scan", "ls", "list", "len", "count", "info",
		"bulk", "bench", "reset", "clear", "cls",
		"help", "exit", "quit", "q",
	}

	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  add <value>               Insert a value, printing its key")
	fmt.Println("  get <key>                 Retrieve a value by key")
	fmt.Println("  replace <key> <value>     Replace a value, printing the refreshed key")
	fmt.Println("  del <key>                 Remove a value by key")
	fmt.Println("  contains <key>            Check whether a key is live")
	fmt.Println("  scan                      List all live (key, value) pairs")
	fmt.Println("  len                       Count live entries")
	fmt.Println("  info                      Show engine configuration and counters")
	fmt.Println("  bulk <count>              Insert N random values")
	fmt.Println("  bench <count>             Benchmark add+get performance")
	fmt.Println("  reset                     Empty the engine")
	fmt.Println("  help                      Show this help")
	fmt.Println("  exit / quit / q           Exit")
	fmt.Println()
	fmt.Println("Keys print as index:version, e.g. 3:1, and parse back the same way.")
}

func parseKey(s string) (slotmap.Key, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return slotmap.InvalidKey, fmt.Errorf("key must be index:version, got %q", s)
	}

	index, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return slotmap.InvalidKey, fmt.Errorf("invalid index: %w", err)
	}

	version, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return slotmap.InvalidKey, fmt.Errorf("invalid version: %w", err)
	}

	return slotmap.NewKey(uint32(index), slotmap.Version(version)), nil
}

func formatKey(k slotmap.Key) string {
	return fmt.Sprintf("%d:%d", k.Index(), k.Version())
}

func (r *REPL) cmdAdd(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: add <value>")
		return
	}

	key, err := r.engine.Add(strings.Join(args, " "))
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Println(formatKey(key))
}

func (r *REPL) cmdGet(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: get <key>")
		return
	}

	key, err := parseKey(args[0])
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	value, err := r.engine.Get(key)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Println(value)
}

func (r *REPL) cmdReplace(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: replace <key> <value>")
		return
	}

	key, err := parseKey(args[0])
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	newKey, err := r.engine.Replace(key, strings.Join(args[1:], " "))
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Println(formatKey(newKey))
}

func (r *REPL) cmdDelete(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: del <key>")
		return
	}

	key, err := parseKey(args[0])
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	value, err := r.engine.Remove(key)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("removed: %s\n", value)
}

func (r *REPL) cmdContains(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: contains <key>")
		return
	}

	key, err := parseKey(args[0])
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Println(r.engine.Contains(key))
}

func (r *REPL) cmdScan() {
	count := 0

	for entry := range r.engine.All() {
		fmt.Printf("%s\t%s\n", formatKey(entry.Key), entry.Value)
		count++
	}

	fmt.Printf("(%d entries)\n", count)
}

func (r *REPL) cmdLen() {
	fmt.Println(r.engine.SlotCount())
}

func (r *REPL) cmdInfo() {
	fmt.Printf("engine:            %s\n", r.engineName)
	fmt.Printf("page size:         %d\n", r.engine.PageSize())
	fmt.Printf("page count:        %d\n", r.engine.PageCount())
	fmt.Printf("slot count:        %d\n", r.engine.SlotCount())
	fmt.Printf("tombstone count:   %d\n", r.engine.TombstoneCount())
	fmt.Printf("free indices limit: %d\n", r.engine.FreeIndicesLimit())
}

func (r *REPL) cmdBulk(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: bulk <count>")
		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	for i := 0; i < count; i++ {
		value := fmt.Sprintf("v%d", rand.IntN(1_000_000))

		if _, err := r.engine.Add(value); err != nil {
			fmt.Printf("error at %d: %v\n", i, err)
			return
		}
	}

	fmt.Printf("inserted %d values\n", count)
}

func (r *REPL) cmdBench(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: bench <count>")
		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	keys := make([]slotmap.Key, count)

	start := time.Now()

	for i := 0; i < count; i++ {
		k, err := r.engine.Add(fmt.Sprintf("v%d", i))
		if err != nil {
			fmt.Printf("error at %d: %v\n", i, err)
			return
		}

		keys[i] = k
	}

	addElapsed := time.Since(start)

	start = time.Now()

	for _, k := range keys {
		if _, err := r.engine.Get(k); err != nil {
			fmt.Printf("error getting %s: %v\n", formatKey(k), err)
			return
		}
	}

	getElapsed := time.Since(start)

	fmt.Printf("add: %d ops in %v (%.0f ops/sec)\n", count, addElapsed, float64(count)/addElapsed.Seconds())
	fmt.Printf("get: %d ops in %v (%.0f ops/sec)\n", count, getElapsed, float64(count)/getElapsed.Seconds())
}
