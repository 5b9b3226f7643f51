package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deepnoodle-ai/loxvm/dis"
	"github.com/deepnoodle-ai/loxvm/vm"
	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
)

var (
	promptColor = color.New(color.FgYellow, color.Bold)
	mutedColor  = color.New(color.FgHiBlack)
)

// repl reads one expression per line and evaluates it on a single VM, so the
// heap is shared by every line of the session.
type repl struct {
	ctx         context.Context
	vm          *vm.VirtualMachine
	logger      zerolog.Logger
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	historyPath string
	showTiming  bool
	showDis     bool
	format      string
}

func newRepl(ctx context.Context, machine *vm.VirtualMachine, logger zerolog.Logger, in io.Reader, out, errOut io.Writer) *repl {
	return &repl{
		ctx:    ctx,
		vm:     machine,
		logger: logger,
		in:     in,
		out:    out,
		errOut: errOut,
	}
}

func (r *repl) run() error {
	fmt.Fprintf(r.out, "loxvm %s\n", version)
	fmt.Fprintln(r.out, mutedColor.Sprint("Type :help for commands"))

	scanner := bufio.NewScanner(r.in)
	for {
		promptColor.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := r.handleCommand(line); quit {
				return nil
			}
			continue
		}
		appendToHistory(r.historyPath, line)
		r.eval(line)
	}
}

func (r *repl) eval(line string) {
	heap := r.vm.Heap()
	in := &input{source: line}
	c, err := in.chunk(heap, r.errOut, r.logger)
	if err != nil {
		// Compile errors were printed to errOut as they were found
		return
	}
	if r.showDis {
		if err := dis.PrintChunk(c, "code", r.out); err != nil {
			fmt.Fprintln(r.errOut, red(err.Error()))
		}
	}
	start := time.Now()
	_, err = r.vm.Run(r.ctx, c)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintln(r.errOut, red(err.Error()))
		return
	}
	result, _ := r.vm.TOS()
	output, err := getOutput(result, r.format)
	if err != nil {
		fmt.Fprintln(r.errOut, red(err.Error()))
		return
	}
	fmt.Fprintln(r.out, output)
	if r.showTiming {
		fmt.Fprintln(r.out, mutedColor.Sprint(elapsed))
	}
}

func (r *repl) handleCommand(line string) bool {
	switch cmd := strings.ToLower(strings.Fields(line)[0]); cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(r.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(r.out, "  :dis            Toggle disassembly of each line")
		fmt.Fprintln(r.out, "  :timing         Toggle execution timing")
		fmt.Fprintln(r.out, "  :heap           Show heap usage")
		fmt.Fprintln(r.out, "  :exit, :quit    Exit the REPL")
	case ":dis":
		r.showDis = !r.showDis
		fmt.Fprintln(r.out, mutedColor.Sprintf("  Disassembly %s", enabledString(r.showDis)))
	case ":timing":
		r.showTiming = !r.showTiming
		fmt.Fprintln(r.out, mutedColor.Sprintf("  Timing %s", enabledString(r.showTiming)))
	case ":heap":
		heap := r.vm.Heap()
		fmt.Fprintln(r.out, mutedColor.Sprintf("  %d objects, %d bytes", heap.Len(), heap.Bytes()))
	case ":exit", ":quit", ":q":
		return true
	default:
		fmt.Fprintln(r.errOut, red(fmt.Sprintf("Unknown command: %s", cmd)))
	}
	return false
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func historyPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".loxvm_history")
}

func appendToHistory(path, line string) {
	if path == "" || line == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString(line + "\n")
}
