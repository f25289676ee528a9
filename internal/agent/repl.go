package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"codeassist/internal/llm"
	"codeassist/internal/logging"
	"codeassist/internal/tools"
)

var bulletRe = regexp.MustCompile(`^(\s*)[•\-\*]\s+(.+)$`)

// REPL is the interactive conversation loop.
type REPL struct {
	loop     *Loop
	registry *tools.Registry
	renderer *Renderer
	logger   *logging.AppLogger

	in  io.Reader
	out io.Writer

	history []llm.Message
	store   *HistoryStore // nil means the conversation lives only in memory

	// lastOptions maps "1", "2", ... to the bullet items of the previous
	// answer so the user can pick one by number.
	lastOptions map[string]string
}

// NewREPL wires the interactive loop to a reader and writer. Production
// uses stdin/stdout; tests use buffers.
func NewREPL(loop *Loop, registry *tools.Registry, renderer *Renderer, logger *logging.AppLogger, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		loop:        loop,
		registry:    registry,
		renderer:    renderer,
		logger:      logger,
		in:          in,
		out:         out,
		lastOptions: map[string]string{},
	}
}

// UseHistory attaches persistent conversation storage. Any stored turns
// are loaded immediately; from then on every answered request is saved
// and 'clear' removes the stored conversation too. A corrupt or unreadable
// history file starts the session fresh rather than failing it.
func (r *REPL) UseHistory(store *HistoryStore) {
	r.store = store
	msgs, err := store.Load()
	if err != nil {
		r.logger.Warn("Could not load conversation history; starting fresh", "error", err)
		return
	}
	r.history = msgs
}

// Run reads requests until EOF or an exit command.
func (r *REPL) Run(ctx context.Context) error {
	r.printWelcome()

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(r.out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit", "q":
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		case "help":
			r.printHelp()
			continue
		case "tools":
			r.printTools()
			continue
		case "clear":
			r.history = nil
			r.lastOptions = map[string]string{}
			if r.store != nil {
				if err := r.store.Clear(); err != nil {
					r.logger.Warn("Could not remove stored conversation", "error", err)
				}
			}
			fmt.Fprintln(r.out, "Conversation cleared.")
			continue
		}

		// A bare number picks an option from the previous answer.
		if selected, ok := r.lastOptions[input]; ok {
			fmt.Fprintf(r.out, "Selected: %s\n", selected)
			input = selected
		}

		if err := r.handleRequest(ctx, input); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(r.out, r.renderer.Error(err.Error()))
		}
	}
}

func (r *REPL) handleRequest(ctx context.Context, input string) error {
	result, history, err := r.loop.Run(ctx, r.history, input)
	if err != nil {
		return err
	}
	r.history = history
	if r.store != nil {
		if err := r.store.Save(r.history); err != nil {
			r.logger.Warn("Could not save conversation history", "error", err)
		}
	}

	for _, call := range result.ToolCalls {
		status := "ok"
		if call.IsError {
			status = "error"
		}
		fmt.Fprintln(r.out, r.renderer.Dim(fmt.Sprintf("[tool %s: %s]", call.Tool, status)))
	}

	answer := r.numberOptions(result.Content)
	fmt.Fprintln(r.out, r.renderer.Panel("Assistant", r.renderer.Markdown(answer)))
	return nil
}

// numberOptions converts bullet lists in the answer into numbered options
// and records the mapping for number selection on the next input.
func (r *REPL) numberOptions(text string) string {
	r.lastOptions = map[string]string{}

	lines := strings.Split(text, "\n")
	num := 1
	for i, line := range lines {
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		r.lastOptions[fmt.Sprintf("%d", num)] = m[2]
		lines[i] = fmt.Sprintf("%s**%d.** %s", m[1], num, m[2])
		num++
	}

	out := strings.Join(lines, "\n")
	if len(r.lastOptions) > 0 {
		out += fmt.Sprintf("\n\n*Tip: type a number (1-%d) to select an option*", len(r.lastOptions))
	}
	return out
}

func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out, r.renderer.Panel("codeassist",
		"Code assistant with local file tools and GitHub access.\nType 'help' for commands, 'exit' to quit."))
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, r.renderer.Panel("Help", strings.Join([]string{
		"help    show this help",
		"tools   list available tools",
		"clear   forget the conversation so far",
		"exit    quit (also: quit, q)",
		"",
		"Anything else is sent to the assistant. After an answer with a",
		"numbered list, typing a number selects that option.",
	}, "\n")))
}

func (r *REPL) printTools() {
	var b strings.Builder
	for _, name := range r.registry.Names() {
		tool, _ := r.registry.Get(name)
		desc := tool.Description()
		if idx := strings.IndexByte(desc, '.'); idx > 0 {
			desc = desc[:idx+1]
		}
		fmt.Fprintf(&b, "%-14s %s\n", name, desc)
	}
	fmt.Fprintln(r.out, r.renderer.Panel(fmt.Sprintf("Tools (%d)", r.registry.Count()),
		strings.TrimRight(b.String(), "\n")))
}
