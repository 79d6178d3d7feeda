// Package cli is the interactive line-driven front end: it feeds typed text and commands into an app session and prints the resulting form.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bastiangx/farecast/internal/app"
	"github.com/bastiangx/farecast/pkg/config"
	"github.com/bastiangx/farecast/pkg/selection"
	"github.com/charmbracelet/log"
)

// InputHandler reads lines from in and renders the session to out after each one.
// Lines starting with ':' are commands; anything else replaces the text of the focused field.
type InputHandler struct {
	session      *app.Session
	in           io.Reader
	out          io.Writer
	styles       styles
	showQuarter  bool
	showPresets  bool
	requestCount int
}

// NewInputHandler builds a handler for session.
func NewInputHandler(session *app.Session, cfg config.CliConfig, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		session:     session,
		in:          in,
		out:         out,
		styles:      newStyles(out),
		showQuarter: cfg.ShowQuarter,
		showPresets: cfg.ShowPresets,
	}
}

// Start runs the input loop until :quit, end of input, or ctx is done.
func (h *InputHandler) Start(ctx context.Context) error {
	fmt.Fprintln(h.out, h.styles.title.Render("farecast"))
	fmt.Fprintln(h.out, "type :help for commands, :from or :to to pick a field, :quit to exit")
	if h.showPresets {
		h.renderPresets(h.session.Snapshot())
	}

	scanner := bufio.NewScanner(h.in)
	for {
		fmt.Fprint(h.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(h.out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if quit := h.handleInput(ctx, line); quit {
			return nil
		}
	}
}

// handleInput runs one line and reports whether the loop should stop.
func (h *InputHandler) handleInput(ctx context.Context, line string) bool {
	h.requestCount++
	if !strings.HasPrefix(line, ":") {
		if err := h.session.Type(line); err != nil {
			h.printError(fmt.Errorf("%w; focus a field with :from or :to", err))
			return false
		}
		h.render()
		return false
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		h.printError(fmt.Errorf("empty command"))
		return false
	}
	cmd, args := fields[0], fields[1:]
	log.Debug("Command", "n", h.requestCount, "cmd", cmd, "args", args)

	var err error
	switch cmd {
	case "quit", "q":
		return true
	case "help", "h":
		h.renderHelp()
		return false
	case "from":
		err = h.session.Focus(app.FieldFrom)
	case "to":
		err = h.session.Focus(app.FieldTo)
	case "blur":
		h.session.Blur()
	case "clear":
		err = h.session.Type("")
	case "down":
		_, err = h.session.Send(selection.KeyArrowDown{})
	case "up":
		_, err = h.session.Send(selection.KeyArrowUp{})
	case "enter":
		_, err = h.session.Send(selection.KeyEnter{})
	case "esc":
		_, err = h.session.Send(selection.KeyEscape{})
	case "hover", "pick":
		var n int
		if n, err = candidateArg(args); err == nil {
			if cmd == "hover" {
				_, err = h.session.Send(selection.PointerEnterCandidate{Index: n})
			} else {
				_, err = h.session.Send(selection.PointerCommitCandidate{Index: n})
			}
		}
	case "date":
		if len(args) != 1 {
			err = fmt.Errorf("usage: :date YYYY-MM-DD")
			break
		}
		h.session.SetDate(args[0])
	case "swap":
		h.session.Swap()
	case "quick":
		if len(args) != 1 {
			err = fmt.Errorf("usage: :quick ID")
			break
		}
		if !h.hasPreset(args[0]) {
			err = fmt.Errorf("unknown quick route %q", args[0])
			break
		}
		// Estimate outcomes are rendered from session state below.
		_, _ = h.session.ApplyPreset(ctx, args[0])
	case "go":
		_, _ = h.session.Submit(ctx)
	case "show":
	default:
		err = fmt.Errorf("unknown command :%s", cmd)
	}

	if err != nil {
		h.printError(err)
		return false
	}
	h.render()
	return false
}

func (h *InputHandler) hasPreset(id string) bool {
	for _, p := range h.session.Form().Presets() {
		if p.ID == id {
			return true
		}
	}
	return false
}

// candidateArg reads the 1-based candidate number shown in the list.
func candidateArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one candidate number")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid candidate number %q", args[0])
	}
	return n - 1, nil
}
