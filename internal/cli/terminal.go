package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/bastiangx/farecast/internal/app"
	"github.com/bastiangx/farecast/pkg/selection"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	active  lipgloss.Style
	muted   lipgloss.Style
	errText lipgloss.Style
	result  lipgloss.Style
}

// newStyles binds styles to w, so colors are dropped when w is not a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#6b50ff")),
		label:   r.NewStyle().Bold(true),
		active:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
		errText: r.NewStyle().Foreground(lipgloss.Color("204")),
		result:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
	}
}

func (h *InputHandler) printError(err error) {
	fmt.Fprintln(h.out, h.styles.errText.Render("error: "+err.Error()))
}

func (h *InputHandler) render() {
	v := h.session.Snapshot()
	s := h.styles

	fmt.Fprintf(h.out, "%s %s\n", s.label.Render("From:"), fieldText(v.From, v.Focused == app.FieldFrom))
	fmt.Fprintf(h.out, "%s %s\n", s.label.Render("To:  "), fieldText(v.To, v.Focused == app.FieldTo))

	date := v.Form.TravelDate
	if date == "" {
		date = s.muted.Render("(none)")
	}
	line := fmt.Sprintf("%s %s", s.label.Render("Date:"), date)
	if h.showQuarter && v.HasQuarter {
		line += s.muted.Render(fmt.Sprintf(" (Q%d)", v.Quarter))
	}
	if v.ActivePreset != "" {
		line += s.muted.Render(" [" + v.ActivePreset + "]")
	}
	fmt.Fprintln(h.out, line)

	switch v.Focused {
	case app.FieldFrom:
		h.renderCandidates(v.From)
	case app.FieldTo:
		h.renderCandidates(v.To)
	}

	switch {
	case v.Meta.Loading:
		fmt.Fprintln(h.out, s.muted.Render("Loading cities..."))
	case v.Meta.Err != nil:
		fmt.Fprintln(h.out, s.errText.Render("Couldn't load city list: "+v.Meta.Message()))
	}

	h.renderEstimate(v)
}

func fieldText(st selection.State, focused bool) string {
	text := st.Query
	if focused {
		text += "_"
	}
	return text
}

func (h *InputHandler) renderCandidates(st selection.State) {
	visible := st.Visible()
	if len(visible) == 0 {
		return
	}
	active := st.ActiveIndex()
	for i, place := range visible {
		if i == active {
			fmt.Fprintf(h.out, "  > %d. %s\n", i+1, h.styles.active.Render(place))
			continue
		}
		fmt.Fprintf(h.out, "    %d. %s\n", i+1, place)
	}
}

func (h *InputHandler) renderEstimate(v app.View) {
	s := h.styles
	est := v.Estimate
	switch {
	case !v.Configured:
		fmt.Fprintln(h.out, s.errText.Render("API base URL is not configured; estimates are disabled"))
	case est.Loading:
		fmt.Fprintln(h.out, s.muted.Render("Estimating..."))
	case est.Err != nil:
		fmt.Fprintln(h.out, s.errText.Render(est.Err.Error()))
	case est.Result != nil:
		fmt.Fprintf(h.out, "%s %s %s\n",
			s.label.Render("Estimate:"),
			s.result.Render(fmt.Sprintf("$%.2f", *est.Result)),
			s.muted.Render(fmt.Sprintf("(%s → %s, Q%d)", est.Submission.Origin, est.Submission.Destination, est.Quarter)))
	}
}

func (h *InputHandler) renderPresets(v app.View) {
	fmt.Fprintln(h.out, h.styles.label.Render("Quick routes:"))
	for _, p := range v.Presets {
		fmt.Fprintf(h.out, "  %-3s %-26s %s %s\n", p.ID, p.Label, p.Date, h.styles.muted.Render(p.Sub))
	}
}

var helpLines = []string{
	":from, :to        focus a field",
	":blur             leave the focused field",
	":down, :up        move the active suggestion",
	":enter, :esc      commit the active suggestion / close the list",
	":hover N          make suggestion N active",
	":pick N           commit suggestion N",
	":clear            empty the focused field",
	":date YYYY-MM-DD  set the travel date",
	":swap             swap From and To",
	":quick ID         fill a quick route and estimate it",
	":go               request an estimate",
	":show             print the form",
	":quit             exit",
	"any other text    replaces the focused field's text",
}

func (h *InputHandler) renderHelp() {
	fmt.Fprintln(h.out, h.styles.label.Render("Commands:"))
	fmt.Fprintln(h.out, "  "+strings.Join(helpLines, "\n  "))
	if h.showPresets {
		h.renderPresets(h.session.Snapshot())
	}
}
