package publish

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"checklist-cli/internal/model"
	"checklist-cli/internal/outline"
)

// TermOptions controls terminal rendering of exported markdown.
type TermOptions struct {
	// Width is the wrap width; values under 20 are raised to 20.
	Width int
	// Style is a glamour standard style (dark, light, notty). Empty resolves from the environment.
	Style string
}

type termKey struct {
	style string
	width int
}

var (
	termMu        sync.Mutex
	termRenderers = map[termKey]*glamour.TermRenderer{}
)

func (o TermOptions) key() termKey {
	k := termKey{style: resolveStyle(o.Style), width: o.Width}
	if k.width < 20 {
		k.width = 20
	}
	return k
}

// RenderTerminal renders a checklist or help document for the terminal. If glamour cannot
// render it, the markdown source is returned.
func RenderTerminal(md string, opt TermOptions) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	r, err := termRenderer(opt.key())
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func termRenderer(k termKey) (*glamour.TermRenderer, error) {
	termMu.Lock()
	defer termMu.Unlock()
	if r := termRenderers[k]; r != nil {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(k.style),
		glamour.WithWordWrap(k.width),
	)
	if err != nil {
		return nil, err
	}
	termRenderers[k] = r
	return r, nil
}

// resolveStyle maps a requested style to a glamour standard style. NO_COLOR always wins.
func resolveStyle(requested string) string {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return "notty"
	}
	if strings.TrimSpace(requested) == "" {
		requested = os.Getenv("CHECKLIST_MD_STYLE")
	}
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "light":
		return "light"
	case "notty", "ascii", "plain":
		return "notty"
	}
	return "dark"
}

// ApplyColorProfile picks the lipgloss colour profile for CLI output.
func ApplyColorProfile() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.EnvColorProfile()
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	if profile != termenv.Ascii && (strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit")) {
		profile = termenv.TrueColor
	}
	lipgloss.SetColorProfile(profile)
}

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	numberStyle   = lipgloss.NewStyle().Foreground(ac("27", "75")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(ac("240", "245"))
	requiredStyle = lipgloss.NewStyle().Foreground(ac("160", "203"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
)

// RenderOutline draws the flat list as an indented, numbered tree. Lines are
// truncated to width (0 disables truncation).
func RenderOutline(tpl model.Template, width int) string {
	ed := outline.NewEditor(tpl.Items)
	var lines []string

	title := strings.TrimSpace(tpl.Name)
	if title == "" {
		title = "Untitled template"
	}
	head := headerStyle.Render(title)
	if v := strings.TrimSpace(tpl.Version); v != "" {
		head += " " + mutedStyle.Render("v"+v)
	}
	lines = append(lines, head)

	if ed.Len() == 0 {
		lines = append(lines, mutedStyle.Render("  (no items)"))
	}
	for i, it := range ed.Items() {
		num, _ := ed.OutlineNumber(i)
		indent := "  "
		if !it.IsParent() {
			indent = "      "
		}
		t := strings.TrimSpace(it.Title)
		if t == "" {
			t = mutedStyle.Render("Untitled")
		}
		line := indent + numberStyle.Render(num) + " " + t
		if it.IsRequired {
			line += " " + requiredStyle.Render("*")
		}
		if n := len(it.SampleImages); n > 0 {
			line += " " + mutedStyle.Render("["+strconv.Itoa(n)+" img]")
		}
		lines = append(lines, truncate(line, width))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	if width <= 0 || xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Truncate(s, width, "…")
}
