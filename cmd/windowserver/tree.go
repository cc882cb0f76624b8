package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	ws "github.com/phanxgames/windowserver"
)

var treeCmd = &cobra.Command{
	Use:   "tree [SCRIPT]",
	Short: "Print the component tree",
	Long: "Play an optional YAML script offscreen and print the resulting component tree " +
		"with ids, bounds, titles and pending requirements.",
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().String("format", "text", "Output format: text or yaml")
	treeCmd.Flags().Int("max-frames", 10000, "Give up after this many frames")
}

func runTree(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	maxFrames, _ := cmd.Flags().GetInt("max-frames")

	var (
		srv *ws.Server
		err error
	)
	if len(args) == 1 {
		srv, _, err = runScript(cfg, args[0], maxFrames)
	} else {
		srv, err = ws.NewServer(cfg, nil, nil)
		if err == nil {
			srv.Tick()
		}
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "text":
		writeTree(out, srv.Tree())
		return nil
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(toTreeDoc(srv.Tree()))
	default:
		return fmt.Errorf("unsupported format: %s (use text or yaml)", format)
	}
}

var (
	styleType    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleID      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleTitle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	stylePending = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleHidden  = lipgloss.NewStyle().Faint(true)
)

// writeTree prints one line per node, indented by depth.
func writeTree(w io.Writer, e ws.TreeEntry) {
	writeEntry(w, e, 0)
}

func writeEntry(w io.Writer, e ws.TreeEntry, depth int) {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(styleType.Render(e.Type.String()))
	if e.ID != 0 {
		b.WriteString(" " + styleID.Render(fmt.Sprintf("#%d", e.ID)))
	}
	r := e.Bounds
	fmt.Fprintf(&b, " (%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
	if e.HasTitle {
		b.WriteString(" " + styleTitle.Render(fmt.Sprintf("%q", e.Title)))
	}
	if pending := e.Own | e.Descendant; pending != ws.RequireNone {
		b.WriteString(" " + stylePending.Render("pending="+pending.String()))
	}
	line := b.String()
	if !e.Visible {
		line = styleHidden.Render(line + " hidden")
	}
	fmt.Fprintln(w, line)
	for _, c := range e.Children {
		writeEntry(w, c, depth+1)
	}
}

// treeDoc is the YAML shape of a TreeEntry.
type treeDoc struct {
	ID       ws.ComponentID   `yaml:"id,omitempty"`
	Name     string           `yaml:"name"`
	Type     ws.ComponentType `yaml:"type"`
	Bounds   ws.Rect          `yaml:"bounds"`
	Visible  bool             `yaml:"visible"`
	Title    *string          `yaml:"title,omitempty"`
	Pending  string           `yaml:"pending,omitempty"`
	Children []treeDoc        `yaml:"children,omitempty"`
}

func toTreeDoc(e ws.TreeEntry) treeDoc {
	d := treeDoc{
		ID:      e.ID,
		Name:    e.Name,
		Type:    e.Type,
		Bounds:  e.Bounds,
		Visible: e.Visible,
	}
	if e.HasTitle {
		title := e.Title
		d.Title = &title
	}
	if pending := e.Own | e.Descendant; pending != ws.RequireNone {
		d.Pending = pending.String()
	}
	for _, c := range e.Children {
		d.Children = append(d.Children, toTreeDoc(c))
	}
	return d
}
