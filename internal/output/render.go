package output

import (
	"fmt"
	"io"
	"strings"

	"gitstack.dev/gitstack/internal/model"
	"gitstack.dev/gitstack/internal/stack"
	"gitstack.dev/gitstack/internal/sync"
)

// Renderer formats gitstack values for the terminal
type Renderer struct {
	s styles
}

// NewRenderer creates a Renderer for w. Without color every style renders plain text.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{s: newStyles(newLipglossRenderer(w, color))}
}

// Branch renders a branch name
func (r *Renderer) Branch(name string) string {
	return r.s.branch.Render(name)
}

// Stack renders a stack top to bottom, ending with its trunk.
// current marks the checked-out branch.
func (r *Renderer) Stack(s *model.Stack, active bool, current string) string {
	var b strings.Builder

	b.WriteString(r.s.stack.Render(s.Name))
	if active {
		b.WriteString(" " + r.s.active.Render("(active)"))
	}
	b.WriteString("\n")

	if len(s.Branches) == 0 {
		b.WriteString(r.s.dim.Render("  (no branches)") + "\n")
	}
	for i := len(s.Branches) - 1; i >= 0; i-- {
		br := s.Branches[i]
		marker := "○"
		name := r.s.branch.Render(br.Name)
		if br.Name == current {
			marker = "●"
			name = r.s.current.Render(br.Name)
		}
		line := fmt.Sprintf("  %s %s", marker, name)
		if br.PR != nil {
			line += " " + r.pullRequest(br.PR)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(r.s.trunk.Render(fmt.Sprintf("  ┴ %s", s.Trunk)) + "\n")
	return b.String()
}

func (r *Renderer) pullRequest(pr *model.PullRequest) string {
	style, ok := r.s.pr[string(pr.State)]
	if !ok {
		style = r.s.dim
	}
	text := fmt.Sprintf("#%d %s", pr.Number, pr.State)
	if pr.URL != "" {
		text += " " + r.s.dim.Render(pr.URL)
	}
	return style.Render(text)
}

// List renders stack names with the active one highlighted
func (r *Renderer) List(l *stack.Listing) string {
	if len(l.Names) == 0 {
		return r.s.dim.Render("No stacks. Create one with 'gitstack init <name>'.") + "\n"
	}
	var b strings.Builder
	for _, name := range l.Names {
		if name == l.Active {
			b.WriteString(fmt.Sprintf("* %s\n", r.s.active.Render(name)))
		} else {
			b.WriteString(fmt.Sprintf("  %s\n", name))
		}
	}
	return b.String()
}

// SyncResult renders the per-branch outcome of a sync or continue
func (r *Renderer) SyncResult(res *sync.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n", r.s.stack.Render(res.Stack), r.s.trunk.Render("on "+res.Trunk)))

	for _, br := range res.Branches {
		switch br.Status {
		case sync.StatusMerged:
			b.WriteString(fmt.Sprintf("  %s %s %s\n", r.s.merged.Render("✓"), r.Branch(br.Name),
				r.s.dim.Render(fmt.Sprintf("merged %s, %s", br.Parent, commits(br.Commits)))))
		case sync.StatusUpToDate:
			b.WriteString(fmt.Sprintf("  %s %s %s\n", r.s.upToDate.Render("="), r.Branch(br.Name),
				r.s.dim.Render(fmt.Sprintf("up to date with %s, %s", br.Parent, commits(br.Commits)))))
		case sync.StatusConflict:
			b.WriteString(fmt.Sprintf("  %s %s %s\n", r.s.conflict.Render("✗"), r.Branch(br.Name),
				r.s.conflict.Render("conflict merging "+br.Parent)))
			for _, f := range br.ConflictFiles {
				b.WriteString(fmt.Sprintf("      %s\n", f))
			}
		}
	}

	for _, name := range res.Pushed {
		b.WriteString(fmt.Sprintf("  %s pushed %s\n", r.s.merged.Render("↑"), r.Branch(name)))
	}
	for _, w := range res.PushWarnings {
		b.WriteString(r.s.warning.Render("  ⚠ "+firstLine(w)) + "\n")
	}

	if res.HasConflict {
		b.WriteString("\nResolve the conflicts, stage the files, then run 'gitstack continue' (or 'gitstack abort').\n")
	}
	return b.String()
}

// Pending renders a sync halted on a conflict
func (r *Renderer) Pending(p *sync.Pending) string {
	if p == nil {
		return "No sync in progress.\n"
	}
	var b strings.Builder
	branch := p.Branch
	if branch == "" {
		branch = fmt.Sprintf("#%d", p.State.BranchIndex)
	}
	b.WriteString(fmt.Sprintf("Sync of %s halted on %s", r.s.stack.Render(p.State.StackName), r.Branch(branch)))
	if p.Parent != "" {
		b.WriteString(" " + r.s.dim.Render("(merging "+p.Parent+")"))
	}
	b.WriteString("\n")
	if wt := p.State.Worktree(); wt != "" {
		b.WriteString(fmt.Sprintf("  worktree: %s\n", wt))
	}
	if len(p.ConflictFiles) == 0 {
		b.WriteString(r.s.merged.Render("  all conflicts resolved; run 'gitstack continue'") + "\n")
	}
	for _, f := range p.ConflictFiles {
		b.WriteString(fmt.Sprintf("  %s %s\n", r.s.conflict.Render("✗"), f))
	}
	b.WriteString(fmt.Sprintf("  returns to %s when done\n", p.State.OriginalBranch))
	return b.String()
}

// Abort renders what an abort cleaned up
func (r *Renderer) Abort(a *sync.AbortResult) string {
	var b strings.Builder
	if a.Stack == "" {
		b.WriteString("Aborted merge in progress.\n")
	} else {
		b.WriteString(fmt.Sprintf("Aborted sync of %s; back on %s.\n", r.s.stack.Render(a.Stack), r.Branch(a.OriginalBranch)))
	}
	for _, w := range a.Warnings {
		b.WriteString(r.s.warning.Render("  ⚠ "+firstLine(w)) + "\n")
	}
	return b.String()
}

// Commit renders a routed commit
func (r *Renderer) Commit(c *stack.CommitResult) string {
	id := c.CommitID
	if len(id) > 7 {
		id = id[:7]
	}
	out := fmt.Sprintf("Committed %s on %s.\n", r.s.dim.Render(id), r.Branch(c.Branch))
	if c.BranchesAreStale {
		names := make([]string, len(c.StaleBranches))
		for i, n := range c.StaleBranches {
			names[i] = r.Branch(n)
		}
		out += r.s.warning.Render("Branches above are now stale: ") + strings.Join(names, ", ") +
			"\nRun 'gitstack sync' to bring them up to date.\n"
	}
	return out
}

func commits(n int) string {
	if n == 1 {
		return "1 commit"
	}
	return fmt.Sprintf("%d commits", n)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
