package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"codescope/internal/analysis"
	"codescope/internal/ir"
	"codescope/internal/storage"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("8"))
	stepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// maxListed caps technology and pattern names on one summary line.
const maxListed = 6

func progressLine(p analysis.Progress) string {
	return stepStyle.Render(fmt.Sprintf("[%d/%d] %s", p.Index, p.Total, p.Stage))
}

func writeSummary(w io.Writer, a *ir.CodebaseAnalysis) {
	repo := a.Repository
	header := repo.Name
	if repo.Branch != "" {
		header += " (" + repo.Branch + ")"
	}
	if len(repo.Commit) >= 7 {
		header += " @ " + repo.Commit[:7]
	}
	fmt.Fprintln(w, titleStyle.Render(header))
	fmt.Fprintln(w, repo.Path)
	fmt.Fprintln(w)

	s := a.Structure
	row(w, "Project", fmt.Sprintf("%s, %s architecture", s.ProjectType, s.Architecture))
	row(w, "Build", joinOr(s.BuildSystems, "none")+"; package manager "+s.PackageManager)
	row(w, "Files", fmt.Sprintf("%d files in %d directories", s.TotalFiles, s.TotalDirectories))
	row(w, "Docs", fmt.Sprintf("%s (%d points)", s.Documentation.Quality, s.Documentation.Score))
	row(w, "Languages", techList(a.Technologies.Languages))
	row(w, "Frameworks", techList(a.Technologies.Frameworks))
	row(w, "Datastores", techList(a.Technologies.Datastores))
	row(w, "Tools", techList(a.Technologies.Tools))

	q := a.Quality
	row(w, "Quality", fmt.Sprintf("maintainability %.1f, duplication %.1f%%, comments %.1f%%",
		q.MaintainabilityIndex, q.DuplicateCodePercentage, q.CommentRatio*100))
	row(w, "Complexity", fmt.Sprintf("cyclomatic %.1f, cognitive %.1f per file over %d files",
		q.Complexity.Cyclomatic, q.Complexity.Cognitive, q.FilesAnalyzed))
	row(w, "Patterns", patternList(a.Patterns))
	row(w, "Examples", exampleCounts(a.Examples))

	section(w, "Strengths", a.Insights.Strengths, okStyle)
	section(w, "Improvements", a.Insights.Improvements, warnStyle)
	section(w, "Opportunities", a.Insights.Opportunities, stepStyle)
	section(w, "Risks", a.Insights.Risks, errorStyle)
}

func row(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label)+value)
}

func section(w io.Writer, title string, items []string, style lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, style.Render(title))
	for _, item := range items {
		fmt.Fprintln(w, "  - "+item)
	}
}

func techList(list []ir.Technology) string {
	names := make([]string, 0, len(list))
	for i, t := range list {
		if i == maxListed {
			names = append(names, fmt.Sprintf("+%d more", len(list)-maxListed))
			break
		}
		name := t.Name
		if t.Version != "" {
			name += " " + t.Version
		}
		names = append(names, fmt.Sprintf("%s (%.2f)", name, t.Confidence))
	}
	return joinOr(names, "none")
}

func patternList(list []ir.PatternDetection) string {
	names := make([]string, 0, len(list))
	for i, p := range list {
		if i == maxListed {
			names = append(names, fmt.Sprintf("+%d more", len(list)-maxListed))
			break
		}
		names = append(names, fmt.Sprintf("%s x%d", p.Name, p.Frequency))
	}
	return joinOr(names, "none")
}

func exampleCounts(examples map[ir.Category][]ir.CodeExample) string {
	parts := make([]string, 0, len(ir.Categories))
	for _, c := range ir.Categories {
		parts = append(parts, fmt.Sprintf("%s %d", c, len(examples[c])))
	}
	return strings.Join(parts, ", ")
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

func writeHistory(w io.Writer, runs []storage.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no stored runs")
		return
	}
	for _, r := range runs {
		commit := r.Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		fmt.Fprintf(w, "%s  %s  %-20s %-8s MI %5.1f  dup %5.1f%%  %d files\n",
			titleStyle.Render(r.ID),
			r.AnalyzedAt.Local().Format("2006-01-02 15:04"),
			r.RepoName, commit, r.Maintainability, r.Duplication, r.FilesAnalyzed)
	}
}

// writeMetrics prints the gathered counters and histogram totals.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%.4fs", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, labelStyle.UnsetWidth().Render(l))
	}
	return nil
}
