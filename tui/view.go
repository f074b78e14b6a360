package tui

import (
	"fmt"
	"strings"
	"time"

	"socialfeed/models"

	"github.com/charmbracelet/x/ansi"
)

func (m Model) View() string {
	var b strings.Builder

	status := offlineStyle.Render("○ offline")
	if m.live {
		status = liveStyle.Render("● live")
		if m.lastEvent != "" {
			status += offlineStyle.Render(" (" + string(m.lastEvent) + ")")
		}
	}
	b.WriteString(titleStyle.Render("socialfeed") + " " + status + "\n\n")

	page := m.view.Snapshot()
	if m.view.Loading() {
		b.WriteString(fmt.Sprintf("  %s Loading page %d...\n", m.spinner.View(), m.pager.Current))
	}
	if m.err != nil {
		b.WriteString("  " + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	if len(page.Posts) == 0 && !m.view.Loading() {
		b.WriteString("  No posts on this page.\n")
	}
	for _, p := range page.Posts {
		b.WriteString(m.renderPost(p) + "\n")
	}

	b.WriteString("\n" + m.renderPager() + "\n")
	b.WriteString(m.renderHelp() + "\n")
	return b.String()
}

func (m Model) renderPost(p models.Post) string {
	inner := max(m.width-6, 10)
	header := authorStyle.Render("@"+p.PostedBy.Username) + " " +
		timestampStyle.Render(formatTime(p.CreatedAt))
	if p.UpdatedAt > p.CreatedAt {
		header += timestampStyle.Render(" (edited)")
	}
	content := contentStyle.Render(ansi.Truncate(p.Content, inner, "…"))
	return postStyle.Width(inner + 2).Render(header + "\n" + content)
}

func (m Model) renderPager() string {
	var parts []string
	for i := 1; i <= m.pager.DisplayedPages(); i++ {
		label := fmt.Sprintf("%d", i)
		if i == m.pager.Current {
			parts = append(parts, currentPageStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, pageStyle.Render(label))
		}
	}
	line := "  " + strings.Join(parts, " ")
	if m.pager.Current > m.pager.DisplayedPages() {
		line += currentPageStyle.Render(fmt.Sprintf(" [%d]", m.pager.Current))
	}
	return line + pageStyle.Render(fmt.Sprintf("  %d posts", m.pager.TotalCount))
}

func (m Model) renderHelp() string {
	var parts []string
	for _, k := range m.keys.bindings() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}

func formatTime(millis int64) string {
	if millis == 0 {
		return ""
	}
	return time.UnixMilli(millis).Format("Jan 2 15:04")
}
