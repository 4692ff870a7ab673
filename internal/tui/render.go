package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mcoot/sovereign-client/internal/model"
)

const timeFormat = "15:04:05"

// renderHeader is the one-line pilot summary
func (m Model) renderHeader() string {
	st, ok := m.app.View.State()
	if !ok {
		return m.theme.header.Width(m.width).Render("SOVEREIGN CONQUEST")
	}

	parts := []string{
		fmt.Sprintf("%s · %s L%d", st.Username, st.Rank, st.Level),
		fmt.Sprintf("Credits %d", st.Credits),
		fmt.Sprintf("Turns %d/%d", st.Turns, st.TurnsMax),
		fmt.Sprintf("Hold %d/%d", st.CargoTotal(), st.CargoMax),
	}
	if st.CorpName != "" {
		parts = append(parts, "Corp "+st.CorpName)
	}
	line := m.theme.header.Render(strings.Join(parts, "  │  "))
	if m.count > 0 {
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, " ", m.theme.badge.Render(fmt.Sprintf("✉ %d", m.count)))
	}
	return line
}

// renderSector shows the current sector, its port and any event or planet
func (m Model) renderSector() string {
	sec, ok := m.app.View.Sector()
	if !ok {
		return m.theme.panel.Render(m.theme.muted.Render("No sector data"))
	}

	var b strings.Builder
	b.WriteString(m.theme.title.Render(fmt.Sprintf("Sector %d · %s", sec.ID, sec.Name)))
	b.WriteString("\n")
	b.WriteString(m.theme.label.Render("Warps  "))
	b.WriteString(m.theme.value.Render(joinWarps(sec.Warps)))
	if sec.IsProtectorate {
		b.WriteString(m.theme.muted.Render(fmt.Sprintf("  protectorate (%d fighters)", sec.ProtectorateFighters)))
	}
	if sec.HasShipyard {
		b.WriteString(m.theme.muted.Render("  shipyard"))
	}
	if sec.Mines > 0 {
		b.WriteString(m.theme.errStatus.Render(fmt.Sprintf("  mines %d", sec.Mines)))
	}
	if p := sec.Port; p != nil {
		b.WriteString("\n")
		b.WriteString(renderPort(*p))
	}
	if pl := sec.Planet; pl != nil {
		b.WriteString("\n")
		owner := pl.Owner
		if owner == "" {
			owner = "unclaimed"
		}
		b.WriteString(m.theme.label.Render("Planet "))
		b.WriteString(fmt.Sprintf("%s (%s, citadel %d)", pl.Name, owner, pl.CitadelLevel))
	}
	if ev := sec.Event; ev != nil {
		b.WriteString("\n")
		b.WriteString(m.theme.errStatus.Render(string(ev.Kind)))
		b.WriteString(" " + ev.Title)
	}

	width := m.width - 2
	if width < 20 {
		width = 20
	}
	return m.theme.panel.Width(width).Render(b.String())
}

func renderPort(p model.Port) string {
	rows := make([]string, 0, 3)
	for _, q := range p.Quotes() {
		rows = append(rows, fmt.Sprintf("%-9s %-4s %4d/%-4d @ %d", q.Commodity, q.Mode, q.Quantity, q.BaseQuantity, q.Price))
	}
	return strings.Join(rows, "\n")
}

// renderLogs formats log entries, most recent first
func (m Model) renderLogs(entries []model.LogEntry) string {
	if len(entries) == 0 {
		return m.theme.muted.Render("No activity yet. Type HELP for commands.")
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s %s %s",
			m.theme.muted.Render(e.At.Local().Format(timeFormat)),
			m.theme.logKind(e.Kind).Render(fmt.Sprintf("%-6s", e.Kind)),
			e.Message)
	}
	return strings.Join(lines, "\n")
}

func renderMessageList(box string, msgs []model.Message) string {
	if len(msgs) == 0 {
		return fmt.Sprintf("No messages in %s.", box)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)\n", strings.ToUpper(box), len(msgs))
	for _, msg := range msgs {
		mark := " "
		if msg.Unread() {
			mark = "*"
		}
		who := msg.From
		if box == "sent" {
			who = "to " + msg.To
		}
		subject := msg.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		fmt.Fprintf(&b, "%s #%-4d %-20s %s\n", mark, msg.ID, who, subject)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderMessage(msg model.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d from %s to %s\n", msg.ID, msg.From, msg.To)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	for _, a := range msg.Attachments {
		fmt.Fprintf(&b, "Attached: %s (id %d)\n", a.Filename, a.ID)
	}
	b.WriteString("\n")
	b.WriteString(msg.Body)
	return b.String()
}

func joinWarps(warps []int) string {
	parts := make([]string, len(warps))
	for i, w := range warps {
		parts[i] = fmt.Sprint(w)
	}
	return strings.Join(parts, " ")
}
