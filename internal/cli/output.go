package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mcoot/sovereign-client/internal/dispatch"
	"github.com/mcoot/sovereign-client/internal/model"
	"github.com/mcoot/sovereign-client/internal/transport"
)

// timeFormat renders message and log timestamps
const timeFormat = "2006-01-02 15:04"

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"ok":    false,
			"error": err.Error(),
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case model.Snapshot:
		o.printSnapshot(v)
	case *dispatch.Result:
		o.printResult(v)
	case MessageList:
		o.printMessageList(v)
	case model.Message:
		o.printMessage(v)
	case *transport.SendResult:
		fmt.Fprintf(o.w, "%s (id %d)\n", v.Message, v.ID)
	case UnreadResult:
		fmt.Fprintf(o.w, "Unread messages: %d\n", v.Unread)
	case *transport.Health:
		o.printHealth(v)
	case AccountResult:
		o.printAccount(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// MessageList is a listed mailbox
type MessageList struct {
	Box      string          `json:"box"`
	Messages []model.Message `json:"messages"`
}

// UnreadResult is the polled unread count
type UnreadResult struct {
	Unread int `json:"unread"`
}

// AccountResult reports the session after login, register or a password change
type AccountResult struct {
	Username           string `json:"username"`
	State              string `json:"state"`
	MustChangePassword bool   `json:"must_change_password"`
}

func (o *Output) printAccount(a AccountResult) {
	fmt.Fprintf(o.w, "Logged in as %s\n", a.Username)
	if a.MustChangePassword {
		fmt.Fprintln(o.w, "A password change is required before play: run `sovereign passwd`.")
	}
}

func (o *Output) printHealth(h *transport.Health) {
	status := "down"
	if h.OK {
		status = "ok"
	}
	fmt.Fprintf(o.w, "%s %s: %s\n", h.Name, h.Version, status)
}

func (o *Output) printResult(r *dispatch.Result) {
	if r.Message != "" {
		fmt.Fprintln(o.w, r.Message)
	}
	for _, entry := range r.Applied.Appended {
		fmt.Fprintf(o.w, "  [%s] %s\n", entry.Kind, entry.Message)
	}
}

func (o *Output) printSnapshot(snap model.Snapshot) {
	if p := snap.State; p != nil {
		fmt.Fprintf(o.w, "Pilot:   %s (%s, level %d, %d/%d xp)\n", p.Username, p.Rank, p.Level, p.XP, p.NextLevelXP)
		fmt.Fprintf(o.w, "Credits: %d   Turns: %d/%d\n", p.Credits, p.Turns, p.TurnsMax)
		fmt.Fprintf(o.w, "Cargo:   ore %d, organics %d, equipment %d (%d/%d)\n",
			p.CargoOre, p.CargoOrganics, p.CargoEquipment, p.CargoTotal(), p.CargoMax)
		if p.CorpName != "" {
			fmt.Fprintf(o.w, "Corp:    %s (%s)\n", p.CorpName, p.CorpRole)
		}
		if p.SeasonName != "" {
			fmt.Fprintf(o.w, "Season:  %s\n", p.SeasonName)
		}
	}
	if s := snap.Sector; s != nil {
		fmt.Fprintf(o.w, "\nSector %d: %s\n", s.ID, s.Name)
		fmt.Fprintf(o.w, "Warps:   %s\n", joinInts(s.Warps))
		if s.IsProtectorate {
			fmt.Fprintf(o.w, "Protectorate (%d fighters)\n", s.ProtectorateFighters)
		}
		if s.HasShipyard {
			fmt.Fprintln(o.w, "Shipyard available")
		}
		if s.Mines > 0 {
			fmt.Fprintf(o.w, "Mines:   %d\n", s.Mines)
		}
		if s.Port != nil {
			o.printPort(*s.Port)
		}
		if pl := s.Planet; pl != nil {
			owner := pl.Owner
			if owner == "" {
				owner = "unclaimed"
			}
			fmt.Fprintf(o.w, "Planet:  %s (%s, citadel %d)\n", pl.Name, owner, pl.CitadelLevel)
		}
		if ev := s.Event; ev != nil {
			fmt.Fprintf(o.w, "Event:   %s: %s (until %s)\n", ev.Kind, ev.Title, ev.EndsAt.Format(timeFormat))
		}
	}
	if len(snap.Logs) > 0 {
		fmt.Fprintln(o.w, "\nRecent activity:")
		for _, entry := range snap.Logs {
			fmt.Fprintf(o.w, "  %s [%s] %s\n", entry.At.Format(timeFormat), entry.Kind, entry.Message)
		}
	}
}

func (o *Output) printPort(p model.Port) {
	name := p.Name
	if name == "" {
		name = "Port"
	}
	fmt.Fprintf(o.w, "%s:\n", name)
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  COMMODITY\tMODE\tQTY\tPRICE")
	for _, q := range p.Quotes() {
		fmt.Fprintf(tw, "  %s\t%s\t%d/%d\t%d\n", q.Commodity, q.Mode, q.Quantity, q.BaseQuantity, q.Price)
	}
	_ = tw.Flush()
}

func (o *Output) printMessageList(list MessageList) {
	if len(list.Messages) == 0 {
		fmt.Fprintf(o.w, "No messages in %s.\n", list.Box)
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	peer := "FROM"
	if list.Box == "sent" {
		peer = "TO"
	}
	fmt.Fprintf(tw, "ID\t\t%s\tSUBJECT\tDATE\n", peer)
	for _, m := range list.Messages {
		mark := " "
		if m.Unread() {
			mark = "*"
		}
		who := m.From
		if list.Box == "sent" {
			who = m.To
		}
		subject := m.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		if len(m.Attachments) > 0 {
			subject += fmt.Sprintf(" [%d att]", len(m.Attachments))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.ID, mark, who, subject, m.CreatedAt.Format(timeFormat))
	}
	_ = tw.Flush()
}

func (o *Output) printMessage(m model.Message) {
	fmt.Fprintf(o.w, "#%d %s\n", m.ID, m.Kind)
	fmt.Fprintf(o.w, "From:    %s\n", m.From)
	fmt.Fprintf(o.w, "To:      %s\n", m.To)
	fmt.Fprintf(o.w, "Date:    %s\n", m.CreatedAt.Format(timeFormat))
	fmt.Fprintf(o.w, "Subject: %s\n", m.Subject)
	if m.RelatedMessageID != nil {
		fmt.Fprintf(o.w, "Re:      #%d\n", *m.RelatedMessageID)
	}
	for _, a := range m.Attachments {
		fmt.Fprintf(o.w, "Attached: %s (id %d)\n", a.Filename, a.ID)
	}
	fmt.Fprintf(o.w, "\n%s\n", m.Body)
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
