package command

import (
	"strconv"
	"strings"
)

// Kind is the verb of a command
type Kind string

const (
	KindScan     Kind = "SCAN"
	KindMove     Kind = "MOVE"
	KindTrade    Kind = "TRADE"
	KindPlanet   Kind = "PLANET"
	KindCorp     Kind = "CORP"
	KindMine     Kind = "MINE"
	KindShipyard Kind = "SHIPYARD"
	KindHelp     Kind = "HELP"
	KindRankings Kind = "RANKINGS"
	KindSeason   Kind = "SEASON"
	KindMarket   Kind = "MARKET"
	KindRoute    Kind = "ROUTE"
	KindEvents   Kind = "EVENTS"
)

// Sub-actions with argument rules of their own
const (
	ActionInfo           = "INFO"
	ActionColonize       = "COLONIZE"
	ActionLoad           = "LOAD"
	ActionUnload         = "UNLOAD"
	ActionUpgrade        = "UPGRADE"
	ActionUpgradeCitadel = "UPGRADE_CITADEL"
	ActionCreate         = "CREATE"
	ActionJoin           = "JOIN"
	ActionSay            = "SAY"
	ActionDeposit        = "DEPOSIT"
	ActionWithdraw       = "WITHDRAW"
	ActionDeploy         = "DEPLOY"
)

// Command is a parsed player instruction. It marshals directly into the
// body of the command endpoint.
type Command struct {
	Type      Kind   `json:"type"`
	To        int    `json:"to,omitempty"`
	Action    string `json:"action,omitempty"`
	Commodity string `json:"commodity,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	Name      string `json:"name,omitempty"`
	Text      string `json:"text,omitempty"`
}

// String renders the command back into canonical input text
func (c Command) String() string {
	parts := []string{string(c.Type)}
	switch c.Type {
	case KindMove:
		parts = append(parts, strconv.Itoa(c.To))
	case KindTrade:
		parts = append(parts, c.Action, c.Commodity, strconv.Itoa(c.Quantity))
	case KindMarket, KindRoute:
		if c.Commodity != "" {
			parts = append(parts, c.Commodity)
		}
	case KindPlanet, KindCorp, KindMine, KindShipyard:
		parts = append(parts, c.Action)
		switch {
		case c.Commodity != "":
			parts = append(parts, c.Commodity, strconv.Itoa(c.Quantity))
		case c.Quantity != 0:
			parts = append(parts, strconv.Itoa(c.Quantity))
		case c.Text != "" && c.Action == ActionSay:
			parts = append(parts, c.Text)
		case c.Name != "":
			parts = append(parts, c.Name)
		}
	}
	return strings.Join(parts, " ")
}

// Usage lists one line of help per verb
func Usage() []string {
	return []string{
		"SCAN | MOVE <sector> | TRADE <BUY|SELL> <ORE|ORGANICS|EQUIPMENT> <qty>",
		"PLANET [INFO | COLONIZE <name> | LOAD <commodity> <qty> | UNLOAD <commodity> <qty> | UPGRADE CITADEL]",
		"CORP [INFO | CREATE <name> | JOIN <name> | LEAVE | SAY <text> | DEPOSIT <credits> | WITHDRAW <credits>]",
		"MINE [INFO | DEPLOY <qty> | SWEEP]",
		"SHIPYARD [INFO | BUY <ship> | SELL | UPGRADE <CARGO|TURNS>]",
		"MARKET [commodity] | ROUTE [commodity] | EVENTS | RANKINGS | SEASON | HELP",
	}
}
