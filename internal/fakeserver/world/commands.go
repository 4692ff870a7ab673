package world

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcoot/sovereign-client/internal/command"
	"github.com/mcoot/sovereign-client/internal/model"
)

// Error codes carried in failed command responses
const (
	CodeUnknownCommand         = "UNKNOWN_COMMAND"
	CodeNotEnoughTurns         = "NOT_ENOUGH_TURNS"
	CodeInvalidMove            = "INVALID_MOVE"
	CodeTradeError             = "TRADE_ERROR"
	CodePlanetError            = "PLANET_ERROR"
	CodeCorpError              = "CORP_ERROR"
	CodeMineError              = "MINE_ERROR"
	CodeShipyardError          = "SHIPYARD_ERROR"
	CodePasswordChangeRequired = "PASSWORD_CHANGE_REQUIRED"
)

// Turn costs. Admin pilots pay nothing.
const (
	costScan           = 1
	costMove           = 1
	costTrade          = 1
	costColonize       = 5
	costPlanetCargo    = 1
	costUpgradeCitadel = 2
	costMine           = 1
	costShipyard       = 1
)

const (
	minePrice           = 50
	citadelBasePrice    = 1000
	cargoUpgradeSize    = 10
	cargoUpgradePrice   = 500
	turnsUpgradeSize    = 25
	turnsUpgradePrice   = 750
	xpPerTurn           = 10
	corpFounderRole     = "FOUNDER"
	corpMemberRole      = "MEMBER"
	maxCorpNameLength   = 32
	maxPlanetNameLength = 32
)

// CommandError is a rejected command. The pilot's state is still returned
// alongside it.
type CommandError struct {
	Code    string
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

func fail(code, format string, args ...any) *CommandError {
	return &CommandError{Code: code, Message: fmt.Sprintf(format, args...)}
}

type corp struct {
	id      string
	name    string
	credits int64
	members map[string]bool
}

// HelpText lists the command grammar one section per line
func HelpText() string {
	return strings.Join([]string{
		"Core: SCAN | MOVE {to} | TRADE {BUY|SELL} {ORE|ORGANICS|EQUIPMENT} {qty}",
		"Planets: PLANET INFO | PLANET COLONIZE [name] | PLANET LOAD {commodity} {qty} | PLANET UNLOAD {commodity} {qty} | PLANET UPGRADE CITADEL",
		"Corps: CORP INFO | CORP CREATE {name} | CORP JOIN {name} | CORP LEAVE | CORP SAY {message} | CORP DEPOSIT {credits} | CORP WITHDRAW {credits}",
		"Mines: MINE INFO | MINE DEPLOY {qty} | MINE SWEEP",
		"Shipyard: SHIPYARD | SHIPYARD UPGRADE {CARGO|TURNS}",
		"Info: RANKINGS | SEASON | MARKET [commodity] | ROUTE [commodity] | EVENTS | HELP",
	}, "\n")
}

// Execute runs one command for a pilot. The response always carries the
// post-command snapshot; err is a *CommandError when the command was
// rejected.
func (w *World) Execute(playerID string, cmd command.Command) (model.CommandResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[playerID]
	if !ok {
		return model.CommandResponse{}, ErrPlayerNotFound
	}

	msg, cerr := w.execute(p, cmd)
	resp := model.CommandResponse{Snapshot: w.snapshot(p)}
	if cerr != nil {
		resp.Message = cerr.Message
		resp.Error = cerr.Code
		return resp, cerr
	}
	resp.OK = true
	resp.Message = msg
	return resp, nil
}

func (w *World) execute(p *model.PlayerState, cmd command.Command) (string, *CommandError) {
	if p.MustChangePassword {
		return "", fail(CodePasswordChangeRequired, "Password change required. Use the Change Password form.")
	}

	switch command.Kind(strings.ToUpper(string(cmd.Type))) {
	case command.KindScan:
		return w.run(p, costScan, "ACTION", func() (string, *CommandError) {
			return fmt.Sprintf("Scan complete for sector %d.", p.SectorID), nil
		})
	case command.KindMove:
		return w.move(p, cmd.To)
	case command.KindTrade:
		return w.run(p, costTrade, "ACTION", func() (string, *CommandError) {
			return w.trade(p, cmd)
		})
	case command.KindPlanet:
		return w.planet(p, cmd)
	case command.KindCorp:
		return w.corp(p, cmd)
	case command.KindMine:
		return w.mine(p, cmd)
	case command.KindShipyard:
		return w.shipyard(p, cmd)
	case command.KindHelp:
		return HelpText(), nil
	case command.KindRankings:
		return w.rankings(), nil
	case command.KindSeason:
		return fmt.Sprintf("Season %d: %s.", p.SeasonID, p.SeasonName), nil
	case command.KindMarket:
		return w.marketReport(p, cmd.Commodity)
	case command.KindRoute:
		return w.route(cmd.Commodity)
	case command.KindEvents:
		return w.events(), nil
	default:
		return "", fail(CodeUnknownCommand, "Unknown command.")
	}
}

// run charges turns, applies fn and logs its message on success. Nothing is
// charged when fn fails.
func (w *World) run(p *model.PlayerState, cost int, kind string, fn func() (string, *CommandError)) (string, *CommandError) {
	if p.IsAdmin {
		cost = 0
	}
	if p.Turns < cost {
		return "", fail(CodeNotEnoughTurns, "Not enough turns.")
	}
	msg, cerr := fn()
	if cerr != nil {
		return "", cerr
	}
	p.Turns -= cost
	w.addLog(p.ID, kind, msg)
	w.gainXP(p, int64(cost)*xpPerTurn)
	return msg, nil
}

func (w *World) move(p *model.PlayerState, to int) (string, *CommandError) {
	if _, ok := w.sectors[to]; !ok || to < 1 {
		return "", fail(CodeInvalidMove, "Invalid destination sector.")
	}
	if !p.IsAdmin && !w.adjacent(p.SectorID, to) {
		return "", fail(CodeInvalidMove, "No warp to that sector.")
	}
	msg, cerr := w.run(p, costMove, "ACTION", func() (string, *CommandError) {
		p.SectorID = to
		return fmt.Sprintf("Moved to sector %d.", to), nil
	})
	if cerr != nil {
		return "", cerr
	}
	w.detonate(p)
	return msg, nil
}

// detonate springs any hostile mines in the pilot's new sector
func (w *World) detonate(p *model.PlayerState) {
	s := w.sectors[p.SectorID]
	if s.mines == 0 || s.mineOwner == p.ID || p.IsAdmin {
		return
	}
	lost := min(s.mines*10, int(p.Credits))
	p.Credits -= int64(lost)
	s.mines = 0
	s.mineOwner = ""
	w.addLog(p.ID, "COMBAT", fmt.Sprintf("Mines in sector %d detonated. Repairs cost %d credits.", s.id, lost))
}

func (w *World) adjacent(from, to int) bool {
	s, ok := w.sectors[from]
	if !ok {
		return false
	}
	for _, warp := range s.warps {
		if warp == to {
			return true
		}
	}
	return false
}

func (w *World) trade(p *model.PlayerState, cmd command.Command) (string, *CommandError) {
	s := w.sectors[p.SectorID]
	if s.port == nil {
		return "", fail(CodeTradeError, "No port in this sector.")
	}
	c, ok := model.ParseCommodity(cmd.Commodity)
	if !ok {
		return "", fail(CodeTradeError, "Unknown commodity.")
	}
	if cmd.Quantity <= 0 {
		return "", fail(CodeTradeError, "Quantity must be positive.")
	}
	m := s.port.markets[c]
	unit := s.price(c, w.clock.Now())
	total := int64(unit) * int64(cmd.Quantity)
	qty := cmd.Quantity

	var verb string
	switch strings.ToUpper(cmd.Action) {
	case "BUY":
		if m.mode != ModeSell {
			return "", fail(CodeTradeError, "This port is not selling %s.", c)
		}
		if m.qty < qty {
			return "", fail(CodeTradeError, "Port does not have that much %s.", c)
		}
		if p.CargoFree() < qty {
			return "", fail(CodeTradeError, "Not enough cargo space.")
		}
		if p.Credits < total {
			return "", fail(CodeTradeError, "Not enough credits.")
		}
		m.qty -= qty
		p.Credits -= total
		addCargo(p, c, qty)
		verb = "bought"
	case "SELL":
		if m.mode != ModeBuy {
			return "", fail(CodeTradeError, "This port is not buying %s.", c)
		}
		if p.Cargo(c) < qty {
			return "", fail(CodeTradeError, "You do not have that much %s.", c)
		}
		if m.qty+qty > m.baseQty {
			return "", fail(CodeTradeError, "Port demand is saturated right now.")
		}
		m.qty += qty
		p.Credits += total
		addCargo(p, c, -qty)
		verb = "sold"
	default:
		return "", fail(CodeTradeError, "Trade action must be BUY or SELL.")
	}
	return fmt.Sprintf("You %s %d %s at %d credits each (%d total).", verb, qty, c, unit, total), nil
}

func addCargo(p *model.PlayerState, c model.Commodity, delta int) {
	switch c {
	case model.CommodityOre:
		p.CargoOre += delta
	case model.CommodityOrganics:
		p.CargoOrganics += delta
	case model.CommodityEquipment:
		p.CargoEquipment += delta
	}
}

func (w *World) planet(p *model.PlayerState, cmd command.Command) (string, *CommandError) {
	s := w.sectors[p.SectorID]
	if s.planet == nil {
		return "", fail(CodePlanetError, "No planet in this sector.")
	}
	pl := s.planet

	switch strings.ToUpper(cmd.Action) {
	case command.ActionInfo, "":
		owner := pl.Owner
		if owner == "" {
			owner = "nobody"
		}
		return fmt.Sprintf("Planet %s, owned by %s. Citadel level %d. Storage %d/%d/%d of %d.",
			pl.Name, owner, pl.CitadelLevel,
			pl.StorageOre, pl.StorageOrganics, pl.StorageEquipment, pl.StorageMax), nil
	case command.ActionColonize:
		return w.run(p, costColonize, "ACTION", func() (string, *CommandError) {
			if pl.ownerID != "" {
				return "", fail(CodePlanetError, "This planet is already colonized.")
			}
			name := strings.TrimSpace(cmd.Name)
			if len(name) > maxPlanetNameLength {
				return "", fail(CodePlanetError, "Planet name is too long.")
			}
			if name != "" {
				pl.Name = titleCase(name)
			}
			pl.ownerID = p.ID
			pl.OwnerType = "PLAYER"
			pl.Owner = p.Username
			return fmt.Sprintf("You colonized %s.", pl.Name), nil
		})
	case command.ActionLoad, command.ActionUnload:
		return w.run(p, costPlanetCargo, "ACTION", func() (string, *CommandError) {
			return planetCargo(p, pl, cmd)
		})
	case command.ActionUpgradeCitadel:
		return w.run(p, costUpgradeCitadel, "ACTION", func() (string, *CommandError) {
			if pl.ownerID != p.ID {
				return "", fail(CodePlanetError, "You do not own this planet.")
			}
			price := int64(citadelBasePrice * (pl.CitadelLevel + 1))
			if p.Credits < price {
				return "", fail(CodePlanetError, "Citadel upgrade costs %d credits.", price)
			}
			p.Credits -= price
			pl.CitadelLevel++
			return fmt.Sprintf("Citadel upgraded to level %d.", pl.CitadelLevel), nil
		})
	default:
		return "", fail(CodePlanetError, "Unknown planet action.")
	}
}

func planetCargo(p *model.PlayerState, pl *planetState, cmd command.Command) (string, *CommandError) {
	if pl.ownerID != p.ID {
		return "", fail(CodePlanetError, "You do not own this planet.")
	}
	c, ok := model.ParseCommodity(cmd.Commodity)
	if !ok || cmd.Quantity <= 0 {
		return "", fail(CodePlanetError, "Specify a commodity and a positive quantity.")
	}
	storage := planetStorage(pl, c)
	stored := pl.StorageOre + pl.StorageOrganics + pl.StorageEquipment

	if strings.ToUpper(cmd.Action) == command.ActionLoad {
		// LOAD moves goods from the planet into the hold
		if *storage < cmd.Quantity {
			return "", fail(CodePlanetError, "The planet does not store that much %s.", c)
		}
		if p.CargoFree() < cmd.Quantity {
			return "", fail(CodePlanetError, "Not enough cargo space.")
		}
		*storage -= cmd.Quantity
		addCargo(p, c, cmd.Quantity)
		return fmt.Sprintf("Loaded %d %s from %s.", cmd.Quantity, c, pl.Name), nil
	}

	if p.Cargo(c) < cmd.Quantity {
		return "", fail(CodePlanetError, "You do not have that much %s.", c)
	}
	if stored+cmd.Quantity > pl.StorageMax {
		return "", fail(CodePlanetError, "Planet storage is full.")
	}
	*storage += cmd.Quantity
	addCargo(p, c, -cmd.Quantity)
	return fmt.Sprintf("Unloaded %d %s to %s.", cmd.Quantity, c, pl.Name), nil
}

func planetStorage(pl *planetState, c model.Commodity) *int {
	switch c {
	case model.CommodityOrganics:
		return &pl.StorageOrganics
	case model.CommodityEquipment:
		return &pl.StorageEquipment
	default:
		return &pl.StorageOre
	}
}

func (w *World) corp(p *model.PlayerState, cmd command.Command) (string, *CommandError) {
	current := w.corps[strings.ToLower(p.CorpName)]

	switch strings.ToUpper(cmd.Action) {
	case command.ActionInfo, "":
		if current == nil {
			return "You are not in a corporation.", nil
		}
		return fmt.Sprintf("%s: %d members, %d credits in the treasury.", current.name, len(current.members), current.credits), nil
	case command.ActionCreate:
		if current != nil {
			return "", fail(CodeCorpError, "You are already in a corporation.")
		}
		name := titleCase(strings.TrimSpace(cmd.Name))
		if name == "" || len(name) > maxCorpNameLength {
			return "", fail(CodeCorpError, "Corporation name must be 1-%d characters.", maxCorpNameLength)
		}
		if _, exists := w.corps[strings.ToLower(name)]; exists {
			return "", fail(CodeCorpError, "That corporation already exists.")
		}
		c := &corp{id: fmt.Sprintf("corp-%d", len(w.corps)+1), name: name, members: map[string]bool{p.ID: true}}
		w.corps[strings.ToLower(name)] = c
		joinCorp(p, c, corpFounderRole)
		msg := fmt.Sprintf("Corporation %s founded.", name)
		w.addLog(p.ID, "SYSTEM", msg)
		return msg, nil
	case command.ActionJoin:
		if current != nil {
			return "", fail(CodeCorpError, "You are already in a corporation.")
		}
		c, ok := w.corps[strings.ToLower(strings.TrimSpace(cmd.Name))]
		if !ok {
			return "", fail(CodeCorpError, "No such corporation.")
		}
		c.members[p.ID] = true
		joinCorp(p, c, corpMemberRole)
		msg := fmt.Sprintf("You joined %s.", c.name)
		w.addLog(p.ID, "SYSTEM", msg)
		return msg, nil
	}

	if current == nil {
		return "", fail(CodeCorpError, "You are not in a corporation.")
	}

	switch strings.ToUpper(cmd.Action) {
	case "LEAVE":
		delete(current.members, p.ID)
		if len(current.members) == 0 {
			delete(w.corps, strings.ToLower(current.name))
		}
		joinCorp(p, nil, "")
		msg := fmt.Sprintf("You left %s.", current.name)
		w.addLog(p.ID, "SYSTEM", msg)
		return msg, nil
	case command.ActionSay:
		text := strings.TrimSpace(cmd.Text)
		if text == "" {
			return "", fail(CodeCorpError, "Say what?")
		}
		line := fmt.Sprintf("[%s] %s: %s", current.name, p.Username, text)
		for id := range current.members {
			w.addLog(id, "SYSTEM", line)
		}
		return "Message sent to your corporation.", nil
	case command.ActionDeposit:
		amount := int64(cmd.Quantity)
		if amount <= 0 || p.Credits < amount {
			return "", fail(CodeCorpError, "Not enough credits.")
		}
		p.Credits -= amount
		current.credits += amount
		w.syncCorpCredits(current)
		return fmt.Sprintf("Deposited %d credits.", amount), nil
	case command.ActionWithdraw:
		amount := int64(cmd.Quantity)
		if p.CorpRole != corpFounderRole {
			return "", fail(CodeCorpError, "Only the founder can withdraw.")
		}
		if amount <= 0 || current.credits < amount {
			return "", fail(CodeCorpError, "The treasury does not hold that much.")
		}
		current.credits -= amount
		p.Credits += amount
		w.syncCorpCredits(current)
		return fmt.Sprintf("Withdrew %d credits.", amount), nil
	default:
		return "", fail(CodeCorpError, "Unknown corporation action.")
	}
}

func joinCorp(p *model.PlayerState, c *corp, role string) {
	if c == nil {
		p.CorpID, p.CorpName, p.CorpRole, p.CorpCredits = "", "", "", 0
		return
	}
	p.CorpID, p.CorpName, p.CorpRole, p.CorpCredits = c.id, c.name, role, c.credits
}

func (w *World) syncCorpCredits(c *corp) {
	for id := range c.members {
		if member, ok := w.players[id]; ok {
			member.CorpCredits = c.credits
		}
	}
}

func (w *World) mine(p *model.PlayerState, cmd command.Command) (string, *CommandError) {
	s := w.sectors[p.SectorID]
	switch strings.ToUpper(cmd.Action) {
	case command.ActionInfo, "":
		return fmt.Sprintf("%d mines in sector %d.", s.mines, s.id), nil
	case command.ActionDeploy:
		return w.run(p, costMine, "ACTION", func() (string, *CommandError) {
			if s.protectorate {
				return "", fail(CodeMineError, "Mines cannot be deployed in protectorate space.")
			}
			if cmd.Quantity <= 0 {
				return "", fail(CodeMineError, "Quantity must be positive.")
			}
			price := int64(cmd.Quantity * minePrice)
			if p.Credits < price {
				return "", fail(CodeMineError, "Not enough credits.")
			}
			p.Credits -= price
			s.mines += cmd.Quantity
			s.mineOwner = p.ID
			return fmt.Sprintf("Deployed %d mines in sector %d.", cmd.Quantity, s.id), nil
		})
	case "SWEEP":
		return w.run(p, costMine, "ACTION", func() (string, *CommandError) {
			if s.mines == 0 {
				return "", fail(CodeMineError, "No mines to sweep.")
			}
			swept := s.mines
			s.mines = 0
			s.mineOwner = ""
			return fmt.Sprintf("Swept %d mines from sector %d.", swept, s.id), nil
		})
	default:
		return "", fail(CodeMineError, "Unknown mine action.")
	}
}

func (w *World) shipyard(p *model.PlayerState, cmd command.Command) (string, *CommandError) {
	s := w.sectors[p.SectorID]
	if !s.shipyard {
		return "", fail(CodeShipyardError, "No shipyard in this sector.")
	}
	switch strings.ToUpper(cmd.Action) {
	case command.ActionInfo, "":
		return fmt.Sprintf("Shipyard: UPGRADE CARGO +%d holds for %d credits, UPGRADE TURNS +%d turns for %d credits.",
			cargoUpgradeSize, cargoUpgradePrice, turnsUpgradeSize, turnsUpgradePrice), nil
	case command.ActionUpgrade:
		return w.run(p, costShipyard, "ACTION", func() (string, *CommandError) {
			switch strings.ToUpper(cmd.Name) {
			case "CARGO":
				if p.Credits < cargoUpgradePrice {
					return "", fail(CodeShipyardError, "Not enough credits.")
				}
				p.Credits -= cargoUpgradePrice
				p.CargoMax += cargoUpgradeSize
				return fmt.Sprintf("Cargo holds expanded to %d.", p.CargoMax), nil
			case "TURNS":
				if p.Credits < turnsUpgradePrice {
					return "", fail(CodeShipyardError, "Not enough credits.")
				}
				p.Credits -= turnsUpgradePrice
				p.TurnsMax += turnsUpgradeSize
				p.Turns += turnsUpgradeSize
				return fmt.Sprintf("Turn capacity raised to %d.", p.TurnsMax), nil
			default:
				return "", fail(CodeShipyardError, "Upgrade CARGO or TURNS.")
			}
		})
	default:
		return "", fail(CodeShipyardError, "The shipyard only offers upgrades this season.")
	}
}

func (w *World) rankings() string {
	players := make([]*model.PlayerState, 0, len(w.players))
	for _, p := range w.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].XP != players[j].XP {
			return players[i].XP > players[j].XP
		}
		return players[i].Username < players[j].Username
	})

	lines := []string{"Rankings:"}
	for i, p := range players {
		if i == 10 {
			break
		}
		lines = append(lines, fmt.Sprintf("%2d. %-20s L%d %s %d xp", i+1, p.Username, p.Level, p.Rank, p.XP))
	}
	return strings.Join(lines, "\n")
}

func (w *World) marketReport(p *model.PlayerState, filter string) (string, *CommandError) {
	s := w.sectors[p.SectorID]
	if s.port == nil {
		return "", fail(CodeTradeError, "No port in this sector.")
	}
	view := s.view(w.clock.Now())
	lines := []string{fmt.Sprintf("Market at %s:", s.port.name)}
	for _, q := range view.Port.Quotes() {
		if filter != "" && !strings.EqualFold(filter, string(q.Commodity)) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-9s %-4s %4d/%-4d @ %d", q.Commodity, q.Mode, q.Quantity, q.BaseQuantity, q.Price))
	}
	return strings.Join(lines, "\n"), nil
}

// route finds the most profitable buy/sell sector pair per commodity
func (w *World) route(filter string) (string, *CommandError) {
	now := w.clock.Now()
	ids := make([]int, 0, len(w.sectors))
	for id := range w.sectors {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	lines := []string{"Trade routes:"}
	for _, c := range model.Commodities {
		if filter != "" && !strings.EqualFold(filter, string(c)) {
			continue
		}
		buyAt, sellAt, buyPrice, sellPrice := 0, 0, 0, 0
		for _, id := range ids {
			s := w.sectors[id]
			if s.port == nil {
				continue
			}
			price := s.price(c, now)
			switch s.port.markets[c].mode {
			case ModeSell:
				if buyAt == 0 || price < buyPrice {
					buyAt, buyPrice = id, price
				}
			case ModeBuy:
				if sellAt == 0 || price > sellPrice {
					sellAt, sellPrice = id, price
				}
			}
		}
		if buyAt == 0 || sellAt == 0 {
			lines = append(lines, fmt.Sprintf("%s: no route available", c))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: buy at sector %d for %d, sell at sector %d for %d (+%d per unit)",
			c, buyAt, buyPrice, sellAt, sellPrice, sellPrice-buyPrice))
	}
	return strings.Join(lines, "\n"), nil
}

func (w *World) events() string {
	now := w.clock.Now()
	ids := make([]int, 0)
	for id, s := range w.sectors {
		if s.event != nil && now.Before(s.event.EndsAt) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "No active events."
	}
	sort.Ints(ids)
	lines := []string{"Active events:"}
	for _, id := range ids {
		ev := w.sectors[id].event
		lines = append(lines, fmt.Sprintf("Sector %d: %s (%s) until %s", id, ev.Title, ev.Kind, ev.EndsAt.UTC().Format("2006-01-02 15:04")))
	}
	return strings.Join(lines, "\n")
}

func (w *World) gainXP(p *model.PlayerState, xp int64) {
	if xp <= 0 {
		return
	}
	p.XP += xp
	for p.XP >= p.NextLevelXP {
		p.Level++
		p.Rank = rankForLevel(p.Level)
		p.NextLevelXP = xpForLevel(p.Level + 1)
		w.addLog(p.ID, "SYSTEM", fmt.Sprintf("Promoted to level %d (%s).", p.Level, p.Rank))
	}
}

func xpForLevel(level int) int64 {
	return int64(100 * (level - 1) * level / 2)
}

var ranks = []string{"Cadet", "Ensign", "Lieutenant", "Commander", "Captain", "Commodore", "Admiral"}

func rankForLevel(level int) string {
	idx := (level - 1) / 3
	if idx >= len(ranks) {
		idx = len(ranks) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return ranks[idx]
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
