package command

import (
	"strconv"
	"strings"
)

// Parse converts a line of input into a Command. It is pure: the same line
// always yields the same result.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, &ParseError{Line: line, Err: ErrEmpty}
	}

	kind := Kind(strings.ToUpper(fields[0]))
	args := fields[1:]

	switch kind {
	case KindScan, KindHelp, KindRankings, KindSeason, KindEvents:
		return Command{Type: kind}, nil
	case KindMove:
		return parseMove(line, args)
	case KindTrade:
		return parseTrade(line, args)
	case KindMarket, KindRoute:
		cmd := Command{Type: kind}
		if len(args) > 0 {
			cmd.Commodity = strings.ToUpper(args[0])
		}
		return cmd, nil
	case KindPlanet:
		return parsePlanet(line, args)
	case KindCorp:
		return parseCorp(line, args)
	case KindMine:
		return parseMine(line, args)
	case KindShipyard:
		action, rest := subAction(args)
		return Command{Type: kind, Action: action, Name: strings.ToUpper(rest)}, nil
	default:
		return Command{}, fail(line, ErrUnknownCommand, "unknown command %q", fields[0])
	}
}

func parseMove(line string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, fail(line, ErrMissingArgument, "MOVE requires a sector number")
	}
	to, err := strconv.Atoi(args[0])
	if err != nil {
		return Command{}, fail(line, ErrNotANumber, "MOVE sector %q is not a number", args[0])
	}
	return Command{Type: KindMove, To: to}, nil
}

func parseTrade(line string, args []string) (Command, error) {
	if len(args) < 3 {
		return Command{}, fail(line, ErrMissingArgument, "TRADE requires an action, a commodity and a quantity")
	}
	qty, err := strconv.Atoi(args[2])
	if err != nil {
		return Command{}, fail(line, ErrNotANumber, "TRADE quantity %q is not a number", args[2])
	}
	return Command{
		Type:      KindTrade,
		Action:    strings.ToUpper(args[0]),
		Commodity: strings.ToUpper(args[1]),
		Quantity:  qty,
	}, nil
}

func parsePlanet(line string, args []string) (Command, error) {
	action, rest := subAction(args)
	cmd := Command{Type: KindPlanet, Action: action}

	switch action {
	case ActionLoad, ActionUnload:
		commodity, qty, err := commodityAndQuantity(line, "PLANET "+action, args[1:])
		if err != nil {
			return Command{}, err
		}
		cmd.Commodity = commodity
		cmd.Quantity = qty
	case ActionUpgrade:
		// "UPGRADE CITADEL" is the spelling players type; the server wants one token.
		if strings.EqualFold(rest, "CITADEL") {
			cmd.Action = ActionUpgradeCitadel
		} else {
			cmd.Name = rest
		}
	default:
		cmd.Name = rest
	}
	return cmd, nil
}

func parseCorp(line string, args []string) (Command, error) {
	action, rest := subAction(args)
	cmd := Command{Type: KindCorp, Action: action}

	switch action {
	case ActionCreate, ActionJoin:
		cmd.Name = rest
	case ActionSay:
		cmd.Text = rest
	case ActionDeposit, ActionWithdraw:
		qty, err := quantityArg(line, "CORP "+action, args[1:])
		if err != nil {
			return Command{}, err
		}
		cmd.Quantity = qty
	default:
		cmd.Name = rest
		cmd.Text = rest
	}
	return cmd, nil
}

func parseMine(line string, args []string) (Command, error) {
	action, _ := subAction(args)
	cmd := Command{Type: KindMine, Action: action}

	if action == ActionDeploy {
		qty, err := quantityArg(line, "MINE DEPLOY", args[1:])
		if err != nil {
			return Command{}, err
		}
		cmd.Quantity = qty
	}
	return cmd, nil
}

// subAction returns the upper-cased sub-action (INFO when absent) and the
// remaining tokens joined by single spaces.
func subAction(args []string) (string, string) {
	if len(args) == 0 {
		return ActionInfo, ""
	}
	return strings.ToUpper(args[0]), strings.Join(args[1:], " ")
}

func quantityArg(line, what string, args []string) (int, error) {
	if len(args) == 0 {
		return 0, fail(line, ErrMissingArgument, "%s requires a quantity", what)
	}
	qty, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fail(line, ErrNotANumber, "%s quantity %q is not a number", what, args[0])
	}
	return qty, nil
}

func commodityAndQuantity(line, what string, args []string) (string, int, error) {
	if len(args) < 2 {
		return "", 0, fail(line, ErrMissingArgument, "%s requires a commodity and a quantity", what)
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fail(line, ErrNotANumber, "%s quantity %q is not a number", what, args[1])
	}
	return strings.ToUpper(args[0]), qty, nil
}
