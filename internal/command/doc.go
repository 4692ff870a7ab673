// Package command turns a line of player input into a structured Command.
//
// Grammar (tokens are separated by runs of whitespace, the verb and
// sub-actions are case-insensitive):
//
//	SCAN | HELP | RANKINGS | SEASON | EVENTS      trailing tokens ignored
//	MOVE <sector>                                 sector must be an integer
//	TRADE <action> <commodity> <qty>              qty must be an integer
//	MARKET [commodity] | ROUTE [commodity]
//	PLANET [INFO|COLONIZE <name>|LOAD <commodity> <qty>|UNLOAD <commodity> <qty>|UPGRADE CITADEL]
//	CORP [INFO|CREATE <name>|JOIN <name>|LEAVE|SAY <text>|DEPOSIT <qty>|WITHDRAW <qty>]
//	MINE [INFO|DEPLOY <qty>|SWEEP]
//	SHIPYARD [INFO|BUY <ship>|SELL|UPGRADE <CARGO|TURNS>]
//
// A missing sub-action is INFO. Sub-actions the grammar does not know are
// passed through with the remaining text as the name so the server can
// answer with its own error. Parsing never touches the network.
package command
