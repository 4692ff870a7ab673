package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sovereign-client/internal/command"
	"github.com/mcoot/sovereign-client/internal/dependencies/mocks"
	"github.com/mcoot/sovereign-client/internal/model"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type WorldTestSuite struct {
	suite.Suite
	clock *mocks.MockClock
	world *World
}

func TestWorldTestSuite(t *testing.T) {
	suite.Run(t, new(WorldTestSuite))
}

func (s *WorldTestSuite) SetupTest() {
	s.clock = mocks.NewMockClock(epoch)
	s.world = s.newWorld(DefaultConfig())
}

// newWorld builds a deterministic universe: with every random draw at 0,
// all sectors have a port and warp to sector 1.
func (s *WorldTestSuite) newWorld(cfg Config) *World {
	w := New(s.clock, mocks.NewMockRandom(), cfg)
	_, err := w.AddPlayer("p1", "u1", "alice")
	s.Require().NoError(err)
	_, err = w.AddPlayer("p2", "u2", "bob")
	s.Require().NoError(err)
	return w
}

func (s *WorldTestSuite) exec(playerID string, line string) (model.CommandResponse, error) {
	cmd, err := command.Parse(line)
	s.Require().NoError(err)
	return s.world.Execute(playerID, cmd)
}

func (s *WorldTestSuite) requireCode(err error, code string) {
	var cerr *CommandError
	s.Require().ErrorAs(err, &cerr)
	s.Equal(code, cerr.Code)
}

func (s *WorldTestSuite) TestNewPlayerStartsInSectorOne() {
	snap, err := s.world.Snapshot("p1")
	s.Require().NoError(err)

	s.Equal(1, snap.State.SectorID)
	s.Equal(int64(1000), snap.State.Credits)
	s.Equal(100, snap.State.Turns)
	s.Equal("Cadet", snap.State.Rank)
	s.Require().NotNil(snap.Sector)
	s.True(snap.Sector.IsProtectorate)
	s.True(snap.Sector.HasShipyard)
	s.Require().Len(snap.Logs, 1)
	s.Contains(snap.Logs[0].Message, "Welcome aboard, alice")
}

func (s *WorldTestSuite) TestAddPlayerTwice() {
	_, err := s.world.AddPlayer("p1", "u1", "alice")
	s.ErrorIs(err, ErrPlayerExists)
}

func (s *WorldTestSuite) TestSnapshotUnknownPlayer() {
	_, err := s.world.Snapshot("nope")
	s.ErrorIs(err, ErrPlayerNotFound)
}

func (s *WorldTestSuite) TestScanCostsATurn() {
	resp, err := s.exec("p1", "scan")
	s.Require().NoError(err)

	s.True(resp.OK)
	s.Equal("Scan complete for sector 1.", resp.Message)
	s.Equal(99, resp.State.Turns)
	s.Equal(int64(10), resp.State.XP)
	s.Equal("Scan complete for sector 1.", resp.Logs[0].Message)
	s.Equal("ACTION", resp.Logs[0].Kind)
}

func (s *WorldTestSuite) TestMoveAlongWarp() {
	resp, err := s.exec("p1", "MOVE 2")
	s.Require().NoError(err)

	s.Equal("Moved to sector 2.", resp.Message)
	s.Equal(2, resp.State.SectorID)
	s.Equal(2, resp.Sector.ID)
	s.Equal([]int{1, 3}, resp.Sector.Warps)
}

func (s *WorldTestSuite) TestMoveWithoutWarpFailsWithState() {
	_, err := s.exec("p1", "MOVE 2")
	s.Require().NoError(err)

	resp, err := s.exec("p1", "MOVE 5")
	s.requireCode(err, CodeInvalidMove)

	s.False(resp.OK)
	s.Equal("No warp to that sector.", resp.Message)
	s.Equal(CodeInvalidMove, resp.Error)
	s.Require().NotNil(resp.State)
	s.Equal(2, resp.State.SectorID)
	s.Equal(99, resp.State.Turns)
}

func (s *WorldTestSuite) TestMoveToMissingSector() {
	resp, err := s.exec("p1", "MOVE 99")
	s.requireCode(err, CodeInvalidMove)
	s.Equal("Invalid destination sector.", resp.Message)
}

func (s *WorldTestSuite) TestAdminMovesAnywhereForFree() {
	s.Require().NoError(s.world.SetAdmin("p1", true))
	_, err := s.exec("p1", "MOVE 2")
	s.Require().NoError(err)

	resp, err := s.exec("p1", "MOVE 7")
	s.Require().NoError(err)
	s.Equal(7, resp.State.SectorID)
	s.Equal(100, resp.State.Turns)
}

func (s *WorldTestSuite) TestNotEnoughTurns() {
	cfg := DefaultConfig()
	cfg.StartingTurns = 1
	s.world = s.newWorld(cfg)

	_, err := s.exec("p1", "SCAN")
	s.Require().NoError(err)

	resp, err := s.exec("p1", "SCAN")
	s.requireCode(err, CodeNotEnoughTurns)
	s.Equal("Not enough turns.", resp.Message)
	s.Equal(0, resp.State.Turns)
}

func (s *WorldTestSuite) TestPasswordChangeGate() {
	s.Require().NoError(s.world.SetMustChangePassword("p1", true))

	resp, err := s.exec("p1", "SCAN")
	s.requireCode(err, CodePasswordChangeRequired)
	s.Equal("Password change required. Use the Change Password form.", resp.Message)
	s.Equal(100, resp.State.Turns)
}

func (s *WorldTestSuite) TestUnknownCommandType() {
	resp, err := s.world.Execute("p1", command.Command{Type: "DANCE"})
	s.requireCode(err, CodeUnknownCommand)
	s.False(resp.OK)
}

func (s *WorldTestSuite) TestBuyThenSellAcrossPorts() {
	_, err := s.exec("p1", "MOVE 2")
	s.Require().NoError(err)

	resp, err := s.exec("p1", "TRADE BUY ORE 10")
	s.Require().NoError(err)
	s.Equal("You bought 10 ORE at 10 credits each (100 total).", resp.Message)
	s.Equal(int64(900), resp.State.Credits)
	s.Equal(10, resp.State.CargoOre)
	s.Equal(490, resp.Sector.Port.OreQty)

	_, err = s.exec("p1", "MOVE 1")
	s.Require().NoError(err)

	resp, err = s.exec("p1", "TRADE SELL ORE 10")
	s.Require().NoError(err)
	s.Equal("You sold 10 ORE at 15 credits each (150 total).", resp.Message)
	s.Equal(int64(1050), resp.State.Credits)
	s.Equal(0, resp.State.CargoOre)
}

func (s *WorldTestSuite) TestBuyFromBuyingPortFails() {
	resp, err := s.exec("p1", "TRADE BUY ORE 1")
	s.requireCode(err, CodeTradeError)
	s.Equal("This port is not selling ORE.", resp.Message)
	s.Equal(100, resp.State.Turns)
}

func (s *WorldTestSuite) TestBuyBeyondCargoSpace() {
	_, err := s.exec("p1", "MOVE 2")
	s.Require().NoError(err)

	resp, err := s.exec("p1", "TRADE BUY ORE 51")
	s.requireCode(err, CodeTradeError)
	s.Equal("Not enough cargo space.", resp.Message)
}

func (s *WorldTestSuite) TestSellIntoSaturatedPort() {
	cfg := DefaultConfig()
	cfg.CargoMax = 1000
	cfg.StartingCredits = 100000
	s.world = s.newWorld(cfg)

	_, err := s.exec("p1", "MOVE 2")
	s.Require().NoError(err)
	_, err = s.exec("p1", "TRADE BUY ORE 300")
	s.Require().NoError(err)
	_, err = s.exec("p1", "MOVE 1")
	s.Require().NoError(err)

	resp, err := s.exec("p1", "TRADE SELL ORE 260")
	s.requireCode(err, CodeTradeError)
	s.Equal("Port demand is saturated right now.", resp.Message)
	s.Equal(300, resp.State.CargoOre)
}

func (s *WorldTestSuite) TestAnomalyEventMovesPrice() {
	err := s.world.SetSectorEvent(1, &model.Event{
		Kind:         model.EventAnomaly,
		Commodity:    "ORGANICS",
		PricePercent: 200,
		Title:        "Blight",
		EndsAt:       epoch.Add(time.Hour),
	})
	s.Require().NoError(err)

	snap, err := s.world.Snapshot("p1")
	s.Require().NoError(err)
	s.Equal(30, snap.Sector.Port.OrganicsPrice)
	s.Require().NotNil(snap.Sector.Event)
	s.Equal(1, snap.Sector.Event.SectorID)

	resp, err := s.exec("p1", "EVENTS")
	s.Require().NoError(err)
	s.Contains(resp.Message, "Sector 1: Blight (ANOMALY)")

	s.clock.Advance(2 * time.Hour)
	snap, err = s.world.Snapshot("p1")
	s.Require().NoError(err)
	s.Nil(snap.Sector.Event)
	s.Equal(15, snap.Sector.Port.OrganicsPrice)
}

func (s *WorldTestSuite) TestSetEventOnMissingSector() {
	s.ErrorIs(s.world.SetSectorEvent(500, nil), ErrSectorNotFound)
}

func (s *WorldTestSuite) TestLogsAreCappedNewestFirst() {
	for i := 0; i < 25; i++ {
		s.clock.Advance(time.Second)
		_, err := s.exec("p1", "SCAN")
		s.Require().NoError(err)
	}
	_, err := s.exec("p1", "MOVE 2")
	s.Require().NoError(err)

	snap, err := s.world.Snapshot("p1")
	s.Require().NoError(err)
	s.Len(snap.Logs, RecentLogLimit)
	s.Equal("Moved to sector 2.", snap.Logs[0].Message)
	for i := 1; i < len(snap.Logs); i++ {
		s.False(snap.Logs[i].At.After(snap.Logs[i-1].At))
	}
}

func (s *WorldTestSuite) TestLevelUpLogsPromotion() {
	for i := 0; i < 10; i++ {
		_, err := s.exec("p1", "SCAN")
		s.Require().NoError(err)
	}
	snap, err := s.world.Snapshot("p1")
	s.Require().NoError(err)
	s.Equal(2, snap.State.Level)
	s.Equal(int64(300), snap.State.NextLevelXP)
	s.Equal("Promoted to level 2 (Cadet).", snap.Logs[0].Message)
}

func (s *WorldTestSuite) TestPlanetColonizeAndCargo() {
	_, err := s.exec("p1", "MOVE 3")
	s.Require().NoError(err)

	resp, err := s.exec("p1", "PLANET COLONIZE new haven")
	s.Require().NoError(err)
	s.Equal("You colonized New Haven.", resp.Message)
	s.Equal(94, resp.State.Turns)
	s.Equal("alice", resp.Sector.Planet.Owner)

	_, err = s.exec("p2", "MOVE 3")
	s.Require().NoError(err)
	resp, err = s.exec("p2", "PLANET COLONIZE")
	s.requireCode(err, CodePlanetError)
	s.Equal("This planet is already colonized.", resp.Message)

	resp, err = s.exec("p1", "PLANET UNLOAD ORE 5")
	s.requireCode(err, CodePlanetError)
	s.Equal("You do not have that much ORE.", resp.Message)
}

func (s *WorldTestSuite) TestPlanetMissing() {
	resp, err := s.exec("p1", "PLANET INFO")
	s.requireCode(err, CodePlanetError)
	s.Equal("No planet in this sector.", resp.Message)
}

func (s *WorldTestSuite) TestCorpLifecycle() {
	resp, err := s.exec("p1", "CORP CREATE star traders")
	s.Require().NoError(err)
	s.Equal("Corporation Star Traders founded.", resp.Message)
	s.Equal("FOUNDER", resp.State.CorpRole)

	_, err = s.exec("p2", "CORP JOIN star traders")
	s.Require().NoError(err)

	resp, err = s.exec("p2", "CORP DEPOSIT 200")
	s.Require().NoError(err)
	s.Equal(int64(800), resp.State.Credits)
	s.Equal(int64(200), resp.State.CorpCredits)

	_, err = s.exec("p2", "CORP WITHDRAW 50")
	s.requireCode(err, CodeCorpError)

	_, err = s.exec("p1", "CORP SAY hello crew")
	s.Require().NoError(err)
	snap, err := s.world.Snapshot("p2")
	s.Require().NoError(err)
	s.Equal("[Star Traders] alice: hello crew", snap.Logs[0].Message)
	s.Equal(int64(200), snap.State.CorpCredits)

	resp, err = s.exec("p1", "CORP WITHDRAW 50")
	s.Require().NoError(err)
	s.Equal(int64(1050), resp.State.Credits)
}

func (s *WorldTestSuite) TestMinesDetonateOnEntry() {
	_, err := s.exec("p1", "MOVE 2")
	s.Require().NoError(err)
	resp, err := s.exec("p1", "MINE DEPLOY 3")
	s.Require().NoError(err)
	s.Equal(3, resp.Sector.Mines)
	s.Equal(int64(850), resp.State.Credits)

	resp, err = s.exec("p2", "MOVE 2")
	s.Require().NoError(err)
	s.Equal(int64(970), resp.State.Credits)
	s.Equal(0, resp.Sector.Mines)
	s.Equal("COMBAT", resp.Logs[0].Kind)
}

func (s *WorldTestSuite) TestMinesForbiddenInProtectorate() {
	_, err := s.exec("p1", "MINE DEPLOY 1")
	s.requireCode(err, CodeMineError)
}

func (s *WorldTestSuite) TestShipyardUpgrade() {
	resp, err := s.exec("p1", "SHIPYARD UPGRADE CARGO")
	s.Require().NoError(err)
	s.Equal(60, resp.State.CargoMax)
	s.Equal(int64(500), resp.State.Credits)

	_, err = s.exec("p1", "MOVE 2")
	s.Require().NoError(err)
	_, err = s.exec("p1", "SHIPYARD")
	s.requireCode(err, CodeShipyardError)
}

func (s *WorldTestSuite) TestInfoCommandsAreFree() {
	for _, line := range []string{"HELP", "RANKINGS", "SEASON", "MARKET", "ROUTE ORE", "EVENTS"} {
		resp, err := s.exec("p1", line)
		s.Require().NoError(err, line)
		s.NotEmpty(resp.Message, line)
		s.Equal(100, resp.State.Turns, line)
	}
}

func (s *WorldTestSuite) TestRouteFindsBestPair() {
	resp, err := s.exec("p1", "ROUTE ORE")
	s.Require().NoError(err)
	s.Contains(resp.Message, "ORE: buy at sector 2 for 10, sell at sector 1 for 15 (+5 per unit)")
}

func (s *WorldTestSuite) TestRenderMap() {
	m := s.world.RenderMap()
	s.Contains(m, "[  1] Sol       PS  -> 2,3,4,5,6,7,8,9,10,11,12")
	s.Contains(m, "[  3] Rigel     P@  -> 1,2,4")
}

func TestPricePerUnit(t *testing.T) {
	tests := []struct {
		name                             string
		basePrice, baseQty, qty, percent int
		want                             int
	}{
		{"full market", 10, 500, 500, 100, 10},
		{"half stocked", 10, 500, 250, 100, 15},
		{"empty market", 10, 500, 0, 100, 20},
		{"rounds half away from zero", 25, 500, 250, 100, 38},
		{"percent multiplier", 10, 500, 500, 200, 20},
		{"percent clamped high", 10, 500, 500, 1000, 30},
		{"percent clamped low", 10, 500, 500, 1, 1},
		{"never below one", 0, 500, 500, 100, 1},
		{"zero base quantity", 7, 0, 0, 100, 7},
		{"overstocked clamps", 10, 500, 900, 100, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pricePerUnit(tt.basePrice, tt.baseQty, tt.qty, tt.percent))
		})
	}
}

func TestHelpTextCoversEveryVerb(t *testing.T) {
	help := HelpText()
	for _, verb := range []string{"SCAN", "MOVE", "TRADE", "PLANET", "CORP", "MINE", "SHIPYARD", "RANKINGS", "SEASON", "MARKET", "ROUTE", "EVENTS"} {
		require.Contains(t, help, verb)
	}
}

func TestSectorNamesGetDesignationsOnceStarsRunOut(t *testing.T) {
	rnd := mocks.NewMockRandom()
	rnd.QueueString("QXR")

	sectors := generateUniverse(rnd, len(sectorNames)+2)

	assert.Equal(t, "Sol", sectors[1].name)
	assert.Equal(t, "Hadar", sectors[len(sectorNames)].name)
	assert.Equal(t, "Sol-QXR", sectors[len(sectorNames)+1].name)
	// An exhausted mock falls back to the sector number
	assert.Equal(t, "Vega-18", sectors[len(sectorNames)+2].name)
}
