package world

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/sovereign-client/internal/dependencies/random"
	"github.com/mcoot/sovereign-client/internal/model"
)

const (
	ModeBuy  = "BUY"
	ModeSell = "SELL"
)

// designationAlphabet skips letters that read as digits
const designationAlphabet = "ABCDEFGHJKLMNPRSTUVWXYZ"

var sectorNames = []string{
	"Sol", "Vega", "Rigel", "Altair", "Deneb", "Sirius", "Procyon", "Antares",
	"Capella", "Arcturus", "Pollux", "Spica", "Regulus", "Castor", "Mira", "Hadar",
}

type market struct {
	mode      string
	qty       int
	baseQty   int
	basePrice int
}

type portState struct {
	name    string
	markets map[model.Commodity]*market
}

type planetState struct {
	model.Planet
	ownerID string
}

type sector struct {
	id           int
	name         string
	warps        []int
	mines        int
	mineOwner    string
	port         *portState
	planet       *planetState
	event        *model.Event
	protectorate bool
	shipyard     bool
}

// sectorName names sector id after a star. Once the star list wraps, names
// get a random designation so no two sectors share one.
func sectorName(rnd random.Random, id int) string {
	name := sectorNames[(id-1)%len(sectorNames)]
	if id <= len(sectorNames) {
		return name
	}
	tag := rnd.String(3, designationAlphabet)
	if tag == "" {
		tag = strconv.Itoa(id)
	}
	return name + "-" + tag
}

// generateUniverse builds a ring of sectors with random chords. A mocked
// Random that always returns 0 yields a port in every sector.
func generateUniverse(rnd random.Random, n int) map[int]*sector {
	sectors := make(map[int]*sector, n)
	for i := 1; i <= n; i++ {
		sectors[i] = &sector{
			id:   i,
			name: sectorName(rnd, i),
		}
	}

	link := func(a, b int) {
		if a == b {
			return
		}
		for _, existing := range sectors[a].warps {
			if existing == b {
				return
			}
		}
		sectors[a].warps = append(sectors[a].warps, b)
		sectors[b].warps = append(sectors[b].warps, a)
	}

	for i := 1; i <= n; i++ {
		link(i, i%n+1)
		link(i, rnd.Intn(n)+1)
	}

	basePrices := map[model.Commodity]int{
		model.CommodityOre:       10,
		model.CommodityOrganics:  15,
		model.CommodityEquipment: 25,
	}
	for i := 1; i <= n; i++ {
		s := sectors[i]
		sort.Ints(s.warps)
		if i == 1 {
			s.protectorate = true
			s.shipyard = true
		}
		if rnd.Intn(3) != 0 {
			continue
		}
		port := &portState{
			name:    s.name + " Station",
			markets: make(map[model.Commodity]*market),
		}
		for j, c := range model.Commodities {
			// Alternate modes so each port both buys and sells something
			mode := ModeSell
			if (i+j+rnd.Intn(2))%2 == 1 {
				mode = ModeBuy
			}
			baseQty := 500 + 100*rnd.Intn(6)
			qty := baseQty
			if mode == ModeBuy {
				qty = baseQty / 2
			}
			port.markets[c] = &market{
				mode:      mode,
				qty:       qty,
				baseQty:   baseQty,
				basePrice: basePrices[c] + rnd.Intn(5),
			}
		}
		s.port = port
	}

	if third, ok := sectors[3]; ok {
		third.planet = &planetState{Planet: model.Planet{
			ID:                  1,
			Name:                "Unclaimed world",
			ProductionOre:       5,
			ProductionOrganics:  3,
			ProductionEquipment: 1,
			StorageMax:          1000,
		}}
	}
	return sectors
}

// pricePerUnit rises with scarcity: a full market sells at base price, an
// empty one at double
func pricePerUnit(basePrice, baseQty, qty, percent int) int {
	if percent < 10 {
		percent = 10
	}
	if percent > 300 {
		percent = 300
	}
	if percent != 100 {
		basePrice = int(math.Round(float64(basePrice) * float64(percent) / 100.0))
	}
	if basePrice < 1 {
		basePrice = 1
	}
	if baseQty <= 0 {
		return basePrice
	}
	qty = max(0, min(qty, baseQty))
	scarcity := float64(baseQty-qty) / float64(baseQty)
	price := int(math.Round(float64(basePrice) * (1.0 + scarcity)))
	return max(price, 1)
}

func (s *sector) pricePercent(c model.Commodity, now time.Time) int {
	if s.event == nil || now.After(s.event.EndsAt) {
		return 100
	}
	if s.event.Kind == model.EventAnomaly && s.event.Commodity == string(c) && s.event.PricePercent > 0 {
		return s.event.PricePercent
	}
	return 100
}

func (s *sector) price(c model.Commodity, now time.Time) int {
	m := s.port.markets[c]
	return pricePerUnit(m.basePrice, m.baseQty, m.qty, s.pricePercent(c, now))
}

func (s *sector) view(now time.Time) model.SectorView {
	v := model.SectorView{
		ID:             s.id,
		Name:           s.name,
		Warps:          append([]int(nil), s.warps...),
		Mines:          s.mines,
		IsProtectorate: s.protectorate,
		HasShipyard:    s.shipyard,
	}
	if s.protectorate {
		v.ProtectorateFighters = 500
	}
	if s.port != nil {
		ore := s.port.markets[model.CommodityOre]
		org := s.port.markets[model.CommodityOrganics]
		eq := s.port.markets[model.CommodityEquipment]
		v.Port = &model.Port{
			Name:             s.port.name,
			OreMode:          ore.mode,
			OreQty:           ore.qty,
			OreBaseQty:       ore.baseQty,
			OrePrice:         s.price(model.CommodityOre, now),
			OrganicsMode:     org.mode,
			OrganicsQty:      org.qty,
			OrganicsBaseQty:  org.baseQty,
			OrganicsPrice:    s.price(model.CommodityOrganics, now),
			EquipmentMode:    eq.mode,
			EquipmentQty:     eq.qty,
			EquipmentBaseQty: eq.baseQty,
			EquipmentPrice:   s.price(model.CommodityEquipment, now),
		}
	}
	if s.planet != nil {
		p := s.planet.Planet
		v.Planet = &p
	}
	if s.event != nil && now.Before(s.event.EndsAt) {
		e := *s.event
		v.Event = &e
	}
	return v
}

func (s *sector) mapLine() string {
	warps := make([]string, len(s.warps))
	for i, w := range s.warps {
		warps[i] = fmt.Sprint(w)
	}
	marks := ""
	if s.port != nil {
		marks += "P"
	}
	if s.planet != nil {
		marks += "@"
	}
	if s.shipyard {
		marks += "S"
	}
	return fmt.Sprintf("[%3d] %-9s %-3s -> %s", s.id, s.name, marks, strings.Join(warps, ","))
}
