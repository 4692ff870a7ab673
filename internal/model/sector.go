package model

import (
	"strings"
	"time"
)

// Commodity names a tradeable good
type Commodity string

const (
	CommodityOre       Commodity = "ORE"
	CommodityOrganics  Commodity = "ORGANICS"
	CommodityEquipment Commodity = "EQUIPMENT"
)

// Commodities lists every commodity in display order
var Commodities = []Commodity{CommodityOre, CommodityOrganics, CommodityEquipment}

// ParseCommodity case-folds s and reports whether it names a known commodity
func ParseCommodity(s string) (Commodity, bool) {
	c := Commodity(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Commodities {
		if c == known {
			return c, true
		}
	}
	return c, false
}

// SectorView is the sector the player currently occupies
type SectorView struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Warps  []int   `json:"warps"`
	Mines  int     `json:"mines"`
	Port   *Port   `json:"port,omitempty"`
	Planet *Planet `json:"planet,omitempty"`
	Event  *Event  `json:"event,omitempty"`

	IsProtectorate       bool `json:"is_protectorate,omitempty"`
	ProtectorateFighters int  `json:"protectorate_fighters,omitempty"`
	HasShipyard          bool `json:"has_shipyard,omitempty"`
}

// Port is the trading post in a sector. The wire format is flat, one field
// group per commodity.
type Port struct {
	Name string `json:"name,omitempty"`

	OreMode    string `json:"ore_mode"`
	OreQty     int    `json:"ore_qty"`
	OreBaseQty int    `json:"ore_base_qty"`
	OrePrice   int    `json:"ore_price"`

	OrganicsMode    string `json:"organics_mode"`
	OrganicsQty     int    `json:"organics_qty"`
	OrganicsBaseQty int    `json:"organics_base_qty"`
	OrganicsPrice   int    `json:"organics_price"`

	EquipmentMode    string `json:"equipment_mode"`
	EquipmentQty     int    `json:"equipment_qty"`
	EquipmentBaseQty int    `json:"equipment_base_qty"`
	EquipmentPrice   int    `json:"equipment_price"`
}

// PortQuote is one commodity row of a port
type PortQuote struct {
	Commodity    Commodity
	Mode         string
	Quantity     int
	BaseQuantity int
	Price        int
}

// Quotes returns the per-commodity tuples in display order
func (p Port) Quotes() []PortQuote {
	return []PortQuote{
		{CommodityOre, p.OreMode, p.OreQty, p.OreBaseQty, p.OrePrice},
		{CommodityOrganics, p.OrganicsMode, p.OrganicsQty, p.OrganicsBaseQty, p.OrganicsPrice},
		{CommodityEquipment, p.EquipmentMode, p.EquipmentQty, p.EquipmentBaseQty, p.EquipmentPrice},
	}
}

// Planet is the (at most one) planet in a sector
type Planet struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	OwnerType           string `json:"owner_type,omitempty"`
	Owner               string `json:"owner,omitempty"`
	ProductionOre       int    `json:"production_ore"`
	ProductionOrganics  int    `json:"production_organics"`
	ProductionEquipment int    `json:"production_equipment"`
	StorageOre          int    `json:"storage_ore"`
	StorageOrganics     int    `json:"storage_organics"`
	StorageEquipment    int    `json:"storage_equipment"`
	StorageMax          int    `json:"storage_max"`
	CitadelLevel        int    `json:"citadel_level"`
}

// EventKind identifies a sector event
type EventKind string

const (
	EventAnomaly  EventKind = "ANOMALY"
	EventLimited  EventKind = "LIMITED"
	EventInvasion EventKind = "INVASION"
)

// Event is a time-limited sector event. Commodity, PricePercent and Severity
// are only meaningful for some kinds.
type Event struct {
	Kind         EventKind `json:"kind"`
	SectorID     int       `json:"sector_id"`
	Commodity    string    `json:"commodity,omitempty"`
	PricePercent int       `json:"price_percent,omitempty"`
	Severity     int       `json:"severity,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	EndsAt       time.Time `json:"ends_at"`
}
