package model

// PlayerState is the server's authoritative view of the logged-in pilot.
// It is always replaced as a whole, never merged field by field.
type PlayerState struct {
	ID                 string `json:"id"`
	UserID             string `json:"user_id"`
	Username           string `json:"username"`
	IsAdmin            bool   `json:"is_admin"`
	MustChangePassword bool   `json:"must_change_password"`

	Level       int    `json:"level"`
	XP          int64  `json:"xp"`
	NextLevelXP int64  `json:"next_level_xp"`
	Rank        string `json:"rank"`

	Credits  int64 `json:"credits"`
	Turns    int   `json:"turns"`
	TurnsMax int   `json:"turns_max"`
	SectorID int   `json:"sector_id"`

	CargoMax       int `json:"cargo_max"`
	CargoOre       int `json:"cargo_ore"`
	CargoOrganics  int `json:"cargo_organics"`
	CargoEquipment int `json:"cargo_equipment"`

	SeasonID   int    `json:"season_id"`
	SeasonName string `json:"season_name"`

	CorpID      string `json:"corp_id,omitempty"`
	CorpName    string `json:"corp_name,omitempty"`
	CorpRole    string `json:"corp_role,omitempty"`
	CorpCredits int64  `json:"corp_credits,omitempty"`
}

// CargoTotal is derived on demand and never stored.
func (p PlayerState) CargoTotal() int {
	return p.CargoOre + p.CargoOrganics + p.CargoEquipment
}

// CargoFree returns the remaining hold capacity.
func (p PlayerState) CargoFree() int {
	free := p.CargoMax - p.CargoTotal()
	if free < 0 {
		return 0
	}
	return free
}

// Cargo returns the held quantity of a commodity, or 0 for unknown names.
func (p PlayerState) Cargo(c Commodity) int {
	switch c {
	case CommodityOre:
		return p.CargoOre
	case CommodityOrganics:
		return p.CargoOrganics
	case CommodityEquipment:
		return p.CargoEquipment
	default:
		return 0
	}
}
