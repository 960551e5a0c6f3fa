package unit

// Member pairs one input address with its extraction for grouping
type Member struct {
	Address    string
	Extraction Extraction
}

// BuildingGroup is the set of unit records sharing one main address
type BuildingGroup struct {
	MainAddress string
	Members     []Member
}

// GroupByBuilding groups addresses by their extracted main address.
// Addresses without unit information become singleton groups keyed by
// their own full string.
func GroupByBuilding(addresses []string) map[string]*BuildingGroup {
	groups := make(map[string]*BuildingGroup)

	for _, addr := range addresses {
		ex := Extract(addr)

		key := addr
		if ex.HasApartment && ex.MainAddress != "" {
			key = ex.MainAddress
		}

		g, ok := groups[key]
		if !ok {
			g = &BuildingGroup{MainAddress: key}
			groups[key] = g
		}
		g.Members = append(g.Members, Member{Address: addr, Extraction: ex})
	}

	return groups
}

// ShouldAggregate reports whether a group's members share one main
// address and there is more than one of them
func (g *BuildingGroup) ShouldAggregate() bool {
	if len(g.Members) <= 1 {
		return false
	}
	for _, m := range g.Members {
		if !m.Extraction.HasApartment || m.Extraction.MainAddress != g.MainAddress {
			return false
		}
	}
	return true
}

// BuildingSummary aggregates the units found at one main address
type BuildingSummary struct {
	MainAddress string   `json:"main_address"`
	TotalUnits  int      `json:"total_units"`
	UnitNumbers []string `json:"unit_numbers"`
	UnitTypes   []string `json:"unit_types"`
}

// Summarize collects unit numbers and designator types across a group
func (g *BuildingGroup) Summarize() BuildingSummary {
	summary := BuildingSummary{
		MainAddress: g.MainAddress,
		TotalUnits:  len(g.Members),
	}

	seenTypes := make(map[string]bool)
	for _, m := range g.Members {
		if m.Extraction.Unit == nil {
			continue
		}
		summary.UnitNumbers = append(summary.UnitNumbers, m.Extraction.Unit.Value)
		if t := m.Extraction.Unit.Type; t != "" && !seenTypes[t] {
			seenTypes[t] = true
			summary.UnitTypes = append(summary.UnitTypes, t)
		}
	}

	return summary
}

// Statistics summarizes unit extraction over a list of addresses
type Statistics struct {
	TotalAddresses             int
	ApartmentAddresses         int
	NonApartmentAddresses      int
	FamilyCounts               map[string]int
	UniqueBuildings            int
	BuildingsWithMultipleUnits int
}

// CollectStatistics runs the extractor over every address and tallies
// family counts and building-level aggregates
func CollectStatistics(addresses []string) Statistics {
	stats := Statistics{
		TotalAddresses: len(addresses),
		FamilyCounts:   make(map[string]int),
	}

	buildingUnits := make(map[string]int)
	for _, addr := range addresses {
		ex := Extract(addr)
		if !ex.HasApartment {
			stats.NonApartmentAddresses++
			continue
		}

		stats.ApartmentAddresses++
		stats.FamilyCounts[ex.Family.String()]++
		if ex.MainAddress != "" {
			buildingUnits[ex.MainAddress]++
		}
	}

	stats.UniqueBuildings = len(buildingUnits)
	for _, n := range buildingUnits {
		if n > 1 {
			stats.BuildingsWithMultipleUnits++
		}
	}

	return stats
}
