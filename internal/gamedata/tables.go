package gamedata

import "fmt"

// Tables bundles every embedded table the generator and the overworld need.
type Tables struct {
	Rarities  *RarityTable
	Creatures *CreatureRegistry
	Names     *NameParts
}

// LoadTables loads all embedded tables.
func LoadTables() (*Tables, error) {
	rarities, err := LoadRarityTable()
	if err != nil {
		return nil, fmt.Errorf("load rarities: %w", err)
	}
	creatures, err := LoadCreatureRegistry()
	if err != nil {
		return nil, fmt.Errorf("load creatures: %w", err)
	}
	names, err := LoadNameParts()
	if err != nil {
		return nil, fmt.Errorf("load card names: %w", err)
	}
	return &Tables{Rarities: rarities, Creatures: creatures, Names: names}, nil
}

// MustLoadTables loads all embedded tables, panicking on error.
func MustLoadTables() *Tables {
	tables, err := LoadTables()
	if err != nil {
		panic(err)
	}
	return tables
}
