package gamedata

import (
	"math/rand"
	"testing"
	"testing/fstest"
)

func TestLoadTables(t *testing.T) {
	tables, err := LoadTables()
	if err != nil {
		t.Fatalf("Failed to load tables: %v", err)
	}

	if got := len(tables.Rarities.All()); got != 5 {
		t.Errorf("Expected 5 rarities, got %d", got)
	}
	if tables.Creatures.Count() != 5 {
		t.Errorf("Expected 5 creature families, got %d", tables.Creatures.Count())
	}

	basePowers := map[Rarity]int{
		RarityCommon:    5,
		RarityUncommon:  10,
		RarityRare:      15,
		RarityEpic:      20,
		RarityLegendary: 30,
	}
	for rarity, want := range basePowers {
		def := tables.Rarities.Get(rarity)
		if def == nil {
			t.Errorf("Rarity %q missing", rarity)
			continue
		}
		if def.BasePower != want {
			t.Errorf("Rarity %q base power = %d, want %d", rarity, def.BasePower, want)
		}
	}
}

func TestRarityEffectChanceIncreases(t *testing.T) {
	table, err := LoadRarityTable()
	if err != nil {
		t.Fatalf("Failed to load rarities: %v", err)
	}

	all := table.All()
	if all[0].EffectChance != 0.10 {
		t.Errorf("Common effect chance = %v, want 0.10", all[0].EffectChance)
	}
	if all[len(all)-1].EffectChance != 1.0 {
		t.Errorf("Legendary effect chance = %v, want 1.0", all[len(all)-1].EffectChance)
	}
	for i := 1; i < len(all); i++ {
		if all[i].EffectChance < all[i-1].EffectChance {
			t.Errorf("Effect chance decreases from %s to %s", all[i-1].ID, all[i].ID)
		}
	}
}

func TestRarityRollStarterAlwaysCommon(t *testing.T) {
	table, err := LoadRarityTable()
	if err != nil {
		t.Fatalf("Failed to load rarities: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		def, err := table.Roll(rng, SourceStarter, 1)
		if err != nil {
			t.Fatalf("Roll failed: %v", err)
		}
		if def.ID != RarityCommon {
			t.Fatalf("Starter roll produced %s", def.ID)
		}
	}
}

func TestRarityEnemyWeightsShiftWithLevel(t *testing.T) {
	table, err := LoadRarityTable()
	if err != nil {
		t.Fatalf("Failed to load rarities: %v", err)
	}

	common := table.Get(RarityCommon)
	legendary := table.Get(RarityLegendary)

	if table.Weight(common, SourceEnemy, 5) >= table.Weight(common, SourceEnemy, 1) {
		t.Error("Common enemy weight should fall as level grows")
	}
	if table.Weight(legendary, SourceEnemy, 5) <= table.Weight(legendary, SourceEnemy, 1) {
		t.Error("Legendary enemy weight should grow with level")
	}
	if w := table.Weight(common, SourceEnemy, 100); w != 1 {
		t.Errorf("Common enemy weight at level 100 = %d, want floor of 1", w)
	}
}

func TestRarityRollNoWeights(t *testing.T) {
	table := NewRarityTable([]RarityDef{{ID: RarityCommon, Weights: map[CardSource]int{}}})
	if _, err := table.Roll(rand.New(rand.NewSource(1)), SourcePack, 1); err == nil {
		t.Error("Expected error when no weights apply")
	}
}

func TestCreatureSpawnDeterministic(t *testing.T) {
	registry, err := LoadCreatureRegistry()
	if err != nil {
		t.Fatalf("Failed to load creatures: %v", err)
	}

	rng1 := rand.New(rand.NewSource(12345))
	rng2 := rand.New(rand.NewSource(12345))
	for i := 0; i < 10; i++ {
		a, b := registry.SpawnRandom(rng1), registry.SpawnRandom(rng2)
		if a.ID != b.ID {
			t.Errorf("Spawn %d mismatch: %s != %s", i, a.ID, b.ID)
		}
	}

	if registry.GetByID(CreatureDragon) == nil {
		t.Error("Dragon not found by ID")
	}
}

func TestComposeName(t *testing.T) {
	parts, err := LoadNameParts()
	if err != nil {
		t.Fatalf("Failed to load names: %v", err)
	}
	creature := &CreatureDef{ID: CreatureGolem, Name: "Golem", Affix: "Stone"}
	rng := rand.New(rand.NewSource(3))

	for _, cardType := range AllCardTypes() {
		name := parts.Compose(rng, RarityRare, cardType, creature)
		if name == "" {
			t.Errorf("Empty name for %s", cardType)
		}
	}
}

func TestLoadFSReportsParseErrors(t *testing.T) {
	fsys := fstest.MapFS{"broken.json": {Data: []byte("{not json")}}
	if _, err := LoadFS[RaritiesFile](fsys, "broken.json"); err == nil {
		t.Error("Expected parse error")
	}
	if _, err := LoadFS[RaritiesFile](fsys, "missing.json"); err == nil {
		t.Error("Expected read error")
	}
}

func TestEffectPools(t *testing.T) {
	tests := []struct {
		cardType CardType
		want     []CardEffect
	}{
		{TypeCreature, []CardEffect{EffectLeech, EffectDoubleAttack, EffectShield, EffectBoost}},
		{TypeSpell, []CardEffect{EffectStun, EffectBurn, EffectFreeze, EffectWeaken, EffectHeal}},
		{TypeArtifact, []CardEffect{EffectShield, EffectReflect, EffectBoost}},
	}
	for _, tt := range tests {
		got := EffectPool(tt.cardType)
		if len(got) != len(tt.want) {
			t.Errorf("%s pool = %v, want %v", tt.cardType, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s pool[%d] = %s, want %s", tt.cardType, i, got[i], tt.want[i])
			}
		}
	}
}

func TestCostForPower(t *testing.T) {
	tests := []struct{ power, cost int }{
		{1, 1}, {3, 1}, {4, 2}, {12, 4}, {30, 10}, {31, 11},
	}
	for _, tt := range tests {
		if got := CostForPower(tt.power); got != tt.cost {
			t.Errorf("CostForPower(%d) = %d, want %d", tt.power, got, tt.cost)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"#FF0000", true},
		{"FF0000", true},
		{"#00ff00", true},
		{"#FFF", true},
		{"invalid", false},
		{"#GGGGGG", false},
		{"#FFFF", false},
	}

	for _, tt := range tests {
		_, err := ParseHexColor(tt.input)
		if tt.valid && err != nil {
			t.Errorf("ParseHexColor(%q) should be valid, got error: %v", tt.input, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ParseHexColor(%q) should be invalid, got no error", tt.input)
		}
	}

	short, _ := ParseHexColor("#F00")
	long, _ := ParseHexColor("#FF0000")
	if short != long {
		t.Errorf("Short form %v != long form %v", short, long)
	}
}

func TestCardEffectKind(t *testing.T) {
	if (Card{}).EffectKind() != EffectNone {
		t.Error("Empty effect should read as none")
	}
	if (Card{Effect: EffectNone}).HasEffect() {
		t.Error("EffectNone should not count as an effect")
	}
	if !(Card{Effect: EffectBurn}).HasEffect() {
		t.Error("Burn should count as an effect")
	}
}
