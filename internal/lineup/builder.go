// Package lineup builds personalized march lineups from the template
// catalog and a player's roster. Selection is deterministic: preferred
// lists are honored in order, ties go to the earlier preferred position,
// and class fallbacks rank by computed power.
package lineup

import (
	"fmt"
	"strings"

	"frostadvisor/internal/catalog"
	"frostadvisor/internal/logging"
	"frostadvisor/internal/scoring"
	"frostadvisor/internal/types"
)

// maxRecommendedToGet caps the acquisition shopping list per lineup.
const maxRecommendedToGet = 4

// sustainLeadThreshold is the power fraction at which a sustain hero is
// worth mentioning as an alternative garrison lead.
const sustainLeadThreshold = 0.8

// Builder resolves lineup templates against a roster.
type Builder struct {
	catalog *catalog.Catalog
}

// NewBuilder returns a lineup builder over the given catalog.
func NewBuilder(c *catalog.Catalog) *Builder {
	return &Builder{catalog: c}
}

// Build produces the personalized lineup for one mode. An unknown mode
// key degrades to a low-confidence result instead of an error; the
// caller surfaces the note to the player.
func (b *Builder) Build(modeKey string, owned []types.OwnedHero, profile types.Profile) types.LineupRecommendation {
	timer := logging.StartTimer(logging.CategoryLineup, "Builder.Build")
	defer timer.Stop()

	tpl, ok := b.catalog.Template(modeKey)
	if !ok {
		known := strings.Join(b.catalog.ModeKeys(), ", ")
		return types.LineupRecommendation{
			Mode:       modeKey,
			Confidence: types.ConfidenceLow,
			Notes:      fmt.Sprintf("Unknown mode %q. Known modes: %s.", modeKey, known),
		}
	}

	maxGen := scoring.CurrentGeneration(profile.ServerAgeDays)
	ownedByName := make(map[string]types.OwnedHero, len(owned))
	for _, h := range owned {
		ownedByName[strings.ToLower(h.Name)] = h
	}

	slots := make([]types.AssignedSlot, len(tpl.Slots))
	used := make(map[string]bool, len(tpl.Slots))
	var missingKeys []string

	// Leads claim their preferred heroes before any other slot can.
	for i, s := range tpl.Slots {
		if s.IsLead {
			slots[i] = b.fillSlot(s, ownedByName, used, maxGen, &missingKeys)
		}
	}
	for i, s := range tpl.Slots {
		if !s.IsLead {
			slots[i] = b.fillSlot(s, ownedByName, used, maxGen, &missingKeys)
		}
	}

	critical, filled := 0, 0
	for i, s := range tpl.Slots {
		if s.IsFiller() {
			continue
		}
		critical++
		if slots[i].Hero != "" {
			filled++
		}
	}
	confidence := gradeConfidence(filled, critical)

	rec := types.LineupRecommendation{
		Mode:             modeKey,
		Slots:            slots,
		TroopRatio:       tpl.TroopRatio,
		Confidence:       confidence,
		RecommendedToGet: b.recommendedToGet(tpl, ownedByName, missingKeys, maxGen),
	}
	rec.Notes = b.assembleNotes(modeKey, tpl, slots, ownedByName, confidence)

	logging.LineupDebug("built %s: confidence=%s filled=%d/%d", modeKey, confidence, filled, critical)
	return rec
}

// fillSlot resolves one template slot. Preferred lists ignore unit class
// on purpose: a template that names a hero wants that hero. The class
// fallback is where the slot's class requirement applies.
func (b *Builder) fillSlot(s types.TemplateSlot, ownedByName map[string]types.OwnedHero, used map[string]bool, maxGen int, missingKeys *[]string) types.AssignedSlot {
	if s.IsFiller() {
		return types.AssignedSlot{
			Placeholder: "Any hero",
			HeroClass:   types.ClassAny,
			SlotRole:    s.Role,
			Role:        s.Role,
			Status:      "filler",
		}
	}

	if hero, power, ok := b.pickPreferred(s, ownedByName, used, maxGen); ok {
		entry, _ := b.catalog.Lookup(hero)
		used[strings.ToLower(hero)] = true
		return types.AssignedSlot{
			Hero:      ownedByName[strings.ToLower(hero)].Name,
			HeroClass: entry.Class,
			SlotRole:  s.Role,
			Role:      s.Role,
			IsLead:    s.IsLead,
			Power:     power,
			Status:    fmt.Sprintf("Lv%d", ownedByName[strings.ToLower(hero)].Level),
		}
	}

	if hero, power, ok := b.classFallback(s.Class, ownedByName, used, maxGen); ok {
		used[strings.ToLower(hero)] = true
		h := ownedByName[strings.ToLower(hero)]
		return types.AssignedSlot{
			Hero:      h.Name,
			HeroClass: s.Class,
			SlotRole:  s.Role,
			Role:      s.Role,
			IsLead:    s.IsLead,
			Power:     power,
			Status:    fmt.Sprintf("Lv%d", h.Level),
		}
	}

	// Nothing fits. Record the top preferred picks so the acquisition
	// list can point at them.
	for i, name := range s.Preferred {
		if i >= 2 {
			break
		}
		*missingKeys = append(*missingKeys, name)
	}
	return types.AssignedSlot{
		Placeholder: fmt.Sprintf("Need %s", s.Class),
		HeroClass:   s.Class,
		SlotRole:    s.Role,
		Role:        s.Role,
		IsLead:      s.IsLead,
		Status:      "missing",
	}
}

// pickPreferred selects from the slot's preferred list. Lead slots take
// the first owned name in list order; other slots take the highest-power
// owned name, earlier position winning ties. Heroes from generations the
// server has not reached are skipped, same as the class fallback.
func (b *Builder) pickPreferred(s types.TemplateSlot, ownedByName map[string]types.OwnedHero, used map[string]bool, maxGen int) (string, int, bool) {
	bestName := ""
	bestPower := -1
	for _, name := range s.Preferred {
		key := strings.ToLower(name)
		h, ok := ownedByName[key]
		if !ok || used[key] {
			continue
		}
		entry, found := b.catalog.Lookup(name)
		if found && entry.Generation > maxGen {
			continue
		}
		var ep *types.HeroEntry
		if found {
			ep = &entry
		}
		p := scoring.Power(h, ep)
		if s.IsLead {
			return name, p, true
		}
		if p > bestPower {
			bestName, bestPower = name, p
		}
	}
	if bestName == "" {
		return "", 0, false
	}
	return bestName, bestPower, true
}

// classFallback scans the whole roster for the strongest unused hero of
// the required class whose generation the server has reached.
func (b *Builder) classFallback(class types.Class, ownedByName map[string]types.OwnedHero, used map[string]bool, maxGen int) (string, int, bool) {
	bestName := ""
	bestPower := -1
	for _, entry := range b.catalog.HeroesByGeneration(maxGen) {
		if entry.Class != class {
			continue
		}
		key := strings.ToLower(entry.Name)
		h, ok := ownedByName[key]
		if !ok || used[key] {
			continue
		}
		e := entry
		if p := scoring.Power(h, &e); p > bestPower {
			bestName, bestPower = entry.Name, p
		}
	}
	if bestName == "" {
		return "", 0, false
	}
	return bestName, bestPower, true
}

func gradeConfidence(filled, critical int) types.Confidence {
	switch {
	case critical == 0 || filled == critical:
		return types.ConfidenceHigh
	case filled >= (critical+1)/2:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}

// recommendedToGet lists unowned heroes worth acquiring for this mode:
// the template's key heroes the server generation allows, then the
// preferred picks from unfillable slots. Deduplicated, capped at four.
func (b *Builder) recommendedToGet(tpl types.LineupTemplate, ownedByName map[string]types.OwnedHero, missingKeys []string, maxGen int) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		key := strings.ToLower(name)
		if seen[key] || len(out) >= maxRecommendedToGet {
			return
		}
		if _, owned := ownedByName[key]; owned {
			return
		}
		entry, ok := b.catalog.Lookup(name)
		if !ok || entry.Generation > maxGen {
			return
		}
		seen[key] = true
		out = append(out, entry.Name)
	}
	for _, name := range tpl.KeyHeroes {
		add(name)
	}
	for _, name := range missingKeys {
		add(name)
	}
	return out
}

// assembleNotes joins the template's static advice with roster-specific
// warnings for joiner and garrison modes. The joiner warning only rides
// along when the lineup is shaky; a fully filled lineup does not need it.
func (b *Builder) assembleNotes(modeKey string, tpl types.LineupTemplate, slots []types.AssignedSlot, ownedByName map[string]types.OwnedHero, confidence types.Confidence) string {
	parts := []string{tpl.Notes}
	if tpl.RatioExplanation != "" {
		parts = append(parts, tpl.RatioExplanation)
	}
	if tpl.JoinerWarning != "" && confidence != types.ConfidenceHigh {
		parts = append(parts, tpl.JoinerWarning)
	}

	switch modeKey {
	case "rally_joiner_attack":
		if tip := joinerLeadTip(heroJessie, slots, ownedByName,
			"Jessie not available: any slot-1 hero works, but Jessie at max skill adds +25% damage dealt to every rally you join.",
			"Move Jessie to slot 1: only the slot-1 hero's expedition skill counts when joining a rally."); tip != "" {
			parts = append(parts, tip)
		}
	case "rally_joiner_defense":
		if tip := joinerLeadTip(heroSergey, slots, ownedByName,
			"Sergey not available: any slot-1 hero works, but Sergey at max skill adds +20% garrison defense on every reinforcement.",
			"Move Sergey to slot 1: only the slot-1 hero's expedition skill counts when reinforcing."); tip != "" {
			parts = append(parts, tip)
		}
	case "garrison":
		if hint := b.sustainHint(tpl, slots, ownedByName); hint != "" {
			parts = append(parts, hint)
		}
	}

	return strings.Join(parts, " ")
}

// joinerLeadTip picks the roster-specific note for a joiner mode: the
// missing-hero warning when the key joiner is unowned, or the slot-1 tip
// when it is owned but a template put someone else in front.
func joinerLeadTip(keyHero string, slots []types.AssignedSlot, ownedByName map[string]types.OwnedHero, missing, misplaced string) string {
	if _, ok := ownedByName[strings.ToLower(keyHero)]; !ok {
		return missing
	}
	if len(slots) > 0 && !strings.EqualFold(slots[0].Hero, keyHero) {
		return misplaced
	}
	return ""
}

// sustainHint suggests a sustain hero as an alternative garrison lead
// when one is owned, not already in the lineup, and close enough in
// power to the assigned lead. At most one hint is produced.
func (b *Builder) sustainHint(tpl types.LineupTemplate, slots []types.AssignedSlot, ownedByName map[string]types.OwnedHero) string {
	var leadPower int
	placed := make(map[string]bool, len(slots))
	for _, s := range slots {
		if s.Hero != "" {
			placed[strings.ToLower(s.Hero)] = true
		}
		if s.IsLead && s.Hero != "" && leadPower == 0 {
			leadPower = s.Power
		}
	}
	if leadPower == 0 {
		return ""
	}
	for _, name := range tpl.SustainHeroes {
		h, ok := ownedByName[strings.ToLower(name)]
		if !ok || placed[strings.ToLower(name)] {
			continue
		}
		entry, found := b.catalog.Lookup(name)
		var ep *types.HeroEntry
		if found {
			ep = &entry
		}
		if float64(scoring.Power(h, ep)) >= sustainLeadThreshold*float64(leadPower) {
			return fmt.Sprintf("%s might be better for garrison: sustain heroes outlast pure stat leads in long defenses.", name)
		}
	}
	return ""
}

// BuildGeneral produces the catalog-ideal lineup for a mode, ignoring
// the roster. Used when no heroes are recorded yet.
func (b *Builder) BuildGeneral(modeKey string, profile types.Profile) types.LineupRecommendation {
	tpl, ok := b.catalog.Template(modeKey)
	if !ok {
		known := strings.Join(b.catalog.ModeKeys(), ", ")
		return types.LineupRecommendation{
			Mode:       modeKey,
			Confidence: types.ConfidenceLow,
			Notes:      fmt.Sprintf("Unknown mode %q. Known modes: %s.", modeKey, known),
		}
	}

	maxGen := scoring.CurrentGeneration(profile.ServerAgeDays)
	used := make(map[string]bool)
	slots := make([]types.AssignedSlot, 0, len(tpl.Slots))
	for _, s := range tpl.Slots {
		slots = append(slots, b.generalSlot(s, used, maxGen))
	}

	notes := tpl.Notes
	if tpl.RatioExplanation != "" {
		notes += " " + tpl.RatioExplanation
	}
	if tpl.JoinerWarning != "" {
		notes += " " + tpl.JoinerWarning
	}
	notes += " This is the catalog-ideal lineup; add your heroes for a personalized one."

	return types.LineupRecommendation{
		Mode:       modeKey,
		Slots:      slots,
		TroopRatio: tpl.TroopRatio,
		Notes:      notes,
		Confidence: types.ConfidenceLow,
	}
}

func (b *Builder) generalSlot(s types.TemplateSlot, used map[string]bool, maxGen int) types.AssignedSlot {
	if s.IsFiller() {
		return types.AssignedSlot{
			Placeholder: "Any hero",
			HeroClass:   types.ClassAny,
			SlotRole:    s.Role,
			Role:        s.Role,
			Status:      "filler",
		}
	}

	for _, name := range s.Preferred {
		key := strings.ToLower(name)
		entry, ok := b.catalog.Lookup(name)
		if !ok || used[key] || entry.Generation > maxGen {
			continue
		}
		used[key] = true
		return types.AssignedSlot{
			Hero:      entry.Name,
			HeroClass: entry.Class,
			SlotRole:  s.Role,
			Role:      s.Role,
			IsLead:    s.IsLead,
			Status:    fmt.Sprintf("Gen %d", entry.Generation),
		}
	}

	// Best remaining catalog hero of the class by tier.
	bestName, bestGen, bestVal := "", 0, -1
	for _, entry := range b.catalog.HeroesByGeneration(maxGen) {
		if entry.Class != s.Class || used[strings.ToLower(entry.Name)] {
			continue
		}
		if v := types.TierValue(entry.TierOverall)*100 + entry.Generation; v > bestVal {
			bestName, bestGen, bestVal = entry.Name, entry.Generation, v
		}
	}
	if bestName != "" {
		used[strings.ToLower(bestName)] = true
		return types.AssignedSlot{
			Hero:      bestName,
			HeroClass: s.Class,
			SlotRole:  s.Role,
			Role:      s.Role,
			IsLead:    s.IsLead,
			Status:    fmt.Sprintf("Gen %d", bestGen),
		}
	}
	return types.AssignedSlot{
		Placeholder: fmt.Sprintf("Need %s", s.Class),
		HeroClass:   s.Class,
		SlotRole:    s.Role,
		Role:        s.Role,
		IsLead:      s.IsLead,
		Status:      "missing",
	}
}
