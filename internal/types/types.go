// Package types provides shared type definitions used across frostadvisor packages.
// This package exists to break import cycles between catalog, analyzer, lineup, and advisor.
// Types in this package should be foundational data structures with no complex dependencies.
package types

import (
	"strings"
	"time"
)

// =============================================================================
// CATALOG TYPES
// =============================================================================

// Class is the unit class a hero leads.
type Class string

const (
	ClassInfantry Class = "Infantry"
	ClassLancer   Class = "Lancer"
	ClassMarksman Class = "Marksman"
	ClassAny      Class = "any"
	ClassUnknown  Class = "Unknown"
)

// Tier is a subjective power rating, authoritative from the catalog.
type Tier string

const (
	TierSPlus Tier = "S+"
	TierS     Tier = "S"
	TierA     Tier = "A"
	TierB     Tier = "B"
	TierC     Tier = "C"
	TierD     Tier = "D"
)

// TierValue maps a tier to its ordinal {S+:6 .. D:1}. Unrecognized tiers
// score like C so a bad catalog row degrades instead of panicking.
func TierValue(t Tier) int {
	switch t {
	case TierSPlus:
		return 6
	case TierS:
		return 5
	case TierA:
		return 4
	case TierB:
		return 3
	case TierC:
		return 2
	case TierD:
		return 1
	default:
		return 2
	}
}

// HeroEntry is one row of the static hero catalog.
type HeroEntry struct {
	Name            string `json:"name"`
	Generation      int    `json:"generation"`
	Class           Class  `json:"class"`
	Rarity          string `json:"rarity"`
	TierOverall     Tier   `json:"tier_overall"`
	TierExpedition  Tier   `json:"tier_expedition"`
	TierExploration Tier   `json:"tier_exploration"`

	// Unknown marks the fallback entry returned for names missing from
	// the catalog. Scoring-dependent analysis is skipped for these.
	Unknown bool `json:"-"`
}

// UnknownGeneration is the sentinel generation for heroes missing from
// the catalog; it sorts them behind every real generation.
const UnknownGeneration = 99

// TemplateSlot is one position in a lineup template.
type TemplateSlot struct {
	Class     Class    `json:"class"` // required unit class, or "any"
	Role      string   `json:"role"`
	IsLead    bool     `json:"is_lead"`
	Preferred []string `json:"preferred"` // ordered hero names, or ["any"] for a filler
}

// IsFiller reports whether this slot accepts any hero.
func (s TemplateSlot) IsFiller() bool {
	return len(s.Preferred) == 1 && strings.EqualFold(s.Preferred[0], "any")
}

// TroopRatio is the infantry/lancer/marksman march split. Sums to 100.
type TroopRatio struct {
	Infantry int `json:"infantry"`
	Lancer   int `json:"lancer"`
	Marksman int `json:"marksman"`
}

// LineupTemplate is the fixed slot layout and advice for one game mode.
type LineupTemplate struct {
	Name             string            `json:"name"`
	Slots            []TemplateSlot    `json:"slots"`
	TroopRatio       TroopRatio        `json:"troop_ratio"`
	Notes            string            `json:"notes"`
	KeyHeroes        []string          `json:"key_heroes"`
	HeroExplanations map[string]string `json:"hero_explanations,omitempty"`
	RatioExplanation string            `json:"ratio_explanation,omitempty"`
	JoinerWarning    string            `json:"joiner_warning,omitempty"`
	SustainHeroes    []string          `json:"sustain_heroes,omitempty"`
}

// =============================================================================
// ROSTER TYPES
// =============================================================================

// GearSlot is one of the four hero gear pieces.
type GearSlot struct {
	Quality int `json:"quality"` // 0..6
	Level   int `json:"level"`   // 0..100
	Mastery int `json:"mastery"` // 0..20, optional
}

// MythicGear is the optional mythic gear block on a hero.
type MythicGear struct {
	Unlocked bool `json:"unlocked"`
	Level    int  `json:"level"`
}

// OwnedHero is a hero on a player's roster. Values are read-only within a
// single advisory request; writes come from unrelated CRUD paths.
type OwnedHero struct {
	Name                   string      `json:"name"`
	Level                  int         `json:"level"`                    // 1..80
	Stars                  int         `json:"stars"`                    // 0..5
	Ascension              int         `json:"ascension"`                // 0..5
	ExpeditionSkillLevels  [3]int      `json:"expedition_skill_levels"`  // each 1..5
	ExplorationSkillLevels [3]int      `json:"exploration_skill_levels"` // each 1..5
	Gear                   [4]GearSlot `json:"gear"`
	Mythic                 *MythicGear `json:"mythic,omitempty"`
	HasHeroGear            bool        `json:"has_hero_gear"`
}

// Chief gear slot names.
const (
	ChiefSlotRing   = "ring"
	ChiefSlotAmulet = "amulet"
	ChiefSlotHelmet = "helmet"
	ChiefSlotArmor  = "armor"
	ChiefSlotGloves = "gloves"
	ChiefSlotBoots  = "boots"
)

// Chief gear quality ordinals.
const (
	GearQualityNone      = 0
	GearQualityCommon    = 1
	GearQualityUncommon  = 2
	GearQualityRare      = 3
	GearQualityEpic      = 4
	GearQualityLegendary = 5
	GearQualityMythic    = 6
)

// ChiefGear holds the quality ordinal for each of the six chief slots.
// A zero value means the slot has no recorded gear.
type ChiefGear struct {
	Ring   int `json:"ring"`
	Amulet int `json:"amulet"`
	Helmet int `json:"helmet"`
	Armor  int `json:"armor"`
	Gloves int `json:"gloves"`
	Boots  int `json:"boots"`
}

// IsEmpty reports whether no chief gear has been recorded at all.
func (g ChiefGear) IsEmpty() bool {
	return g.Ring == 0 && g.Amulet == 0 && g.Helmet == 0 &&
		g.Armor == 0 && g.Gloves == 0 && g.Boots == 0
}

// Slot returns the quality for a named slot.
func (g ChiefGear) Slot(name string) int {
	switch name {
	case ChiefSlotRing:
		return g.Ring
	case ChiefSlotAmulet:
		return g.Amulet
	case ChiefSlotHelmet:
		return g.Helmet
	case ChiefSlotArmor:
		return g.Armor
	case ChiefSlotGloves:
		return g.Gloves
	case ChiefSlotBoots:
		return g.Boots
	}
	return 0
}

// SpendingProfile gates how many heroes and gear pieces it is wise to
// invest in. Ordered f2p < minnow < dolphin < orca < whale.
type SpendingProfile string

const (
	SpendingF2P     SpendingProfile = "f2p"
	SpendingMinnow  SpendingProfile = "minnow"
	SpendingDolphin SpendingProfile = "dolphin"
	SpendingOrca    SpendingProfile = "orca"
	SpendingWhale   SpendingProfile = "whale"
)

// AllianceRole is the player's role within their alliance.
type AllianceRole string

const (
	RoleRallyLead AllianceRole = "rally_lead"
	RoleFiller    AllianceRole = "filler"
	RoleFarmer    AllianceRole = "farmer"
	RoleCasual    AllianceRole = "casual"
)

// Priorities are the player's 1..5 interest weights per activity.
type Priorities struct {
	SvS         int `json:"svs"`
	Rally       int `json:"rally"`
	Castle      int `json:"castle"`
	Exploration int `json:"exploration"`
	Gathering   int `json:"gathering"`
}

// Profile is the per-player progression and preference snapshot.
type Profile struct {
	ID                  string          `json:"id"`
	ServerAgeDays       int             `json:"server_age_days"`
	FurnaceLevel        int             `json:"furnace_level"`
	FurnaceFcLevel      string          `json:"furnace_fc_level,omitempty"` // "FC3-2" style
	SpendingProfile     SpendingProfile `json:"spending_profile"`
	AllianceRole        AllianceRole    `json:"alliance_role"`
	Priorities          Priorities      `json:"priorities"`
	IsFarmAccount       bool            `json:"is_farm_account"`
	LinkedMainProfileID string          `json:"linked_main_profile_id,omitempty"`
}

// =============================================================================
// USER / RATE STATE
// =============================================================================

// UserRole distinguishes admin users for rate limiting.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// UserRateState tracks per-user AI usage. Mutated only by the rate
// limiter under per-user serialization.
type UserRateState struct {
	AIRequestsToday  int        `json:"ai_requests_today"`
	LastAIRequestAt  *time.Time `json:"last_ai_request_at,omitempty"`
	AIRequestResetAt string     `json:"ai_request_reset_at"` // UTC date "2006-01-02"
}

// User is the account-level view the rate limiter needs.
type User struct {
	ID           string        `json:"id"`
	Role         UserRole      `json:"role"`
	AIDailyLimit *int          `json:"ai_daily_limit,omitempty"` // per-user override, nil = plan default
	RateState    UserRateState `json:"rate_state"`
}

// =============================================================================
// RECOMMENDATION TYPES
// =============================================================================

// Category classifies what a recommendation is about.
type Category string

const (
	CategoryHero        Category = "hero"
	CategoryGear        Category = "gear"
	CategoryProgression Category = "progression"
	CategoryLineup      Category = "lineup"
	CategoryPower       Category = "power"
)

// Source records which engine produced an answer.
type Source string

const (
	SourceRules  Source = "rules"
	SourceAI     Source = "ai"
	SourceHybrid Source = "hybrid"
	SourceError  Source = "error"
)

// Recommendation is a single prioritized upgrade suggestion.
// Priority runs 1 (do first) through 5 (low).
type Recommendation struct {
	Priority      int      `json:"priority"`
	Action        string   `json:"action"`
	Category      Category `json:"category"`
	Hero          string   `json:"hero,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	Resources     string   `json:"resources,omitempty"`
	RelevanceTags []string `json:"relevance_tags,omitempty"`
	Source        Source   `json:"source"`
	RuleID        string   `json:"rule_id"`
}

// AssignedSlot is one resolved position in a built lineup. Either Hero or
// Placeholder is set, never both.
type AssignedSlot struct {
	Hero        string `json:"hero,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	HeroClass   Class  `json:"hero_class"`
	SlotRole    string `json:"slot_role"`
	Role        string `json:"role"`
	IsLead      bool   `json:"is_lead"`
	Power       int    `json:"power"`
	Status      string `json:"status"` // "Lv70", "Gen 3", "missing", "filler"
}

// Confidence grades how complete a built lineup is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// LineupRecommendation is the personalized answer for one game mode.
type LineupRecommendation struct {
	Mode             string         `json:"mode"`
	Slots            []AssignedSlot `json:"slots"`
	TroopRatio       TroopRatio     `json:"troop_ratio"`
	Notes            string         `json:"notes"`
	Confidence       Confidence     `json:"confidence"`
	RecommendedToGet []string       `json:"recommended_to_get,omitempty"` // capped at 4
}

// JoinerAdvice answers "which hero do I send when joining a rally".
// Hero is empty when no canonical joiner is owned; in that case Action
// tells the player to send no hero at all.
type JoinerAdvice struct {
	Hero           string `json:"hero,omitempty"`
	SkillLevel     int    `json:"skill_level"`
	MaxSkill       int    `json:"max_skill"`
	Recommendation string `json:"recommendation"`
	Action         string `json:"action"`
	CriticalNote   string `json:"critical_note"`
}

// PhaseInfo describes the progression phase a profile sits in.
type PhaseInfo struct {
	PhaseID        string   `json:"phase_id"`
	PhaseName      string   `json:"phase_name"`
	FocusAreas     []string `json:"focus_areas"`
	CommonMistakes []string `json:"common_mistakes"`
	Bottlenecks    []string `json:"bottlenecks"`
	NextMilestone  string   `json:"next_milestone"`
}

// =============================================================================
// CONVERSATION LOG
// =============================================================================

// ConversationRecord is one logged advisory exchange. Append-only; the
// core never edits a record after writing it.
type ConversationRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ProfileSnapshot string    `json:"profile_snapshot"` // opaque JSON
	Question        string    `json:"question"`
	Answer          string    `json:"answer"`
	Source          Source    `json:"source"`
	Provider        string    `json:"provider,omitempty"`
	Model           string    `json:"model,omitempty"`
	TokensIn        int       `json:"tokens_in"`
	TokensOut       int       `json:"tokens_out"`
	ResponseTimeMs  int64     `json:"response_time_ms"`
	ThreadID        string    `json:"thread_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	Rating          *int      `json:"rating,omitempty"` // 1..5, set later by admin tooling
}
