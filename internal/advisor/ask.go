package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"frostadvisor/internal/classify"
	"frostadvisor/internal/lineup"
	"frostadvisor/internal/llm"
	"frostadvisor/internal/logging"
	"frostadvisor/internal/types"
)

// AskRequest is one advisory question with its full player context.
type AskRequest struct {
	UserID   string
	Profile  types.Profile
	Owned    []types.OwnedHero
	Gear     types.ChiefGear
	Question string
	// ForceAI skips the rules path entirely. Still rate limited.
	ForceAI bool
	// ThreadID groups follow-up questions in the conversation log.
	// Empty means a fresh thread.
	ThreadID string
}

// Answer is the advisor's reply. Exactly one engine produced Text;
// the structured fields are set when the rules path built them.
type Answer struct {
	Text            string                      `json:"text"`
	Source          types.Source                `json:"source"`
	Category        string                      `json:"category"`
	Provider        string                      `json:"provider,omitempty"`
	Model           string                      `json:"model,omitempty"`
	Recommendations []types.Recommendation      `json:"recommendations,omitempty"`
	Lineup          *types.LineupRecommendation `json:"lineup,omitempty"`
	Joiner          *types.JoinerAdvice         `json:"joiner,omitempty"`
	Phase           *types.PhaseInfo            `json:"phase,omitempty"`
	ThreadID        string                      `json:"thread_id"`
	ConversationID  string                      `json:"conversation_id"`
}

// modeKeywords maps question phrases to lineup mode keys. Checked in
// order; more specific phrases first.
var modeKeywords = []struct {
	phrase string
	mode   string
}{
	{"bear trap", "bear_trap"},
	{"bear", "bear_trap"},
	{"crazy joe", "crazy_joe"},
	{"garrison", "garrison"},
	{"reinforce", "rally_joiner_defense"},
	{"joiner", "rally_joiner_attack"},
	{"join", "rally_joiner_attack"},
	{"rally", "rally_joiner_attack"},
	{"svs", "svs_field"},
	{"field", "svs_field"},
}

// Ask answers one question. The rules engines run first unless ForceAI
// is set; the AI path runs only for questions the rules cannot carry,
// and only inside the user's rate limit. Every completed answer is
// logged exactly once.
func (a *Advisor) Ask(ctx context.Context, req AskRequest) (Answer, error) {
	timer := logging.StartTimer(logging.CategoryAdvisor, "Advisor.Ask")
	defer timer.Stop()
	start := time.Now()

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	cls := classify.Classify(req.Question)
	answer := Answer{Category: cls.Category, ThreadID: threadID}

	if !req.ForceAI && cls.Type != classify.EngineAI {
		a.answerFromRules(ctx, cls.Category, req, &answer)
	}

	// A rules-typed question never escalates, whatever the rules engines
	// produced. Only hybrid questions weigh the fallback heuristic.
	rulesEmpty := answer.Text == ""
	wantsAI := req.ForceAI ||
		cls.Type == classify.EngineAI ||
		(cls.Type == classify.EngineHybrid && classify.NeedsAIFallback(req.Question, rulesEmpty))

	if !wantsAI {
		answer.Source = types.SourceRules
		a.logAnswer(ctx, req, &answer, start)
		return answer, nil
	}

	return a.answerWithAI(ctx, req, answer, start)
}

// answerFromRules fills the answer from the engine matching the
// category. An empty answer only escalates when the question itself
// classified as hybrid.
func (a *Advisor) answerFromRules(ctx context.Context, category string, req AskRequest, answer *Answer) {
	switch category {
	case classify.CategoryLineup:
		mode, ok := modeFromQuestion(req.Question)
		if !ok {
			answer.Text = "Which mode do you mean? I can build lineups for: " +
				strings.Join(a.catalog.ModeKeys(), ", ") + "."
			return
		}
		var rec types.LineupRecommendation
		if len(req.Owned) == 0 {
			rec = a.lineups.BuildGeneral(mode, req.Profile)
		} else {
			rec = a.lineups.Build(mode, req.Owned, req.Profile)
		}
		answer.Lineup = &rec
		answer.Text = renderLineup(rec)

	case classify.CategoryJoinerHero:
		isAttack := !strings.Contains(strings.ToLower(req.Question), "defen") &&
			!strings.Contains(strings.ToLower(req.Question), "garrison") &&
			!strings.Contains(strings.ToLower(req.Question), "reinforce")
		advice := lineup.JoinerRecommendation(req.Owned, isAttack)
		answer.Joiner = &advice
		answer.Text = renderJoiner(advice)

	case classify.CategoryPhase, classify.CategoryProgression:
		info := a.progress.PhaseInfo(req.Profile)
		answer.Phase = &info
		recs := a.progress.Analyze(req.Profile)
		answer.Recommendations = recs
		answer.Text = renderPhase(info, recs)

	case classify.CategoryGear:
		recs := a.gear.Analyze(req.Profile, req.Owned, req.Gear)
		recs = mergeRecommendations(recs)
		if len(recs) > 5 {
			recs = recs[:5]
		}
		answer.Recommendations = recs
		answer.Text = renderRecommendations(recs)

	case classify.CategoryUpgrade, classify.CategorySkills, classify.CategoryInvest:
		// Hero questions stay inside the hero analyzer; the merged plan
		// would dilute them with gear and progression advice.
		recs := mergeRecommendations(a.heroes.Analyze(req.Profile, req.Owned))
		if len(recs) > 5 {
			recs = recs[:5]
		}
		answer.Recommendations = recs
		answer.Text = renderRecommendations(recs)

	case classify.CategoryPriority, classify.CategoryOther:
		recs, err := a.Recommend(ctx, req.Profile, req.Owned, req.Gear, 5)
		if err != nil {
			return
		}
		answer.Recommendations = recs
		answer.Text = renderRecommendations(recs)
	}
}

// answerWithAI runs the rate-limited AI path. A rules answer already in
// place makes this a hybrid: the rules output rides along as context.
func (a *Advisor) answerWithAI(ctx context.Context, req AskRequest, answer Answer, start time.Time) (Answer, error) {
	decision, err := a.limiter.Reserve(ctx, req.UserID)
	if err != nil {
		return Answer{}, fmt.Errorf("rate limit check: %w", err)
	}
	if !decision.Allowed {
		answer.Text = decision.Message
		answer.Source = types.SourceError
		a.logAnswer(ctx, req, &answer, start)
		return answer, nil
	}

	// Canceled before the provider call: give the slot back.
	if ctx.Err() != nil {
		if rerr := a.limiter.Refund(context.WithoutCancel(ctx), req.UserID); rerr != nil {
			logging.AdvisorError("refund after cancel failed for %s: %v", req.UserID, rerr)
		}
		return Answer{}, ctx.Err()
	}

	if a.llm == nil {
		answer.Text = UserSafeMessage(llm.ErrNotConfigured)
		answer.Source = types.SourceError
		a.logAnswer(ctx, req, &answer, start)
		return answer, nil
	}

	userMsg := llm.BuildUserMessage(req.Question, req.Profile, req.Owned)
	if answer.Text != "" {
		userMsg += "\n\nRule-based suggestions already shown to the player:\n" + answer.Text
	}

	resp, err := a.llm.Chat(ctx, llm.Request{
		SystemPrompt: llm.AdvisorSystemPrompt,
		UserMessage:  userMsg,
	})
	if err != nil {
		// The provider was called; the slot stays spent.
		logging.AdvisorError("ai answer failed for %s: %v", req.UserID, err)
		answer.Text = UserSafeMessage(err)
		answer.Source = types.SourceError
		a.logAnswer(ctx, req, &answer, start)
		return answer, nil
	}

	if answer.Lineup != nil || answer.Joiner != nil || answer.Phase != nil || len(answer.Recommendations) > 0 {
		answer.Source = types.SourceHybrid
	} else {
		answer.Source = types.SourceAI
	}
	answer.Text = resp.Text
	answer.Provider = resp.Provider
	answer.Model = resp.Model
	a.logAnswerWithTokens(ctx, req, &answer, start, resp.TokensIn, resp.TokensOut)
	return answer, nil
}

func (a *Advisor) logAnswer(ctx context.Context, req AskRequest, answer *Answer, start time.Time) {
	a.logAnswerWithTokens(ctx, req, answer, start, 0, 0)
}

// logAnswerWithTokens appends the exchange to the conversation log.
// Failures are logged and swallowed; the player still gets the answer.
func (a *Advisor) logAnswerWithTokens(ctx context.Context, req AskRequest, answer *Answer, start time.Time, tokensIn, tokensOut int) {
	if a.log == nil {
		return
	}

	snapshot, err := json.Marshal(req.Profile)
	if err != nil {
		snapshot = []byte("{}")
	}
	rec := types.ConversationRecord{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		ProfileSnapshot: string(snapshot),
		Question:        req.Question,
		Answer:          answer.Text,
		Source:          answer.Source,
		Provider:        answer.Provider,
		Model:           answer.Model,
		TokensIn:        tokensIn,
		TokensOut:       tokensOut,
		ResponseTimeMs:  time.Since(start).Milliseconds(),
		ThreadID:        answer.ThreadID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := a.log.AppendConversation(context.WithoutCancel(ctx), rec); err != nil {
		logging.AdvisorError("conversation log write failed: %v", err)
		return
	}
	answer.ConversationID = rec.ID
}

func modeFromQuestion(question string) (string, bool) {
	q := strings.ToLower(question)
	for _, mk := range modeKeywords {
		if strings.Contains(q, mk.phrase) {
			return mk.mode, true
		}
	}
	return "", false
}

// =============================================================================
// RULES ANSWER RENDERING
// =============================================================================

func renderRecommendations(recs []types.Recommendation) string {
	if len(recs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range recs {
		fmt.Fprintf(&b, "%d. [P%d] %s", i+1, r.Priority, r.Action)
		if r.Reason != "" {
			fmt.Fprintf(&b, " -- %s", r.Reason)
		}
		if i < len(recs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderLineup(rec types.LineupRecommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lineup for %s (confidence: %s):\n", rec.Mode, rec.Confidence)
	for i, s := range rec.Slots {
		if s.Hero != "" {
			fmt.Fprintf(&b, "%d. %s (%s, %s)\n", i+1, s.Hero, s.Role, s.Status)
		} else {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, s.Placeholder, s.Role)
		}
	}
	if rec.TroopRatio != (types.TroopRatio{}) {
		fmt.Fprintf(&b, "Troops: %d/%d/%d infantry/lancer/marksman\n",
			rec.TroopRatio.Infantry, rec.TroopRatio.Lancer, rec.TroopRatio.Marksman)
	}
	if len(rec.RecommendedToGet) > 0 {
		fmt.Fprintf(&b, "Worth acquiring: %s\n", strings.Join(rec.RecommendedToGet, ", "))
	}
	b.WriteString(rec.Notes)
	return strings.TrimSpace(b.String())
}

func renderJoiner(advice types.JoinerAdvice) string {
	var b strings.Builder
	b.WriteString(advice.Recommendation)
	b.WriteString("\n")
	b.WriteString("Action: " + advice.Action)
	b.WriteString("\n")
	b.WriteString(advice.CriticalNote)
	return b.String()
}

func renderPhase(info types.PhaseInfo, recs []types.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are in the %s phase. Next milestone: %s.\n", info.PhaseName, info.NextMilestone)
	b.WriteString("Focus areas:\n")
	for _, f := range info.FocusAreas {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	if len(info.CommonMistakes) > 0 {
		b.WriteString("Common mistakes to avoid:\n")
		for _, m := range info.CommonMistakes {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}
	return strings.TrimSpace(b.String())
}
