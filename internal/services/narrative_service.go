package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"stayflo/internal/planner"
	"stayflo/pkg/metrics"
	"stayflo/pkg/utils"
)

const (
	DefaultWhyThis = "Hand-picked based on top ratings and your preferences."

	maxBlockTips       = 3
	minGeneralTips     = 2
	maxGeneralTips     = 8
	minDisclaimers     = 1
	maxDisclaimers     = 6
	maxPromptAlternate = 3
)

// BlockNarrative is the model's text for one block.
type BlockNarrative struct {
	WhyThis string   `json:"whyThis"`
	Tips    []string `json:"tips"`
}

// Narrative is the text layer over a skeleton. Blocks holds only entries
// that passed validation, keyed by block id.
type Narrative struct {
	Headline    string
	Overview    string
	Blocks      map[string]BlockNarrative
	GeneralTips []string
	Disclaimers []string
	Fallback    bool
}

// For returns the text for blockID or the default rationale.
func (n Narrative) For(blockID string) BlockNarrative {
	if b, ok := n.Blocks[blockID]; ok {
		return b
	}
	return BlockNarrative{WhyThis: DefaultWhyThis, Tips: []string{}}
}

type NarrativeInput struct {
	City   string
	Prefs  planner.PreferenceInput
	Blocks []planner.ItineraryBlock
}

type BlockNarrativeInput struct {
	City  string
	Prefs planner.PreferenceInput
	Block planner.ItineraryBlock
	Place planner.PlaceCandidate
}

type NarrativeServiceInterface interface {
	// Narrate never fails. Any problem yields fallback text.
	Narrate(ctx context.Context, in NarrativeInput) Narrative
	NarrateBlock(ctx context.Context, in BlockNarrativeInput) (BlockNarrative, error)
}

type NarrativeService struct {
	client  utils.LLMJSONClient
	timeout time.Duration
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewNarrativeService accepts a nil client, in which case every itinerary
// gets fallback text and single-block requests fail.
func NewNarrativeService(client utils.LLMJSONClient, timeout time.Duration, m *metrics.Metrics, log *zap.Logger) NarrativeServiceInterface {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NarrativeService{client: client, timeout: timeout, metrics: m, log: log.Named("narrative")}
}

var stringList = jsonschema.Definition{Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}}

var itinerarySchema = jsonschema.Definition{
	Type:                 jsonschema.Object,
	AdditionalProperties: false,
	Required:             []string{"headline", "overview", "blocks", "generalTips", "disclaimers"},
	Properties: map[string]jsonschema.Definition{
		"headline":    {Type: jsonschema.String},
		"overview":    {Type: jsonschema.String},
		"generalTips": {Type: jsonschema.Array, Description: "2 to 8 items", Items: &jsonschema.Definition{Type: jsonschema.String}},
		"disclaimers": {Type: jsonschema.Array, Description: "1 to 6 items", Items: &jsonschema.Definition{Type: jsonschema.String}},
		"blocks": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type:                 jsonschema.Object,
				AdditionalProperties: false,
				Required:             []string{"id", "whyThis", "tips"},
				Properties: map[string]jsonschema.Definition{
					"id":      {Type: jsonschema.String},
					"whyThis": {Type: jsonschema.String},
					"tips":    {Type: jsonschema.Array, Description: "at most 3 items", Items: &jsonschema.Definition{Type: jsonschema.String}},
				},
			},
		},
	},
}

var blockSchema = jsonschema.Definition{
	Type:                 jsonschema.Object,
	AdditionalProperties: false,
	Required:             []string{"whyThis", "tips"},
	Properties: map[string]jsonschema.Definition{
		"whyThis": {Type: jsonschema.String},
		"tips":    stringList,
	},
}

func itinerarySystemPrompt(city string) string {
	return strings.Join([]string{
		fmt.Sprintf("You are a hotel-concierge-style itinerary writer for %s.", city),
		"Write practical, helpful guidance. No fluff. Keep it easy to act on.",
		"Use the provided places (with ratings + review counts) as your grounding.",
		"Do NOT invent ratings, addresses, hours, menus or place names that aren't provided.",
		"If a block has no primary place, be honest and give a general suggestion.",
		"Treat guest notes as constraints. If notes say 'no coffee', do not suggest coffee. If notes mention BBQ or ice cream, explicitly incorporate them.",
	}, " ")
}

const itineraryInstructions = `Create a concise headline and overview for the itinerary.
For each block id, write:
- whyThis: 1-2 sentences that explain why it matches the guest's vibe/budget/pace
- tips: up to 3 short bullets with practical guidance (parking, best time, what to order, etc.)
Also provide 2-8 generalTips and 1-6 disclaimers (e.g., hours change, double-check holiday closures).
Tone: warm, premium concierge. Short sentences. No emojis.`

func blockSystemPrompt(city string) string {
	return strings.Join([]string{
		fmt.Sprintf("You are a premium hotel concierge for %s.", city),
		"Write practical guidance for a guest itinerary.",
		"Use only the provided place info (name, rating, review count, price).",
		"Do NOT invent facts like hours, menus, or distances.",
		"Keep 'whyThis' to 1-2 sentences. Tips: up to 3 short bullets.",
		"Tone: warm, direct, usable. No emojis.",
	}, " ")
}

type promptPrefs struct {
	Duration  planner.Duration  `json:"duration"`
	Pace      planner.Pace      `json:"pace"`
	Transport planner.Transport `json:"transport"`
	Budget    planner.Budget    `json:"budget"`
	Vibes     []string          `json:"vibes"`
	Notes     string            `json:"notes"`
}

type promptBlock struct {
	ID         string           `json:"id"`
	TimeLabel  string           `json:"timeLabel"`
	Title      string           `json:"title"`
	Category   planner.Category `json:"category"`
	Primary    string           `json:"primary"`
	Alternates []string         `json:"alternates"`
}

type promptData struct {
	City   string        `json:"city"`
	Prefs  promptPrefs   `json:"prefs"`
	Blocks []promptBlock `json:"blocks"`
}

func toPromptPrefs(p planner.PreferenceInput) promptPrefs {
	vibes := p.Vibes
	if vibes == nil {
		vibes = []string{}
	}
	return promptPrefs{Duration: p.Duration, Pace: p.Pace, Transport: p.Transport, Budget: p.Budget, Vibes: vibes, Notes: p.Notes}
}

// PlaceSummary renders "Name (rating 4.6, 1,204 reviews)".
func PlaceSummary(p *planner.PlaceCandidate) string {
	if p == nil {
		return "No match found"
	}
	rating := "-"
	if p.Rating != nil {
		rating = fmt.Sprintf("%.1f", *p.Rating)
	}
	reviews := 0
	if p.UserRatingsTotal != nil {
		reviews = *p.UserRatingsTotal
	}
	return fmt.Sprintf("%s (rating %s, %s reviews)", p.Name, rating, humanize.Comma(int64(reviews)))
}

func buildItineraryPrompt(in NarrativeInput) (string, error) {
	data := promptData{City: in.City, Prefs: toPromptPrefs(in.Prefs), Blocks: make([]promptBlock, 0, len(in.Blocks))}
	for _, b := range in.Blocks {
		alts := make([]string, 0, maxPromptAlternate)
		for i := range b.Alternates {
			if i == maxPromptAlternate {
				break
			}
			alts = append(alts, PlaceSummary(&b.Alternates[i]))
		}
		data.Blocks = append(data.Blocks, promptBlock{
			ID:         b.ID,
			TimeLabel:  b.TimeLabel,
			Title:      b.Title,
			Category:   b.Category,
			Primary:    PlaceSummary(b.Primary),
			Alternates: alts,
		})
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return itineraryInstructions + "\n\nDATA:\n" + string(raw), nil
}

// FallbackNarrative is used when the model is unavailable or its answer
// does not conform.
func FallbackNarrative(city string) Narrative {
	label := strings.TrimSpace(city)
	if label == "" {
		label = "your area"
	}
	return Narrative{
		Headline: fmt.Sprintf("Your %s plan", label),
		Overview: "A hand-picked plan built from top-rated places that match your preferences. Swap any stop for one of its alternates.",
		Blocks:   map[string]BlockNarrative{},
		GeneralTips: []string{
			"Check hours before heading out, especially on holidays.",
			"Keep an alternate in mind for each stop in case of a wait.",
		},
		Disclaimers: []string{"Hours, prices and availability can change. Confirm with each place before you go."},
		Fallback:    true,
	}
}

func (s *NarrativeService) Narrate(ctx context.Context, in NarrativeInput) Narrative {
	fallback := FallbackNarrative(in.City)
	if s.client == nil {
		s.metrics.NarrativeFallbackInc()
		return fallback
	}

	prompt, err := buildItineraryPrompt(in)
	if err != nil {
		s.log.Error("Failed to build narrative prompt", zap.Error(err))
		s.metrics.NarrativeFallbackInc()
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.GenerateJSON(ctx, utils.JSONRequest{
		Name:   "itinerary_narrative",
		System: itinerarySystemPrompt(in.City),
		User:   prompt,
		Schema: itinerarySchema,
	})
	s.metrics.Provider(s.client.Provider(), err)
	if err != nil {
		s.log.Warn("Narrative request failed, using fallback", zap.Error(err))
		s.metrics.NarrativeFallbackInc()
		return fallback
	}

	n, err := parseNarrative(raw, in.Blocks)
	if err != nil {
		s.log.Warn("Narrative did not conform, using fallback", zap.Error(err))
		s.metrics.NarrativeFallbackInc()
		return fallback
	}
	if len(n.Blocks) < len(in.Blocks) {
		s.log.Info("Some blocks fell back to default text",
			zap.Int("blocks", len(in.Blocks)),
			zap.Int("narrated", len(n.Blocks)),
		)
		s.metrics.NarrativeFallbackInc()
	}
	return n
}

type rawNarrative struct {
	Headline    *string           `json:"headline"`
	Overview    *string           `json:"overview"`
	Blocks      []json.RawMessage `json:"blocks"`
	GeneralTips []string          `json:"generalTips"`
	Disclaimers []string          `json:"disclaimers"`
}

type rawBlock struct {
	ID      *string  `json:"id"`
	WhyThis *string  `json:"whyThis"`
	Tips    []string `json:"tips"`
}

// parseNarrative validates the top level strictly. A bad block entry is
// skipped so that only that block falls back.
func parseNarrative(raw string, blocks []planner.ItineraryBlock) (Narrative, error) {
	var r rawNarrative
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Narrative{}, fmt.Errorf("%w: %v", utils.ErrUnexpectedBehaviorOfAI, err)
	}
	switch {
	case r.Headline == nil || strings.TrimSpace(*r.Headline) == "":
		return Narrative{}, fmt.Errorf("%w: missing headline", utils.ErrUnexpectedBehaviorOfAI)
	case r.Overview == nil || strings.TrimSpace(*r.Overview) == "":
		return Narrative{}, fmt.Errorf("%w: missing overview", utils.ErrUnexpectedBehaviorOfAI)
	case r.Blocks == nil:
		return Narrative{}, fmt.Errorf("%w: missing blocks", utils.ErrUnexpectedBehaviorOfAI)
	case len(r.GeneralTips) < minGeneralTips || len(r.GeneralTips) > maxGeneralTips:
		return Narrative{}, fmt.Errorf("%w: %d general tips", utils.ErrUnexpectedBehaviorOfAI, len(r.GeneralTips))
	case len(r.Disclaimers) < minDisclaimers || len(r.Disclaimers) > maxDisclaimers:
		return Narrative{}, fmt.Errorf("%w: %d disclaimers", utils.ErrUnexpectedBehaviorOfAI, len(r.Disclaimers))
	}

	known := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		known[b.ID] = struct{}{}
	}

	out := Narrative{
		Headline:    strings.TrimSpace(*r.Headline),
		Overview:    strings.TrimSpace(*r.Overview),
		Blocks:      make(map[string]BlockNarrative, len(r.Blocks)),
		GeneralTips: r.GeneralTips,
		Disclaimers: r.Disclaimers,
	}
	for _, item := range r.Blocks {
		var b rawBlock
		if err := json.Unmarshal(item, &b); err != nil {
			continue
		}
		bn, ok := validBlock(b.WhyThis, b.Tips)
		if !ok || b.ID == nil {
			continue
		}
		if _, ok := known[*b.ID]; !ok {
			continue
		}
		if _, dup := out.Blocks[*b.ID]; dup {
			continue
		}
		out.Blocks[*b.ID] = bn
	}
	return out, nil
}

func validBlock(whyThis *string, tips []string) (BlockNarrative, bool) {
	if whyThis == nil || strings.TrimSpace(*whyThis) == "" || tips == nil || len(tips) > maxBlockTips {
		return BlockNarrative{}, false
	}
	return BlockNarrative{WhyThis: strings.TrimSpace(*whyThis), Tips: tips}, true
}

type blockPromptPlace struct {
	Name    string `json:"name"`
	Rating  string `json:"rating"`
	Reviews string `json:"reviews"`
	Price   string `json:"price"`
	Address string `json:"address"`
}

type blockPromptData struct {
	City  string      `json:"city"`
	Prefs promptPrefs `json:"prefs"`
	Block struct {
		ID        string           `json:"id"`
		Title     string           `json:"title"`
		Category  planner.Category `json:"category"`
		TimeLabel string           `json:"timeLabel"`
	} `json:"block"`
	Place blockPromptPlace `json:"place"`
}

func toBlockPromptPlace(p planner.PlaceCandidate) blockPromptPlace {
	out := blockPromptPlace{Name: p.Name, Rating: "-", Reviews: "0", Address: p.Address}
	if p.Rating != nil {
		out.Rating = fmt.Sprintf("%.1f", *p.Rating)
	}
	if p.UserRatingsTotal != nil {
		out.Reviews = humanize.Comma(int64(*p.UserRatingsTotal))
	}
	if p.PriceLevel != nil {
		out.Price = strings.Repeat("$", clampInt(*p.PriceLevel, 1, 4))
	}
	return out
}

// NarrateBlock writes whyThis and tips for one place, typically after a
// swap. Unlike Narrate it reports failures to the caller.
func (s *NarrativeService) NarrateBlock(ctx context.Context, in BlockNarrativeInput) (BlockNarrative, error) {
	if strings.TrimSpace(in.Place.Name) == "" {
		return BlockNarrative{}, fmt.Errorf("%w: place name is required", utils.ErrInvalidInput)
	}
	if s.client == nil {
		return BlockNarrative{}, fmt.Errorf("%w: narrative provider not configured", utils.ErrUnexpectedBehaviorOfAI)
	}

	data := blockPromptData{City: in.City, Prefs: toPromptPrefs(in.Prefs), Place: toBlockPromptPlace(in.Place)}
	data.Block.ID = in.Block.ID
	data.Block.Title = in.Block.Title
	data.Block.Category = in.Block.Category
	data.Block.TimeLabel = in.Block.TimeLabel
	raw, err := json.Marshal(data)
	if err != nil {
		return BlockNarrative{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.GenerateJSON(ctx, utils.JSONRequest{
		Name:   "itinerary_block_narrative",
		System: blockSystemPrompt(in.City),
		User:   "Generate whyThis + tips for the place in this itinerary block.\n\nDATA:\n" + string(raw),
		Schema: blockSchema,
	})
	s.metrics.Provider(s.client.Provider(), err)
	if err != nil {
		return BlockNarrative{}, err
	}

	var b rawBlock
	if err := json.Unmarshal([]byte(out), &b); err != nil {
		return BlockNarrative{}, fmt.Errorf("%w: %v", utils.ErrUnexpectedBehaviorOfAI, err)
	}
	bn, ok := validBlock(b.WhyThis, b.Tips)
	if !ok {
		return BlockNarrative{}, fmt.Errorf("%w: response missing fields", utils.ErrUnexpectedBehaviorOfAI)
	}
	return bn, nil
}
