package planner

import (
	"strings"
	"time"
)

const (
	maxBoostKeywords = 8

	hiddenGem      = "hidden gem locals love"
	localFavorite  = "local favorite"
	familyFavorite = "family friendly local favorite"
	nearbyCity     = "nearby"
)

// GapFor is the spacing between consecutive blocks.
func GapFor(p Pace) time.Duration {
	switch p {
	case PacePacked:
		return 90 * time.Minute
	case PaceChill:
		return 150 * time.Minute
	default:
		return 120 * time.Minute
	}
}

func budgetHint(b Budget) string {
	switch b {
	case Budget1:
		return "budget-friendly"
	case Budget3:
		return "upscale"
	case Budget4:
		return "fine dining"
	default:
		return "mid-priced"
	}
}

// queryComposer renders the search strings for one request. It holds only
// values derived from the request and is discarded afterwards.
type queryComposer struct {
	city     string
	budget   string
	flavor   string
	boost    string
	negative string
}

func newQueryComposer(p PreferenceInput, sig NoteSignals, city string) queryComposer {
	qc := queryComposer{
		city:   city,
		budget: budgetHint(p.Budget),
		flavor: localFavorite,
	}
	if sig.KidFriendly {
		qc.flavor = familyFavorite
	}
	if boost := sig.BoostKeywords(maxBoostKeywords); len(boost) > 0 {
		qc.boost = "(" + strings.Join(boost, ", ") + ")"
	}
	neg := make([]string, 0, len(sig.AvoidKeywords))
	for _, w := range sig.AvoidKeywords {
		neg = append(neg, "-"+w)
	}
	qc.negative = strings.Join(neg, " ")
	return qc
}

type qualifier int

const (
	qualLocal qualifier = iota
	qualGem
	qualBudgetLocal
)

// compose joins phrase, city, qualifier, boost and negative suffix.
// "{city}" inside phrase is substituted in place instead of appended.
func (qc queryComposer) compose(phrase string, q qualifier) string {
	parts := make([]string, 0, 6)
	if strings.Contains(phrase, "{city}") {
		parts = append(parts, strings.ReplaceAll(phrase, "{city}", qc.city))
	} else {
		parts = append(parts, phrase, qc.city)
	}
	switch q {
	case qualBudgetLocal:
		parts = append(parts, qc.budget, qc.flavor)
	case qualGem:
		parts = append(parts, hiddenGem)
	default:
		parts = append(parts, qc.flavor)
	}
	parts = append(parts, qc.boost, qc.negative)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// unlessAvoided composes phrase only when none of its words is an avoid
// keyword.
func (qc queryComposer) unlessAvoided(sig NoteSignals, phrase string, q qualifier) []string {
	if sig.Avoids(phrase) {
		return nil
	}
	return []string{qc.compose(phrase, q)}
}

// SlotBuilder produces the ordered slot skeleton for one request.
type SlotBuilder struct {
	prefs   PreferenceInput
	signals NoteSignals
	res     Resolution
	gap     time.Duration
	loc     *time.Location
	qc      queryComposer
}

// NewSlotBuilder prepares a builder. city is the locale search city, or
// empty when the request carries an origin coordinate.
func NewSlotBuilder(p PreferenceInput, sig NoteSignals, res Resolution, city string, loc *time.Location) SlotBuilder {
	if p.Origin != nil || strings.TrimSpace(city) == "" {
		city = nearbyCity
	}
	if loc == nil {
		loc = time.UTC
	}
	return SlotBuilder{
		prefs:   p,
		signals: sig,
		res:     res,
		gap:     GapFor(p.Pace),
		loc:     loc,
		qc:      newQueryComposer(p, sig, city),
	}
}

// Build returns the slots in display order with start times already set.
func (b SlotBuilder) Build() []SlotTemplate {
	var slots []SlotTemplate
	switch {
	case b.res.NowMode:
		slots = b.nowSlots()
	case b.res.NightMode:
		slots = b.nightSlots()
	default:
		slots = b.daySlots()
	}
	for i := range slots {
		slots[i].StartAt = b.res.Start.Add(time.Duration(i) * b.gap)
	}
	return slots
}

func (b SlotBuilder) nowSlots() []SlotTemplate {
	sig := b.signals
	qc := b.qc

	thing := []string{}
	if len(sig.Activities) > 0 {
		thing = append(thing, qc.compose(sig.Activities[0]+" open now", qualLocal))
	}
	thing = append(thing,
		qc.compose("things to do open now", qualLocal),
		qc.compose("attractions open now", qualGem),
	)

	hour := b.res.Start.In(b.loc).Hour()
	meal, mealCat, mealTitle := "dinner", CategoryDinner, "Grab dinner nearby"
	switch {
	case hour < 11:
		meal, mealCat, mealTitle = "breakfast", CategoryBreakfast, "Grab breakfast nearby"
	case hour < 16:
		meal, mealCat, mealTitle = "lunch", CategoryLunch, "Grab lunch nearby"
	}
	food := []string{}
	if len(sig.Cuisines) > 0 && meal != "breakfast" {
		food = append(food, qc.compose(sig.Cuisines[0]+" "+meal+" open now", qualBudgetLocal))
	}
	food = append(food,
		qc.compose(meal+" open now", qualBudgetLocal),
		qc.compose("quick bite open now", qualGem),
	)

	last := SlotTemplate{ID: "now_3", Title: "One more stop", RequireOpenNow: true}
	if hour >= 18 && !sig.KidFriendly {
		last.Category = CategoryNightlife
		if len(sig.Nightlife) > 0 {
			last.Queries = append(last.Queries, qc.compose(sig.Nightlife[0]+" open now", qualGem))
		}
		last.Queries = append(last.Queries, qc.unlessAvoided(sig, "live music open now", qualLocal)...)
		last.Queries = append(last.Queries, qc.unlessAvoided(sig, "cocktail bar open now", qualGem)...)
		if len(last.Queries) < 2 {
			last.Queries = append(last.Queries, qc.compose("nightlife open now", qualLocal))
		}
	} else {
		last.Category = CategoryOutdoors
		last.Queries = []string{
			qc.compose("scenic park walk", qualLocal),
			qc.compose("outdoor spot open now", qualGem),
		}
	}

	return []SlotTemplate{
		{ID: "now_1", Title: "Do something nearby (open now)", Category: CategoryAttraction, Queries: capQueries(thing), RequireOpenNow: true},
		{ID: "now_2", Title: mealTitle, Category: mealCat, Queries: capQueries(food), RequireOpenNow: true},
		{ID: "now_3", Title: last.Title, Category: last.Category, Queries: capQueries(last.Queries), RequireOpenNow: true},
	}
}

func (b SlotBuilder) nightSlots() []SlotTemplate {
	sig := b.signals
	qc := b.qc

	var dessert []string
	title := "Night bite / dessert"
	if sig.WantsIceCream {
		title = "Ice cream / dessert (open late)"
		dessert = []string{
			qc.compose("ice cream open late", qualLocal),
			qc.compose("gelato open late", qualGem),
			qc.compose("late night dessert", qualGem),
		}
	} else {
		dessert = []string{
			qc.compose("late night dessert", qualGem),
			qc.compose("late night tacos", qualLocal),
			qc.compose("open late food", qualGem),
		}
	}

	var activity []string
	if sig.KidFriendly {
		activity = []string{
			qc.compose("evening walk scenic", qualLocal),
			qc.compose("family friendly evening", qualGem),
		}
	} else {
		if len(sig.Nightlife) > 0 {
			activity = append(activity, qc.compose(sig.Nightlife[0]+" open late", qualGem))
		}
		activity = append(activity, qc.unlessAvoided(sig, "live music tonight", qualLocal)...)
		activity = append(activity, qc.unlessAvoided(sig, "cocktail bar open late", qualGem)...)
		activity = append(activity, qc.compose("nightlife popular", qualLocal))
	}

	return []SlotTemplate{
		{ID: "night_1", Title: title, Category: CategoryRelax, Queries: dessert, RequireOpenNow: true},
		{ID: "night_2", Title: "Night activity (open now)", Category: CategoryNightlife, Queries: capQueries(activity), RequireOpenNow: true},
	}
}

func (b SlotBuilder) daySlots() []SlotTemplate {
	sig := b.signals
	qc := b.qc

	morningTitle := "Breakfast / coffee (your choice)"
	morning := []string{qc.compose("best breakfast", qualBudgetLocal)}
	if sig.NoCoffee {
		morningTitle = "Breakfast / morning bite"
		morning = append(morning,
			qc.compose("breakfast tacos", qualGem),
			qc.compose("bakery", qualGem),
		)
	} else {
		morning = append(morning,
			qc.compose("coffee and pastries", qualGem),
			qc.compose("cafe", qualLocal),
		)
	}

	thing := []string{}
	if len(sig.Activities) > 0 {
		thing = append(thing, qc.compose("best "+sig.Activities[0], qualLocal))
	}
	thing = append(thing,
		qc.compose("top attractions", qualLocal),
		qc.compose("things to do", qualGem),
	)
	thing = append(thing, qc.unlessAvoided(sig, "best museums", qualLocal)...)

	lunchTitle := "Lunch"
	var lunch []string
	switch {
	case sig.WantsBBQ:
		lunchTitle = "Lunch (BBQ)"
		lunch = []string{
			qc.compose("best bbq {city} brisket ribs", qualLocal),
			qc.compose("bbq near {city} smoked meats", qualGem),
		}
	case len(sig.Cuisines) > 0:
		lunch = []string{qc.compose("best "+sig.Cuisines[0]+" lunch", qualBudgetLocal)}
	}
	lunch = append(lunch,
		qc.compose("best lunch", qualBudgetLocal),
		qc.compose("local lunch", qualGem),
	)

	slots := []SlotTemplate{
		{ID: "morning", Title: morningTitle, Category: CategoryBreakfast, Queries: capQueries(morning)},
		{ID: "thing", Title: "Top thing to do", Category: CategoryAttraction, Queries: capQueries(thing)},
		{ID: "lunch", Title: lunchTitle, Category: CategoryLunch, Queries: capQueries(lunch)},
	}

	if b.prefs.Duration != DurationHalfDay {
		dinner := []string{}
		if len(sig.Cuisines) > 0 {
			dinner = append(dinner, qc.compose("best "+sig.Cuisines[len(sig.Cuisines)-1]+" dinner", qualBudgetLocal))
		}
		dinner = append(dinner,
			qc.compose("best dinner", qualBudgetLocal),
			qc.compose("local dinner", qualGem),
		)

		var eve []string
		if sig.KidFriendly {
			eve = []string{
				qc.compose("evening walk scenic", qualLocal),
				qc.compose("family friendly evening", qualGem),
			}
		} else {
			if len(sig.Nightlife) > 0 {
				eve = append(eve, qc.compose(sig.Nightlife[0], qualGem))
			}
			eve = append(eve, qc.unlessAvoided(sig, "cocktail bars", qualGem)...)
			eve = append(eve, qc.unlessAvoided(sig, "live music", qualLocal)...)
			if len(eve) == 0 {
				eve = append(eve, qc.compose("evening things to do", qualGem))
			}
		}

		slots = append(slots,
			SlotTemplate{ID: "aft", Title: "Explore a neighborhood / shops", Category: CategoryShopping, Queries: []string{
				qc.compose("best neighborhoods to explore", qualLocal),
				qc.compose("boutiques", qualGem),
				qc.compose("{city} market square local", qualLocal),
			}},
			SlotTemplate{ID: "dinner", Title: "Dinner", Category: CategoryDinner, Queries: capQueries(dinner)},
			SlotTemplate{ID: "eve", Title: "Evening option", Category: CategoryNightlife, Queries: capQueries(eve)},
		)
	}

	if sig.KidFriendly || sig.WantsIceCream {
		slots = spliceAfter(slots, "lunch", b.treatSlot())
	}

	if len(sig.AreaHints) > 0 {
		for i := range slots {
			hint := sig.AreaHints[i%len(sig.AreaHints)]
			slots[i].Queries = append([]string{qc.compose(firstPhrase(slots[i])+" near "+hint, qualLocal)}, slots[i].Queries...)
			slots[i].Queries = capQueries(slots[i].Queries)
		}
	}

	return slots
}

func (b SlotBuilder) treatSlot() SlotTemplate {
	qc := b.qc
	if b.signals.WantsIceCream {
		return SlotTemplate{ID: "treat", Title: "Ice cream / treat stop", Category: CategoryRelax, Queries: []string{
			qc.compose("best ice cream", qualLocal),
			qc.compose("gelato", qualGem),
		}}
	}
	return SlotTemplate{ID: "treat", Title: "Treat stop", Category: CategoryRelax, Queries: []string{
		qc.compose("dessert", qualLocal),
		qc.compose("ice cream", qualGem),
	}}
}

// categoryPhrase is the bare search phrase used for area-hinted variants.
var categoryPhrase = map[Category]string{
	CategoryCoffee:     "coffee",
	CategoryBreakfast:  "breakfast",
	CategoryLunch:      "lunch",
	CategoryDinner:     "dinner",
	CategoryAttraction: "things to do",
	CategoryShopping:   "shops",
	CategoryOutdoors:   "park",
	CategoryNightlife:  "bars",
	CategoryRelax:      "dessert",
}

func firstPhrase(s SlotTemplate) string {
	return categoryPhrase[s.Category]
}

func spliceAfter(slots []SlotTemplate, id string, extra SlotTemplate) []SlotTemplate {
	out := make([]SlotTemplate, 0, len(slots)+1)
	inserted := false
	for _, s := range slots {
		out = append(out, s)
		if s.ID == id {
			out = append(out, extra)
			inserted = true
		}
	}
	if !inserted {
		out = append(out, extra)
	}
	return out
}

const maxQueriesPerSlot = 4

func capQueries(q []string) []string {
	if len(q) > maxQueriesPerSlot {
		return q[:maxQueriesPerSlot]
	}
	return q
}
