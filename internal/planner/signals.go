package planner

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxCuisines        = 6
	maxNightlife       = 5
	maxActivities      = 5
	maxIncludeKeywords = 12
	maxAvoidKeywords   = 6
	maxAreaHints       = 3

	minKeywordLen = 3
	maxKeywordLen = 22
)

// NoteSignals is derived once per request from notes and vibes and never
// mutated afterwards.
type NoteSignals struct {
	NoCoffee        bool
	WantsBBQ        bool
	WantsIceCream   bool
	KidFriendly     bool
	Cuisines        []string
	Nightlife       []string
	Activities      []string
	IncludeKeywords []string
	AvoidKeywords   []string
	AreaHints       []string
}

// BoostKeywords merges intent terms and include keywords for the query
// parenthetical, most specific first.
func (s NoteSignals) BoostKeywords(limit int) []string {
	out := newCappedSet(limit)
	for _, group := range [][]string{s.Cuisines, s.Activities, s.Nightlife, s.IncludeKeywords} {
		for _, k := range group {
			out.add(k)
		}
	}
	return out.items
}

// Avoids reports whether any word of phrase is an avoid keyword.
func (s NoteSignals) Avoids(phrase string) bool {
	for _, w := range strings.Fields(phrase) {
		for _, k := range s.AvoidKeywords {
			if w == k {
				return true
			}
		}
	}
	return false
}

var (
	apostrophes   = strings.NewReplacer("'", "", "’", "", "‘", "")
	nonWordRegex  = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	spaceRunRegex = regexp.MustCompile(`\s+`)
)

// normalize lowercases, drops apostrophes so "don't" reads as "dont",
// turns remaining punctuation into spaces and collapses whitespace. Letters
// and digits of any script survive.
func normalize(s string) string {
	s = apostrophes.Replace(strings.ToLower(s))
	s = nonWordRegex.ReplaceAllString(s, " ")
	s = spaceRunRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var (
	noCoffeeRegex  = regexp.MustCompile(`\b(no coffee|dont like coffee|do not like coffee|hate coffee|avoid coffee|skip coffee|no caffeine|not a coffee)\b`)
	bbqRegex       = regexp.MustCompile(`\b(bbq|barbecue|barbeque|brisket|ribs|smoked)\b`)
	iceCreamRegex  = regexp.MustCompile(`\b(ice cream|gelato|frozen custard|milkshake|milkshakes)\b`)
	kidRegex       = regexp.MustCompile(`\b(kids|kid|children|child|family|toddler|toddlers|stroller)\b`)
	familyVibeRegx = regexp.MustCompile(`\bfamily\b`)
	bbqVibeRegex   = regexp.MustCompile(`\b(bbq|barbecue)\b`)
)

var cuisineTerms = []string{
	"tex mex", "mexican", "tacos", "bbq", "barbecue", "italian", "pizza", "sushi", "japanese",
	"ramen", "thai", "vietnamese", "pho", "indian", "chinese", "korean", "mediterranean",
	"greek", "seafood", "steakhouse", "steak", "burgers", "vegan", "vegetarian", "brunch",
	"french", "cajun", "southern", "peruvian", "ethiopian",
}

var nightlifeTerms = []string{
	"live music", "cocktail bar", "cocktails", "speakeasy", "rooftop", "brewery", "breweries",
	"craft beer", "wine bar", "winery", "jazz", "karaoke", "dancing", "comedy", "bars", "bar",
}

var activityTerms = []string{
	"river walk", "botanical garden", "museum", "museums", "art", "gallery", "history",
	"missions", "hiking", "hike", "park", "parks", "zoo", "aquarium", "kayak", "kayaking",
	"biking", "golf", "spa", "theater", "shopping", "market", "farmers market", "nature",
}

// DefaultAreaHints are the named San Antonio areas recognized in notes when
// a property does not configure its own.
var DefaultAreaHints = []string{
	"pearl", "southtown", "river walk", "downtown", "alamo heights", "king william",
	"la cantera", "the rim", "stone oak", "boerne", "new braunfels", "schertz",
}

type termMatcher struct {
	term string
	re   *regexp.Regexp
}

func compileTerms(terms []string) []termMatcher {
	out := make([]termMatcher, 0, len(terms))
	for _, t := range terms {
		out = append(out, termMatcher{term: t, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)})
	}
	return out
}

var (
	cuisineMatchers   = compileTerms(cuisineTerms)
	nightlifeMatchers = compileTerms(nightlifeTerms)
	activityMatchers  = compileTerms(activityTerms)
)

// avoidRule captures the object of a negation phrase. Group 1 is the term.
type avoidRule struct {
	name    string
	pattern *regexp.Regexp
}

var avoidRules = []avoidRule{
	{name: "avoid", pattern: regexp.MustCompile(`\bavoid(?:ing)?\s+([\p{L}\p{N}]+)`)},
	{name: "no", pattern: regexp.MustCompile(`\bno\s+([\p{L}\p{N}]+)`)},
	{name: "skip", pattern: regexp.MustCompile(`\bskip(?:ping)?\s+([\p{L}\p{N}]+)`)},
	{name: "dont want", pattern: regexp.MustCompile(`\b(?:dont|do not) want\s+(?:any\s+|to\s+)?([\p{L}\p{N}]+)`)},
	{name: "dont like", pattern: regexp.MustCompile(`\b(?:dont|do not) like\s+([\p{L}\p{N}]+)`)},
	{name: "hate", pattern: regexp.MustCompile(`\bhate\s+([\p{L}\p{N}]+)`)},
	{name: "not into", pattern: regexp.MustCompile(`\bnot into\s+([\p{L}\p{N}]+)`)},
	{name: "without", pattern: regexp.MustCompile(`\bwithout\s+([\p{L}\p{N}]+)`)},
}

var stopWords = toSet(
	"i", "we", "my", "me", "our", "us", "the", "a", "an", "and", "or", "but", "to", "of",
	"for", "with", "on", "in", "at", "by", "from", "is", "are", "be", "it", "its", "this",
	"that", "like", "love", "want", "wants", "dont", "no", "not", "avoid", "avoiding",
	"please", "prefer", "really", "very", "some", "any", "more", "much", "too", "also",
	"just", "can", "could", "would", "will", "should", "have", "has", "had", "get", "go",
	"going", "into", "skip", "skipping", "hate", "without", "something", "things", "thing",
	"place", "places", "spot", "spots", "good", "great", "nice", "best", "lot", "lots",
	"day", "today", "tomorrow", "tonight", "maybe", "them", "they", "you", "your", "there",
	"here", "what", "when", "where", "who", "which", "all", "if", "so", "do", "does", "did",
	"am", "was", "were", "been", "one", "two", "three",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// cappedSet keeps first-seen order and silently ignores items past its limit.
type cappedSet struct {
	limit int
	seen  map[string]struct{}
	items []string
}

func newCappedSet(limit int) *cappedSet {
	return &cappedSet{limit: limit, seen: make(map[string]struct{}), items: []string{}}
}

func (c *cappedSet) add(s string) {
	if s == "" || len(c.items) >= c.limit {
		return
	}
	if _, ok := c.seen[s]; ok {
		return
	}
	c.seen[s] = struct{}{}
	c.items = append(c.items, s)
}

func (c *cappedSet) has(s string) bool {
	_, ok := c.seen[s]
	return ok
}

// SignalExtractor turns notes and vibes into NoteSignals. The zero value
// uses DefaultAreaHints.
type SignalExtractor struct {
	AreaHints []string
}

func NewSignalExtractor(areaHints []string) SignalExtractor {
	return SignalExtractor{AreaHints: areaHints}
}

// ExtractSignals runs the default extractor.
func ExtractSignals(notes string, vibes []string) NoteSignals {
	return SignalExtractor{}.Extract(notes, vibes)
}

// areaHints returns the normalized hint list.
func (e SignalExtractor) areaHints() []string {
	hints := e.AreaHints
	if len(hints) == 0 {
		hints = DefaultAreaHints
	}
	out := make([]string, 0, len(hints))
	for _, h := range hints {
		if h = normalize(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

func (e SignalExtractor) Extract(notesRaw string, vibes []string) NoteSignals {
	notes := normalize(notesRaw)
	vibeText := normalize(strings.Join(vibes, " "))
	combined := strings.TrimSpace(notes + " " + vibeText)

	hints := e.areaHints()
	avoid, neg := negatedTerms(notes)
	neg.widen(intentLocations(notes, hints))

	sig := NoteSignals{
		NoCoffee:      noCoffeeRegex.MatchString(notes),
		WantsBBQ:      matchOutside(bbqRegex, notes, neg) || bbqVibeRegex.MatchString(vibeText),
		WantsIceCream: matchOutside(iceCreamRegex, notes, neg) || iceCreamRegex.MatchString(vibeText),
		KidFriendly:   matchOutside(kidRegex, notes, neg) || familyVibeRegx.MatchString(vibeText),
	}

	sig.AvoidKeywords = avoid.items

	sig.Cuisines = matchTerms(cuisineMatchers, combined, avoid, neg, maxCuisines)
	sig.Nightlife = matchTerms(nightlifeMatchers, combined, avoid, neg, maxNightlife)
	sig.Activities = matchTerms(activityMatchers, combined, avoid, neg, maxActivities)
	sig.IncludeKeywords = includeKeywords(notes, avoid, neg)

	areas := newCappedSet(maxAreaHints)
	for _, h := range hints {
		if containsOutside(notes, h, neg) {
			areas.add(h)
		}
	}
	sig.AreaHints = areas.items

	return sig
}

func matchTerms(matchers []termMatcher, text string, avoid *cappedSet, neg negations, limit int) []string {
	out := newCappedSet(limit)
	if text == "" {
		return out.items
	}
	for _, m := range matchers {
		if avoid.has(m.term) {
			continue
		}
		if matchOutside(m.re, text, neg) {
			out.add(m.term)
		}
	}
	return out.items
}

func isContentWord(w string, avoid *cappedSet) bool {
	if n := utf8.RuneCountInString(w); n < minKeywordLen || n > maxKeywordLen {
		return false
	}
	if _, stop := stopWords[w]; stop {
		return false
	}
	return !avoid.has(w)
}

// includeKeywords collects content words in order, then adjacent content
// word pairs, until the cap is reached. Words inside a negated span never
// count.
func includeKeywords(notes string, avoid *cappedSet, neg negations) []string {
	out := newCappedSet(maxIncludeKeywords)
	if notes == "" {
		return out.items
	}
	words := strings.Fields(notes)
	content := make([]bool, len(words))
	// normalize leaves exactly one space between words.
	offset := 0
	for i, w := range words {
		start, end := offset, offset+len(w)
		offset = end + 1
		content[i] = !neg.covers(start, end) && isContentWord(w, avoid)
		if content[i] {
			out.add(w)
		}
	}
	for i := 0; i+1 < len(words); i++ {
		if content[i] && content[i+1] {
			out.add(words[i] + " " + words[i+1])
		}
	}
	return out.items
}

// span is a byte range [start, end) of normalized notes.
type span struct {
	start, end int
}

func (s span) overlaps(start, end int) bool {
	return start < s.end && s.start < end
}

// negations are the spans of terms captured by the avoid rules.
type negations []span

func (n negations) covers(start, end int) bool {
	for _, s := range n {
		if s.overlaps(start, end) {
			return true
		}
	}
	return false
}

// widen stretches each span over any known phrase it touches, so "avoid
// live music" negates "music" as well as "live".
func (n negations) widen(locs [][]int) {
	for i := range n {
		for _, loc := range locs {
			if n[i].overlaps(loc[0], loc[1]) {
				n[i].start = min(n[i].start, loc[0])
				n[i].end = max(n[i].end, loc[1])
			}
		}
	}
}

// negatedTerms runs the avoid rules once, returning the capped avoid
// keywords and the span of every captured non-stop word.
func negatedTerms(notes string) (*cappedSet, negations) {
	avoid := newCappedSet(maxAvoidKeywords)
	var neg negations
	for _, rule := range avoidRules {
		for _, m := range rule.pattern.FindAllStringSubmatchIndex(notes, -1) {
			term := notes[m[2]:m[3]]
			if _, stop := stopWords[term]; stop {
				continue
			}
			neg = append(neg, span{start: m[2], end: m[3]})
			if utf8.RuneCountInString(term) >= minKeywordLen {
				avoid.add(term)
			}
		}
	}
	return avoid, neg
}

func intentLocations(notes string, hints []string) [][]int {
	var locs [][]int
	for _, group := range [][]termMatcher{cuisineMatchers, nightlifeMatchers, activityMatchers} {
		for _, m := range group {
			locs = append(locs, m.re.FindAllStringIndex(notes, -1)...)
		}
	}
	for _, re := range []*regexp.Regexp{bbqRegex, iceCreamRegex, kidRegex} {
		locs = append(locs, re.FindAllStringIndex(notes, -1)...)
	}
	for _, h := range hints {
		for off := 0; h != ""; {
			i := strings.Index(notes[off:], h)
			if i < 0 {
				break
			}
			locs = append(locs, []int{off + i, off + i + len(h)})
			off += i + len(h)
		}
	}
	return locs
}

// matchOutside reports whether re matches text anywhere outside neg.
func matchOutside(re *regexp.Regexp, text string, neg negations) bool {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if !neg.covers(loc[0], loc[1]) {
			return true
		}
	}
	return false
}

func containsOutside(text, sub string, neg negations) bool {
	for off := 0; ; {
		i := strings.Index(text[off:], sub)
		if i < 0 {
			return false
		}
		start := off + i
		if !neg.covers(start, start+len(sub)) {
			return true
		}
		off = start + len(sub)
	}
}
