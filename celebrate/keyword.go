package celebrate

import (
	"math/rand"
	"strings"
	"time"
)

// variantHistorySize bounds the per-keyword ring of recently used reaction
// variants; a variant is not repeated until it falls out of this window
// (or the whole variant list has been exhausted).
const variantHistorySize = 5

// Trigger is an accepted keyword match.
type Trigger struct {
	Keyword string
	Variant string
	User    string
}

// KeywordTracker decides whether a chat line should trigger a celebration
// and picks a non-repeating reaction variant when it does. All cooldown
// and history state lives here, owned by the Engine goroutine; the type
// itself is not safe for concurrent use.
type KeywordTracker struct {
	keywords []string // fixed enumeration order
	variants map[string][]string

	keywordCooldown time.Duration
	userCooldown    time.Duration
	globalCooldown  time.Duration

	rng *rand.Rand

	keywordLast map[string]time.Time
	userLast    map[string]time.Time
	globalLast  time.Time
	history     map[string][]string
}

// NewKeywordTracker builds a tracker over keywords (matched in the given
// order) with per-keyword variant lists. A keyword without variants reacts
// with the keyword itself. A nil rng gets a time-seeded source.
func NewKeywordTracker(keywords []string, variants map[string][]string, keywordCD, userCD, globalCD time.Duration, rng *rand.Rand) *KeywordTracker {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	kws := make([]string, 0, len(keywords))
	for _, k := range keywords {
		kws = append(kws, strings.ToLower(k))
	}
	return &KeywordTracker{
		keywords:        kws,
		variants:        variants,
		keywordCooldown: keywordCD,
		userCooldown:    userCD,
		globalCooldown:  globalCD,
		rng:             rng,
		keywordLast:     make(map[string]time.Time),
		userLast:        make(map[string]time.Time),
		history:         make(map[string][]string),
	}
}

// Observe runs the three cooldown gates against msg at now. It returns the
// accepted trigger and true, or false when every gate rejected. Cooldown
// timestamps are stamped only on acceptance.
func (t *KeywordTracker) Observe(msg ChatMessage, now time.Time) (Trigger, bool) {
	content := strings.ToLower(msg.Text)
	user := strings.ToLower(msg.User)

	if !t.globalLast.IsZero() && now.Sub(t.globalLast) < t.globalCooldown {
		return Trigger{}, false
	}
	if last, ok := t.userLast[user]; ok && now.Sub(last) < t.userCooldown {
		return Trigger{}, false
	}

	for _, kw := range t.keywords {
		// Substring containment: a keyword inside a larger word counts.
		if !strings.Contains(content, kw) {
			continue
		}
		if last, ok := t.keywordLast[kw]; ok && now.Sub(last) < t.keywordCooldown {
			continue
		}
		variant := t.nextVariant(kw)
		t.keywordLast[kw] = now
		t.userLast[user] = now
		t.globalLast = now
		return Trigger{Keyword: kw, Variant: variant, User: msg.User}, true
	}
	return Trigger{}, false
}

// Matches reports whether text contains any configured keyword, without
// touching cooldown state. Used to count suppressed triggers.
func (t *KeywordTracker) Matches(text string) bool {
	content := strings.ToLower(text)
	for _, kw := range t.keywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

// nextVariant picks a variant for kw that is not in its recent-use window.
// When every variant has been used recently the history is cleared and all
// variants become eligible again.
func (t *KeywordTracker) nextVariant(kw string) string {
	variants := t.variants[kw]
	if len(variants) == 0 {
		variants = []string{kw}
	}
	hist := t.history[kw]

	eligible := make([]string, 0, len(variants))
	for _, v := range variants {
		if !contains(hist, v) {
			eligible = append(eligible, v)
		}
	}
	if len(eligible) == 0 {
		hist = hist[:0]
		eligible = variants
	}

	v := eligible[t.rng.Intn(len(eligible))]
	hist = append(hist, v)
	if len(hist) > variantHistorySize {
		hist = hist[len(hist)-variantHistorySize:]
	}
	t.history[kw] = hist
	return v
}

// AddKeyword appends a keyword at the end of the enumeration order.
// Returns false when the keyword is already tracked.
func (t *KeywordTracker) AddKeyword(kw string) bool {
	kw = strings.ToLower(strings.TrimSpace(kw))
	if kw == "" || contains(t.keywords, kw) {
		return false
	}
	t.keywords = append(t.keywords, kw)
	return true
}

// Keywords returns a copy of the tracked keywords in enumeration order.
func (t *KeywordTracker) Keywords() []string {
	out := make([]string, len(t.keywords))
	copy(out, t.keywords)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
