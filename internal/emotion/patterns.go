package emotion

import "regexp"

// Category names in canonical order. All per-category output follows
// this order so results are stable across runs.
const (
	Urgency      = "urgency"
	Fear         = "fear"
	Greed        = "greed"
	Anxiety      = "anxiety"
	Deference    = "deference"
	Manipulation = "manipulation"
)

// Categories returns the canonical category order.
func Categories() []string {
	return []string{Urgency, Fear, Greed, Anxiety, Deference, Manipulation}
}

type pattern struct {
	re        *regexp.Regexp
	intensity int
}

type category struct {
	name     string
	weight   float64
	patterns []pattern
}

func mustPattern(expr string, intensity int) pattern {
	return pattern{re: regexp.MustCompile(`(?i)` + expr), intensity: intensity}
}

// builtinCategories holds the marker tables. Intensities are on a 1-10
// scale; the category weight scales the whole group.
func builtinCategories() []category {
	return []category{
		{
			name:   Urgency,
			weight: 1.2,
			patterns: []pattern{
				mustPattern(`\b(urgent|immediately|asap|right\s+now|act\s+now|hurry)\b`, 8),
				mustPattern(`\b(time\s+sensitive|deadline|expires?|expiring|limited\s+time)\b`, 7),
				mustPattern(`\b(today|tonight|within\s+\d+\s+(hours?|minutes?))\b`, 6),
				mustPattern(`\b(quick(ly)?|fast|instant(ly)?|prompt(ly)?)\b`, 5),
				mustPattern(`\b(don'?t\s+wait|can'?t\s+wait|won'?t\s+last)\b`, 7),
				mustPattern(`\b(final\s+(notice|warning|chance|reminder))\b`, 9),
			},
		},
		{
			name:   Fear,
			weight: 1.3,
			patterns: []pattern{
				mustPattern(`\b(suspend(ed)?|deactivat(e|ed)|locked|blocked|disabled)\b`, 9),
				mustPattern(`\b(unauthorized|unusual|suspicious|illegal)\s+(activity|access|login|transaction)\b`, 8),
				mustPattern(`\b(security\s+(alert|breach|issue|warning|threat))\b`, 8),
				mustPattern(`\b(compromise(d)?|hack(ed)?|vulnerab(le|ility))\b`, 9),
				mustPattern(`\b(lose|lost|forfeit|cancel(led)?)\s+(access|account|eligibility|funds?)\b`, 8),
				mustPattern(`\b(consequence|penalty|fine|legal\s+action|law\s+enforcement)\b`, 7),
				mustPattern(`\b(danger|risk|threat|warning)\b`, 6),
			},
		},
		{
			name:   Greed,
			weight: 1.1,
			patterns: []pattern{
				mustPattern(`\b(won|winner|winning|prize|reward|bonus)\b`, 7),
				mustPattern(`\b(free|complimentary|no\s+cost|zero\s+cost)\b`, 5),
				mustPattern(`\b(discount|save|savings|deal|offer)\b`, 4),
				mustPattern(`\b(cash|money|\$\d+|refund|reimbursement)\b`, 6),
				mustPattern(`\b(grant|scholarship|award|approved)\b`, 6),
				mustPattern(`\b(claim|redeem|collect)\s+(your|now)\b`, 7),
				mustPattern(`\b(limited\s+offer|exclusive|special\s+offer)\b`, 5),
				mustPattern(`\b(congratulations?|you'?ve\s+been\s+selected)\b`, 8),
			},
		},
		{
			name:   Anxiety,
			weight: 1.15,
			patterns: []pattern{
				mustPattern(`\b(verify|confirm|validate|authenticate)\s+(your|account|identity|credentials)\b`, 8),
				mustPattern(`\b(update|provide|enter|submit)\s+(your|password|details|information)\b`, 7),
				mustPattern(`\b(action\s+required|immediate\s+action|must\s+act)\b`, 8),
				mustPattern(`\b(error|problem|issue|failure)\b`, 6),
				mustPattern(`\b(unable\s+to|failed\s+to|could\s+not)\b`, 5),
				mustPattern(`\b(attention\s+required|requires?\s+your\s+attention)\b`, 7),
				mustPattern(`\b(review|check)\s+(your|the)\b`, 4),
			},
		},
		{
			name:   Deference,
			weight: 0.9,
			patterns: []pattern{
				mustPattern(`\b(dear\s+(valued|esteemed|honored|distinguished))\b`, 6),
				mustPattern(`\b(official|authorized|legitimate|verified)\b`, 5),
				mustPattern(`\b(department|office|division|bureau|administration)\b`, 4),
				mustPattern(`\b(notice|notification|alert)\s+from\b`, 5),
				mustPattern(`\b(on\s+behalf\s+of|representing)\b`, 4),
				mustPattern(`\b(compliance|regulation|policy|mandate)\b`, 5),
			},
		},
		{
			name:   Manipulation,
			weight: 1.1,
			patterns: []pattern{
				mustPattern(`\b(click\s+(here|below|link|now))\b`, 7),
				mustPattern(`\b(do\s+not|don'?t)\s+(ignore|delay|miss|disregard)\b`, 7),
				mustPattern(`\b(only\s+you|you'?ve\s+been\s+chosen)\b`, 6),
				mustPattern(`\b(confidential|secret|private|sensitive)\b`, 5),
				mustPattern(`\b(trust(ed)?|secure|safe|protected)\b`, 4),
				mustPattern(`\b(guarantee(d)?|certain|sure|promise)\b`, 5),
			},
		},
	}
}

// positiveWords and negativeWords drive the sentiment polarity signal.
var positiveWords = map[string]struct{}{
	"congratulations": {}, "approved": {}, "success": {}, "winner": {},
	"selected": {}, "eligible": {}, "great": {}, "excellent": {},
	"wonderful": {}, "fantastic": {}, "amazing": {}, "perfect": {},
	"benefit": {}, "opportunity": {}, "advantage": {}, "gain": {},
	"profit": {}, "reward": {},
}

var negativeWords = map[string]struct{}{
	"suspend": {}, "cancel": {}, "terminate": {}, "denied": {},
	"rejected": {}, "failed": {}, "error": {}, "problem": {},
	"issue": {}, "warning": {}, "alert": {}, "danger": {},
	"risk": {}, "threat": {}, "unauthorized": {}, "illegal": {},
	"fraud": {}, "scam": {}, "suspicious": {}, "unusual": {},
}
