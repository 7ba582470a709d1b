// internal/pipeline/classify/classifier.go

// Package classify derives intent, sentiment and urgency labels for an
// inbound message. The labels steer persona selection, escalation and
// interaction records; they never block the pipeline.
package classify

import "strings"

const (
	IntentAdmissions = "admissions"
	IntentFees       = "fees"
	IntentAcademic   = "academic"
	IntentHousing    = "housing"
	IntentComplaint  = "complaint"
	IntentGeneral    = "general"

	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"

	UrgencyHigh   = "high"
	UrgencyNormal = "normal"
)

// Classification is the label set for one message.
type Classification struct {
	Intent    string `json:"intent"`
	Sentiment string `json:"sentiment"`
	Urgency   string `json:"urgency"`
}

// Classifier labels a message. Implementations are strategies: the
// keyword matcher below is the default, a model-backed one can replace
// it without touching pipeline control flow.
type Classifier interface {
	Classify(text string) Classification
}

// intentKeywords in priority order: the first intent with a hit wins, so
// a complaint about fees is routed as a complaint.
var intentKeywords = []struct {
	intent   string
	keywords []string
}{
	{IntentComplaint, []string{"complain", "complaint", "unacceptable", "terrible", "refund", "nobody answers", "şikayet"}},
	{IntentFees, []string{"fee", "fees", "tuition", "payment", "scholarship", "pay", "cost", "invoice", "ücret", "burs"}},
	{IntentAdmissions, []string{"admission", "apply", "application", "enroll", "enrollment", "register", "acceptance", "başvuru", "kayıt"}},
	{IntentHousing, []string{"dorm", "dormitory", "housing", "accommodation", "residence", "yurt"}},
	{IntentAcademic, []string{"course", "class", "exam", "grade", "schedule", "lecture", "credit", "transcript", "semester", "ders", "sınav"}},
}

var negativeKeywords = []string{
	"angry", "bad", "worst", "awful", "terrible", "frustrated", "disappointed", "unacceptable", "useless", "broken",
}

var positiveKeywords = []string{
	"thanks", "thank you", "great", "good", "awesome", "perfect", "helpful", "appreciate", "teşekkür",
}

var urgentKeywords = []string{
	"urgent", "asap", "immediately", "emergency", "right now", "today", "deadline is", "acil",
}

// KeywordClassifier labels messages by case-insensitive keyword match.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Classify(text string) Classification {
	lower := strings.ToLower(text)

	return Classification{
		Intent:    classifyIntent(lower),
		Sentiment: classifySentiment(lower),
		Urgency:   classifyUrgency(lower),
	}
}

func classifyIntent(lower string) string {
	for _, group := range intentKeywords {
		for _, kw := range group.keywords {
			if containsWord(lower, kw) {
				return group.intent
			}
		}
	}
	return IntentGeneral
}

func classifySentiment(lower string) string {
	for _, kw := range negativeKeywords {
		if containsWord(lower, kw) {
			return SentimentNegative
		}
	}
	for _, kw := range positiveKeywords {
		if containsWord(lower, kw) {
			return SentimentPositive
		}
	}
	return SentimentNeutral
}

func classifyUrgency(lower string) string {
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return UrgencyHigh
		}
	}
	return UrgencyNormal
}

// containsWord matches a keyword on word boundaries so "pay" does not
// fire on "display". Multi-word keywords match as substrings.
func containsWord(text, keyword string) bool {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Contains(text, keyword)
	}

	idx := 0
	for {
		i := strings.Index(text[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)

		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}
