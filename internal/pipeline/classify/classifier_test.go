// internal/pipeline/classify/classifier_test.go
package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifierIntent(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"admissions", "How do I apply for the fall semester?", IntentAdmissions},
		{"fees", "When is tuition due?", IntentFees},
		{"academic", "Where can I get my transcript?", IntentAcademic},
		{"housing", "Is there space in the dormitory?", IntentHousing},
		{"complaint", "This is unacceptable, I want a refund", IntentComplaint},
		{"complaint beats fees", "I want to complain about my tuition invoice", IntentComplaint},
		{"general", "hello there", IntentGeneral},
		{"word boundary", "the display is nice", IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text).Intent)
		})
	}
}

func TestKeywordClassifierSentiment(t *testing.T) {
	c := NewKeywordClassifier()

	assert.Equal(t, SentimentNegative, c.Classify("I am really frustrated with this").Sentiment)
	assert.Equal(t, SentimentPositive, c.Classify("thank you, that was helpful").Sentiment)
	assert.Equal(t, SentimentNeutral, c.Classify("when does the library open").Sentiment)
	assert.Equal(t, SentimentNegative, c.Classify("thanks for nothing, this is terrible").Sentiment,
		"negative wins over positive")
}

func TestKeywordClassifierUrgency(t *testing.T) {
	c := NewKeywordClassifier()

	assert.Equal(t, UrgencyHigh, c.Classify("I need my transcript ASAP").Urgency)
	assert.Equal(t, UrgencyHigh, c.Classify("this is an emergency").Urgency)
	assert.Equal(t, UrgencyNormal, c.Classify("when is the next open day").Urgency)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		declared string
		want     string
	}{
		{"declared wins", "hello", LangTurkish, LangTurkish},
		{"invalid declared ignored", "hello", "xx", LangEnglish},
		{"english default", "when does enrollment open", "", LangEnglish},
		{"arabic script", "متى يبدأ التسجيل", "", LangArabic},
		{"cyrillic script", "когда начинается регистрация", "", LangRussian},
		{"turkish letters", "kayıt ne zaman başlıyor", "", LangTurkish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.text, tt.declared))
		})
	}
}
