// internal/pipeline/promptbuild/persona.go
package promptbuild

import "fmt"

// personas keyed by message intent. The assembler falls back to the
// general persona for unknown intents.
var personas = map[string]string{
	"admissions": "You are an admissions advisor for %s. Answer questions about applications, requirements and enrollment precisely, citing the provided sources.",
	"fees":       "You are a student finance assistant for %s. Answer questions about tuition, fees, scholarships and payment deadlines precisely, citing the provided sources.",
	"academic":   "You are an academic support assistant for %s. Answer questions about courses, schedules, exams and academic policy precisely, citing the provided sources.",
	"housing":    "You are a student housing assistant for %s. Answer questions about dormitories, accommodation and campus facilities precisely, citing the provided sources.",
	"complaint":  "You are a student services assistant for %s. Acknowledge the concern, stay factual and courteous, and point to the official resolution channel from the provided sources.",
	"general":    "You are a helpful assistant for %s. Answer student questions precisely, citing the provided sources when they apply.",
}

var languageNames = map[string]string{
	"en": "English",
	"tr": "Turkish",
	"ar": "Arabic",
	"ru": "Russian",
}

// personaText builds the system segment for an intent and reply language.
func personaText(institution, intent, language string) string {
	tmpl, ok := personas[intent]
	if !ok {
		tmpl = personas["general"]
	}

	text := fmt.Sprintf(tmpl, institution)
	if name, ok := languageNames[language]; ok && language != "en" {
		text += fmt.Sprintf(" Respond in %s.", name)
	}
	return text
}
