// internal/pipeline/enhance/templates.go
package enhance

import "fmt"

// replyTexts holds the fixed user-facing texts per language. Every
// supported language carries a fallback apology, an escalation variant
// with a contact placeholder, and the mandatory footer.
type replyTexts struct {
	fallback   string
	escalation string
	throttle   string
	footer     string
}

var texts = map[string]replyTexts{
	"en": {
		fallback:   "Sorry, I could not prepare an answer right now. Please try again in a moment.",
		escalation: "Sorry, I could not find a reliable answer to that. Please contact %s for help.",
		throttle:   "You have sent too many messages. Please wait %d seconds and try again.",
		footer:     "Automated reply. Please verify important dates with the student services office.",
	},
	"tr": {
		fallback:   "Üzgünüm, şu anda bir yanıt hazırlayamadım. Lütfen birazdan tekrar deneyin.",
		escalation: "Üzgünüm, bu soruya güvenilir bir yanıt bulamadım. Lütfen yardım için %s ile iletişime geçin.",
		throttle:   "Çok fazla mesaj gönderdiniz. Lütfen %d saniye bekleyip tekrar deneyin.",
		footer:     "Otomatik yanıt. Önemli tarihleri lütfen öğrenci işleri ofisinden doğrulayın.",
	},
	"ar": {
		fallback:   "عذرًا، لم أتمكن من إعداد إجابة الآن. يرجى المحاولة مرة أخرى بعد قليل.",
		escalation: "عذرًا، لم أجد إجابة موثوقة على ذلك. يرجى التواصل مع %s للمساعدة.",
		throttle:   "لقد أرسلت عددًا كبيرًا من الرسائل. يرجى الانتظار %d ثانية ثم المحاولة مرة أخرى.",
		footer:     "رد آلي. يرجى التحقق من المواعيد المهمة لدى مكتب شؤون الطلاب.",
	},
	"ru": {
		fallback:   "Извините, сейчас я не смог подготовить ответ. Пожалуйста, попробуйте снова через минуту.",
		escalation: "Извините, я не нашёл надёжного ответа на этот вопрос. Пожалуйста, обратитесь за помощью: %s.",
		throttle:   "Вы отправили слишком много сообщений. Пожалуйста, подождите %d секунд и попробуйте снова.",
		footer:     "Автоматический ответ. Пожалуйста, уточняйте важные даты в студенческом офисе.",
	},
}

func textsFor(language string) replyTexts {
	if t, ok := texts[language]; ok {
		return t
	}
	return texts["en"]
}

func fallbackText(language string) string {
	return textsFor(language).fallback
}

func escalationText(language, contact string) string {
	return fmt.Sprintf(textsFor(language).escalation, contact)
}

func footerText(language string) string {
	return textsFor(language).footer
}

// ThrottleText is the user-visible notice for a rate-limited sender.
func ThrottleText(language string, retryAfterSeconds int) string {
	return fmt.Sprintf(textsFor(language).throttle, retryAfterSeconds)
}
