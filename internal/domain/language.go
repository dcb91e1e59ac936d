package domain

// Language describes one target language the tutor can practice, including
// the presentation metadata (flag glyph) and the canned greeting used to seed
// a new conversation.
type Language struct {
	Code string
	Name string
	Flag string

	// Greeting opens every new conversation; GreetingGloss is its English
	// translation. Both are presentation-only and never persisted.
	Greeting      string
	GreetingGloss string
}

var languages = []Language{
	{Code: "es", Name: "Spanish", Flag: "🇪🇸", Greeting: "¡Hola! ¿Listo para practicar español?", GreetingGloss: "Hello! Ready to practice Spanish?"},
	{Code: "fr", Name: "French", Flag: "🇫🇷", Greeting: "Bonjour ! Prêt à pratiquer le français ?", GreetingGloss: "Hello! Ready to practice French?"},
	{Code: "de", Name: "German", Flag: "🇩🇪", Greeting: "Hallo! Bereit, Deutsch zu üben?", GreetingGloss: "Hello! Ready to practice German?"},
	{Code: "it", Name: "Italian", Flag: "🇮🇹", Greeting: "Ciao! Pronto a praticare l'italiano?", GreetingGloss: "Hello! Ready to practice Italian?"},
	{Code: "pt", Name: "Portuguese", Flag: "🇵🇹", Greeting: "Olá! Pronto para praticar português?", GreetingGloss: "Hello! Ready to practice Portuguese?"},
	{Code: "ja", Name: "Japanese", Flag: "🇯🇵", Greeting: "こんにちは！日本語を練習しましょう！", GreetingGloss: "Hello! Let's practice Japanese!"},
	{Code: "ko", Name: "Korean", Flag: "🇰🇷", Greeting: "안녕하세요! 한국어를 연습해 봐요!", GreetingGloss: "Hello! Let's practice Korean!"},
	{Code: "zh", Name: "Chinese", Flag: "🇨🇳", Greeting: "你好！准备好练习中文了吗？", GreetingGloss: "Hello! Ready to practice Chinese?"},
}

// Languages returns the full catalog in display order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// LanguageByCode looks up a language by its code.
func LanguageByCode(code string) (Language, bool) {
	for _, l := range languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}
