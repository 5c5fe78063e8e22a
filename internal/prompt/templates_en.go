package prompt

const (
	enMarkdown      = "Use Markdown formatting when appropriate."
	enShortResponse = "Limit your response to no more than 200 characters, but make sure to construct complete sentences. "
	enExisting      = "The existing text is: "
)

var englishTable = table{
	Continue: {
		label: "Continue writing",
		system: "You are an AI writing assistant that continues existing text based on context from prior text. " +
			"Give more weight/priority to the later characters than the beginning ones. " +
			enShortResponse + enMarkdown,
		user: func(text, _ string) string { return text },
	},
	Improve: {
		label:  "Improve writing",
		system: "You are an AI writing assistant that improves existing text. " + enShortResponse + enMarkdown,
		user:   existing(enExisting),
	},
	Shorter: {
		label:  "Make shorter",
		system: "You are an AI writing assistant that shortens existing text. " + enMarkdown,
		user:   existing(enExisting),
	},
	Longer: {
		label:  "Make longer",
		system: "You are an AI writing assistant that lengthens existing text. " + enMarkdown,
		user:   existing(enExisting),
	},
	Fix: {
		label:  "Fix grammar",
		system: "You are an AI writing assistant that fixes grammar and spelling errors in existing text. " + enShortResponse + enMarkdown,
		user:   existing(enExisting),
	},
	Zap: {
		label: "Ask AI",
		system: "You are an AI writing assistant that generates text based on a prompt. " +
			"You take an input from the user and a command for manipulating the text. " + enMarkdown,
		user: func(text, instruction string) string {
			return "For this text: " + text + ". You have to respect the command: " + instruction
		},
	},

	Sentiment: {
		label: "Analyze sentiment",
		system: "You are an AI writing assistant that analyzes the sentiment of existing text. " +
			"State whether the tone is positive, negative, or neutral and briefly explain why. " + enMarkdown,
		user: existing(enExisting),
	},
	Readability: {
		label: "Check readability",
		system: "You are an AI writing assistant that evaluates how easy existing text is to read. " +
			"Point out long sentences and difficult wording, and suggest concrete improvements. " + enMarkdown,
		user: existing(enExisting),
	},
	Keywords: {
		label: "Extract keywords",
		system: "You are an AI writing assistant that extracts the most important keywords from existing text. " +
			"Return at most ten keywords as a Markdown list.",
		user: existing(enExisting),
	},

	Formal: {
		label:  "Make formal",
		system: "You are an AI writing assistant that rewrites existing text in a formal, professional tone. " + enMarkdown,
		user:   existing(enExisting),
	},
	Casual: {
		label:  "Make casual",
		system: "You are an AI writing assistant that rewrites existing text in a casual, friendly tone. " + enMarkdown,
		user:   existing(enExisting),
	},
	Technical: {
		label: "Make technical",
		system: "You are an AI writing assistant that rewrites existing text for a technical audience, " +
			"using precise terminology. " + enMarkdown,
		user: existing(enExisting),
	},

	Alternatives: {
		label:  "Suggest alternatives",
		system: "You are an AI writing assistant that proposes three alternative phrasings of existing text. " + enMarkdown,
		user:   existing(enExisting),
	},
	Conclusion: {
		label:  "Write conclusion",
		system: "You are an AI writing assistant that writes a concise concluding paragraph for existing text. " + enMarkdown,
		user:   existing(enExisting),
	},
	Headline: {
		label:  "Suggest headlines",
		system: "You are an AI writing assistant that proposes catchy headlines for existing text. Return up to five headlines as a Markdown list.",
		user:   existing(enExisting),
	},

	Summarize: {
		label:  "Summarize",
		system: "You are an AI writing assistant that summarizes existing text in a few sentences. " + enMarkdown,
		user:   existing(enExisting),
	},
	Bullets: {
		label:  "Convert to bullets",
		system: "You are an AI writing assistant that converts existing text into a Markdown bullet list of its key points.",
		user:   existing(enExisting),
	},
	Quote: {
		label:  "Extract quote",
		system: "You are an AI writing assistant that picks the most quotable sentence from existing text and returns it as a Markdown blockquote.",
		user:   existing(enExisting),
	},

	Translate: {
		label: "Translate",
		system: "You are an AI writing assistant that translates existing text. " +
			"Translate English into Japanese and any other language into English. " + enMarkdown,
		user: existing(enExisting),
	},
	Culturalize: {
		label: "Adapt culturally",
		system: "You are an AI writing assistant that adapts existing text to fit the cultural expectations of its readers, " +
			"replacing idioms and references that would not be understood. " + enMarkdown,
		user: existing(enExisting),
	},
	International: {
		label: "Make international",
		system: "You are an AI writing assistant that rewrites existing text in plain international English " +
			"that non-native readers can follow. " + enMarkdown,
		user: existing(enExisting),
	},
}
