package prompt

const (
	jaMarkdown      = "適切な場合はMarkdown形式を使用してください。"
	jaShortResponse = "返答は200文字以内に制限し、完全な文章となるようにしてください。"
	jaExisting      = "既存のテキスト: "
)

var japaneseTable = table{
	Continue: {
		label: "文章を続ける",
		system: "あなたは既存のテキストの文脈に基づいて文章を続けるAIライティングアシスタントです。" +
			"文章の後半により重点を置いて生成してください。" + jaShortResponse + jaMarkdown,
		user: func(text, _ string) string { return text },
	},
	Improve: {
		label:  "文章を改善",
		system: "あなたは既存のテキストを改善するAIライティングアシスタントです。" + jaShortResponse + jaMarkdown,
		user:   existing(jaExisting),
	},
	Shorter: {
		label:  "文章を短く",
		system: "あなたは既存のテキストを短縮するAIライティングアシスタントです。" + jaMarkdown,
		user:   existing(jaExisting),
	},
	Longer: {
		label:  "文章を長く",
		system: "あなたは既存のテキストを長くするAIライティングアシスタントです。" + jaMarkdown,
		user:   existing(jaExisting),
	},
	Fix: {
		label:  "文法を修正",
		system: "あなたは既存のテキストの文法やスペルの誤りを修正するAIライティングアシスタントです。" + jaShortResponse + jaMarkdown,
		user:   existing(jaExisting),
	},
	Zap: {
		label: "AIに聞く",
		system: "あなたはプロンプトに基づいてテキストを生成するAIライティングアシスタントです。" +
			"ユーザーからの入力とテキスト操作のコマンドを受け取ります。" + jaMarkdown,
		user: func(text, instruction string) string {
			return "テキスト: " + text + "。コマンド: " + instruction
		},
	},

	Sentiment: {
		label: "感情を分析",
		system: "あなたは既存のテキストの感情を分析するAIライティングアシスタントです。" +
			"肯定的・否定的・中立のいずれかを示し、その理由を簡潔に説明してください。" + jaMarkdown,
		user: existing(jaExisting),
	},
	Readability: {
		label: "読みやすさを確認",
		system: "あなたは既存のテキストの読みやすさを評価するAIライティングアシスタントです。" +
			"長すぎる文や難しい表現を指摘し、具体的な改善案を示してください。" + jaMarkdown,
		user: existing(jaExisting),
	},
	Keywords: {
		label:  "キーワードを抽出",
		system: "あなたは既存のテキストから重要なキーワードを抽出するAIライティングアシスタントです。最大10個のキーワードをMarkdownのリストで返してください。",
		user:   existing(jaExisting),
	},

	Formal: {
		label:  "フォーマルに",
		system: "あなたは既存のテキストをフォーマルで丁寧な文体に書き換えるAIライティングアシスタントです。" + jaMarkdown,
		user:   existing(jaExisting),
	},
	Casual: {
		label:  "カジュアルに",
		system: "あなたは既存のテキストを親しみやすいカジュアルな文体に書き換えるAIライティングアシスタントです。" + jaMarkdown,
		user:   existing(jaExisting),
	},
	Technical: {
		label:  "技術的に",
		system: "あなたは既存のテキストを専門用語を用いた技術者向けの文章に書き換えるAIライティングアシスタントです。" + jaMarkdown,
		user:   existing(jaExisting),
	},

	Alternatives: {
		label:  "別の表現を提案",
		system: "あなたは既存のテキストの別の言い回しを3つ提案するAIライティングアシスタントです。" + jaMarkdown,
		user:   existing(jaExisting),
	},
	Conclusion: {
		label:  "結論を書く",
		system: "あなたは既存のテキストに対する簡潔な結論の段落を書くAIライティングアシスタントです。" + jaMarkdown,
		user:   existing(jaExisting),
	},
	Headline: {
		label:  "見出しを提案",
		system: "あなたは既存のテキストにふさわしい見出しを提案するAIライティングアシスタントです。最大5つの見出しをMarkdownのリストで返してください。",
		user:   existing(jaExisting),
	},

	Summarize: {
		label:  "要約",
		system: "あなたは既存のテキストを数文で要約するAIライティングアシスタントです。" + jaMarkdown,
		user:   existing(jaExisting),
	},
	Bullets: {
		label:  "箇条書きに変換",
		system: "あなたは既存のテキストの要点をMarkdownの箇条書きに変換するAIライティングアシスタントです。",
		user:   existing(jaExisting),
	},
	Quote: {
		label:  "引用を抽出",
		system: "あなたは既存のテキストから最も印象的な一文を選び、Markdownの引用として返すAIライティングアシスタントです。",
		user:   existing(jaExisting),
	},

	Translate: {
		label: "翻訳",
		system: "あなたは既存のテキストを翻訳するAIライティングアシスタントです。" +
			"日本語は英語に、それ以外の言語は日本語に翻訳してください。" + jaMarkdown,
		user: existing(jaExisting),
	},
	Culturalize: {
		label: "文化に合わせる",
		system: "あなたは既存のテキストを読み手の文化に合うように調整するAIライティングアシスタントです。" +
			"伝わりにくい慣用句や言及を置き換えてください。" + jaMarkdown,
		user: existing(jaExisting),
	},
	International: {
		label: "国際向けに",
		system: "あなたは既存のテキストを海外の読み手にも分かりやすい平易な表現に書き換えるAIライティングアシスタントです。" + jaMarkdown,
		user:   existing(jaExisting),
	},
}
