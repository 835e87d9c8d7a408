package classify

// Keyword rule tables. These are static rule data: every keyword found in
// the lower-cased text contributes its tag, and the result is deduplicated.

// themeKeywords maps a topical tag to the keywords that trigger it.
var themeKeywords = map[string][]string{
	"startups": {
		"startup", "founder", "entrepreneurship", "venture", "funding",
		"investor", "pitch", "product-market fit", "pmf", "mvp",
		"scale", "growth", "revenue", "business model",
	},
	"productivity": {
		"productivity", "time management", "focus", "deep work",
		"habit", "routine", "efficiency", "workflow", "system",
		"discipline", "procrastination", "todo", "gtd",
	},
	"writing": {
		"writing", "writer", "storytelling", "narrative",
		"blog", "article", "essay", "publish", "author", "copywriting",
		"editing", "draft",
	},
	"mental_models": {
		"mental model", "framework", "thinking", "cognitive", "bias",
		"decision making", "first principles", "systems thinking",
	},
	"philosophy": {
		"philosophy", "stoic", "meaning", "purpose", "existence",
		"ethics", "moral", "wisdom", "virtue",
	},
	"tech": {
		"technology", "software", "artificial intelligence",
		"coding", "programming", "developer", "engineer", "tech",
		"digital", "saas", "api", "platform",
	},
	"marketing": {
		"marketing", "branding", "brand", "positioning", "messaging",
		"audience", "customer", "distribution", "viral", "seo",
	},
	"psychology": {
		"psychology", "behavior", "behavioral", "motivation",
		"emotion", "mindset", "mindfulness", "therapy", "mental health",
	},
	"learning": {
		"learning", "education", "teaching", "skill", "knowledge",
		"study", "course", "training", "expertise", "mastery",
	},
	"creativity": {
		"creativity", "creative", "innovation", "ideation",
		"brainstorm", "imagination", "design", "artistic",
	},
}

// typePatterns maps a content-type tag to its trigger phrases.
var typePatterns = map[string][]string{
	"tactical": {
		"how to", "step by step", "guide", "tutorial", "tip",
		"hack", "trick", "method", "strategy", "tactic",
	},
	"philosophical": {
		"meaning", "purpose", "believe", "philosophy",
		"perspective", "think about", "reflection",
	},
	"cautionary": {
		"mistake", "avoid", "warning", "don't", "failure",
		"lesson learned", "pitfall", "wrong", "regret",
	},
	"inspirational": {
		"inspire", "motivation", "success", "achieve", "dream",
		"goal", "ambitious", "vision",
	},
	"data_driven": {
		"data", "research", "study", "statistics", "analysis",
		"survey", "experiment", "evidence", "metric",
	},
}

// personalKeywords mark relationship/private content. Two or more matches,
// or any emotionalIndicator match, forces the personal category.
var personalKeywords = []string{
	"love", "relationship", "hurt", "heart", "boyfriend", "girlfriend",
	"dating", "breakup", "miss you", "i love you", "care about you",
}

var emotionalIndicators = []string{
	"i miss", "i hurt", "i feel", "my heart",
	"i want you", "i need you", "i care",
}

// junkPhrases are short replies that carry no content of their own.
var junkPhrases = []string{
	"ok", "okay", "yes", "no", "thanks", "thank you", "lol", "haha",
	"done", "nice", "good", "great", "cool", "sure",
}

// systemPhrases mark chat-export system messages.
var systemPhrases = []string{
	"image omitted", "document omitted", "video omitted", "audio omitted",
	"sticker omitted", "gif omitted", "created this group",
	"changed the group", "messages and calls are end-to-end encrypted",
}

// Host tables for the URL rules. Matching is a substring check on the
// lower-cased host.
var socialHosts = []string{"twitter.com", "x.com", "linkedin.com"}
var videoHosts = []string{"youtube.com", "youtu.be", "vimeo.com"}
var codeHosts = []string{"github.com", "gitlab.com"}
var discussionHosts = []string{"reddit.com", "news.ycombinator.com"}

// qualityDomains is the curated allow-list that earns a quality bonus.
var qualityDomains = []string{
	"medium.com", "substack.com", "fs.blog", "github.com", "arxiv.org",
}
