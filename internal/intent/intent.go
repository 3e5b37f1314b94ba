// Package intent classifies user queries into chat or image generation
// requests using an ordered rule table. Rules are evaluated top to bottom and
// the first match wins, which keeps the precedence auditable in one place.
package intent

import "strings"

// Intent is the classification outcome for a query.
type Intent string

const (
	// IntentChat routes the query to the conversational pipeline.
	IntentChat Intent = "chat"
	// IntentImageGeneration routes the query to image generation.
	IntentImageGeneration Intent = "image_generation"
)

// codeKeywords mark code and technical content requests.
var codeKeywords = []string{
	"kode", "html", "css", "js", "javascript", "script", "program", "coding",
	"python", "java", "typescript", "json", "sql", "php", "cpp", "c#", "ruby",
	"swift", "kotlin", "rust", "golang",
}

// textKeywords mark textual content requests.
var textKeywords = []string{
	"teks", "tulisan", "artikel", "surat", "puisi", "cerita", "esei", "naskah",
	"dokumen", "laporan", "deskripsi", "penjelasan", "tutorial", "cara",
	"langkah", "saran", "ide",
}

// imageKeywords mark image-related requests.
var imageKeywords = []string{
	"gambar", "image", "foto", "lukis", "pic", "picture", "photo", "kartun",
	"ilustrasi", "visual", "potret", "sketsa", "wallpaper", "avatar", "logo",
	"ikon", "icon",
}

// imageActionKeywords are imperative verbs that usually accompany image requests.
var imageActionKeywords = []string{
	"buat", "generate", "bikin", "create", "draw", "lukiskan", "tampilkan",
	"render", "design", "gambarkan", "buatkan",
}

// imagePrefixes are commands that are image-only regardless of other keywords.
var imagePrefixes = []string{"gambar ", "lukis ", "draw ", "generate image "}

// explanationMarkers indicate the user wants an explanation about an image,
// not an image itself.
var explanationMarkers = []string{"tentang", "mengenai", "apa itu", "jelaskan", "bagaimana"}

// features holds the precomputed keyword hits for a lowercased query.
type features struct {
	lower     string
	hasCode   bool
	hasText   bool
	hasImage  bool
	hasAction bool
}

// rule is a single classification rule. Returning ok=false passes control to
// the next rule in the table.
type rule struct {
	name  string
	apply func(f features) (Intent, bool)
}

// rules is the ordered classification table. Code and text keywords always
// beat image keywords, so "buatkan gambar kode" stays a chat request.
var rules = []rule{
	{
		name: "code-or-text-keyword",
		apply: func(f features) (Intent, bool) {
			if f.hasCode || f.hasText {
				return IntentChat, true
			}
			return "", false
		},
	},
	{
		name: "image-only-prefix",
		apply: func(f features) (Intent, bool) {
			for _, prefix := range imagePrefixes {
				if strings.HasPrefix(f.lower, prefix) {
					return IntentImageGeneration, true
				}
			}
			return "", false
		},
	},
	{
		name: "action-with-image-keyword",
		apply: func(f features) (Intent, bool) {
			if !f.hasAction || !f.hasImage {
				return "", false
			}
			if containsAny(f.lower, explanationMarkers) {
				return IntentChat, true
			}
			return IntentImageGeneration, true
		},
	},
}

// Classify returns the intent for a raw user query. Empty queries are chat.
func Classify(query string) Intent {
	lower := strings.ToLower(query)
	f := features{
		lower:     lower,
		hasCode:   containsAny(lower, codeKeywords),
		hasText:   containsAny(lower, textKeywords),
		hasImage:  containsAny(lower, imageKeywords),
		hasAction: containsAny(lower, imageActionKeywords),
	}
	for _, r := range rules {
		if result, ok := r.apply(f); ok {
			return result
		}
	}
	return IntentChat
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
