package slug

// DefaultWords easy to pronounce, spell and remember
var DefaultWords = []string{
	// Common nouns / concepts
	"light", "hope", "peace", "grace", "joy", "truth", "vine", "lamb",
	"seed", "star", "bread", "rock", "path", "gift", "ark", "fish",
	"well", "door", "oil", "crown",

	// Names
	"abel", "levi", "amos", "noah", "ruth", "ezra", "luke", "mark",
	"joel", "paul", "john", "mary", "anna", "adam", "eve", "matthew",
	"david", "samuel", "joseph", "elijah", "benjamin", "isaac", "jacob",

	// Nature / imagery
	"river", "hill", "rain", "water", "wind", "sun", "fig", "oak", "leaf",
	"sand", "stone", "cloud", "mountain", "tree", "flower",
}
