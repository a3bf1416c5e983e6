package moderation

import (
	"context"
	"strings"

	"kindled-backend/internal/shared/utils"
)

type blocklistGate struct {
	terms []string
}

// NewBlocklistGate blocks text containing any of terms as a whole word or
// phrase, case-insensitively. Intended for development and tests.
func NewBlocklistGate(terms []string) Gate {
	cleaned := make([]string, 0, len(terms))
	for _, term := range terms {
		if t := normalizeForMatch(term); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return &blocklistGate{terms: cleaned}
}

func (g *blocklistGate) Check(ctx context.Context, text string) (Verdict, error) {
	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}

	padded := " " + normalizeForMatch(text) + " "
	for _, term := range g.terms {
		if strings.Contains(padded, " "+term+" ") {
			return Verdict{Blocked: true, Action: "block"}, nil
		}
	}
	return Verdict{Action: "keep"}, nil
}

// normalizeForMatch lowercases and reduces punctuation to single spaces
func normalizeForMatch(s string) string {
	s = strings.ToLower(utils.RemoveDiacritics(s))
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
