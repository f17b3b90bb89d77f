package core

import (
	"strings"

	"assemblycore/pkg/domain"
)

// utrRoot is the shared prefix of UTR linker variants; suffix usage collapses
// every variant onto its four-character root.
const utrRoot = "UTR"

// ConstructRow is one construct as read from the constructs file: the name
// column followed by the non-empty linker/part tokens.
type ConstructRow struct {
	Name   string
	Tokens []string
}

// DecomposeConstructs turns rows into constructs with their ordered reaction
// triples. The first row without tokens ends the input; rows after it are ignored.
func DecomposeConstructs(rows []ConstructRow) []domain.Construct {
	constructs := make([]domain.Construct, 0, len(rows))
	for _, row := range rows {
		if len(row.Tokens) == 0 {
			break
		}
		tokens := append([]string(nil), row.Tokens...)
		constructs = append(constructs, domain.Construct{
			Name:      row.Name,
			Tokens:    tokens,
			Reactions: DecomposeTokens(tokens),
		})
	}
	return constructs
}

// DecomposeTokens returns one reaction per part token. Parts sit at odd
// indices; the suffix of the last part wraps around to the first token.
func DecomposeTokens(tokens []string) []domain.ReactionKey {
	reactions := make([]domain.ReactionKey, 0, len(tokens)/2)
	for i := 1; i < len(tokens); i += 2 {
		next := 0
		if i != len(tokens)-1 {
			next = i + 1
		}
		reactions = append(reactions, domain.ReactionKey{
			Prefix: tokens[i-1] + domain.PrefixTag,
			Part:   tokens[i],
			Suffix: suffixLinker(tokens[next]),
		})
	}
	return reactions
}

func suffixLinker(token string) string {
	if len(token) >= 4 && strings.HasPrefix(token, utrRoot) {
		return token[:4] + domain.SuffixTag
	}
	return token + domain.SuffixTag
}
