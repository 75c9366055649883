package skills

import (
	"fmt"
	"math"
	"strings"
)

// SkillCycleError reports a circular `requires` chain rooted at path.
type SkillCycleError struct {
	Path []string
}

func (e *SkillCycleError) Error() string {
	return fmt.Sprintf("skills: circular requires: %s", strings.Join(e.Path, " -> "))
}

// SelectForMessage scores every known skill against text and returns the
// activations: the primary match plus its recursively resolved `requires`,
// plus its `pipeline` if declared. On a `requires` cycle, resolution
// degrades to the primary alone and returns a *SkillCycleError alongside it
// so the caller can log it without failing the turn.
func SelectForMessage(all []*Skill, text string) ([]Selection, error) {
	if len(all) == 0 {
		return nil, nil
	}

	byName := make(map[string]*Skill, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}

	primary, reason, score := pickPrimary(all, text)
	if primary == nil {
		return nil, nil
	}

	selections := []Selection{{Skill: primary, Score: score, Reason: reason}}

	resolved, cycleErr := resolveRequires(primary, byName)
	if cycleErr == nil {
		for _, dep := range resolved {
			selections = append(selections, Selection{Skill: dep, Score: score, Reason: reasonRequires})
		}
	}

	if len(primary.Pipeline) > 0 {
		for _, name := range primary.Pipeline {
			if dep, ok := byName[name]; ok {
				selections = append(selections, Selection{Skill: dep, Score: score, Reason: reasonPipeline})
			}
		}
	}

	return selections, cycleErr
}

// pickPrimary finds the single best-matching skill: an explicit mention
// (either "$name" or the bare name appearing in text) always outranks a
// keyword match.
func pickPrimary(all []*Skill, text string) (*Skill, string, float64) {
	lower := strings.ToLower(text)

	for _, s := range all {
		if strings.Contains(lower, "$"+s.Name) || strings.Contains(lower, s.Name) {
			return s, reasonExplicitMention, 1.0
		}
	}

	tokens := tokenize(lower)
	if len(tokens) == 0 {
		return nil, "", 0
	}

	var best *Skill
	var bestScore float64
	for _, s := range all {
		score := tfidfScore(tokens, s, all)
		if score > bestScore {
			best, bestScore = s, score
		}
	}
	if best == nil || bestScore <= 0 {
		return nil, "", 0
	}
	return best, reasonKeywordMatch, bestScore
}

// tfidfScore approximates TF-IDF relevance of text's tokens against one
// skill's description+tags, using the corpus of all skills to derive
// inverse document frequency.
func tfidfScore(queryTokens []string, skill *Skill, corpus []*Skill) float64 {
	docTokens := tokenize(strings.ToLower(skill.Description + " " + strings.Join(skill.Tags, " ")))
	docCounts := tokenCounts(docTokens)

	var score float64
	for _, qt := range queryTokens {
		tf := float64(docCounts[qt])
		if tf == 0 {
			continue
		}
		df := 0
		for _, other := range corpus {
			otherTokens := tokenize(strings.ToLower(other.Description + " " + strings.Join(other.Tags, " ")))
			if tokenCounts(otherTokens)[qt] > 0 {
				df++
			}
		}
		idf := math.Log(1 + float64(len(corpus))/float64(1+df))
		score += tf * idf
	}
	return score
}

func resolveRequires(primary *Skill, byName map[string]*Skill) ([]*Skill, error) {
	var resolved []*Skill
	visited := map[string]bool{primary.Name: true}
	var chain []string
	var walk func(name string) error
	walk = func(name string) error {
		chain = append(chain, name)
		s, ok := byName[name]
		if !ok {
			return nil
		}
		for _, dep := range s.Requires {
			if visited[dep] {
				return &SkillCycleError{Path: append(append([]string{}, chain...), dep)}
			}
			visited[dep] = true
			if depSkill, ok := byName[dep]; ok {
				resolved = append(resolved, depSkill)
			}
			if err := walk(dep); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(primary.Name); err != nil {
		return nil, err
	}
	return resolved, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-')
	})
}

func tokenCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}
