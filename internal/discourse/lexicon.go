package discourse

import porterstemmer "github.com/blevesearch/go-porterstemmer"

var positiveWords = []string{
	"good", "great", "excellent", "outstanding", "superb", "wonderful", "amazing", "fantastic",
	"positive", "benefit", "beneficial", "advantage", "success", "successful", "succeed",
	"improve", "improvement", "gain", "growth", "grow", "increase", "profit", "profitable",
	"effective", "efficient", "efficiency", "robust", "reliable", "strong", "strength",
	"innovative", "innovation", "promising", "progress", "achieve", "achievement", "accurate",
	"happy", "glad", "pleased", "delight", "enjoy", "love", "like", "favorable", "favourable",
	"optimistic", "opportunity", "win", "winner", "best", "better", "ideal", "perfect",
	"valuable", "useful", "helpful", "support", "secure", "safe", "stable", "healthy",
	"recover", "recovery", "thrive", "boost", "excel", "impressive", "remarkable", "praise",
	"satisfied", "satisfaction", "confident", "clear", "easy", "simple", "fast", "rich",
	"celebrate", "encourage", "inspire", "trust", "fair", "friendly", "welcome", "hope",
}

var negativeWords = []string{
	"bad", "poor", "terrible", "awful", "horrible", "worst", "worse", "negative", "fail",
	"failure", "loss", "lose", "decline", "decrease", "drop", "fall", "risk", "risky",
	"problem", "issue", "error", "bug", "flaw", "defect", "weak", "weakness", "threat",
	"danger", "dangerous", "harm", "harmful", "damage", "crisis", "collapse", "deficit",
	"debt", "costly", "expensive", "slow", "difficult", "hard", "complex", "confusing",
	"unstable", "unreliable", "inaccurate", "wrong", "sad", "angry", "hate", "dislike",
	"fear", "worry", "concern", "pessimistic", "disappoint", "disappointing", "reject",
	"delay", "disease", "death", "die", "pain", "suffer", "victim", "attack", "war",
	"conflict", "fraud", "corrupt", "corruption", "scandal", "penalty", "lawsuit", "violate",
	"violation", "pollution", "waste", "shortage", "poverty", "unemployment", "recession",
	"crash", "broken", "vulnerable", "abuse", "struggle", "doubt", "uncertain", "unsafe",
}

var negators = map[string]bool{"not": true, "no": true, "never": true, "nor": true, "without": true}

// polarity maps words and their Porter stems to +1 or -1.
type lexicon struct {
	exact map[string]int
	stems map[string]int
}

var englishLexicon = buildLexicon()

func buildLexicon() *lexicon {
	l := &lexicon{exact: make(map[string]int), stems: make(map[string]int)}
	add := func(words []string, p int) {
		for _, w := range words {
			l.exact[w] = p
			l.stems[porterstemmer.StemString(w)] = p
		}
	}
	add(positiveWords, 1)
	add(negativeWords, -1)
	return l
}

func (l *lexicon) polarity(word string) int {
	if p, ok := l.exact[word]; ok {
		return p
	}
	return l.stems[porterstemmer.StemString(word)]
}
