package lexical

import "strings"

// Topic is a coarse subject tag.
type Topic string

// Built-in topics. General is the fallback when nothing else matches.
const (
	TopicTechnology  Topic = "Technology"
	TopicFinance     Topic = "Finance"
	TopicHealthcare  Topic = "Healthcare"
	TopicEducation   Topic = "Education"
	TopicEnvironment Topic = "Environment"
	TopicGovernment  Topic = "Government"
	TopicGeneral     Topic = "General"
)

// TopicKeywords lists the keywords that select a topic.
type TopicKeywords struct {
	Topic    Topic
	Keywords []string
}

// TopicMap is an ordered keyword table; Classify reports topics in this order.
type TopicMap []TopicKeywords

// DefaultTopicMap returns the built-in keyword table.
func DefaultTopicMap() TopicMap {
	return TopicMap{
		{TopicTechnology, []string{"ai", "data", "cloud", "algorithm", "software", "digital", "blockchain", "machine learning"}},
		{TopicFinance, []string{"loan", "investment", "stock", "bank", "equity", "credit", "capital"}},
		{TopicHealthcare, []string{"health", "medical", "patient", "disease", "hospital", "treatment"}},
		{TopicEducation, []string{"school", "student", "learning", "university", "course", "teacher"}},
		{TopicEnvironment, []string{"climate", "sustainability", "energy", "conservation", "pollution"}},
		{TopicGovernment, []string{"policy", "regulation", "public", "government", "law", "administration"}},
	}
}

// TopicMapFrom builds a map from configuration. Configured keywords replace the
// defaults of the built-in topic with the same name; other built-ins keep their
// defaults. Names outside the built-in set are ignored, so the topic set stays closed.
func TopicMapFrom(m map[string][]string) TopicMap {
	out := DefaultTopicMap()
	for i, tk := range out {
		if kws, ok := m[string(tk.Topic)]; ok {
			out[i].Keywords = lowerAll(kws)
		}
	}
	return out
}

// Classify tags phrases with every topic that has a keyword occurring as a
// case-insensitive substring of some phrase. The result is never empty.
func Classify(phrases []string, m TopicMap) []Topic {
	lowered := lowerAll(phrases)
	var out []Topic
	for _, tk := range m {
		if matchesAny(lowered, tk.Keywords) {
			out = append(out, tk.Topic)
		}
	}
	if len(out) == 0 {
		return []Topic{TopicGeneral}
	}
	return out
}

func matchesAny(phrases, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		for _, p := range phrases {
			if strings.Contains(p, kw) {
				return true
			}
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
