package service

import "strings"

const defaultTopic = "Health Information"

type topicRule struct {
	substr string
	label  string
}

// Ordered keyword table; first match wins.
var topicRules = []topicRule{
	{"gp visit card", "GP Visit Card"},
	{"medical card", "Medical Card"},
	{"hospital", "Hospitals"},
	{"emergency", "Emergency Services"},
	{"urgent care", "Emergency Services"},
	{"covid", "COVID-19"},
	{"coronavirus", "COVID-19"},
	{"vaccine", "Vaccines"},
	{"vaccination", "Vaccines"},
	{"mental health", "Mental Health"},
	{"diabetes", "Diabetes"},
	{"blood pressure", "Blood Pressure"},
	{"hypertension", "Blood Pressure"},
	{"pregnancy", "Pregnancy Services"},
	{"maternity", "Pregnancy Services"},
	{"child", "Children's Health"},
	{"pediatric", "Children's Health"},
	{"elderly", "Services for Older People"},
	{"older", "Services for Older People"},
}

var topicStopwords = map[string]struct{}{
	"about": {}, "with": {}, "this": {}, "that": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "who": {}, "whom": {},
	"whose": {}, "why": {}, "how": {}, "information": {}, "need": {},
	"would": {}, "could": {}, "should": {}, "tell": {}, "know": {},
	"find": {},
}

const maxExtractedTopicLen = 30

// DetectTopic classifies a user query into a coarse topic label. It is a
// pure function: the keyword table is consulted in order, and when nothing
// matches a short phrase is distilled from the query's content words.
func DetectTopic(query string) string {
	lowered := strings.ToLower(query)
	for _, rule := range topicRules {
		if strings.Contains(lowered, rule.substr) {
			return rule.label
		}
	}

	var picked []string
	total := 0
	for _, token := range strings.Fields(lowered) {
		if len(token) <= 3 {
			continue
		}
		if _, stop := topicStopwords[token]; stop {
			continue
		}
		next := total + len(token)
		if len(picked) > 0 {
			next++ // joining space
		}
		if next > maxExtractedTopicLen {
			break
		}
		picked = append(picked, token)
		total = next
	}
	if len(picked) == 0 {
		return defaultTopic
	}
	return strings.Join(picked, " ")
}

// TopicLabels lists the distinct labels of the keyword table, in table order.
func TopicLabels() []string {
	seen := make(map[string]struct{}, len(topicRules))
	labels := make([]string, 0, len(topicRules))
	for _, rule := range topicRules {
		if _, ok := seen[rule.label]; ok {
			continue
		}
		seen[rule.label] = struct{}{}
		labels = append(labels, rule.label)
	}
	return labels
}
