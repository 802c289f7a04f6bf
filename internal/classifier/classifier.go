// Package classifier derives tags and a priority from free-text query content
// using fixed pattern rules.
//
// Tag detection is multi-label: every rule is evaluated and all matches are
// kept. Priority detection is a single-label cascade where the first matching
// rule wins.
package classifier

import (
	"regexp"
	"strings"

	"github.com/tejzpr/audience-inbox/internal/inbox"
)

type tagRule struct {
	tag      inbox.Tag
	patterns []*regexp.Regexp
}

// Rules are listed in inbox.AllTags order so results come back in that order.
var tagRules = []tagRule{
	{inbox.TagQuestion, []*regexp.Regexp{
		regexp.MustCompile(`\?`),
		regexp.MustCompile(`how|what|when|where|why|can you`),
	}},
	{inbox.TagRequest, []*regexp.Regexp{
		regexp.MustCompile(`request|please|need|want|could you|would you`),
	}},
	{inbox.TagComplaint, []*regexp.Regexp{
		regexp.MustCompile(`issue|problem|wrong|broken|error|not work|doesn't|hate|awful|terrible`),
	}},
	{inbox.TagFeedback, []*regexp.Regexp{
		regexp.MustCompile(`great|love|amazing|thank|excellent|good job|appreciate`),
	}},
	{inbox.TagBug, []*regexp.Regexp{
		regexp.MustCompile(`bug|crash|error|fail|not working|freeze|stuck|broken`),
	}},
	{inbox.TagInquiry, []*regexp.Regexp{
		regexp.MustCompile(`information|details|info|tell me|explain`),
	}},
}

var (
	urgencyCue  = regexp.MustCompile(`urgent|immediately|asap|critical|emergency|now|dying`)
	severityCue = regexp.MustCompile(`crash|broken|not work`)
)

// Result is the outcome of classifying one message.
type Result struct {
	Tags     []inbox.Tag    `json:"tags"`
	Priority inbox.Priority `json:"priority"`
}

// Classify runs tag detection followed by priority detection.
func Classify(content string) Result {
	tags := DetectTags(content)
	return Result{Tags: tags, Priority: DetectPriority(content, tags)}
}

// DetectTags returns every tag whose rule matches content. It never returns
// an empty slice: text matching no rule is tagged inquiry.
func DetectTags(content string) []inbox.Tag {
	lower := strings.ToLower(content)

	var tags []inbox.Tag
	for _, rule := range tagRules {
		for _, p := range rule.patterns {
			if p.MatchString(lower) {
				tags = append(tags, rule.tag)
				break
			}
		}
	}
	if len(tags) == 0 {
		return []inbox.Tag{inbox.TagInquiry}
	}
	return tags
}

// DetectPriority picks a priority for content given its tags.
//
// An explicit urgency cue always wins. Complaints and bugs are high, or urgent
// when the text also describes a crash or breakage. Requests are medium and
// everything else is low.
func DetectPriority(content string, tags []inbox.Tag) inbox.Priority {
	lower := strings.ToLower(content)

	if urgencyCue.MatchString(lower) {
		return inbox.PriorityUrgent
	}
	if inbox.HasTag(tags, inbox.TagComplaint) || inbox.HasTag(tags, inbox.TagBug) {
		if severityCue.MatchString(lower) {
			return inbox.PriorityUrgent
		}
		return inbox.PriorityHigh
	}
	if inbox.HasTag(tags, inbox.TagRequest) {
		return inbox.PriorityMedium
	}
	return inbox.PriorityLow
}
