package domain

import "strings"

// Intent is a label from the closed intent vocabulary.
type Intent string

// Intent vocabulary.
const (
	IntentEmergency       Intent = "emergency"
	IntentFindShelter     Intent = "find_shelter"
	IntentSafetyPlan      Intent = "safety_plan"
	IntentLegalHelp       Intent = "legal_help"
	IntentCounseling      Intent = "counseling"
	IntentSupportGroup    Intent = "support_group"
	IntentGeneralQuery    Intent = "general_query"
	IntentGreeting        Intent = "greeting"
	IntentOffTopic        Intent = "off_topic"
	IntentEndConversation Intent = "end_conversation"
)

// ResponseStyle is the kind of answer an intent calls for.
type ResponseStyle string

// Response styles.
const (
	StyleImmediate      ResponseStyle = "immediate"
	StyleSearch         ResponseStyle = "search"
	StyleConversational ResponseStyle = "conversational"
	StyleRedirect       ResponseStyle = "redirect"
	StyleEndCall        ResponseStyle = "end_call"
)

type intentInfo struct {
	priority int
	style    ResponseStyle
}

// intentTable is ordered by priority; lower rank is more urgent.
var intentTable = map[Intent]intentInfo{
	IntentEmergency:       {1, StyleImmediate},
	IntentFindShelter:     {2, StyleSearch},
	IntentSafetyPlan:      {3, StyleConversational},
	IntentLegalHelp:       {4, StyleSearch},
	IntentCounseling:      {5, StyleSearch},
	IntentSupportGroup:    {6, StyleSearch},
	IntentGeneralQuery:    {7, StyleConversational},
	IntentGreeting:        {8, StyleConversational},
	IntentOffTopic:        {9, StyleRedirect},
	IntentEndConversation: {10, StyleEndCall},
}

// Intents returns the vocabulary ordered by priority.
func Intents() []Intent {
	out := make([]Intent, len(intentTable))
	for in, info := range intentTable {
		out[info.priority-1] = in
	}
	return out
}

// ParseIntent normalizes a label ("Find-Shelter", " find shelter ") and checks it against the vocabulary.
func ParseIntent(label string) (Intent, bool) {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	in := Intent(s)
	if _, ok := intentTable[in]; !ok {
		return "", false
	}
	return in, true
}

// Valid reports whether the intent belongs to the vocabulary.
func (i Intent) Valid() bool {
	_, ok := intentTable[i]
	return ok
}

// Priority returns the fixed urgency rank (1 = most urgent). Unknown intents rank last.
func (i Intent) Priority() int {
	if info, ok := intentTable[i]; ok {
		return info.priority
	}
	return len(intentTable) + 1
}

// Style returns the response style. Unknown intents are treated as conversational.
func (i Intent) Style() ResponseStyle {
	if info, ok := intentTable[i]; ok {
		return info.style
	}
	return StyleConversational
}

func (i Intent) String() string { return string(i) }
