package intent

import (
	"strings"

	"github.com/kailas-cloud/haven/internal/domain"
)

var rewriteSuffix = map[domain.Intent]string{
	domain.IntentEmergency:    "domestic violence emergency hotline",
	domain.IntentFindShelter:  "domestic violence shelter",
	domain.IntentSafetyPlan:   "domestic violence safety planning",
	domain.IntentLegalHelp:    "domestic violence legal aid restraining order",
	domain.IntentCounseling:   "domestic violence counseling services",
	domain.IntentSupportGroup: "domestic violence support group",
	domain.IntentGeneralQuery: "domestic violence resources",
}

// Rewrite appends an intent-specific search suffix to the whitespace-normalized query.
// Intents without a suffix (greeting, off_topic, end_conversation) pass the query through.
func Rewrite(query string, in domain.Intent) string {
	q := strings.Join(strings.Fields(query), " ")
	suffix, ok := rewriteSuffix[in]
	if !ok || q == "" {
		return q
	}
	if strings.Contains(strings.ToLower(q), suffix) {
		return q
	}
	return q + " " + suffix
}
