package format

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/haven/internal/domain"
)

// Style selects the rendering variant.
type Style int

const (
	// Listing renders results for the search API.
	Listing Style = iota
	// Voice renders shorter results for conversational clients and offers a new search when empty.
	Voice
)

// Hotline is the crisis line appended to every response.
type Hotline struct {
	Name   string
	Number string
}

// DefaultHotline is the US National Domestic Violence Hotline.
var DefaultHotline = Hotline{Name: "National Domestic Violence Hotline", Number: "1-800-799-7233"}

const (
	listingDescriptionRunes = 200
	voiceDescriptionRunes   = 120
)

// Formatter renders scored search results as human-readable text.
type Formatter struct {
	style   Style
	hotline Hotline
}

// New creates a formatter. A zero hotline falls back to DefaultHotline.
func New(style Style, hotline Hotline) *Formatter {
	if hotline.Number == "" {
		hotline = DefaultHotline
	}
	if hotline.Name == "" {
		hotline.Name = DefaultHotline.Name
	}
	return &Formatter{style: style, hotline: hotline}
}

// Format renders results as numbered entries followed by a safety notice.
// An empty list renders an apology with the hotline number.
func (f *Formatter) Format(results []domain.ScoredResult) string {
	if len(results) == 0 {
		return f.empty()
	}

	var b strings.Builder
	if f.style == Voice {
		b.WriteString("I found some resources that may help.\n\n")
	} else {
		b.WriteString("Here are some resources that may help:\n\n")
	}

	for i, r := range results {
		content := r.ContentText()

		fmt.Fprintf(&b, "%d. %s\n", i+1, OrganizationName(r.Title))
		if desc := Description(content, f.descriptionRunes()); desc != "" {
			fmt.Fprintf(&b, "   %s\n", desc)
		}
		if phone := Phone(content); phone != "" {
			fmt.Fprintf(&b, "   Phone: %s\n", phone)
		}
		if coverage := Coverage(content); coverage != "" {
			fmt.Fprintf(&b, "   Coverage: %s\n", coverage)
		}
		b.WriteString("\n")
	}

	b.WriteString(f.safetyNotice())
	return b.String()
}

func (f *Formatter) empty() string {
	msg := fmt.Sprintf(
		"I'm sorry, I couldn't find any resources matching your request. "+
			"If you need help right away, please call the %s at %s.",
		f.hotline.Name, f.hotline.Number,
	)
	if f.style == Voice {
		msg += " Would you like me to search again using a different city or zip code?"
	}
	return msg
}

func (f *Formatter) safetyNotice() string {
	return fmt.Sprintf(
		"If you are in immediate danger, call 911. "+
			"For confidential support 24/7, call the %s at %s.",
		f.hotline.Name, f.hotline.Number,
	)
}

func (f *Formatter) descriptionRunes() int {
	if f.style == Voice {
		return voiceDescriptionRunes
	}
	return listingDescriptionRunes
}
