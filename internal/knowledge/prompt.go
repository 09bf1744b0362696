package knowledge

import (
	"fmt"
	"strings"

	"site-assistant/internal/domain"
)

// SystemPrompt builds the assistant persona sent to providers that accept a
// system instruction.
func SystemPrompt(site domain.SiteKnowledge) string {
	return strings.Join([]string{
		"Role:",
		fmt.Sprintf("You are %q, a friendly assistant for %s.", botName(site), site.SiteName),
		"",
		"Behavior Rules:",
		behaviorRules(),
		"",
		"Company Context:",
		siteContext(site),
	}, "\n")
}

func botName(site domain.SiteKnowledge) string {
	name := strings.TrimSpace(site.SiteName)
	if first, _, ok := strings.Cut(name, " "); ok {
		name = first
	}
	return name + " Bot"
}

func behaviorRules() string {
	return strings.Join([]string{
		"1) Answer naturally and concisely using the company context.",
		"2) Recommend the contact details when a visitor wants a quote or a call.",
		"3) If required information is unavailable, say so and suggest contacting the team.",
	}, "\n")
}

func siteContext(site domain.SiteKnowledge) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nTagline: %s\nAbout: %s\n", site.SiteName, site.Tagline, normalizePromptInput(site.SubTagline))
	b.WriteString("Services:")
	for _, s := range site.Services {
		fmt.Fprintf(&b, "\n- %s: %s", s.Title, normalizePromptInput(s.Description))
	}
	c := site.Contact
	fmt.Fprintf(&b, "\nContact: phone %s, email %s, address %s, hours %s (%s)", c.Phone, c.Email, c.Address, c.Hours, c.HoursClosed)
	return b.String()
}

func normalizePromptInput(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}
