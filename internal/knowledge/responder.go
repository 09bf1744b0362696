package knowledge

import (
	"strings"

	"site-assistant/internal/domain"
)

const defaultReply = "Thanks for reaching out! How can we help you today?"

// Keywords are matched against the lower-cased last message. Service keywords
// take precedence over contact keywords.
var (
	serviceKeywords = []string{"service", "offer", "what do you do"}
	contactKeywords = []string{"contact", "phone", "email", "address"}
)

// Responder answers from site knowledge alone. It has no failure mode and is
// safe for concurrent use.
type Responder struct {
	site domain.SiteKnowledge
}

func NewResponder(site domain.SiteKnowledge) *Responder {
	return &Responder{site: site}
}

// Respond picks a canned answer by intent keywords in the conversation tail.
func (r *Responder) Respond(conv domain.Conversation) string {
	var last string
	if tail, ok := conv.Tail(); ok {
		last = strings.ToLower(tail.Content)
	}

	var out string
	switch {
	case containsAny(last, serviceKeywords):
		out = r.services()
	case containsAny(last, contactKeywords):
		out = r.contact()
	default:
		out = r.summary()
	}
	if strings.TrimSpace(out) == "" {
		return defaultReply
	}
	return out
}

func (r *Responder) services() string {
	var b strings.Builder
	b.WriteString(r.site.SiteName + " offers:")
	writeServices(&b, r.site.Services)
	return b.String()
}

func (r *Responder) contact() string {
	c := r.site.Contact
	lines := []string{"You can reach " + r.site.SiteName + " at:"}
	for _, field := range []struct{ label, value string }{
		{"Phone", c.Phone},
		{"Email", c.Email},
		{"Address", c.Address},
		{"Hours", c.Hours},
	} {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		lines = append(lines, field.label+": "+field.value)
	}
	if strings.TrimSpace(c.HoursClosed) != "" {
		lines = append(lines, c.HoursClosed)
	}
	return strings.Join(lines, "\n")
}

func (r *Responder) summary() string {
	var b strings.Builder
	b.WriteString(r.site.SiteName)
	if r.site.Tagline != "" {
		b.WriteString(" — " + r.site.Tagline)
	}
	if r.site.SubTagline != "" {
		b.WriteString("\n" + r.site.SubTagline)
	}
	if len(r.site.Services) > 0 {
		b.WriteString("\n\nWhat we offer:")
		writeServices(&b, r.site.Services)
	}
	return b.String()
}

func writeServices(b *strings.Builder, services []domain.Service) {
	for _, s := range services {
		b.WriteString("\n- " + s.Title)
		if s.Description != "" {
			b.WriteString(": " + s.Description)
		}
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
