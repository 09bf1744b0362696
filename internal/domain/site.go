package domain

// Service is one offering listed on the site.
type Service struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Contact is the public contact block of the site.
type Contact struct {
	Phone       string `yaml:"phone"`
	Email       string `yaml:"email"`
	Address     string `yaml:"address"`
	Hours       string `yaml:"hours"`
	HoursClosed string `yaml:"hoursClosed"`
}

// SiteKnowledge is the read-only structured site content the assistant can
// answer from without any provider.
type SiteKnowledge struct {
	SiteName   string    `yaml:"siteName"`
	Tagline    string    `yaml:"tagline"`
	SubTagline string    `yaml:"subTagline"`
	Contact    Contact   `yaml:"contact"`
	Services   []Service `yaml:"services"`
}
