package domain

// Inquiry is a contact-form submission (a sales lead).
type Inquiry struct {
	ID        string
	Name      string
	Email     string
	Company   string
	Budget    string
	Message   string
	CreatedAt string
}
