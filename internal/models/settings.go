package models

// Settings is the page configuration owned by the admin backend.
type Settings struct {
	Title             string `json:"title"`
	FaviconURL        string `json:"favicon_url"`
	LogoURL           string `json:"logo_url"`
	NewsletterEnabled bool   `json:"newsletter_enabled"`
}
