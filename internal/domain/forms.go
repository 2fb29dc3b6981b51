package domain

// ProviderForm is the add-company submission. Website is the hidden honeypot
// field: legitimate users never fill it.
type ProviderForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Services    string `json:"services"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	LogoURL     string `json:"logoUrl,omitempty"`
	Website     string `json:"website,omitempty"`
}

// SubmitResult is the caller-visible outcome of a form submission. A honeypot
// drop reports OK without a company, indistinguishable from success.
type SubmitResult struct {
	OK      bool     `json:"ok"`
	Company *Company `json:"company,omitempty"`
}

// ContactForm is the contact-page submission. Website is the honeypot.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Website string `json:"website,omitempty"`
}

// AssistantRequest is the body for POST /v1/assistant.
type AssistantRequest struct {
	Prompt string `json:"prompt"`
}

// AssistantReply is the opaque AI-proxy response.
type AssistantReply struct {
	Reply string `json:"reply"`
}
