// Package domain defines the entities and request/response types of the
// marketplace. Persisted rows are owned by Supabase; these structs are the
// in-memory projections the service layer works with.
package domain

import "time"

// Company moderation statuses. Transitions are performed by an external
// moderation process; this service only ever writes StatusPending.
const (
	CompanyStatusPending  = "pending"
	CompanyStatusApproved = "approved"
	CompanyStatusRejected = "rejected"
)

// Inquiry lifecycle statuses (read-only here).
const (
	InquiryStatusOpen       = "open"
	InquiryStatusInProgress = "in_progress"
	InquiryStatusCompleted  = "completed"
	InquiryStatusCancelled  = "cancelled"
)

// Profile maps a row of the profiles table. A profile is created alongside an
// auth identity and shares its id.
type Profile struct {
	ID                        string    `json:"id"`
	Name                      string    `json:"name"`
	City                      string    `json:"city"`
	Phone                     string    `json:"phone"`
	AvatarURL                 string    `json:"avatar_url"`
	EmailNotificationsEnabled bool      `json:"email_notifications_enabled"`
	PushNotificationsEnabled  bool      `json:"push_notifications_enabled"`
	IsProvider                bool      `json:"is_provider"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// Company maps a row of the companies table.
type Company struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Services    []string  `json:"services"`
	Location    string    `json:"location"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	LogoURL     string    `json:"logo_url"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CompanyWithRating is the projection of the companies_with_rating view:
// a company joined with its aggregated review data. AverageRating is nil
// when the company has no reviews yet.
type CompanyWithRating struct {
	Company
	AverageRating *float64 `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
}

// Inquiry maps a row of the inquiries table. Listing only; inquiries are
// created and advanced elsewhere.
type Inquiry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ServiceType string    `json:"service_type"`
	Location    string    `json:"location"`
	Budget      string    `json:"budget"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ContactMessage is a message submitted through the contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// DeletionRequest records that a user asked for their account to be removed.
// The actual deletion is an admin operation outside this service.
type DeletionRequest struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountOverview bundles everything the account page needs in one response.
type AccountOverview struct {
	Profile   *Profile  `json:"profile"`
	Companies []Company `json:"companies"`
	Inquiries []Inquiry `json:"inquiries"`
}

// UpdateProfileRequest is the body for PUT /v1/me/profile.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	Phone string `json:"phone"`
}

// UpdateNotificationsRequest is the body for PUT /v1/me/notifications.
type UpdateNotificationsRequest struct {
	EmailEnabled bool `json:"emailEnabled"`
	PushEnabled  bool `json:"pushEnabled"`
}

// DeletionRequestBody is the body for POST /v1/me/delete-request.
type DeletionRequestBody struct {
	Reason string `json:"reason,omitempty"`
}

// SuccessResponse is a generic message envelope.
type SuccessResponse struct {
	Message string `json:"message"`
}

// ServiceHealth describes a single dependency in the health report.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// HealthStatus is the body of GET /healthz.
type HealthStatus struct {
	Status    string          `json:"status"`
	Services  []ServiceHealth `json:"services"`
	Timestamp string          `json:"timestamp"`
}

// SiteMetrics is the JSON snapshot served by GET /v1/metrics/site.
type SiteMetrics struct {
	ListingQueries     int64   `json:"listingQueries"`
	StaleDropped       int64   `json:"staleDropped"`
	HoneypotDrops      int64   `json:"honeypotDrops"`
	ExternalErrors     int64   `json:"externalErrors"`
	CacheHitRate       float64 `json:"cacheHitRate"`
	AssistantRequests  int64   `json:"assistantRequests"`
	AssistantErrorRate float64 `json:"assistantErrorRate"`
	Period             string  `json:"period"`
}
