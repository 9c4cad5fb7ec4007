package models

type Tenant struct {
	ID           string `json:"id"`
	RegisteredAt int64  `json:"registered_at"`
}

type Webhook struct {
	ID            string `json:"id"`
	TenantID      string `json:"tenant_id"`
	Comment       string `json:"comment"`
	Secret        string `json:"-"`
	Broken        bool   `json:"broken"`
	CreatedBy     string `json:"created_by"`
	LastUpdatedBy string `json:"last_updated_by"`
	CreatedAt     int64  `json:"created_at"`
	LastUpdatedAt int64  `json:"last_updated_at"`
}

type Route struct {
	ID            string   `json:"id"`
	WebhookID     string   `json:"webhook_id"`
	TenantID      string   `json:"tenant_id"`
	RepoName      string   `json:"repo_name"`
	ChannelID     string   `json:"channel_id"`
	Events        []string `json:"events"` // JSON array in DB; empty means all events
	CreatedBy     string   `json:"created_by"`
	LastUpdatedBy string   `json:"last_updated_by"`
	CreatedAt     int64    `json:"created_at"`
	LastUpdatedAt int64    `json:"last_updated_at"`
}

// WebhookPatch is a partial-field edit. Nil means leave the field alone;
// all present fields commit together with the update stamp.
type WebhookPatch struct {
	Comment *string `json:"comment,omitempty"`
	Broken  *bool   `json:"broken,omitempty"`
	Secret  *string `json:"secret,omitempty"`
}

func (p WebhookPatch) Empty() bool {
	return p.Comment == nil && p.Broken == nil && p.Secret == nil
}

// WebhookView is the list representation: the webhook with its routes
// nested and the receiver URL the owner pastes into the source forge.
type WebhookView struct {
	ID            string      `json:"id"`
	Comment       string      `json:"comment"`
	Broken        bool        `json:"broken"`
	ReceiverURL   string      `json:"receiver_url"`
	CreatedBy     string      `json:"created_by"`
	LastUpdatedBy string      `json:"last_updated_by"`
	CreatedAt     int64       `json:"created_at"`
	LastUpdatedAt int64       `json:"last_updated_at"`
	Routes        []RouteView `json:"routes"`
}

type RouteView struct {
	ID        string   `json:"id"`
	RepoName  string   `json:"repo_name"`
	ChannelID string   `json:"channel_id"`
	Events    []string `json:"events"`
	AllEvents bool     `json:"all_events"`
}
