package domain

import "time"

// Link is a short code mapped to a destination, scoped to a domain.
// A nil DomainID places the link in the default domain scope.
type Link struct {
	ID             int64      `gorm:"primaryKey;column:id" json:"id"`
	Code           string     `gorm:"column:code;size:64;not null;uniqueIndex:idx_links_scope_code,priority:2" json:"code"`
	DomainScope    int64      `gorm:"column:domain_scope;not null;default:0;uniqueIndex:idx_links_scope_code,priority:1" json:"-"`
	DomainID       *int64     `gorm:"column:domain_id;index" json:"domain_id,omitempty"`
	WorkspaceID    string     `gorm:"column:workspace_id;size:64;not null;index" json:"workspace_id"`
	DestinationURL string     `gorm:"column:destination_url;type:text;not null" json:"destination_url"`
	Permanent      bool       `gorm:"column:permanent;not null;default:false" json:"permanent"`
	StartsAt       *time.Time `gorm:"column:starts_at" json:"starts_at,omitempty"`
	ExpiresAt      *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	Disabled       bool       `gorm:"column:disabled;not null;default:false" json:"disabled"`
	PasswordHash   *string    `gorm:"column:password_hash" json:"-"`

	// Deep links: app scheme first, store URL as fallback
	IOSURL             *string `gorm:"column:ios_url" json:"ios_url,omitempty"`
	IOSFallbackURL     *string `gorm:"column:ios_fallback_url" json:"ios_fallback_url,omitempty"`
	AndroidURL         *string `gorm:"column:android_url" json:"android_url,omitempty"`
	AndroidFallbackURL *string `gorm:"column:android_fallback_url" json:"android_fallback_url,omitempty"`

	UTM UTM `gorm:"embedded;embeddedPrefix:utm_" json:"utm"`

	ClickCount    int64      `gorm:"column:click_count;not null;default:0" json:"click_count"`
	LastClickedAt *time.Time `gorm:"column:last_clicked_at" json:"last_clicked_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Domain *CustomDomain `gorm:"foreignKey:DomainID;constraint:OnDelete:SET NULL" json:"-"`
}

// UTM holds campaign-tagging parameters appended to the destination.
type UTM struct {
	Source   *string `gorm:"column:source;size:255" json:"source,omitempty"`
	Medium   *string `gorm:"column:medium;size:255" json:"medium,omitempty"`
	Campaign *string `gorm:"column:campaign;size:255" json:"campaign,omitempty"`
	Term     *string `gorm:"column:term;size:255" json:"term,omitempty"`
	Content  *string `gorm:"column:content;size:255" json:"content,omitempty"`
}

// Params returns the UTM query parameters that are set, keyed by utm_* name.
func (u UTM) Params() map[string]string {
	params := make(map[string]string, 5)
	add := func(key string, v *string) {
		if v != nil && *v != "" {
			params[key] = *v
		}
	}
	add("utm_source", u.Source)
	add("utm_medium", u.Medium)
	add("utm_campaign", u.Campaign)
	add("utm_term", u.Term)
	add("utm_content", u.Content)
	return params
}

// TableName возвращает название таблицы для GORM
func (Link) TableName() string {
	return "links"
}

// HasPassword reports whether the link is password-gated.
func (l *Link) HasPassword() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// ScopeOf returns the uniqueness scope for a domain reference; 0 is the default scope.
func ScopeOf(domainID *int64) int64 {
	if domainID == nil {
		return 0
	}
	return *domainID
}
