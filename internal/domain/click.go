package domain

import "time"

// ClickEvent is an immutable record of one resolved redirect.
type ClickEvent struct {
	ID           string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	LinkID       int64     `gorm:"column:link_id;not null;index" json:"link_id"`
	ClickedAt    time.Time `gorm:"column:clicked_at;not null;index" json:"clicked_at"`
	Referrer     *string   `gorm:"column:referrer;size:500" json:"referrer,omitempty"`
	ReferrerHost *string   `gorm:"column:referrer_host;size:255" json:"referrer_host,omitempty"`
	Source       string    `gorm:"column:source;size:32;not null" json:"source"`
	UserAgent    *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	DeviceType   string    `gorm:"column:device_type;size:10;not null" json:"device_type"` // 'desktop', 'mobile', 'tablet', 'bot'
	OS           string    `gorm:"column:os;size:50" json:"os"`
	Browser      string    `gorm:"column:browser;size:50" json:"browser"`
	IsBot        bool      `gorm:"column:is_bot;not null;default:false;index" json:"is_bot"`
	IPHash       string    `gorm:"column:ip_hash;size:64;not null" json:"ip_hash"`
	Country      *string   `gorm:"column:country;size:2" json:"country,omitempty"` // ISO код страны

	// Snapshot of the link's UTM set at click time
	UTM UTM `gorm:"embedded;embeddedPrefix:utm_" json:"utm"`

	// Relationships
	Link *Link `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName возвращает название таблицы для GORM
func (ClickEvent) TableName() string {
	return "click_events"
}
