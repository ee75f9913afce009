package domain

import "time"

// DomainStatus is the ownership-verification state of a custom domain.
type DomainStatus string

const (
	DomainStatusPending   DomainStatus = "pending"
	DomainStatusVerifying DomainStatus = "verifying"
	DomainStatusVerified  DomainStatus = "verified"
	DomainStatusFailed    DomainStatus = "failed"
)

// VerificationMethod records which DNS record proved ownership.
type VerificationMethod string

const (
	VerificationCNAME VerificationMethod = "cname"
	VerificationTXT   VerificationMethod = "txt"
)

// SSLStatus tracks certificate provisioning state. Issuance itself happens elsewhere.
type SSLStatus string

const (
	SSLStatusNone         SSLStatus = "none"
	SSLStatusProvisioning SSLStatus = "provisioning"
	SSLStatusActive       SSLStatus = "active"
)

// CustomDomain is a hostname a workspace serves its links from.
type CustomDomain struct {
	ID                 int64               `gorm:"primaryKey;column:id" json:"id"`
	Hostname           string              `gorm:"column:hostname;size:253;uniqueIndex;not null" json:"hostname"`
	WorkspaceID        string              `gorm:"column:workspace_id;size:64;not null;index" json:"workspace_id"`
	VerificationToken  string              `gorm:"column:verification_token;size:64;not null" json:"verification_token"`
	VerificationMethod *VerificationMethod `gorm:"column:verification_method;size:8" json:"verification_method,omitempty"`
	Status             DomainStatus        `gorm:"column:status;size:16;not null;default:'pending'" json:"status"`
	CheckAttempts      int                 `gorm:"column:check_attempts;not null;default:0" json:"check_attempts"`
	LastCheckedAt      *time.Time          `gorm:"column:last_checked_at" json:"last_checked_at,omitempty"`
	VerifiedAt         *time.Time          `gorm:"column:verified_at" json:"verified_at,omitempty"`
	SSLStatus          SSLStatus           `gorm:"column:ssl_status;size:16;not null;default:'none'" json:"ssl_status"`
	IsDefault          bool                `gorm:"column:is_default;not null;default:false" json:"is_default"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName возвращает название таблицы для GORM
func (CustomDomain) TableName() string {
	return "domains"
}

// IsVerified reports whether ownership has been proven.
func (d *CustomDomain) IsVerified() bool {
	return d.Status == DomainStatusVerified
}
