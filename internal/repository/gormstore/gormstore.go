package gormstore

import (
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Storage implements repository.Storage on top of GORM (PostgreSQL in production, SQLite in dev).
type Storage struct {
	db  *gorm.DB
	log *zap.Logger
}

var _ repository.Storage = (*Storage)(nil)

func New(db *gorm.DB, log *zap.Logger) *Storage {
	return &Storage{
		db:  db,
		log: log,
	}
}

// --- Link Methods ---

func (s *Storage) CreateLink(ctx context.Context, link *domain.Link) error {
	link.DomainScope = domain.ScopeOf(link.DomainID)

	exists, err := s.CodeExists(ctx, link.DomainID, link.Code)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrConflict
	}

	if err := s.db.WithContext(ctx).Omit("Domain").Create(link).Error; err != nil {
		// lost a race with a concurrent insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		s.log.Error("failed to create link", zap.String("code", link.Code), zap.Error(err))
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

func (s *Storage) GetLinkByCode(ctx context.Context, domainID *int64, code string) (*domain.Link, error) {
	var link domain.Link
	err := s.db.WithContext(ctx).
		Where("domain_scope = ? AND code = ?", domain.ScopeOf(domainID), code).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		s.log.Error("failed to get link", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return &link, nil
}

func (s *Storage) CodeExists(ctx context.Context, domainID *int64, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("domain_scope = ? AND code = ?", domain.ScopeOf(domainID), code).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return count > 0, nil
}

func (s *Storage) IncrementClickCount(ctx context.Context, linkID int64, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("id = ?", linkID).
		Updates(map[string]interface{}{
			"click_count":     gorm.Expr("click_count + 1"),
			"last_clicked_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to increment click count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteLink(ctx context.Context, linkID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("link_id = ?", linkID).Delete(&domain.ClickEvent{}).Error; err != nil {
			return fmt.Errorf("failed to delete click events: %w", err)
		}
		result := tx.Delete(&domain.Link{}, linkID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete link: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// --- Click Methods ---

func (s *Storage) InsertClickEvent(ctx context.Context, event *domain.ClickEvent) error {
	if err := s.db.WithContext(ctx).Omit("Link").Create(event).Error; err != nil {
		return fmt.Errorf("failed to insert click event: %w", err)
	}
	return nil
}

func (s *Storage) ListClickEvents(ctx context.Context, f repository.ClickFilter) ([]domain.ClickEvent, error) {
	q := s.db.WithContext(ctx).Model(&domain.ClickEvent{}).
		Where("click_events.clicked_at >= ? AND click_events.clicked_at < ?", f.From.UTC(), f.To.UTC())

	if f.LinkID != nil {
		q = q.Where("click_events.link_id = ?", *f.LinkID)
	}
	if f.WorkspaceID != "" {
		q = q.Joins("JOIN links ON links.id = click_events.link_id").
			Where("links.workspace_id = ?", f.WorkspaceID)
	}
	if !f.IncludeBots {
		q = q.Where("click_events.is_bot = ?", false)
	}
	if f.Country != nil {
		q = q.Where("click_events.country = ?", *f.Country)
	}

	var events []domain.ClickEvent
	if err := q.Order("click_events.clicked_at ASC").Order("click_events.id ASC").Find(&events).Error; err != nil {
		s.log.Error("failed to list click events", zap.Error(err))
		return nil, fmt.Errorf("failed to list click events: %w", err)
	}
	return events, nil
}

// --- Domain Methods ---

func (s *Storage) CreateDomain(ctx context.Context, d *domain.CustomDomain) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.CustomDomain{}).
		Where("hostname = ?", d.Hostname).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check hostname: %w", err)
	}
	if count > 0 {
		return domain.ErrConflict
	}

	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return fmt.Errorf("failed to create domain: %w", err)
	}
	return nil
}

func (s *Storage) GetDomain(ctx context.Context, id int64) (*domain.CustomDomain, error) {
	var d domain.CustomDomain
	err := s.db.WithContext(ctx).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get domain: %w", err)
	}
	return &d, nil
}

func (s *Storage) GetDomainByHostname(ctx context.Context, hostname string) (*domain.CustomDomain, error) {
	var d domain.CustomDomain
	err := s.db.WithContext(ctx).Where("hostname = ?", hostname).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get domain by hostname: %w", err)
	}
	return &d, nil
}

func (s *Storage) ListDomains(ctx context.Context, workspaceID string) ([]domain.CustomDomain, error) {
	var domains []domain.CustomDomain
	err := s.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").Order("id ASC").
		Find(&domains).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	return domains, nil
}

func (s *Storage) CountDomains(ctx context.Context, workspaceID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.CustomDomain{}).
		Where("workspace_id = ?", workspaceID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count domains: %w", err)
	}
	return count, nil
}

func (s *Storage) UpdateDomainVerification(ctx context.Context, d *domain.CustomDomain) error {
	q := s.db.WithContext(ctx).Model(&domain.CustomDomain{}).Where("id = ?", d.ID)
	if d.Status != domain.DomainStatusVerified {
		q = q.Where("status <> ?", domain.DomainStatusVerified)
	}

	err := q.Select("status", "check_attempts", "last_checked_at", "verified_at", "verification_method", "ssl_status").
		Updates(map[string]interface{}{
			"status":              d.Status,
			"check_attempts":      d.CheckAttempts,
			"last_checked_at":     d.LastCheckedAt,
			"verified_at":         d.VerifiedAt,
			"verification_method": d.VerificationMethod,
			"ssl_status":          d.SSLStatus,
		}).Error
	if err != nil {
		s.log.Error("failed to update domain verification", zap.Int64("domain_id", d.ID), zap.Error(err))
		return fmt.Errorf("failed to update domain verification: %w", err)
	}
	return nil
}

func (s *Storage) SetDefaultDomain(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d domain.CustomDomain
		if err := tx.First(&d, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to get domain: %w", err)
		}
		if !d.IsVerified() {
			return domain.ErrDomainNotVerified
		}

		if err := tx.Model(&domain.CustomDomain{}).
			Where("workspace_id = ? AND id <> ? AND is_default = ?", d.WorkspaceID, id, true).
			Update("is_default", false).Error; err != nil {
			return fmt.Errorf("failed to clear default domain: %w", err)
		}
		if err := tx.Model(&domain.CustomDomain{}).Where("id = ?", id).
			Update("is_default", true).Error; err != nil {
			return fmt.Errorf("failed to set default domain: %w", err)
		}
		return nil
	})
}

func (s *Storage) DeleteDomain(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d domain.CustomDomain
		if err := tx.First(&d, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to get domain: %w", err)
		}

		var collisions int64
		err := tx.Model(&domain.Link{}).
			Where("domain_scope = ? AND code IN (?)", id,
				tx.Model(&domain.Link{}).Select("code").Where("domain_scope = ?", 0)).
			Count(&collisions).Error
		if err != nil {
			return fmt.Errorf("failed to check code collisions: %w", err)
		}
		if collisions > 0 {
			return fmt.Errorf("%w: %d codes already exist in the default scope", domain.ErrConflict, collisions)
		}

		if err := tx.Model(&domain.Link{}).Where("domain_id = ?", id).
			Updates(map[string]interface{}{"domain_id": nil, "domain_scope": 0}).Error; err != nil {
			return fmt.Errorf("failed to reassign links: %w", err)
		}
		if err := tx.Delete(&domain.CustomDomain{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete domain: %w", err)
		}

		s.log.Info("domain deleted", zap.Int64("domain_id", id), zap.String("hostname", d.Hostname))
		return nil
	})
}

func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
