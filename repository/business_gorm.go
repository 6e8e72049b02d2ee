package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	"github.com/imbizlab/groomflo-app/pkg/crypto"
	"github.com/imbizlab/groomflo-app/pkg/timeutils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TokenCipher encrypts the page access token at rest.
type TokenCipher interface {
	Encrypt(plainText string) (string, error)
	Decrypt(cipherText string) (string, error)
}

type BusinessGormRepository struct {
	db     *gorm.DB
	cipher TokenCipher
}

func NewBusinessGormRepository(db *gorm.DB, cipher TokenCipher) *BusinessGormRepository {
	return &BusinessGormRepository{db: db, cipher: cipher}
}

var _ domainBusiness.IBusinessRepository = (*BusinessGormRepository)(nil)

func (r *BusinessGormRepository) Create(ctx context.Context, b *domainBusiness.Business) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	model, err := r.toModel(*b)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *BusinessGormRepository) Update(ctx context.Context, b *domainBusiness.Business) error {
	model, err := r.toModel(*b)
	if err != nil {
		return err
	}
	model.UpdatedAt = time.Now().UTC()
	omit := []string{"id", "created_at"}
	if b.AccessTokenUnreadable && b.FacebookAccessToken == "" {
		omit = append(omit, "facebook_access_token")
	}
	res := r.db.WithContext(ctx).Model(&businessModel{}).Where("id = ?", b.ID).Select("*").Omit(omit...).Updates(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainBusiness.ErrBusinessNotFound
	}
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *BusinessGormRepository) Get(ctx context.Context, id string) (domainBusiness.Business, error) {
	var m businessModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainBusiness.Business{}, domainBusiness.ErrBusinessNotFound
		}
		return domainBusiness.Business{}, err
	}
	return r.fromModel(m), nil
}

func (r *BusinessGormRepository) List(ctx context.Context) ([]domainBusiness.Business, error) {
	return r.find(r.db.WithContext(ctx).Order("created_at ASC"))
}

func (r *BusinessGormRepository) ListPublishable(ctx context.Context) ([]domainBusiness.Business, error) {
	list, err := r.find(r.db.WithContext(ctx).
		Where("facebook_page_id IS NOT NULL AND facebook_page_id <> '' AND facebook_access_token IS NOT NULL AND facebook_access_token <> ''").
		Order("created_at ASC"))
	if err != nil {
		return nil, err
	}
	// tokens that failed to decrypt come back empty
	res := list[:0]
	for _, b := range list {
		if b.HasFacebook() {
			res = append(res, b)
		}
	}
	return res, nil
}

func (r *BusinessGormRepository) ListDigestRecipients(ctx context.Context) ([]domainBusiness.Business, error) {
	return r.find(r.db.WithContext(ctx).Where("daily_email_notifications = ?", true).Order("created_at ASC"))
}

// Delete removes the business together with its posts and week records.
func (r *BusinessGormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&postModel{}, "business_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&weekScheduleModel{}, "business_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&businessModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domainBusiness.ErrBusinessNotFound
		}
		return nil
	})
}

func (r *BusinessGormRepository) find(q *gorm.DB) ([]domainBusiness.Business, error) {
	var models []businessModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domainBusiness.Business, len(models))
	for i, m := range models {
		res[i] = r.fromModel(m)
	}
	return res, nil
}

// --- Mappers ---

func (r *BusinessGormRepository) toModel(b domainBusiness.Business) (businessModel, error) {
	token := b.FacebookAccessToken
	if token != "" {
		enc, err := r.cipher.Encrypt(token)
		if err != nil {
			return businessModel{}, fmt.Errorf("encrypt access token: %w", err)
		}
		token = enc
	}
	tz := b.Timezone
	if tz == "" {
		tz = "UTC"
	}

	return businessModel{
		ID:                      b.ID,
		UserID:                  nullString(b.UserID),
		BusinessName:            b.BusinessName,
		Address:                 nullString(b.Address),
		Phone:                   nullString(b.Phone),
		Email:                   nullString(b.Email),
		Website:                 nullString(b.Website),
		Hours:                   nullString(b.Hours),
		SlowestDay:              b.SlowestDay.String(),
		Timezone:                tz,
		FacebookPageID:          nullString(b.FacebookPageID),
		FacebookAccessToken:     nullString(token),
		CustomPromptInformative: nullString(b.CustomPromptInformative),
		CustomPromptFunFact:     nullString(b.CustomPromptFunFact),
		CustomPromptPromotional: nullString(b.CustomPromptPromotional),
		NotificationEmail:       nullString(b.NotificationEmail),
		DailyEmailNotifications: b.DailyEmailNotifications,
		IsOnboarded:             b.IsOnboarded,
		CreatedAt:               b.CreatedAt,
		UpdatedAt:               b.UpdatedAt,
	}, nil
}

func (r *BusinessGormRepository) fromModel(m businessModel) domainBusiness.Business {
	slowest, err := timeutils.ParseWeekday(m.SlowestDay)
	if err != nil {
		logrus.Warnf("[REPOSITORY] business %s has invalid slowest day %q, using Monday", m.ID, m.SlowestDay)
		slowest = time.Monday
	}

	token := m.FacebookAccessToken.String
	unreadable := false
	if token != "" {
		if crypto.IsEncrypted(token) {
			plain, err := r.cipher.Decrypt(token)
			if err != nil {
				logrus.WithError(err).Warnf("[REPOSITORY] cannot decrypt access token of business %s", m.ID)
				plain = ""
				unreadable = true
			}
			token = plain
		} else {
			logrus.Warnf("[REPOSITORY] business %s stores a plaintext access token; it will be encrypted on next save", m.ID)
		}
	}

	return domainBusiness.Business{
		ID:                      m.ID,
		UserID:                  m.UserID.String,
		BusinessName:            m.BusinessName,
		Address:                 m.Address.String,
		Phone:                   m.Phone.String,
		Email:                   m.Email.String,
		Website:                 m.Website.String,
		Hours:                   m.Hours.String,
		SlowestDay:              slowest,
		Timezone:                m.Timezone,
		FacebookPageID:          m.FacebookPageID.String,
		FacebookAccessToken:     token,
		AccessTokenUnreadable:   unreadable,
		CustomPromptInformative: m.CustomPromptInformative.String,
		CustomPromptFunFact:     m.CustomPromptFunFact.String,
		CustomPromptPromotional: m.CustomPromptPromotional.String,
		NotificationEmail:       m.NotificationEmail.String,
		DailyEmailNotifications: m.DailyEmailNotifications,
		IsOnboarded:             m.IsOnboarded,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}
