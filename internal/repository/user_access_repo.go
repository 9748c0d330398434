package repository

import (
	"context"
	"fmt"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/pkg/database"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// UserAccessRepository stores per-user id-sets. Every mutation is a single
// statement so concurrent grants for one user never lose an update.
type UserAccessRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.UserAccess, error)
	FindByPropertyID(ctx context.Context, propertyID string) ([]model.UserAccess, error)
	AddIDs(ctx context.Context, userID uuid.UUID, field model.AccessField, ids []string) error
	RemoveIDs(ctx context.Context, userID uuid.UUID, field model.AccessField, ids []string) error
	ReplaceIDs(ctx context.Context, userID uuid.UUID, field model.AccessField, ids []string) error
}

type userAccessRepo struct {
	db *gorm.DB
}

func NewUserAccessRepo(db *gorm.DB) UserAccessRepository {
	return &userAccessRepo{db}
}

func column(field model.AccessField) (string, error) {
	switch field {
	case model.AccessFieldPortfolio, model.AccessFieldProperty:
		return string(field), nil
	}
	return "", fmt.Errorf("unknown access field %q", field)
}

// seedArrays returns the arrays of a freshly inserted row holding ids under field.
func seedArrays(field model.AccessField, ids []string) (pq.StringArray, pq.StringArray) {
	portfolioIDs, propertyIDs := pq.StringArray{}, pq.StringArray{}
	if field == model.AccessFieldPortfolio {
		portfolioIDs = ids
	} else {
		propertyIDs = ids
	}
	return portfolioIDs, propertyIDs
}

func (r *userAccessRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.UserAccess, error) {
	var access model.UserAccess
	if err := database.Conn(ctx, r.db).Where("user_id = ?", userID).First(&access).Error; err != nil {
		return nil, err
	}
	return &access, nil
}

func (r *userAccessRepo) FindByPropertyID(ctx context.Context, propertyID string) ([]model.UserAccess, error) {
	var accesses []model.UserAccess
	err := database.Conn(ctx, r.db).Where("? = ANY(property_ids)", propertyID).Find(&accesses).Error
	return accesses, err
}

// AddIDs find-or-creates the user's row and appends the ids it doesn't hold yet.
func (r *userAccessRepo) AddIDs(ctx context.Context, userID uuid.UUID, field model.AccessField, ids []string) error {
	col, err := column(field)
	if err != nil {
		return err
	}
	ids = model.UniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	portfolioIDs, propertyIDs := seedArrays(field, ids)

	query := fmt.Sprintf(`
		INSERT INTO user_accesses (id, user_id, portfolio_ids, property_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			%[1]s = user_accesses.%[1]s || ARRAY(
				SELECT t.id FROM unnest(?::text[]) WITH ORDINALITY AS t(id, n)
				WHERE NOT (t.id = ANY(user_accesses.%[1]s))
				ORDER BY t.n
			),
			updated_at = NOW()`, col)

	return database.Conn(ctx, r.db).Exec(query, uuid.New(), userID, portfolioIDs, propertyIDs, pq.StringArray(ids)).Error
}

func (r *userAccessRepo) RemoveIDs(ctx context.Context, userID uuid.UUID, field model.AccessField, ids []string) error {
	col, err := column(field)
	if err != nil {
		return err
	}
	ids = model.UniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE user_accesses SET
			%[1]s = ARRAY(
				SELECT t.id FROM unnest(%[1]s) WITH ORDINALITY AS t(id, n)
				WHERE NOT (t.id = ANY(?::text[]))
				ORDER BY t.n
			),
			updated_at = NOW()
		WHERE user_id = ?`, col)

	return database.Conn(ctx, r.db).Exec(query, pq.StringArray(ids), userID).Error
}

func (r *userAccessRepo) ReplaceIDs(ctx context.Context, userID uuid.UUID, field model.AccessField, ids []string) error {
	col, err := column(field)
	if err != nil {
		return err
	}
	ids = model.UniqueIDs(ids)
	portfolioIDs, propertyIDs := seedArrays(field, ids)

	query := fmt.Sprintf(`
		INSERT INTO user_accesses (id, user_id, portfolio_ids, property_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			%[1]s = EXCLUDED.%[1]s,
			updated_at = NOW()`, col)

	return database.Conn(ctx, r.db).Exec(query, uuid.New(), userID, portfolioIDs, propertyIDs).Error
}
