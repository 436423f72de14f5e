package user

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/roastline/storefront/model"
)

type SQL struct {
	conn *sqlx.DB
}

// UserRepository reads the application-level profile kept alongside external
// auth identities. It is read-only input for checkout defaults.
type UserRepository interface {
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
}

func NewUserRepository(conn *sqlx.DB) UserRepository {
	return &SQL{conn: conn}
}

const getProfileQuery = `SELECT user_id, email, name, phone, address, created_at, updated_at FROM user_profiles WHERE user_id = $1`

func (s *SQL) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	var entity model.UserProfile
	if err := s.conn.QueryRowxContext(ctx, getProfileQuery, userID).StructScan(&entity); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}
