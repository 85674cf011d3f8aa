package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/internal/server/repo"
	"github.com/worklane/worklane/pkg/cache"
	"github.com/worklane/worklane/pkg/http"
	"github.com/worklane/worklane/pkg/http/jwt"
	"github.com/worklane/worklane/pkg/http/middleware"
	"github.com/worklane/worklane/pkg/log"
)

// AuthService issues sessions. A login writes a session marker to redis so
// tokens can be revoked before they expire; when redis is absent the marker
// is skipped and tokens live out their full lifetime.
type AuthService struct {
	userRepo repo.IUserRepository
	cache    cache.ICache
	auth     http.Auth
}

func NewAuthService(userRepo repo.IUserRepository, c cache.ICache, auth http.Auth) *AuthService {
	return &AuthService{userRepo: userRepo, cache: c, auth: auth}
}

func (s *AuthService) Login(req *model.Login) (*model.LoginResp, error) {
	user, err := s.userRepo.ByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrIncorrectPassword
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}

	aToken, rToken, err := jwt.GenToken(user.UserId, []byte(s.auth.SecretKey), s.auth.AccessExpire, s.auth.RefreshExpire)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		key := middleware.SessionKeyPrefix + user.UserId
		if err := s.cache.Set(context.Background(), key, aToken, s.auth.AccessExpire).Err(); err != nil {
			log.Errorw("session store failed", "userId", user.UserId, "err", err)
		}
	}
	return &model.LoginResp{
		UserInfo: *user.Info(),
		Token: map[string]string{
			"accessToken":  aToken,
			"refreshToken": rToken,
		},
	}, nil
}

func (s *AuthService) Logout(userID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(context.Background(), middleware.SessionKeyPrefix+userID).Err()
}
