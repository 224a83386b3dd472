package utils

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/mreglen/banya-backend/models"
	"github.com/mreglen/banya-backend/storage"
)

var bgContext = context.Background()

type AccessToken struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken"`
}

func CreateTokenPair(id uint, role string) (*jwt.TokenPair, error) {
	accessTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 24*time.Hour)
	refreshTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("REFRESH_TOKEN_SECRET"), 30*24*time.Hour)

	accessToken, err := accessTokenSigner.Sign(AccessToken{ID: id, Role: role})
	if err != nil {
		return nil, err
	}

	userID := strconv.FormatUint(uint64(id), 10)
	refreshToken, err := refreshTokenSigner.Sign(jwt.Claims{Subject: userID})
	if err != nil {
		return nil, err
	}

	var tokenPair jwt.TokenPair
	tokenPair.AccessToken = accessToken
	tokenPair.RefreshToken = refreshToken

	if storage.Redis != nil {
		storage.Redis.Set(bgContext, string(refreshToken), "true", 30*24*time.Hour+5*time.Minute)
	}

	return &tokenPair, nil
}

// RefreshToken exchanges a still-valid refresh token for a new pair. The old
// token is dropped from the allow-list so it cannot be replayed.
func RefreshToken(ctx iris.Context) {
	token := jwt.GetVerifiedToken(ctx)
	tokenStr := string(token.Token)

	if storage.Redis != nil {
		if _, err := storage.Redis.Get(bgContext, tokenStr).Result(); err != nil {
			CreateError(iris.StatusUnauthorized, "Credentials Error", "Refresh token revoked or unknown", ctx)
			return
		}
	}

	claims := jwt.Get(ctx).(*jwt.Claims)
	id, err := parseSubject(claims.Subject)
	if err != nil {
		CreateInternalServerError(ctx)
		return
	}

	var user models.User
	if dbErr := storage.DB.Preload("Role").First(&user, id).Error; dbErr != nil {
		CreateError(iris.StatusUnauthorized, "Credentials Error", "Account no longer exists", ctx)
		return
	}
	if !user.IsActive {
		CreateError(iris.StatusForbidden, "Credentials Error", "Account is deactivated", ctx)
		return
	}

	tokenPair, tokenErr := CreateTokenPair(user.ID, user.Role.Name)
	if tokenErr != nil {
		CreateInternalServerError(ctx)
		return
	}

	if storage.Redis != nil {
		storage.Redis.Del(bgContext, tokenStr)
	}

	ctx.JSON(tokenPair)
}

func parseSubject(subject string) (uint, error) {
	if subject == "" {
		return 0, errors.New("empty token subject")
	}
	id, err := strconv.ParseUint(subject, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
