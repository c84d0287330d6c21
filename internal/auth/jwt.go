package auth

import (
	"cloud-drive/internal/models"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "cloud-drive"

type AppClaims struct {
	UserID       string  `json:"user_id"`
	Role         string  `json:"role"`
	StorageUsed  *int64  `json:"storage_used,omitempty"`
	StorageQuota *int64  `json:"storage_quota,omitempty"`
	DriveRootID  *string `json:"drive_root_id,omitempty"`
	jwt.RegisteredClaims
}

func GenerateJWT(user *models.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	used := user.StorageUsed
	quota := user.StorageQuota

	claims := &AppClaims{
		UserID:       user.ID.String(),
		Role:         string(user.Role),
		StorageUsed:  &used,
		StorageQuota: &quota,
		DriveRootID:  user.DriveRootID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func VerifyJWT(tokenString, secret string) (*AppClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AppClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
