// Package auth issues and verifies the device tokens presented to the
// upload endpoints.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the registered claims plus the device the token was issued to.
type Claims struct {
	jwt.RegisteredClaims
	DeviceID string `json:"device_id"`
}

// GenerateToken signs an HS256 token for deviceID. A non-positive validity
// issues a token without expiry.
func GenerateToken(deviceID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	if deviceID == "" {
		return "", errors.New("device id is required")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Subject:  deviceID,
		},
		DeviceID: deviceID,
	}
	if validityDuration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(validityDuration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetDeviceIDFromToken validates tokenString and returns its device id.
// Every failure (bad signature, expiry, wrong algorithm, missing device)
// is reported as common.ErrInvalidToken.
func GetDeviceIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.DeviceID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.DeviceID, nil
}
