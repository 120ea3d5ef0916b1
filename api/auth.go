// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const callerKey = "caller"

var errNoSubject = errors.New("token has no subject")

// JWTMiddleware authenticates the caller from an HS256 bearer token. The
// token subject is the caller's account
func JWTMiddleware(secret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			abortError(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		caller, err := callerFromToken(parser, h[len("Bearer "):], secret)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

func callerFromToken(parser *jwt.Parser, tokenStr string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	if _, err := parser.ParseWithClaims(
		tokenStr,
		&claims,
		func(*jwt.Token) (any, error) { return secret, nil },
	); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errNoSubject
	}
	return claims.Subject, nil
}

// NewToken signs an HS256 token for account. It is used by the CLI and tests
func NewToken(secret []byte, account string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = account
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func caller(c *gin.Context) string {
	return c.GetString(callerKey)
}
