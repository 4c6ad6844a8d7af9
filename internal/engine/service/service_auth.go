package service

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/go-arcade/reviewhub/internal/engine/errs"
	"github.com/go-arcade/reviewhub/pkg/http"
	"github.com/go-arcade/reviewhub/pkg/http/jwt"
	"github.com/go-arcade/reviewhub/pkg/log"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// LoginReq 登录请求
type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResp 登录响应
type LoginResp struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	ExpireAt    int64  `json:"expire_at"`
}

// VerifyResp token 校验结果
type VerifyResp struct {
	Username string `json:"username"`
	Valid    bool   `json:"valid"`
}

// AuthService 仪表盘登录，账号来自配置文件
type AuthService struct {
	conf *http.Auth
}

func NewAuthService(conf *http.Auth) *AuthService {
	return &AuthService{conf: conf}
}

func (s *AuthService) Login(req *LoginReq) (*LoginResp, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, errs.New(errs.Validation, "username and password are required")
	}
	if s.conf.Password == "" || s.conf.SecretKey == "" {
		return nil, errs.New(errs.Unauthorized, "login is not configured")
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.conf.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.conf.Password)) == 1
	if !userOK || !passOK {
		log.Warnw("login failed", "username", username)
		return nil, errs.New(errs.Unauthorized, "invalid username or password")
	}

	token, expireAt, err := jwt.GenToken(username, []byte(s.conf.SecretKey), time.Duration(s.conf.AccessExpire)*time.Minute)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "generate token failed")
	}
	return &LoginResp{AccessToken: token, Username: username, ExpireAt: expireAt.Unix()}, nil
}

func (s *AuthService) Verify(token string) (*VerifyResp, error) {
	claims, err := jwt.ParseToken(strings.TrimSpace(strings.TrimPrefix(token, "Bearer ")), s.conf.SecretKey)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, errs.New(errs.Unauthorized, "token expired")
		}
		return nil, errs.New(errs.Unauthorized, "invalid token")
	}
	return &VerifyResp{Username: claims.Username, Valid: true}, nil
}
