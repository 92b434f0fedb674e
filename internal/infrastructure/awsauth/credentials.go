// Package awsauth 提供出站请求的 SigV4 签名实现
package awsauth

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrMissingCredentials 表示凭证未配置
	ErrMissingCredentials = errors.New("signing credentials are missing")
	// ErrExpiredCredentials 表示凭证已过期
	ErrExpiredCredentials = errors.New("signing credentials are expired")
)

// Credentials 长期凭证。Expiration 为零值表示不过期。
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}

// Valid 检查凭证在给定时刻是否可用
func (c Credentials) Valid(now time.Time) error {
	if strings.TrimSpace(c.AccessKeyID) == "" || strings.TrimSpace(c.SecretAccessKey) == "" {
		return ErrMissingCredentials
	}
	if !c.Expiration.IsZero() && !now.Before(c.Expiration) {
		return ErrExpiredCredentials
	}
	return nil
}

// CredentialsProvider 凭证来源
type CredentialsProvider interface {
	Retrieve(ctx context.Context) (Credentials, error)
}

// StaticProvider 固定凭证来源（来自配置或环境变量）
type StaticProvider struct {
	creds Credentials
}

// NewStaticProvider 创建固定凭证来源
func NewStaticProvider(accessKeyID, secretAccessKey, sessionToken string) *StaticProvider {
	return &StaticProvider{
		creds: Credentials{
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
			SessionToken:    sessionToken,
		},
	}
}

// Retrieve 返回固定凭证
func (p *StaticProvider) Retrieve(_ context.Context) (Credentials, error) {
	return p.creds, nil
}
