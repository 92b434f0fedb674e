package awsauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	algorithm       = "AWS4-HMAC-SHA256"
	amzDateFormat   = "20060102T150405Z"
	dateStampFormat = "20060102"

	headerAmzDate       = "X-Amz-Date"
	headerAmzContentSha = "X-Amz-Content-Sha256"
	headerAmzToken      = "X-Amz-Security-Token"
)

// Signer 按日期/区域/服务作用域对 HTTP 请求计算规范签名。
// 签名绑定到传入的 body 字节：签名后再改动 body 会使签名失效，
// 调用方必须发送与签名时完全一致的字节。
type Signer struct {
	provider CredentialsProvider
	region   string
	service  string
}

// NewSigner 创建签名器
func NewSigner(provider CredentialsProvider, region, service string) *Signer {
	return &Signer{
		provider: provider,
		region:   region,
		service:  service,
	}
}

// Sign 对请求计算签名并注入认证头。
// 相同的 (method, host, path, query, body, 凭证, 时刻) 产生相同的签名。
func (s *Signer) Sign(req *http.Request, body []byte, signingTime time.Time) error {
	creds, err := s.provider.Retrieve(req.Context())
	if err != nil {
		return fmt.Errorf("retrieve credentials: %w", err)
	}
	if err := creds.Valid(signingTime); err != nil {
		return err
	}

	now := signingTime.UTC()
	amzDate := now.Format(amzDateFormat)
	dateStamp := now.Format(dateStampFormat)
	payloadHash := hashHex(body)

	host := req.Host
	if host == "" {
		host = req.URL.Host
	}
	req.Header.Set("Host", host)
	req.Header.Set(headerAmzDate, amzDate)
	req.Header.Set(headerAmzContentSha, payloadHash)
	if creds.SessionToken != "" {
		req.Header.Set(headerAmzToken, creds.SessionToken)
	}

	canonicalHeaders, signedHeaders := canonicalizeHeaders(req.Header)
	canonicalRequest := strings.Join([]string{
		req.Method,
		canonicalURI(req),
		canonicalQuery(req),
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := strings.Join([]string{dateStamp, s.region, s.service, "aws4_request"}, "/")
	stringToSign := strings.Join([]string{
		algorithm,
		amzDate,
		scope,
		hashHex([]byte(canonicalRequest)),
	}, "\n")

	signingKey := deriveSigningKey(creds.SecretAccessKey, dateStamp, s.region, s.service)
	signature := hex.EncodeToString(hmacSHA256(signingKey, []byte(stringToSign)))

	req.Header.Set("Authorization", fmt.Sprintf(
		"%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		algorithm, creds.AccessKeyID, scope, signedHeaders, signature,
	))
	return nil
}

// canonicalURI 返回规范化路径，空路径视作 "/"
func canonicalURI(req *http.Request) string {
	path := req.URL.EscapedPath()
	if path == "" {
		return "/"
	}
	return path
}

// canonicalQuery 返回按键排序后的查询串
func canonicalQuery(req *http.Request) string {
	// url.Values.Encode 本身按键排序
	return strings.ReplaceAll(req.URL.Query().Encode(), "+", "%20")
}

// canonicalizeHeaders 生成规范头部块与 signed-headers 列表。
// 仅纳入参与签名的头：host、content-type 与全部 x-amz-* 头。
func canonicalizeHeaders(h http.Header) (string, string) {
	names := make([]string, 0, len(h))
	for name := range h {
		lower := strings.ToLower(name)
		if lower == "host" || lower == "content-type" || strings.HasPrefix(lower, "x-amz-") {
			names = append(names, lower)
		}
	}
	sort.Strings(names)

	var canonical strings.Builder
	for _, name := range names {
		values := h.Values(http.CanonicalHeaderKey(name))
		trimmed := make([]string, 0, len(values))
		for _, v := range values {
			trimmed = append(trimmed, strings.Join(strings.Fields(v), " "))
		}
		canonical.WriteString(name)
		canonical.WriteString(":")
		canonical.WriteString(strings.Join(trimmed, ","))
		canonical.WriteString("\n")
	}
	return canonical.String(), strings.Join(names, ";")
}

// deriveSigningKey 由长期密钥派生按日期/区域/服务作用域的签名密钥
func deriveSigningKey(secret, dateStamp, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(dateStamp))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte("aws4_request"))
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
