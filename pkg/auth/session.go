package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// SessionTTL is the lifetime given to tokens when no explicit TTL is passed.
const SessionTTL = 7 * 24 * time.Hour

var (
	ErrMalformedSession = errors.New("invalid token format")
	ErrBadSignature     = errors.New("invalid signature")
	ErrSessionExpired   = errors.New("session expired")
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

// CreateSessionToken はユーザーIDと有効期限から署名付きセッショントークンを生成する。
// ttl が 0 以下なら SessionTTL を使う
func CreateSessionToken(userID string, secret []byte, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	payload := []byte(userID + "|" + strconv.FormatInt(nowFunc().Add(ttl).Unix(), 10))
	return base64.URLEncoding.EncodeToString(payload) + "." + sign(payload, secret)
}

// VerifySessionToken はトークンの署名と有効期限を検証しユーザーIDを返す
func VerifySessionToken(token string, secret []byte) (string, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return "", ErrMalformedSession
	}
	payload, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrMalformedSession
	}
	if !hmac.Equal([]byte(sign(payload, secret)), []byte(parts[1])) {
		return "", ErrBadSignature
	}

	// user IDs never contain '|', the expiry is after the last one
	i := strings.LastIndexByte(string(payload), '|')
	if i <= 0 {
		return "", ErrMalformedSession
	}
	exp, err := strconv.ParseInt(string(payload[i+1:]), 10, 64)
	if err != nil {
		return "", ErrMalformedSession
	}
	if !nowFunc().Before(time.Unix(exp, 0)) {
		return "", ErrSessionExpired
	}
	return string(payload[:i]), nil
}

func sign(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

const sessionCookieName = "storefront_session"
const minSecretLen = 32

// SessionCookieName はセッションクッキー名
func SessionCookieName() string {
	return sessionCookieName
}

// SessionSecretBytes は文字列からセッション署名用のバイト列を生成する（最低32バイト）
func SessionSecretBytes(s string) []byte {
	b := []byte(s)
	if len(b) < minSecretLen {
		out := make([]byte, minSecretLen)
		copy(out, b)
		return out
	}
	return b
}
