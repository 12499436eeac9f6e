package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty or escape the root.
var ErrInvalidKey = errors.New("storage: invalid key")

// Storage はチャット添付ファイルの保存・削除を抽象化するインターフェース。
// ローカルファイルシステム実装の他、S3 等に差し替え可能。
type Storage interface {
	// Save はファイルを保存し、公開 URL を返す。
	// key はストレージ内の一意パス (例: "messages/<project_id>/<uuid>.pdf")。
	Save(ctx context.Context, key string, data io.Reader, contentType string) (url string, err error)

	// Delete は key に対応するファイルを削除する。
	Delete(ctx context.Context, key string) error
}

// CleanKey normalizes key and rejects absolute or parent-relative paths.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

var extByType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// AllowedContentType reports whether attachments of this type are accepted,
// and the file extension to store them with.
func AllowedContentType(contentType string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := extByType[ct]
	return ext, ok
}
