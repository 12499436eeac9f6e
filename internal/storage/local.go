package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage はローカルファイルシステムに添付ファイルを保存する Storage 実装。
type LocalStorage struct {
	baseDir   string // ディスク上のルートディレクトリ (例: "./uploads")
	urlPrefix string // HTTP で配信する際の URL プレフィックス (例: "/uploads")
}

// NewLocalStorage は LocalStorage を生成する。
func NewLocalStorage(baseDir, urlPrefix string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir, urlPrefix: urlPrefix}
}

// BaseDir は配信用のルートディレクトリを返す。
func (s *LocalStorage) BaseDir() string { return s.baseDir }

func (s *LocalStorage) Save(_ context.Context, key string, data io.Reader, _ string) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}

	// 書き込み途中のファイルを公開しないよう一時ファイル経由で rename する
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage: create: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("storage: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("storage: rename: %w", err)
	}
	return s.urlPrefix + "/" + key, nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	dest := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove: %w", err)
	}
	return nil
}
