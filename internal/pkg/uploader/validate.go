package uploader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrFileType     = errors.New("file type not allowed")
	ErrEmptyFile    = errors.New("empty file")
)

// Rule 上传限制
type Rule struct {
	MaxBytes int64
	// Allowed 允许的 MIME，以 "/" 结尾表示整个大类，例如 "image/"
	Allowed []string
}

// ProofRule 支付凭证：图片或 PDF
func ProofRule(maxBytes int64) Rule {
	return Rule{MaxBytes: maxBytes, Allowed: []string{"image/", "application/pdf"}}
}

// VideoRule 管理后台视频
func VideoRule(maxBytes int64) Rule {
	return Rule{MaxBytes: maxBytes, Allowed: []string{"video/"}}
}

func (r Rule) allows(contentType string) bool {
	for _, a := range r.Allowed {
		if strings.HasSuffix(a, "/") {
			if strings.HasPrefix(contentType, a) {
				return true
			}
			continue
		}
		if contentType == a {
			return true
		}
	}
	return false
}

// CheckSize 只看声明的大小，不需要读取内容
func (r Rule) CheckSize(size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if r.MaxBytes > 0 && size > r.MaxBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, r.MaxBytes)
	}
	return nil
}

// Inspect 读取文件头识别真实类型，返回类型和一个从头开始的 Reader
// 识别结果为通用二进制时退回到客户端声明的 Content-Type
func (r Rule) Inspect(src io.Reader, declared string) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	if n == 0 {
		return "", nil, ErrEmptyFile
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if contentType == "application/octet-stream" && declared != "" {
		contentType = declared
	}
	if mt, _, perr := mime.ParseMediaType(contentType); perr == nil {
		contentType = mt
	}

	if !r.allows(contentType) {
		return "", nil, fmt.Errorf("%w: %s", ErrFileType, contentType)
	}
	return contentType, io.MultiReader(bytes.NewReader(head), src), nil
}

// Extension 文件扩展名，原文件名没有扩展名时按类型推断
func Extension(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	switch contentType {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}
