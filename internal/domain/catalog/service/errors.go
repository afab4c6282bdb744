package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrImageNotFound     = errors.New("image not found")
	ErrVideoNotFound     = errors.New("video not found")
	ErrDuplicateKey      = errors.New("key already exists")
	ErrUploadFailed      = errors.New("video upload failed")
)

// InvalidInputError 字段级校验错误
type InvalidInputError struct {
	Fields map[string]string
}

func (e *InvalidInputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func invalid(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &InvalidInputError{Fields: fields}
}

// validID 主键是 UUID，格式不对的 id 直接按不存在处理
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
