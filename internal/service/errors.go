package service

import (
	"errors"
	"fmt"
)

// 错误分类：校验与归属错误在任何存储调用之前同步返回；
// 存储与上传失败以可识别的哨兵错误包装后向上传播，绝不吞掉。
var (
	// ErrRetrieval 标记存储读取失败
	ErrRetrieval = errors.New("retrieval failed")
	// ErrWrite 标记存储写入失败
	ErrWrite = errors.New("write failed")
	// ErrUpload 标记对象存储上传失败或未返回可用 URL
	ErrUpload = errors.New("upload failed")
	// ErrValidation 标记必填字段缺失或非法输入
	ErrValidation = errors.New("validation failed")
	// ErrForbidden 在请求者不拥有目标记录时返回
	ErrForbidden = errors.New("actor does not own the record")

	ErrPostNotFound       = errors.New("post not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
)

func retrievalErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrRetrieval, err)
}

func writeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrWrite, err)
}

func uploadErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpload, err)
}

func validationErr(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}
