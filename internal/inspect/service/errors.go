package service

import "errors"

var (
	// ErrNoImages 参考号下没有可用的图片对象
	ErrNoImages = errors.New("no images found for this reference number")
	// ErrInvalidInput 请求参数校验失败
	ErrInvalidInput = errors.New("invalid input")
)
