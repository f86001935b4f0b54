// Package imagemeta 只解析图片头部获取像素尺寸，不解码像素数据
package imagemeta

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrEmptyImage 图片内容为空
var ErrEmptyImage = errors.New("empty image body")

// Dimensions 图片像素尺寸
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Decode 返回尺寸与识别出的格式名（jpeg/png/gif/bmp/tiff）
func Decode(data []byte) (Dimensions, string, error) {
	if len(data) == 0 {
		return Dimensions{}, "", ErrEmptyImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, "", fmt.Errorf("decode image header: %w", err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, format, nil
}
