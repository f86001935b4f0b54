package storage

import (
	"path"
	"strings"
)

// DefaultRootPrefix 检测数据在桶中的根目录
const DefaultRootPrefix = "AIInspection"

const (
	imagesDir      = "images"
	coordinatesDir = "coordinates"
)

// ImagesPrefix {root}/{referenceNo}/images/
func ImagesPrefix(root, referenceNo string) string {
	return joinPrefix(root, referenceNo, imagesDir)
}

// CoordinatesPrefix {root}/{referenceNo}/coordinates/
func CoordinatesPrefix(root, referenceNo string) string {
	return joinPrefix(root, referenceNo, coordinatesDir)
}

func joinPrefix(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/") + "/"
}

// IsDirectoryKey key 以 / 结尾视为目录占位对象
func IsDirectoryKey(key string) bool {
	return strings.HasSuffix(key, "/")
}

// BaseName key 的最后一段（含扩展名）
func BaseName(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// Stem 去掉扩展名的文件名，作为图片与坐标文件的匹配键
func Stem(key string) string {
	base := BaseName(key)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Ext 小写扩展名（不含点）
func Ext(key string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(BaseName(key)), "."))
}

// ImageObject 从存储 key 派生的图片对象
type ImageObject struct {
	Key         string
	ReferenceNo string
	Stem        string
	FileName    string
}

// ParseImageKey 解析 {root}/{referenceNo}/images/{file} 形式的 key
func ParseImageKey(root, key string) (ImageObject, bool) {
	rest := key
	if r := strings.Trim(root, "/"); r != "" {
		if !strings.HasPrefix(key, r+"/") {
			return ImageObject{}, false
		}
		rest = strings.TrimPrefix(key, r+"/")
	}
	parts := strings.Split(rest, "/")
	if len(parts) < 3 || parts[0] == "" || parts[1] != imagesDir {
		return ImageObject{}, false
	}
	name := BaseName(key)
	if name == "" {
		return ImageObject{}, false
	}
	return ImageObject{
		Key:         key,
		ReferenceNo: parts[0],
		Stem:        Stem(key),
		FileName:    name,
	}, true
}
