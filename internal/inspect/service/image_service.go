package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/coordinate"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/imagemeta"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 允许的图片扩展名
var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
	"tiff": true,
}

// 坐标文件扩展名，其他对象不参与匹配
const coordinateExtension = "txt"

// AnnotatedImage 单张图片及其模型检测出的损伤框，仅用于展示，不落库
type AnnotatedImage struct {
	ReferenceNo     string               `json:"reference_no"`
	ImageName       string               `json:"image_name"`
	ImageURL        string               `json:"image_url"`
	ImageDimensions imagemeta.Dimensions `json:"image_dimensions"`
	DamageInfo      []coordinate.Record  `json:"damage_info"`
}

// ImageServiceOptions 图片服务参数
type ImageServiceOptions struct {
	RootPrefix   string
	SignedURLTTL time.Duration
	FetchTimeout time.Duration // 单次存储调用超时，0 表示不限制
	Concurrency  int
}

// ImageService 图片与坐标文件对账服务
type ImageService struct {
	store  storage.ObjectStore
	parser *coordinate.Parser
	opts   ImageServiceOptions
	logger *zap.Logger
}

// NewImageService 创建图片服务
func NewImageService(store storage.ObjectStore, opts ImageServiceOptions, logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = time.Hour
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	return &ImageService{
		store:  store,
		parser: coordinate.NewParser(logger),
		opts:   opts,
		logger: logger,
	}
}

// ListAnnotatedImages 列出参考号下全部图片并附加损伤框
//
// 只有图片列表为空时返回 ErrNoImages；单张图片或单个坐标文件的失败只影响该项。
// 返回顺序与存储列举顺序一致。
func (s *ImageService) ListAnnotatedImages(ctx context.Context, referenceNo string) ([]AnnotatedImage, error) {
	imagesPrefix := storage.ImagesPrefix(s.opts.RootPrefix, referenceNo)
	coordsPrefix := storage.CoordinatesPrefix(s.opts.RootPrefix, referenceNo)

	var imageObjects, coordObjects []storage.ObjectInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		objs, err := s.list(gctx, imagesPrefix)
		if err != nil {
			return fmt.Errorf("list images: %w", err)
		}
		imageObjects = objs
		return nil
	})
	g.Go(func() error {
		objs, err := s.list(gctx, coordsPrefix)
		if err != nil {
			return fmt.Errorf("list coordinates: %w", err)
		}
		coordObjects = objs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	images := FilterImages(s.opts.RootPrefix, referenceNo, imageObjects)
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	coords := s.loadCoordinates(ctx, coordObjects)
	joined := JoinByStem(images, coords)
	if unmatched := len(coords) - countMatched(images, coords); unmatched > 0 {
		s.logger.Debug("Coordinate files without matching image dropped",
			zap.String("reference_no", referenceNo),
			zap.Int("count", unmatched),
		)
	}

	results := make([]*AnnotatedImage, len(joined))
	g = new(errgroup.Group)
	g.SetLimit(s.opts.Concurrency)
	for i, item := range joined {
		g.Go(func() error {
			results[i] = s.describe(ctx, referenceNo, item)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]AnnotatedImage, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// FilterImages 保留非目录且扩展名在白名单内的对象，保持原顺序
func FilterImages(root, referenceNo string, objects []storage.ObjectInfo) []storage.ImageObject {
	images := make([]storage.ImageObject, 0, len(objects))
	for _, obj := range objects {
		if obj.IsDirectory || storage.IsDirectoryKey(obj.Key) {
			continue
		}
		if !imageExtensions[storage.Ext(obj.Key)] {
			continue
		}
		img, ok := storage.ParseImageKey(root, obj.Key)
		if !ok {
			// 前缀之外的 key 仍按列举结果处理
			img = storage.ImageObject{
				Key:         obj.Key,
				ReferenceNo: referenceNo,
				Stem:        storage.Stem(obj.Key),
				FileName:    storage.BaseName(obj.Key),
			}
		}
		images = append(images, img)
	}
	return images
}

// JoinedImage 图片与按 stem 匹配到的损伤框
type JoinedImage struct {
	Image      storage.ImageObject
	DamageInfo []coordinate.Record
}

// JoinByStem 按 stem 关联图片与坐标
//
// 没有坐标文件的图片得到空列表；没有对应图片的坐标被丢弃。
func JoinByStem(images []storage.ImageObject, coordsByStem map[string][]coordinate.Record) []JoinedImage {
	joined := make([]JoinedImage, len(images))
	for i, img := range images {
		info := coordsByStem[img.Stem]
		if info == nil {
			info = []coordinate.Record{}
		}
		joined[i] = JoinedImage{Image: img, DamageInfo: info}
	}
	return joined
}

func countMatched(images []storage.ImageObject, coordsByStem map[string][]coordinate.Record) int {
	seen := make(map[string]bool, len(images))
	n := 0
	for _, img := range images {
		if _, ok := coordsByStem[img.Stem]; ok && !seen[img.Stem] {
			seen[img.Stem] = true
			n++
		}
	}
	return n
}

// loadCoordinates 并发读取并解析坐标文件，读取失败的文件对应空列表
func (s *ImageService) loadCoordinates(ctx context.Context, objects []storage.ObjectInfo) map[string][]coordinate.Record {
	type parsed struct {
		stem    string
		records []coordinate.Record
	}

	var files []storage.ObjectInfo
	for _, obj := range objects {
		if obj.IsDirectory || storage.IsDirectoryKey(obj.Key) {
			continue
		}
		if storage.Ext(obj.Key) != coordinateExtension {
			s.logger.Debug("Ignore non-txt object under coordinates", zap.String("key", obj.Key))
			continue
		}
		files = append(files, obj)
	}

	results := make([]parsed, len(files))
	g := new(errgroup.Group)
	g.SetLimit(s.opts.Concurrency)
	for i, obj := range files {
		g.Go(func() error {
			stem := storage.Stem(obj.Key)
			data, err := s.fetch(ctx, obj.Key)
			if err != nil {
				s.logger.Warn("Error reading coordinates file",
					zap.String("key", obj.Key),
					zap.Error(err),
				)
				results[i] = parsed{stem: stem, records: []coordinate.Record{}}
				return nil
			}
			results[i] = parsed{stem: stem, records: s.parser.Parse(data)}
			return nil
		})
	}
	_ = g.Wait()

	coords := make(map[string][]coordinate.Record, len(results))
	for _, r := range results {
		coords[r.stem] = r.records
	}
	return coords
}

// describe 读取尺寸并签名，任何一步失败返回 nil 表示跳过该图片
func (s *ImageService) describe(ctx context.Context, referenceNo string, item JoinedImage) *AnnotatedImage {
	key := item.Image.Key

	data, err := s.fetch(ctx, key)
	if err != nil {
		s.logger.Warn("Skip image: fetch failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	dim, _, err := imagemeta.Decode(data)
	if err != nil {
		s.logger.Warn("Skip image: unreadable header", zap.String("key", key), zap.Error(err))
		return nil
	}
	url, err := s.signedURL(ctx, key)
	if err != nil {
		s.logger.Warn("Skip image: sign url failed", zap.String("key", key), zap.Error(err))
		return nil
	}

	return &AnnotatedImage{
		ReferenceNo:     referenceNo,
		ImageName:       item.Image.FileName,
		ImageURL:        url,
		ImageDimensions: dim,
		DamageInfo:      item.DamageInfo,
	}
}

func (s *ImageService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.FetchTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.FetchTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *ImageService) list(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.List(ctx, prefix)
}

func (s *ImageService) fetch(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.FetchBytes(ctx, key)
}

func (s *ImageService) signedURL(ctx context.Context, key string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.SignedURL(ctx, key, s.opts.SignedURLTTL)
}
