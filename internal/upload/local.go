package upload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // 注册 webp 解码
)

// maxRasterWidth 超过该宽度的位图在落盘前会被等比缩小
const maxRasterWidth = 1600

// LocalStore 将上传内容写入本地目录，并以静态路径对外暴露。
type LocalStore struct {
	Dir     string
	URLPath string
}

// NewLocalStore 构造 LocalStore。
func NewLocalStore(dir, urlPath string) *LocalStore {
	return &LocalStore{Dir: dir, URLPath: urlPath}
}

// Upload 校验内容类型、必要时缩小图片，然后以唯一文件名保存。
func (s *LocalStore) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// 检查文件类型
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrUnsupportedType
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	// 可解码的位图过大时缩小一档；解码失败则原样保存（gif/svg 等）
	if img, format, decodeErr := image.Decode(bytes.NewReader(data)); decodeErr == nil {
		if resized, ok := shrink(img); ok {
			if encoded, encodeErr := encodeImage(resized, format); encodeErr == nil {
				data = encoded
			}
		}
	}

	// 创建上传目录
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// 生成唯一文件名
	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	filePath := filepath.Join(s.Dir, newFilename)

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}

	return fmt.Sprintf("%s/%s", strings.TrimRight(s.URLPath, "/"), newFilename), nil
}

// shrink 将宽度超限的图片等比缩小，未超限返回 ok=false。
func shrink(img image.Image) (image.Image, bool) {
	bounds := img.Bounds()
	width := bounds.Dx()
	if width <= maxRasterWidth {
		return img, false
	}

	height := bounds.Dy() * maxRasterWidth / width
	dst := image.NewRGBA(image.Rect(0, 0, maxRasterWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst, true
}

func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
