package utils

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

var cld *cloudinary.Cloudinary

// InitCloudinary initializes the Cloudinary connection used for all media
// uploads (avatars, covers, video files).
func InitCloudinary() error {
	var err error

	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return fmt.Errorf("the Cloudinary environment variables are not set")
	}

	cld, err = cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return fmt.Errorf("error initializing Cloudinary: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = cld.Admin.Ping(ctx)
	if err != nil {
		return fmt.Errorf("error verifying the Cloudinary connection: %v", err)
	}

	LogSuccess("Cloudinary initialized and connection verified")
	return nil
}

func boolPointer(b bool) *bool {
	return &b
}

func isValidImageType(filename string) bool {
	validExtensions := []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}
	lowerFilename := strings.ToLower(filename)

	for _, ext := range validExtensions {
		if strings.HasSuffix(lowerFilename, ext) {
			return true
		}
	}
	return false
}

func isValidVideoType(filename string) bool {
	validExtensions := []string{".mp4", ".webm", ".mov", ".mkv", ".avi"}
	lowerFilename := strings.ToLower(filename)

	for _, ext := range validExtensions {
		if strings.HasSuffix(lowerFilename, ext) {
			return true
		}
	}
	return false
}

// UploadImage pushes an avatar or cover image to Cloudinary and returns the
// public URL. 10MB limit.
func UploadImage(file *multipart.FileHeader, folder string) (string, error) {
	if !isValidImageType(file.Filename) {
		return "", fmt.Errorf("unsupported image format, use JPG, PNG, GIF, WEBP or BMP")
	}

	if file.Size > 10*1024*1024 {
		return "", fmt.Errorf("image too large, 10MB maximum")
	}

	return upload(file, folder, "image", 30*time.Second)
}

// UploadVideo pushes a video file to Cloudinary and returns the public URL.
// 500MB limit.
func UploadVideo(file *multipart.FileHeader) (string, error) {
	if !isValidVideoType(file.Filename) {
		return "", fmt.Errorf("unsupported video format, use MP4, WEBM, MOV, MKV or AVI")
	}

	if file.Size > 500*1024*1024 {
		return "", fmt.Errorf("video too large, 500MB maximum")
	}

	return upload(file, "videos", "video", 10*time.Minute)
}

func upload(file *multipart.FileHeader, folder string, resourceType string, timeout time.Duration) (string, error) {
	if cld == nil {
		if err := InitCloudinary(); err != nil {
			return "", err
		}
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("error opening the file: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	uploadParams := uploader.UploadParams{
		Folder:         folder,
		PublicID:       uuid.New().String(),
		UseFilename:    boolPointer(false),
		UniqueFilename: boolPointer(true),
		Overwrite:      boolPointer(false),
		ResourceType:   resourceType,
	}

	uploadResult, err := cld.Upload.Upload(ctx, src, uploadParams)
	if err != nil {
		return "", fmt.Errorf("error uploading to Cloudinary: %v", err)
	}

	if uploadResult.SecureURL == "" {
		return "", fmt.Errorf("empty secure URL in the Cloudinary response")
	}

	return uploadResult.SecureURL, nil
}
