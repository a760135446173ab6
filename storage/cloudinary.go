package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// eventoTransformation limits delivery size and lets Cloudinary pick the
// cheapest quality/format for the requesting client.
const eventoTransformation = "c_limit,w_1200,h_1200/q_auto/f_auto"

// CloudinaryProvider stores images in Cloudinary. Deletes and URL
// transformations are keyed by the public ID returned at upload time.
type CloudinaryProvider struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryProvider(cloudName, apiKey, apiSecret, folder string) (*CloudinaryProvider, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloudinary client: %w", err)
	}
	return &CloudinaryProvider{cld: cld, folder: folder}, nil
}

func (p *CloudinaryProvider) Mode() Mode {
	return ModeRemote
}

func (p *CloudinaryProvider) Upload(ctx context.Context, file *multipart.FileHeader) (UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	resp, err := p.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:       p.folder,
		ResourceType: "image",
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return UploadResult{}, fmt.Errorf("Cloudinary rejected upload: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" || resp.PublicID == "" {
		return UploadResult{}, errors.New("Cloudinary returned an incomplete upload response")
	}

	return UploadResult{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (p *CloudinaryProvider) Delete(ctx context.Context, publicID string) error {
	_, err := p.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete %s from Cloudinary: %w", publicID, err)
	}
	return nil
}

func (p *CloudinaryProvider) OptimizedURL(publicID, storedURL string) string {
	if publicID == "" {
		return storedURL
	}
	img, err := p.cld.Image(publicID)
	if err != nil {
		return storedURL
	}
	img.Transformation = eventoTransformation
	url, err := img.String()
	if err != nil || url == "" {
		return storedURL
	}
	return url
}
