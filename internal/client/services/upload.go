package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/streamdesk/internal/client/client"
	"github.com/dmitrijs2005/streamdesk/internal/client/upload"
	"github.com/dmitrijs2005/streamdesk/internal/common"
	"github.com/dmitrijs2005/streamdesk/internal/filex"
)

// UploadInput is a movie upload as entered by the user.
type UploadInput struct {
	Path       string `validate:"required"`
	Movie      client.MovieInput
	Resolution string `validate:"required,oneof=480p 720p 1080p 1440p 2160p"`
	// Format defaults to the file extension.
	Format string `validate:"omitempty,alphanum,max=10"`
}

// Runner executes an upload saga.
type Runner interface {
	Run(ctx context.Context, req upload.Request, observer upload.Observer) (*upload.Result, error)
}

type UploadService interface {
	Upload(ctx context.Context, in UploadInput, observer upload.Observer) (*upload.Result, error)
}

type uploadService struct {
	runner Runner
}

func NewUploadService(runner Runner) UploadService {
	return &uploadService{runner: runner}
}

// Upload validates the input and the local file, then runs the saga.
// Validation failures never reach the backend.
func (u *uploadService) Upload(ctx context.Context, in UploadInput, observer upload.Observer) (*upload.Result, error) {
	in.Path = strings.TrimSpace(in.Path)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	src, err := filex.Stat(in.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	format := in.Format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(src.Name)), ".")
	}

	return u.runner.Run(ctx, upload.Request{
		Movie:      in.Movie,
		File:       src,
		Resolution: in.Resolution,
		Format:     format,
	}, observer)
}
