package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/streamdesk/internal/client/client"
	"github.com/dmitrijs2005/streamdesk/internal/filex"
	"github.com/dmitrijs2005/streamdesk/internal/logging"
	"github.com/dmitrijs2005/streamdesk/internal/netx"
	"github.com/sethvargo/go-retry"
)

var (
	ErrCrossOrigin      = netx.ErrCrossOrigin
	ErrTranscodeFailed  = errors.New("transcoding failed")
	ErrTranscodeTimeout = errors.New("timed out waiting for transcoding")

	errStillPending = errors.New("asset still pending")
)

// Backend is the part of the API client the pipeline drives.
type Backend interface {
	CreateMovie(ctx context.Context, in client.MovieInput) (*client.Movie, error)
	DeleteMovie(ctx context.Context, id string) error
	PresignMovie(ctx context.Context, in client.PresignRequest) (*client.PresignResult, error)
	CreateVideoAsset(ctx context.Context, in client.VideoAsset) (*client.VideoAsset, error)
	ListVideoAssets(ctx context.Context, movieID string) ([]client.VideoAsset, error)
	InvalidateCatalog()
}

type Options struct {
	// SimulatedStep and SimulatedDelay drive the fallback progress after a
	// cross-origin rejection.
	SimulatedStep  int
	SimulatedDelay time.Duration
	// TransferTimeout bounds the storage PUT. Zero means only ctx applies.
	TransferTimeout time.Duration

	TranscodeWait         bool
	TranscodePollInterval time.Duration
	TranscodeTimeout      time.Duration

	// Compensate deletes the created movie when a later step fails.
	Compensate bool
}

func DefaultOptions() Options {
	return Options{
		SimulatedStep:         10,
		SimulatedDelay:        200 * time.Millisecond,
		TransferTimeout:       30 * time.Minute,
		TranscodeWait:         true,
		TranscodePollInterval: 2 * time.Second,
		TranscodeTimeout:      2 * time.Minute,
		Compensate:            true,
	}
}

// Request describes one movie upload.
type Request struct {
	Movie      client.MovieInput
	File       filex.Source
	Resolution string
	Format     string
}

type Result struct {
	Movie    *client.Movie
	Asset    *client.VideoAsset
	BlobURL  string
	Degraded bool
}

// StepError is a pipeline failure attributed to the step that caused it.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Pipeline struct {
	backend  Backend
	transfer Transfer
	opts     Options
	logger   logging.Logger
}

func New(backend Backend, transfer Transfer, opts Options, logger logging.Logger) *Pipeline {
	def := DefaultOptions()
	if opts.SimulatedStep <= 0 {
		opts.SimulatedStep = def.SimulatedStep
	}
	if opts.SimulatedDelay < 0 {
		opts.SimulatedDelay = 0
	}
	if opts.TranscodePollInterval <= 0 {
		opts.TranscodePollInterval = def.TranscodePollInterval
	}
	if opts.TranscodeTimeout <= 0 {
		opts.TranscodeTimeout = def.TranscodeTimeout
	}
	if transfer == nil {
		transfer = HTTPTransfer{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pipeline{backend: backend, transfer: transfer, opts: opts, logger: logger}
}

// Run executes the saga. On failure the returned error is a *StepError and
// Result carries whatever was created before the failure.
func (p *Pipeline) Run(ctx context.Context, req Request, observer Observer) (*Result, error) {
	t := newTracker(observer)
	res := &Result{}
	log := p.logger.With("file", req.File.Name)

	t.report(StepMetadata, 0, "creating movie")
	movie, err := p.backend.CreateMovie(ctx, req.Movie)
	if err != nil {
		return res, &StepError{Step: StepMetadata, Err: err}
	}
	res.Movie = movie
	log = log.With("movie_id", movie.ID)
	t.report(StepMetadata, metadataDone, "movie created")

	if err := p.runAfterMetadata(ctx, req, res, t, log); err != nil {
		p.compensate(ctx, res, log)
		return res, err
	}

	p.backend.InvalidateCatalog()
	t.report(StepCompleted, completedDone, "upload complete")
	_, _, res.Degraded = t.current()
	log.Info(ctx, "movie uploaded", "asset_id", res.Asset.ID, "degraded", res.Degraded)
	return res, nil
}

func (p *Pipeline) runAfterMetadata(ctx context.Context, req Request, res *Result, t *tracker, log logging.Logger) error {
	t.report(StepPresign, metadataDone, "requesting upload target")
	target, err := p.backend.PresignMovie(ctx, client.PresignRequest{
		MovieID:     res.Movie.ID,
		FileName:    req.File.Name,
		ContentType: req.File.ContentType,
	})
	if err != nil {
		return &StepError{Step: StepPresign, Err: err}
	}
	res.BlobURL = target.BlobURL
	t.report(StepPresign, presignDone, "upload target ready")

	if err := p.upload(ctx, req.File, target, t, log); err != nil {
		return &StepError{Step: StepUpload, Err: err}
	}

	t.report(StepAsset, uploadDone, "registering video asset")
	asset, err := p.backend.CreateVideoAsset(ctx, client.VideoAsset{
		MovieID:    res.Movie.ID,
		Resolution: req.Resolution,
		Format:     req.Format,
		URL:        target.BlobURL,
		Status:     client.AssetPending,
	})
	if err != nil {
		return &StepError{Step: StepAsset, Err: err}
	}
	res.Asset = asset
	t.report(StepAsset, assetDone, "video asset registered")

	t.report(StepTranscoding, assetDone, "waiting for transcoding")
	if err := p.awaitTranscoding(ctx, res.Movie.ID, asset, log); err != nil {
		return &StepError{Step: StepTranscoding, Err: err}
	}
	t.report(StepTranscoding, transcodingDone, "transcoding started")
	return nil
}

func (p *Pipeline) upload(ctx context.Context, src filex.Source, target *client.PresignResult, t *tracker, log logging.Logger) error {
	t.report(StepUpload, presignDone, "uploading file")

	tctx := ctx
	if p.opts.TransferTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, p.opts.TransferTimeout)
		defer cancel()
	}

	var (
		mu       sync.Mutex
		returned bool
	)
	err := p.transfer.Put(tctx, target, src, func(sent int64) {
		mu.Lock()
		defer mu.Unlock()
		if returned {
			return
		}
		t.report(StepUpload, transferPercent(sent, src.Size), "")
	})
	// The transport may still be reading the body after an early response.
	mu.Lock()
	returned = true
	mu.Unlock()

	switch {
	case err == nil:
		t.report(StepUpload, uploadDone, "file uploaded")
		return nil
	case errors.Is(err, ErrCrossOrigin):
		log.Warn(ctx, "storage rejected the upload under its CORS rules, simulating progress",
			"blob_url", target.BlobURL, "err", err)
		t.degrade()
		return p.simulate(ctx, t)
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return err
	}
}

// simulate advances progress to the end of the upload window in fixed steps.
func (p *Pipeline) simulate(ctx context.Context, t *tracker) error {
	_, pct, _ := t.current()
	for pct < uploadDone {
		if p.opts.SimulatedDelay > 0 {
			timer := time.NewTimer(p.opts.SimulatedDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		pct = min(pct+p.opts.SimulatedStep, uploadDone)
		t.report(StepUpload, pct, "upload simulated")
	}
	return nil
}

func (p *Pipeline) awaitTranscoding(ctx context.Context, movieID string, asset *client.VideoAsset, log logging.Logger) error {
	if !p.opts.TranscodeWait {
		return nil
	}

	wctx, cancel := context.WithTimeout(ctx, p.opts.TranscodeTimeout)
	defer cancel()

	backoff := retry.WithMaxDuration(p.opts.TranscodeTimeout, retry.NewConstant(p.opts.TranscodePollInterval))
	err := retry.Do(wctx, backoff, func(ctx context.Context) error {
		assets, err := p.backend.ListVideoAssets(ctx, movieID)
		if err != nil {
			if errors.Is(err, client.ErrUnavailable) {
				return retry.RetryableError(err)
			}
			return err
		}

		status, found := assetStatus(assets, asset)
		switch {
		case !found, status == client.AssetPending:
			return retry.RetryableError(errStillPending)
		case status == client.AssetFailed:
			return ErrTranscodeFailed
		default:
			log.Debug(ctx, "transcoding picked up asset", "asset_id", asset.ID, "status", status)
			return nil
		}
	})

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, errStillPending), errors.Is(err, context.DeadlineExceeded):
		return ErrTranscodeTimeout
	default:
		return err
	}
}

func assetStatus(assets []client.VideoAsset, want *client.VideoAsset) (client.AssetStatus, bool) {
	for _, a := range assets {
		if (want.ID != "" && a.ID == want.ID) || (want.ID == "" && a.URL == want.URL) {
			return a.Status, true
		}
	}
	return "", false
}

// compensate deletes the movie record left behind by a failed run. The
// uploaded blob, if any, cannot be removed from here and is only logged.
func (p *Pipeline) compensate(ctx context.Context, res *Result, log logging.Logger) {
	if !p.opts.Compensate || res.Movie == nil {
		return
	}

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := p.backend.DeleteMovie(dctx, res.Movie.ID); err != nil {
		log.Error(ctx, "failed to delete movie after upload failure", "err", err)
	} else {
		log.Info(ctx, "deleted movie after upload failure")
		p.backend.InvalidateCatalog()
	}
	if res.BlobURL != "" {
		log.Warn(ctx, "uploaded blob may be orphaned", "blob_url", res.BlobURL)
	}
}
