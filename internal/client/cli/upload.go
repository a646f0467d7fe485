package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/streamdesk/internal/client/client"
	"github.com/dmitrijs2005/streamdesk/internal/client/services"
	"github.com/dmitrijs2005/streamdesk/internal/client/upload"
)

const defaultResolution = "1080p"

// Upload prompts for a file and its movie metadata, then runs the upload
// with live progress.
func (a *App) Upload(ctx context.Context) error {
	in, err := a.readUploadInput()
	if err != nil {
		return err
	}

	var res *upload.Result
	run := func(o upload.Observer) error {
		var err error
		res, err = a.uploadService.Upload(ctx, in, o)
		return err
	}

	if a.fancy {
		err = runProgressView(a.out, run)
	} else {
		err = run(plainObserver(a.out))
	}
	if err != nil {
		var se *upload.StepError
		if errors.As(err, &se) && res != nil && res.Movie != nil && !a.config.Compensate {
			fmt.Fprintf(a.out, "Movie %s was kept; delete it with 'delete %s'.\n", res.Movie.ID, res.Movie.ID)
		}
		return err
	}

	fmt.Fprintln(a.out, okStyle.Render("Uploaded"), res.Movie.Title, mutedStyle.Render("("+res.Movie.ID+")"))
	if res.Degraded {
		fmt.Fprintln(a.out, mutedStyle.Render("Storage refused the transfer under its CORS rules; progress was simulated."))
	}
	return nil
}

func (a *App) readUploadInput() (services.UploadInput, error) {
	var in services.UploadInput
	var err error

	if in.Path, err = GetSimpleText(a.reader, "File path", a.out); err != nil {
		return in, err
	}
	if in.Movie, err = a.readMovieInput(); err != nil {
		return in, err
	}
	if in.Resolution, err = GetTextOr(a.reader, "Resolution", defaultResolution, a.out); err != nil {
		return in, err
	}
	if in.Format, err = GetSimpleText(a.reader, "Format (empty: from file extension)", a.out); err != nil {
		return in, err
	}
	return in, nil
}

func (a *App) readMovieInput() (client.MovieInput, error) {
	var m client.MovieInput
	var err error

	if m.Title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
		return m, err
	}
	if m.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		return m, err
	}
	if m.ReleaseYear, err = GetInt(a.reader, "Release year", a.out); err != nil {
		return m, err
	}
	if m.DurationMinutes, err = GetInt(a.reader, "Duration (minutes)", a.out); err != nil {
		return m, err
	}
	return m, nil
}
