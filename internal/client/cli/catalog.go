package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dmitrijs2005/streamdesk/internal/client/client"
	"github.com/dmitrijs2005/streamdesk/internal/client/services"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderTable lays rows out under headers with a rounded border.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func (a *App) Movies(ctx context.Context, page int) error {
	p, err := a.catalogService.List(ctx, page)
	if err != nil {
		return err
	}
	a.printMovies(p)
	return nil
}

func (a *App) Search(ctx context.Context, term string) error {
	p, err := a.catalogService.Search(ctx, term, 1)
	if err != nil {
		return err
	}
	a.printMovies(p)
	return nil
}

func (a *App) printMovies(p *client.Page[client.Movie]) {
	if len(p.Items) == 0 {
		fmt.Fprintln(a.out, mutedStyle.Render("No movies."))
		return
	}
	rows := make([][]string, 0, len(p.Items))
	for _, m := range p.Items {
		rows = append(rows, []string{m.ID, m.Title, year(m.ReleaseYear), genreNames(m.Genres)})
	}
	fmt.Fprintln(a.out, renderTable([]string{"ID", "TITLE", "YEAR", "GENRES"}, rows))
	fmt.Fprintln(a.out, mutedStyle.Render(fmt.Sprintf("page %d of %d, %d movies",
		p.Page, pageCount(p.Total, services.PageSize), p.Total)))
}

func (a *App) Show(ctx context.Context, id string) error {
	m, err := a.catalogService.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, titleStyle.Render(m.Title))
	fmt.Fprintf(a.out, "id:       %s\n", m.ID)
	fmt.Fprintf(a.out, "year:     %s\n", year(m.ReleaseYear))
	if m.DurationMinutes > 0 {
		fmt.Fprintf(a.out, "duration: %d min\n", m.DurationMinutes)
	}
	if len(m.Genres) > 0 {
		fmt.Fprintf(a.out, "genres:   %s\n", genreNames(m.Genres))
	}
	if len(m.Casts) > 0 {
		names := make([]string, 0, len(m.Casts))
		for _, c := range m.Casts {
			names = append(names, c.Name)
		}
		fmt.Fprintf(a.out, "cast:     %s\n", strings.Join(names, ", "))
	}
	if m.Description != "" {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, m.Description)
	}
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.catalogService.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, okStyle.Render("Deleted"), id)
	return nil
}

func (a *App) Genres(ctx context.Context) error {
	genres, err := a.catalogService.Genres(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(genres))
	for _, g := range genres {
		rows = append(rows, []string{g.ID, g.Name})
	}
	fmt.Fprintln(a.out, renderTable([]string{"ID", "NAME"}, rows))
	return nil
}

func (a *App) Casts(ctx context.Context) error {
	casts, err := a.catalogService.Casts(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(casts))
	for _, c := range casts {
		rows = append(rows, []string{c.ID, c.Name, c.Role})
	}
	fmt.Fprintln(a.out, renderTable([]string{"ID", "NAME", "ROLE"}, rows))
	return nil
}

func (a *App) Assets(ctx context.Context, movieID string) error {
	assets, err := a.catalogService.Assets(ctx, movieID)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		fmt.Fprintln(a.out, mutedStyle.Render("No video assets."))
		return nil
	}
	rows := make([][]string, 0, len(assets))
	for _, v := range assets {
		rows = append(rows, []string{v.ID, v.Resolution, v.Format, statusLabel(v.Status)})
	}
	fmt.Fprintln(a.out, renderTable([]string{"ID", "RESOLUTION", "FORMAT", "STATUS"}, rows))
	return nil
}

func statusLabel(s client.AssetStatus) string {
	switch s {
	case client.AssetDone:
		return okStyle.Render(string(s))
	case client.AssetFailed:
		return errorStyle.Render(string(s))
	}
	return string(s)
}

func genreNames(gs []client.Genre) string {
	names := make([]string, 0, len(gs))
	for _, g := range gs {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

func year(y int) string {
	if y == 0 {
		return "-"
	}
	return strconv.Itoa(y)
}

func pageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 1
	}
	return (total + size - 1) / size
}
