package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/streamdesk/internal/common"
)

// Register prompts for the account details and creates the account. The
// user still has to log in afterwards.
func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.authService.Register(ctx, email, name, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s, you can log in now.\n", user.Email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, email, password); err != nil {
		return err
	}
	// A stale expiry notice from before this login is no longer relevant.
	a.expired.Store(false)
	fmt.Fprintln(a.out, "Logged in", a.getStatus())
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	p, err := a.authService.WhoAmI(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", p.User.Name, p.User.Email)
	fmt.Fprintf(a.out, "role: %s\n", p.User.Role)
	if !p.Claims.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "token expires: %s\n", p.Claims.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
