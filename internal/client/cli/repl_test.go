package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/streamdesk/internal/common"
)

type fakeExec struct {
	loggedIn bool
	expired  bool

	calls []string
	// errs maps a call name to the error it returns.
	errs map[string]error
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.errs[strings.Fields(call)[0]]
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) sessionExpired() bool {
	e := f.expired
	f.expired = false
	return e
}

func (f *fakeExec) Register(ctx context.Context) error { return f.record("register") }

func (f *fakeExec) Login(ctx context.Context) error {
	if err := f.record("login"); err != nil {
		return err
	}
	f.loggedIn = true
	return nil
}

func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func (f *fakeExec) WhoAmI(ctx context.Context) error { return f.record("whoami") }
func (f *fakeExec) Movies(ctx context.Context, page int) error {
	return f.record(fmt.Sprintf("movies %d", page))
}
func (f *fakeExec) Search(ctx context.Context, term string) error { return f.record("search " + term) }
func (f *fakeExec) Show(ctx context.Context, id string) error     { return f.record("show " + id) }
func (f *fakeExec) Delete(ctx context.Context, id string) error   { return f.record("delete " + id) }
func (f *fakeExec) Genres(ctx context.Context) error              { return f.record("genres") }
func (f *fakeExec) Casts(ctx context.Context) error               { return f.record("casts") }
func (f *fakeExec) Assets(ctx context.Context, movieID string) error {
	return f.record("assets " + movieID)
}
func (f *fakeExec) Upload(ctx context.Context) error { return f.record("upload") }

// capturePrints collects everything the REPL prints, one entry per call.
func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func runScript(exec execIface, lines ...string) {
	reader := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	runREPL(context.Background(), exec, func() string { return "status" }, reader)
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := capturePrints(t)
	exec := &fakeExec{}

	runScript(exec,
		"help",
		"login",
		"help",
		"movies",
		"l 2",
		"search the matrix",
		"show m1",
		"delete m1",
		"genres",
		"casts",
		"assets m1",
		"upload",
		"whoami",
		"foobar",
		"exit",
		"movies",
	)

	assert.Equal(t, []string{
		"login", "movies 1", "movies 2", "search the matrix", "show m1", "delete m1",
		"genres", "casts", "assets m1", "upload", "whoami",
	}, exec.calls)
	assert.Contains(t, *out, helpLoggedOut)
	assert.Contains(t, *out, helpLoggedIn)
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_GatedCommandsRequireLogin(t *testing.T) {
	out := capturePrints(t)
	exec := &fakeExec{}

	runScript(exec, "movies", "upload", "logout")

	assert.Empty(t, exec.calls)
	assert.Equal(t, 3, countOf(*out, "Please log in first."))
}

func TestRunREPL_Usage(t *testing.T) {
	out := capturePrints(t)
	exec := &fakeExec{loggedIn: true}

	runScript(exec, "movies zero", "search", "show", "delete", "assets")

	assert.Empty(t, exec.calls)
	for _, usage := range []string{
		"Usage: movies [page]", "Usage: search <q>", "Usage: show <id>",
		"Usage: delete <id>", "Usage: assets <movieID>",
	} {
		assert.Contains(t, *out, usage)
	}
}

func TestRunREPL_ReportsErrors(t *testing.T) {
	out := capturePrints(t)
	exec := &fakeExec{loggedIn: true, errs: map[string]error{
		"show":   errors.New("boom"),
		"delete": fmt.Errorf("%w: id is required", common.ErrValidation),
	}}

	runScript(exec, "show m1", "delete x", "genres")

	assert.Equal(t, []string{"show m1", "delete x", "genres"}, exec.calls)
	assert.Contains(t, *out, "Error: boom")
	assert.Contains(t, *out, "Invalid input: validation error: id is required")
}

func TestRunREPL_SessionExpiredNotice(t *testing.T) {
	out := capturePrints(t)
	exec := &fakeExec{loggedIn: true}
	exec.errs = map[string]error{"movies": errors.New("token expired")}

	reader := bufio.NewReader(strings.NewReader("movies\nhelp\n"))
	runREPL(context.Background(), &expiringExec{fakeExec: exec}, func() string { return "" }, reader)

	require.Equal(t, 1, countOf(*out, sessionExpiredNotice))
	assert.Contains(t, *out, helpLoggedOut)
}

// expiringExec drops the session during the first movies call, the way a
// rejected token refresh does.
type expiringExec struct {
	*fakeExec
}

func (e *expiringExec) Movies(ctx context.Context, page int) error {
	e.loggedIn = false
	e.expired = true
	return e.fakeExec.Movies(ctx, page)
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrints(t)
	exec := &fakeExec{loggedIn: true}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("movies\n")))

	assert.Empty(t, exec.calls)
}

func countOf(lines []string, want string) int {
	n := 0
	for _, l := range lines {
		if l == want {
			n++
		}
	}
	return n
}
