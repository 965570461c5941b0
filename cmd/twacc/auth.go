package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"golang.org/x/term"

	"github.com/tw-accounting/twacc/internal/format"
	"github.com/tw-accounting/twacc/pkg/domain"
)

// prompter reads answers from the command's input. Passwords are read
// without echo when the input is a terminal.
type prompter struct {
	std stdio
	r   *bufio.Reader
}

func newPrompter(std stdio) *prompter {
	return &prompter{std: std, r: bufio.NewReader(std.in)}
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.std.err, prompt)
	s, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(prompt), ": "), err)
	}
	return strings.TrimSpace(s), nil
}

func (p *prompter) password(prompt string) (string, error) {
	if f, ok := p.std.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.std.err, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.std.err)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return p.line(prompt)
}

// credentials asks for whatever was not given on the command line.
func (p *prompter) credentials(email string) (string, string, error) {
	var err error
	if email == "" {
		if email, err = p.line("Email: "); err != nil {
			return "", "", err
		}
	}
	if !format.ValidateEmail(email) {
		return "", "", fmt.Errorf("invalid email %q", email)
	}
	password, err := p.password("Password: ")
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", errors.New("password is required")
	}
	return email, password, nil
}

type loginCmd struct {
	io    stdio
	email string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "sign in and store the session token" }
func (*loginCmd) Usage() string {
	return `login [-email <address>]

Prompts for the password (and the email when not given) and stores the
session in the state directory.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "account email")
}

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	defer a.Close()

	email, password, err := newPrompter(c.io).credentials(c.email)
	if err != nil {
		return fail(c.io, err)
	}
	if err := a.session.Login(ctx, domain.Credentials{Username: email, Password: password}); err != nil {
		return fail(c.io, err)
	}
	fmt.Fprintf(c.io.out, "Logged in as %s\n", a.session.State().User.DisplayName())
	return subcommands.ExitSuccess
}

type logoutCmd struct{ io stdio }

func (*logoutCmd) Name() string             { return "logout" }
func (*logoutCmd) Synopsis() string         { return "forget the stored session" }
func (*logoutCmd) Usage() string            { return "logout\n" }
func (*logoutCmd) SetFlags(f *flag.FlagSet) {}

func (c *logoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	defer a.Close()

	if !a.session.State().IsAuthenticated {
		fmt.Fprintln(c.io.out, "Already logged out.")
		return subcommands.ExitSuccess
	}
	a.session.Logout()
	fmt.Fprintln(c.io.out, "Logged out.")
	return subcommands.ExitSuccess
}

type registerCmd struct {
	io    stdio
	email string
	name  string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create an account" }
func (*registerCmd) Usage() string {
	return `register [-email <address>] [-name <name>]

Creates an account. Run login afterwards to start a session.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "account email")
	f.StringVar(&c.name, "name", "", "display name")
}

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	defer a.Close()

	email, password, err := newPrompter(c.io).credentials(c.email)
	if err != nil {
		return fail(c.io, err)
	}
	u, err := a.session.Register(ctx, domain.RegisterRequest{Email: email, Password: password, Name: c.name})
	if err != nil {
		return fail(c.io, err)
	}
	fmt.Fprintf(c.io.out, "Account %s created. Run `twacc login` to sign in.\n", u.Email)
	return subcommands.ExitSuccess
}

type whoamiCmd struct {
	io      stdio
	refresh bool
}

func (*whoamiCmd) Name() string     { return "whoami" }
func (*whoamiCmd) Synopsis() string { return "show the signed-in user" }
func (*whoamiCmd) Usage() string {
	return `whoami [-refresh]

Prints the stored profile. -refresh fetches it from the API first.
`
}

func (c *whoamiCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "refresh", false, "re-fetch the profile")
}

func (c *whoamiCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	defer a.Close()

	if c.refresh && a.session.State().Token != "" {
		a.session.GetProfile(ctx)
	}
	if err := a.requireLogin(); err != nil {
		return fail(c.io, err)
	}
	u := a.session.State().User
	role := "user"
	if u.IsSuperuser {
		role = "admin"
	}
	fmt.Fprintf(c.io.out, "%s <%s>\nid: %d\nrole: %s\napi: %s\n", u.DisplayName(), u.Email, u.ID, role, a.cfg.APIURL)
	return subcommands.ExitSuccess
}
