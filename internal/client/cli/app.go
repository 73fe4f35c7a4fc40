// Package cli implements followctl commands, either one per invocation or
// interactively from a REPL.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/followhub/internal/buildinfo"
	"github.com/dmitrijs2005/followhub/internal/client/config"
	"github.com/dmitrijs2005/followhub/internal/client/grpcclient"
	"github.com/dmitrijs2005/followhub/internal/client/session"
)

var ErrNotRegistered = errors.New("not registered: run 'register <nickname> <origin>' first")

type apiClient interface {
	SetAccessToken(token string)
	Register(ctx context.Context, nickname, origin string) (*grpcclient.Registration, error)
	Profile(ctx context.Context) (*grpcclient.Profile, error)
	Feed(ctx context.Context, page int) (*grpcclient.Feed, error)
	Follow(ctx context.Context, targetPublicID string) error
	Ping(ctx context.Context) error
	Close() error
}

type sessionStore interface {
	Token(ctx context.Context) (string, error)
	Save(ctx context.Context, token, publicID string) error
	Clear(ctx context.Context) error
	Close() error
}

type App struct {
	api     apiClient
	session sessionStore
	in      io.Reader
	out     io.Writer
}

// NewApp opens the session database and connects to the server.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	s, err := session.Open(ctx, c.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening session: %w", err)
	}

	api, err := grpcclient.New(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	return newApp(api, s, in, out), nil
}

func newApp(api apiClient, s sessionStore, in io.Reader, out io.Writer) *App {
	return &App{api: api, session: s, in: in, out: out}
}

// Run executes args as one command, or starts the REPL when args is empty.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.close()

	token, err := a.session.Token(ctx)
	if err != nil {
		return err
	}
	a.api.SetAccessToken(token)

	if len(args) == 0 {
		a.repl(ctx)
		return nil
	}
	return a.exec(ctx, args)
}

func (a *App) close() {
	_ = a.api.Close()
	_ = a.session.Close()
}

func (a *App) exec(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		a.help()
		return nil
	case "version":
		buildinfo.PrintBuildData(a.out)
		return nil
	case "ping":
		return a.ping(ctx)
	case "register":
		if len(args) < 3 {
			return errors.New("usage: register <nickname> <origin>")
		}
		return a.register(ctx, args[1], strings.Join(args[2:], " "))
	case "whoami":
		return a.whoami(ctx)
	case "feed":
		page := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return errors.New("usage: feed [page >= 1]")
			}
			page = n
		}
		return a.feed(ctx, page)
	case "follow":
		if len(args) != 2 {
			return errors.New("usage: follow <publicUserID>")
		}
		return a.follow(ctx, args[1])
	case "logout":
		return a.logout(ctx)
	default:
		return fmt.Errorf("unknown command %q, try 'help'", args[0])
	}
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Commands: register <nickname> <origin>, whoami, feed [page], follow <publicUserID>, logout, ping, version, help")
}

func (a *App) ping(ctx context.Context) error {
	if err := a.api.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func (a *App) register(ctx context.Context, nickname, origin string) error {
	r, err := a.api.Register(ctx, nickname, origin)
	if err != nil {
		return err
	}
	if err := a.session.Save(ctx, r.AccessToken, r.PublicID); err != nil {
		return fmt.Errorf("registered but could not save session: %w", err)
	}
	a.api.SetAccessToken(r.AccessToken)

	fmt.Fprintf(a.out, "Registered. Your public id is %s\n", r.PublicID)
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	p, err := a.api.Profile(ctx)
	if err != nil {
		return a.authError(err)
	}

	fmt.Fprintf(a.out, "%s from %s\n", p.Nickname, p.Origin)
	fmt.Fprintf(a.out, "public id: %s\n", p.PublicID)
	fmt.Fprintf(a.out, "followers: %d, following: %d\n", p.FollowerCount, len(p.Following))
	return nil
}

func (a *App) feed(ctx context.Context, page int) error {
	f, err := a.api.Feed(ctx, page)
	if err != nil {
		return a.authError(err)
	}

	if len(f.Users) == 0 {
		fmt.Fprintf(a.out, "Page %d is empty\n", f.Page)
		return nil
	}

	for _, u := range f.Users {
		mark := " "
		if u.IsFollowing {
			mark = "*"
		}
		fmt.Fprintf(a.out, "[%s] %-32s %-20s followers: %-5d %s\n", mark, u.Nickname, u.Origin, u.FollowerCount, u.PublicID)
	}
	if f.HasMore {
		fmt.Fprintf(a.out, "More: feed %d\n", f.Page+1)
	}
	return nil
}

func (a *App) follow(ctx context.Context, target string) error {
	if err := a.api.Follow(ctx, target); err != nil {
		return a.authError(err)
	}
	fmt.Fprintf(a.out, "Following %s\n", target)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.session.Clear(ctx); err != nil {
		return err
	}
	a.api.SetAccessToken("")
	fmt.Fprintln(a.out, "Session cleared")
	return nil
}

func (a *App) authError(err error) error {
	if errors.Is(err, grpcclient.ErrUnauthorized) {
		return ErrNotRegistered
	}
	return err
}
