package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ashureev/taskboard/internal/cli/output"
	"github.com/ashureev/taskboard/internal/client"
	"github.com/ashureev/taskboard/internal/domain"
	"github.com/ashureev/taskboard/internal/session"
)

// SignUpCommand registers a new account and signs in.
func SignUpCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name", Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address", Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password", EnvVars: []string{"TASKBOARD_PASSWORD"}, Required: true},
		},
		Action: signUp,
	}
}

// SignInCommand exchanges credentials for a session.
func SignInCommand() *cli.Command {
	return &cli.Command{
		Name:    "signin",
		Aliases: []string{"login"},
		Usage:   "Sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address", Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password", EnvVars: []string{"TASKBOARD_PASSWORD"}, Required: true},
		},
		Action: signIn,
	}
}

// LogoutCommand ends the session.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:    "logout",
		Aliases: []string{"signout"},
		Usage:   "Sign out and forget the stored token",
		Action:  logout,
	}
}

// WhoAmICommand shows the signed-in user.
func WhoAmICommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the signed-in user",
		Action: whoAmI,
	}
}

func signUp(c *cli.Context) error {
	rt, err := publicRuntime(c)
	if err != nil {
		return err
	}

	reg := domain.Registration{
		Name:     strings.TrimSpace(c.String("name")),
		Email:    strings.TrimSpace(c.String("email")),
		Password: c.String("password"),
	}
	res, err := rt.Client.SignUp(c.Context, reg)
	if err != nil {
		return failure(rt, err, client.MessageOr(err, client.SignUpFailed))
	}

	rt.Session.Login(c.Context, res.Token, res.User)
	fmt.Fprintf(c.App.Writer, "Signed up as %s\n", res.User.DisplayName())
	return nil
}

func signIn(c *cli.Context) error {
	rt, err := publicRuntime(c)
	if err != nil {
		return err
	}

	creds := domain.Credentials{
		Email:    strings.TrimSpace(c.String("email")),
		Password: c.String("password"),
	}
	res, err := rt.Client.SignIn(c.Context, creds)
	if err != nil {
		return failure(rt, err, client.MessageOr(err, client.SignInFailed))
	}

	rt.Session.Login(c.Context, res.Token, res.User)
	fmt.Fprintf(c.App.Writer, "Signed in as %s\n", res.User.DisplayName())
	return nil
}

func logout(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	rt.Session.Logout(c.Context)
	fmt.Fprintln(c.App.Writer, "Signed out")
	return nil
}

func whoAmI(c *cli.Context) error {
	rt, err := privateRuntime(c)
	if err != nil {
		return err
	}
	return render(c, rt, userView{rt.Session.User()})
}

// publicRuntime gates commands meant for signed-out users.
func publicRuntime(c *cli.Context) (*Runtime, error) {
	rt, err := runtimeFrom(c)
	if err != nil {
		return nil, err
	}
	if rt.Session.Gate(session.RoutePublic) == session.DecisionRedirectDashboard {
		return nil, cli.Exit(fmt.Sprintf("error: already signed in as %s; run `taskctl logout` first", rt.Session.User().DisplayName()), 1)
	}
	return rt, nil
}

// privateRuntime gates commands that require a signed-in user.
func privateRuntime(c *cli.Context) (*Runtime, error) {
	rt, err := runtimeFrom(c)
	if err != nil {
		return nil, err
	}
	if rt.Session.Gate(session.RoutePrivate) == session.DecisionRedirectSignIn {
		return nil, cli.Exit("error: not signed in; run `taskctl signin`", 1)
	}
	return rt, nil
}

type userView struct {
	*domain.User
}

func (v userView) Table() *output.Table {
	t := &output.Table{Headers: []string{"ID", "NAME", "EMAIL", "ROLE"}}
	t.AddRow(v.ID, v.Name, v.Email, v.Role)
	return t
}
