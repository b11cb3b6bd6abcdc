package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-chat-frontend/api"
	"github.com/jrsteele09/go-chat-frontend/auth"
	"github.com/jrsteele09/go-chat-frontend/internal/errors"
	"github.com/jrsteele09/go-chat-frontend/workspace"
)

// prompter is the part of *liner.State the commands use
type prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
}

type repl struct {
	ws  *workspace.Workspace
	in  prompter
	out io.Writer
}

func newREPL(ws *workspace.Workspace, in prompter, out io.Writer) *repl {
	return &repl{ws: ws, in: in, out: out}
}

func (r *repl) greet() {
	if u := r.ws.Auth.User(); u != nil {
		fmt.Fprintf(r.out, "Signed in as %s <%s>\n", u.FullName, u.Email)
		r.printMessages(r.ws.Chat.History())
	} else {
		fmt.Fprintln(r.out, "Not signed in. Use /login or /register.")
	}
	fmt.Fprintln(r.out, "Type /help for commands.")
}

// handle runs one line of input and reports whether the loop should continue
func (r *repl) handle(ctx context.Context, input string) bool {
	if !strings.HasPrefix(input, "/") {
		r.send(ctx, input)
		return true
	}

	switch cmd := strings.Fields(input)[0]; cmd {
	case "/quit", "/exit":
		return false
	case "/help":
		fmt.Fprintln(r.out, "/login  /register  /logout  /reset  /history  /whoami  /quit")
	case "/login":
		r.login(ctx)
	case "/register":
		r.register(ctx)
	case "/logout":
		r.ws.Teardown()
		fmt.Fprintln(r.out, "Signed out.")
	case "/reset":
		r.ws.Chat.ResetChat()
		fmt.Fprintln(r.out, "Started a new conversation.")
	case "/history":
		r.printMessages(r.ws.Chat.History())
	case "/whoami":
		if u := r.ws.Auth.User(); u != nil {
			fmt.Fprintf(r.out, "%s <%s>\n", u.FullName, u.Email)
			if exp, ok := r.ws.Auth.TokenExpiry(); ok {
				fmt.Fprintf(r.out, "Session expires %s\n", exp.Local().Format("2006-01-02 15:04"))
			}
		} else {
			fmt.Fprintln(r.out, "Not signed in.")
		}
	default:
		fmt.Fprintf(r.out, "Unknown command %s\n", cmd)
	}
	return true
}

func (r *repl) send(ctx context.Context, text string) {
	if !r.ws.Auth.IsAuthenticated() {
		fmt.Fprintln(r.out, "Please /login first.")
		return
	}

	before := len(r.ws.Chat.History())
	if err := r.ws.Chat.SendMessage(ctx, text); err != nil {
		if api.IsAuthError(err) || errors.Is(err, errors.ErrNoAccessToken) {
			fmt.Fprintf(r.out, "%s Please /login again.\n", err)
			return
		}
		fmt.Fprintln(r.out, "Error:", err)
		return
	}

	history := r.ws.Chat.History()
	if before > len(history) {
		before = 0
	}
	var replies []api.ChatMessage
	for _, m := range history[before:] {
		if m.FromAI() {
			replies = append(replies, m)
		}
	}
	r.printMessages(replies)
}

func (r *repl) login(ctx context.Context) {
	email, err := r.in.Prompt("Email: ")
	if err != nil {
		return
	}
	password, err := r.in.PasswordPrompt("Password: ")
	if err != nil {
		return
	}

	resp, err := r.ws.Login(ctx, email, password)
	if err != nil {
		r.printError(err, "Invalid credentials")
		return
	}
	msg := resp.Message
	if msg == "" {
		msg = "Login successful!"
	}
	fmt.Fprintf(r.out, "%s Signed in as %s.\n", msg, resp.User.FullName)
}

func (r *repl) register(ctx context.Context) {
	var form auth.RegistrationForm
	fields := []struct {
		prompt string
		dest   *string
	}{
		{"Full name: ", &form.FullName},
		{"Phone number: ", &form.PhoneNumber},
		{"Address: ", &form.Address},
		{"Email: ", &form.Email},
	}
	for _, f := range fields {
		value, err := r.in.Prompt(f.prompt)
		if err != nil {
			return
		}
		*f.dest = value
	}
	password, err := r.in.PasswordPrompt("Password: ")
	if err != nil {
		return
	}
	form.Password = password
	terms, err := r.in.Prompt("Accept the terms and conditions? [y/N] ")
	if err != nil {
		return
	}
	form.AcceptTerms = strings.EqualFold(strings.TrimSpace(terms), "y") || strings.EqualFold(strings.TrimSpace(terms), "yes")

	if _, err := r.ws.Auth.Register(ctx, form); err != nil {
		r.printError(err, "Registration failed")
		return
	}
	fmt.Fprintln(r.out, "Account created successfully! Use /login to sign in.")
}

func (r *repl) printError(err error, fallback string) {
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		for _, msg := range strings.Split(validationErr.Error(), "; ") {
			fmt.Fprintln(r.out, " -", msg)
		}
		return
	}
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	fmt.Fprintln(r.out, "Error:", msg)
}

func (r *repl) printMessages(messages []api.ChatMessage) {
	for _, m := range messages {
		who := "you"
		if m.FromAI() {
			who = "ai"
		}
		fmt.Fprintf(r.out, "[%s] %s\n", who, m.Content)
	}
}
