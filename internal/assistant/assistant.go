// Package assistant runs the interactive phone book command loop.
package assistant

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/davidleathers/contact-directory/internal/domain/errors"
	"github.com/davidleathers/contact-directory/internal/service/directory"
)

// ErrExit is returned by a handler to stop the loop
var ErrExit = stderrors.New("assistant: exit requested")

type handler func(ctx context.Context, args []string) (string, error)

type command struct {
	usage string
	help  string
	args  int // exact number of arguments; -1 accepts any
	run   handler
}

// Assistant reads commands line by line and applies them to a directory service
type Assistant struct {
	svc      *directory.Service
	logger   *zap.Logger
	prompt   string
	greeting string
	commands map[string]command
}

// Option configures an Assistant
type Option func(*Assistant)

// WithPrompt sets the text written before each command is read
func WithPrompt(prompt string) Option {
	return func(a *Assistant) { a.prompt = prompt }
}

// WithGreeting sets the line written when the loop starts
func WithGreeting(greeting string) Option {
	return func(a *Assistant) { a.greeting = greeting }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assistant) { a.logger = logger }
}

// New creates an assistant bound to svc
func New(svc *directory.Service, opts ...Option) *Assistant {
	a := &Assistant{
		svc:      svc,
		logger:   zap.NewNop(),
		prompt:   "Enter a command: ",
		greeting: "Welcome to the assistant bot!",
	}
	for _, opt := range opts {
		opt(a)
	}
	a.commands = a.buildCommands()
	return a
}

// Run processes commands from in until EOF, an exit command or ctx is done.
// Command failures are reported on out and never stop the loop.
func (a *Assistant) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if a.greeting != "" {
		if _, err := fmt.Fprintln(out, a.greeting); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(in, done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if a.prompt != "" {
			if _, err := io.WriteString(out, a.prompt); err != nil {
				return err
			}
		}

		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				return nil
			}
			line = l
		}

		reply, err := a.Execute(ctx, line)
		if reply != "" {
			if _, werr := fmt.Fprintln(out, reply); werr != nil {
				return werr
			}
		}
		if stderrors.Is(err, ErrExit) {
			return nil
		}
	}
}

// MaxLineBytes is the longest input line the loop accepts
const MaxLineBytes = 1 << 20

// readLines scans in on its own goroutine so the loop can stop on context
// cancellation while a read is blocked. The reader goroutine exits once done
// is closed or in is exhausted; a blocked Read is abandoned.
func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// Execute runs a single command line and returns the reply to show. The
// returned error is ErrExit for exit commands and nil otherwise; command
// failures are turned into replies.
func (a *Assistant) Execute(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]
	cmd, ok := a.commands[name]
	if !ok {
		return "Invalid command. Type \"help\" to list commands.", nil
	}
	if cmd.args >= 0 && len(args) != cmd.args {
		return "Usage: " + cmd.usage, nil
	}

	reply, err := cmd.run(ctx, args)
	if err != nil {
		if stderrors.Is(err, ErrExit) {
			return reply, err
		}
		a.logger.Debug("Command failed", zap.String("command", name), zap.Error(err))
		return describe(err), nil
	}
	return reply, nil
}

func (a *Assistant) buildCommands() map[string]command {
	exit := command{usage: "close", help: "leave the assistant", args: 0, run: a.exit}
	exitAlias := exit
	exitAlias.usage = "exit"

	return map[string]command{
		"hello":  {usage: "hello", help: "greet the assistant", args: 0, run: a.hello},
		"add":    {usage: "add <name> <phone>", help: "add a phone, creating the contact if needed", args: 2, run: a.add},
		"change": {usage: "change <name> <old phone> <new phone>", help: "replace a phone", args: 3, run: a.change},
		"phone":  {usage: "phone <name>", help: "show the phones of a contact", args: 1, run: a.phones},
		"find":   {usage: "find <name> <phone>", help: "check whether a contact has a phone", args: 2, run: a.find},
		"remove": {usage: "remove <name> <phone>", help: "remove a phone from a contact", args: 2, run: a.remove},
		"delete": {usage: "delete <name>", help: "delete a contact", args: 1, run: a.delete},
		"all":    {usage: "all", help: "show every contact", args: 0, run: a.all},
		"stats":  {usage: "stats", help: "show operation counters", args: 0, run: a.stats},
		"help":   {usage: "help", help: "list commands", args: 0, run: a.help},
		"close":  exit,
		"exit":   exitAlias,
	}
}

func (a *Assistant) hello(context.Context, []string) (string, error) {
	return "How can I help you?", nil
}

func (a *Assistant) exit(context.Context, []string) (string, error) {
	return "Good bye!", ErrExit
}

func (a *Assistant) add(ctx context.Context, args []string) (string, error) {
	resp, err := a.svc.AddContact(ctx, directory.AddContactRequest{Name: args[0], Phone: args[1]})
	if err != nil {
		return "", err
	}
	if resp.Created {
		return "Contact added.", nil
	}
	return "Contact updated.", nil
}

func (a *Assistant) change(ctx context.Context, args []string) (string, error) {
	_, err := a.svc.ChangePhone(ctx, directory.ChangePhoneRequest{
		Name:     args[0],
		OldPhone: args[1],
		NewPhone: args[2],
	})
	if err != nil {
		return "", err
	}
	return "Contact updated.", nil
}

func (a *Assistant) phones(ctx context.Context, args []string) (string, error) {
	view, err := a.svc.Get(ctx, args[0])
	if err != nil {
		return "", err
	}
	if len(view.Phones) == 0 {
		return view.Name + " has no phones.", nil
	}
	return view.Name + ": " + strings.Join(view.Phones, "; "), nil
}

func (a *Assistant) find(ctx context.Context, args []string) (string, error) {
	phone, found, err := a.svc.FindPhone(ctx, directory.PhoneRequest{Name: args[0], Phone: args[1]})
	if err != nil {
		return "", err
	}
	if !found {
		return fmt.Sprintf("%s has no phone %s.", args[0], args[1]), nil
	}
	return args[0] + ": " + phone.String(), nil
}

func (a *Assistant) remove(ctx context.Context, args []string) (string, error) {
	if err := a.svc.RemovePhone(ctx, directory.PhoneRequest{Name: args[0], Phone: args[1]}); err != nil {
		return "", err
	}
	return "Phone removed.", nil
}

func (a *Assistant) delete(ctx context.Context, args []string) (string, error) {
	if err := a.svc.Delete(ctx, args[0]); err != nil {
		return "", err
	}
	return "Contact deleted.", nil
}

func (a *Assistant) all(ctx context.Context, _ []string) (string, error) {
	views := a.svc.List(ctx)
	if len(views) == 0 {
		return "No contacts saved.", nil
	}
	lines := make([]string, len(views))
	for i, v := range views {
		lines[i] = v.Display
	}
	return strings.Join(lines, "\n"), nil
}

func (a *Assistant) stats(context.Context, []string) (string, error) {
	summary, err := a.svc.Metrics().Summary()
	if err != nil {
		return "", errors.NewInternalError("collecting stats").WithCause(err)
	}
	return summary, nil
}

func (a *Assistant) help(context.Context, []string) (string, error) {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		cmd := a.commands[name]
		lines[i] = fmt.Sprintf("  %-38s %s", cmd.usage, cmd.help)
	}
	return "Commands:\n" + strings.Join(lines, "\n"), nil
}

// describe turns a command error into the line shown to the user
func describe(err error) string {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return "Error: " + err.Error()
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return "Invalid input: " + appErr.Message + "."
	case errors.ErrorTypeNotFound:
		name, _ := appErr.Details["name"].(string)
		phone, _ := appErr.Details["phone"].(string)
		switch {
		case appErr.Code == errors.ErrPhoneNotFound.Code && name != "":
			return fmt.Sprintf("Not found: %s has no phone %s.", name, phone)
		case appErr.Code == errors.ErrRecordNotFound.Code && name != "":
			return fmt.Sprintf("Not found: no contact named %s.", name)
		}
		return "Not found: " + appErr.Message + "."
	default:
		return "Error: " + appErr.Error()
	}
}
