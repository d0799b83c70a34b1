package assistant

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/davidleathers/contact-directory/internal/metrics"
	"github.com/davidleathers/contact-directory/internal/service/directory"
)

func newTestAssistant(t *testing.T, opts ...Option) *Assistant {
	t.Helper()
	svc, err := directory.NewService(zaptest.NewLogger(t), metrics.NewRegistry())
	require.NoError(t, err)
	return New(svc, append([]Option{WithPrompt(""), WithLogger(zaptest.NewLogger(t))}, opts...)...)
}

func TestAssistant_Execute(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()

	steps := []struct {
		line string
		want string
	}{
		{line: "hello", want: "How can I help you?"},
		{line: "HELLO", want: "How can I help you?"},
		{line: "add John 1234567890", want: "Contact added."},
		{line: "add John 5555555555", want: "Contact updated."},
		{line: "add Jane 123", want: "Invalid input: phone number must be between 10 and 13 digits long."},
		{line: "add Jane 12345abcde", want: "Invalid input: phone number must contain only digits."},
		{line: "add Jane", want: "Usage: add <name> <phone>"},
		{line: "phone Jane", want: "Not found: no contact named Jane."},
		{line: "add Jane 9876543210", want: "Contact added."},
		{line: "change John 1234567890 1112223333", want: "Contact updated."},
		{line: "phone John", want: "John: 5555555555; 1112223333"},
		{line: "change John 0000000000 1112223333", want: "Not found: John has no phone 0000000000."},
		{line: "find John 5555555555", want: "John: 5555555555"},
		{line: "find John 0000000000", want: "John has no phone 0000000000."},
		{line: "all", want: "Contact name: John, phones: 5555555555; 1112223333\nContact name: Jane, phones: 9876543210"},
		{line: "remove Jane 9876543210", want: "Phone removed."},
		{line: "phone Jane", want: "Jane has no phones."},
		{line: "delete Jane", want: "Contact deleted."},
		{line: "delete Jane", want: "Not found: no contact named Jane."},
		{line: "all", want: "Contact name: John, phones: 5555555555; 1112223333"},
		{line: "   ", want: ""},
		{line: "fly away", want: "Invalid command. Type \"help\" to list commands."},
	}

	for _, step := range steps {
		reply, err := a.Execute(ctx, step.line)
		require.NoError(t, err, step.line)
		assert.Equal(t, step.want, reply, step.line)
	}
}

func TestAssistant_ExecuteExit(t *testing.T) {
	a := newTestAssistant(t)

	for _, line := range []string{"close", "exit", "Exit"} {
		reply, err := a.Execute(context.Background(), line)
		assert.ErrorIs(t, err, ErrExit)
		assert.Equal(t, "Good bye!", reply)
	}
}

func TestAssistant_Run(t *testing.T) {
	a := newTestAssistant(t, WithGreeting("Welcome!"))
	in := strings.NewReader("add John 1234567890\nall\nclose\nadd Jane 9876543210\n")
	var out bytes.Buffer

	require.NoError(t, a.Run(context.Background(), in, &out))
	assert.Equal(t,
		"Welcome!\nContact added.\nContact name: John, phones: 1234567890\nGood bye!\n",
		out.String())
}

func TestAssistant_RunStopsAtEOF(t *testing.T) {
	a := newTestAssistant(t, WithGreeting(""), WithPrompt("> "))
	var out bytes.Buffer

	require.NoError(t, a.Run(context.Background(), strings.NewReader("hello"), &out))
	assert.Equal(t, "> How can I help you?\n> ", out.String())
}

func TestAssistant_RunCancelled(t *testing.T) {
	a := newTestAssistant(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Run(ctx, strings.NewReader("hello\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssistant_RunCancelledWhileReading(t *testing.T) {
	a := newTestAssistant(t, WithGreeting(""))
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- a.Run(ctx, pr, io.Discard) }()

	// the write returns once the reader has taken the line
	_, err := io.WriteString(pw, "hello\n")
	require.NoError(t, err)
	cancel()

	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestAssistant_RunLongLine(t *testing.T) {
	a := newTestAssistant(t, WithGreeting(""))
	in := strings.NewReader("add John " + strings.Repeat("1", 100*1024) + "\nclose\n")
	var out bytes.Buffer

	require.NoError(t, a.Run(context.Background(), in, &out))
	assert.Equal(t,
		"Invalid input: phone number must be between 10 and 13 digits long.\nGood bye!\n",
		out.String())
}

func TestAssistant_Stats(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()

	_, err := a.Execute(ctx, "add John 1234567890")
	require.NoError(t, err)
	_, err = a.Execute(ctx, "delete Jane")
	require.NoError(t, err)

	reply, err := a.Execute(ctx, "stats")
	require.NoError(t, err)
	assert.Contains(t, reply, `phonebook_directory_operations_total{operation="add_contact",result="success"} 1`)
	assert.Contains(t, reply, `phonebook_directory_operations_total{operation="delete",result="not_found"} 1`)
	assert.Contains(t, reply, "phonebook_directory_records 1")
}

func TestAssistant_Help(t *testing.T) {
	a := newTestAssistant(t)

	reply, err := a.Execute(context.Background(), "help")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "Commands:\n"))
	for _, usage := range []string{"add <name> <phone>", "change <name> <old phone> <new phone>", "close", "exit", "stats"} {
		assert.Contains(t, reply, usage)
	}
}
