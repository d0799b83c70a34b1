package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoCmd(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&DemoCmd{}).run(&out))

	want := "Contact name: John, phones: 1234567890; 5555555555\n" +
		"Contact name: Jane, phones: 9876543210\n" +
		"Contact name: John, phones: 5555555555; 1112223333\n" +
		"John: 5555555555\n" +
		"Contacts after deleting Jane: 1\n" +
		"Contact name: John, phones: 5555555555; 1112223333\n"
	assert.Equal(t, want, out.String())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitRuntime, exitCode(errors.New("boom")))
	assert.Equal(t, exitSetup, exitCode(&setupError{err: errors.New("bad config")}))
	assert.Equal(t, exitSetup, exitCode(fmt.Errorf("shell: %w", &setupError{err: errors.New("bad config")})))
}

func TestCLI_Parse(t *testing.T) {
	tests := []struct {
		args    []string
		command string
		config  string
	}{
		{args: []string{"demo"}, command: "demo"},
		{args: []string{"shell", "--config", "/tmp/pb.yaml"}, command: "shell", config: "/tmp/pb.yaml"},
		{args: []string{}, command: "shell"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			var cli CLI
			parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
			require.NoError(t, err)

			ctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.command, ctx.Command())
			if tt.config != "" {
				assert.Equal(t, tt.config, cli.Shell.Config)
			}
		})
	}
}

func TestServiceVersion(t *testing.T) {
	assert.Equal(t, "1.4.0", serviceVersion("1.4.0", "dev"))
	assert.Equal(t, "1.4.0", serviceVersion("1.4.0", "2.0.0-rc1"))
	assert.Equal(t, "2.0.0-rc1", serviceVersion("dev", "2.0.0-rc1"))
	assert.Equal(t, "dev", serviceVersion("dev", ""))
}

func TestSetupError(t *testing.T) {
	cause := errors.New("invalid config")
	err := &setupError{err: cause}
	assert.Equal(t, "invalid config", err.Error())
	assert.ErrorIs(t, err, cause)
}
