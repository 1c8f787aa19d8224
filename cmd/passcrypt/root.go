package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prettyserver/passcrypt"
	"github.com/prettyserver/passcrypt/internal/config"
	"github.com/prettyserver/passcrypt/internal/logging"
)

// Streams are the standard streams of a command run.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultStreams returns the process streams.
func DefaultStreams() Streams {
	return Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

type app struct {
	streams    Streams
	configFile string
	loader     *config.Loader
	cfg        *config.Config
	logger     *logging.Logger
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"base-url":   "client.base_url",
	"backend":    "client.backend",
	"timeout":    "client.timeout",
	"retries":    "client.retries",
	"addr":       "server.addr",
	"key-dir":    "server.key_dir",
	"log-level":  "log.level",
	"log-format": "log.format",
}

func run(ctx context.Context, args []string, streams Streams) error {
	a := &app{streams: streams}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(streams.Stdin)
	root.SetOut(streams.Stdout)
	root.SetErr(streams.Stderr)
	defer a.close()
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "passcrypt",
		Short:         "Encrypted password transport for login APIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "config file (default ./passcrypt.yaml if present)")
	pf.String("base-url", "", "server base URL")
	pf.String("backend", "", "ECDH backend: platform or bundled")
	pf.Duration("timeout", 0, "HTTP timeout")
	pf.Int("retries", 0, "retries for idempotent requests")
	pf.String("log-level", "", "log level")
	pf.String("log-format", "", "log format: console or json")

	root.AddCommand(
		a.pubkeyCmd(),
		a.encryptCmd(),
		a.decryptCmd(),
		a.keygenCmd(),
		a.loginCmd(),
		a.hashPasswordCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	a.loader = config.NewLoader(a.configFile)
	v := a.loader.Viper()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg, err := a.loader.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log, a.streams.Stderr)
	if err != nil {
		return err
	}
	a.logger = logger
	if file := a.loader.ConfigFile(); file != "" {
		logger.Debug().Str("file", file).Msg("loaded config")
	}
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		a.logger.Close()
	}
}

func (a *app) client() (*passcrypt.Client, error) {
	c := a.cfg.Client
	if c.BaseURL == "" {
		return nil, errors.New("no server configured: set --base-url or PASSCRYPT_CLIENT_BASE_URL")
	}

	opts := []passcrypt.Option{
		passcrypt.WithBaseURL(c.BaseURL),
		passcrypt.WithRetries(c.Retries),
		passcrypt.WithLogger(a.logger.Logger),
	}
	if c.Timeout > 0 {
		opts = append(opts, passcrypt.WithTimeout(c.Timeout))
	}
	if c.Backend != "" {
		opts = append(opts, passcrypt.WithBackend(passcrypt.Backend(c.Backend)))
	}
	return passcrypt.New(opts...)
}

// readSecret returns the argument at index i if present, otherwise the
// first line of stdin.
func (a *app) readSecret(args []string, i int, what string) (string, error) {
	if len(args) > i {
		return args[i], nil
	}

	line, err := bufio.NewReader(a.streams.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", what, err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("no %s given", what)
	}
	return line, nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.streams.Stdout, format, args...)
}
