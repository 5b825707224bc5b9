package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/scanvault/internal/logger"
	"github.com/MrSnakeDoc/scanvault/internal/recognition"
	"github.com/MrSnakeDoc/scanvault/internal/resolver"
)

const (
	defaultServer  = "http://localhost:8080"
	defaultTimeout = 3 * time.Minute
)

// timeNow is swapped in tests.
var timeNow = time.Now

// commandContext carries the persistent flags shared by every command.
type commandContext struct {
	server         string
	recognitionURL string
	token          string
	lang           string
	timeout        time.Duration
	verbose        bool
	jsonOutput     bool
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

// applyEnvDefaults fills flags the user did not set from the environment.
func (c *commandContext) applyEnvDefaults(cmd *cobra.Command) {
	fill := func(flag string, dst *string, env, def string) {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			return
		}
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
			return
		}
		if *dst == "" {
			*dst = def
		}
	}
	fill("server", &c.server, "SCANVAULT_SERVER", defaultServer)
	fill("recognition-url", &c.recognitionURL, "SCANVAULT_RECOGNITION_URL", recognition.DefaultBaseURL)
	fill("token", &c.token, "SCANVAULT_RECOGNITION_TOKEN", "")
	fill("lang", &c.lang, "SCANVAULT_LANG", "")
}

// logger writes to stderr; colours only when stderr is a terminal.
func (c *commandContext) logger() logger.Logger {
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	return logger.New(level, isTerminal(os.Stderr))
}

// commandCtx bounds a command by the --timeout flag.
func (c *commandContext) commandCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	if c.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.timeout)
}

// newResolver talks to the recognition service directly, without a server.
func (c *commandContext) newResolver() (*resolver.Resolver, error) {
	log := c.logger()
	client, err := recognition.New(c.recognitionURL, recognition.StaticToken(c.token),
		recognition.WithHTTPClient(&http.Client{Timeout: recognition.DefaultTimeout}),
		recognition.WithLogger(log),
		recognition.WithLanguage(c.lang),
	)
	if err != nil {
		return nil, err
	}
	return resolver.New(client, resolver.WithLogger(log)), nil
}

func (c *commandContext) api() *apiClient {
	return newAPIClient(c.server, &http.Client{Timeout: c.timeout})
}

// loadImage turns a CLI argument into an image: http(s) URLs are passed
// through, anything else is read as a local file and base64 encoded.
func loadImage(arg string) (recognition.Image, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return recognition.Image{}, fmt.Errorf("image path or URL is required")
	}
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return recognition.Image{URL: arg}, nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return recognition.Image{}, fmt.Errorf("read image: %w", err)
	}
	return recognition.Image{Base64: base64.StdEncoding.EncodeToString(data)}, nil
}
