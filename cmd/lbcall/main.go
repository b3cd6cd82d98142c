package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mir00r/lb-http-client/internal/client"
	"github.com/mir00r/lb-http-client/internal/config"
	"github.com/mir00r/lb-http-client/internal/domain"
	"github.com/mir00r/lb-http-client/internal/resolver"
	"github.com/mir00r/lb-http-client/internal/retry"
	"github.com/mir00r/lb-http-client/internal/transport"
	"github.com/mir00r/lb-http-client/pkg/logger"
)

// headerFlags collects repeated -H "Name: value" flags
type headerFlags map[string][]string

func (h headerFlags) String() string {
	return fmt.Sprintf("%v", map[string][]string(h))
}

func (h headerFlags) Set(value string) error {
	name, val, found := strings.Cut(value, ":")
	if !found {
		return fmt.Errorf("header must be in 'Name: value' form: %s", value)
	}
	name = strings.TrimSpace(name)
	h[name] = append(h[name], strings.TrimSpace(val))
	return nil
}

func main() {
	var (
		configFile = flag.String("config", "", "path to YAML configuration file")
		method     = flag.String("X", "GET", "HTTP method")
		data       = flag.String("d", "", "request body")
		headers    = headerFlags{}
	)
	flag.Var(headers, "H", "request header in 'Name: value' form (repeatable)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: lbcall [flags] http://<service-name>/<path>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
		File:   cfg.Logging.File,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	executor, err := buildClient(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to build client")
	}

	var body []byte
	if *data != "" {
		body = []byte(*data)
	}

	request, err := domain.NewRequest(*method, flag.Arg(0), headers, body, "")
	if err != nil {
		log.WithError(err).Fatal("Invalid request")
	}

	response, err := executor.Execute(context.Background(), request, cfg.Options())
	if err != nil {
		log.WithError(err).Fatal("Request failed")
	}
	defer response.Close()

	fmt.Printf("HTTP %d\n", response.StatusCode())
	if _, err := io.Copy(os.Stdout, response.Body()); err != nil {
		log.WithError(err).Fatal("Failed to read response body")
	}
	fmt.Println()
}

// buildClient assembles the full transport stack from configuration:
// HTTP transport, optional rate limiting, instance resolution and the
// configured retry variant.
func buildClient(cfg *config.Config, log *logger.Logger) (domain.Transport, error) {
	registry := resolver.NewRegistry()
	cfg.PopulateRegistry(registry)

	strategy, err := resolver.NewStrategy(cfg.Client.Strategy)
	if err != nil {
		return nil, err
	}
	res := resolver.New(registry, strategy, log)

	var delegate domain.Transport
	httpTransport, err := transport.NewHTTPTransport(cfg.Transport, log)
	if err != nil {
		return nil, err
	}
	delegate = httpTransport
	if cfg.RateLimit.Enabled {
		delegate = transport.NewRateLimitedTransport(delegate, cfg.RateLimit, log)
	}

	factories := retry.NewFactoryRegistry()
	if cfg.Retry.Enabled {
		factories.Register(retry.NewFactory(cfg.PolicyConfig(), 0))
	}

	return client.Build(delegate, res, factories, cfg.Retry.Enabled, log), nil
}
