package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/dimiro1/banner"
	"github.com/petasbytes/search-agent/internal/config"
	"github.com/petasbytes/search-agent/internal/provider"
	"github.com/petasbytes/search-agent/internal/repl"
	"github.com/petasbytes/search-agent/internal/runner"
	"github.com/petasbytes/search-agent/internal/search"
	"github.com/petasbytes/search-agent/internal/telemetry"
	"github.com/petasbytes/search-agent/tools"
)

func main() {
	ancli.SetupSlog()
	configPath := flag.String("config", "", "optional config file (yaml, toml or json)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("config error: %v\n", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		ancli.PrintErr(fmt.Sprintf("config error: %v\n", err))
		os.Exit(1)
	}
	// Basic key check (SDK would also read the env)
	if cfg.Model.APIKey == "" {
		ancli.PrintErr("Missing ANTHROPIC_API_KEY; export it before running.\n")
		os.Exit(1)
	}

	backend, err := search.New(cfg.Search.Provider, cfg.Search.APIKey, cfg.Search.Settings)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("search setup: %v\n", err))
		os.Exit(1)
	}
	registry, err := tools.NewRegistry(tools.NewSearchDefinition(backend, cfg.Search.MaxResults))
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("tool setup: %v\n", err))
		os.Exit(1)
	}

	client := provider.NewAnthropicClient(provider.ClientOptions{APIKey: cfg.Model.APIKey, BaseURL: cfg.Model.BaseURL})
	model := provider.NewAnthropic(client, cfg.Model.Name, cfg.Model.MaxTokens, cfg.Model.SystemPrompt)
	r := runner.New(model, registry,
		runner.WithRecorder(telemetry.NewRecorder(cfg.Telemetry.Enabled, cfg.Telemetry.Path)),
		runner.WithMaxSteps(cfg.Runner.MaxSteps),
	)

	if cfg.Banner {
		printBanner(cfg)
	}
	if cfg.Telemetry.Enabled {
		ancli.PrintOK(fmt.Sprintf("recording run events to '%v'\n", cfg.Telemetry.Path))
	}

	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		cancel()
	}()

	session := &repl.Session{
		Agent: r,
		In:    os.Stdin,
		Out:   os.Stdout,
		Err:   os.Stderr,
		Graph: runner.Mermaid,
	}
	if err := session.Loop(ctx); err != nil {
		ancli.PrintWarn(fmt.Sprintf("stdin read error: %v\n", err))
	}
}

func printBanner(cfg config.Config) {
	tpl := "{{ .Title \"search-agent\" \"\" 0 }}\n" +
		"Model: " + cfg.Model.Name + "\n" +
		"Search: " + cfg.Search.Provider + "\n"
	banner.Init(os.Stdout, true, true, bytes.NewBufferString(tpl))
}
