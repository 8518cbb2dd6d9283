//go:build windows

// cmd/hostprep/main.go

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/hostprep/pkg/config"
	"github.com/windowsadmins/hostprep/pkg/download"
	"github.com/windowsadmins/hostprep/pkg/installer"
	"github.com/windowsadmins/hostprep/pkg/isomount"
	"github.com/windowsadmins/hostprep/pkg/logging"
	"github.com/windowsadmins/hostprep/pkg/provision"
	"github.com/windowsadmins/hostprep/pkg/status"
	"github.com/windowsadmins/hostprep/pkg/utils"
	"github.com/windowsadmins/hostprep/pkg/version"
)

func main() {
	utils.PatchWindowsArgs()

	category := pflag.String("category", "default", "Named category of tools to provision.")
	checkOnly := pflag.Bool("check-only", false, "Check installed state, but don't download or install.")
	showConfig := pflag.Bool("show-config", false, "Display the resolved configuration and exit.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")

	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (e.g. -v, -vv)")
	pflag.Parse()

	if *versionFlag {
		version.Print()
		os.Exit(0)
	}

	if verbosity > 0 {
		logging.SetLevel(logging.LevelDebug)
	}

	configPath := config.DefaultPath
	if pflag.NArg() > 0 {
		configPath = pflag.Arg(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *showConfig {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(out))
		os.Exit(0)
	}

	tools, err := cfg.Category(*category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to select category: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := &provision.Runner{
		Probe:     status.NewRegistryProbe(),
		Fetcher:   download.NewClient(),
		Mounter:   isomount.NewDiskImageMounter(),
		Installer: &installer.Runner{},
		CheckOnly: *checkOnly,
	}

	result, err := runner.Run(ctx, tools)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Provisioning run failed to start: %v\n", err)
		os.Exit(1)
	}

	printSummary(result)
}

func printSummary(result *provision.Result) {
	for _, ts := range result.Statuses {
		if ts.Err != nil {
			fmt.Printf("  %-30s %s (%v)\n", ts.Name, ts.State, ts.Err)
			continue
		}
		fmt.Printf("  %-30s %s\n", ts.Name, ts.State)
	}

	if len(result.Failed) > 0 {
		fmt.Printf("Failed tools: %v\n", result.Failed)
	}
	if result.Aborted {
		fmt.Println("Run aborted early; remaining tools were skipped.")
	}
	if result.RestartNeeded {
		fmt.Println("A restart is required to complete provisioning.")
	}
	fmt.Printf("Downloads kept in %s\n", result.ScratchDir)
}
