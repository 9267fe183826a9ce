package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptops/prompt-registry/pkg/registry"
)

var (
	listDomain string
	listEnv    string
	listSource string
	listWatch  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts, optionally filtered by domain, environment or source",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		filter := registry.Filter{Domain: listDomain, Environment: listEnv, Source: listSource}

		if err := renderList(store, filter); err != nil {
			return err
		}
		if listWatch {
			return watchList(store, filter)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listDomain, "domain", "", "Filter by business domain")
	listCmd.Flags().StringVar(&listEnv, "env", "", "Filter by environment")
	listCmd.Flags().StringVar(&listSource, "source", "", "Filter by source system")
	listCmd.Flags().BoolVar(&listWatch, "watch", false, "Re-render when the registry file changes")
}

func renderList(store *registry.Store, filter registry.Filter) error {
	prompts, err := store.List(filter)
	if err != nil {
		return err
	}

	if outputFmt != "table" {
		return printOutput(prompts)
	}

	if len(prompts) == 0 {
		fmt.Println("No prompts found.")
		return nil
	}

	rows := make([][]string, 0, len(prompts))
	for _, p := range prompts {
		rows = append(rows, []string{
			p.ID,
			p.Domain,
			p.Source,
			p.Environment,
			fmt.Sprintf("v%d", p.CurrentVersion),
		})
	}
	printTable([]string{"prompt id", "domain", "source", "environment", "version"}, rows)
	fmt.Printf("\n%d prompt(s)\n", len(prompts))
	return nil
}

// watchList re-renders the filtered listing whenever the registry file is
// rewritten. The store saves via temp file + rename, so a change shows up as
// a Create or Rename event on the watched directory.
func watchList(store *registry.Store, filter registry.Filter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(store.Path())); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(store.Path()), err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	fmt.Println("\nWatching for registry changes (ctrl-c to stop)...")
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(store.Path()) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fmt.Println()
			if err := renderList(store, filter); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-sigCh:
			return nil
		}
	}
}
