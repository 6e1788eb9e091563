package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/theseus/internal/config"
	"github.com/joacominatel/theseus/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) exploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Browse schemas and run queries in a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				c.logger.Warn("failed to load config", zap.Error(err))
				cfg = &config.Config{}
			}

			// Only an explicit --url or --profile connects right away.
			url := ""
			if c.settings.GetString("url") != "" || c.settings.GetString("profile") != "" {
				if _, url, err = c.target(); err != nil {
					return err
				}
			}

			// The explorer owns the screen; keep log output off it.
			c.logger = zap.NewNop()
			svc := c.service()
			defer func() { _ = svc.Disconnect() }()

			p := tea.NewProgram(tui.NewModel(svc, cfg, url),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run explorer: %w", err)
			}
			return nil
		},
	}
}
