package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/joacominatel/theseus/internal/app"
	"github.com/joacominatel/theseus/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (c *cli) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved connection profiles",
	}
	cmd.AddCommand(c.profileListCmd(), c.profileAddCmd(), c.profileRemoveCmd())
	return cmd
}

func (c *cli) profileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return &app.ErrConfig{Cause: err}
			}
			if len(cfg.Profiles) == 0 {
				fmt.Fprintln(c.stdout, "No profiles found. Use 'theseus profile add <url>' to create one.")
				return nil
			}

			def := config.DefaultProfile(cfg)
			for _, p := range cfg.Profiles {
				marker := " "
				if def != nil && def.Name == p.Name {
					marker = "*"
				}
				fmt.Fprintf(c.stdout, "%s %s\t%s\n", marker, p.Name, p.DisplayString())
			}
			return nil
		},
	}
}

func (c *cli) profileAddCmd() *cobra.Command {
	var (
		name        string
		makeDefault bool
		askPassword bool
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Save a connection profile",
		Long:  "add saves the connection URL as a profile. Passwords go to the system keyring, never to the config file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.ParseURL(args[0])
			if err != nil {
				return err
			}
			if name != "" {
				p.Name = name
			}

			cfg, err := config.Load()
			if err != nil {
				return &app.ErrConfig{Cause: err}
			}
			if cfg.HasProfile(p.Name) {
				return fmt.Errorf("profile %q already exists", p.Name)
			}

			if askPassword && p.Password == "" {
				if p.Password, err = c.readPassword(p.Username); err != nil {
					return err
				}
			}
			if err := p.StashPassword(); err != nil {
				return &app.ErrConfig{Cause: err}
			}

			cfg.AddProfile(p)
			if makeDefault {
				cfg.Preferences.DefaultProfile = p.Name
			}
			if err := config.Save(cfg); err != nil {
				return &app.ErrConfig{Cause: err}
			}

			fmt.Fprintf(c.stdout, "saved profile %s (%s)\n", p.Name, p.DisplayString())
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "profile name (default derived from the URL)")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "make this the default profile")
	cmd.Flags().BoolVar(&askPassword, "ask-password", false, "prompt for the password")
	return cmd
}

func (c *cli) profileRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved profile and its stored password",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return &app.ErrConfig{Cause: err}
			}
			if !cfg.RemoveProfile(args[0]) {
				return fmt.Errorf("profile %q not found", args[0])
			}
			if err := config.DeletePassword(args[0]); err != nil {
				return &app.ErrConfig{Cause: err}
			}
			if err := config.Save(cfg); err != nil {
				return &app.ErrConfig{Cause: err}
			}

			fmt.Fprintf(c.stdout, "removed profile %s\n", args[0])
			return nil
		},
	}
}

// readPassword prompts on stderr. Input is hidden when stdin is a terminal.
func (c *cli) readPassword(username string) (string, error) {
	fmt.Fprintf(c.stderr, "Password for %s: ", username)
	defer fmt.Fprintln(c.stderr)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
