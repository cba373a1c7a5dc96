package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

func newTokenCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Store the Discord bot token in the config file",
		Long:  "Prompts for the bot token without echoing it and writes it into the config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "trestle.yaml", "path to Trestle config file")
	return cmd
}

func runToken(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	fmt.Fprint(out, "Discord bot token: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return fmt.Errorf("token is empty")
	}

	// Preserve whatever else the config file holds; only discord.token
	// changes.
	doc := map[string]any{}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", configPath, err)
		}
	}
	discord, _ := doc["discord"].(map[string]any)
	if discord == nil {
		discord = map[string]any{}
	}
	discord["token"] = token
	doc["discord"] = discord

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", configPath, err)
	}

	fmt.Fprintf(out, "Token written to %s\n", configPath)
	return nil
}
