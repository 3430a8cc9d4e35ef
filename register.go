package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexandro/fastfind/register"
)

func newRegisterCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "register <project|user> [directory] [-- serve flags...]",
		Short: "Add fastfind serve to an MCP client configuration",
		Long: `Add this binary's serve command to an MCP client configuration.

The project scope writes <directory>/.mcp.json (default: the working directory).
The user scope writes ~/.claude.json. Arguments after -- are passed to serve.

Examples:
  fastfind register project .
  fastfind register user -- --index ~/.cache/fastfind/src.txt --watch ~/src`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, serveArgs := args, []string(nil)
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				positional, serveArgs = args[:dash], args[dash:]
			}
			if len(positional) == 0 || len(positional) > 2 {
				return fmt.Errorf("expected a scope (project or user) and an optional directory, got %d arguments", len(positional))
			}

			scope, err := register.ParseScope(positional[0])
			if err != nil {
				return err
			}
			opts := register.Options{Scope: scope, ServerName: name, ServeArgs: serveArgs}
			if len(positional) > 1 {
				if scope != register.ScopeProject {
					return fmt.Errorf("a directory is only accepted for the project scope")
				}
				opts.Directory = positional[1]
			}

			configPath, err := register.Register(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %q in %s\n", name, configPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "fastfind", "Server name under mcpServers")
	return cmd
}
