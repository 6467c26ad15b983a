package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orienthq/orient/pkg/discovery"
	"github.com/orienthq/orient/pkg/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect the builtin tool catalog",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tool categories and their tools",
	RunE:  runToolsList,
}

var toolsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the tool catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runToolsSearch,
}

func init() {
	toolsCmd.AddCommand(toolsListCmd)
	toolsCmd.AddCommand(toolsSearchCmd)
	rootCmd.AddCommand(toolsCmd)
}

func catalogService() (*discovery.Service, error) {
	registry := tools.NewRegistry()
	for _, desc := range tools.Builtins() {
		if err := registry.Register(desc, nil); err != nil {
			return nil, err
		}
	}
	return discovery.NewService(registry), nil
}

func runToolsList(cmd *cobra.Command, args []string) error {
	svc, err := catalogService()
	if err != nil {
		return err
	}

	for _, info := range svc.ListCategories() {
		fmt.Printf("%s (%d) - %s\n", info.Name, info.ToolCount, info.Description)
		descs, err := svc.Browse(string(info.Name))
		if err != nil {
			return err
		}
		for _, desc := range descs {
			fmt.Printf("  %-28s %s\n", desc.Name, desc.Description)
		}
	}
	return nil
}

func runToolsSearch(cmd *cobra.Command, args []string) error {
	svc, err := catalogService()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	resp := svc.Search(query, 0)
	if len(resp.Results) == 0 {
		fmt.Printf("No tools matched %q\n", query)
		return nil
	}

	fmt.Printf("%d of %d results for %q\n", len(resp.Results), resp.Total, query)
	for _, result := range resp.Results {
		fmt.Printf("  %4d  %-28s %s\n", result.Score, result.Tool.Name, strings.Join(result.MatchedOn, ","))
	}
	return nil
}
