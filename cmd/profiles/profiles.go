// Package profiles handles the bank profile listing command
package profiles

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ledgerline/bankimport/cmd/root"
)

// Cmd represents the profiles command
var Cmd = &cobra.Command{
	Use:   "profiles [name]",
	Short: "List the configured bank profiles",
	Long: `List the names of all configured bank profiles, or show the full column
mapping of one profile when a name is given.`,
	Args: cobra.MaximumNArgs(1),
	Run:  profilesFunc,
}

func profilesFunc(cmd *cobra.Command, args []string) {
	registry := root.AppContainer.GetRegistry()

	if len(args) == 0 {
		for _, name := range registry.Names() {
			fmt.Println(name)
		}
		return
	}

	name := args[0]
	mapping, ok := registry.Lookup(name)
	if !ok {
		root.Log.Fatalf("Unknown bank profile: %q", name)
	}

	out, err := yaml.Marshal(map[string]interface{}{name: mapping})
	if err != nil {
		root.Log.Fatalf("Error rendering profile: %v", err)
	}
	fmt.Print(string(out))
}
