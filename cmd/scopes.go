package cmd

import (
	"os"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"connectkit/internal/oauth"
)

// knownScopes lists the LinkedIn scopes the connector knows about.
var knownScopes = []struct {
	Name        string
	Description string
}{
	{"openid", "Sign in with OpenID Connect"},
	{"profile", "Read the member's name and photo"},
	{"email", "Read the member's primary email address"},
	{"w_member_social", "Create posts on behalf of the member"},
	{"r_organization_social", "Read posts of administered organizations"},
	{"w_organization_social", "Create posts for administered organizations"},
	{"rw_organization_admin", "Manage administered organization pages"},
	{"r_ads", "Read advertising accounts"},
	{"rw_ads", "Manage advertising accounts"},
	{"r_ads_reporting", "Read advertising reporting data"},
}

// scopesCmd represents the scopes command
var scopesCmd = &cobra.Command{
	Use:   "scopes",
	Short: "List known scopes",
	Long: `List the provider scopes this connector knows about, with the
default set marked. Pass a custom set with --scopes on 'flow' or 'url'.

Note that most scopes must be granted to your application in the
provider's developer portal before they can be requested.`,
	Run: runScopes,
}

func init() {
	rootCmd.AddCommand(scopesCmd)
}

func runScopes(cmd *cobra.Command, args []string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Scope", "Default", "Description"})

	for _, scope := range knownScopes {
		def := ""
		if slices.Contains(oauth.DefaultScopes, scope.Name) {
			def = text.FgGreen.Sprint("yes")
		}
		t.AppendRow(table.Row{scope.Name, def, scope.Description})
	}

	t.Render()
}
