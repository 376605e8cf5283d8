package version

import (
	goversion "github.com/caarlos0/go-version"
)

// Build details, overridden with -ldflags "-X user-table-service/pkg/version.Version=..."
var (
	Version   = "dev"
	Commit    = ""
	TreeState = ""
	Date      = ""
	BuiltBy   = ""
)

const (
	appName     = "user-table-service"
	description = "CRUD table of user records with paging, search and random-user sync"
	website     = "https://randomuser.me"
)

// Info is the build information reported by /version and -version.
type Info = goversion.Info

// Get returns the build information of the running binary.
func Get() Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails(appName, description, website),
		func(i *goversion.Info) {
			if Commit != "" {
				i.GitCommit = Commit
			}
			if Version != "" {
				i.GitVersion = Version
			}
			if TreeState != "" {
				i.GitTreeState = TreeState
			}
			if Date != "" {
				i.BuildDate = Date
			}
			if BuiltBy != "" {
				i.BuiltBy = BuiltBy
			}
		},
	)
}
