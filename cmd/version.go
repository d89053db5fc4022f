package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// Build variables, set at build time with -ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
	OS        = runtime.GOOS
	Arch      = runtime.GOARCH
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Display detailed version information about the Story Teller API.

This includes the version number, git commit hash, build time,
and runtime information.`,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("short", "s", false, "print just the version number")
	versionCmd.Flags().Bool("json", false, "print version information as JSON")
}

type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		Platform:  OS + "/" + Arch,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	info := currentVersion()

	if short, _ := cmd.Flags().GetBool("short"); short {
		fmt.Fprintf(out, "v%s\n", info.Version)
		return nil
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return json.NewEncoder(out).Encode(info)
	}

	rule := strings.Repeat("-", 40)
	fmt.Fprintln(out, "Story Teller API")
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "Version:      v%s\n", info.Version)
	fmt.Fprintf(out, "Git Commit:   %s\n", info.GitCommit)
	fmt.Fprintf(out, "Build Time:   %s\n", info.BuildTime)
	fmt.Fprintf(out, "Go Version:   %s\n", info.GoVersion)
	fmt.Fprintf(out, "OS/Arch:      %s\n", info.Platform)
	fmt.Fprintln(out, rule)
	return nil
}
