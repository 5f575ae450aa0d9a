// Package cmd はcalendaraiのコマンドラインを定義する。
package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// version はmainから設定される。
var version = "dev"

// SetVersion はビルド時に埋め込まれたバージョンを設定する。
func SetVersion(v string) {
	version = v
}

// NewRootCmd はルートコマンドを生成する。ログはwに出力する。
func NewRootCmd(w io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "calendarai",
		Short: "Calendar dashboard API with notes, preferences and AI summaries",
		Long: `calendarai serves the dashboard API: Google sign-in, the primary
calendar's events, per-event notes, user preferences and AI summaries.

Subcommands:
  serve        start the API server (default)
  migrate      apply or roll back database migrations
  healthcheck  probe /health of a running server (for container health checks)`,
		Version:      version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(`{{printf "calendarai version %s\n" .Version}}`)

	root.AddCommand(newServeCmd(w))
	root.AddCommand(newMigrateCmd(w))
	root.AddCommand(newHealthcheckCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute はCLIのエントリーポイント。サブコマンド省略時はserveを実行する。
func Execute() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"serve"}
	}

	root := NewRootCmd(os.Stdout)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
