package cmd

import (
	"log"

	"FrameLoom/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动FrameLoom服务器",
	Long:  `启动FrameLoom时间线编辑系统的HTTP服务器，提供项目持久化API、媒体上传和预览通道`,
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func runServer() {
	log.Println("Starting FrameLoom server...")
	// server.Start handles its own port and logging for startup.
	server.Start()
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
