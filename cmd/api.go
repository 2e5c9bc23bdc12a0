package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/UB-Mannheim/maidisco/internal/mcp"
	"github.com/UB-Mannheim/maidisco/internal/web"
	"github.com/UB-Mannheim/maidisco/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "serve the search page, the JSON API and the MCP endpoint",
	Args:  gcmd.NoExtraArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		settings, svc, err := initialize(ctx, cmd)
		if err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}

		if !gconfig.Shared.GetBool("debug") {
			gin.SetMode(gin.ReleaseMode)
		}

		opts := []web.Option{
			web.WithAllowedOrigins(settings.Web.AllowedOrigins...),
			web.WithMetrics(!gconfig.Shared.GetBool("no-metrics")),
		}
		if !gconfig.Shared.GetBool("no-mcp") {
			mcpServer, err := mcp.NewServer(svc, log.Logger)
			if err != nil {
				log.Logger.Panic("new mcp server", zap.Error(err))
			}
			opts = append(opts, web.WithMCPHandler(mcpServer.Handler()))
		}

		server, err := web.NewServer(svc, opts...)
		if err != nil {
			log.Logger.Panic("new web server", zap.Error(err))
		}

		log.Logger.Panic("httpServer exit", zap.Error(server.Run(gconfig.Shared.GetString("listen"))))
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
	apiCMD.Flags().Bool("no-mcp", false, "do not mount the /mcp endpoint")
	apiCMD.Flags().Bool("no-metrics", false, "do not expose metric endpoints")
}
