package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/Tredoux555/whale-class-sub004/internal/buildinfo"
	"github.com/Tredoux555/whale-class-sub004/internal/flagx"
	"github.com/Tredoux555/whale-class-sub004/internal/logging"
	"github.com/Tredoux555/whale-class-sub004/internal/server"
	"github.com/Tredoux555/whale-class-sub004/internal/server/config"
	"github.com/gin-gonic/gin"
)

// issueFlag returns the device id given with -issue, or "".
func issueFlag(args []string) string {
	var deviceID string
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	fs.StringVar(&deviceID, "issue", "", "print a device token for this id and exit")
	_ = fs.Parse(flagx.FilterArgs(args, []string{"-issue"}))
	return deviceID
}

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if deviceID := issueFlag(os.Args[1:]); deviceID != "" {
		tok, err := server.IssueToken(cfg, deviceID)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(tok)
		return
	}

	buildinfo.PrintBuildData(os.Stdout)
	gin.SetMode(gin.ReleaseMode)

	logger := logging.NewDefault(os.Stdout, slog.LevelInfo)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
