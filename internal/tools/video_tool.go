package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nextlevelbuilder/pagepilot/internal/config"
)

func videoSaveTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_video_save",
			mcp.WithDescription("Stop the tab's video recording and save it under the configured video directory"),
			mcp.WithString("name", mcp.Description("File name without extension; defaults to the tab title")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			rec := call.Tab.Page().Video()
			if rec == nil {
				return nil, fmt.Errorf("no video is being recorded for this tab; start the server with recording enabled")
			}

			name := strArg(call.Args, "name")
			if name == "" {
				name = call.Tab.Page().Info().Title
			}
			name = config.NormalizeArtifactName(name)

			path, err := rec.SaveAs(call.Config.Output.VideoDir, name)
			if err != nil {
				return nil, err
			}
			return &Outcome{
				Text: []string{fmt.Sprintf("Video with %d frames saved to %s", rec.Frames(), path)},
			}, nil
		},
	}
}
