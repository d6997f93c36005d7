package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
)

func handleDialogTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_handle_dialog",
			mcp.WithDescription("Accept or dismiss the currently open dialog"),
			mcp.WithBoolean("accept", mcp.Required(), mcp.Description("True to accept, false to dismiss")),
			mcp.WithString("promptText", mcp.Description("Text to enter when the dialog is a prompt")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			accept, ok := call.Args["accept"].(bool)
			if !ok {
				return nil, fmt.Errorf("missing required argument %q", "accept")
			}
			promptText := strArg(call.Args, "promptText")

			dialog, open := call.Tab.Modal().Dialog()
			if !open {
				return nil, fmt.Errorf("no dialog is currently open")
			}

			verb := "dismiss"
			if accept {
				verb = "accept"
			}
			return &Outcome{
				Text: []string{fmt.Sprintf("Handled %s dialog %q: %s", dialog.Kind, dialog.Message, verb)},
				Code: []string{fmt.Sprintf("await dialog.%s();", verb)},
				Action: func(ctx context.Context) error {
					if err := call.Tab.Page().HandleDialog(accept, promptText); err != nil {
						return err
					}
					call.Tab.Modal().ClearDialog()
					return nil
				},
				CaptureSnapshot: true,
			}, nil
		},
	}
}

func fileUploadTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_file_upload",
			mcp.WithDescription("Provide files for the open file chooser, or set them on a file input element"),
			mcp.WithArray("paths", mcp.Required(), mcp.Description("Absolute paths of files to upload"), mcp.WithStringItems()),
			mcp.WithString("ref", mcp.Description("File input element reference, when no chooser is open")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			paths := strSliceArg(call.Args, "paths")
			if len(paths) == 0 {
				return nil, fmt.Errorf("missing required argument %q", "paths")
			}
			for _, p := range paths {
				if _, err := os.Stat(p); err != nil {
					return nil, fmt.Errorf("file %s is not readable: %w", p, err)
				}
			}
			ref := strArg(call.Args, "ref")

			return &Outcome{
				Text: []string{fmt.Sprintf("Uploaded %d file(s)", len(paths))},
				Code: []string{fmt.Sprintf("await fileChooser.setFiles(%q);", paths)},
				Action: func(ctx context.Context) error {
					if _, open := call.Tab.Modal().FileChooser(); open {
						if err := call.Tab.Page().SetChooserFiles(paths); err != nil {
							return err
						}
						call.Tab.Modal().ClearFileChooser()
						return nil
					}
					if ref == "" {
						return fmt.Errorf("no file chooser is open; pass a file input ref")
					}
					el, err := call.Tab.Store().Resolve(ctx, ref)
					if err != nil {
						return err
					}
					return call.Tab.Page().Upload(ctx, el, paths)
				},
				WaitForNetwork:  true,
				CaptureSnapshot: true,
			}, nil
		},
	}
}
