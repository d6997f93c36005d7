package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/nextlevelbuilder/pagepilot/internal/config"
	"github.com/nextlevelbuilder/pagepilot/internal/session"
)

const (
	// actionTimeout bounds a single tool action.
	actionTimeout = 60 * time.Second
	// networkWaitTimeout bounds the post-action quiescence wait. Kept
	// separate from actionTimeout so a hung action is never mistaken
	// for a hung network.
	networkWaitTimeout = 5 * time.Second
)

const noPagesGuidance = "No open pages available. Use the browser_navigate tool to navigate to a page first."

// Runner executes tool calls: argument validation, the dialog race,
// network quiescence, snapshot refresh, and response assembly.
type Runner struct {
	session Session
	cfg     *config.Config
	logger  *slog.Logger
	limiter *rate.Limiter
	tracer  trace.Tracer
}

func NewRunner(sess *session.Session, cfg *config.Config, logger *slog.Logger) *Runner {
	return newRunner(liveSession{sess}, cfg, logger)
}

func newRunner(sess Session, cfg *config.Config, logger *slog.Logger) *Runner {
	var limiter *rate.Limiter
	if cfg.ToolRatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ToolRatePerMinute)/60, cfg.ToolRatePerMinute)
	}
	return &Runner{
		session: sess,
		cfg:     cfg,
		logger:  logger,
		limiter: limiter,
		tracer:  otel.Tracer("pagepilot/tools"),
	}
}

// Handle wraps a tool into an MCP handler. Failures become error
// results; nothing a tool does can take the server down.
func (r *Runner) Handle(tool Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := tool.Def.Name
		ctx, span := r.tracer.Start(ctx, "tool."+name,
			trace.WithAttributes(attribute.String("tool.name", name)))
		defer span.End()

		if r.limiter != nil && !r.limiter.Allow() {
			return mcp.NewToolResultError("Tool call rate limit exceeded. Retry in a moment."), nil
		}

		call := &Call{Session: r.session, Config: r.cfg, Args: req.GetArguments()}
		if tool.NeedsTab {
			tab, err := r.session.CurrentTab()
			if err != nil {
				return mcp.NewToolResultError(noPagesGuidance), nil
			}
			call.Tab = tab
		}

		outcome, err := tool.Handler(ctx, call)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.logger.Warn("tool call rejected", "tool", name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		if outcome.ResultOverride != nil {
			return outcome.ResultOverride, nil
		}

		dialogOpened := false
		var actionErr error
		if outcome.Action != nil {
			// Session-level tools leave call.Tab nil but still act on
			// the current tab when one exists, so a dialog opening
			// mid-action must win the race for them too.
			raceTab := call.Tab
			if raceTab == nil {
				if cur, err := r.session.CurrentTab(); err == nil {
					raceTab = cur
				}
			}

			actionCtx, cancel := context.WithTimeout(ctx, actionTimeout)
			if raceTab != nil {
				dialogOpened, actionErr = raceTab.RunWithDialogRace(actionCtx, outcome.Action)
			} else {
				actionErr = outcome.Action(actionCtx)
			}
			cancel()
		}

		// The action may have opened, switched, or closed tabs; state
		// after it comes from whichever tab is current now.
		tab := call.Tab
		if tab == nil {
			if cur, err := r.session.CurrentTab(); err == nil {
				tab = cur
			}
		}

		if actionErr == nil && outcome.WaitForNetwork && tab != nil && !tab.Modal().ScriptsBlocked() {
			tab.WaitNetworkIdle(networkWaitTimeout)
		}

		// Cleanup step: the snapshot refresh runs whether the action
		// succeeded or failed, so the superseded snapshot never
		// outlives the action that invalidated it.
		snapshotText := ""
		if outcome.CaptureSnapshot && tab != nil && !tab.Modal().ScriptsBlocked() {
			if snap, err := tab.CaptureSnapshot(ctx); err != nil {
				snapshotText = "- Could not capture page snapshot: " + err.Error()
			} else {
				snapshotText = snap.Text()
			}
		}

		if actionErr != nil {
			span.RecordError(actionErr)
			span.SetStatus(codes.Error, actionErr.Error())
			r.logger.Warn("tool action failed", "tool", name, "error", actionErr)
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", name, actionErr)), nil
		}

		return mcp.NewToolResultText(r.assemble(tab, outcome, dialogOpened, snapshotText)), nil
	}
}

// assemble builds the response text: action content first, then the
// code transcript, then either the modal summary (which suppresses
// everything else, since an unresolved dialog makes page state
// unreliable) or the tab list and page state with the fresh snapshot.
func (r *Runner) assemble(tab Tab, outcome *Outcome, dialogOpened bool, snapshotText string) string {
	var sections []string

	if !dialogOpened && len(outcome.Text) > 0 {
		sections = append(sections, strings.Join(outcome.Text, "\n"))
	}
	if len(outcome.Code) > 0 {
		sections = append(sections, "```js\n"+strings.Join(outcome.Code, "\n")+"\n```")
	}

	if tab != nil {
		if modal := tab.Modal().Describe(); len(modal) > 0 {
			sections = append(sections, "### Modal state\n"+strings.Join(modal, "\n"))
			return strings.Join(sections, "\n\n")
		}
	}

	if r.session.TabCount() > 1 {
		sections = append(sections, "### Open tabs\n"+strings.Join(r.session.DescribeTabs(), "\n"))
	}

	if tab != nil {
		info := tab.Info()
		state := fmt.Sprintf("### Page state\n- Page URL: %s\n- Page Title: %s", info.URL, info.Title)
		if snapshotText != "" {
			state += "\n" + snapshotText
		}
		sections = append(sections, state)
	}

	if len(sections) == 0 {
		return "Done."
	}
	return strings.Join(sections, "\n\n")
}
