package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	mcpauth "github.com/modelcontextprotocol/go-sdk/auth"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"colloq/internal/auth"
	"colloq/internal/db"
	"colloq/internal/engine"
	"colloq/internal/models"
)

type mcpListThreadsArgs struct {
	CommentableID string `json:"commentable_id"`
	Recursive     *bool  `json:"recursive,omitempty"`
}

type mcpReadThreadArgs struct {
	ThreadID string `json:"thread_id"`
}

type mcpPostThreadArgs struct {
	CommentableID string   `json:"commentable_id"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	Tags          []string `json:"tags"`
}

type mcpCommentArgs struct {
	ParentType string `json:"parent_type"`
	ParentID   string `json:"parent_id"`
	Body       string `json:"body"`
}

type mcpVoteArgs struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Retract    *bool  `json:"retract,omitempty"`
}

type mcpSearchArgs struct {
	Text          string   `json:"text"`
	CommentableID string   `json:"commentable_id,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Limit         *int     `json:"limit,omitempty"`
}

func mcpHandler(database *sql.DB, eng *engine.Engine, version string) http.Handler {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "colloq-server",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "colloq_list_threads",
		Description: "List discussion threads attached to a commentable",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpListThreadsArgs) (*mcp.CallToolResult, any, error) {
		commentableID := strings.TrimSpace(args.CommentableID)
		if commentableID == "" {
			return nil, nil, errors.New("commentable_id is required")
		}
		recursive := args.Recursive != nil && *args.Recursive
		threads, err := eng.ListThreadsFor(ctx, commentableID, recursive)
		if err != nil {
			return nil, nil, err
		}
		out, err := toJSONText(map[string]any{"collection": threads})
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "colloq_read_thread",
		Description: "Read a thread with its full comment tree",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpReadThreadArgs) (*mcp.CallToolResult, any, error) {
		id := strings.TrimSpace(args.ThreadID)
		if id == "" {
			return nil, nil, errors.New("thread_id is required")
		}
		thread, err := eng.GetThread(ctx, id, true)
		if err != nil {
			return nil, nil, err
		}
		out, err := toJSONText(thread)
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "colloq_post_thread",
		Description: "Start a new discussion thread",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpPostThreadArgs) (*mcp.CallToolResult, any, error) {
		userID, err := mcpUserID(req)
		if err != nil {
			return nil, nil, err
		}
		thread, err := eng.CreateThread(ctx, engine.NewThread{
			CommentableID: args.CommentableID,
			Title:         args.Title,
			Body:          args.Body,
			AuthorID:      &userID,
			Tags:          args.Tags,
			AutoSubscribe: true,
		})
		if err != nil {
			return nil, nil, err
		}
		out, err := toJSONText(thread)
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "colloq_comment",
		Description: "Comment on a thread or reply to a comment",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpCommentArgs) (*mcp.CallToolResult, any, error) {
		userID, err := mcpUserID(req)
		if err != nil {
			return nil, nil, err
		}
		comment, err := eng.CreateComment(ctx, engine.NewComment{
			ParentType: models.TargetType(strings.TrimSpace(args.ParentType)),
			ParentID:   strings.TrimSpace(args.ParentID),
			Body:       args.Body,
			AuthorID:   &userID,
		})
		if err != nil {
			return nil, nil, err
		}
		out, err := toJSONText(comment)
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "colloq_vote",
		Description: "Vote for a thread or comment, or retract the vote",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpVoteArgs) (*mcp.CallToolResult, any, error) {
		userID, err := mcpUserID(req)
		if err != nil {
			return nil, nil, err
		}
		target := models.Target{
			Type: models.TargetType(strings.TrimSpace(args.TargetType)),
			ID:   strings.TrimSpace(args.TargetID),
		}
		var tally models.Tally
		if args.Retract != nil && *args.Retract {
			tally, err = eng.Unvote(ctx, userID, target)
		} else {
			tally, err = eng.Vote(ctx, userID, target)
		}
		if err != nil {
			return nil, nil, err
		}
		out, err := toJSONText(tally)
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "colloq_search_threads",
		Description: "Full-text search over thread titles, bodies and tags",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpSearchArgs) (*mcp.CallToolResult, any, error) {
		text := strings.TrimSpace(args.Text)
		if text == "" {
			return nil, nil, errors.New("text is required")
		}
		limit := 0
		if args.Limit != nil {
			limit = *args.Limit
		}
		threads, err := eng.SearchThreads(ctx, text, args.CommentableID, args.Tags, limit)
		if err != nil {
			return nil, nil, err
		}
		out, err := toJSONText(map[string]any{"collection": threads})
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	verify := func(ctx context.Context, token string, req *http.Request) (*mcpauth.TokenInfo, error) {
		user, err := db.GetUserByAPIKeyHash(ctx, database, auth.HashAPIKey(token))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, mcpauth.ErrInvalidToken
			}
			return nil, err
		}
		return &mcpauth.TokenInfo{
			Scopes:     []string{"read", "write"},
			Expiration: time.Now().UTC().Add(10 * 365 * 24 * time.Hour),
			UserID:     user.ID,
			Extra: map[string]any{
				"user_id":   user.ID,
				"user_role": user.Role,
			},
		}, nil
	}

	return mcpauth.RequireBearerToken(verify, nil)(handler)
}

func mcpUserID(req *mcp.CallToolRequest) (string, error) {
	if req == nil || req.Extra == nil || req.Extra.TokenInfo == nil {
		return "", errors.New("missing auth token")
	}
	v, _ := req.Extra.TokenInfo.Extra["user_id"].(string)
	id := strings.TrimSpace(v)
	if id == "" {
		return "", errors.New("missing authenticated user")
	}
	return id, nil
}

func textToolResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func toJSONText(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
