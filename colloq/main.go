package main

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"colloq/internal/cli/client"
	"colloq/internal/cli/config"
	"colloq/internal/cli/output"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return usage()
	}
	switch args[0] {
	case "connect":
		return cmdConnect(args[1:])
	case "disconnect":
		return cmdDisconnect()
	case "whoami":
		return cmdWhoAmI()
	case "threads":
		return cmdThreads(args[1:])
	case "read":
		return cmdRead(args[1:])
	case "post":
		return cmdPost(args[1:])
	case "comment":
		return cmdComment(args[1:])
	case "vote":
		return cmdVote(args[1:], false)
	case "unvote":
		return cmdVote(args[1:], true)
	case "tags":
		return cmdTags(args[1:])
	case "subscribe":
		return cmdSubscribe(args[1:], false)
	case "unsubscribe":
		return cmdSubscribe(args[1:], true)
	case "notifications":
		return cmdNotifications(args[1:])
	case "search":
		return cmdSearch(args[1:])
	default:
		return usage()
	}
}

func usage() error {
	fmt.Fprintln(os.Stderr, `usage: colloq <command> [args]

commands:
  connect <url> --api-key KEY   save server credentials
  disconnect                    forget saved credentials
  whoami                        show the authenticated user
  threads <commentable-id>      list threads of a commentable
  read <thread-id>              read a thread with its comment tree
  post <commentable-id>         create a thread (--title, --body, --tags)
  comment <id>                  comment on a thread or reply to a comment (--body, --reply)
  vote <type> <id>              vote for a thread or comment
  unvote <type> <id>            retract a vote
  tags [prefix]                 list tags, or autocomplete a prefix
  subscribe <thread-id>         follow a thread
  unsubscribe <thread-id>       stop following a thread
  notifications                 list your notifications
  search <text>                 full-text search over threads`)
	return errors.New("unknown command")
}

func connectedClient() (*client.Client, *config.Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	server, ok := cfg.Default()
	if !ok {
		return nil, nil, errors.New("not connected: run `colloq connect <url> --api-key KEY` first")
	}
	return client.New(server.URL, server.APIKey), &server, nil
}

func cmdConnect(args []string) error {
	fs := flag.NewFlagSet("connect", flag.ContinueOnError)
	apiKey := fs.String("api-key", "", "API key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: colloq connect <url> --api-key KEY")
	}
	rawURL := fs.Arg(0)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("invalid server url")
	}
	if strings.TrimSpace(*apiKey) == "" {
		return errors.New("--api-key is required")
	}

	c := client.New(rawURL, *apiKey)
	var me struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := c.Get("/api/v1/whoami", &me); err != nil {
		return fmt.Errorf("verify credentials: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.SetDefault(rawURL, *apiKey, me.ID)
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("connected to %s as %s\n", rawURL, me.Name)
	return nil
}

func cmdDisconnect() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.ClearDefault()
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Println("disconnected")
	return nil
}

func cmdWhoAmI() error {
	c, _, err := connectedClient()
	if err != nil {
		return err
	}
	var me map[string]any
	if err := c.Get("/api/v1/whoami", &me); err != nil {
		return err
	}
	return output.Print(me, "json", false)
}

func cmdThreads(args []string) error {
	fs := flag.NewFlagSet("threads", flag.ContinueOnError)
	format := fs.String("format", "", "output format: table, json, quiet")
	quiet := fs.Bool("q", false, "print ids only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: colloq threads <commentable-id>")
	}

	c, _, err := connectedClient()
	if err != nil {
		return err
	}
	var payload map[string]any
	path := "/api/v1/commentables/" + url.PathEscape(fs.Arg(0)) + "/threads"
	if err := c.Get(path, &payload); err != nil {
		return err
	}
	return output.Print(payload, *format, *quiet)
}

func cmdRead(args []string) error {
	fs := flag.NewFlagSet("read", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: colloq read <thread-id>")
	}

	c, _, err := connectedClient()
	if err != nil {
		return err
	}
	var payload map[string]any
	if err := c.Get("/api/v1/threads/"+url.PathEscape(fs.Arg(0))+"?recursive=true", &payload); err != nil {
		return err
	}
	return output.Print(payload, "json", false)
}

func cmdPost(args []string) error {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	title := fs.String("title", "", "thread title")
	body := fs.String("body", "", "thread body")
	tags := fs.String("tags", "", "comma-separated tags")
	course := fs.String("course", "", "course id")
	subscribe := fs.Bool("subscribe", true, "follow the new thread")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: colloq post <commentable-id> --title T --body B [--tags a,b]")
	}

	c, _, err := connectedClient()
	if err != nil {
		return err
	}
	req := map[string]any{
		"title":          *title,
		"body":           *body,
		"course_id":      *course,
		"auto_subscribe": *subscribe,
	}
	if *tags != "" {
		req["tags"] = strings.Split(*tags, ",")
	}
	var thread map[string]any
	path := "/api/v1/commentables/" + url.PathEscape(fs.Arg(0)) + "/threads"
	if err := c.Post(path, req, &thread); err != nil {
		return err
	}
	return output.Print(thread, "json", false)
}

func cmdComment(args []string) error {
	fs := flag.NewFlagSet("comment", flag.ContinueOnError)
	body := fs.String("body", "", "comment body")
	reply := fs.Bool("reply", false, "treat the id as a comment and reply to it")
	subscribe := fs.Bool("subscribe", false, "follow the thread")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: colloq comment <id> --body B [--reply]")
	}

	c, _, err := connectedClient()
	if err != nil {
		return err
	}
	req := map[string]any{
		"body":           *body,
		"auto_subscribe": *subscribe,
	}
	path := "/api/v1/threads/" + url.PathEscape(fs.Arg(0)) + "/comments"
	if *reply {
		path = "/api/v1/comments/" + url.PathEscape(fs.Arg(0))
	}
	var comment map[string]any
	if err := c.Post(path, req, &comment); err != nil {
		return err
	}
	return output.Print(comment, "json", false)
}

func cmdVote(args []string, retract bool) error {
	fs := flag.NewFlagSet("vote", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: colloq vote|unvote <thread|comment> <id>")
	}
	targetType := fs.Arg(0)
	if targetType != "thread" && targetType != "comment" {
		return errors.New("target type must be thread or comment")
	}

	c, _, err := connectedClient()
	if err != nil {
		return err
	}
	path := "/api/v1/" + targetType + "s/" + url.PathEscape(fs.Arg(1)) + "/votes"
	var tally map[string]any
	if retract {
		err = c.Delete(path, nil, &tally)
	} else {
		err = c.Put(path, nil, &tally)
	}
	if err != nil {
		return err
	}
	return output.Print(tally, "json", false)
}

func cmdTags(args []string) error {
	fs := flag.NewFlagSet("tags", flag.ContinueOnError)
	format := fs.String("format", "", "output format: table, json, quiet")
	max := fs.Int("max", 0, "autocomplete result cap")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, _, err := connectedClient()
	if err != nil {
		return err
	}
	path := "/api/v1/threads/tags"
	if fs.NArg() == 1 {
		path = "/api/v1/threads/tags/autocomplete?value=" + url.QueryEscape(fs.Arg(0))
		if *max > 0 {
			path += "&max=" + strconv.Itoa(*max)
		}
	}
	var payload map[string]any
	if err := c.Get(path, &payload); err != nil {
		return err
	}
	return output.Print(payload, *format, false)
}

func cmdSubscribe(args []string, remove bool) error {
	fs := flag.NewFlagSet("subscribe", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: colloq subscribe|unsubscribe <thread-id>")
	}

	c, _, err := connectedClient()
	if err != nil {
		return err
	}
	req := map[string]string{"thread_id": fs.Arg(0)}
	var payload map[string]any
	if remove {
		err = c.Delete("/api/v1/subscriptions", req, &payload)
	} else {
		err = c.Post("/api/v1/subscriptions", req, &payload)
	}
	if err != nil {
		return err
	}
	return output.Print(payload, "json", false)
}

func cmdNotifications(args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ContinueOnError)
	format := fs.String("format", "", "output format: table, json, quiet")
	quiet := fs.Bool("q", false, "print ids only")
	limit := fs.Int("limit", 50, "max notifications to fetch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, _, err := connectedClient()
	if err != nil {
		return err
	}
	var payload map[string]any
	if err := c.Get("/api/v1/notifications?limit="+strconv.Itoa(*limit), &payload); err != nil {
		return err
	}
	return output.Print(payload, *format, *quiet)
}

func cmdSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	format := fs.String("format", "", "output format: table, json, quiet")
	commentable := fs.String("commentable", "", "restrict to a commentable")
	tags := fs.String("tags", "", "comma-separated tag filter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: colloq search <text> [--commentable id] [--tags a,b]")
	}

	c, _, err := connectedClient()
	if err != nil {
		return err
	}
	q := url.Values{}
	q.Set("text", strings.Join(fs.Args(), " "))
	if *commentable != "" {
		q.Set("commentable_id", *commentable)
	}
	if *tags != "" {
		q.Set("tags", *tags)
	}
	var payload map[string]any
	if err := c.Get("/api/v1/search/threads?"+q.Encode(), &payload); err != nil {
		return err
	}
	return output.Print(payload, *format, false)
}
