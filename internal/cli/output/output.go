package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

func DefaultFormat() string {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return "table"
	}
	return "json"
}

// Print renders payload in the requested format. Collections print one row
// per element; everything without a table shape falls back to JSON.
func Print(payload map[string]any, format string, quiet bool) error {
	if quiet {
		format = "quiet"
	}
	format = strings.TrimSpace(strings.ToLower(format))
	if format == "" {
		format = DefaultFormat()
	}

	switch format {
	case "json":
		return printJSON(payload)
	case "table":
		return printTable(payload)
	case "quiet":
		return printQuiet(payload)
	default:
		return errors.New("invalid --format value")
	}
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printTable(payload map[string]any) error {
	rows := toObjectSlice(payload["collection"])
	if rows == nil {
		return printJSON(payload)
	}
	if len(rows) == 0 {
		return nil
	}

	switch {
	case hasKey(rows[0], "title"):
		fmt.Println("ID\tTITLE\tUP\tCOMMENTS\tCREATED")
		for _, row := range rows {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
				str(row["id"]), str(row["title"]), str(row["up_count"]),
				str(row["comment_count"]), str(row["created_at"]))
		}
	case hasKey(rows[0], "kind"):
		fmt.Println("ID\tKIND\tSOURCE\tPREVIEW\tCREATED")
		for _, row := range rows {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
				str(row["id"]), str(row["kind"]), str(row["source_id"]),
				str(row["preview"]), str(row["created_at"]))
		}
	case hasKey(rows[0], "tag"):
		fmt.Println("TAG\tCOUNT")
		for _, row := range rows {
			fmt.Printf("%s\t%s\n", str(row["tag"]), str(row["count"]))
		}
	default:
		return printJSON(payload)
	}
	return nil
}

func printQuiet(payload map[string]any) error {
	if rows := toObjectSlice(payload["collection"]); rows != nil {
		for _, row := range rows {
			fmt.Println(str(row["id"]))
		}
		return nil
	}
	if id, ok := payload["id"]; ok {
		fmt.Println(str(id))
		return nil
	}
	return printJSON(payload)
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func toObjectSlice(v any) []map[string]any {
	in, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(in))
	for _, item := range in {
		if row, ok := item.(map[string]any); ok {
			out = append(out, row)
		}
	}
	return out
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
