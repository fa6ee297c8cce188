package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/lms-admin-api/pkg/client"
)

func main() {
	var (
		baseURL  string
		token    string
		entity   string
		action   string
		status   string
		search   string
		ids      string
		notes    string
		listOnly bool
		timeout  time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&token, "token", os.Getenv("LMS_ADMIN_TOKEN"), "Bearer token (defaults to LMS_ADMIN_TOKEN)")
	flag.StringVar(&entity, "entity", "applications", "Entity to act on: applications, courses, users")
	flag.StringVar(&action, "action", "", "Bulk action (e.g. APPROVE, REJECT, PUBLISH, SUSPEND)")
	flag.StringVar(&status, "status", "", "Filter by status before acting (empty or ALL keeps everything)")
	flag.StringVar(&search, "search", "", "Case-insensitive text filter")
	flag.StringVar(&ids, "ids", "", "Comma-separated ids; overrides the filter selection")
	flag.StringVar(&notes, "notes", "", "Review notes (required when rejecting)")
	flag.BoolVar(&listOnly, "list", false, "List the matching records and exit without acting")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	if token == "" {
		log.Fatal("no token: pass -token or set LMS_ADMIN_TOKEN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	api := client.New(client.Config{
		BaseURL: baseURL,
		Timeout: timeout,
		Token:   client.StaticToken(token),
	})

	selected, err := resolveSelection(ctx, api, entity, status, search, ids)
	if err != nil {
		log.Fatalf("selection failed: %v", err)
	}
	if listOnly || action == "" {
		for _, id := range selected {
			fmt.Println(id)
		}
		fmt.Fprintf(os.Stderr, "%d matching %s\n", len(selected), entity)
		return
	}

	result, err := dispatch(ctx, api, entity, selected, action, notes)
	if err != nil {
		log.Fatalf("bulk %s failed: %v", strings.ToLower(action), err)
	}

	fmt.Printf("Bulk %s on %s\n", strings.ToUpper(action), entity)
	fmt.Printf("  Succeeded: %d\n", len(result.Succeeded))
	fmt.Printf("  Failed:    %d\n", len(result.Failed))
	for _, id := range result.Failed {
		fmt.Printf("    skipped %s\n", id)
	}
	if len(result.Failed) > 0 {
		os.Exit(1)
	}
}

// resolveSelection returns the ids to act on: the explicit -ids list when
// given, otherwise whatever the filter matches server-side plus the local
// search refinement.
func resolveSelection(ctx context.Context, api *client.Client, entity, status, search, explicit string) ([]string, error) {
	if explicit != "" {
		var out []string
		for _, id := range strings.Split(explicit, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
		return out, nil
	}

	opts := client.ListOptions{Status: status, Limit: 500}
	criteria := client.Criteria{Status: status, Search: search}
	sel := client.NewSelection()

	switch entity {
	case "applications":
		records, _, err := api.ListApplications(ctx, opts)
		if err != nil {
			return nil, err
		}
		for _, r := range client.Apply(records, criteria) {
			sel.Toggle(r.ID)
		}
	case "courses":
		records, _, err := api.ListCourses(ctx, opts)
		if err != nil {
			return nil, err
		}
		for _, r := range client.Apply(records, criteria) {
			sel.Toggle(r.ID)
		}
	case "users":
		records, _, err := api.ListUsers(ctx, opts)
		if err != nil {
			return nil, err
		}
		for _, r := range client.Apply(records, criteria) {
			sel.Toggle(r.ID)
		}
	default:
		return nil, fmt.Errorf("unknown entity %q", entity)
	}
	return sel.IDs(), nil
}

func dispatch(ctx context.Context, api *client.Client, entity string, ids []string, action, notes string) (*client.BulkResult, error) {
	switch entity {
	case "applications":
		return api.BulkReviewApplications(ctx, ids, action, notes)
	case "courses":
		return api.BulkReviewCourses(ctx, ids, action, notes)
	case "users":
		return api.BulkUpdateUsers(ctx, ids, action)
	default:
		return nil, fmt.Errorf("unknown entity %q", entity)
	}
}
