//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// uniqueName returns prefix with a random suffix so tests do not collide.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

func seedUser(t *testing.T, name string) int64 {
	t.Helper()
	var id int64
	err := testDB.QueryRow(context.Background(),
		`INSERT INTO users (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedProject(t *testing.T, owner string, shared bool, members ...string) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := testDB.QueryRow(ctx,
		`INSERT INTO projects (name, owner, shared) VALUES ($1, $2, $3) RETURNING id`,
		uniqueName("project"), owner, shared).Scan(&id)
	require.NoError(t, err)

	for _, m := range members {
		_, err := testDB.Exec(ctx,
			`INSERT INTO project_members (project_id, username) VALUES ($1, $2)`, id, m)
		require.NoError(t, err)
	}
	return id
}

func seedCategory(t *testing.T, name string) int64 {
	t.Helper()
	var id int64
	err := testDB.QueryRow(context.Background(),
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedChoice(t *testing.T) int64 {
	t.Helper()
	var id int64
	err := testDB.QueryRow(context.Background(),
		`INSERT INTO choices (name, multiple) VALUES ($1, TRUE) RETURNING id`,
		uniqueName("choice")).Scan(&id)
	require.NoError(t, err)
	return id
}

// seedSelection creates a selection under choiceID tagged with keywords.
func seedSelection(t *testing.T, choiceID int64, keywords ...string) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := testDB.QueryRow(ctx,
		`INSERT INTO selections (choice_id, text) VALUES ($1, $2) RETURNING id`,
		choiceID, uniqueName("selection")).Scan(&id)
	require.NoError(t, err)

	for _, k := range keywords {
		_, err := testDB.Exec(ctx,
			`INSERT INTO selection_metadata_keywords (selection_id, keyword) VALUES ($1, $2)`, id, k)
		require.NoError(t, err)
	}
	return id
}

// clientAs returns a validating client authenticated as a freshly seeded user.
func clientAs(t *testing.T, role domain.Role) (*testutil.Client, string, int64) {
	t.Helper()
	name := uniqueName(string(role))
	id := seedUser(t, name)

	client := newTestClient(t)
	client.AuthenticateAs(t, testAuth, name, role)
	return client, name, id
}

func requireStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d, body: %s", resp.StatusCode, want, testutil.ReadBody(t, resp))
	}
}

type subscriptionView struct {
	Keyword    string  `json:"keyword"`
	ProjectID  int64   `json:"project_id"`
	Selections []int64 `json:"selections"`
	Category   struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"category"`
}

func listSubscriptions(t *testing.T, client *testutil.Client) map[string]subscriptionView {
	t.Helper()
	resp, err := client.GET("/api/v1/me/subscriptions")
	require.NoError(t, err)
	requireStatus(t, resp, http.StatusOK)

	var result struct {
		Data []subscriptionView `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	byKeyword := make(map[string]subscriptionView, len(result.Data))
	for _, s := range result.Data {
		byKeyword[s.Keyword] = s
	}
	return byKeyword
}

type activityView struct {
	Originator   string    `json:"originator"`
	Activity     string    `json:"activity"`
	ActivityTime time.Time `json:"activity_time"`
	Action       string    `json:"action"`
}
