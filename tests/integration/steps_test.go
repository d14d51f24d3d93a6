//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeStep(t *testing.T, resp *http.Response) domain.StepWithExclusions {
	t.Helper()
	var result struct {
		Data domain.StepWithExclusions `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

func TestSteps_ManageChoicesAndExclusions(t *testing.T) {
	admin, _, _ := clientAs(t, domain.RoleAdmin)
	choiceID := seedChoice(t)
	s1 := seedSelection(t, choiceID)
	s2 := seedSelection(t, choiceID)

	resp, err := admin.POST("/api/v1/steps", map[string]any{"name": "  Risk profile  "})
	require.NoError(t, err)
	requireStatus(t, resp, http.StatusCreated)
	created := decodeStep(t, resp)
	assert.Equal(t, "Risk profile", created.Name)

	path := fmt.Sprintf("/api/v1/steps/%d", created.ID)

	resp, err = admin.PUT(path+"/choices", map[string]any{"choice_ids": []int64{choiceID}})
	require.NoError(t, err)
	requireStatus(t, resp, http.StatusOK)
	_ = resp.Body.Close()

	resp, err = admin.PUT(path+"/excluded-selections", map[string]any{"selection_ids": []int64{s2}})
	require.NoError(t, err)
	requireStatus(t, resp, http.StatusOK)
	_ = resp.Body.Close()

	resp, err = admin.GET(path)
	require.NoError(t, err)
	requireStatus(t, resp, http.StatusOK)
	step := decodeStep(t, resp)

	require.Len(t, step.Choices, 1)
	assert.Equal(t, choiceID, step.Choices[0].ID)
	assert.Len(t, step.Choices[0].Selections, 2)
	assert.Equal(t, []int64{s2}, step.ExcludedSelections)
	require.Len(t, step.Excluded, 1)
	assert.Equal(t, s2, step.Excluded[0].ID)
	assert.NotContains(t, step.ExcludedSelections, s1)

	t.Run("replace drops unknown selections", func(t *testing.T) {
		resp, err := admin.PUT(path+"/excluded-selections", map[string]any{"selection_ids": []int64{s1, 999999}})
		require.NoError(t, err)
		requireStatus(t, resp, http.StatusOK)
		_ = resp.Body.Close()

		resp, err = admin.GET(path)
		require.NoError(t, err)
		assert.Equal(t, []int64{s1}, decodeStep(t, resp).ExcludedSelections)
	})

	t.Run("unknown step", func(t *testing.T) {
		resp, err := admin.PUT("/api/v1/steps/999999/excluded-selections", map[string]any{"selection_ids": []int64{s1}})
		require.NoError(t, err)
		requireStatus(t, resp, http.StatusNotFound)
		_ = resp.Body.Close()
	})
}

func TestSteps_RequireAdmin(t *testing.T) {
	operator, _, _ := clientAs(t, domain.RoleOperator)

	resp, err := operator.POST("/api/v1/steps", map[string]any{"name": "denied"})
	require.NoError(t, err)
	requireStatus(t, resp, http.StatusForbidden)
	_ = resp.Body.Close()
}
