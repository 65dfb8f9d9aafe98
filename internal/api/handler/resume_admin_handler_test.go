package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSaveEducation_NoResume(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := ut.PerformRequest(env.engine.Engine, "POST", "/api/admin/resume/education",
		jsonBody(t, map[string]string{"degree": "BSc", "institution": "MIT", "period": "2020"}))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "No resume found. Please upload a resume first.", decode(t, resp)["error"])
}

func TestHandleSaveEducation_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.upload(t).Code)

	cases := map[string]interface{}{
		"缺少period":  map[string]string{"degree": "BSc", "institution": "MIT"},
		"空白degree":  map[string]string{"degree": "   ", "institution": "MIT", "period": "2020"},
		"id不是整数":    map[string]interface{}{"id": "abc", "degree": "BSc", "institution": "MIT", "period": "2020"},
		"不是JSON对象": []string{"degree"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := ut.PerformRequest(env.engine.Engine, "POST", "/api/admin/resume/education", jsonBody(t, body))
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, "Degree, institution, and period are required", decode(t, resp)["error"])
		})
	}
	assert.Len(t, env.repo.education, 1)
}

func TestHandleSaveEducation_CreateUpdateDelete(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.upload(t).Code)

	resp := ut.PerformRequest(env.engine.Engine, "POST", "/api/admin/resume/education",
		jsonBody(t, map[string]interface{}{
			"id":          nil,
			"degree":      "Master of Science",
			"institution": "XYZ Institute",
			"period":      "2024-2026",
			"gpa":         "3.9",
		}))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	out := decode(t, resp)
	assert.Equal(t, "Education added successfully", out["message"])
	id := uint64(out["id"].(float64))
	require.NotZero(t, id)
	require.Len(t, env.repo.education, 2)
	assert.Equal(t, "3.9", env.repo.education[1].GPA)
	assert.Equal(t, env.repo.resume.ID, env.repo.education[1].ResumeID)

	resp = ut.PerformRequest(env.engine.Engine, "POST", "/api/admin/resume/education",
		jsonBody(t, map[string]interface{}{
			"id":          id,
			"degree":      "Master of Science",
			"institution": "XYZ Institute",
			"period":      "2024-2025",
		}))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Education updated successfully", decode(t, resp)["message"])
	assert.Equal(t, "2024-2025", env.repo.education[1].Period)

	resp = ut.PerformRequest(env.engine.Engine, "DELETE", "/api/admin/resume/education/"+strconv.FormatUint(id, 10), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Education deleted successfully", decode(t, resp)["message"])
	assert.Len(t, env.repo.education, 1)
}

func TestHandleDeleteEducation_Errors(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := ut.PerformRequest(env.engine.Engine, "DELETE", "/api/admin/resume/education/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ut.PerformRequest(env.engine.Engine, "DELETE", "/api/admin/resume/education/1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "No resume found", decode(t, resp)["error"])
}

func TestHandleSaveExperience_SplitsAchievements(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.upload(t).Code)

	resp := ut.PerformRequest(env.engine.Engine, "POST", "/api/admin/resume/experience",
		jsonBody(t, map[string]string{
			"position":     "Staff Engineer",
			"company":      "Acme",
			"period":       "2023-Present",
			"achievements": "Built the pipeline\n\n  Cut costs by 30%  \n",
		}))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Experience added successfully", decode(t, resp)["message"])

	require.Len(t, env.repo.experience, 2)
	assert.Equal(t, "Built the pipeline| Cut costs by 30%", env.repo.experience[1].Achievements)

	resp = ut.PerformRequest(env.engine.Engine, "GET", "/api/resume/content", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "MISS", string(resp.Header().Peek("X-Cache")))
}

func TestHandleSaveExperience_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.upload(t).Code)

	resp := ut.PerformRequest(env.engine.Engine, "POST", "/api/admin/resume/experience",
		jsonBody(t, map[string]string{"position": "Engineer", "period": "2020"}))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Position, company, and period are required", decode(t, resp)["error"])
}

func TestHandleDeleteExperience(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.upload(t).Code)
	id := env.repo.experience[0].ID

	resp := ut.PerformRequest(env.engine.Engine, "DELETE", "/api/admin/resume/experience/"+strconv.FormatUint(id, 10), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Experience deleted successfully", decode(t, resp)["message"])
	assert.Empty(t, env.repo.experience)
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitLines(" a \n\n b\n"))
	assert.Nil(t, splitLines(""))
}
