package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"portfolio-go/internal/storage"
	"portfolio-go/internal/storage/models"
)

const educationSchema = `{
	"type": "object",
	"properties": {
		"id":          {"type": ["integer", "null"], "minimum": 0},
		"degree":      {"type": "string", "pattern": "\\S"},
		"institution": {"type": "string", "pattern": "\\S"},
		"location":    {"type": ["string", "null"]},
		"period":      {"type": "string", "pattern": "\\S"},
		"description": {"type": ["string", "null"]},
		"gpa":         {"type": ["string", "null"]}
	},
	"required": ["degree", "institution", "period"]
}`

const experienceSchema = `{
	"type": "object",
	"properties": {
		"id":           {"type": ["integer", "null"], "minimum": 0},
		"position":     {"type": "string", "pattern": "\\S"},
		"company":      {"type": "string", "pattern": "\\S"},
		"location":     {"type": ["string", "null"]},
		"period":       {"type": "string", "pattern": "\\S"},
		"description":  {"type": ["string", "null"]},
		"achievements": {"type": ["string", "null"]}
	},
	"required": ["position", "company", "period"]
}`

var (
	educationValidator  = mustCompileSchema("education.json", educationSchema)
	experienceValidator = mustCompileSchema("experience.json", experienceSchema)
)

func mustCompileSchema(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// validateBody 校验请求体，通过后解码到 out
func validateBody(schema *jsonschema.Schema, body []byte, out interface{}) error {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("请求体不是合法的JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// EducationRequest 新增或更新教育经历，ID为空时新增
type EducationRequest struct {
	ID          *uint64 `json:"id"`
	Degree      string  `json:"degree"`
	Institution string  `json:"institution"`
	Location    string  `json:"location"`
	Period      string  `json:"period"`
	Description string  `json:"description"`
	GPA         string  `json:"gpa"`
}

// ExperienceRequest 新增或更新工作经历，achievements 为按行分隔的文本
type ExperienceRequest struct {
	ID           *uint64 `json:"id"`
	Position     string  `json:"position"`
	Company      string  `json:"company"`
	Location     string  `json:"location"`
	Period       string  `json:"period"`
	Description  string  `json:"description"`
	Achievements string  `json:"achievements"`
}

// currentResumeID 找不到简历时已写入400响应并返回false
func (h *ResumeHandler) currentResumeID(ctx context.Context, c *app.RequestContext, msg string) (uint64, bool) {
	resume, err := h.repo.CurrentResume(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.fail(ctx, c, consts.StatusBadRequest, msg, nil)
			return 0, false
		}
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to load current resume", err)
		return 0, false
	}
	return resume.ID, true
}

// HandleSaveEducation 新增或更新一条教育经历
func (h *ResumeHandler) HandleSaveEducation(ctx context.Context, c *app.RequestContext) {
	resumeID, ok := h.currentResumeID(ctx, c, "No resume found. Please upload a resume first.")
	if !ok {
		return
	}

	var req EducationRequest
	if err := validateBody(educationValidator, c.Request.Body(), &req); err != nil {
		h.fail(ctx, c, consts.StatusBadRequest, "Degree, institution, and period are required", err)
		return
	}

	row := &models.ResumeEducation{
		ResumeID:    resumeID,
		Degree:      req.Degree,
		Institution: req.Institution,
		Location:    req.Location,
		Period:      req.Period,
		Description: req.Description,
		GPA:         req.GPA,
	}
	updating := req.ID != nil && *req.ID > 0
	if updating {
		row.ID = *req.ID
	}
	if err := h.repo.SaveEducation(ctx, row); err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to save education", err)
		return
	}
	h.cache.Clear(ctx)

	if updating {
		c.JSON(consts.StatusOK, utils.H{"message": "Education updated successfully"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"message": "Education added successfully", "id": row.ID})
}

// HandleDeleteEducation 删除一条教育经历
func (h *ResumeHandler) HandleDeleteEducation(ctx context.Context, c *app.RequestContext) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.fail(ctx, c, consts.StatusBadRequest, "Invalid education id", err)
		return
	}
	resumeID, ok := h.currentResumeID(ctx, c, "No resume found")
	if !ok {
		return
	}
	if err := h.repo.DeleteEducation(ctx, resumeID, id); err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to delete education", err)
		return
	}
	h.cache.Clear(ctx)
	c.JSON(consts.StatusOK, utils.H{"message": "Education deleted successfully"})
}

// HandleSaveExperience 新增或更新一条工作经历
func (h *ResumeHandler) HandleSaveExperience(ctx context.Context, c *app.RequestContext) {
	resumeID, ok := h.currentResumeID(ctx, c, "No resume found. Please upload a resume first.")
	if !ok {
		return
	}

	var req ExperienceRequest
	if err := validateBody(experienceValidator, c.Request.Body(), &req); err != nil {
		h.fail(ctx, c, consts.StatusBadRequest, "Position, company, and period are required", err)
		return
	}

	row := &models.ResumeExperience{
		ResumeID:     resumeID,
		Position:     req.Position,
		Company:      req.Company,
		Location:     req.Location,
		Period:       req.Period,
		Description:  req.Description,
		Achievements: models.JoinAchievements(splitLines(req.Achievements)),
	}
	updating := req.ID != nil && *req.ID > 0
	if updating {
		row.ID = *req.ID
	}
	if err := h.repo.SaveExperience(ctx, row); err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to save experience", err)
		return
	}
	h.cache.Clear(ctx)

	if updating {
		c.JSON(consts.StatusOK, utils.H{"message": "Experience updated successfully"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"message": "Experience added successfully", "id": row.ID})
}

// HandleDeleteExperience 删除一条工作经历
func (h *ResumeHandler) HandleDeleteExperience(ctx context.Context, c *app.RequestContext) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.fail(ctx, c, consts.StatusBadRequest, "Invalid experience id", err)
		return
	}
	resumeID, ok := h.currentResumeID(ctx, c, "No resume found")
	if !ok {
		return
	}
	if err := h.repo.DeleteExperience(ctx, resumeID, id); err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to delete experience", err)
		return
	}
	h.cache.Clear(ctx)
	c.JSON(consts.StatusOK, utils.H{"message": "Experience deleted successfully"})
}

// splitLines 按行拆分并去掉空行
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
