package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"portfolio-go/internal/types"
)

func TestAchievementEncoding(t *testing.T) {
	encoded := JoinAchievements([]string{"Led a team of 5", "Cut latency by 40%"})
	assert.Equal(t, "Led a team of 5| Cut latency by 40%", encoded)
	assert.Equal(t, []string{"Led a team of 5", "Cut latency by 40%"}, SplitAchievements(encoded))

	// 手工录入的数据可能不带空格或有空项
	assert.Equal(t, []string{"a", "b"}, SplitAchievements("a|| b |"))
	assert.Equal(t, []string{}, SplitAchievements(""))
}

func TestSkillEncoding(t *testing.T) {
	encoded := JoinSkills([]string{"react", "vue", "html"})
	assert.Equal(t, "react, vue, html", encoded)
	assert.Equal(t, []string{"react", "vue", "html"}, SplitSkills("react,vue , html"))
}

func TestExperienceRoundTrip(t *testing.T) {
	exp := types.ExperienceRecord{
		Position:     "Software Engineer",
		Company:      "TechCorp",
		Period:       "2021-2023",
		Achievements: []string{"Led a team of 5"},
	}
	row := NewResumeExperience(9, exp)
	assert.Equal(t, uint64(9), row.ResumeID)
	assert.Equal(t, "Led a team of 5", row.Achievements)
	assert.Equal(t, exp, row.ToRecord())
}

func TestSkillRoundTrip(t *testing.T) {
	skill := types.SkillCategory{Category: "Frontend", Skills: []string{"react", "css"}}
	assert.Equal(t, skill, NewResumeSkill(1, skill).ToCategory())
}
