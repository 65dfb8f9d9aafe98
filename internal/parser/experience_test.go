package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractExperience_AtSplitWithBullet(t *testing.T) {
	text := strings.Join([]string{
		"Experience",
		"Software Engineer at TechCorp",
		"2021-2023",
		"• Led a team of 5",
	}, "\n")

	records := ExtractExperience(text)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "Software Engineer", rec.Position)
	assert.Equal(t, "TechCorp", rec.Company)
	assert.Equal(t, "2021-2023", rec.Period)
	assert.Equal(t, []string{"Led a team of 5"}, rec.Achievements)
	assert.Equal(t, "", rec.Description, "有成就列表时不应填充描述")
}

func TestExtractExperience_CaseInsensitiveAt(t *testing.T) {
	records := ExtractExperience("Work History\nIntern AT Globex\n2022-2022")
	require.Len(t, records, 1)
	assert.Equal(t, "Intern", records[0].Position)
	assert.Equal(t, "Globex", records[0].Company)
}

func TestExtractExperience_CompanyFromWindowAndDescription(t *testing.T) {
	text := strings.Join([]string{
		"Work Experience",
		"Frontend Developer",
		"Acme Corp",
		"Jan 2020 - Present",
		"Built dashboards for clients",
	}, "\n")

	records := ExtractExperience(text)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "Frontend Developer", rec.Position)
	assert.Equal(t, "Acme Corp", rec.Company, "公司名取第一行不像日期的短行")
	assert.Equal(t, "Jan 2020 - Present", rec.Period)
	assert.Empty(t, rec.Achievements)
	assert.NotNil(t, rec.Achievements, "成就列表应为空切片而非nil")
	assert.Equal(t, "Acme Corp Jan 2020 - Present Built dashboards for clients", rec.Description)
}

func TestExtractExperience_DescriptionSkipsDatesAndSections(t *testing.T) {
	text := strings.Join([]string{
		"Career",
		"Backend Engineer",
		"2019-2021",
		"Maintained payment services",
		"Worked with the university lab",
		"Ignored because it is past the window",
	}, "\n")

	records := ExtractExperience(text)
	require.Len(t, records, 1)
	assert.Equal(t, "2019-2021", records[0].Period)
	assert.Equal(t, "Maintained payment services", records[0].Description)
}

func TestExtractExperience_DatePriority(t *testing.T) {
	t.Run("同一行优先匹配年份区间", func(t *testing.T) {
		text := "Experience\nSoftware Engineer\nAcme\n2019-2021 (Jan 2019 - Dec 2021)"
		records := ExtractExperience(text)
		require.Len(t, records, 1)
		assert.Equal(t, "2019-2021", records[0].Period)
	})

	t.Run("不同行时最早出现的行胜出", func(t *testing.T) {
		text := "Experience\nSoftware Engineer\nAcme\nJan 2018 - Dec 2019\n2020-2022"
		records := ExtractExperience(text)
		require.Len(t, records, 1)
		assert.Equal(t, "Jan 2018 - Dec 2019", records[0].Period)
	})

	t.Run("至今", func(t *testing.T) {
		text := "Experience\nSoftware Engineer\nAcme\n2021–current"
		records := ExtractExperience(text)
		require.Len(t, records, 1)
		assert.Equal(t, "2021–current", records[0].Period)
	})
}

func TestExtractExperience_NumberedAchievements(t *testing.T) {
	text := "Experience\nData Analyst at Foo\n1. Cut costs by 10%\n- Shipped v2\n* Mentored juniors"

	records := ExtractExperience(text)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Cut costs by 10%", "Shipped v2", "Mentored juniors"}, records[0].Achievements)
	assert.Empty(t, records[0].Description)
}

func TestExtractExperience_Cap(t *testing.T) {
	text := strings.Join([]string{
		"Experience",
		"Developer A",
		"Developer B",
		"Developer C",
		"Developer D",
		"Developer E",
	}, "\n")

	records := ExtractExperience(text)
	require.Len(t, records, MaxExperienceRecords, "工作经历最多4条")
	for i, want := range []string{"Developer A", "Developer B", "Developer C", "Developer D"} {
		assert.Equal(t, want, records[i].Position)
	}
}

func TestExtractExperience_SectionExit(t *testing.T) {
	text := "Experience\nWeb Developer at X\nEducation\nSoftware Engineering Degree"

	records := ExtractExperience(text)
	require.Len(t, records, 1)
	assert.Equal(t, "Web Developer", records[0].Position)
}

func TestExtractExperience_NoSection(t *testing.T) {
	assert.Empty(t, ExtractExperience("Software Engineer at TechCorp\n2021-2023"))
	assert.Empty(t, ExtractExperience("Lorem ipsum dolor\nsit amet"))
}

func TestSplitPosition(t *testing.T) {
	tests := []struct {
		line           string
		position, comp string
	}{
		{"Software Engineer at TechCorp", "Software Engineer", "TechCorp"},
		{"Manager At  Big Co ", "Manager", "Big Co"},
		{"Dev @ startup", "Dev @ startup", ""},
		{"Great team player", "Great team player", ""},
	}
	for _, tt := range tests {
		position, company := splitPosition(tt.line)
		assert.Equal(t, tt.position, position, tt.line)
		assert.Equal(t, tt.comp, company, tt.line)
	}
}
