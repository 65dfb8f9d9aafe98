package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-go/internal/types"
)

func TestExtractEducation_SectionAnchor(t *testing.T) {
	text := strings.Join([]string{
		"Education",
		"Bachelor of Technology in Computer Science",
		"ABC University",
		"2020-2024",
	}, "\n")

	records := ExtractEducation(text)
	require.Len(t, records, 1, "应只识别出一条教育经历")
	assert.Equal(t, types.EducationRecord{
		Degree:      "Bachelor of Technology in Computer Science",
		Institution: "ABC University",
		Period:      "2020-2024",
	}, records[0])
}

func TestExtractEducation_GPAAndDash(t *testing.T) {
	text := strings.Join([]string{
		"EDUCATION",
		"",
		"  B.Tech in Computer Science  ",
		"XYZ Institute of Technology",
		"2018–2022",
		"CGPA: 8.5/10",
	}, "\n")

	records := ExtractEducation(text)
	require.Len(t, records, 1)
	assert.Equal(t, "B.Tech in Computer Science", records[0].Degree, "学位行应去除首尾空白")
	assert.Equal(t, "XYZ Institute of Technology", records[0].Institution)
	assert.Equal(t, "2018–2022", records[0].Period, "应支持长破折号")
	assert.Equal(t, "8.5", records[0].GPA)
}

func TestExtractEducation_PresentPeriod(t *testing.T) {
	text := "Academic Background\nMaster of Science\nSome College\n2023 - now\n2023-Present"

	records := ExtractEducation(text)
	require.Len(t, records, 1)
	assert.Equal(t, "Some College", records[0].Institution)
	assert.Equal(t, "2023-Present", records[0].Period, "\"2023 - now\" 不满足连字符紧邻年份的格式")
}

func TestExtractEducation_LookaheadWindow(t *testing.T) {
	// 学校出现在锚点后第5行，超出窗口
	text := strings.Join([]string{
		"Education",
		"Master of Arts",
		"line one",
		"line two",
		"line three",
		"line four",
		"Far Away University Campus",
	}, "\n")

	records := ExtractEducation(text)
	require.NotEmpty(t, records)
	assert.Equal(t, "Master of Arts", records[0].Degree)
	assert.Empty(t, records[0].Institution, "窗口之外的学校不应被采用")
}

func TestExtractEducation_Cap(t *testing.T) {
	text := strings.Join([]string{
		"Education",
		"Bachelor of Arts",
		"Master of Arts",
		"PhD in Physics",
		"Bachelor of Science",
		"Master of Science",
	}, "\n")

	records := ExtractEducation(text)
	require.Len(t, records, MaxEducationRecords, "教育经历最多3条")
	assert.Equal(t, "Bachelor of Arts", records[0].Degree)
	assert.Equal(t, "Master of Arts", records[1].Degree)
	assert.Equal(t, "PhD in Physics", records[2].Degree)
}

func TestExtractEducation_SectionExit(t *testing.T) {
	text := strings.Join([]string{
		"Education",
		"Bachelor of Science",
		"Projects",
		"Master of Magic",
	}, "\n")

	records := ExtractEducation(text)
	require.Len(t, records, 1, "离开章节后的学位行不应被识别")
	assert.Equal(t, "Bachelor of Science", records[0].Degree)
}

func TestExtractEducation_Fallback(t *testing.T) {
	text := "John Doe\nGraduated from Stanford University in 2019 with honors and distinction\nBachelor of Arts, also from a good place"

	records := ExtractEducation(text)
	require.Len(t, records, 1, "兜底路径只产生一条记录")
	assert.Equal(t, "Graduated from Stanford University in 2019 with honors and distinction", records[0].Degree)
	assert.Equal(t, FallbackInstitution, records[0].Institution)
	assert.Empty(t, records[0].Period)
}

func TestExtractEducation_FallbackNotUsedWhenSectionMatched(t *testing.T) {
	text := "Education\nBachelor of Arts\nSpringfield"

	records := ExtractEducation(text)
	require.Len(t, records, 1)
	assert.Equal(t, "Bachelor of Arts", records[0].Degree)
	assert.Empty(t, records[0].Institution, "章节扫描有结果时不应走兜底")
}

func TestExtractEducation_NoKeywords(t *testing.T) {
	assert.Empty(t, ExtractEducation("Lorem ipsum dolor\nsit amet"))
	assert.Empty(t, ExtractEducation(""))
}
