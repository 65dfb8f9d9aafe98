// Package export 将简历解析结果导出为XLSX工作簿。
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"portfolio-go/internal/types"
)

// 工作表名称
const (
	SheetEducation  = "Education"
	SheetExperience = "Experience"
	SheetSkills     = "Skills"
	SheetPersonal   = "Personal"
)

var (
	educationHeaders  = []string{"Degree", "Institution", "Location", "Period", "GPA", "Description"}
	experienceHeaders = []string{"Position", "Company", "Location", "Period", "Description", "Achievements"}
	skillsHeaders     = []string{"Category", "Skills"}
	personalHeaders   = []string{"Field", "Value"}
)

// WriteXLSX 把 result 写成四个工作表的工作簿
func WriteXLSX(w io.Writer, result *types.ParseResult) error {
	if result == nil {
		result = types.NewParseResult()
	}

	f := excelize.NewFile()
	defer f.Close()

	// 默认的 Sheet1 改名为第一个工作表
	if err := f.SetSheetName(f.GetSheetName(0), SheetEducation); err != nil {
		return fmt.Errorf("重命名工作表失败: %w", err)
	}
	for _, name := range []string{SheetExperience, SheetSkills, SheetPersonal} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("创建工作表 %s 失败: %w", name, err)
		}
	}

	edu := make([][]interface{}, 0, len(result.Education))
	for _, e := range result.Education {
		edu = append(edu, []interface{}{e.Degree, e.Institution, e.Location, e.Period, e.GPA, e.Description})
	}
	exp := make([][]interface{}, 0, len(result.Experience))
	for _, e := range result.Experience {
		exp = append(exp, []interface{}{e.Position, e.Company, e.Location, e.Period, e.Description, strings.Join(e.Achievements, "\n")})
	}
	skills := make([][]interface{}, 0, len(result.Skills))
	for _, s := range result.Skills {
		skills = append(skills, []interface{}{s.Category, strings.Join(s.Skills, ", ")})
	}
	info := result.PersonalInfo
	personal := [][]interface{}{
		{"Email", info.Email},
		{"Phone", info.Phone},
		{"Location", info.Location},
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
		widths  []float64
	}{
		{SheetEducation, educationHeaders, edu, []float64{40, 32, 18, 16, 8, 48}},
		{SheetExperience, experienceHeaders, exp, []float64{30, 28, 18, 22, 48, 60}},
		{SheetSkills, skillsHeaders, skills, []float64{24, 80}},
		{SheetPersonal, personalHeaders, personal, []float64{12, 40}},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.headers, s.rows, s.widths); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("写出XLSX失败: %w", err)
	}
	return nil
}

// XLSXBytes 返回工作簿字节
func XLSXBytes(result *types.ParseResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}, widths []float64) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("写入表头 %s!%s 失败: %w", sheet, cell, err)
		}
	}
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("写入 %s 第 %d 行失败: %w", sheet, r+2, err)
		}
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, w)
	}
	return nil
}
