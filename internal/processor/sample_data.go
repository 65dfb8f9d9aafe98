package processor

import "portfolio-go/internal/types"

// SampleResult 占位数据，仅用于在没有任何文本时让页面有内容可展示。
// 每次调用返回新的副本，调用方可以自由修改。
func SampleResult() *types.ParseResult {
	return &types.ParseResult{
		Education: []types.EducationRecord{{
			Degree:      "Bachelor of Technology in Computer Science",
			Institution: "Sample University",
			Period:      "2020-2024",
			Description: "Graduated with honors in Computer Science and Engineering",
		}},
		Experience: []types.ExperienceRecord{{
			Position:     "Full Stack Developer",
			Company:      "Tech Company Inc",
			Period:       "2023-Present",
			Description:  "Developed web applications using modern technologies",
			Achievements: []string{},
		}},
		Skills: []types.SkillCategory{
			{Category: "Programming Languages", Skills: []string{"JavaScript", "Python", "Java"}},
			{Category: "Web Technologies", Skills: []string{"React", "Node.js", "Express", "MongoDB"}},
		},
	}
}
