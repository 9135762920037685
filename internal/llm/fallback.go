package llm

import (
	"encoding/json"
	"fmt"

	"github.com/fjcanyue/smart-survey/internal/survey"
)

// FallbackSurvey is the template returned when no provider produced a draft.
func FallbackSurvey(prompt string) survey.Definition {
	satisfaction := []survey.Choice{
		{Value: "5", Text: "非常满意"},
		{Value: "4", Text: "满意"},
		{Value: "3", Text: "一般"},
		{Value: "2", Text: "不满意"},
		{Value: "1", Text: "非常不满意"},
	}
	return survey.Definition{
		Title:       "基于您的需求创建的问卷",
		Description: fmt.Sprintf("这是根据您的描述 \"%s\" 创建的基础问卷模板。请根据需要进行修改。", prompt),
		Pages: []survey.Page{{
			Name: "page1",
			Elements: []survey.Element{
				{
					Type:       "radiogroup",
					Name:       "satisfaction",
					Title:      "总体满意度评价",
					Choices:    satisfaction,
					IsRequired: true,
				},
				{
					Type:  "comment",
					Name:  "feedback",
					Title: "请提供您的详细反馈和建议",
					Rows:  4,
				},
				{
					Type:               "rating",
					Name:               "recommend",
					Title:              "您会向朋友推荐我们吗？",
					RateMin:            "1",
					RateMax:            "10",
					RateStep:           "1",
					MinRateDescription: "绝对不会",
					MaxRateDescription: "肯定会推荐",
				},
			},
		}},
	}
}

func fallbackJSON(prompt string) (json.RawMessage, error) {
	return json.Marshal(FallbackSurvey(prompt))
}
