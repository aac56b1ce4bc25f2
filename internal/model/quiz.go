package model

type QuizQuestion struct {
	Type    string   `json:"type"`
	Prompt  string   `json:"prompt"`
	Answer  string   `json:"answer"`
	Page    int      `json:"page"`
	Quote   string   `json:"quote"`
	Options []string `json:"options,omitempty"`
}

type CramPlanStep struct {
	Step   int    `json:"step"`
	Title  string `json:"title"`
	Action string `json:"action"`
	Page   int    `json:"page"`
}
