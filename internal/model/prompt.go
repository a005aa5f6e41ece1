package model

// Prompt is a stored generation template keyed by code.
type Prompt struct {
	Code string `gorm:"type:varchar(100);primaryKey" json:"code"`
	Text string `gorm:"type:text;not null" json:"text"`
}

func (Prompt) TableName() string {
	return "prompt"
}

// PromptGenerateScript is the template used by script generation.
const PromptGenerateScript = "GENERATE_SCRIPT"
