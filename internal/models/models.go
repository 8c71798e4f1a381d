package models

import "time"

// InputMode selects which text box receives typed input.
type InputMode int

const (
	ModeCommand InputMode = iota // Free-text animation commands
	ModeChat                     // Conversation with the assistant
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ClipName is the provider's identifier for an animation clip, e.g.
// "CharacterArmature|Walk". It is opaque and never modified.
type ClipName string

// LoopMode controls how a clip is played by the stage.
type LoopMode int

const (
	LoopRepeat LoopMode = iota // Loop until superseded
	LoopOnce                   // Play once and clamp on the last frame
)

func (l LoopMode) String() string {
	if l == LoopOnce {
		return "once"
	}
	return "loop"
}

// Category groups clips in the browser.
type Category string

const (
	CategoryBasic    Category = "Basic Actions"
	CategoryMovement Category = "Movement"
	CategoryCombat   Category = "Combat"
	CategoryWork     Category = "Work"
	CategoryEmotions Category = "Emotions"
	CategorySitting  Category = "Sitting"
)

// CategoryAll is the browser's pseudo-category that matches every clip.
const CategoryAll Category = "All"

// CategoryOrder is the fixed display order of the closed category set.
var CategoryOrder = []Category{
	CategoryBasic,
	CategoryMovement,
	CategoryCombat,
	CategoryWork,
	CategoryEmotions,
	CategorySitting,
}

type ChatMessage struct {
	ID        string
	Author    string
	Text      string
	Timestamp time.Time
}

type AIModel struct {
	ID          string
	Name        string
	Provider    string
	Description string
}

var AvailableModels = []AIModel{
	{ID: "google/gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: "Google", Description: "Fast multimodal model"},
	{ID: "google/gemini-3-flash-preview", Name: "Gemini 3 Flash Preview", Provider: "Google", Description: "Fast multimodal model"},
	{ID: "x-ai/grok-4.1-fast", Name: "Grok 4.1 Fast", Provider: "xAI", Description: "General purpose fast model"},
	{ID: "deepseek/deepseek-v3.2", Name: "DeepSeek V3.2", Provider: "DeepSeek", Description: "Reasoning model"},
	{ID: "z-ai/glm-4.7", Name: "GLM 4.7", Provider: "Z.ai", Description: "Multilingual model"},
	{ID: "openai/gpt-oss-120b:free", Name: "GPT-OSS 120B Free", Provider: "OpenAI", Description: "Open-source large language model"},
}

// FindModelByID returns the table entry for id and its index.
func FindModelByID(id string) (AIModel, int, bool) {
	for i, mdl := range AvailableModels {
		if mdl.ID == id {
			return mdl, i, true
		}
	}
	return AIModel{}, 0, false
}
