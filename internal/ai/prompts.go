package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/resume_analysis.md
var resumeAnalysisPromptRaw string

//go:embed prompts/chat_system.md
var chatSystemPromptRaw string

// ResumeAnalysisTemplate renders the analysis prompt from a Job, FileName and Resume text.
var ResumeAnalysisTemplate = template.Must(template.New("resume_analysis").Parse(resumeAnalysisPromptRaw))

// ChatSystemTemplate renders the assistant's system prompt from a Job and Analysis.
var ChatSystemTemplate = template.Must(template.New("chat_system").Parse(chatSystemPromptRaw))
