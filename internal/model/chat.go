package model

const (
	RoleUser      = "user"
	RoleSystem    = "system"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Prompt   string    `json:"prompt"`
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	UseRag   *bool     `json:"useRag"`
}
