package entity

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type Message struct {
	Role    MessageRole
	Content string
	// Images are data or https URLs attached after Content.
	Images []string
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
