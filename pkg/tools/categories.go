package tools

import "strings"

// Category groups tools for browsing and keyword-based relevance boosting.
type Category string

const (
	CategoryMessaging  Category = "messaging"
	CategoryMemory     Category = "memory"
	CategoryScheduling Category = "scheduling"
	CategorySystem     Category = "system"
	CategoryConfig     Category = "config"
	CategoryMedia      Category = "media"
)

// AllCategories returns every valid category in stable order.
func AllCategories() []Category {
	return []Category{
		CategoryMessaging,
		CategoryMemory,
		CategoryScheduling,
		CategorySystem,
		CategoryConfig,
		CategoryMedia,
	}
}

// IsValidCategory checks if a category name is part of the closed set.
func IsValidCategory(category string) bool {
	cat := Category(strings.ToLower(strings.TrimSpace(category)))
	for _, valid := range AllCategories() {
		if cat == valid {
			return true
		}
	}
	return false
}

// ParseCategory normalizes a user-provided category name.
func ParseCategory(category string) (Category, bool) {
	cat := Category(strings.ToLower(strings.TrimSpace(category)))
	if !IsValidCategory(string(cat)) {
		return "", false
	}
	return cat, true
}

// CategoryInfo is a derived view of a category: static metadata plus a
// live tool count computed from the registry.
type CategoryInfo struct {
	Name        Category `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	ToolCount   int      `json:"tool_count"`
}

type categoryDetail struct {
	description string
	keywords    []string
}

var categoryDetails = map[Category]categoryDetail{
	CategoryMessaging: {
		description: "Send messages, images and files to Slack and WhatsApp chats",
		keywords:    []string{"slack", "whatsapp", "message", "send", "chat", "notify", "reply"},
	},
	CategoryMemory: {
		description: "Save, search and recall notes and conversation memory",
		keywords:    []string{"memory", "note", "remember", "recall", "search", "knowledge"},
	},
	CategoryScheduling: {
		description: "Create and manage reminders and recurring scheduled tasks",
		keywords:    []string{"schedule", "cron", "reminder", "recurring", "timer", "daily"},
	},
	CategorySystem: {
		description: "Inspect system health, logs and runtime status",
		keywords:    []string{"health", "status", "system", "logs", "debug", "uptime"},
	},
	CategoryConfig: {
		description: "Change permissions, prompts, secrets, agents and schedules (requires confirmation)",
		keywords:    []string{"config", "permission", "secret", "prompt", "agent", "settings"},
	},
	CategoryMedia: {
		description: "Generate, caption and transcribe images and audio",
		keywords:    []string{"image", "audio", "video", "file", "transcribe", "caption"},
	},
}

// CategoryKeywords returns the static keyword list for a category.
func CategoryKeywords(category Category) []string {
	return categoryDetails[category].keywords
}

// CategoryDescription returns the human description for a category.
func CategoryDescription(category Category) string {
	return categoryDetails[category].description
}
