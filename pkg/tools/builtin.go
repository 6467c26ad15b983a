package tools

import "encoding/json"

// Builtins returns the descriptors for Orient's built-in tool catalog.
// Handlers are attached by the host at startup; config-mutating tools
// route through the pending-action store before any effect is applied.
func Builtins() []Descriptor {
	return []Descriptor{
		// Messaging
		{
			Name:        "orient_send_message",
			Description: "Send a text message to a Slack or WhatsApp chat",
			Category:    CategoryMessaging,
			Keywords:    []string{"send", "message", "text", "slack", "whatsapp"},
			UseCases: []string{
				"send a message to a chat",
				"reply to someone on slack",
				"notify a whatsapp group",
			},
			InputSchema: mustSchema(map[string]interface{}{
				"type":     "object",
				"required": []string{"chat_id", "text"},
				"properties": map[string]interface{}{
					"chat_id": map[string]interface{}{"type": "string"},
					"text":    map[string]interface{}{"type": "string"},
				},
			}),
		},
		{
			Name:        "orient_slack_send_image",
			Description: "Upload and send an image to a Slack channel",
			Category:    CategoryMessaging,
			Keywords:    []string{"slack", "image", "upload", "picture"},
			UseCases: []string{
				"send an image to slack",
				"share a picture in a channel",
			},
		},
		{
			Name:        "orient_whatsapp_send_file",
			Description: "Send a document or file to a WhatsApp chat",
			Category:    CategoryMessaging,
			Keywords:    []string{"whatsapp", "file", "document", "attachment"},
			UseCases: []string{
				"send a file over whatsapp",
				"share a document with a contact",
			},
		},

		// Memory
		{
			Name:        "orient_memory_save",
			Description: "Save a note or fact to long-term memory",
			Category:    CategoryMemory,
			Keywords:    []string{"save", "note", "remember", "memory"},
			UseCases: []string{
				"remember this for later",
				"save a note about a person",
			},
		},
		{
			Name:        "orient_memory_search",
			Description: "Search saved notes and conversation memory",
			Category:    CategoryMemory,
			Keywords:    []string{"search", "recall", "find", "memory", "note"},
			UseCases: []string{
				"what do I know about this topic",
				"find notes from last week",
			},
		},

		// Scheduling
		{
			Name:        "orient_schedule_list",
			Description: "List all configured reminders and recurring schedules",
			Category:    CategoryScheduling,
			Keywords:    []string{"schedule", "list", "reminder", "cron"},
			UseCases: []string{
				"show my reminders",
				"what schedules are active",
			},
		},
		{
			Name:        "orient_schedule_set",
			Description: "Create or update a recurring schedule (requires confirmation)",
			Category:    CategoryScheduling,
			Keywords:    []string{"schedule", "cron", "reminder", "recurring", "create"},
			UseCases: []string{
				"remind me every morning",
				"run a task every hour",
			},
			InputSchema: mustSchema(map[string]interface{}{
				"type":     "object",
				"required": []string{"name", "cron"},
				"properties": map[string]interface{}{
					"name":    map[string]interface{}{"type": "string"},
					"cron":    map[string]interface{}{"type": "string"},
					"message": map[string]interface{}{"type": "string"},
				},
			}),
		},

		// System
		{
			Name:        "orient_system_health",
			Description: "Report process health, uptime and connected channels",
			Category:    CategorySystem,
			Keywords:    []string{"health", "status", "uptime", "check"},
			UseCases: []string{
				"is everything running",
				"system health check",
			},
		},
		{
			Name:        "orient_system_logs",
			Description: "Fetch recent log lines for debugging",
			Category:    CategorySystem,
			Keywords:    []string{"logs", "debug", "errors", "tail"},
			UseCases: []string{
				"show recent errors",
				"tail the logs",
			},
		},

		// Config (all mutate state, all confirmation-gated)
		{
			Name:        "orient_permission_set",
			Description: "Change a chat's read/write permission (requires confirmation)",
			Category:    CategoryConfig,
			Keywords:    []string{"permission", "chat", "access", "allow", "read", "write"},
			UseCases: []string{
				"allow this chat to receive replies",
				"give a group write access",
			},
			InputSchema: mustSchema(map[string]interface{}{
				"type":     "object",
				"required": []string{"chat_id", "permission"},
				"properties": map[string]interface{}{
					"chat_id":    map[string]interface{}{"type": "string"},
					"permission": map[string]interface{}{"type": "string", "enum": []string{"ignored", "read_only", "read_write"}},
					"chat_type":  map[string]interface{}{"type": "string", "enum": []string{"individual", "group"}},
					"name":       map[string]interface{}{"type": "string"},
				},
			}),
		},
		{
			Name:        "orient_prompt_set",
			Description: "Update a named system prompt (requires confirmation)",
			Category:    CategoryConfig,
			Keywords:    []string{"prompt", "system", "persona", "update"},
			UseCases: []string{
				"change the assistant persona",
				"update the system prompt",
			},
		},
		{
			Name:        "orient_secret_set",
			Description: "Store an API key or secret (requires confirmation)",
			Category:    CategoryConfig,
			Keywords:    []string{"secret", "key", "token", "credential"},
			UseCases: []string{
				"save an api key",
				"rotate a credential",
			},
		},
		{
			Name:        "orient_agent_config",
			Description: "Create or update an agent configuration (requires confirmation)",
			Category:    CategoryConfig,
			Keywords:    []string{"agent", "model", "configure"},
			UseCases: []string{
				"add a new agent",
				"change an agent's model",
			},
		},

		// Media
		{
			Name:        "orient_media_transcribe",
			Description: "Transcribe a voice note or audio file to text",
			Category:    CategoryMedia,
			Keywords:    []string{"transcribe", "audio", "voice", "speech"},
			UseCases: []string{
				"transcribe this voice note",
				"what does the audio say",
			},
		},
		{
			Name:        "orient_image_caption",
			Description: "Describe the contents of an image",
			Category:    CategoryMedia,
			Keywords:    []string{"image", "caption", "describe", "vision"},
			UseCases: []string{
				"what is in this picture",
				"describe the attached image",
			},
		},
	}
}

func mustSchema(schema map[string]interface{}) json.RawMessage {
	data, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return data
}
